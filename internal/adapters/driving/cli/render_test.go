package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStylesFor_PlainWhenNotTerminal(t *testing.T) {
	st := stylesFor(new(bytes.Buffer))
	assert.False(t, st.colour)
	assert.Equal(t, "Rule 10", st.Heading("Rule 10"))
	assert.Equal(t, "0.9000", st.Score("0.9000"))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", indent("a\nb\n", "  "))
	assert.Equal(t, "  single", indent("single", "  "))
}
