package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd(t *testing.T) {
	defer func(v string) { version = v }(version)
	version = "1.4.0"

	out, err := executeCommand("version")
	assert.NoError(t, err)
	assert.Contains(t, out, "citewise 1.4.0")
	assert.Contains(t, out, runtime.Version())
}

func TestVersionCmd_Short(t *testing.T) {
	defer func(v string) { version = v }(version)
	defer func() { versionShort = false }()
	version = "1.4.0"

	out, err := executeCommand("version", "--short")
	assert.NoError(t, err)
	assert.Equal(t, "1.4.0\n", out)
}

func TestVersionCmd_SkipsBootstrap(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	settingsService = nil
	bootstrap = func(string) (*Services, error) {
		t.Fatal("version must not build services")
		return nil, nil
	}

	out, err := executeCommand("version")
	assert.NoError(t, err)
	assert.Contains(t, out, "citewise ")
}
