package driving

import (
	"context"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// AnswerService answers a question using retrieved passages as cited context.
type AnswerService interface {
	// Ask retrieves k passages from tag and asks the text-generation
	// service to answer question from them.
	Ask(ctx context.Context, tag, question string, k int) (*domain.Answer, error)
}
