package driven

// PromptStore renders the text templates (text/template syntax) sent to
// the LLM.
type PromptStore interface {
	// Render executes the named template with data.
	Render(name string, data any) (string, error)

	// Reload drops parsed templates so the next Render reads them again.
	Reload()
}

// Prompt names.
const (
	// PromptAnswerSystem sets the assistant's rules. It receives AnswerPrompt.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser frames the retrieved passages and the question.
	// It receives AnswerPrompt.
	PromptAnswerUser = "answer_user"
)

// AnswerPrompt is the data both answer templates are rendered with.
type AnswerPrompt struct {
	Corpus   string
	Question string
	// Context holds the passages, numbered [1], [2], ... for citation.
	Context  string
	Passages int
}
