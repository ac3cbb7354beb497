package ports

import (
	"context"

	"github.com/moviops/movi/pkg/domain"
)

// CompletionRequest is one structured instruction to the language model.
// Callers expect JSON-shaped output and parse it strictly; unparseable
// output is a hard failure of the calling stage, never partially trusted.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	// JSONOutput asks the model for a bare JSON document (no prose, no
	// markdown fences) when the backend supports constrained output.
	JSONOutput bool
}

// Completer produces language-model completions for classification,
// confirmation-text generation and response phrasing.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ComprehensionInput bundles one turn's raw input for the multimodal
// comprehension capability.
type ComprehensionInput struct {
	Text        string
	Media       []domain.Media
	PageContext string
}

// Comprehender converts text/audio/image/video input into a comprehension
// record of the same shape regardless of modality.
type Comprehender interface {
	Comprehend(ctx context.Context, input ComprehensionInput) (*domain.Comprehension, error)
}
