package ports

import (
	"context"

	"github.com/flightdeck/adbot/pkg/domain"
)

// Recognizer converts free text into intents and entities. It wraps an
// external service; implementations must be safe for concurrent use
// across conversations.
type Recognizer interface {
	// IsConfigured reports whether the required credentials are present.
	// When false, callers must skip Recognize entirely and take the
	// deterministic fallback path.
	IsConfigured() bool

	// Recognize analyzes one utterance. It fails with
	// domain.ErrRecognizerUnavailable when the service cannot be
	// reached and with *domain.MalformedResponseError when the payload
	// cannot be parsed.
	Recognize(ctx context.Context, utterance string) (*domain.Recognition, error)
}
