package moderator

import (
	"context"

	"github.com/haukened/commentguard/internal/moderation/domain"
)

// Classifier is the caller-facing moderation strategy. Implementations are
// total: every call yields a Verdict, never an error.
type Classifier interface {
	Classify(ctx context.Context, text string) domain.Verdict
}

// Denylist reports whether any denylist word occurs in text, case-insensitively.
type Denylist interface {
	Match(text string) domain.DenyMatch
}

// ModerationGateway performs one call against the remote moderation endpoint.
type ModerationGateway interface {
	Moderate(ctx context.Context, text string) (domain.RemoteResult, error)
}

// GatewayFactory builds a gateway bound to a caller-supplied credential.
type GatewayFactory func(apiKey string) (ModerationGateway, error)

// KeyedClassifier classifies with a per-call credential.
type KeyedClassifier interface {
	ClassifyWithKey(ctx context.Context, text, apiKey string) domain.Verdict
}

// Sanitizer renders text safe for HTML embedding.
type Sanitizer interface {
	Sanitize(text string) string
}

// Responder is what the transport layer calls for each request.
type Responder interface {
	Classify(ctx context.Context, text, apiKey string) domain.Verdict
	Sanitize(text string) string
}
