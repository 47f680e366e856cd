// Package transport exposes the moderation service over the network. It owns
// request decoding, limits and response encoding so the service layer only
// sees plain text and verdicts.
package transport

import (
	"context"

	"github.com/haukened/commentguard/internal/moderation/services/moderator"
)

// ServerTransport defines the lifecycle shared by transport implementations.
type ServerTransport interface {
	// Start begins serving requests through handler. It returns once the
	// listener is bound.
	Start(ctx context.Context, handler moderator.Responder) error

	// Stop gracefully shuts down the transport.
	Stop() error

	// Address returns the bound network address.
	Address() string
}

// Header names used on the wire.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderModerationKey = "X-Moderation-Key"
)

// MaxBodyBytes caps request bodies; larger requests get 413.
const MaxBodyBytes = 64 << 10
