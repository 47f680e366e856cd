package moderator

import (
	"context"
	"errors"
	"fmt"

	"github.com/haukened/commentguard/internal/moderation/common/log"
	"github.com/haukened/commentguard/internal/moderation/domain"
)

var errNoGateway = errors.New("no moderation gateway configured")

// Remote classifies text with the remote moderation endpoint. Any failure
// (transport, status, payload, cancellation) is absorbed: the verdict of the
// local heuristic is returned instead. One attempt per call, no retries.
type Remote struct {
	gateway    ModerationGateway
	newGateway GatewayFactory
	fallback   *Heuristic
	logger     log.Logger
}

// RemoteOptions configures a Remote classifier.
type RemoteOptions struct {
	// Gateway serves Classify; nil means every Classify call falls back.
	Gateway ModerationGateway
	// NewGateway serves ClassifyWithKey; nil means those calls fall back.
	NewGateway GatewayFactory
	// Fallback is required.
	Fallback *Heuristic
	Logger   log.Logger
}

// NewRemote validates opts and returns a Remote classifier.
func NewRemote(opts RemoteOptions) (*Remote, error) {
	if opts.Fallback == nil {
		return nil, fmt.Errorf("fallback heuristic is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Remote{
		gateway:    opts.Gateway,
		newGateway: opts.NewGateway,
		fallback:   opts.Fallback,
		logger:     log.WithFields(opts.Logger, map[string]any{"component": "remote_classifier"}),
	}, nil
}

// Classify uses the configured gateway.
func (r *Remote) Classify(ctx context.Context, text string) domain.Verdict {
	if r.gateway == nil {
		return r.fallBack(text, errNoGateway)
	}
	return r.classifyWith(ctx, r.gateway, text)
}

// ClassifyWithKey uses a gateway bound to apiKey for this call only.
func (r *Remote) ClassifyWithKey(ctx context.Context, text, apiKey string) domain.Verdict {
	if r.newGateway == nil {
		return r.fallBack(text, errNoGateway)
	}
	gw, err := r.newGateway(apiKey)
	if err != nil {
		return r.fallBack(text, err)
	}
	return r.classifyWith(ctx, gw, text)
}

func (r *Remote) classifyWith(ctx context.Context, gw ModerationGateway, text string) domain.Verdict {
	if err := ctx.Err(); err != nil {
		return r.fallBack(text, err)
	}
	res, err := gw.Moderate(ctx, text)
	if err != nil {
		return r.fallBack(text, err)
	}
	v := res.Verdict()
	r.logger.Debug(map[string]any{"flagged": res.Flagged, "verdict": v.String()}, "remote_moderation_result")
	return v
}

func (r *Remote) fallBack(text string, cause error) domain.Verdict {
	v := r.fallback.Classify(text)
	r.logger.Warn(map[string]any{
		"error":   cause.Error(),
		"verdict": v.String(),
	}, "remote_moderation_failed_using_heuristic")
	return v
}

var (
	_ Classifier      = (*Remote)(nil)
	_ KeyedClassifier = (*Remote)(nil)
)
