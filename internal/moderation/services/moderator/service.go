package moderator

import (
	"context"
	"errors"

	"github.com/haukened/commentguard/internal/moderation/common/log"
	"github.com/haukened/commentguard/internal/moderation/common/utils"
	"github.com/haukened/commentguard/internal/moderation/domain"
)

// Service answers classify and sanitize requests. Per-request credentials are
// routed to the keyed classifier when one is configured and ignored otherwise.
type Service struct {
	classifier Classifier
	keyed      KeyedClassifier
	sanitizer  Sanitizer
	logger     log.Logger
}

// ServiceOptions configures a Service. Classifier and Sanitizer are required.
type ServiceOptions struct {
	Classifier Classifier
	Keyed      KeyedClassifier
	Sanitizer  Sanitizer
	Logger     log.Logger
}

func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if opts.Sanitizer == nil {
		return nil, errors.New("sanitizer is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Service{
		classifier: opts.Classifier,
		keyed:      opts.Keyed,
		sanitizer:  opts.Sanitizer,
		logger:     opts.Logger,
	}, nil
}

// Classify returns the verdict for text. Rejections are logged; link
// rejections carry the apex domains of the offending URLs.
func (s *Service) Classify(ctx context.Context, text, apiKey string) domain.Verdict {
	var v domain.Verdict
	if apiKey != "" && s.keyed != nil {
		v = s.keyed.ClassifyWithKey(ctx, text, apiKey)
	} else {
		v = s.classifier.Classify(ctx, text)
	}

	if reason, ok := v.Reason(); ok {
		fields := map[string]any{"reason": reason, "length": len(text)}
		if c, ok := v.Confidence(); ok {
			fields["confidence"] = c
		}
		if reason == domain.ReasonPatterns {
			if domains := utils.LinkDomains(text); len(domains) > 0 {
				fields["link_domains"] = domains
			}
		}
		s.logger.Info(fields, "comment_rejected")
	}
	return v
}

func (s *Service) Sanitize(text string) string {
	return s.sanitizer.Sanitize(text)
}

var _ Responder = (*Service)(nil)
