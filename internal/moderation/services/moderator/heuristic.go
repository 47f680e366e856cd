// Package moderator decides whether a comment is acceptable for display.
// Heuristic is the local rule-based strategy; Remote consults an external
// moderation endpoint and degrades to Heuristic on any failure.
package moderator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/haukened/commentguard/internal/moderation/domain"
)

// Rule confidences and thresholds.
const (
	confidenceLanguage   = 0.9
	confidencePatterns   = 0.8
	confidenceCaps       = 0.6
	confidenceRepetition = 0.7

	capsMinLetters      = 10  // caps rule applies above this many letters
	capsMaxRatio        = 0.7 // reject when uppercase/letters exceeds this
	repetitionMinTokens = 5   // repetition rule applies above this many tokens
	repetitionMinUnique = 0.3 // reject when distinct/total falls below this
)

// Heuristic classifies text with local, deterministic rules evaluated in
// priority order: emptiness, denylist words, patterns, capitalization,
// repetition. The first rule that rejects wins. Safe for concurrent use.
type Heuristic struct {
	denylist Denylist
	patterns []*regexp.Regexp
}

// NewHeuristic returns a Heuristic over the given denylist and compiled patterns.
// The patterns slice is copied; callers must not mutate the expressions.
func NewHeuristic(denylist Denylist, patterns []*regexp.Regexp) *Heuristic {
	return &Heuristic{
		denylist: denylist,
		patterns: append([]*regexp.Regexp(nil), patterns...),
	}
}

// NewHeuristicFromRules compiles the pattern rules and ignores word rules,
// which the denylist already serves.
func NewHeuristicFromRules(denylist Denylist, rules []domain.DenyRule) (*Heuristic, error) {
	patterns := make([]*regexp.Regexp, 0, len(rules))
	for _, r := range rules {
		if !r.IsPattern() {
			continue
		}
		re, err := r.Compile()
		if err != nil {
			return nil, fmt.Errorf("compile %s rule from %s: %w", r.Kind, r.Source, err)
		}
		patterns = append(patterns, re)
	}
	return NewHeuristic(denylist, patterns), nil
}

// Classify returns the verdict for text. It never fails.
func (h *Heuristic) Classify(text string) domain.Verdict {
	if strings.TrimSpace(text) == "" {
		return domain.Reject(domain.ReasonEmpty)
	}
	if h.denylist != nil && h.denylist.Match(text).IsMatch() {
		return domain.RejectWithConfidence(domain.ReasonLanguage, confidenceLanguage)
	}
	for _, re := range h.patterns {
		if re.MatchString(text) {
			return domain.RejectWithConfidence(domain.ReasonPatterns, confidencePatterns)
		}
	}
	if excessiveCaps(text) {
		return domain.RejectWithConfidence(domain.ReasonCaps, confidenceCaps)
	}
	if excessiveRepetition(text) {
		return domain.RejectWithConfidence(domain.ReasonRepetition, confidenceRepetition)
	}
	return domain.CleanVerdict()
}

// excessiveCaps counts ASCII letters only.
func excessiveCaps(text string) bool {
	var letters, upper int
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z':
			upper++
			letters++
		case c >= 'a' && c <= 'z':
			letters++
		}
	}
	return letters > capsMinLetters && float64(upper)/float64(letters) > capsMaxRatio
}

func excessiveRepetition(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) <= repetitionMinTokens {
		return false
	}
	unique := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		unique[strings.ToLower(tok)] = struct{}{}
	}
	return float64(len(unique))/float64(len(tokens)) < repetitionMinUnique
}

// Local adapts a Heuristic to the Classifier interface. The context is unused.
type Local struct {
	Heuristic *Heuristic
}

func (l Local) Classify(_ context.Context, text string) domain.Verdict {
	return l.Heuristic.Classify(text)
}

var _ Classifier = Local{}
