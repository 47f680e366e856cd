package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RuleKind defines how a deny rule matches text.
//
// word    - case-insensitive substring
// pattern - case-insensitive regular expression
type RuleKind uint8

const (
	// RuleWord matches when the lowercased term occurs anywhere in the lowercased text.
	RuleWord RuleKind = iota
	// RulePattern matches when the compiled expression matches the text.
	RulePattern
)

// String returns a stable string representation of the rule kind.
func (k RuleKind) String() string {
	switch k {
	case RuleWord:
		return "word"
	case RulePattern:
		return "pattern"
	default:
		return fmt.Sprintf("RuleKind(%d)", k)
	}
}

// ParseRuleKind converts "word" or "pattern" (case-insensitive) into a RuleKind.
func ParseRuleKind(s string) (RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word":
		return RuleWord, nil
	case "pattern":
		return RulePattern, nil
	default:
		return 0, fmt.Errorf("unsupported RuleKind: %q", s)
	}
}

// DenyRule is a single denylist entry sourced from the built-in defaults or a
// policy file. Rules are configuration: built once at startup, never mutated.
type DenyRule struct {
	Term    string    // lowercased word, or the pattern source
	Kind    RuleKind  // word or pattern
	Source  string    // "builtin" or the policy file path
	AddedAt time.Time // ingestion timestamp
}

// NewDenyRule constructs and validates a DenyRule. Word terms are lowercased.
func NewDenyRule(term string, kind RuleKind, source string, addedAt time.Time) (DenyRule, error) {
	r := DenyRule{
		Term:    strings.TrimSpace(term),
		Kind:    kind,
		Source:  strings.TrimSpace(source),
		AddedAt: addedAt,
	}
	if kind == RuleWord {
		r.Term = strings.ToLower(r.Term)
	}
	if err := r.Validate(); err != nil {
		return DenyRule{}, err
	}
	return r, nil
}

// NewWordRule is a convenience constructor for a word rule.
func NewWordRule(term, source string, addedAt time.Time) (DenyRule, error) {
	return NewDenyRule(term, RuleWord, source, addedAt)
}

// NewPatternRule is a convenience constructor for a pattern rule.
func NewPatternRule(expr, source string, addedAt time.Time) (DenyRule, error) {
	return NewDenyRule(expr, RulePattern, source, addedAt)
}

// Validate checks required fields, and that pattern terms compile.
func (r DenyRule) Validate() error {
	if r.Term == "" {
		return fmt.Errorf("rule term must not be empty")
	}
	if r.Source == "" {
		return fmt.Errorf("rule source must not be empty")
	}
	if r.AddedAt.IsZero() {
		return fmt.Errorf("rule addedAt must be set")
	}
	switch r.Kind {
	case RuleWord:
	case RulePattern:
		if _, err := r.Compile(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported RuleKind: %d", r.Kind)
	}
	return nil
}

// Compile returns the case-insensitive expression for a pattern rule.
func (r DenyRule) Compile() (*regexp.Regexp, error) {
	if r.Kind != RulePattern {
		return nil, fmt.Errorf("rule %q is not a pattern", r.Term)
	}
	re, err := regexp.Compile("(?i)" + r.Term)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", r.Term, err)
	}
	return re, nil
}

// IsWord returns true when the rule kind is word.
func (r DenyRule) IsWord() bool { return r.Kind == RuleWord }

// IsPattern returns true when the rule kind is pattern.
func (r DenyRule) IsPattern() bool { return r.Kind == RulePattern }
