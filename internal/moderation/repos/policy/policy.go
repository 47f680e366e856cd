// Package policy builds the denylist rule set: the built-in words and patterns,
// optionally replaced by a policy file in YAML, JSON, TOML or plain-list form.
package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	"github.com/haukened/commentguard/internal/moderation/common/clock"
	"github.com/haukened/commentguard/internal/moderation/common/log"
	"github.com/haukened/commentguard/internal/moderation/domain"
)

// Loader produces deny rules stamped with the clock's current time.
type Loader struct {
	Clock  clock.Clock
	Logger log.Logger
}

// NewLoader returns a Loader; nil arguments fall back to the real clock and a noop logger.
func NewLoader(clk clock.Clock, logger log.Logger) *Loader {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Loader{Clock: clk, Logger: logger}
}

// Load returns the built-in rules when path is empty; otherwise the rules
// defined by the policy file at path. A structured policy file replaces the
// built-in words and/or patterns for each key it defines. A plain list
// (.txt, .list) replaces the built-in words only.
func (l *Loader) Load(path string) ([]domain.DenyRule, error) {
	if strings.TrimSpace(path) == "" {
		return l.Defaults()
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".list":
		return l.loadPlain(path)
	case ".yaml", ".yml", ".json", ".toml":
		return l.loadStructured(path, ext)
	default:
		return nil, fmt.Errorf("unsupported policy file extension %q", ext)
	}
}

// Defaults returns the built-in words followed by the built-in patterns.
func (l *Loader) Defaults() ([]domain.DenyRule, error) {
	return l.build(DefaultWords, DefaultPatterns, BuiltinSource, BuiltinSource)
}

func (l *Loader) loadPlain(path string) ([]domain.DenyRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening policy file %s: %w", path, err)
	}
	defer f.Close()

	words, err := ParsePlainList(f, path, l.Logger, l.Clock.Now())
	if err != nil {
		return nil, fmt.Errorf("error parsing policy file %s: %w", path, err)
	}
	patterns, err := l.build(nil, DefaultPatterns, BuiltinSource, BuiltinSource)
	if err != nil {
		return nil, err
	}
	return append(words, patterns...), nil
}

func (l *Loader) loadStructured(path, ext string) ([]domain.DenyRule, error) {
	k := koanf.New(".")
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	case ".toml":
		parser = toml.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("error parsing policy file %s: %w", path, err)
	}

	words, wordSource := DefaultWords, BuiltinSource
	if k.Exists("words") {
		words, wordSource = k.Strings("words"), path
	}
	patterns, patternSource := DefaultPatterns, BuiltinSource
	if k.Exists("patterns") {
		patterns, patternSource = k.Strings("patterns"), path
	}

	rules, err := l.build(words, patterns, wordSource, patternSource)
	if err != nil {
		return nil, fmt.Errorf("error in policy file %s: %w", path, err)
	}
	l.Logger.Info(map[string]any{
		"path":     path,
		"words":    len(words),
		"patterns": len(patterns),
	}, "policy_file_loaded")
	return rules, nil
}

// build validates every term. Unlike plain lists, structured policies fail on
// the first bad entry: an uncompilable pattern is a configuration error.
func (l *Loader) build(words, patterns []string, wordSource, patternSource string) ([]domain.DenyRule, error) {
	now := l.Clock.Now()
	out := make([]domain.DenyRule, 0, len(words)+len(patterns))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		r, err := domain.NewWordRule(w, wordSource, now)
		if err != nil {
			return nil, fmt.Errorf("word %q: %w", w, err)
		}
		if _, dup := seen[r.Term]; dup {
			continue
		}
		seen[r.Term] = struct{}{}
		out = append(out, r)
	}
	for _, p := range patterns {
		r, err := domain.NewPatternRule(p, patternSource, now)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Split partitions rules into word and pattern rules, preserving order.
func Split(rules []domain.DenyRule) (words, patterns []domain.DenyRule) {
	for _, r := range rules {
		switch r.Kind {
		case domain.RuleWord:
			words = append(words, r)
		case domain.RulePattern:
			patterns = append(patterns, r)
		}
	}
	return words, patterns
}
