package moderator

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/commentguard/internal/moderation/common/clock"
	"github.com/haukened/commentguard/internal/moderation/domain"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist/bloom"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist/lru"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist/memory"
	"github.com/haukened/commentguard/internal/moderation/repos/policy"
)

// builtinHeuristic wires the built-in policy through the real denylist stack.
func builtinHeuristic(t *testing.T) *Heuristic {
	t.Helper()
	rules, err := policy.NewLoader(clock.RealClock{}, nil).Defaults()
	require.NoError(t, err)

	cache, err := lru.New(64)
	require.NoError(t, err)
	repo := denylist.NewRepository(memory.New(), cache, bloom.NewFactory(), 0.01, nil)
	require.NoError(t, repo.Load(rules, 1, 0))

	h, err := NewHeuristicFromRules(repo, rules)
	require.NoError(t, err)
	return h
}

func reason(v domain.Verdict) string {
	r, _ := v.Reason()
	return r
}

func confidence(v domain.Verdict) (float64, bool) {
	return v.Confidence()
}

func TestHeuristic_Scenarios(t *testing.T) {
	h := builtinHeuristic(t)

	tests := []struct {
		name           string
		text           string
		wantClean      bool
		wantReason     string
		wantConfidence float64 // 0 means absent
	}{
		{"empty", "", false, domain.ReasonEmpty, 0},
		{"whitespace only", " \t\n ", false, domain.ReasonEmpty, 0},
		{"blocked word", "Buy viagra now!!!", false, domain.ReasonLanguage, 0.9},
		{"blocked word uppercase substring", "BESTCASINOS online", false, domain.ReasonLanguage, 0.9},
		{"link", "Check this out http://example.com", false, domain.ReasonPatterns, 0.8},
		{"https link", "see HTTPS://example.org/page", false, domain.ReasonPatterns, 0.8},
		{"repeated-letter profanity", "what the fuuuuck", false, domain.ReasonPatterns, 0.8},
		{"explicit keyword", "no SEEEX please", false, domain.ReasonPatterns, 0.8},
		{"ten digit run", "call me 5551234567", false, domain.ReasonPatterns, 0.8},
		{"nine digits is fine", "order 555123456 shipped", true, "", 0},
		{"all caps", "THIS IS AMAZING AND GREAT STUFF", false, domain.ReasonCaps, 0.6},
		{"caps needs more than ten letters", "WOW GREAT!", true, "", 0},
		{"repetition", "good good good good good good", false, domain.ReasonRepetition, 0.7},
		{"repetition case folded", "Good GOOD good gOOd good Good", false, domain.ReasonRepetition, 0.7},
		{"five tokens never repetitive", "good good good good good", true, "", 0},
		{"clean", "This is a perfectly normal comment about the article.", true, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := h.Classify(tt.text)
			assert.Equal(t, tt.wantClean, v.IsClean())
			if tt.wantClean {
				_, ok := v.Reason()
				assert.False(t, ok)
				_, ok = v.Confidence()
				assert.False(t, ok)
				return
			}
			assert.Equal(t, tt.wantReason, reason(v))
			c, ok := confidence(v)
			if tt.wantConfidence == 0 {
				assert.False(t, ok)
			} else {
				assert.True(t, ok)
				assert.Equal(t, tt.wantConfidence, c)
			}
		})
	}
}

// fakeDenylist records calls so rule ordering can be asserted.
type fakeDenylist struct {
	match domain.DenyMatch
	calls int
}

func (f *fakeDenylist) Match(string) domain.DenyMatch {
	f.calls++
	return f.match
}

func TestHeuristic_FirstRuleWins(t *testing.T) {
	dl := &fakeDenylist{match: domain.DenyMatch{Matched: true, Term: "spam"}}
	h := NewHeuristic(dl, []*regexp.Regexp{regexp.MustCompile(`(?i)https?://\S+`)})

	// matches words, a link, caps and repetition: words win
	v := h.Classify("SPAM SPAM SPAM SPAM SPAM SPAM HTTP://X.COM")
	assert.Equal(t, domain.ReasonLanguage, reason(v))

	// empty check happens before the denylist is consulted
	dl.calls = 0
	assert.Equal(t, domain.ReasonEmpty, reason(h.Classify("   ")))
	assert.Zero(t, dl.calls)

	// patterns beat caps and repetition
	dl.match = domain.NoMatch()
	v = h.Classify("LINK LINK LINK LINK LINK LINK HTTP://X.COM")
	assert.Equal(t, domain.ReasonPatterns, reason(v))

	// caps beats repetition
	v = h.Classify("LOUD LOUD LOUD LOUD LOUD LOUD")
	assert.Equal(t, domain.ReasonCaps, reason(v))
}

func TestHeuristic_CapsBoundary(t *testing.T) {
	h := NewHeuristic(nil, nil)

	// 10 letters never trigger, regardless of ratio
	assert.True(t, h.Classify("ABCDEFGHIJ").IsClean())
	// 11 letters, 8 upper: 0.727 > 0.7
	assert.Equal(t, domain.ReasonCaps, reason(h.Classify("ABCDEFGHijk")))
	// 10 of 14 upper: 0.714 > 0.7
	assert.Equal(t, domain.ReasonCaps, reason(h.Classify("ABCDEFGHIJklmn")))
	// 7 of 11 upper: 0.636
	assert.True(t, h.Classify("ABCDEFGhijk").IsClean())
	// non-ASCII letters are not counted
	assert.True(t, h.Classify("ÀÉÎÕÜ ÀÉÎÕÜ ok").IsClean())
}

func TestHeuristic_RepetitionBoundary(t *testing.T) {
	h := NewHeuristic(nil, nil)

	// 10 tokens, 3 unique: 0.3 is not below 0.3
	assert.True(t, h.Classify("a b c a b c a b c a").IsClean())
	// 10 tokens, 2 unique: 0.2
	assert.Equal(t, domain.ReasonRepetition, reason(h.Classify("a b a b a b a b a b")))
	// surrounding and repeated whitespace do not create tokens
	assert.Equal(t, domain.ReasonRepetition, reason(h.Classify("  go \t go\n\ngo go   go go  ")))
}

func TestHeuristic_NilDenylistSkipsWords(t *testing.T) {
	h := NewHeuristic(nil, nil)
	assert.True(t, h.Classify("buy viagra").IsClean())
}

func TestNewHeuristicFromRules_CompileError(t *testing.T) {
	bad := domain.DenyRule{Term: "(unclosed", Kind: domain.RulePattern, Source: "test"}
	_, err := NewHeuristicFromRules(nil, []domain.DenyRule{bad})
	assert.Error(t, err)
}

func TestHeuristic_Invariants(t *testing.T) {
	h := builtinHeuristic(t)
	inputs := []string{
		"", "hello", "Buy viagra", "http://x", strings.Repeat("no ", 20), "OK OK OK OK OK OK OK",
		"12345678901", "café au lait", "<script>alert('x')</script>",
	}
	for _, in := range inputs {
		v := h.Classify(in)
		_, hasReason := v.Reason()
		_, hasConfidence := v.Confidence()
		if v.IsClean() {
			assert.False(t, hasReason, in)
			assert.False(t, hasConfidence, in)
		} else {
			assert.True(t, hasReason, in)
		}
	}
}

func TestLocal_ImplementsClassifier(t *testing.T) {
	var c Classifier = Local{Heuristic: builtinHeuristic(t)}
	v := c.Classify(context.Background(), "Check this out http://example.com")
	assert.Equal(t, domain.ReasonPatterns, reason(v))
}
