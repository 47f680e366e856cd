package domain

import (
	"sort"
	"strings"
)

// RemoteResult is the first result entry returned by the remote moderation endpoint.
type RemoteResult struct {
	Flagged    bool               `json:"flagged"`
	Categories map[string]bool    `json:"categories"`
	Scores     map[string]float64 `json:"category_scores"`
}

// FlaggedCategories returns the names of categories marked true, sorted.
func (r RemoteResult) FlaggedCategories() []string {
	out := make([]string, 0, len(r.Categories))
	for name, flagged := range r.Categories {
		if flagged {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// MaxScore returns the highest score across every category, flagged or not.
// ok is false when the response carried no scores.
func (r RemoteResult) MaxScore() (top float64, ok bool) {
	for _, s := range r.Scores {
		if !ok || s > top {
			top, ok = s, true
		}
	}
	return top, ok
}

// Verdict maps the remote result onto the shared verdict shape.
func (r RemoteResult) Verdict() Verdict {
	if !r.Flagged {
		return CleanVerdict()
	}
	reason := strings.Join(r.FlaggedCategories(), ", ")
	if reason == "" {
		reason = ReasonFlaggedNone
	}
	if top, ok := r.MaxScore(); ok {
		return RejectWithConfidence(reason, top)
	}
	return Reject(reason)
}
