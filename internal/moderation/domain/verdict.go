package domain

import (
	"encoding/json"
	"fmt"
)

// Rejection reasons produced by the local heuristic rules.
const (
	ReasonEmpty       = "Empty content"
	ReasonLanguage    = "Content contains inappropriate language"
	ReasonPatterns    = "Content contains inappropriate patterns or links"
	ReasonCaps        = "Excessive use of capital letters"
	ReasonRepetition  = "Excessive word repetition detected"
	ReasonFlaggedNone = "flagged"
)

// Verdict is the outcome of classifying one piece of text.
// Pure value type; reason and confidence are only ever set on rejections.
type Verdict struct {
	clean         bool
	reason        string
	confidence    float64
	hasConfidence bool
}

// CleanVerdict returns an accepting verdict.
func CleanVerdict() Verdict { return Verdict{clean: true} }

// Reject returns a rejecting verdict without a confidence value.
func Reject(reason string) Verdict {
	return Verdict{reason: reason}
}

// RejectWithConfidence returns a rejecting verdict. Confidence is clamped to [0,1].
func RejectWithConfidence(reason string, confidence float64) Verdict {
	return Verdict{reason: reason, confidence: clamp01(confidence), hasConfidence: true}
}

// IsClean reports whether the text was accepted.
func (v Verdict) IsClean() bool { return v.clean }

// Reason returns the rejection reason. ok is false for clean verdicts.
func (v Verdict) Reason() (reason string, ok bool) {
	if v.clean {
		return "", false
	}
	return v.reason, true
}

// Confidence returns the rejection confidence when one was recorded.
func (v Verdict) Confidence() (confidence float64, ok bool) {
	if v.clean || !v.hasConfidence {
		return 0, false
	}
	return v.confidence, true
}

// String renders the verdict for logs.
func (v Verdict) String() string {
	if v.clean {
		return "clean"
	}
	if v.hasConfidence {
		return fmt.Sprintf("rejected(%s, %.2f)", v.reason, v.confidence)
	}
	return fmt.Sprintf("rejected(%s)", v.reason)
}

type verdictJSON struct {
	IsClean    bool     `json:"isClean"`
	Reason     *string  `json:"reason,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// MarshalJSON encodes the verdict with absent fields omitted.
func (v Verdict) MarshalJSON() ([]byte, error) {
	out := verdictJSON{IsClean: v.clean}
	if r, ok := v.Reason(); ok {
		out.Reason = &r
	}
	if c, ok := v.Confidence(); ok {
		out.Confidence = &c
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a verdict, dropping reason and confidence from clean ones.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var in verdictJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.IsClean:
		*v = CleanVerdict()
	case in.Reason == nil:
		return fmt.Errorf("rejected verdict without reason")
	case in.Confidence != nil:
		*v = RejectWithConfidence(*in.Reason, *in.Confidence)
	default:
		*v = Reject(*in.Reason)
	}
	return nil
}

func clamp01(f float64) float64 {
	if f != f || f < 0 { // NaN counts as no certainty
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
