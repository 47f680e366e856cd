package domain

// DenyMatch is the outcome of checking text against the denylist words.
type DenyMatch struct {
	Matched bool   // true if any denylist term occurs in the text
	Term    string // the first term found, in text order
}

// IsMatch is a convenience accessor.
func (m DenyMatch) IsMatch() bool { return m.Matched }

// NoMatch returns a not-matched outcome.
func NoMatch() DenyMatch { return DenyMatch{} }
