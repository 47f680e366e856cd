package policy

// BuiltinSource attributes rules compiled into the binary.
const BuiltinSource = "builtin"

// DefaultWords is the built-in denylist, matched as case-insensitive substrings.
var DefaultWords = []string{
	"spam",
	"viagra",
	"casino",
	"porn",
	"xxx",
}

// DefaultPatterns is the built-in pattern set, matched case-insensitively:
// letter-repetition tolerant profanity and explicit keywords, any http(s)
// link, and runs of ten or more digits.
var DefaultPatterns = []string{
	`\b(f+u+c+k+|s+h+i+t+|d+a+m+n+|b+i+t+c+h+|a+s+s+h+o+l+e+)\b`,
	`\b(p+o+r+n+|x+x+x+|s+e+x+)\b`,
	`(https?://[^\s]+)`,
	`\b\d{10,}\b`,
}
