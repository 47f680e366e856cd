package policy

import (
	"bufio"
	"io"
	"strings"
	"time"

	logpkg "github.com/haukened/commentguard/internal/moderation/common/log"
	"github.com/haukened/commentguard/internal/moderation/domain"
)

// ParsePlainList parses a newline-delimited list of denylist words.
//
// Behavior:
// - Supports comments starting with '#' (inline or whole-line)
// - Trims surrounding whitespace and a leading BOM
// - Skips empty lines after trimming/stripping comments
// - De-duplicates case-insensitively while preserving first-seen order
// - Each rule is attributed to the provided source and timestamped with now
func ParsePlainList(r io.Reader, source string, logger logpkg.Logger, now time.Time) ([]domain.DenyRule, error) {
	scanner := bufio.NewScanner(r)

	seen := make(map[string]struct{})
	out := make([]domain.DenyRule, 0, 64)
	logger.Debug(map[string]any{"source": source}, "parse_plain_list_start")
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")

		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		term := strings.TrimSpace(line)
		if term == "" {
			logger.Debug(map[string]any{"line": lineNum}, "skip_empty_or_comment")
			continue
		}

		rule, err := domain.NewWordRule(term, source, now)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "raw": term, "error": err.Error()}, "skip_constructor_error")
			continue
		}
		if _, ok := seen[rule.Term]; ok {
			logger.Debug(map[string]any{"line": lineNum, "term": rule.Term}, "skip_duplicate")
			continue
		}
		seen[rule.Term] = struct{}{}
		out = append(out, rule)
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_plain_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_plain_list_done")
	return out, nil
}
