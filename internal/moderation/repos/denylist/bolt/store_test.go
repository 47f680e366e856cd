package bolt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/commentguard/internal/moderation/domain"
)

func rules(t *testing.T, now time.Time) []domain.DenyRule {
	t.Helper()
	var out []domain.DenyRule
	for _, w := range []string{"spam", "viagra", "casino"} {
		r, err := domain.NewWordRule(w, "builtin", now)
		require.NoError(t, err)
		out = append(out, r)
	}
	p, err := domain.NewPatternRule(`https?://[^\s]+`, "builtin", now)
	require.NoError(t, err)
	return append(out, p)
}

func TestBoltStore_RebuildAndContains(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "denylist.db")

	s, err := New(path)
	require.NoError(t, err)

	st := s.Stats()
	assert.Zero(t, st.WordKeys)
	assert.Zero(t, st.Version)

	require.NoError(t, s.Rebuild(rules(t, now), 7, now.Unix()))

	ok, err := s.Contains("viagra")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Contains("vi")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.Contains(`https?://[^\s]+`)
	require.NoError(t, err)
	assert.False(t, ok, "patterns are not word terms")

	st = s.Stats()
	assert.Equal(t, uint64(3), st.WordKeys)
	assert.Equal(t, uint64(1), st.PatternKeys)
	assert.Equal(t, uint64(7), st.Version)
	assert.Equal(t, now.Unix(), st.UpdatedUnix)
	require.NoError(t, s.Close())
}

func TestBoltStore_RebuildReplacesAndPersists(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "denylist.db")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Rebuild(rules(t, now), 1, now.Unix()))

	only, err := domain.NewWordRule("xxx", "policy.yaml", now)
	require.NoError(t, err)
	require.NoError(t, s.Rebuild([]domain.DenyRule{only}, 2, now.Unix()+60))
	require.NoError(t, s.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	ok, err := reopened.Contains("spam")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = reopened.Contains("xxx")
	require.NoError(t, err)
	assert.True(t, ok)

	st := reopened.Stats()
	assert.Equal(t, uint64(1), st.WordKeys)
	assert.Equal(t, uint64(0), st.PatternKeys)
	assert.Equal(t, uint64(2), st.Version)
}

func TestBoltStore_ContainsAfterCloseErrors(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Contains("spam")
	assert.Error(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	assert.Error(t, err)
}
