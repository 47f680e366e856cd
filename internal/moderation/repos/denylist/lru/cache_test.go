package lru

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/commentguard/internal/moderation/domain"
)

func TestNew_DisabledWhenNonPositive(t *testing.T) {
	for _, size := range []int{0, -3} {
		c, err := New(size)
		require.NoError(t, err)
		c.Put("buy viagra", domain.DenyMatch{Matched: true, Term: "viagra"})
		_, ok := c.Get("buy viagra")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
		c.Purge()
		assert.Equal(t, 0, c.Stats().Capacity)
	}
}

func TestMatchCache_HitsMissesEvictions(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	hit := domain.DenyMatch{Matched: true, Term: "spam"}
	c.Put("a spam post", hit)
	c.Put("clean", domain.NoMatch())

	got, ok := c.Get("a spam post")
	require.True(t, ok)
	assert.Equal(t, hit, got)

	_, ok = c.Get("absent")
	assert.False(t, ok)

	// third entry evicts the least recently used ("clean")
	c.Put("third", domain.NoMatch())
	_, ok = c.Get("clean")
	assert.False(t, ok)

	st := c.Stats()
	assert.Equal(t, 2, st.Capacity)
	assert.Equal(t, 2, st.Size)
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(2), st.Misses)
	assert.Equal(t, uint64(1), st.Evictions)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, uint64(3), c.Stats().Evictions)
}
