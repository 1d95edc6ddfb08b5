package idalloc

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIsStrictlyIncreasing(t *testing.T) {
	a := New("10.0.0.1", 7077)

	first := a.Next()
	second := a.Next()
	third := a.Next()

	assert.Equal(t, "10.0.0.1_7077_0", first)
	assert.Equal(t, "10.0.0.1_7077_1", second)
	assert.Equal(t, "10.0.0.1_7077_2", third)
}

func TestNextEmbedsHostAndPort(t *testing.T) {
	a := New("192.168.1.5", 9090)
	id := a.Next()

	require.True(t, strings.HasPrefix(id, "192.168.1.5_9090_"))
}

func TestNextConcurrentUniqueness(t *testing.T) {
	a := New("10.0.0.1", 7077)

	const n = 500
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = a.Next()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range ids {
		require.False(t, seen[id], "duplicate request id: %s", id)
		seen[id] = true
	}
}

func TestTwoAllocatorsOnSameHostDifferentPortsDoNotCollide(t *testing.T) {
	a := New("10.0.0.1", 7077)
	b := New("10.0.0.1", 7078)

	assert.NotEqual(t, a.Next(), b.Next())
}
