package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureWarmNoopWhenAlreadyWarm(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	f := testFilters()

	for _, abbr := range stack.registry.Abbreviations() {
		require.NoError(t, stack.defCache.PutTeam(ctx, sampleAggregate(abbr, f), f))
	}

	started := stack.warmer.EnsureWarm(f)
	assert.False(t, started)
	assert.Equal(t, 0, stack.provider.totalCalls(), "a warm cache must not trigger provider calls")

	status := stack.warmer.Status(ctx, f)
	assert.Equal(t, true, status["ready"])
	assert.Equal(t, false, status["building"])
	assert.Equal(t, 30, status["teams_cached"])
}

func TestEnsureWarmDeduplicatesConcurrentBuilds(t *testing.T) {
	stack := newTestStack(t)
	f := testFilters()

	// Gate the first provider call so the build stays in flight while we
	// probe for duplicates.
	stack.provider.rosterGate = make(chan struct{})

	started := stack.warmer.EnsureWarm(f)
	require.True(t, started)

	// Wait until the build goroutine is registered.
	require.Eventually(t, func() bool {
		return stack.warmer.IsBuilding(f)
	}, 2*time.Second, 5*time.Millisecond)

	assert.False(t, stack.warmer.EnsureWarm(f), "a second warm request must piggyback on the in-flight build")

	close(stack.provider.rosterGate)
	require.Eventually(t, func() bool {
		return !stack.warmer.IsBuilding(f)
	}, 5*time.Second, 10*time.Millisecond)

	// With the build finished the slot is free again.
	assert.True(t, stack.warmer.EnsureWarm(f))
	require.Eventually(t, func() bool {
		return !stack.warmer.IsBuilding(f)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWarmRebuildsLostBulkEntry(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	f := testFilters()

	// Per-team entries survive but the bulk blob is gone (corrupt entry
	// discarded, or the bulk write failed). A warm pass must converge
	// from the per-team entries alone, without re-fetching anything.
	for _, abbr := range stack.registry.Abbreviations() {
		require.NoError(t, stack.cache.Put(ctx, TeamDefenseCacheKey(abbr, f), sampleAggregate(abbr, f)))
	}

	require.True(t, stack.warmer.EnsureWarm(f))
	require.Eventually(t, func() bool {
		ready, err := stack.defCache.IsBulkReady(ctx, f, len(stack.registry.Teams()))
		return err == nil && ready
	}, 5*time.Second, 10*time.Millisecond, "a completed warm pass must leave the bulk entry ready")

	assert.Equal(t, 0, stack.provider.totalCalls(), "cached per-team entries must not be recomputed")
	assert.False(t, stack.warmer.EnsureWarm(f), "once converged, further warm requests are no-ops")
}

func TestWarmerStatusShape(t *testing.T) {
	stack := newTestStack(t)
	f := testFilters()

	status := stack.warmer.Status(context.Background(), f)
	assert.Equal(t, f.Season, status["season"])
	assert.Equal(t, 30, status["teams_total"])
	assert.Equal(t, 0, status["teams_cached"])
	assert.Equal(t, false, status["ready"])
}
