package arena

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWaitGraphInvalidDimensions(t *testing.T) {
	assert.Panics(t, func() { NewWaitGraph(0, 1) })
	assert.Panics(t, func() { NewWaitGraph(1, 0) })
	assert.Panics(t, func() { NewWaitGraph(-1, -1) })
}

func TestWaitGraphClaimRelease(t *testing.T) {
	g := NewWaitGraph(2, 2)

	first, err := g.Claim(0, 0)
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, g.Snapshot()[0][0])

	last := g.Release(0, 0)
	assert.True(t, last)
	assert.False(t, g.Snapshot()[0][0])
}

func TestWaitGraphReentrancy(t *testing.T) {
	g := NewWaitGraph(1, 1)

	first, err := g.Claim(0, 0)
	require.NoError(t, err)
	require.True(t, first)

	// Nested claims bump the recursion count without touching the edge
	for i := 0; i < 3; i++ {
		first, err = g.Claim(0, 0)
		require.NoError(t, err)
		assert.False(t, first)
	}
	assert.True(t, g.Snapshot()[0][0])

	for i := 0; i < 3; i++ {
		assert.False(t, g.Release(0, 0))
		assert.True(t, g.Snapshot()[0][0], "edge must survive nested releases")
	}
	assert.True(t, g.Release(0, 0))
	assert.False(t, g.Snapshot()[0][0])
}

func TestWaitGraphRefusesCycle(t *testing.T) {
	g := NewWaitGraph(2, 2)

	// Worker 0 holds lock 0 and waits on lock 1; worker 1 holds lock 1.
	mustClaim(t, g, 0, 0)
	mustClaim(t, g, 1, 1)
	mustClaim(t, g, 0, 1)

	// Worker 1 asking for lock 0 closes the cycle 0→1→0.
	_, err := g.Claim(1, 0)
	assert.ErrorIs(t, err, ErrWouldDeadlock)
	assert.False(t, g.Snapshot()[1][0], "refused claim must leave no edge behind")
}

func TestWaitGraphRefusesTransitiveCycle(t *testing.T) {
	g := NewWaitGraph(3, 3)

	// Chain: worker 0 waits on worker 1 (via lock 1), worker 1 waits on
	// worker 2 (via lock 2). Worker 2 asking for lock 0 closes the loop.
	mustClaim(t, g, 0, 0)
	mustClaim(t, g, 1, 1)
	mustClaim(t, g, 2, 2)
	mustClaim(t, g, 0, 1)
	mustClaim(t, g, 1, 2)

	_, err := g.Claim(2, 0)
	assert.ErrorIs(t, err, ErrWouldDeadlock)
}

func TestWaitGraphReleaseUnclaimedPanics(t *testing.T) {
	g := NewWaitGraph(1, 1)
	assert.Panics(t, func() { g.Release(0, 0) })
}

func TestWaitGraphIndexOutOfRangePanics(t *testing.T) {
	g := NewWaitGraph(2, 2)
	assert.Panics(t, func() { _, _ = g.Claim(2, 0) })
	assert.Panics(t, func() { _, _ = g.Claim(0, -1) })
}

func TestWaitGraphCorruptedEdgePanics(t *testing.T) {
	g := NewWaitGraph(1, 1)
	// Edge set with zero recursion count cannot happen through the public
	// API; a claim over it must fail loudly instead of silently repairing.
	g.edge[0] = true
	assert.Panics(t, func() { _, _ = g.Claim(0, 0) })
}

// TestWaitGraphStaysAcyclic drives a randomized sequential claim/release
// workload and cross-checks every decision against an independent
// union-style cycle detector over the snapshot.
func TestWaitGraphStaysAcyclic(t *testing.T) {
	const (
		workers    = 6
		locks      = 5
		iterations = 3000
	)

	g := NewWaitGraph(workers, locks)
	rng := rand.New(rand.NewPCG(42, 0))

	// held[t][l] tracks claim nesting as reported by Claim/Release.
	held := make([][]int, workers)
	for i := range held {
		held[i] = make([]int, locks)
	}

	for i := 0; i < iterations; i++ {
		wt := rng.IntN(workers)
		wl := rng.IntN(locks)

		if held[wt][wl] > 0 && rng.IntN(2) == 0 {
			last := g.Release(wt, wl)
			held[wt][wl]--
			assert.Equal(t, held[wt][wl] == 0, last)
			continue
		}

		first, err := g.Claim(wt, wl)
		if err != nil {
			require.ErrorIs(t, err, ErrWouldDeadlock)
			require.Zero(t, held[wt][wl], "reentrant claim can never be refused")
			// The refusal must be justified: force the edge in and verify
			// the independent detector does find a cycle.
			g.edge[g.idx(wt, wl)] = true
			assert.True(t, hasClaimCycle(g.Snapshot()), "claim refused although granting it was safe")
			g.edge[g.idx(wt, wl)] = false
			continue
		}

		assert.Equal(t, held[wt][wl] == 0, first)
		held[wt][wl]++
		assert.False(t, hasClaimCycle(g.Snapshot()), "grant introduced a cycle")
	}
}

func mustClaim(t *testing.T, g *WaitGraph, wt, wl int) {
	t.Helper()
	first, err := g.Claim(wt, wl)
	require.NoError(t, err)
	require.True(t, first)
}

// hasClaimCycle reports whether the claim matrix, read as a bipartite
// worker/lock graph, contains a cycle. Deliberately written against the
// snapshot only, with its own visited bookkeeping, so it shares no code
// with the production search.
func hasClaimCycle(snap [][]bool) bool {
	workers := len(snap)
	if workers == 0 {
		return false
	}
	locks := len(snap[0])

	// Node numbering: workers first, then locks.
	total := workers + locks
	adj := make([][]int, total)
	for wt := 0; wt < workers; wt++ {
		for wl := 0; wl < locks; wl++ {
			if snap[wt][wl] {
				adj[wt] = append(adj[wt], workers+wl)
				adj[workers+wl] = append(adj[workers+wl], wt)
			}
		}
	}

	visited := make([]bool, total)
	var walk func(node, parent int) bool
	walk = func(node, parent int) bool {
		visited[node] = true
		for _, next := range adj[node] {
			if next == parent {
				continue
			}
			if visited[next] {
				return true
			}
			if walk(next, node) {
				return true
			}
		}
		return false
	}

	for n := 0; n < total; n++ {
		if !visited[n] && walk(n, -1) {
			return true
		}
	}
	return false
}
