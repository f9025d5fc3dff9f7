package network

import "math/rand"

// Topology is an adjacency list over participant indices 0..n-1. Index n-1
// (if present) is conventionally the adversary; see BuildTopology.
type Topology struct {
	Neighbors [][]int
}

func newTopology(n int) *Topology {
	return &Topology{Neighbors: make([][]int, n)}
}

func (t *Topology) addEdge(a, b int) {
	if a == b {
		return
	}
	if !contains(t.Neighbors[a], b) {
		t.Neighbors[a] = append(t.Neighbors[a], b)
	}
	if !contains(t.Neighbors[b], a) {
		t.Neighbors[b] = append(t.Neighbors[b], a)
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// BuildTopology generates the random-neighbor graph over the first
// honestCount participants (spec §4.2): each peer draws k in [4,8]
// distinct non-self neighbors (capped at population size), forming
// bidirectional edges. If the resulting graph is disconnected (tested by
// DFS from peer 0), every peer is disconnected and relinked into a
// ring-of-radius-2 topology. The adversary, if adversaryIdx >= 0, is
// attached afterward to a uniformly chosen subset of
// floor(zPercent*honestCount/100) honest peers.
func BuildTopology(rng *rand.Rand, honestCount int, adversaryIdx int, zPercent float64) *Topology {
	n := honestCount
	if adversaryIdx >= 0 {
		n = adversaryIdx + 1
	}
	t := newTopology(n)

	for peer := 0; peer < honestCount; peer++ {
		k := 4 + rng.Intn(5) // [4,8]
		if k > honestCount-1 {
			k = honestCount - 1
		}
		candidates := make([]int, 0, honestCount-1)
		for i := 0; i < honestCount; i++ {
			if i != peer {
				candidates = append(candidates, i)
			}
		}
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for i := 0; i < k && i < len(candidates); i++ {
			t.addEdge(peer, candidates[i])
		}
	}

	if !connected(t.Neighbors[:honestCount], honestCount) {
		reconnectRing(t, honestCount)
	}

	if adversaryIdx >= 0 && honestCount > 0 {
		count := int(zPercent * float64(honestCount) / 100)
		if count > honestCount {
			count = honestCount
		}
		order := rng.Perm(honestCount)
		for i := 0; i < count; i++ {
			t.addEdge(adversaryIdx, order[i])
		}
	}

	return t
}

// connected reports whether every honest peer is reachable from peer 0
// via DFS (spec §4.2).
func connected(adj [][]int, n int) bool {
	visited := make([]bool, n)
	var stack []int
	stack = append(stack, 0)
	visited[0] = true
	count := 1
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range adj[cur] {
			if nb < n && !visited[nb] {
				visited[nb] = true
				count++
				stack = append(stack, nb)
			}
		}
	}
	return count == n
}

// reconnectRing wipes every honest peer's neighbor set and relinks them
// in a ring of radius 2 (offsets ±1, ±2 modulo n) — the deterministic
// repair topology of spec §4.2 / §8 scenario 6.
func reconnectRing(t *Topology, n int) {
	for i := 0; i < n; i++ {
		t.Neighbors[i] = nil
	}
	for i := 0; i < n; i++ {
		for _, off := range []int{-2, -1, 1, 2} {
			j := ((i+off)%n + n) % n
			t.addEdge(i, j)
		}
	}
}
