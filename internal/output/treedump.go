package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/aka2910/P2P-selfish-mining/internal/peer"
)

// WriteTreeDump writes p's plain-text summary: peer id, blocks created,
// blocks ending in its own main chain, CPU/speed classification, the
// ratio of the two (or "Undefined" when nothing was created), and a
// DFS-ordered listing of (block hash, parent hash, arrival time) —
// original_source/selfish_peer.py save_tree, field-for-field.
func WriteTreeDump(w io.Writer, p peer.Participant, rootID uuid.UUID) error {
	numLongest := mainChainBlocksOwnedBy(p)

	fmt.Fprintln(w, "Peer ID : ", p.ID())
	fmt.Fprintln(w, "Number of blocks created : ", p.BlocksCreated())
	fmt.Fprintln(w, "Number of blocks ending in longest chain : ", numLongest)
	fmt.Fprintln(w, "CPU speed : ", p.CPULabel())
	fmt.Fprintln(w, "Node speed : ", p.SpeedLabel())
	if p.BlocksCreated() != 0 {
		fmt.Fprintln(w, "Ratio : ", float64(numLongest)/float64(p.BlocksCreated()))
	} else {
		fmt.Fprintln(w, "Ratio : Undefined")
	}

	tree := p.Tree()
	visited := make(map[uuid.UUID]bool, len(tree))
	var dfs func(id uuid.UUID)
	dfs = func(id uuid.UUID) {
		if visited[id] {
			return
		}
		visited[id] = true
		n, ok := tree[id]
		if !ok {
			return
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Block Hash : ", n.BlockID)
		if !n.Block.IsGenesis {
			fmt.Fprintln(w, "Parent Hash : ", n.Block.ParentID)
		}
		fmt.Fprintln(w, "Received at : ", n.Arrival)
		fmt.Fprintln(w)

		children := append([]uuid.UUID{}, n.Children...)
		sort.Slice(children, func(i, j int) bool { return children[i].String() < children[j].String() })
		for _, childID := range children {
			dfs(childID)
		}
	}
	dfs(rootID)
	return nil
}

// mainChainBlocksOwnedBy counts how many blocks on p's current tip chain
// (excluding genesis) were mined by p itself, walking backward through
// p's own tree (original_source/selfish_peer.py save_tree's
// curr_block/prev_block loop).
func mainChainBlocksOwnedBy(p peer.Participant) int {
	tree := p.Tree()
	count := 0
	cur, ok := tree[p.Tip().ID]
	for ok && !cur.Block.IsGenesis {
		if cur.Block.MinerID == p.ID() {
			count++
		}
		cur, ok = tree[cur.Block.ParentID]
	}
	return count
}
