// Package output writes the per-peer DOT and plain-text tree dumps and
// the aggregate MPU.txt summary (spec §6), grounded in
// original_source/selfish_peer.py's print_tree/save_tree and
// run_selfish.py's output-directory handling.
package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/emicklei/dot"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aka2910/P2P-selfish-mining/internal/chainmodel"
)

// WriteDOT renders p's local block tree as a DOT graph: one node per
// block labeled "block_id : miner_id : parent_id : arrival_time"
// followed by one line per contained transaction (genesis, which has no
// parent, is labeled "block_id : miner_id"), and one edge per parent→
// child link (original_source/selfish_peer.py print_tree).
func WriteDOT(w io.Writer, tree map[uuid.UUID]*chainmodel.TreeNode, rootID uuid.UUID) error {
	g := dot.NewGraph(dot.Directed)
	nodes := make(map[uuid.UUID]dot.Node, len(tree))

	for id, n := range tree {
		nodes[id] = g.Node(id.String()).Label(nodeLabel(n))
	}

	visited := make(map[uuid.UUID]bool, len(tree))
	var walk func(id uuid.UUID)
	walk = func(id uuid.UUID) {
		if visited[id] {
			return
		}
		visited[id] = true
		n, ok := tree[id]
		if !ok {
			return
		}
		children := append([]uuid.UUID{}, n.Children...)
		sort.Slice(children, func(i, j int) bool { return children[i].String() < children[j].String() })
		for _, childID := range children {
			g.Edge(nodes[id], nodes[childID])
			walk(childID)
		}
	}
	walk(rootID)

	if _, err := io.WriteString(w, g.String()); err != nil {
		return errors.Wrap(err, "write dot graph")
	}
	return nil
}

func nodeLabel(n *chainmodel.TreeNode) string {
	b := n.Block
	if b.IsGenesis {
		return fmt.Sprintf("%s : %d", b.ID, b.MinerID)
	}
	label := fmt.Sprintf("%s : %d : %s : %.4f", b.ID, b.MinerID, b.ParentID, n.Arrival)
	for _, tx := range b.Transactions {
		label += "\n" + tx.String()
	}
	return label
}
