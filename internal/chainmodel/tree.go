package chainmodel

import (
	"github.com/google/uuid"

	mapset "github.com/deckarep/golang-set"
)

// TreeNode is the mutable wrapper a peer attaches to a Block once it has
// been validated and linked into that peer's local tree (spec §3). It
// never owns a pointer to its parent or children's Blocks directly —
// only ids — so that blocks shared across many peers' trees never form a
// reference cycle (spec §9, arena-plus-index).
type TreeNode struct {
	BlockID  uuid.UUID
	Block    *Block
	Arrival  float64 // local virtual time this node first appeared
	Children []uuid.UUID
}

// BlockTable is the central "arena": every block that has been linked
// into any peer's tree lives here exactly once, keyed by id (mining
// candidates that lose their race are never added). Tree nodes refer to
// their parent and children by id (Block.ParentID / TreeNode.Children)
// and ChainTransactions walks parents through this table, which is how
// spec §9 avoids a parent/child cyclic reference; each TreeNode still
// carries a pointer to its own Block.
type BlockTable struct {
	blocks map[uuid.UUID]*Block
}

// NewBlockTable creates an empty table seeded with genesis.
func NewBlockTable(genesis *Block) *BlockTable {
	t := &BlockTable{blocks: make(map[uuid.UUID]*Block)}
	t.blocks[genesis.ID] = genesis
	return t
}

// Put registers a block in the shared arena. Blocks are logically
// immutable and may be put more than once (by different peers
// discovering the same block); re-registering the same id is a no-op.
func (t *BlockTable) Put(b *Block) {
	if _, ok := t.blocks[b.ID]; ok {
		return
	}
	t.blocks[b.ID] = b
}

// Get looks up a block by id, returning (nil, false) if unknown.
func (t *BlockTable) Get(id uuid.UUID) (*Block, bool) {
	b, ok := t.blocks[id]
	return b, ok
}

// ChainTransactions returns the set of transaction ids appearing anywhere
// in the chain ending at tip (inclusive), walking back to genesis. Used
// by the mining step to exclude already-included transactions from a
// peer's candidate set (spec §4.5 step 1).
func (t *BlockTable) ChainTransactions(tip *Block) mapset.Set {
	seen := mapset.NewThreadUnsafeSet()
	b := tip
	for {
		for _, tx := range b.Transactions {
			seen.Add(tx.ID)
		}
		if b.IsGenesis {
			break
		}
		parent, ok := t.Get(b.ParentID)
		if !ok {
			break
		}
		b = parent
	}
	return seen
}
