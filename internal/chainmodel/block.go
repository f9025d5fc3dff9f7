package chainmodel

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/aka2910/P2P-selfish-mining/internal/ledger"
)

// blockNamespace seeds the deterministic block-id digest (see
// SPEC_FULL.md §3, Identifier scheme). Distinct from txNamespace so a
// transaction and a block can never collide by accident.
var blockNamespace = uuid.MustParse("c9b6a9f2-5a0a-4e47-9a0e-9b7a9b3a7a2f")

// Block is immutable after NewCandidate/Validate have run. The parent is
// referenced by id rather than by pointer (spec §9, "arena-plus-index"):
// a central block table keyed by id is the only owner, which sidesteps
// the parent/child cyclic-reference problem entirely.
type Block struct {
	ID          uuid.UUID
	ParentID    uuid.UUID // zero value (uuid.Nil) only for genesis
	IsGenesis   bool
	Timestamp   float64
	Transactions []Transaction
	MinerID     int
	Height      int64

	// Balances is the cumulative snapshot after this block's transactions
	// and coinbase have been applied. It is populated by Validate and
	// must not be mutated afterward (Ownership, spec §3).
	Balances ledger.Snapshot
}

// NewGenesis constructs the single shared genesis block. Its balance
// snapshot starts at zero for every participant; no coinbase is applied
// (spec §8: "genesis whose initial balances are zero").
func NewGenesis(participantIDs []int) *Block {
	bal := make(ledger.Snapshot, len(participantIDs))
	for _, id := range participantIDs {
		bal[id] = 0
	}
	return &Block{
		ID:        uuid.NewSHA1(blockNamespace, []byte("genesis")),
		IsGenesis: true,
		Height:    0,
		Balances:  bal,
	}
}

// NewCandidate builds an unvalidated block on top of parent. The caller
// must call Validate before accepting it into any tree; size and id are
// computed here since they only depend on the (fixed) content, not on
// validation outcome.
func NewCandidate(parent *Block, timestamp float64, txs []Transaction, minerID int) *Block {
	sorted := SortedTransactions(txs)
	b := &Block{
		ID:           deriveBlockID(parent.ID, timestamp, sorted, minerID),
		ParentID:     parent.ID,
		Timestamp:    timestamp,
		Transactions: sorted,
		MinerID:      minerID,
		Height:       parent.Height + 1,
	}
	return b
}

func deriveBlockID(parentID uuid.UUID, timestamp float64, sorted []Transaction, minerID int) uuid.UUID {
	data := fmt.Sprintf("%s|%.9f|%d", parentID, timestamp, minerID)
	for _, tx := range sorted {
		data += "|" + tx.ID.String()
	}
	return uuid.NewSHA1(blockNamespace, []byte(data))
}

// SortedTransactions returns txs in a fixed, deterministic order (by id)
// so that balance application (and therefore the resulting snapshot and
// block id) are reproducible regardless of the unordered set the caller
// assembled them from (spec §3: "validated under a fixed iteration
// order").
func SortedTransactions(txs []Transaction) []Transaction {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	return sorted
}

// SizeKb is the wire size of the block: one unit of TxSizeKb per
// transaction plus one for the (virtual) coinbase transaction (spec §3).
func (b *Block) SizeKb() int64 {
	return TxSizeKb * int64(len(b.Transactions)+1)
}

// Validate checks every invariant in spec §3 against the parent's
// balance snapshot and, on success, populates b.Balances (NewCandidate
// blocks are not valid members of any tree until this returns true).
// Every peer that receives a shared block validates it again; each call
// against the same parent computes an identical snapshot and replaces
// b.Balances with it.
func (b *Block) Validate(parent *Block) bool {
	snapshot := parent.Balances.Clone()
	transfers := make([]ledger.Transfer, len(b.Transactions))
	for i, tx := range b.Transactions {
		transfers[i] = ledger.Transfer{
			Sender:   tx.Sender,
			Receiver: tx.Receiver,
			Amount:   tx.Amount,
		}
	}
	if !snapshot.Apply(transfers, b.MinerID) {
		return false
	}
	b.Balances = snapshot
	return true
}

func (b *Block) String() string {
	return b.ID.String()
}
