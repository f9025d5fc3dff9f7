package chainmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockTablePutIsIdempotent(t *testing.T) {
	genesis := NewGenesis([]int{0})
	table := NewBlockTable(genesis)
	blk := NewCandidate(genesis, 1.0, nil, 0)
	require.True(t, blk.Validate(genesis))

	table.Put(blk)
	table.Put(blk)

	got, ok := table.Get(blk.ID)
	require.True(t, ok)
	require.Equal(t, blk, got)
}

func TestBlockTableGetMissingReturnsFalse(t *testing.T) {
	genesis := NewGenesis([]int{0})
	table := NewBlockTable(genesis)
	_, ok := table.Get(NewTransaction(0, 0, 1, 0, 0).ID)
	require.False(t, ok)
}

func TestChainTransactionsWalksBackToGenesis(t *testing.T) {
	genesis := NewGenesis([]int{0, 1})
	table := NewBlockTable(genesis)

	funding := NewCandidate(genesis, 0.5, nil, 0) // gives peer 0 a coinbase to spend
	require.True(t, funding.Validate(genesis))
	table.Put(funding)

	tx1 := NewTransaction(0, 1, 1, 0, 1)
	blk1 := NewCandidate(funding, 1.0, []Transaction{tx1}, 0)
	require.True(t, blk1.Validate(funding))
	table.Put(blk1)

	tx2 := NewTransaction(1, 0, 1, 1, 2)
	blk2 := NewCandidate(blk1, 2.0, []Transaction{tx2}, 1)
	require.True(t, blk2.Validate(blk1))
	table.Put(blk2)

	seen := table.ChainTransactions(blk2)

	require.True(t, seen.Contains(tx1.ID))
	require.True(t, seen.Contains(tx2.ID))
}

func TestChainTransactionsStopsAtUnknownParent(t *testing.T) {
	genesis := NewGenesis([]int{0})
	table := NewBlockTable(genesis)
	detachedParent := NewCandidate(genesis, 1.0, nil, 0)
	require.True(t, detachedParent.Validate(genesis))
	// note: detachedParent itself is never Put into table

	orphan := NewCandidate(detachedParent, 2.0, nil, 0)
	require.True(t, orphan.Validate(detachedParent))

	seen := table.ChainTransactions(orphan)
	require.Equal(t, 0, seen.Cardinality())
}
