package peer

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aka2910/P2P-selfish-mining/internal/chainmodel"
	"github.com/aka2910/P2P-selfish-mining/internal/network"
	"github.com/aka2910/P2P-selfish-mining/internal/simtime"
)

type stubDirectory struct {
	agents map[int]Agent
}

func (d *stubDirectory) Agent(id int) Agent { return d.agents[id] }

func newPeer(t *testing.T, id int, neighbors []int) (*Peer, *stubDirectory, *simtime.Scheduler) {
	t.Helper()
	genesis := chainmodel.NewGenesis([]int{0, 1, 2})
	blocks := chainmodel.NewBlockTable(genesis)
	sched := simtime.New(nil)
	rng := rand.New(rand.NewSource(11))
	fabric := network.NewFabric(rng, []network.Speed{network.SpeedFast, network.SpeedFast, network.SpeedFast})
	dir := &stubDirectory{agents: make(map[int]Agent)}

	p := New(id, network.SpeedFast, CPUHigh, 0.5, 600, genesis, blocks, dir, fabric, sched, rng)
	p.SetNeighbors(neighbors)
	dir.agents[id] = p
	return p, dir, sched
}

func TestLinkAcceptsValidChildOfKnownParent(t *testing.T) {
	p, _, _ := newPeer(t, 0, nil)
	genesis := p.Tip()
	blk := chainmodel.NewCandidate(genesis, 1.0, nil, 0)
	require.True(t, blk.Validate(genesis))

	result := p.Link(blk)

	require.True(t, result.Accepted)
	require.True(t, result.TipImproved)
	require.Equal(t, blk.ID, p.Tip().ID)
}

func TestLinkRejectsDuplicateBlock(t *testing.T) {
	p, _, _ := newPeer(t, 0, nil)
	genesis := p.Tip()
	blk := chainmodel.NewCandidate(genesis, 1.0, nil, 0)
	require.True(t, blk.Validate(genesis))

	first := p.Link(blk)
	second := p.Link(blk)

	require.True(t, first.Accepted)
	require.False(t, second.Accepted)
}

func TestLinkRejectsUnknownParent(t *testing.T) {
	p, _, _ := newPeer(t, 0, nil)
	genesis := p.Tip()
	orphanParent := chainmodel.NewCandidate(genesis, 1.0, nil, 0)
	require.True(t, orphanParent.Validate(genesis))
	orphanChild := chainmodel.NewCandidate(orphanParent, 2.0, nil, 0)
	require.True(t, orphanChild.Validate(orphanParent))

	result := p.Link(orphanChild)

	require.False(t, result.Accepted)
}

func TestLinkBreaksEqualHeightTieByLaterTimestamp(t *testing.T) {
	p, _, _ := newPeer(t, 0, nil)
	genesis := p.Tip()
	earlier := chainmodel.NewCandidate(genesis, 1.0, nil, 0)
	require.True(t, earlier.Validate(genesis))
	later := chainmodel.NewCandidate(genesis, 2.0, nil, 1)
	require.True(t, later.Validate(genesis))

	p.Link(earlier)
	require.Equal(t, earlier.ID, p.Tip().ID)

	result := p.Link(later)
	require.True(t, result.TipImproved)
	require.Equal(t, later.ID, p.Tip().ID)
}

func TestLinkDoesNotAdoptShorterOrEarlierBlock(t *testing.T) {
	p, _, _ := newPeer(t, 0, nil)
	genesis := p.Tip()
	later := chainmodel.NewCandidate(genesis, 2.0, nil, 0)
	require.True(t, later.Validate(genesis))
	earlier := chainmodel.NewCandidate(genesis, 1.0, nil, 1)
	require.True(t, earlier.Validate(genesis))

	p.Link(later)
	result := p.Link(earlier)

	require.True(t, result.Accepted)
	require.False(t, result.TipImproved)
	require.Equal(t, later.ID, p.Tip().ID)
}

func TestRegisterMinedDoesNotMoveTip(t *testing.T) {
	p, _, _ := newPeer(t, 0, nil)
	genesis := p.Tip()
	blk := chainmodel.NewCandidate(genesis, 1.0, nil, 0)
	require.True(t, blk.Validate(genesis))

	p.RegisterMined(blk)

	require.Equal(t, genesis.ID, p.Tip().ID)
	require.Equal(t, 1, p.BlocksCreated())
	node, ok := p.Tree()[blk.ID]
	require.True(t, ok)
	require.Equal(t, blk.ID, node.BlockID)
}

func TestAdoptTipUpdatesBalanceFromSnapshot(t *testing.T) {
	p, _, _ := newPeer(t, 0, nil)
	genesis := p.Tip()
	blk := chainmodel.NewCandidate(genesis, 1.0, nil, 0)
	require.True(t, blk.Validate(genesis))

	p.RegisterMined(blk)
	p.AdoptTip(blk)

	require.Equal(t, blk.ID, p.Tip().ID)
	require.Equal(t, int64(50), p.Balance())
}

func TestMineAttemptDiscardsOnRaceLoss(t *testing.T) {
	p, _, sched := newPeer(t, 0, nil)
	genesis := p.Tip()
	other := chainmodel.NewCandidate(genesis, 0.5, nil, 1)
	require.True(t, other.Validate(genesis))
	called := false

	p.MineAttempt(genesis, func() uuid.UUID { return other.ID }, func(*chainmodel.Block) {
		called = true
	})
	sched.RunUntil(1e9)

	require.False(t, called)
}

func TestMineAttemptCommitsOnRaceWin(t *testing.T) {
	p, _, sched := newPeer(t, 0, nil)
	genesis := p.Tip()
	var got *chainmodel.Block

	p.MineAttempt(genesis, func() uuid.UUID { return genesis.ID }, func(blk *chainmodel.Block) {
		got = blk
	})
	sched.RunUntil(1e9)

	require.NotNil(t, got)
	require.Equal(t, genesis.ID, got.ParentID)
}

func TestBroadcastSuppressesDuplicateSendsPerNeighbor(t *testing.T) {
	p, dir, sched := newPeer(t, 0, []int{1})
	received := 0
	dir.agents[1] = recordingAgent{onBlock: func(int, *chainmodel.Block) { received++ }}

	genesis := p.Tip()
	blk := chainmodel.NewCandidate(genesis, 1.0, nil, 0)
	require.True(t, blk.Validate(genesis))

	p.Broadcast(blk)
	p.Broadcast(blk)
	sched.RunUntil(100000)

	require.Equal(t, 1, received)
}

type recordingAgent struct {
	onBlock func(int, *chainmodel.Block)
}

func (r recordingAgent) ID() int { return -1 }
func (r recordingAgent) ReceiveTransaction(int, chainmodel.Transaction) {}
func (r recordingAgent) ReceiveBlock(fromID int, blk *chainmodel.Block) {
	if r.onBlock != nil {
		r.onBlock(fromID, blk)
	}
}
