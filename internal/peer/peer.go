package peer

import (
	"math/rand"

	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"

	"github.com/aka2910/P2P-selfish-mining/internal/chainmodel"
	"github.com/aka2910/P2P-selfish-mining/internal/network"
	"github.com/aka2910/P2P-selfish-mining/internal/simtime"
)

// Peer is an honest participant: it generates transactions, gossips them
// and mined blocks with duplicate suppression, mines candidate blocks
// against its own tip, and adopts the longest valid chain it has seen
// (spec §3, §4.3-§4.5).
type Peer struct {
	idNum        int
	Speed        network.Speed
	CPU          CPUClass
	HashingPower float64

	neighbors []int
	dir       Directory
	fabric    Transport
	sched     *simtime.Scheduler
	rng       *rand.Rand
	blocks    *chainmodel.BlockTable
	interval  float64 // target global block interval I

	pool    map[uuid.UUID]chainmodel.Transaction
	txNonce uint64

	fwdTx    map[int]mapset.Set
	fwdBlock map[int]mapset.Set

	tree    map[uuid.UUID]*chainmodel.TreeNode
	tip     *chainmodel.Block
	balance int64

	blocksCreated int
}

// New constructs an honest peer seeded with the shared genesis block. The
// block table is shared by every participant in the simulation (the
// "arena" of spec §9); neighbors are filled in afterward once the
// topology is built.
func New(id int, speed network.Speed, cpu CPUClass, hashingPower, interval float64, genesis *chainmodel.Block, blocks *chainmodel.BlockTable, dir Directory, fabric Transport, sched *simtime.Scheduler, rng *rand.Rand) *Peer {
	p := &Peer{
		idNum:        id,
		Speed:        speed,
		CPU:          cpu,
		HashingPower: hashingPower,
		interval:     interval,
		dir:          dir,
		fabric:       fabric,
		sched:        sched,
		rng:          rng,
		blocks:       blocks,
		pool:         make(map[uuid.UUID]chainmodel.Transaction),
		fwdTx:        make(map[int]mapset.Set),
		fwdBlock:     make(map[int]mapset.Set),
		tree:         make(map[uuid.UUID]*chainmodel.TreeNode),
		tip:          genesis,
	}
	p.tree[genesis.ID] = &chainmodel.TreeNode{BlockID: genesis.ID, Block: genesis, Arrival: sched.Now()}
	return p
}

// ID implements Agent.
func (p *Peer) ID() int { return p.idNum }

// SetNeighbors installs the peer's neighbor set, computed by the network
// topology builder.
func (p *Peer) SetNeighbors(neighbors []int) { p.neighbors = neighbors }

// Tip returns the peer's current longest-chain tip.
func (p *Peer) Tip() *chainmodel.Block { return p.tip }

// Balance returns the peer's own balance as of its current tip.
func (p *Peer) Balance() int64 { return p.balance }

// BlocksCreated returns the number of mining attempts that committed
// successfully (spec §9 open question 2: counted after the race check).
func (p *Peer) BlocksCreated() int { return p.blocksCreated }

// Tree exposes the peer's local tree for output/statistics use.
func (p *Peer) Tree() map[uuid.UUID]*chainmodel.TreeNode { return p.tree }

// SpeedLabel renders the peer's link-speed classification the way the
// original tree dumps do ("slow"/"fast").
func (p *Peer) SpeedLabel() string {
	if p.Speed == network.SpeedFast {
		return "fast"
	}
	return "slow"
}

// CPULabel renders the peer's CPU classification the way the original
// tree dumps do ("low"/"high").
func (p *Peer) CPULabel() string {
	if p.CPU == CPUHigh {
		return "high"
	}
	return "low"
}

func (p *Peer) neighborSet(n int, table map[int]mapset.Set) mapset.Set {
	s, ok := table[n]
	if !ok {
		s = mapset.NewThreadUnsafeSet()
		table[n] = s
	}
	return s
}

// --- Transaction generation & gossip (spec §4.3, §4.4) ---

// GenerateTransactions is the perpetual per-peer transaction-generation
// process: sleeps for an Exp(Ttx) interval, mints a random transaction to
// a random non-self peer, and forwards it (spec §4.4).
func (p *Peer) GenerateTransactions(meanInterarrival float64, populationSize int) {
	if meanInterarrival <= 0 {
		return // Ttx = infinity: never generate (spec §8 scenario 1)
	}
	var step func(s *simtime.Scheduler)
	step = func(s *simtime.Scheduler) {
		receiver := p.idNum
		for receiver == p.idNum {
			receiver = p.rng.Intn(populationSize)
		}
		coins := int64(1 + p.rng.Intn(5))
		p.txNonce++
		tx := chainmodel.NewTransaction(p.idNum, receiver, coins, s.Now(), p.txNonce)
		p.pool[tx.ID] = tx
		p.forwardTransaction(tx)

		s.Timeout(p.rng.ExpFloat64()*meanInterarrival, step)
	}
	p.sched.Timeout(p.rng.ExpFloat64()*meanInterarrival, step)
}

// ReceiveTransaction implements Agent: add to the pool, suppress the
// return path to the sender, and forward onward (spec §4.3).
func (p *Peer) ReceiveTransaction(fromID int, tx chainmodel.Transaction) {
	if _, known := p.pool[tx.ID]; known {
		return
	}
	p.pool[tx.ID] = tx
	if fromID >= 0 {
		p.neighborSet(fromID, p.fwdTx).Add(tx.ID)
	}
	p.forwardTransaction(tx)
}

func (p *Peer) forwardTransaction(tx chainmodel.Transaction) {
	for _, n := range p.neighbors {
		set := p.neighborSet(n, p.fwdTx)
		if set.Contains(tx.ID) {
			continue
		}
		set.Add(tx.ID)
		p.sendTransaction(n, tx)
	}
}

func (p *Peer) sendTransaction(to int, tx chainmodel.Transaction) {
	delay := p.fabric.Latency(p.idNum, to, chainmodel.TxSizeKb)
	from := p.idNum
	dir := p.dir
	p.sched.Timeout(delay, func(s *simtime.Scheduler) {
		dir.Agent(to).ReceiveTransaction(from, tx)
	})
}

// --- Block gossip (shared by honest peers and the adversary's releases) ---

// Broadcast forwards blk to every neighbor that has not already seen it on
// that edge (spec §4.3's gossip suppression, reused for blocks).
func (p *Peer) Broadcast(blk *chainmodel.Block) {
	p.broadcastExcept(blk, -1)
}

func (p *Peer) broadcastExcept(blk *chainmodel.Block, exceptFrom int) {
	for _, n := range p.neighbors {
		set := p.neighborSet(n, p.fwdBlock)
		if set.Contains(blk.ID) {
			continue
		}
		set.Add(blk.ID)
		p.sendBlock(n, blk)
	}
	if exceptFrom >= 0 {
		p.neighborSet(exceptFrom, p.fwdBlock).Add(blk.ID)
	}
}

func (p *Peer) sendBlock(to int, blk *chainmodel.Block) {
	delay := p.fabric.Latency(p.idNum, to, float64(blk.SizeKb()))
	from := p.idNum
	dir := p.dir
	p.sched.Timeout(delay, func(s *simtime.Scheduler) {
		dir.Agent(to).ReceiveBlock(from, blk)
	})
}

// --- Tree maintenance (spec §4.5) ---

// LinkResult reports what happened when a candidate block was offered to
// the peer's local tree.
type LinkResult struct {
	Accepted     bool
	TipImproved  bool
	Node         *chainmodel.TreeNode
}

// Link validates blk against its parent and, if valid, registers it in
// the shared block table and this peer's local tree, returning whether
// it was linked and whether it improves on the current tip using the
// later-timestamp tie-break (spec §4.5, §9 open question 1). It is
// exported so the adversary (internal/adversary) can reuse the exact
// honest linking/tie-break behavior for the public-tip bookkeeping it
// inherits from Peer.
func (p *Peer) Link(blk *chainmodel.Block) LinkResult {
	if _, dup := p.tree[blk.ID]; dup {
		return LinkResult{}
	}
	parentNode, knownParent := p.tree[blk.ParentID]
	if !knownParent {
		return LinkResult{}
	}
	if !blk.Validate(parentNode.Block) {
		return LinkResult{}
	}
	p.registerInTree(blk, parentNode)

	improved := p.improves(blk)
	if improved {
		p.AdoptTip(blk)
	}
	return LinkResult{Accepted: true, TipImproved: improved, Node: p.tree[blk.ID]}
}

// improves reports whether blk would win the longest-chain comparison
// against the peer's current tip, using the later-timestamp tie-break at
// equal height (spec §4.5, §9 open question 1).
func (p *Peer) improves(blk *chainmodel.Block) bool {
	if blk.Height > p.tip.Height {
		return true
	}
	return blk.Height == p.tip.Height && blk.Timestamp > p.tip.Timestamp
}

// AdoptTip sets blk as the peer's current tip and refreshes its own
// balance from blk's snapshot, without touching the tree. Exported for
// the adversary's private-chain release logic, which adopts a
// already-registered block as the new public tip (spec §4.6).
func (p *Peer) AdoptTip(blk *chainmodel.Block) {
	p.tip = blk
	p.balance = blk.Balances.Get(p.idNum)
}

// registerInTree links blk under parentNode in both the shared block
// table and this peer's own tree, without touching the tip.
func (p *Peer) registerInTree(blk *chainmodel.Block, parentNode *chainmodel.TreeNode) {
	p.blocks.Put(blk)
	node := &chainmodel.TreeNode{BlockID: blk.ID, Block: blk, Arrival: p.sched.Now()}
	p.tree[blk.ID] = node
	if !containsID(parentNode.Children, blk.ID) {
		parentNode.Children = append(parentNode.Children, blk.ID)
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// RegisterMined links a block this peer (or the adversary embedding it)
// has just successfully mined into its own tree and counts it toward
// BlocksCreated (spec §9 open question 2: counted once the race check
// has succeeded, i.e. here). It does not touch the tip — callers that
// want the block to become the peer's own tip call AdoptTip as well.
func (p *Peer) RegisterMined(blk *chainmodel.Block) {
	parentNode, ok := p.tree[blk.ParentID]
	if !ok {
		return
	}
	p.registerInTree(blk, parentNode)
	p.blocksCreated++
}

// commitBlock is the honest-mining path: register the mined block and
// adopt it as the new tip in one step (spec §4.5 step 6).
func (p *Peer) commitBlock(blk *chainmodel.Block) {
	p.RegisterMined(blk)
	p.AdoptTip(blk)
}

// ReceiveBlock implements Agent for honest peers (spec §4.5 "Receive
// block"): link into the tree, and if the tip improved, adopt it, spawn a
// new mining attempt, and forward to neighbors.
func (p *Peer) ReceiveBlock(fromID int, blk *chainmodel.Block) {
	result := p.Link(blk)
	if fromID >= 0 {
		p.neighborSet(fromID, p.fwdBlock).Add(blk.ID)
	}
	if !result.Accepted {
		return
	}
	if result.TipImproved {
		p.broadcastExcept(blk, fromID)
		p.Mine()
	}
}

// --- Mining (spec §4.5) ---

// candidateBlock implements steps 1-4 of §4.5's mining procedure: select
// untouched transactions from the pool, sample a subset, and build+
// validate a candidate on top of base.
func (p *Peer) candidateBlock(base *chainmodel.Block) (*chainmodel.Block, bool) {
	chainTxs := p.blocks.ChainTransactions(base)
	available := make([]chainmodel.Transaction, 0, len(p.pool))
	for id, tx := range p.pool {
		if !chainTxs.Contains(id) {
			available = append(available, tx)
		}
	}
	limit := len(available)
	if limit > 999 {
		limit = 999
	}
	m := 0
	if limit > 0 {
		m = p.rng.Intn(limit + 1)
	}
	p.rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})
	chosen := available[:m]

	candidate := chainmodel.NewCandidate(base, p.sched.Now(), chosen, p.idNum)
	if !candidate.Validate(base) {
		return nil, false
	}
	return candidate, true
}

// MineAttempt runs steps 1-6 of §4.5 against base: build a candidate,
// sleep for the sampled PoW delay, and invoke onSuccess only if
// currentBase() still equals base.ID when the delay elapses (the "tip
// has not changed" race check). onSuccess is responsible for committing
// the block and deciding what happens next — honest peers and the
// adversary do different things here (spec §4.6).
func (p *Peer) MineAttempt(base *chainmodel.Block, currentBase func() uuid.UUID, onSuccess func(*chainmodel.Block)) {
	candidate, ok := p.candidateBlock(base)
	if !ok {
		return
	}
	// T_k = Exp(hashing_power / I): rate = hashing_power/I, mean = I/hashing_power.
	rate := p.HashingPower / p.interval
	tk := p.rng.ExpFloat64() / rate
	baseID := base.ID
	p.sched.Timeout(tk, func(s *simtime.Scheduler) {
		if currentBase() != baseID {
			return // race lost: discard silently (spec §4.5 step 6, §7)
		}
		onSuccess(candidate)
	})
}

// Mine starts a standard honest mining attempt on top of the current tip
// (spec §4.5): on success, the block is committed locally, broadcast, and
// a fresh mining attempt is spawned on the new tip.
func (p *Peer) Mine() {
	base := p.tip
	p.MineAttempt(base, func() uuid.UUID { return p.tip.ID }, func(blk *chainmodel.Block) {
		p.commitBlock(blk)
		p.Broadcast(blk)
		p.Mine()
	})
}
