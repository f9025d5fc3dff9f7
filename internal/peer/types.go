// Package peer implements the honest participant of spec §4.3-§4.5:
// gossip with duplicate suppression, transaction generation, PoW mining
// simulation, and fork-tolerant tree maintenance with longest-chain
// selection. The adversary (internal/adversary) is built by composing a
// *Peer and overriding its mining/receive behavior, per spec §9's
// "variant of the peer capability set, not a subclass" design note.
package peer

import (
	"github.com/google/uuid"

	"github.com/aka2910/P2P-selfish-mining/internal/chainmodel"
)

// CPUClass classifies a peer's relative hashing-power tier (spec §3).
type CPUClass int

const (
	CPULow CPUClass = iota
	CPUHigh
)

// Agent is the capability every dispatchable participant exposes: its id
// and the two receive handlers the network delivers to. It is
// implemented by *Peer and, with a different receive handler, by
// *adversary.Adversary. Mining is not part of the interface; each
// concrete type starts it through its own Mine method.
type Agent interface {
	ID() int
	ReceiveTransaction(fromID int, tx chainmodel.Transaction)
	ReceiveBlock(fromID int, blk *chainmodel.Block)
}

// Directory resolves peer ids to their dispatchable Agent, standing in
// for real network addressing (spec §1 Non-goals: no real network I/O).
type Directory interface {
	Agent(id int) Agent
}

// Transport is the subset of the network fabric a peer needs: per-send
// latency (spec §4.2).
type Transport interface {
	Latency(from, to int, sizeKb float64) float64
}

// Participant is the read-only surface the simulation driver and output
// writers need from any dispatchable peer — honest or adversarial alike,
// since *Adversary promotes all of these from its embedded *Peer. It
// exists so internal/simulation and internal/output never need to
// import internal/adversary directly.
type Participant interface {
	Agent
	Tip() *chainmodel.Block
	Balance() int64
	BlocksCreated() int
	Tree() map[uuid.UUID]*chainmodel.TreeNode
	SpeedLabel() string
	CPULabel() string
}
