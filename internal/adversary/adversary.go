// Package adversary implements the selfish and stubborn mining private-
// chain state machines of spec §4.6. An Adversary is not a distinct peer
// implementation: it composes an honest *peer.Peer and overrides only
// its mining-completion and block-receive handlers, reusing gossip,
// transaction generation, validation, and tree maintenance verbatim
// (spec §9: "variant of the peer capability set, not a subclass").
package adversary

import (
	"github.com/google/uuid"

	"github.com/aka2910/P2P-selfish-mining/internal/chainmodel"
	"github.com/aka2910/P2P-selfish-mining/internal/peer"
)

// Mode selects which private-chain release policy governs the
// adversary's reaction to a public block that catches up its lead.
type Mode int

const (
	Selfish Mode = iota
	Stubborn
)

// Adversary wraps an honest *peer.Peer, adding the lead counter, private
// chain, and hidden mining tip of spec §3's "Peer state... Adversary
// adds" clause.
type Adversary struct {
	*peer.Peer
	mode Mode

	lead         int
	privateChain []*chainmodel.Block // oldest first, unreleased
	hiddenTip    *chainmodel.Block
}

// New wraps p as an adversary running in the given mode. p must already
// be seeded with the shared genesis block as its tip (spec §3).
func New(p *peer.Peer, mode Mode) *Adversary {
	return &Adversary{
		Peer:      p,
		mode:      mode,
		hiddenTip: p.Tip(),
	}
}

// Lead exposes the current lead counter, for statistics and tests.
func (a *Adversary) Lead() int { return a.lead }

// Mode reports which release policy this adversary runs under.
func (a *Adversary) Mode() Mode { return a.mode }

// HiddenTip exposes the private mining base, for statistics and tests.
func (a *Adversary) HiddenTip() *chainmodel.Block { return a.hiddenTip }

// ReceiveBlock implements peer.Agent, replacing the honest handler with
// the release state machine of spec §4.6. The adversary never forwards
// a block it merely relays (§9 open question resolution) — only blocks
// released from its own private chain go back out, via Broadcast below.
func (a *Adversary) ReceiveBlock(fromID int, blk *chainmodel.Block) {
	result := a.Peer.Link(blk)
	if !result.Accepted {
		return
	}
	if !result.TipImproved {
		return // stored but not adopted: no release, no re-mine
	}
	a.onPublicAdvance()
	a.Mine()
}

// onPublicAdvance applies spec §4.6's table for "receiving a public
// block that strictly improves the public tip (or ties it)", keyed on
// the lead value in effect just before this event.
func (a *Adversary) onPublicAdvance() {
	switch {
	case a.lead == 1:
		a.release(1)
		a.privateChain = nil
		a.lead = -1
	case a.mode == Selfish && a.lead == 2:
		a.release(len(a.privateChain))
		a.Peer.AdoptTip(a.hiddenTip)
		a.privateChain = nil
		a.lead = 0
	case a.lead >= 2:
		a.release(1)
		a.lead--
	case a.lead == 0:
		a.hiddenTip = a.Peer.Tip()
		a.privateChain = nil
	case a.lead == -1:
		a.lead = 0
		a.privateChain = nil
		a.hiddenTip = a.Peer.Tip()
	}
}

// release broadcasts the oldest n still-unreleased private blocks, in
// order, dropping each from privateChain as it goes (spec §4.6: "all
// released blocks are pushed through the normal gossip layer with the
// adversary as sender").
func (a *Adversary) release(n int) {
	for i := 0; i < n && len(a.privateChain) > 0; i++ {
		blk := a.privateChain[0]
		a.privateChain = a.privateChain[1:]
		a.Peer.Broadcast(blk)
	}
}

// Mine starts a mining attempt on the adversary's private base —
// hiddenTip, not the public tip — applying the on-mined table of spec
// §4.6 when the race check succeeds. It overrides the embedded Peer's
// Mine so the driver can start every participant's mining loop the same
// way regardless of whether it is honest or adversarial.
func (a *Adversary) Mine() {
	base := a.hiddenTip
	a.Peer.MineAttempt(base, func() uuid.UUID { return a.hiddenTip.ID }, a.onMined)
}

// onMined implements spec §4.6's "on mining a new private block" table.
// The block is always inserted into the adversary's own tree; whether it
// is revealed immediately depends on mode and the lead just before this
// block was mined.
func (a *Adversary) onMined(blk *chainmodel.Block) {
	a.Peer.RegisterMined(blk)

	switch {
	case a.mode == Selfish && a.lead == -1:
		a.lead = 0
		a.privateChain = nil
		a.hiddenTip = blk
		a.Peer.AdoptTip(blk)
		a.Peer.Broadcast(blk)
	case a.mode == Stubborn && a.lead == -1:
		a.lead = 1
		a.privateChain = append(a.privateChain, blk)
		a.hiddenTip = blk
	default:
		a.privateChain = append(a.privateChain, blk)
		a.hiddenTip = blk
		a.lead++
	}
	a.Mine()
}
