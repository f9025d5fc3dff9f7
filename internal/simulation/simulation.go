package simulation

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/aka2910/P2P-selfish-mining/internal/adversary"
	"github.com/aka2910/P2P-selfish-mining/internal/chainmodel"
	"github.com/aka2910/P2P-selfish-mining/internal/network"
	"github.com/aka2910/P2P-selfish-mining/internal/peer"
	"github.com/aka2910/P2P-selfish-mining/internal/simtime"
)

// registry resolves participant ids to their dispatchable Agent,
// implementing peer.Directory. It is populated after every peer and the
// adversary (if any) have been constructed, since each one is handed the
// registry (not a finished map) at construction time.
type registry struct {
	agents map[int]peer.Agent
}

func newRegistry() *registry { return &registry{agents: make(map[int]peer.Agent)} }

func (r *registry) Agent(id int) peer.Agent { return r.agents[id] }

// Simulation is a fully wired, not-yet-run population: genesis, block
// table, fabric, topology, honest peers, and an optional adversary, all
// sharing one scheduler.
type Simulation struct {
	Config Config

	Scheduler *simtime.Scheduler
	Genesis   *chainmodel.Block
	Blocks    *chainmodel.BlockTable
	Fabric    *network.Fabric
	Topology  *network.Topology

	HonestPeers []*peer.Peer
	Adversary   *adversary.Adversary // nil in ModeHonest

	honestPopulation int // population size used for transaction-receiver sampling
}

// Participants returns every dispatchable agent in the simulation,
// honest peers first, in id order, followed by the adversary if present.
func (s *Simulation) Participants() []peer.Participant {
	out := make([]peer.Participant, 0, len(s.HonestPeers)+1)
	for _, p := range s.HonestPeers {
		out = append(out, p)
	}
	if s.Adversary != nil {
		out = append(out, s.Adversary)
	}
	return out
}

// Build constructs a Simulation from cfg: classifies participants by
// speed/CPU and normalizes hashing power (spec §4.7, grounded in
// original_source/run.py and run_selfish.py), builds the fabric and
// topology, and schedules each participant's transaction-generation
// process plus, with probability 1/4, an initial honest mining process
// (the adversary, when present, always starts mining immediately —
// original_source/run_selfish.py calls `adv.create_block()`
// unconditionally, unlike the honest 1/4-probability gate).
func Build(cfg Config, rng *rand.Rand, logger *zap.SugaredLogger, tracer simtime.Tracer) *Simulation {
	hasAdversary := cfg.Mode != ModeHonest
	honestCount := cfg.N
	if hasAdversary {
		honestCount = cfg.N - 1
	}
	totalCount := honestCount
	if hasAdversary {
		totalCount++
	}

	participantIDs := make([]int, totalCount)
	for i := range participantIDs {
		participantIDs[i] = i
	}
	genesis := chainmodel.NewGenesis(participantIDs)
	blocks := chainmodel.NewBlockTable(genesis)

	speeds, cpus, hashingPower := classify(cfg, honestCount, rng)

	fabricSpeeds := speeds
	if hasAdversary {
		fabricSpeeds = append(append([]network.Speed{}, speeds...), network.SpeedFast)
	}
	fabric := network.NewFabric(rng, fabricSpeeds)

	adversaryIdx := -1
	if hasAdversary {
		adversaryIdx = honestCount
	}
	topology := network.BuildTopology(rng, honestCount, adversaryIdx, cfg.Z)

	sched := simtime.New(tracer)
	dir := newRegistry()

	honestPeers := make([]*peer.Peer, honestCount)
	for i := 0; i < honestCount; i++ {
		p := peer.New(i, speeds[i], cpus[i], hashingPower[i], cfg.I, genesis, blocks, dir, fabric, sched, rng)
		p.SetNeighbors(topology.Neighbors[i])
		honestPeers[i] = p
		dir.agents[i] = p
	}

	sim := &Simulation{
		Config:           cfg,
		Scheduler:        sched,
		Genesis:          genesis,
		Blocks:           blocks,
		Fabric:           fabric,
		Topology:         topology,
		HonestPeers:      honestPeers,
		honestPopulation: honestCount,
	}

	if hasAdversary {
		advPeer := peer.New(adversaryIdx, network.SpeedFast, peer.CPUHigh, cfg.H, cfg.I, genesis, blocks, dir, fabric, sched, rng)
		advPeer.SetNeighbors(topology.Neighbors[adversaryIdx])
		mode := adversary.Selfish
		if cfg.Mode == ModeStubborn {
			mode = adversary.Stubborn
		}
		adv := adversary.New(advPeer, mode)
		dir.agents[adversaryIdx] = adv
		sim.Adversary = adv
	}

	if logger != nil {
		logger.Infow("population built",
			"honest", honestCount, "adversary", hasAdversary, "total", totalCount)
	}

	for _, p := range honestPeers {
		p.GenerateTransactions(cfg.Ttx, honestCount)
		if rng.Float64() < 0.25 {
			p.Mine()
		}
	}
	if sim.Adversary != nil {
		sim.Adversary.GenerateTransactions(cfg.Ttx, honestCount)
		sim.Adversary.Mine()
	}

	return sim
}

// classify assigns each honest peer a speed and CPU tier and a
// normalized hashing-power share. In adversary modes the slow-peer split
// is fixed at half (original_source/run_selfish.py: `num_slow =
// n // 2`, no z0 flag); in honest-only mode it follows cfg.Z0
// (original_source/run.py).
func classify(cfg Config, honestCount int, rng *rand.Rand) ([]network.Speed, []peer.CPUClass, []float64) {
	var numSlow int
	if cfg.Mode == ModeHonest {
		numSlow = int(float64(honestCount) * cfg.Z0)
	} else {
		numSlow = honestCount / 2
	}
	numLow := int(float64(honestCount) * cfg.Z1)

	slowSet := pickSubset(rng, honestCount, numSlow)
	lowSet := pickSubset(rng, honestCount, numLow)

	speeds := make([]network.Speed, honestCount)
	cpus := make([]peer.CPUClass, honestCount)
	hashingPower := make([]float64, honestCount)

	denom := float64(10*honestCount - 9*numLow)
	for i := 0; i < honestCount; i++ {
		if slowSet[i] {
			speeds[i] = network.SpeedSlow
		} else {
			speeds[i] = network.SpeedFast
		}
		if lowSet[i] {
			cpus[i] = peer.CPULow
			hashingPower[i] = 1 / denom
		} else {
			cpus[i] = peer.CPUHigh
			hashingPower[i] = 10 / denom
		}
	}
	return speeds, cpus, hashingPower
}

func pickSubset(rng *rand.Rand, n, k int) map[int]bool {
	set := make(map[int]bool, k)
	if k <= 0 || n <= 0 {
		return set
	}
	if k > n {
		k = n
	}
	order := rng.Perm(n)
	for _, idx := range order[:k] {
		set[idx] = true
	}
	return set
}

// Run drains the scheduler up to Config.Time (spec §4.1 run_until).
func (s *Simulation) Run() {
	s.Scheduler.RunUntil(s.Config.Time)
}

// TotalBlocksGenerated sums BlocksCreated across every honest peer —
// the denominator of the MPU aggregate (original_source/run_selfish.py:
// `tot_gen`), which counts only honest generation even in adversary runs.
func (s *Simulation) TotalBlocksGenerated() int {
	total := 0
	for _, p := range s.HonestPeers {
		total += p.BlocksCreated()
	}
	return total
}

// MainChainHeight is the height used for the MPU numerator: the first
// honest peer's current tip height (original_source/run_selfish.py uses
// `peers[0].longest_chain.height`).
func (s *Simulation) MainChainHeight() int64 {
	if len(s.HonestPeers) == 0 {
		return 0
	}
	return s.HonestPeers[0].Tip().Height
}
