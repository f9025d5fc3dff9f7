package simulation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aka2910/P2P-selfish-mining/internal/adversary"
)

func TestClassifyHonestModeUsesZ0(t *testing.T) {
	cfg := Config{Mode: ModeHonest, Z0: 0.5, Z1: 0.5}
	rng := rand.New(rand.NewSource(1))
	speeds, cpus, hashingPower := classify(cfg, 10, rng)

	require.Len(t, speeds, 10)
	require.Len(t, cpus, 10)
	require.Len(t, hashingPower, 10)

	numSlow := 0
	for _, s := range speeds {
		if s == 0 { // network.SpeedSlow
			numSlow++
		}
	}
	require.Equal(t, 5, numSlow) // int(10 * Z0)

	total := 0.0
	for _, h := range hashingPower {
		total += h
	}
	require.InDelta(t, 1, total, 1e-9)
}

func TestClassifyAdversaryModeFixesHalfSlow(t *testing.T) {
	cfg := Config{Mode: ModeSelfish, Z0: 0, Z1: 0.5}
	rng := rand.New(rand.NewSource(1))
	speeds, _, _ := classify(cfg, 10, rng)

	numSlow := 0
	for _, s := range speeds {
		if s == 0 { // network.SpeedSlow
			numSlow++
		}
	}
	require.Equal(t, 5, numSlow)
}

func TestClassifyLowCPUGetsOneTenthHashingPower(t *testing.T) {
	cfg := Config{Mode: ModeHonest, Z0: 0, Z1: 1}
	rng := rand.New(rand.NewSource(1))
	_, cpus, hashingPower := classify(cfg, 4, rng)

	for i := range cpus {
		require.Zero(t, int(cpus[i])) // peer.CPULow == 0
	}
	for i := 1; i < len(hashingPower); i++ {
		require.InDelta(t, hashingPower[0], hashingPower[i], 1e-9)
	}

	// With a mix of tiers, a high-CPU peer gets 10x a low-CPU peer's share.
	_, cpus, hashingPower = classify(Config{Mode: ModeHonest, Z0: 0, Z1: 0.5}, 4, rand.New(rand.NewSource(1)))
	var low, high float64
	for i := range cpus {
		if int(cpus[i]) == 0 { // peer.CPULow
			low = hashingPower[i]
		} else {
			high = hashingPower[i]
		}
	}
	require.InDelta(t, 10*low, high, 1e-9)
}

func TestBuildHonestOnlyHasNoAdversary(t *testing.T) {
	cfg := Config{N: 6, Z0: 0.5, Z1: 0.5, Ttx: 0.5, I: 0.5, Time: 1, Mode: ModeHonest}
	rng := rand.New(rand.NewSource(42))
	sim := Build(cfg, rng, nil, nil)

	require.Nil(t, sim.Adversary)
	require.Len(t, sim.HonestPeers, 6)
	require.Len(t, sim.Participants(), 6)
}

func TestBuildAdversaryModeWiresLastIndex(t *testing.T) {
	cfg := Config{N: 6, Z1: 0.5, Ttx: 0.5, I: 0.5, Time: 1, Mode: ModeSelfish, H: 0.4, Z: 50}
	rng := rand.New(rand.NewSource(42))
	sim := Build(cfg, rng, nil, nil)

	require.NotNil(t, sim.Adversary)
	require.Len(t, sim.HonestPeers, 5)
	require.Equal(t, 5, sim.Adversary.ID())
	require.Len(t, sim.Participants(), 6)
	require.Equal(t, sim.Adversary, sim.Participants()[5])
}

func TestBuildStubbornModeWiresStubbornAdversary(t *testing.T) {
	cfg := Config{N: 4, Z1: 0.5, Ttx: 0.5, I: 0.5, Time: 1, Mode: ModeStubborn, H: 0.5, Z: 100}
	rng := rand.New(rand.NewSource(1))
	sim := Build(cfg, rng, nil, nil)

	require.NotNil(t, sim.Adversary)
	require.Equal(t, adversary.Stubborn, sim.Adversary.Mode())
}

func TestMainChainHeightAndTotalBlocksGeneratedStartAtZero(t *testing.T) {
	cfg := Config{N: 4, Z0: 0.5, Z1: 0.5, Ttx: 0, I: 0.5, Time: 0, Mode: ModeHonest}
	rng := rand.New(rand.NewSource(1))
	sim := Build(cfg, rng, nil, nil)
	sim.Run()

	require.Equal(t, int64(0), sim.MainChainHeight())
	require.Equal(t, 0, sim.TotalBlocksGenerated())
}
