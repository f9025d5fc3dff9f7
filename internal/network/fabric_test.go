package network

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLatencyIsZeroForSelfSend(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	f := NewFabric(rng, []Speed{SpeedFast, SpeedFast})
	require.Zero(t, f.Latency(0, 0, 8))
}

func TestLatencyIsSymmetricPropagationAndBandwidth(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	f := NewFabric(rng, []Speed{SpeedSlow, SpeedFast, SpeedFast})
	require.Equal(t, f.rho[0][1], f.rho[1][0])
	require.Equal(t, f.bw[0][1], f.bw[1][0])
}

func TestLatencyDrawsFreshQueueingSamplePerCall(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	f := NewFabric(rng, []Speed{SpeedFast, SpeedFast})
	first := f.Latency(0, 1, 8)
	second := f.Latency(0, 1, 8)
	require.NotEqual(t, first, second)
}

func TestLatencyFastPairGetsHigherBandwidthThanMixedPair(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	f := NewFabric(rng, []Speed{SpeedFast, SpeedFast, SpeedSlow})
	require.Equal(t, 100.0, f.bw[0][1])
	require.Equal(t, 5.0, f.bw[0][2])
}
