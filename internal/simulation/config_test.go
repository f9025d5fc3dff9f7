package simulation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{N: 10, Z0: 0.5, Z1: 0.5, Ttx: 0.5, I: 0.5, Time: 100}
}

func TestConfigValidateAcceptsHonestDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfigValidateRejectsZeroPopulation(t *testing.T) {
	cfg := validConfig()
	cfg.N = 0
	require.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsSmallAdversaryPopulation(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModeSelfish
	cfg.N = 1
	cfg.H = 0.4
	cfg.Z = 50
	require.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsOutOfRangeFractions(t *testing.T) {
	cfg := validConfig()
	cfg.Z1 = 1.5
	require.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsNonPositiveInterval(t *testing.T) {
	cfg := validConfig()
	cfg.I = 0
	require.Error(t, cfg.Validate())
}

func TestConfigValidateRequiresPositiveHashingPowerInAdversaryModes(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModeStubborn
	cfg.H = 0
	cfg.Z = 50
	require.Error(t, cfg.Validate())
}

func TestConfigValidateIgnoresHAndZInHonestMode(t *testing.T) {
	cfg := validConfig()
	cfg.H = -1
	cfg.Z = -1
	require.NoError(t, cfg.Validate())
}

func TestConfigValidateRejectsOutOfRangeZPercent(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModeSelfish
	cfg.H = 0.3
	cfg.Z = 150
	require.Error(t, cfg.Validate())
}
