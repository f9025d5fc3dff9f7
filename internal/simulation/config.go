// Package simulation wires together chainmodel, ledger, simtime, network,
// peer, and adversary into a runnable population, following the
// classification and setup math of original_source/run.py and
// run_selfish.py, with a single package-level configuration struct in
// the style of LarryRuane-minesim's `g struct`.
package simulation

import "github.com/pkg/errors"

// Mode selects which driver variant runs: plain honest-only (run.py) or
// one of the two adversary variants (run_selfish.py).
type Mode int

const (
	ModeHonest Mode = iota
	ModeSelfish
	ModeStubborn
)

// Config holds every CLI-exposed parameter of spec §6.
type Config struct {
	N   int     // population size (includes the adversary, in adversary modes)
	Z0  float64 // fraction of slow peers, honest-only mode only
	Z1  float64 // fraction of low-CPU peers
	Ttx float64 // mean transaction interarrival time
	I   float64 // target mean block interval
	Time float64 // simulation end, virtual seconds

	Mode Mode
	H    float64 // adversary hashing-power share, adversary modes only
	Z    float64 // percent of honest peers wired to the adversary, adversary modes only

	Seed  int64
	Trace bool
}

// Validate rejects parameter combinations that cannot produce a
// meaningful run, returning an error describing the first
// violation (spec §7: "non-zero only on invalid parameters").
func (c Config) Validate() error {
	if c.N <= 0 {
		return errors.New("n must be positive")
	}
	if c.Mode != ModeHonest && c.N < 2 {
		return errors.New("n must be at least 2 when an adversary is present")
	}
	if c.Z0 < 0 || c.Z0 > 1 {
		return errors.New("z0 must be in [0,1]")
	}
	if c.Z1 < 0 || c.Z1 > 1 {
		return errors.New("z1 must be in [0,1]")
	}
	if c.Ttx < 0 {
		return errors.New("Ttx must be non-negative")
	}
	if c.I <= 0 {
		return errors.New("I must be positive")
	}
	if c.Time <= 0 {
		return errors.New("time must be positive")
	}
	if c.Mode != ModeHonest {
		if c.H <= 0 {
			return errors.New("h must be positive when an adversary is present")
		}
		if c.Z < 0 || c.Z > 100 {
			return errors.New("Z must be a percentage in [0,100]")
		}
	}
	return nil
}
