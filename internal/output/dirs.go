package output

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/aka2910/P2P-selfish-mining/internal/simulation"
)

// DirNames builds the plots/trees output directory names for cfg,
// matching original_source/run.py and run_selfish.py's f-string naming
// (spec §6: "plots_<params>[_selfish|_stubborn]/").
func DirNames(cfg simulation.Config) (plotsDir, treesDir string) {
	var suffix string
	var params string
	switch cfg.Mode {
	case simulation.ModeHonest:
		params = fmt.Sprintf("%d_%g_%g_%g_%g_%g", cfg.N, cfg.Z0, cfg.Z1, cfg.Ttx, cfg.I, cfg.Time)
	case simulation.ModeSelfish:
		params = fmt.Sprintf("%d_%g_%g_%g_%g_%g_%g", cfg.N, cfg.Z1, cfg.Ttx, cfg.I, cfg.Time, cfg.H, cfg.Z)
		suffix = "_selfish"
	case simulation.ModeStubborn:
		params = fmt.Sprintf("%d_%g_%g_%g_%g_%g_%g", cfg.N, cfg.Z1, cfg.Ttx, cfg.I, cfg.Time, cfg.H, cfg.Z)
		suffix = "_stubborn"
	}
	return "plots_" + params + suffix, "trees_" + params + suffix
}

// RecreateDir deletes dir if it already exists and creates it fresh
// (original_source/run_selfish.py: `shutil.rmtree` before re-writing).
func RecreateDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "remove existing output directory %q", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %q", dir)
	}
	return nil
}
