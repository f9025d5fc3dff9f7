// Command minesim runs the P2P mining simulator: a population of honest
// peers gossiping transactions and mining blocks, optionally joined by a
// selfish or stubborn adversary, over the virtual-time scheduler in
// internal/simtime. Flag names and defaults follow
// original_source/run.py and run_selfish.py; output follows spec §6.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/aka2910/P2P-selfish-mining/internal/output"
	"github.com/aka2910/P2P-selfish-mining/internal/simtime"
	"github.com/aka2910/P2P-selfish-mining/internal/simulation"
)

func main() {
	app := cli.NewApp()
	app.Name = "minesim"
	app.Usage = "simulate a P2P mining network, optionally with a selfish or stubborn adversary"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "n", Value: 10, Usage: "population size (includes the adversary, in adversary modes)"},
		cli.Float64Flag{Name: "z0", Value: 0.5, Usage: "fraction of slow peers (honest-only mode only)"},
		cli.Float64Flag{Name: "z1", Value: 0.5, Usage: "fraction of low-CPU peers"},
		cli.Float64Flag{Name: "Ttx", Value: 0.5, Usage: "mean transaction interarrival time"},
		cli.Float64Flag{Name: "I", Value: 0.5, Usage: "target mean block interval"},
		cli.Float64Flag{Name: "time", Value: 100, Usage: "simulation end, virtual seconds"},
		cli.Float64Flag{Name: "h", Value: 0.5, Usage: "adversary hashing-power share"},
		cli.Float64Flag{Name: "Z", Value: 50, Usage: "percent of honest peers wired to the adversary"},
		cli.BoolFlag{Name: "selfish", Usage: "run the adversary in selfish-mining mode"},
		cli.BoolFlag{Name: "stubborn", Usage: "run the adversary in stubborn-mining mode"},
		cli.Int64Flag{Name: "seed", Value: 0, Usage: "random number seed, 0 means use wall-clock"},
		cli.BoolFlag{Name: "trace", Usage: "log every scheduled event at debug level"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// argError marks a failure as an invalid-parameter error (spec §6 exit
// code 1) rather than an I/O failure (exit code 2).
type argError struct{ error }

func exitCode(err error) int {
	var ae argError
	if errors.As(err, &ae) {
		return 1
	}
	return 2
}

func run(c *cli.Context) error {
	if c.Bool("selfish") && c.Bool("stubborn") {
		return argError{errors.New("--selfish and --stubborn are mutually exclusive")}
	}

	mode := simulation.ModeHonest
	switch {
	case c.Bool("selfish"):
		mode = simulation.ModeSelfish
	case c.Bool("stubborn"):
		mode = simulation.ModeStubborn
	}

	cfg := simulation.Config{
		N:    c.Int("n"),
		Z0:   c.Float64("z0"),
		Z1:   c.Float64("z1"),
		Ttx:  c.Float64("Ttx"),
		I:    c.Float64("I"),
		Time: c.Float64("time"),
		Mode: mode,
		H:    c.Float64("h"),
		Z:    c.Float64("Z"),
		Seed: c.Int64("seed"),
		Trace: c.Bool("trace"),
	}
	if err := cfg.Validate(); err != nil {
		return argError{err}
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Trace {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var tracer simtime.Tracer
	if cfg.Trace {
		tracer = debugTracer{sugar}
	}

	sim := simulation.Build(cfg, rng, sugar, tracer)
	sim.Run()
	sugar.Infow("simulation complete", "virtual-time", cfg.Time)

	if err := writeOutputs(cfg, sim); err != nil {
		return err
	}
	return nil
}

// debugTracer adapts a zap.SugaredLogger to simtime.Tracer, used only
// when --trace is set so the hot event-dispatch path otherwise avoids
// any logging overhead (internal/simtime doc comment).
type debugTracer struct {
	log *zap.SugaredLogger
}

func (t debugTracer) Tracef(format string, args ...interface{}) {
	t.log.Debugf(format, args...)
}

func writeOutputs(cfg simulation.Config, sim *simulation.Simulation) error {
	plotsDir, treesDir := output.DirNames(cfg)
	if err := output.RecreateDir(plotsDir); err != nil {
		return err
	}
	if err := output.RecreateDir(treesDir); err != nil {
		return err
	}

	rootID := sim.Genesis.ID
	for _, p := range sim.Participants() {
		height := p.Tip().Height
		dotPath := filepath.Join(plotsDir, fmt.Sprintf("tree_%d_%d.dot", p.ID(), height))
		treePath := filepath.Join(treesDir, fmt.Sprintf("tree_%d_%d.tree", p.ID(), height))

		if err := writeFile(dotPath, func(f *os.File) error {
			return output.WriteDOT(f, p.Tree(), rootID)
		}); err != nil {
			return err
		}
		if err := writeFile(treePath, func(f *os.File) error {
			return output.WriteTreeDump(f, p, rootID)
		}); err != nil {
			return err
		}
	}

	mpuPath := "MPU.txt"
	if err := writeFile(mpuPath, func(f *os.File) error {
		return output.WriteMPU(f, sim.MainChainHeight(), sim.TotalBlocksGenerated())
	}); err != nil {
		return err
	}
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %q", path)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return errors.Wrapf(err, "write %q", path)
	}
	return nil
}
