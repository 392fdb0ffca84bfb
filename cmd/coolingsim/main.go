package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrkey4real/615-thermodynamics-project/pkg/plant"
	"github.com/mrkey4real/615-thermodynamics-project/pkg/sweep"
	"github.com/mrkey4real/615-thermodynamics-project/pkg/weather"
)

type opts struct {
	scenario   string
	compare    bool
	configPath string
	curvesPath string
	weather    string
	outputDir  string
	noValidate bool
	workers    int

	// sweep row outputs
	csvPath  string
	jsonPath string
	htmlPath string
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "coolingsim",
		Short: "Steady-state data-center cooling plant simulator",
		Long: `coolingsim models the steady-state thermal and water balance of a
liquid/air-cooled data-center cooling plant: compute and building heat
loads, a curve-fit chiller, and an evaporative cooling tower coupled
across three fluid loops.

Examples:
  coolingsim --scenario baseline
  coolingsim --scenario optimized
  coolingsim --compare
  coolingsim --config configs/custom.yaml
  coolingsim --weather data/weather.csv --config configs/baseline.json --csv out.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	root.Flags().StringVar(&o.scenario, "scenario", "baseline", "built-in scenario: baseline or optimized")
	root.Flags().BoolVar(&o.compare, "compare", false, "compare baseline and optimized scenarios")
	root.Flags().StringVar(&o.configPath, "config", "", "scenario configuration file (JSON or YAML)")
	root.Flags().StringVar(&o.curvesPath, "curves", "", "chiller performance-curve file (JSON or YAML)")
	root.Flags().StringVar(&o.weather, "weather", "", "wet-bulb weather CSV for a time-series sweep")
	root.Flags().StringVar(&o.outputDir, "output", "results", "directory for result JSON files")
	root.Flags().BoolVar(&o.noValidate, "no-validate", false, "skip post-solve validation checks")
	root.Flags().IntVar(&o.workers, "workers", 0, "sweep worker count (0 = one per CPU)")
	root.Flags().StringVar(&o.csvPath, "csv", "", "write per-point sweep rows to CSV file")
	root.Flags().StringVar(&o.jsonPath, "json", "", "write per-point sweep rows to JSON file")
	root.Flags().StringVar(&o.htmlPath, "html", "", "write sweep rows and summary to HTML file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(o opts) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	curves := plant.DefaultCurves()
	if o.curvesPath != "" {
		curves, err = plant.LoadCurves(o.curvesPath)
		if err != nil {
			return err
		}
	}

	cfg, err := resolveConfig(o)
	if err != nil {
		return err
	}

	switch {
	case o.compare:
		return runCompare(o, curves, logger)
	case o.weather != "":
		return runWeather(o, cfg, curves, logger)
	default:
		return runScenario(o, cfg, curves, logger)
	}
}

func resolveConfig(o opts) (*plant.Config, error) {
	if o.configPath != "" {
		return plant.LoadConfig(o.configPath)
	}
	switch o.scenario {
	case "baseline":
		return plant.DefaultConfig(), nil
	case "optimized":
		return plant.OptimizedConfig(), nil
	default:
		return nil, fmt.Errorf("unknown scenario %q, want baseline or optimized", o.scenario)
	}
}

func runScenario(o opts, cfg *plant.Config, curves plant.CurveSet, logger *zap.Logger) error {
	res, solver, err := solveScenario(cfg, curves)
	if err != nil {
		return err
	}

	printSummary(os.Stdout, solver, res)

	if !o.noValidate {
		if err := validate(res, logger); err != nil {
			return err
		}
		logger.Info("all validation checks passed")
	}
	return saveResult(o.outputDir, cfg.Scenario, res, logger)
}

func runCompare(o opts, curves plant.CurveSet, logger *zap.Logger) error {
	base, _, err := solveScenario(plant.DefaultConfig(), curves)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	optCfg := plant.OptimizedConfig()
	opt, optSolver, err := solveScenario(optCfg, curves)
	if err != nil {
		return fmt.Errorf("optimized: %w", err)
	}

	printComparison(os.Stdout, base, opt, optSolver.Tower())

	if err := saveResult(o.outputDir, "baseline", base, logger); err != nil {
		return err
	}
	return saveResult(o.outputDir, "optimized", opt, logger)
}

func runWeather(o opts, cfg *plant.Config, curves plant.CurveSet, logger *zap.Logger) error {
	series, err := weather.Load(o.weather)
	if err != nil {
		return err
	}
	if n := series.Skipped(); n > 0 {
		logger.Warn("skipped malformed weather rows", zap.Int("rows", n))
	}
	lo, hi := series.TemperatureRange()
	logger.Info("weather series loaded",
		zap.Int("points", series.Len()),
		zap.Float64("t_wb_min_c", lo),
		zap.Float64("t_wb_max_c", hi),
		zap.Float64("t_wb_mean_c", series.AverageTemperature()))

	outcomes, summary, err := sweep.Run(cfg, curves, series, sweep.Options{
		Workers:  o.workers,
		Progress: true,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	printSweep(os.Stdout, outcomes, summary)

	if o.csvPath != "" {
		if err := writeSweepCSV(o.csvPath, outcomes); err != nil {
			logger.Error("write csv", zap.Error(err))
		}
	}
	if o.jsonPath != "" {
		if err := writeSweepJSON(o.jsonPath, outcomes, summary); err != nil {
			logger.Error("write json", zap.Error(err))
		}
	}
	if o.htmlPath != "" {
		if err := writeSweepHTML(o.htmlPath, cfg, outcomes, summary); err != nil {
			logger.Error("write html", zap.Error(err))
		}
	}
	return nil
}

func solveScenario(cfg *plant.Config, curves plant.CurveSet) (*plant.Result, *plant.SystemSolver, error) {
	solver, err := plant.NewSystemSolver(cfg, curves)
	if err != nil {
		return nil, nil, err
	}
	res, err := solver.SolveDesign()
	if err != nil {
		return nil, nil, err
	}
	return res, solver, nil
}

// validate mirrors the checks a plant engineer runs before trusting a
// result: energy conservation inside 1%, temperature ceilings held, and
// actual convergence.
func validate(r *plant.Result, logger *zap.Logger) error {
	ok := true
	if !r.Converged {
		logger.Error("solver did not converge",
			zap.Int("iterations", r.Iterations),
			zap.Float64("residual_c", r.ResidualC))
		ok = false
	}
	if r.EnergyBalanceErrPct > 1.0 {
		logger.Error("energy balance error exceeds 1%",
			zap.Float64("error_pct", r.EnergyBalanceErrPct))
		ok = false
	}
	if !r.Flags.GPUTempOK {
		logger.Error("compute coolant outlet exceeds limit", zap.Float64("t_out_c", r.TGPUOutC))
		ok = false
	}
	if !r.Flags.BuildingTempOK {
		logger.Error("building air outlet exceeds limit", zap.Float64("t_out_c", r.TAirOutC))
		ok = false
	}
	if !r.Flags.TowerRangeOK {
		logger.Error("negative cooling-tower range, configuration infeasible")
		ok = false
	}
	if r.Flags.ChillerOverloaded {
		logger.Warn("chiller oversubscribed", zap.Float64("plr", r.PLR))
	}
	if !ok {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func saveResult(dir, scenario string, r *plant.Result, logger *zap.Logger) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, scenario+"_results.json")
	if err := writeResultJSON(path, r); err != nil {
		return err
	}
	logger.Info("results saved", zap.String("path", path))
	return nil
}
