// Package sweep runs one independent steady-state solve per weather
// observation. Each solve owns a private solver instance, so points are
// embarrassingly parallel; a worker pool fans the series out across
// goroutines and results keep input order regardless of completion order.
package sweep

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/mrkey4real/615-thermodynamics-project/pkg/plant"
	"github.com/mrkey4real/615-thermodynamics-project/pkg/weather"
)

// Outcome pairs one weather observation with its solve result. Err is set
// when the solve aborted (domain violation); a non-converged but completed
// solve is reported through Result.Converged instead.
type Outcome struct {
	Index     int
	Timestamp string
	TWBC      float64
	Result    *plant.Result
	Err       error
}

// Options control a sweep run.
type Options struct {
	// Workers caps the pool size; 0 means one worker per CPU. The pool
	// never exceeds the number of points.
	Workers int

	// Utilization applies to every point; 0 falls back to the
	// configured scenario utilization.
	Utilization float64

	// Progress renders a console progress bar.
	Progress bool

	Logger *zap.Logger
}

// Summary aggregates the converged outcomes of a sweep.
type Summary struct {
	Points       int
	Converged    int
	NotConverged int
	Failed       int

	MeanPUE, MinPUE, MaxPUE float64
	MeanCOP, MinCOP, MaxCOP float64
	MeanMakeup, PeakMakeup  float64
	MeanWUE                 float64
	TotalWaterM3            float64 // summed per-point hourly makeup volume
}

// Run solves every point of the series against the given scenario and
// returns the per-point outcomes in input order plus their summary.
func Run(cfg *plant.Config, curves plant.CurveSet, series *weather.Series, opts Options) ([]Outcome, Summary, error) {
	if series == nil || series.Len() == 0 {
		return nil, Summary{}, fmt.Errorf("sweep: empty weather series")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Every worker gets its own solver: instances are reentrant-safe per
	// instance only, and construction validates the scenario once here
	// before any goroutine starts.
	probe, err := plant.NewSystemSolver(cfg, curves)
	if err != nil {
		return nil, Summary{}, err
	}
	utilization := opts.Utilization
	if utilization == 0 {
		utilization = probe.Config().Utilization
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > series.Len() {
		workers = series.Len()
	}

	var bar *pb.ProgressBar
	if opts.Progress {
		bar = pb.StartNew(series.Len())
	}

	outcomes := make([]Outcome, series.Len())
	indexes := make(chan int, series.Len())
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			solver, err := plant.NewSystemSolver(cfg, curves)
			if err != nil {
				// Construction succeeded for the probe above; a failure
				// here means the config mutated mid-run, which the
				// contract forbids. Surface it per point.
				for i := range indexes {
					outcomes[i] = Outcome{Index: i, Err: err}
					if bar != nil {
						bar.Increment()
					}
				}
				return
			}
			for i := range indexes {
				p, _ := series.At(i)
				res, err := solver.Solve(utilization, p.WetBulbC)
				outcomes[i] = Outcome{
					Index:     i,
					Timestamp: p.Timestamp,
					TWBC:      p.WetBulbC,
					Result:    res,
					Err:       err,
				}
				if err != nil {
					logger.Warn("solve failed",
						zap.Int("index", i),
						zap.Float64("t_wb_c", p.WetBulbC),
						zap.Error(err))
				}
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}

	for i := 0; i < series.Len(); i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	if bar != nil {
		bar.Finish()
	}
	return outcomes, Summarize(outcomes), nil
}

// Summarize computes descriptive statistics over the converged outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Points: len(outcomes)}

	var pues, cops, makeups, wues []float64
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			s.Failed++
		case !o.Result.Converged:
			s.NotConverged++
		default:
			s.Converged++
			pues = append(pues, o.Result.PUE)
			cops = append(cops, o.Result.COP)
			makeups = append(makeups, o.Result.MMakeup)
			wues = append(wues, o.Result.WUE)
			// one observation stands for one hour of operation
			s.TotalWaterM3 += o.Result.MMakeup * 3600 / 1000
		}
	}
	if len(pues) == 0 {
		return s
	}

	s.MeanPUE = stat.Mean(pues, nil)
	s.MinPUE = floats.Min(pues)
	s.MaxPUE = floats.Max(pues)
	s.MeanCOP = stat.Mean(cops, nil)
	s.MinCOP = floats.Min(cops)
	s.MaxCOP = floats.Max(cops)
	s.MeanMakeup = stat.Mean(makeups, nil)
	s.PeakMakeup = floats.Max(makeups)
	s.MeanWUE = stat.Mean(wues, nil)
	return s
}
