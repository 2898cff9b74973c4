package main

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"qtermsv/circuitio"
	"qtermsv/device"
	"qtermsv/qsim"
)

// Snapshot is the state right after one gate; Step -1 is the initial state.
type Snapshot struct {
	Step      int
	Gate      string
	Amps      []complex128
	Probs     []float64
	Marginals []qsim.QubitProbability
}

func snapshot[T qsim.Scalar](step int, gate string, s *qsim.StateVector[T]) Snapshot {
	return Snapshot{
		Step:      step,
		Gate:      gate,
		Amps:      s.Amplitudes(),
		Probs:     s.Probabilities(),
		Marginals: s.QubitProbabilities(),
	}
}

// Result is everything a run produced, widened to complex128 so callers
// need not know the precision.
type Result struct {
	Program   circuitio.Program
	DAG       *circuitio.DAG
	Amps      []complex128
	Norm      float64
	Top       []qsim.BasisState
	Probs     []float64 // only when a chart is requested
	Marginals []qsim.QubitProbability
	Snapshots []Snapshot
	Elapsed   time.Duration
	Device    *device.Stats
	Retries   int
}

// simulate runs p under cfg. With record set, every intermediate state is
// kept in Result.Snapshots.
func simulate(ctx context.Context, cfg Config, p circuitio.Program, logger *log.Logger, record bool) (Result, error) {
	if cfg.Precision == qsim.Double {
		return simulateAs[float64](ctx, cfg, p, logger, record)
	}
	// single and half both compute in float32; half differs only in storage
	return simulateAs[float32](ctx, cfg, p, logger, record)
}

func simulateAs[T qsim.Scalar](ctx context.Context, cfg Config, p circuitio.Program, logger *log.Logger, record bool) (Result, error) {
	res := Result{Program: p, DAG: circuitio.NewDAG(p)}

	c, err := circuitio.Build[T](p, cfg.Controlled)
	if err != nil {
		return res, err
	}
	state, err := qsim.NewStateVector[T](p.Qubits,
		qsim.WithLayout(cfg.Layout),
		qsim.WithStorage(cfg.Storage),
		qsim.WithBasis(cfg.Basis),
	)
	if err != nil {
		return res, err
	}

	engine := qsim.NewEngine[T](
		qsim.WithScan(cfg.Scan),
		qsim.WithWorkers(cfg.Workers),
		qsim.WithGrain(cfg.Grain),
		qsim.WithLogger(logger),
	)
	var (
		exec   qsim.Executor[T] = engine
		staged *device.Staged[T]
		retry  *device.Retry[T]
	)
	if cfg.Staged {
		staged = device.NewStaged[T](engine, device.WithDeviceStorage(cfg.Storage), device.WithLogger(logger))
		exec = staged
		if cfg.Retries > 1 {
			policy := device.DefaultRetryPolicy()
			policy.MaxAttempts = cfg.Retries
			retry = device.NewRetry[T](staged, policy, device.WithContext(ctx), device.WithRetryLogger(logger))
			exec = retry
		}
	}

	runner := qsim.NewRunner[T](exec, qsim.WithRunnerLogger(logger), qsim.WithDoubleBuffer(cfg.DoubleBuffer))
	if record {
		res.Snapshots = append(res.Snapshots, snapshot(-1, "initial", state))
		runner.OnStep(func(step int, g qsim.Gate[T], s *qsim.StateVector[T]) {
			res.Snapshots = append(res.Snapshots, snapshot(step, g.String(), s))
		})
	}

	start := time.Now()
	err = runner.Run(ctx, state, c)
	res.Elapsed = time.Since(start)
	res.Amps = state.Amplitudes()
	res.Norm = state.Norm()
	res.Top = state.Top(cfg.Top, 1e-12)
	res.Marginals = state.QubitProbabilities()
	if cfg.Chart != "" {
		res.Probs = state.Probabilities()
	}
	if staged != nil {
		st := staged.Stats()
		res.Device = &st
	}
	if retry != nil {
		res.Retries = retry.Retries()
	}
	return res, err
}
