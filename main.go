// Command qtermsv simulates quantum circuits on a dense state vector.
//
//	qtermsv run circuit.qasm          simulate and write final_state_vector.csv
//	qtermsv view circuit.csv          step through the circuit gate by gate
//	qtermsv gates                     list the supported gates
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"qtermsv/circuitio"
	"qtermsv/sink"
)

// maxViewQubits bounds the view command, which keeps one state per gate.
const maxViewQubits = 12

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:          "qtermsv",
		Short:        "Statevector quantum circuit simulator",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(newRunCmd(&configFile), newViewCmd(&configFile), newGatesCmd())
	return root
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "qtermsv",
		ReportTimestamp: true,
	})
}

// setup resolves configuration for cmd and loads the circuit at path.
func setup(cmd *cobra.Command, configFile, path string) (Config, circuitio.Program, *log.Logger, error) {
	v, err := newViper(cmd.Flags(), configFile)
	if err != nil {
		return Config{}, circuitio.Program{}, nil, err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return cfg, circuitio.Program{}, nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	p, err := circuitio.Load(path)
	if err != nil {
		logger.Error("load circuit", "path", path, "err", err)
		return cfg, p, logger, err
	}
	logger.Debug("loaded circuit", "name", p.Name, "qubits", p.Qubits, "steps", len(p.Steps))
	return cfg, p, logger, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

func newRunCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <circuit.csv|circuit.qasm>",
		Short: "Simulate a circuit and write the final state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, logger, err := setup(cmd, *configFile, args[0])
			if err != nil {
				return err
			}
			ctx, stop := commandContext(cmd)
			defer stop()

			res, err := simulate(ctx, cfg, p, logger, false)
			if err != nil {
				logger.Error("simulation failed", "err", err)
				return err
			}

			report := newReport(cfg, res)
			if cfg.Out != "" {
				if err := writeFile(cfg.Out, func(w io.Writer) error { return sink.WriteCSV(w, res.Amps) }); err != nil {
					return err
				}
				report.Output = cfg.Out
				logger.Info("wrote state", "path", cfg.Out, "amplitudes", len(res.Amps))
			}
			if cfg.Chart != "" {
				if err := writeFile(cfg.Chart, func(w io.Writer) error { return sink.WriteChart(w, p.Name, res.Probs, res.Marginals) }); err != nil {
					return err
				}
				report.Chart = cfg.Chart
				logger.Info("wrote chart", "path", cfg.Chart)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sink.RenderSummary(report))
			return nil
		},
	}
	registerFlags(cmd.Flags())
	return cmd
}

func newViewCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <circuit.csv|circuit.qasm>",
		Short: "Step through a circuit gate by gate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, logger, err := setup(cmd, *configFile, args[0])
			if err != nil {
				return err
			}
			if p.Qubits > maxViewQubits {
				return fmt.Errorf("view supports at most %d qubits, circuit has %d", maxViewQubits, p.Qubits)
			}
			ctx, stop := commandContext(cmd)
			defer stop()

			// keep the alt screen clean
			logger.SetLevel(log.ErrorLevel)
			res, err := simulate(ctx, cfg, p, logger, true)
			if err != nil && len(res.Snapshots) == 0 {
				return err
			}
			_, perr := tea.NewProgram(newViewer(res, cfg, err), tea.WithAltScreen()).Run()
			return errors.Join(err, perr)
		},
	}
	registerFlags(cmd.Flags())
	return cmd
}

func newGatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gates",
		Short: "List the supported gates",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(circuitio.Catalog))
		},
	}
}

func newReport(cfg Config, res Result) sink.Report {
	r := sink.NewReport(res.Program.Name)
	r.Qubits = res.Program.Qubits
	r.Gates = len(res.Program.Steps)
	r.Depth = res.DAG.Depth()
	r.Precision = cfg.Precision.String()
	r.Layout = cfg.Layout.String()
	r.Storage = cfg.Storage.String()
	r.Scan = cfg.Scan.String()
	r.Elapsed = res.Elapsed
	r.Norm = res.Norm
	r.Fingerprint = sink.Fingerprint(res.Amps)
	r.Top = res.Top
	if res.Device != nil {
		r.Launches = res.Device.Launches
		r.BytesIn = res.Device.BytesIn
		r.BytesOut = res.Device.BytesOut
		r.Retries = res.Retries
	}
	return r
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return write(f)
}
