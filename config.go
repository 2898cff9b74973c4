package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"qtermsv/circuitio"
	"qtermsv/qsim"
	"qtermsv/sink"
)

const envPrefix = "QTERMSV"

// Config holds every setting a run or view needs, after parsing.
type Config struct {
	Precision    qsim.Precision
	Layout       qsim.Layout
	Storage      qsim.StorageKind
	Scan         qsim.Scan
	Workers      int
	Grain        int
	Basis        int
	Controlled   circuitio.ControlledMode
	DoubleBuffer bool
	Staged       bool
	Retries      int
	Out          string
	Chart        string
	Top          int
	LogLevel     log.Level
}

// registerFlags adds the simulation flags shared by run and view.
func registerFlags(fs *pflag.FlagSet) {
	fs.String("precision", "double", "amplitude precision: double, single or half")
	fs.String("layout", "contiguous", "state layout: contiguous or halves")
	fs.String("storage", "interleaved", "amplitude storage: interleaved, split or half-split")
	fs.String("scan", "block", "controlled-gate scan: linear or block")
	fs.Int("workers", 0, "worker goroutines per gate (0 = GOMAXPROCS)")
	fs.Int("grain", qsim.DefaultGrain, "smallest work chunk per worker")
	fs.Int("basis", 0, "initial basis state |k>")
	fs.String("controlled", "exchange", "controlled CSV rows: exchange or unitary")
	fs.Bool("double-buffer", false, "ping-pong between two state buffers")
	fs.Bool("staged", false, "stage every gate through device buffers")
	fs.Int("retries", 1, "launch attempts per gate when staged")
	fs.String("out", sink.DefaultFile, "final state output file (empty to skip)")
	fs.String("chart", "", "write an HTML probability chart to this file")
	fs.Int("top", 8, "most probable states listed in the summary")
}

// newViper binds fs, the QTERMSV_ environment and an optional config file.
func newViper(fs *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("log-level", "info")

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, err
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// loadConfig parses and checks the raw settings held by v.
func loadConfig(v *viper.Viper) (Config, error) {
	var (
		cfg Config
		err error
	)
	if cfg.Precision, err = qsim.ParsePrecision(v.GetString("precision")); err != nil {
		return cfg, err
	}
	if cfg.Layout, err = qsim.ParseLayout(v.GetString("layout")); err != nil {
		return cfg, err
	}
	if cfg.Storage, err = qsim.ParseStorageKind(v.GetString("storage")); err != nil {
		return cfg, err
	}
	if cfg.Scan, err = qsim.ParseScan(v.GetString("scan")); err != nil {
		return cfg, err
	}
	if cfg.Controlled, err = circuitio.ParseControlledMode(v.GetString("controlled")); err != nil {
		return cfg, err
	}
	if cfg.LogLevel, err = log.ParseLevel(v.GetString("log-level")); err != nil {
		return cfg, fmt.Errorf("log-level: %w", err)
	}

	// binary16 storage is the only representation of half precision
	if cfg.Precision == qsim.Half {
		cfg.Storage = qsim.HalfSplit
	} else if cfg.Storage == qsim.HalfSplit && cfg.Precision == qsim.Double {
		return cfg, fmt.Errorf("%w: half-split needs single or half precision", qsim.ErrUnsupportedStorage)
	}

	cfg.Workers = v.GetInt("workers")
	cfg.Grain = v.GetInt("grain")
	cfg.Basis = v.GetInt("basis")
	cfg.DoubleBuffer = v.GetBool("double-buffer")
	cfg.Staged = v.GetBool("staged")
	cfg.Retries = v.GetInt("retries")
	cfg.Out = v.GetString("out")
	cfg.Chart = v.GetString("chart")
	cfg.Top = v.GetInt("top")

	switch {
	case cfg.Workers < 0:
		return cfg, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers)
	case cfg.Grain < 1:
		return cfg, fmt.Errorf("grain must be >= 1, got %d", cfg.Grain)
	case cfg.Basis < 0:
		return cfg, fmt.Errorf("%w: %d", qsim.ErrBasisRange, cfg.Basis)
	case cfg.Retries < 1:
		return cfg, fmt.Errorf("retries must be >= 1, got %d", cfg.Retries)
	case cfg.Top < 1:
		return cfg, fmt.Errorf("top must be >= 1, got %d", cfg.Top)
	}
	return cfg, nil
}
