package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mahdiidarabi/eosr1/internal/config"
	"github.com/mahdiidarabi/eosr1/internal/logging"
	"github.com/mahdiidarabi/eosr1/internal/metrics"
	"github.com/mahdiidarabi/eosr1/pkg/eosr1"
)

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	closeLog func() error

	configPath  string
	dotEnvPath  string
	privateKey  string
	publicKey   string
	logLevel    string
	logFormat   string
	dumpMetrics bool
}

func main() {
	a := &app{}
	err := a.rootCmd().Execute()
	if a.closeLog != nil {
		_ = a.closeLog()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eosr1",
		Short:         "Sign and verify requests with EOS secp256r1 keys",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.dumpMetrics {
				a.printMetrics(cmd)
			}
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", os.Getenv(config.ConfigPathEnv), "Path to a YAML config file")
	flags.StringVar(&a.dotEnvPath, "env-file", "", "Path to a .env file (default \".env\")")
	flags.StringVar(&a.privateKey, "private-key", "", "PVT_R1_ private key (overrides config)")
	flags.StringVar(&a.publicKey, "public-key", "", "PUB_R1_ public key (overrides config)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: console, json or logfmt (overrides config)")
	flags.BoolVar(&a.dumpMetrics, "metrics", false, "Print collected metrics to stderr on exit")

	root.AddCommand(
		a.signCmd(),
		a.verifyCmd(),
		a.decodeKeyCmd(),
		a.pemCmd(),
		a.serializeCmd(),
		a.batchCmd(),
	)
	return root
}

// setup loads the config, applies flag overrides and builds the logger and
// metrics.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath, a.dotEnvPath)
	if err != nil {
		return err
	}
	if a.privateKey != "" {
		cfg.PrivateKey = a.privateKey
	}
	if a.publicKey != "" {
		cfg.PublicKey = a.publicKey
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger, a.closeLog, err = logging.New(cfg.Log); err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	if a.metrics, err = metrics.New(a.registry); err != nil {
		return err
	}
	return nil
}

// client builds a signing client from the configured key pair.
func (a *app) client() (*eosr1.Client, error) {
	if err := a.cfg.RequireKeys(); err != nil {
		return nil, err
	}
	c, err := eosr1.NewClient(a.cfg.PrivateKey, a.cfg.PublicKey)
	if err != nil {
		return nil, err
	}
	return c.WithLogger(a.logger).
		WithObserver(a.metrics).
		WithMaxAttempts(a.cfg.MaxSignAttempts), nil
}

func (a *app) printMetrics(cmd *cobra.Command) {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	w := cmd.ErrOrStderr()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				pairs = append(pairs, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			labels := strings.Join(pairs, ",")
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", mf.GetName(), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}
