// Command poolsim drives the object pools through a synthetic game loop and
// reports how much work they saved.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/config"
	"github.com/ajitpratap0/respawn/pkg/logger"
	"github.com/ajitpratap0/respawn/pkg/observability"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "poolsim",
		Short:         "Simulate a game loop on top of the object pools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "poolsim v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("POOLSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `Run a deterministic frame loop that claims props, plays effects and loads
assets through the pools, then print a JSON report of the pool statistics.

Every flag can also be set through a POOLSIM_ environment variable, for
example POOLSIM_FRAMES=120.

Example:
  poolsim run --config poolsim.yaml --frames 300 --output report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(v)
			if err != nil {
				return err
			}
			return runSimulation(cmd.Context(), cmd.OutOrStdout(), cfg, v.GetString("output"))
		},
	}

	flags := runCmd.Flags()
	flags.StringP("config", "c", "", "Path to a YAML configuration file")
	flags.Int("frames", 0, "Number of frames to simulate")
	flags.Int("spawns", 0, "Props claimed per frame")
	flags.Int("effects", 0, "Effects spawned per frame")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("enable-metrics", false, "Serve Prometheus metrics while the simulation runs")
	flags.String("metrics-addr", "", "Address of the metrics endpoint")
	flags.Bool("enable-tracing", false, "Export spans to stdout")
	flags.StringP("output", "o", "-", "Report destination, - for stdout")
	_ = v.BindPFlags(flags)

	return runCmd
}

// resolveConfig layers flags and environment variables over the file, and
// the file over the defaults.
func resolveConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.Default()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v.IsSet("frames") {
		cfg.Simulation.Frames = v.GetInt("frames")
	}
	if v.IsSet("spawns") {
		cfg.Simulation.SpawnsPerFrame = v.GetInt("spawns")
	}
	if v.IsSet("effects") {
		cfg.Simulation.EffectsPerFrame = v.GetInt("effects")
	}
	if v.IsSet("log-level") {
		cfg.Logging.Level = v.GetString("log-level")
	}
	if v.IsSet("enable-metrics") {
		cfg.Metrics.Enabled = v.GetBool("enable-metrics")
	}
	if v.IsSet("metrics-addr") {
		cfg.Metrics.Address = v.GetString("metrics-addr")
	}
	if v.IsSet("enable-tracing") {
		cfg.Tracing.Enabled = v.GetBool("enable-tracing")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(ctx context.Context, out io.Writer, cfg *config.Config, output string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    cfg.Logging.Encoding,
		OutputPaths: cfg.Logging.OutputPaths,
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().With(zap.String("component", "poolsim"))

	if cfg.Tracing.Enabled {
		tc := observability.DefaultTracingConfig()
		tc.ServiceName = cfg.Tracing.ServiceName
		tc.ServiceVersion = version
		tc.SamplingRate = cfg.Tracing.SamplingRate
		shutdown, err := observability.Init(tc)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Warn("failed to flush spans", zap.Error(err))
			}
		}()
	}

	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics.Address, log)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	log.Info("starting simulation",
		zap.Int("frames", cfg.Simulation.Frames),
		zap.Int("spawns_per_frame", cfg.Simulation.SpawnsPerFrame),
		zap.Int("effects_per_frame", cfg.Simulation.EffectsPerFrame))

	sim, err := newSimulation(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build pools: %w", err)
	}
	report, err := sim.run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	log.Info("simulation completed",
		zap.Int("frames", report.Frames),
		zap.Duration("elapsed", report.Elapsed))

	if output == "" || output == "-" {
		return writeReport(out, report)
	}
	f, err := os.Create(output) //nolint:gosec // path comes from the operator
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return writeReport(f, report)
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}
