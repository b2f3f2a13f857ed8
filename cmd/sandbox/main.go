package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/memory"
	"github.com/leoovs/Xuzumi/pool"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := newViper()
	var (
		configPath  string
		interactive bool
	)

	root := &cobra.Command{
		Use:           "sandbox",
		Short:         "Exercise Xuzumi pools and smart pointers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive {
				return cmd.Help()
			}
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return err
			}
			return runInteractive(cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default ./xuzumi.yaml)")
	flags.Int("block-size", pool.DefaultBlockSize, "Chunks per pool block")
	flags.String("log-level", "info", "Log level")
	flags.Bool("log-dev", false, "Development logging")
	flags.String("metrics-addr", "", "Serve prometheus metrics on this address")
	root.Flags().BoolVarP(&interactive, "interactive", "i", false, "Interactive pool inspector")

	mustBind(v, "pool.block_size", flags.Lookup("block-size"))
	mustBind(v, "log.level", flags.Lookup("log-level"))
	mustBind(v, "log.development", flags.Lookup("log-dev"))
	mustBind(v, "metrics.addr", flags.Lookup("metrics-addr"))

	root.AddCommand(newRunCommand(v, &configPath))
	root.AddCommand(newStressCommand(v, &configPath))
	return root
}

func newRunCommand(v *viper.Viper, configPath *string) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Spawn pooled entities and show pool behavior",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(v, *configPath)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			factory := NewEntityFactory(cfg.Pool, log)
			stop, err := startMetrics(cfg.Metrics, factory.Allocator(), log)
			if err != nil {
				return err
			}
			defer stop()

			return runDemo(cmd.OutOrStdout(), factory, count, log)
		},
	}
	cmd.Flags().IntVar(&count, "count", 12, "Number of entities to spawn")
	return cmd
}

func newStressCommand(v *viper.Viper, configPath *string) *cobra.Command {
	opts := stressOptions{}
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Churn shared pointers through per-worker allocators",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(v, *configPath)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			report, err := runStress(ctx, cfg.Pool, opts, log)
			if err != nil {
				return err
			}
			printStressReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "Concurrent workers, one allocator each")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 100000, "Allocations per worker")
	cmd.Flags().IntVar(&opts.Window, "window", 64, "Live pointers kept per worker")
	return cmd
}

// setup loads configuration and installs the logger for every package.
func setup(v *viper.Viper, configPath string) (Config, *zap.Logger, error) {
	cfg, err := loadConfig(v, configPath)
	if err != nil {
		return Config{}, nil, err
	}
	log, err := newLogger(cfg.Log, nil)
	if err != nil {
		return Config{}, nil, err
	}
	installLogger(log)
	return cfg, log, nil
}

func installLogger(log *zap.Logger) {
	memory.SetLogger(log.Named("memory"))
	pool.SetLogger(log.Named("pool"))
}

// startMetrics serves /metrics when addr is configured. The returned stop
// function is always safe to call.
func startMetrics(cfg MetricsConfig, alloc *pool.PoolAllocator, log *zap.Logger) (func(), error) {
	if cfg.Addr == "" {
		return func() {}, nil
	}
	srv, err := serveMetrics(cfg.Addr, alloc, log)
	if err != nil {
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("metrics shutdown", zap.Error(err))
		}
	}, nil
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
