package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/meverselabs/swapharness/cmd/closer"
	"github.com/meverselabs/swapharness/common/rlog"
	"github.com/meverselabs/swapharness/forknet"
)

type options struct {
	cfgPath   string
	verbosity int
}

func main() {
	var opts options
	rootCmd := &cobra.Command{
		Use:           "swapscenario",
		Short:         "runs the Swap deposit, swap and withdraw scenario on a forked chain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.cfgPath, "config", "./config.toml", "config file path (toml or yaml)")
	rootCmd.PersistentFlags().IntVar(&opts.verbosity, "verbosity", -1, "log level 0-5, overrides the config")
	rootCmd.AddCommand(runCommand(&opts))
	rootCmd.AddCommand(nodeCommand(&opts))
	rootCmd.AddCommand(impersonateCommand(&opts))
	if err := rootCmd.Execute(); err != nil {
		log.Error("Failed", "err", err)
		os.Exit(1)
	}
}

func (o *options) load(cmd *cobra.Command) (Config, log.Logger, error) {
	cfg, err := LoadConfig(o.cfgPath, cmd.Flags().Changed("config"))
	if err != nil {
		return cfg, nil, err
	}
	if o.verbosity >= 0 {
		cfg.Log.Verbosity = o.verbosity
	}
	return cfg, rlog.Setup(os.Stderr, cfg.Log.Verbosity, cfg.Log.Color), nil
}

// signalContext is cancelled on the first interrupt, all closers run on return
func signalContext(logger log.Logger) (context.Context, *closer.Manager) {
	ctx, cancel := context.WithCancel(context.Background())
	cm := closer.NewManager(logger)
	cm.Add("context", closer.Func(cancel))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		select {
		case <-sigc:
			cm.CloseAll()
		case <-ctx.Done():
		}
		signal.Stop(sigc)
	}()
	return ctx, cm
}

func dial(ctx context.Context, cfg Config, url string, logger log.Logger) (*forknet.Client, error) {
	dialect, err := forknet.ParseDialect(cfg.Network.Dialect)
	if err != nil {
		return nil, err
	}
	gasPrice, err := cfg.GasPriceWei()
	if err != nil {
		return nil, err
	}
	return forknet.Dial(ctx, url, forknet.Config{
		Dialect:  dialect,
		GasPrice: gasPrice,
		GasLimit: cfg.Network.GasLimit,
		Logger:   logger,
	})
}
