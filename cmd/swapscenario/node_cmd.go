package main

import (
	"github.com/spf13/cobra"

	"github.com/meverselabs/swapharness/forknet"
)

func nodeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "node",
		Short: "launches an anvil node forking the configured url until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			lc, err := cfg.Launcher()
			if err != nil {
				return err
			}

			ctx, cm := signalContext(logger)
			defer cm.CloseAll()

			node, err := forknet.Launch(ctx, lc, logger)
			if err != nil {
				return err
			}
			cm.Add("node", node)

			select {
			case <-ctx.Done():
			case <-node.Done():
				return forknet.ErrProcessExited
			}
			return nil
		},
	}
}
