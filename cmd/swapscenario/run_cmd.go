package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meverselabs/swapharness/cmd/closer"
	"github.com/meverselabs/swapharness/contract/evm"
	"github.com/meverselabs/swapharness/forknet"
	"github.com/meverselabs/swapharness/scenario"
)

func runCommand(opts *options) *cobra.Command {
	var launch bool
	var artifact string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "runs the scenario against the node, or a launched anvil with --launch",
		Long: `Runs the scenario against the node, or a launched anvil with --launch.
The node is reset to a fork of fork_url (or MAINNET_RPC_URL). Without a fork url the node
is used as it is and must already be a fork of mainnet; --launch always needs one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if len(artifact) > 0 {
				cfg.Scenario.Artifact = artifact
			}
			params, err := cfg.Params()
			if err != nil {
				return err
			}
			art, err := evm.LoadArtifact(cfg.Scenario.Artifact)
			if err != nil {
				return err
			}

			ctx, cm := signalContext(logger)
			defer cm.CloseAll()

			url := cfg.Network.NodeURL
			if launch {
				lc, err := cfg.Launcher()
				if err != nil {
					return err
				}
				node, err := forknet.Launch(ctx, lc, logger)
				if err != nil {
					return err
				}
				cm.Add("node", node)
				url = node.URL()
			}

			client, err := dial(ctx, cfg, url, logger)
			if err != nil {
				return err
			}
			cm.Add("client", closer.Func(client.Close))

			stages := runStages(cfg)
			if len(stages) < len(scenario.DefaultStages()) {
				logger.Warn("No fork url, running on the node state as is", "node", url)
			}
			runner := scenario.NewRunner(scenario.NewForkBackend(client, art), logger, stages...)
			_, rp, err := runner.Run(ctx, params)
			fmt.Fprintln(cmd.OutOrStdout(), rp)
			return err
		},
	}
	cmd.Flags().BoolVar(&launch, "launch", false, "launch an anvil node forking the configured url")
	cmd.Flags().StringVar(&artifact, "artifact", "", "compiled Swap artifact, overrides the config")
	return cmd
}

// runStages returns the scenario stages, without the fork reset when no fork url is configured
func runStages(cfg Config) []scenario.Stage {
	stages := scenario.DefaultStages()
	if len(cfg.Network.ForkURL) > 0 {
		return stages
	}
	return stages[1:]
}
