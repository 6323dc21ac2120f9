package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/meverselabs/swapharness/common/amount"
)

func impersonateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "impersonate [address] (ether)",
		Short: "unlocks the address on the node and sets its balance, whale_funding by default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if !common.IsHexAddress(args[0]) {
				return errors.Errorf("invalid address %q", args[0])
			}
			addr := common.HexToAddress(args[0])
			funding := cfg.Scenario.WhaleFunding
			if len(args) > 1 {
				funding = args[1]
			}
			wei, err := amount.Parse(funding, amount.EtherDecimals)
			if err != nil {
				return err
			}

			ctx, cm := signalContext(logger)
			defer cm.CloseAll()

			client, err := dial(ctx, cfg, cfg.Network.NodeURL, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Impersonate(ctx, addr); err != nil {
				return err
			}
			if err := client.SetBalance(ctx, addr, wei.Int); err != nil {
				return err
			}
			bal, err := client.Balance(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr.Hex(), amount.NewAmount(bal).Format(amount.EtherDecimals), "ETH")
			return nil
		},
	}
}
