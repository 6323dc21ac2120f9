//go:build fork

package scenario_test

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/meverselabs/swapharness/cmd/config"
	"github.com/meverselabs/swapharness/contract/evm"
	"github.com/meverselabs/swapharness/forknet"
	"github.com/meverselabs/swapharness/scenario"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Swap on a mainnet fork", Ordered, func() {
	var (
		node   *forknet.Launcher
		client *forknet.Client
		art    *evm.Artifact
		url    string
	)

	BeforeAll(func() {
		Expect(config.LoadEnv("../.env")).To(Succeed())
		url = config.Getenv("MAINNET_RPC_URL", "ALCHEMY_MAINNET_URL")
		if len(url) == 0 {
			Skip("MAINNET_RPC_URL is not set")
		}
		path := config.Getenv("SWAP_ARTIFACT")
		if len(path) == 0 {
			Skip("SWAP_ARTIFACT is not set")
		}

		var err error
		art, err = evm.LoadArtifact(path)
		Expect(err).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		node, err = forknet.Launch(ctx, forknet.LauncherConfig{
			Binary:   config.Getenv("ANVIL_BIN"),
			Port:     18545,
			Fork:     forknet.Fork{URL: url},
			GasPrice: big.NewInt(20_000_000_000),
		}, logger)
		Expect(err).To(Succeed())
		DeferCleanup(node.Close)

		client, err = forknet.Dial(ctx, node.URL(), forknet.Config{
			GasPrice: big.NewInt(20_000_000_000),
			Logger:   logger,
		})
		Expect(err).To(Succeed())
		DeferCleanup(client.Close)
	})

	It("runs every stage", func(ctx SpecContext) {
		b := scenario.NewForkBackend(client, art)
		sc, rp, err := scenario.NewRunner(b, logger).Run(ctx, scenario.DefaultParams(url))
		GinkgoWriter.Println(rp)
		Expect(err).To(Succeed())
		Expect(rp.Passed()).To(BeTrue())
		Expect(sc.Deposited.Sign()).To(Equal(1))
		Expect(sc.SwapOut.Sign()).To(Equal(1))
		Expect(sc.WhaleDelta()).To(bigEqual(sc.SwapOut))
	}, NodeTimeout(5*time.Minute))

	It("rejects an unknown sender", func(ctx SpecContext) {
		b := scenario.NewForkBackend(client, art)
		runner := scenario.NewRunner(b, logger, stagesWithout(scenario.StageImpersonate)...)
		_, rp, err := runner.Run(ctx, scenario.DefaultParams(url))
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, scenario.ErrDepositMismatch)).To(BeFalse())
		Expect(rp.Failed().Name).To(Equal(scenario.StageDeposit))
	}, NodeTimeout(5*time.Minute))
})
