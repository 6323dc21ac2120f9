package scenario_test

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/meverselabs/swapharness/forknet"
	"github.com/meverselabs/swapharness/scenario"
	testlib "github.com/meverselabs/swapharness/tests/lib"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Swap", func() {
	var (
		cn  *testlib.Chain
		b   scenario.Backend
		ctx context.Context
	)

	BeforeEach(func() {
		cn, b = newChain(testlib.MainnetOptions{Swap: testlib.SwapOptions{FeeBps: _FeeBps}})
		ctx = context.Background()
	})

	Describe("full run", func() {
		It("deposits, swaps and withdraws with exact balances", func() {
			sc, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(err).To(Succeed())
			Expect(rp.Passed()).To(BeTrue())
			Expect(rp.Results).To(HaveLen(6))
			Expect(rp.Count(scenario.Passed)).To(Equal(6))
			Expect(rp.RunID).To(Equal(sc.RunID))

			Expect(sc.Deposited).To(bigEqual(_WhaleDAI))
			Expect(sc.SwapIn).To(bigEqual(_WhaleDAI))
			Expect(sc.SwapOut).To(bigEqual(_SwapOut))
			Expect(sc.Withdrawn).To(bigEqual(_SwapOut))
			Expect(sc.WhaleDelta()).To(bigEqual(_SwapOut))

			Expect(cn.TokenBalance(scenario.DAI, sc.SwapAddress()).Sign()).To(BeZero())
			Expect(cn.TokenBalance(scenario.USDT, sc.SwapAddress()).Sign()).To(BeZero())
			Expect(cn.TokenBalance(scenario.USDT, scenario.DAIWhale)).To(bigEqual(_SwapOut))
			Expect(cn.TokenBalance(scenario.USDT, testlib.Pool)).To(bigEqual(new(big.Int).Sub(testlib.Units(100_000_000, 6), _SwapOut)))
		})

		It("forks the configured source", func() {
			p := params()
			p.Fork.BlockNumber = 15969633
			_, _, err := scenario.NewRunner(b, logger).Run(ctx, p)
			Expect(err).To(Succeed())
			Expect(cn.Forks()).To(Equal([]forknet.Fork{{URL: forkURL, BlockNumber: 15969633}}))
		})

		It("owner is the deployer", func() {
			sc, _, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(err).To(Succeed())
			Expect(sc.Owner).To(Equal(testlib.GetSigners()[0]))
			Expect(sc.Deployer).To(Equal(sc.Owner))
		})

		It("token metadata", func() {
			sc, _, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(err).To(Succeed())
			Expect(sc.InMeta.Symbol).To(Equal("DAI"))
			Expect(sc.InMeta.Decimals).To(Equal(uint8(18)))
			Expect(sc.OutMeta.Symbol).To(Equal("USDT"))
			Expect(sc.OutMeta.Decimals).To(Equal(uint8(6)))
		})

		It("runs twice on the same node", func() {
			runner := scenario.NewRunner(b, logger)
			first, _, err := runner.Run(ctx, params())
			Expect(err).To(Succeed())
			second, _, err := runner.Run(ctx, params())
			Expect(err).To(Succeed())
			Expect(second.RunID).NotTo(Equal(first.RunID))
			Expect(second.SwapOut).To(bigEqual(first.SwapOut))
			Expect(cn.Forks()).To(HaveLen(2))
		})
	})

	Describe("stages", func() {
		var sc scenario.Context

		BeforeEach(func() {
			sc = scenario.Context{Params: params(), Logger: logger}
			var err error
			sc, err = scenario.ForkNetwork(ctx, b, sc)
			Expect(err).To(Succeed())
		})

		It("impersonation is idempotent", func() {
			var err error
			for i := 0; i < 3; i++ {
				sc, err = scenario.ImpersonateWhale(ctx, b, sc)
				Expect(err).To(Succeed())
			}
			bal, err := cn.Balance(ctx, scenario.DAIWhale)
			Expect(err).To(Succeed())
			Expect(bal).To(bigEqual(scenario.WhaleFunding))
		})

		It("deposit moves the whole whale balance", func() {
			var err error
			sc, err = scenario.ImpersonateWhale(ctx, b, sc)
			Expect(err).To(Succeed())
			sc, err = scenario.AcquireContracts(ctx, b, sc)
			Expect(err).To(Succeed())
			Expect(sc.Swap).NotTo(BeNil())

			sc, err = scenario.Deposit(ctx, b, sc)
			Expect(err).To(Succeed())
			Expect(sc.Deposited).To(bigEqual(_WhaleDAI))
			Expect(cn.TokenBalance(scenario.DAI, sc.SwapAddress())).To(bigEqual(_WhaleDAI))
			Expect(cn.TokenBalance(scenario.DAI, scenario.DAIWhale).Sign()).To(BeZero())

			booked, err := sc.Swap.GetBalance(ctx, scenario.DAIWhale, scenario.DAI)
			Expect(err).To(Succeed())
			Expect(booked).To(bigEqual(_WhaleDAI))
		})

		It("swap empties the input token", func() {
			var err error
			for _, f := range []scenario.StageFunc{scenario.ImpersonateWhale, scenario.AcquireContracts, scenario.Deposit, scenario.SwapAll} {
				sc, err = f(ctx, b, sc)
				Expect(err).To(Succeed())
			}
			Expect(cn.TokenBalance(scenario.DAI, sc.SwapAddress()).Sign()).To(BeZero())
			Expect(cn.TokenBalance(scenario.USDT, sc.SwapAddress())).To(bigEqual(_SwapOut))

			booked, err := sc.Swap.GetBalance(ctx, scenario.DAIWhale, scenario.USDT)
			Expect(err).To(Succeed())
			Expect(booked).To(bigEqual(_SwapOut))
		})

		It("swap spends every input token the contract holds", func() {
			var err error
			for _, f := range []scenario.StageFunc{scenario.ImpersonateWhale, scenario.AcquireContracts} {
				sc, err = f(ctx, b, sc)
				Expect(err).To(Succeed())
			}
			_, err = sc.TokenIn.Transfer(ctx, scenario.DAIWhale, sc.SwapAddress(), big.NewInt(1))
			Expect(err).To(Succeed())

			for _, f := range []scenario.StageFunc{scenario.Deposit, scenario.SwapAll, scenario.Withdraw} {
				sc, err = f(ctx, b, sc)
				Expect(err).To(Succeed())
			}
			Expect(sc.Deposited).To(bigEqual(new(big.Int).Sub(_WhaleDAI, big.NewInt(1))))
			Expect(sc.SwapIn).To(bigEqual(_WhaleDAI))
			Expect(sc.SwapOut).To(bigEqual(_SwapOut))
			Expect(sc.WhaleDelta()).To(bigEqual(_SwapOut))
			Expect(cn.TokenBalance(scenario.DAI, sc.SwapAddress()).Sign()).To(BeZero())
		})

		It("swap needs input token in the contract", func() {
			var err error
			for _, f := range []scenario.StageFunc{scenario.ImpersonateWhale, scenario.AcquireContracts} {
				sc, err = f(ctx, b, sc)
				Expect(err).To(Succeed())
			}
			_, err = scenario.SwapAll(ctx, b, sc)
			Expect(errors.Is(err, scenario.ErrNoSwapInput)).To(BeTrue())
		})

		It("balance set twice is not accumulated", func() {
			cn.AddBalance = true
			var err error
			sc, err = scenario.ImpersonateWhale(ctx, b, sc)
			Expect(err).To(Succeed())
			_, err = scenario.ImpersonateWhale(ctx, b, sc)
			Expect(errors.Is(err, scenario.ErrFundingMismatch)).To(BeTrue())
		})

		It("deposit needs an acquired Swap", func() {
			_, err := scenario.Deposit(ctx, b, sc)
			Expect(errors.Is(err, scenario.ErrNoSwap)).To(BeTrue())
		})
	})

	Describe("failures", func() {
		It("empty whale", func() {
			_, b = newChain(testlib.MainnetOptions{WhaleDAI: big.NewInt(0)})
			_, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(errors.Is(err, scenario.ErrNoWhaleBalance)).To(BeTrue())
			Expect(err.Error()).To(HavePrefix("stage deposit"))
			Expect(statuses(rp)).To(Equal([]scenario.Status{
				scenario.Passed, scenario.Passed, scenario.Passed,
				scenario.Failed, scenario.Skipped, scenario.Skipped,
			}))
			Expect(rp.Failed().Name).To(Equal(scenario.StageDeposit))
		})

		It("whale not impersonated", func() {
			runner := scenario.NewRunner(b, logger, stagesWithout(scenario.StageImpersonate)...)
			_, rp, err := runner.Run(ctx, params())
			Expect(errors.Is(err, testlib.ErrUnknownAccount)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageDeposit))
			Expect(rp.Count(scenario.Skipped)).To(Equal(2))
		})

		It("no fork url", func() {
			_, rp, err := scenario.NewRunner(b, logger).Run(ctx, scenario.DefaultParams(""))
			Expect(errors.Is(err, forknet.ErrForkURLRequired)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageFork))
			Expect(rp.Count(scenario.Skipped)).To(Equal(5))
			Expect(cn.Forks()).To(BeEmpty())
		})

		It("unfunded whale pays no gas", func() {
			p := params()
			p.WhaleFunding = big.NewInt(0)
			_, rp, err := scenario.NewRunner(b, logger).Run(ctx, p)
			Expect(errors.Is(err, testlib.ErrInsufficientGas)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageDeposit))
		})

		It("input token left behind by the swap", func() {
			_, b = newChain(testlib.MainnetOptions{Swap: testlib.SwapOptions{FeeBps: _FeeBps, Leak: big.NewInt(1)}})
			_, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(errors.Is(err, scenario.ErrSwapInputRemaining)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageSwap))
		})

		It("withdraw short of the withdrawn amount", func() {
			_, b = newChain(testlib.MainnetOptions{Swap: testlib.SwapOptions{FeeBps: _FeeBps, WithdrawFeeBps: 10}})
			sc, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(errors.Is(err, scenario.ErrWithdrawMismatch)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageWithdraw))
			Expect(sc.Withdrawn).To(bigEqual(_SwapOut))
			Expect(sc.WhaleDelta()).To(bigEqual(new(big.Int).Sub(_SwapOut, big.NewInt(999_600_000))))
		})

		It("pool without liquidity reverts", func() {
			_, b = newChain(testlib.MainnetOptions{PoolUSDT: testlib.Units(10, 6)})
			_, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(errors.Is(err, forknet.ErrReverted)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageSwap))
		})

		It("swap without a deposit", func() {
			runner := scenario.NewRunner(b, logger, stagesWithout(scenario.StageDeposit)...)
			var (
				rp  *scenario.Report
				err error
			)
			Expect(func() { _, rp, err = runner.Run(ctx, params()) }).NotTo(Panic())
			Expect(errors.Is(err, scenario.ErrNoSwapInput)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageSwap))
			Expect(rp.Count(scenario.Skipped)).To(Equal(1))
		})

		It("fee on transfer input token", func() {
			_, b = newChain(testlib.MainnetOptions{DAITransferFee: 10, Swap: testlib.SwapOptions{FeeBps: _FeeBps}})
			_, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(errors.Is(err, scenario.ErrDepositMismatch)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageDeposit))
		})

		It("whale refilled during deposit", func() {
			_, b = newChain(testlib.MainnetOptions{Swap: testlib.SwapOptions{FeeBps: _FeeBps, DepositBonus: testlib.Units(1, 18)}})
			_, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(errors.Is(err, scenario.ErrWhaleNotDrained)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageDeposit))
		})

		It("swap without output", func() {
			_, b = newChain(testlib.MainnetOptions{Swap: testlib.SwapOptions{FeeBps: 10000}})
			_, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(errors.Is(err, scenario.ErrNoSwapOutput)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageSwap))
		})

		It("contract not emptied by withdraw", func() {
			_, b = newChain(testlib.MainnetOptions{Swap: testlib.SwapOptions{FeeBps: _FeeBps, WithdrawTopUp: testlib.Units(1, 6)}})
			sc, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(errors.Is(err, scenario.ErrContractNotEmpty)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageWithdraw))
			Expect(sc.WhaleDelta()).To(bigEqual(_SwapOut))
		})

		It("node adding instead of setting balances", func() {
			_, b = newChain(testlib.MainnetOptions{AddBalance: true})
			all := scenario.DefaultStages()
			stages := []scenario.Stage{all[0], all[1], all[1], all[2]}
			_, rp, err := scenario.NewRunner(b, logger, stages...).Run(ctx, params())
			Expect(errors.Is(err, scenario.ErrFundingMismatch)).To(BeTrue())
			Expect(statuses(rp)[:3]).To(Equal([]scenario.Status{scenario.Passed, scenario.Passed, scenario.Failed}))
			Expect(rp.Failed().Name).To(Equal(scenario.StageImpersonate))
		})

		It("no unlocked account", func() {
			_, b = newChain(testlib.MainnetOptions{NoAccounts: true})
			_, rp, err := scenario.NewRunner(b, logger).Run(ctx, params())
			Expect(errors.Is(err, scenario.ErrNoDeployer)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageAcquire))
		})

		It("cancelled context", func() {
			cctx, cancel := context.WithTimeout(ctx, time.Nanosecond)
			defer cancel()
			<-cctx.Done()
			_, rp, err := scenario.NewRunner(b, logger).Run(cctx, params())
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
			Expect(rp.Failed().Name).To(Equal(scenario.StageFork))
			Expect(rp.Count(scenario.Skipped)).To(Equal(5))
		})
	})
})
