package scenario

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
)

// StageFunc runs one step of the scenario and returns the updated context
type StageFunc func(ctx context.Context, b Backend, sc Context) (Context, error)

// Stage is a named step of the scenario
type Stage struct {
	Name string
	Run  StageFunc
}

// stage names
const (
	StageFork        = "fork"
	StageImpersonate = "impersonate"
	StageAcquire     = "acquire"
	StageDeposit     = "deposit"
	StageSwap        = "swap"
	StageWithdraw    = "withdraw"
)

// DefaultStages returns the six stages of the scenario in order
func DefaultStages() []Stage {
	return []Stage{
		{Name: StageFork, Run: ForkNetwork},
		{Name: StageImpersonate, Run: ImpersonateWhale},
		{Name: StageAcquire, Run: AcquireContracts},
		{Name: StageDeposit, Run: Deposit},
		{Name: StageSwap, Run: SwapAll},
		{Name: StageWithdraw, Run: Withdraw},
	}
}

// ForkNetwork resets the node to a fork of the configured chain
func ForkNetwork(ctx context.Context, b Backend, sc Context) (Context, error) {
	if err := b.Reset(ctx, sc.Params.Fork); err != nil {
		return sc, err
	}
	sc.Logger.Info("Forked network", "url", sc.Params.Fork.URL, "block", sc.Params.Fork.BlockNumber)
	return sc, nil
}

// ImpersonateWhale unlocks the whale and sets its native balance
func ImpersonateWhale(ctx context.Context, b Backend, sc Context) (Context, error) {
	whale := sc.Params.Whale
	if err := b.Impersonate(ctx, whale); err != nil {
		return sc, err
	}
	if err := b.SetBalance(ctx, whale, sc.Params.WhaleFunding); err != nil {
		return sc, err
	}
	bal, err := b.Balance(ctx, whale)
	if err != nil {
		return sc, err
	}
	if bal.Cmp(sc.Params.WhaleFunding) != 0 {
		return sc, errors.Wrapf(ErrFundingMismatch, "have %v want %v", bal, sc.Params.WhaleFunding)
	}
	sc.Logger.Info("Impersonated whale", "whale", whale, "balance", bal)
	return sc, nil
}

// AcquireContracts binds both tokens and deploys a fresh Swap from the first unlocked account
func AcquireContracts(ctx context.Context, b Backend, sc Context) (Context, error) {
	accounts, err := b.Accounts(ctx)
	if err != nil {
		return sc, err
	}
	if len(accounts) == 0 {
		return sc, ErrNoDeployer
	}
	sc.Deployer = accounts[0]

	sc.TokenIn = b.Token(sc.Params.TokenIn)
	sc.TokenOut = b.Token(sc.Params.TokenOut)
	if sc.InMeta, err = b.Metadata(ctx, sc.Params.TokenIn); err != nil {
		return sc, err
	}
	if sc.OutMeta, err = b.Metadata(ctx, sc.Params.TokenOut); err != nil {
		return sc, err
	}

	if sc.Swap, err = b.DeploySwap(ctx, sc.Deployer); err != nil {
		return sc, err
	}
	if sc.Owner, err = sc.Swap.Owner(ctx); err != nil {
		return sc, err
	}
	sc.Logger.Info("Deployed Swap", "address", sc.Swap.Address, "owner", sc.Owner, "in", sc.InMeta.Symbol, "out", sc.OutMeta.Symbol)
	return sc, nil
}

// Deposit approves and deposits the whole input token balance of the whale
func Deposit(ctx context.Context, b Backend, sc Context) (Context, error) {
	if sc.Swap == nil {
		return sc, ErrNoSwap
	}
	whale, addr := sc.Params.Whale, sc.Swap.Address

	bal, err := sc.TokenIn.BalanceOf(ctx, whale)
	if err != nil {
		return sc, err
	}
	if bal.Sign() <= 0 {
		return sc, errors.Wrap(ErrNoWhaleBalance, whale.Hex())
	}
	before, err := sc.TokenIn.BalanceOf(ctx, addr)
	if err != nil {
		return sc, err
	}

	if _, err := sc.TokenIn.Approve(ctx, whale, addr, bal); err != nil {
		return sc, err
	}
	if _, err := sc.Swap.Deposit(ctx, whale, sc.Params.TokenIn, bal); err != nil {
		return sc, err
	}

	after, err := sc.TokenIn.BalanceOf(ctx, addr)
	if err != nil {
		return sc, err
	}
	if delta := new(big.Int).Sub(after, before); delta.Cmp(bal) != 0 {
		return sc, errors.Wrapf(ErrDepositMismatch, "have %v want %v", delta, bal)
	}
	rest, err := sc.TokenIn.BalanceOf(ctx, whale)
	if err != nil {
		return sc, err
	}
	if rest.Sign() != 0 {
		return sc, errors.Wrapf(ErrWhaleNotDrained, "%v left", rest)
	}
	sc.Deposited = bal
	sc.Logger.Info("Deposited", "amount", sc.formatIn(bal), "balance", sc.formatIn(after))
	return sc, nil
}

// SwapAll swaps the whole input token balance held by the contract for the output token
func SwapAll(ctx context.Context, b Backend, sc Context) (Context, error) {
	if sc.Swap == nil {
		return sc, ErrNoSwap
	}
	addr := sc.Swap.Address

	inBefore, err := sc.TokenIn.BalanceOf(ctx, addr)
	if err != nil {
		return sc, err
	}
	if inBefore.Sign() <= 0 {
		return sc, errors.Wrap(ErrNoSwapInput, addr.Hex())
	}
	outBefore, err := sc.TokenOut.BalanceOf(ctx, addr)
	if err != nil {
		return sc, err
	}
	if _, err := sc.Swap.Swap(ctx, sc.Params.Whale, sc.Params.TokenIn, sc.Params.TokenOut, inBefore); err != nil {
		return sc, err
	}

	inAfter, err := sc.TokenIn.BalanceOf(ctx, addr)
	if err != nil {
		return sc, err
	}
	if inAfter.Sign() != 0 {
		return sc, errors.Wrapf(ErrSwapInputRemaining, "%v left", inAfter)
	}
	outAfter, err := sc.TokenOut.BalanceOf(ctx, addr)
	if err != nil {
		return sc, err
	}
	out := new(big.Int).Sub(outAfter, outBefore)
	if out.Sign() <= 0 {
		return sc, ErrNoSwapOutput
	}
	sc.SwapIn = inBefore
	sc.SwapOut = out

	booked, err := sc.Swap.GetBalance(ctx, sc.Params.Whale, sc.Params.TokenOut)
	if err != nil {
		return sc, err
	}
	sc.Logger.Info("Swapped", "in", sc.formatIn(sc.SwapIn), "out", sc.formatOut(out), "booked", sc.formatOut(booked))
	return sc, nil
}

// Withdraw withdraws the whole output token balance of the contract back to the whale
func Withdraw(ctx context.Context, b Backend, sc Context) (Context, error) {
	if sc.Swap == nil {
		return sc, ErrNoSwap
	}
	whale, addr := sc.Params.Whale, sc.Swap.Address

	amt, err := sc.TokenOut.BalanceOf(ctx, addr)
	if err != nil {
		return sc, err
	}
	if sc.WhaleOutBefore, err = sc.TokenOut.BalanceOf(ctx, whale); err != nil {
		return sc, err
	}
	if _, err := sc.Swap.Withdraw(ctx, whale, sc.Params.TokenOut, amt); err != nil {
		return sc, err
	}
	sc.Withdrawn = amt
	if sc.WhaleOutAfter, err = sc.TokenOut.BalanceOf(ctx, whale); err != nil {
		return sc, err
	}

	delta := sc.WhaleDelta()
	sc.Logger.Info("Withdrawn", "amount", sc.formatOut(amt), "whale", sc.formatOut(sc.WhaleOutAfter), "delta", sc.formatOut(delta))
	if delta.Cmp(amt) != 0 {
		return sc, errors.Wrapf(ErrWithdrawMismatch, "have %v want %v", delta, amt)
	}
	if sc.SwapOut != nil && delta.Cmp(sc.SwapOut) != 0 {
		return sc, errors.Wrapf(ErrWithdrawMismatch, "have %v want swap output %v", delta, sc.SwapOut)
	}

	for _, t := range []struct {
		name string
		bal  func() (*big.Int, error)
	}{
		{sc.InMeta.Symbol, func() (*big.Int, error) { return sc.TokenIn.BalanceOf(ctx, addr) }},
		{sc.OutMeta.Symbol, func() (*big.Int, error) { return sc.TokenOut.BalanceOf(ctx, addr) }},
	} {
		bal, err := t.bal()
		if err != nil {
			return sc, err
		}
		if bal.Sign() != 0 {
			return sc, errors.Wrapf(ErrContractNotEmpty, "%v %s", bal, t.name)
		}
	}
	return sc, nil
}
