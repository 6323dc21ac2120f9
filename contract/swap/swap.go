package swap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/meverselabs/swapharness/contract/evm"
)

// Swap deposits, swaps and withdraws ERC20 tokens on behalf of its users
type Swap struct {
	evm.Contract
}

// At returns the Swap deployed at addr
func At(addr common.Address, backend evm.Backend) *Swap {
	s := &Swap{}
	s.Set(ParsedABI, backend, addr)
	return s
}

// Deploy deploys a fresh Swap from the artifact, sent by from
func Deploy(ctx context.Context, backend evm.Backend, art *evm.Artifact, from common.Address) (*Swap, *types.Receipt, error) {
	if err := evm.RequireMethods(art.ABI, Methods...); err != nil {
		return nil, nil, err
	}
	c, receipt, err := evm.Deploy(ctx, backend, art, from)
	if err != nil {
		return nil, receipt, err
	}
	return &Swap{Contract: *c}, receipt, nil
}

// Owner returns the owner of the contract
func (s *Swap) Owner(ctx context.Context) (common.Address, error) {
	return evm.Result[common.Address](s.Call(ctx, "owner"))
}

// GetBalance returns the balance of token the contract books for account
func (s *Swap) GetBalance(ctx context.Context, account, token common.Address) (*big.Int, error) {
	return evm.Result[*big.Int](s.Call(ctx, "getBalance", account, token))
}

// Deposit pulls amount of token from from into the contract, it needs an allowance
func (s *Swap) Deposit(ctx context.Context, from, token common.Address, amount *big.Int) (*types.Receipt, error) {
	return s.Transact(ctx, from, "deposit", token, amount)
}

// Swap exchanges amount of tokenIn held for from into tokenOut
func (s *Swap) Swap(ctx context.Context, from, tokenIn, tokenOut common.Address, amount *big.Int) (*types.Receipt, error) {
	return s.Transact(ctx, from, "swap", tokenIn, tokenOut, amount)
}

// Withdraw sends amount of token held for from back to from
func (s *Swap) Withdraw(ctx context.Context, from, token common.Address, amount *big.Int) (*types.Receipt, error) {
	return s.Transact(ctx, from, "withdraw", token, amount)
}
