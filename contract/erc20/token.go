package erc20

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/meverselabs/swapharness/contract/evm"
)

// Token is an ERC20 token contract
type Token struct {
	evm.Contract
}

// NewToken returns the token at addr
func NewToken(addr common.Address, backend evm.Backend) *Token {
	t := &Token{}
	t.Set(ParsedABI, backend, addr)
	return t
}

// Name returns the token name
func (t *Token) Name(ctx context.Context) (string, error) {
	return evm.Result[string](t.Call(ctx, "name"))
}

// Symbol returns the token symbol
func (t *Token) Symbol(ctx context.Context) (string, error) {
	return evm.Result[string](t.Call(ctx, "symbol"))
}

// Decimals returns the token decimals
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	return evm.Result[uint8](t.Call(ctx, "decimals"))
}

// TotalSupply returns the total supply
func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	return evm.Result[*big.Int](t.Call(ctx, "totalSupply"))
}

// BalanceOf returns the balance of holder
func (t *Token) BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	return evm.Result[*big.Int](t.Call(ctx, "balanceOf", holder))
}

// Allowance returns how much spender may still transfer from owner
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return evm.Result[*big.Int](t.Call(ctx, "allowance", owner, spender))
}

// Approve lets spender transfer up to value from owner
func (t *Token) Approve(ctx context.Context, owner, spender common.Address, value *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, owner, "approve", spender, value)
}

// Transfer moves value from from to to
func (t *Token) Transfer(ctx context.Context, from, to common.Address, value *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, from, "transfer", to, value)
}
