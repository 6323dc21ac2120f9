package testlib

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/meverselabs/swapharness/contract/swap"
)

// SwapOptions shapes the SwapContract
type SwapOptions struct {
	FeeBps         int64    // pool fee of each swap
	Leak           *big.Int // tokenIn kept back by the contract on each swap
	WithdrawFeeBps int64    // share of each withdrawal paid to the owner
	DepositBonus   *big.Int // tokenIn paid by the Pool to each depositor
	WithdrawTopUp  *big.Int // token pulled from the Pool into the contract on each withdrawal
}

// SwapContract books deposits per user and swaps its holdings against the Pool at par, net of the fee.
// A swap spends the holdings of the contract and books the deposit of the caller down to zero.
type SwapContract struct {
	owner    common.Address
	opts     SwapOptions
	balances map[common.Address]map[common.Address]*big.Int
}

// NewSwapContract returns the contract owned by owner
func NewSwapContract(owner common.Address, opts SwapOptions) *SwapContract {
	return &SwapContract{
		owner:    owner,
		opts:     opts,
		balances: map[common.Address]map[common.Address]*big.Int{},
	}
}

// ABI implements Contract
func (s *SwapContract) ABI() *abi.ABI {
	return swap.ParsedABI
}

// Clone implements Contract
func (s *SwapContract) Clone() Contract {
	c := NewSwapContract(s.owner, s.opts)
	for user, m := range s.balances {
		cm := map[common.Address]*big.Int{}
		for token, v := range m {
			cm[token] = new(big.Int).Set(v)
		}
		c.balances[user] = cm
	}
	return c
}

// Exec implements Contract
func (s *SwapContract) Exec(cc *ContractContext, method string, args []interface{}) ([]interface{}, error) {
	switch method {
	case "owner":
		return []interface{}{s.owner}, nil
	case "getBalance":
		return []interface{}{s.balanceOf(args[0].(common.Address), args[1].(common.Address))}, nil
	case "deposit":
		return nil, s.deposit(cc, args[0].(common.Address), args[1].(*big.Int))
	case "swap":
		return nil, s.swap(cc, args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int))
	case "withdraw":
		return nil, s.withdraw(cc, args[0].(common.Address), args[1].(*big.Int))
	default:
		return nil, errors.Wrap(ErrUnknownSelector, method)
	}
}

func (s *SwapContract) balanceOf(user, token common.Address) *big.Int {
	if v, has := s.balances[user][token]; has {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

func (s *SwapContract) book(user, token common.Address, delta *big.Int) {
	m, has := s.balances[user]
	if !has {
		m = map[common.Address]*big.Int{}
		s.balances[user] = m
	}
	m[token] = new(big.Int).Add(s.balanceOf(user, token), delta)
}

func (s *SwapContract) deposit(cc *ContractContext, token common.Address, amt *big.Int) error {
	if amt.Sign() <= 0 {
		return errors.New("Swap: ZERO_AMOUNT")
	}
	t, err := cc.Token(token)
	if err != nil {
		return err
	}
	if err := t.TransferFrom(cc.Self(), cc.From(), cc.Self(), amt); err != nil {
		return err
	}
	s.book(cc.From(), token, amt)
	if s.opts.DepositBonus != nil {
		if err := t.Transfer(Pool, cc.From(), s.opts.DepositBonus); err != nil {
			return err
		}
	}
	return nil
}

// Quote returns the output of amt at par between the decimals of both tokens, net of the fee
func (s *SwapContract) Quote(amt *big.Int, inDecimals, outDecimals uint8, feeBps int64) *big.Int {
	num := new(big.Int).Mul(amt, big.NewInt(10000-feeBps))
	num.Mul(num, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(outDecimals)), nil))
	den := new(big.Int).Mul(big.NewInt(10000), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(inDecimals)), nil))
	return num.Div(num, den)
}

func (s *SwapContract) swap(cc *ContractContext, tokenIn, tokenOut common.Address, amt *big.Int) error {
	if amt.Sign() <= 0 {
		return errors.New("Swap: ZERO_AMOUNT")
	}
	booked := s.balanceOf(cc.From(), tokenIn)
	if booked.Sign() <= 0 {
		return errors.Wrap(ErrInsufficient, "Swap: BOOKED_BALANCE")
	}
	in, err := cc.Token(tokenIn)
	if err != nil {
		return err
	}
	if in.BalanceOf(cc.Self()).Cmp(amt) < 0 {
		return errors.Wrap(ErrInsufficient, "Swap: HOLDINGS")
	}
	if booked.Cmp(amt) > 0 {
		booked.Set(amt)
	}
	out, err := cc.Token(tokenOut)
	if err != nil {
		return err
	}

	sent := new(big.Int).Set(amt)
	if s.opts.Leak != nil {
		sent.Sub(sent, s.opts.Leak)
	}
	received := s.Quote(sent, in.Decimals(), out.Decimals(), s.opts.FeeBps)
	if out.BalanceOf(Pool).Cmp(received) < 0 {
		return ErrInsufficientPool
	}
	if err := in.Transfer(cc.Self(), Pool, sent); err != nil {
		return err
	}
	if err := out.Transfer(Pool, cc.Self(), received); err != nil {
		return err
	}
	s.book(cc.From(), tokenIn, booked.Neg(booked))
	s.book(cc.From(), tokenOut, received)
	return nil
}

func (s *SwapContract) withdraw(cc *ContractContext, token common.Address, amt *big.Int) error {
	if s.balanceOf(cc.From(), token).Cmp(amt) < 0 {
		return errors.Wrap(ErrInsufficient, "Swap: BOOKED_BALANCE")
	}
	t, err := cc.Token(token)
	if err != nil {
		return err
	}
	fee := new(big.Int).Mul(amt, big.NewInt(s.opts.WithdrawFeeBps))
	fee.Div(fee, big.NewInt(10000))
	if err := t.Transfer(cc.Self(), cc.From(), new(big.Int).Sub(amt, fee)); err != nil {
		return err
	}
	if fee.Sign() > 0 {
		if err := t.Transfer(cc.Self(), s.owner, fee); err != nil {
			return err
		}
	}
	s.book(cc.From(), token, new(big.Int).Neg(amt))
	if s.opts.WithdrawTopUp != nil {
		if err := t.Transfer(Pool, cc.Self(), s.opts.WithdrawTopUp); err != nil {
			return err
		}
	}
	return nil
}
