package testlib

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/meverselabs/swapharness/contract/erc20"
)

// Token is an ERC20 ledger
type Token struct {
	name        string
	symbol      string
	decimals    uint8
	feeBps      int64
	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
}

// NewToken returns an empty token
func NewToken(name, symbol string, decimals uint8) *Token {
	return &Token{
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		totalSupply: big.NewInt(0),
		balances:    map[common.Address]*big.Int{},
		allowances:  map[common.Address]map[common.Address]*big.Int{},
	}
}

// ABI implements Contract
func (t *Token) ABI() *abi.ABI {
	return erc20.ParsedABI
}

// Clone implements Contract
func (t *Token) Clone() Contract {
	c := NewToken(t.name, t.symbol, t.decimals)
	c.feeBps = t.feeBps
	c.totalSupply.Set(t.totalSupply)
	for k, v := range t.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	for owner, m := range t.allowances {
		cm := map[common.Address]*big.Int{}
		for spender, v := range m {
			cm[spender] = new(big.Int).Set(v)
		}
		c.allowances[owner] = cm
	}
	return c
}

// Exec implements Contract
func (t *Token) Exec(cc *ContractContext, method string, args []interface{}) ([]interface{}, error) {
	switch method {
	case "name":
		return []interface{}{t.name}, nil
	case "symbol":
		return []interface{}{t.symbol}, nil
	case "decimals":
		return []interface{}{t.decimals}, nil
	case "totalSupply":
		return []interface{}{new(big.Int).Set(t.totalSupply)}, nil
	case "balanceOf":
		return []interface{}{t.BalanceOf(args[0].(common.Address))}, nil
	case "allowance":
		return []interface{}{t.Allowance(args[0].(common.Address), args[1].(common.Address))}, nil
	case "approve":
		t.Approve(cc.From(), args[0].(common.Address), args[1].(*big.Int))
		return []interface{}{true}, nil
	case "transfer":
		if err := t.Transfer(cc.From(), args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return []interface{}{true}, nil
	case "transferFrom":
		if err := t.TransferFrom(cc.From(), args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)); err != nil {
			return nil, err
		}
		return []interface{}{true}, nil
	default:
		return nil, errors.Wrap(ErrUnknownSelector, method)
	}
}

// Decimals returns the decimals of the token
func (t *Token) Decimals() uint8 {
	return t.decimals
}

// SetTransferFee burns bps of every transferred amount on the receiving side
func (t *Token) SetTransferFee(bps int64) {
	t.feeBps = bps
}

// Mint creates amt for to
func (t *Token) Mint(to common.Address, amt *big.Int) {
	t.totalSupply.Add(t.totalSupply, amt)
	t.addBalance(to, amt)
}

// BalanceOf returns the balance of addr
func (t *Token) BalanceOf(addr common.Address) *big.Int {
	if bal, has := t.balances[addr]; has {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// Allowance returns the remaining allowance of spender over owner
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	if v, has := t.allowances[owner][spender]; has {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

// Approve sets the allowance of spender over owner
func (t *Token) Approve(owner, spender common.Address, amt *big.Int) {
	m, has := t.allowances[owner]
	if !has {
		m = map[common.Address]*big.Int{}
		t.allowances[owner] = m
	}
	m[spender] = new(big.Int).Set(amt)
}

func (t *Token) addBalance(addr common.Address, amt *big.Int) {
	t.balances[addr] = new(big.Int).Add(t.BalanceOf(addr), amt)
}

func (t *Token) subBalance(addr common.Address, amt *big.Int) error {
	bal := t.BalanceOf(addr)
	if bal.Cmp(amt) < 0 {
		return errors.Wrapf(ErrInsufficient, "%s: %s has %v, needs %v", t.symbol, addr.Hex(), bal, amt)
	}
	t.balances[addr] = bal.Sub(bal, amt)
	return nil
}

// Transfer moves amt from from to to
func (t *Token) Transfer(from, to common.Address, amt *big.Int) error {
	if to == (common.Address{}) {
		return errors.New("Token: TRANSFER_TO_ZEROADDRESS")
	}
	if amt.Sign() < 0 {
		return errors.New("minus amount")
	}
	if err := t.subBalance(from, amt); err != nil {
		return err
	}
	fee := new(big.Int).Mul(amt, big.NewInt(t.feeBps))
	fee.Div(fee, big.NewInt(10000))
	t.totalSupply.Sub(t.totalSupply, fee)
	t.addBalance(to, new(big.Int).Sub(amt, fee))
	return nil
}

// TransferFrom moves amt from from to to, spending the allowance of spender
func (t *Token) TransferFrom(spender, from, to common.Address, amt *big.Int) error {
	allowed := t.Allowance(from, spender)
	if amt.Cmp(allowed) > 0 {
		return errors.Errorf("%s: insufficient allowance %v < %v", t.symbol, allowed, amt)
	}
	if err := t.Transfer(from, to, amt); err != nil {
		return err
	}
	if allowed.Cmp(MaxUint256) != 0 {
		t.Approve(from, spender, allowed.Sub(allowed, amt))
	}
	return nil
}
