package testlib

import (
	"bytes"
	"context"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/meverselabs/swapharness/contract/evm"
	"github.com/meverselabs/swapharness/contract/swap"
	"github.com/meverselabs/swapharness/forknet"
)

// Contract is a contract living in the Chain
type Contract interface {
	ABI() *abi.ABI
	Exec(cc *ContractContext, method string, args []interface{}) ([]interface{}, error)
	Clone() Contract
}

// ContractContext is the environment of one contract execution
type ContractContext struct {
	state *State
	from  common.Address
	self  common.Address
}

// From returns the caller
func (cc *ContractContext) From() common.Address {
	return cc.from
}

// Self returns the address of the executing contract
func (cc *ContractContext) Self() common.Address {
	return cc.self
}

// Token returns the token contract at addr
func (cc *ContractContext) Token(addr common.Address) (*Token, error) {
	t, ok := cc.state.contracts[addr].(*Token)
	if !ok {
		return nil, errors.Wrap(ErrNotToken, addr.Hex())
	}
	return t, nil
}

// State is the world state of the Chain
type State struct {
	balances     map[common.Address]*big.Int
	impersonated map[common.Address]bool
	contracts    map[common.Address]Contract
	nonces       map[common.Address]uint64
}

func newState() *State {
	return &State{
		balances:     map[common.Address]*big.Int{},
		impersonated: map[common.Address]bool{},
		contracts:    map[common.Address]Contract{},
		nonces:       map[common.Address]uint64{},
	}
}

func (st *State) clone() *State {
	c := newState()
	for k, v := range st.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	for k, v := range st.impersonated {
		c.impersonated[k] = v
	}
	for k, v := range st.contracts {
		c.contracts[k] = v.Clone()
	}
	for k, v := range st.nonces {
		c.nonces[k] = v
	}
	return c
}

// SetContract places cont at addr
func (st *State) SetContract(addr common.Address, cont Contract) {
	st.contracts[addr] = cont
}

// SetBalance sets the native balance of addr
func (st *State) SetBalance(addr common.Address, wei *big.Int) {
	st.balances[addr] = new(big.Int).Set(wei)
}

func (st *State) balance(addr common.Address) *big.Int {
	if v, has := st.balances[addr]; has {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

type code struct {
	bytecode []byte
	create   func(owner common.Address) Contract
}

// Chain is an in-memory stand-in for a forking dev node. Reset restores the genesis state,
// the default accounts are unlocked and other senders must be impersonated.
type Chain struct {
	sync.Mutex
	GasPrice   *big.Int
	AddBalance bool // SetBalance adds to the balance, as a broken node would
	accounts   []common.Address
	genesis    func(*State)
	codes      []code
	state      *State
	snapshots  map[string]*State
	forks      []forknet.Fork
	height     uint64
}

// NewChain returns a chain seeded by genesis
func NewChain(genesis func(*State)) *Chain {
	c := &Chain{
		GasPrice:  new(big.Int).Set(GasPrice),
		accounts:  GetSigners(),
		genesis:   genesis,
		snapshots: map[string]*State{},
	}
	c.state = c.makeGenesis()
	return c
}

func (c *Chain) makeGenesis() *State {
	st := newState()
	for _, a := range c.accounts {
		st.SetBalance(a, new(big.Int).Mul(big.NewInt(10000), big.NewInt(1e18)))
	}
	if c.genesis != nil {
		c.genesis(st)
	}
	return st
}

// SetAccounts replaces the unlocked default accounts
func (c *Chain) SetAccounts(accounts []common.Address) {
	c.Lock()
	defer c.Unlock()
	c.accounts = append([]common.Address{}, accounts...)
}

// RegisterCode makes a deployment of bytecode create a contract
func (c *Chain) RegisterCode(bytecode []byte, create func(owner common.Address) Contract) {
	c.Lock()
	defer c.Unlock()
	c.codes = append(c.codes, code{bytecode: bytecode, create: create})
}

// Forks returns every fork the chain was reset to
func (c *Chain) Forks() []forknet.Fork {
	c.Lock()
	defer c.Unlock()
	return append([]forknet.Fork{}, c.forks...)
}

// Contract returns the contract at addr
func (c *Chain) Contract(addr common.Address) Contract {
	c.Lock()
	defer c.Unlock()
	return c.state.contracts[addr]
}

// TokenBalance returns the balance of holder in the token at addr
func (c *Chain) TokenBalance(token, holder common.Address) *big.Int {
	c.Lock()
	defer c.Unlock()
	t, ok := c.state.contracts[token].(*Token)
	if !ok {
		return big.NewInt(0)
	}
	return t.BalanceOf(holder)
}

// Reset restores the genesis state
func (c *Chain) Reset(ctx context.Context, fork forknet.Fork) error {
	if len(fork.URL) == 0 {
		return forknet.ErrForkURLRequired
	}
	c.Lock()
	defer c.Unlock()
	c.forks = append(c.forks, fork)
	c.state = c.makeGenesis()
	c.height = fork.BlockNumber
	return nil
}

// Impersonate unlocks addr
func (c *Chain) Impersonate(ctx context.Context, addr common.Address) error {
	c.Lock()
	defer c.Unlock()
	c.state.impersonated[addr] = true
	return nil
}

// StopImpersonating locks addr again
func (c *Chain) StopImpersonating(ctx context.Context, addr common.Address) error {
	c.Lock()
	defer c.Unlock()
	delete(c.state.impersonated, addr)
	return nil
}

// SetBalance sets the native balance of addr
func (c *Chain) SetBalance(ctx context.Context, addr common.Address, wei *big.Int) error {
	if wei == nil || wei.Sign() < 0 {
		return errors.Errorf("invalid balance %v", wei)
	}
	c.Lock()
	defer c.Unlock()
	if c.AddBalance {
		wei = new(big.Int).Add(c.state.balance(addr), wei)
	}
	c.state.SetBalance(addr, wei)
	return nil
}

// Balance returns the native balance of addr
func (c *Chain) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	c.Lock()
	defer c.Unlock()
	return c.state.balance(addr), nil
}

// Accounts returns the unlocked default accounts
func (c *Chain) Accounts(ctx context.Context) ([]common.Address, error) {
	c.Lock()
	defer c.Unlock()
	return append([]common.Address{}, c.accounts...), nil
}

// Snapshot saves the state
func (c *Chain) Snapshot(ctx context.Context) (string, error) {
	c.Lock()
	defer c.Unlock()
	id := "0x" + strconv.FormatInt(int64(len(c.snapshots)+1), 16)
	c.snapshots[id] = c.state.clone()
	return id, nil
}

// Revert restores the state saved under id
func (c *Chain) Revert(ctx context.Context, id string) error {
	c.Lock()
	defer c.Unlock()
	st, has := c.snapshots[id]
	if !has {
		return errors.Wrap(ErrUnknownSnapshot, id)
	}
	c.state = st.clone()
	return nil
}

// CodeAt implements bind.ContractCaller
func (c *Chain) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	c.Lock()
	defer c.Unlock()
	if _, has := c.state.contracts[contract]; has {
		return []byte{0x60, 0x80}, nil
	}
	return nil, nil
}

// CallContract implements bind.ContractCaller, only view methods are served
func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if msg.To == nil {
		return nil, errors.New("call without a target")
	}
	c.Lock()
	defer c.Unlock()
	cont, has := c.state.contracts[*msg.To]
	if !has {
		return nil, nil
	}
	return c.dispatch(c.state, cont, msg.From, *msg.To, msg.Data, true)
}

func (c *Chain) dispatch(st *State, cont Contract, from, to common.Address, data []byte, readonly bool) ([]byte, error) {
	if len(data) < 4 {
		return nil, ErrUnknownSelector
	}
	method, err := cont.ABI().MethodById(data[:4])
	if err != nil {
		return nil, errors.Wrap(ErrUnknownSelector, err.Error())
	}
	if readonly && !method.IsConstant() {
		return nil, errors.Wrap(ErrNotView, method.Name)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	out, err := cont.Exec(&ContractContext{state: st, from: from, self: to}, method.Name, args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

// Send implements evm.Backend. A failing execution leaves the state untouched but the fee,
// and is reported with a failed receipt.
func (c *Chain) Send(ctx context.Context, from common.Address, to *common.Address, data []byte) (*types.Receipt, error) {
	c.Lock()
	defer c.Unlock()

	if !c.isUnlocked(from) {
		return nil, errors.Wrap(ErrUnknownAccount, from.Hex())
	}
	fee := new(big.Int).Mul(c.GasPrice, new(big.Int).SetUint64(TxGas))
	bal := c.state.balance(from)
	if bal.Cmp(fee) < 0 {
		return nil, errors.Wrapf(ErrInsufficientGas, "have %v want %v", bal, fee)
	}

	nonce := c.state.nonces[from]
	c.height++
	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      crypto.Keccak256Hash(from.Bytes(), new(big.Int).SetUint64(nonce).Bytes()),
		GasUsed:     TxGas,
		BlockNumber: new(big.Int).SetUint64(c.height),
		Logs:        []*types.Log{},
	}

	next := c.state.clone()
	var err error
	if to == nil {
		receipt.ContractAddress, err = c.create(next, from, nonce, data)
	} else if cont, has := next.contracts[*to]; has {
		_, err = c.dispatch(next, cont, from, *to, data, false)
	}
	if err == nil {
		c.state = next
	} else {
		receipt.Status = types.ReceiptStatusFailed
		receipt.ContractAddress = common.Address{}
	}
	c.state.nonces[from] = nonce + 1
	c.state.SetBalance(from, bal.Sub(bal, fee))

	if err != nil {
		return receipt, errors.Wrapf(forknet.ErrReverted, "reverted with reason string '%v'", err)
	}
	return receipt, nil
}

func (c *Chain) isUnlocked(addr common.Address) bool {
	if c.state.impersonated[addr] {
		return true
	}
	for _, a := range c.accounts {
		if a == addr {
			return true
		}
	}
	return false
}

func (c *Chain) create(st *State, from common.Address, nonce uint64, data []byte) (common.Address, error) {
	for _, cd := range c.codes {
		if bytes.HasPrefix(data, cd.bytecode) {
			addr := crypto.CreateAddress(from, nonce)
			st.SetContract(addr, cd.create(from))
			return addr, nil
		}
	}
	return common.Address{}, ErrUnknownCode
}

var _ evm.Backend = (*Chain)(nil)

// SwapArtifact returns the artifact whose deployment creates a SwapContract
func SwapArtifact() *evm.Artifact {
	return &evm.Artifact{
		ContractName: "Swap",
		ABI:          swap.ParsedABI,
		Bytecode:     append([]byte{}, SwapBytecode...),
	}
}
