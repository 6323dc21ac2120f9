package evm

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// Backend reads contract state and sends transactions signed by the node for from
type Backend interface {
	bind.ContractCaller
	Send(ctx context.Context, from common.Address, to *common.Address, data []byte) (*types.Receipt, error)
}

// Contract is an abi bound to an address on a backend
type Contract struct {
	Abi     *abi.ABI
	Backend Backend
	Address common.Address
	bound   *bind.BoundContract
}

// NewContract returns the contract of the abi at addr
func NewContract(a *abi.ABI, backend Backend, addr common.Address) *Contract {
	c := &Contract{}
	c.Set(a, backend, addr)
	return c
}

// Set sets the abi, backend and address of the Contract
func (c *Contract) Set(a *abi.ABI, backend Backend, addr common.Address) {
	c.Abi = a
	c.Backend = backend
	c.Address = addr
	c.bound = bind.NewBoundContract(addr, *a, backend, nil, nil)
}

// Call executes a constant method at the head
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, errors.Wrapf(err, "%s.%s", c.Address.Hex(), method)
	}
	return out, nil
}

// Transact sends a method call from the given account and waits for the receipt
func (c *Contract) Transact(ctx context.Context, from common.Address, method string, args ...interface{}) (*types.Receipt, error) {
	data, err := c.Abi.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	receipt, err := c.Backend.Send(ctx, from, &c.Address, data)
	if err != nil {
		return receipt, errors.Wrapf(err, "%s.%s", c.Address.Hex(), method)
	}
	return receipt, nil
}

// Result converts the first output of a call
func Result[T any](out []interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if len(out) == 0 {
		return zero, ErrNoOutput
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, errors.Wrapf(ErrUnexpectedOutput, "%T", out[0])
	}
	return v, nil
}

// Deploy sends the creation code of the artifact followed by the packed constructor args
func Deploy(ctx context.Context, backend Backend, art *Artifact, from common.Address, args ...interface{}) (*Contract, *types.Receipt, error) {
	if len(art.Bytecode) == 0 {
		return nil, nil, errors.Wrap(ErrNoBytecode, art.ContractName)
	}
	input, err := art.ABI.Pack("", args...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "pack %s constructor", art.ContractName)
	}
	data := make([]byte, 0, len(art.Bytecode)+len(input))
	data = append(data, art.Bytecode...)
	data = append(data, input...)

	receipt, err := backend.Send(ctx, from, nil, data)
	if err != nil {
		return nil, receipt, errors.Wrapf(err, "deploy %s", art.ContractName)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, receipt, errors.Wrap(ErrNoContractAddress, art.ContractName)
	}
	return NewContract(art.ABI, backend, receipt.ContractAddress), receipt, nil
}
