package forknet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// Fork selects the chain a dev node copies its state from
type Fork struct {
	URL         string
	BlockNumber uint64 // latest head when zero
}

type forkingParams struct {
	JSONRPCURL  string          `json:"jsonRpcUrl"`
	BlockNumber *hexutil.Uint64 `json:"blockNumber,omitempty"`
}

type resetParams struct {
	Forking forkingParams `json:"forking"`
}

func (f Fork) params() resetParams {
	p := resetParams{Forking: forkingParams{JSONRPCURL: f.URL}}
	if f.BlockNumber > 0 {
		n := hexutil.Uint64(f.BlockNumber)
		p.Forking.BlockNumber = &n
	}
	return p
}

// Reset re-forks the node from fork, dropping all local state
func (c *Client) Reset(ctx context.Context, fork Fork) error {
	if len(fork.URL) == 0 {
		return ErrForkURLRequired
	}
	var ok bool
	return c.call(ctx, &ok, c.dialect.Method("reset"), fork.params())
}

// Impersonate lets the node sign transactions from addr without its private key
func (c *Client) Impersonate(ctx context.Context, addr common.Address) error {
	var ok bool
	return c.call(ctx, &ok, c.dialect.Method("impersonateAccount"), addr)
}

// StopImpersonating revokes Impersonate
func (c *Client) StopImpersonating(ctx context.Context, addr common.Address) error {
	var ok bool
	return c.call(ctx, &ok, c.dialect.Method("stopImpersonatingAccount"), addr)
}

// SetBalance overwrites the native balance of addr
func (c *Client) SetBalance(ctx context.Context, addr common.Address, wei *big.Int) error {
	if wei == nil || wei.Sign() < 0 {
		return errors.Errorf("invalid balance %v", wei)
	}
	var ok bool
	return c.call(ctx, &ok, c.dialect.Method("setBalance"), addr, hexutil.EncodeBig(wei))
}

// Balance returns the native balance of addr at the head
func (c *Client) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := c.eth.BalanceAt(ctx, addr, nil)
	return bal, errors.WithStack(err)
}

// Accounts returns the node's unlocked accounts
func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Snapshot saves the current state and returns its id
func (c *Client) Snapshot(ctx context.Context) (string, error) {
	var id string
	if err := c.call(ctx, &id, "evm_snapshot"); err != nil {
		return "", err
	}
	return id, nil
}

// Revert restores the state saved by Snapshot
func (c *Client) Revert(ctx context.Context, id string) error {
	var ok bool
	if err := c.call(ctx, &ok, "evm_revert", id); err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(ErrRevertFailed, id)
	}
	return nil
}

// Mine mines the given number of empty blocks
func (c *Client) Mine(ctx context.Context, blocks uint64) error {
	return c.call(ctx, nil, c.dialect.Method("mine"), hexutil.EncodeUint64(blocks))
}
