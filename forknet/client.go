package forknet

import (
	"context"
	"math/big"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// DefaultPollInterval is the receipt polling interval
const DefaultPollInterval = 100 * time.Millisecond

// Config configures a Client
type Config struct {
	Dialect      Dialect  // detected from web3_clientVersion when empty
	GasPrice     *big.Int // fixed gas price of every sent transaction, node default when nil
	GasLimit     uint64   // node estimate when zero
	PollInterval time.Duration
	Logger       log.Logger
}

// Client talks to a forking dev node (hardhat network or anvil)
type Client struct {
	rpc          *rpc.Client
	eth          *ethclient.Client
	dialect      Dialect
	gasPrice     *big.Int
	gasLimit     uint64
	pollInterval time.Duration
	logger       log.Logger
}

// Dial connects to the node at url
func Dial(ctx context.Context, url string, cfg Config) (*Client, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, url)
	}
	c, err := NewClient(ctx, rc, cfg)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an rpc client
func NewClient(ctx context.Context, rc *rpc.Client, cfg Config) (*Client, error) {
	c := &Client{
		rpc:          rc,
		eth:          ethclient.NewClient(rc),
		dialect:      cfg.Dialect,
		gasLimit:     cfg.GasLimit,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
	}
	if cfg.GasPrice != nil {
		c.gasPrice = new(big.Int).Set(cfg.GasPrice)
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.logger == nil {
		c.logger = log.Root()
	}
	if len(c.dialect) == 0 {
		d, err := DetectDialect(ctx, rc)
		if err != nil {
			return nil, err
		}
		c.dialect = d
	}
	return c, nil
}

// Close closes the connection
func (c *Client) Close() {
	c.rpc.Close()
}

// Dialect returns the dialect of the node
func (c *Client) Dialect() Dialect {
	return c.dialect
}

// GasPrice returns the fixed gas price, nil when the node decides
func (c *Client) GasPrice() *big.Int {
	if c.gasPrice == nil {
		return nil
	}
	return new(big.Int).Set(c.gasPrice)
}

// RPC returns the underlying rpc client
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// Eth returns the ethclient over the same connection
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	c.logger.Debug("Node call", "method", method, "args", args)
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		return errors.Wrap(err, method)
	}
	return nil
}

// CodeAt implements bind.ContractCaller
func (c *Client) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return c.eth.CodeAt(ctx, contract, blockNumber)
}

// CallContract implements bind.ContractCaller
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.eth.CallContract(ctx, msg, blockNumber)
}

// ChainID returns the chain id reported by the node
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	return id, errors.WithStack(err)
}

// BlockNumber returns the current head
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	return n, errors.WithStack(err)
}

// TxArgs is the eth_sendTransaction argument object
type TxArgs struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
}

// Send submits a transaction signed by the node on behalf of from (an unlocked or impersonated account)
// and waits until it is mined. A nil to deploys data as contract creation code.
func (c *Client) Send(ctx context.Context, from common.Address, to *common.Address, data []byte) (*types.Receipt, error) {
	args := TxArgs{
		From: from,
		To:   to,
		Data: data,
	}
	if c.gasPrice != nil {
		args.GasPrice = (*hexutil.Big)(new(big.Int).Set(c.gasPrice))
	}
	if c.gasLimit > 0 {
		gas := hexutil.Uint64(c.gasLimit)
		args.Gas = &gas
	}

	var hash common.Hash
	if err := c.call(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return nil, errors.Wrapf(err, "from %s", from.Hex())
	}
	receipt, err := c.WaitReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, errors.Wrapf(ErrReverted, "tx %s", hash.Hex())
	}
	return receipt, nil
}

// WaitReceipt polls the receipt of the transaction until it is mined or ctx is done
func (c *Client) WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			if c.logger.Enabled(ctx, log.LevelTrace) {
				c.logger.Trace("Receipt", "tx", hash, "dump", spew.Sdump(receipt))
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, errors.Wrapf(err, "receipt of %s", hash.Hex())
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "waiting for %s", hash.Hex())
		case <-ticker.C:
		}
	}
}
