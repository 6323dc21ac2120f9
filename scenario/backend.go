package scenario

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/meverselabs/swapharness/contract/erc20"
	"github.com/meverselabs/swapharness/contract/evm"
	"github.com/meverselabs/swapharness/contract/swap"
	"github.com/meverselabs/swapharness/forknet"
)

// TokenCacheSize is the number of token handles a fork backend keeps
const TokenCacheSize = 16

// Node is a forking dev node
type Node interface {
	evm.Backend
	Reset(ctx context.Context, fork forknet.Fork) error
	Impersonate(ctx context.Context, addr common.Address) error
	SetBalance(ctx context.Context, addr common.Address, wei *big.Int) error
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)
	Accounts(ctx context.Context) ([]common.Address, error)
}

// Backend is everything the stages talk to
type Backend interface {
	Node
	Token(addr common.Address) *erc20.Token
	Metadata(ctx context.Context, addr common.Address) (erc20.Metadata, error)
	DeploySwap(ctx context.Context, deployer common.Address) (*swap.Swap, error)
}

type backend struct {
	Node
	tokens   *erc20.Registry
	artifact *evm.Artifact
}

// NewBackend returns the backend over node deploying the Swap from artifact
func NewBackend(node Node, tokens *erc20.Registry, artifact *evm.Artifact) Backend {
	return &backend{
		Node:     node,
		tokens:   tokens,
		artifact: artifact,
	}
}

// NewForkBackend returns the backend over a forknet client
func NewForkBackend(c *forknet.Client, artifact *evm.Artifact) Backend {
	return NewBackend(c, erc20.NewRegistry(c, TokenCacheSize), artifact)
}

func (b *backend) Token(addr common.Address) *erc20.Token {
	return b.tokens.Token(addr)
}

func (b *backend) Metadata(ctx context.Context, addr common.Address) (erc20.Metadata, error) {
	return b.tokens.Metadata(ctx, addr)
}

func (b *backend) DeploySwap(ctx context.Context, deployer common.Address) (*swap.Swap, error) {
	s, _, err := swap.Deploy(ctx, b.Node, b.artifact, deployer)
	return s, err
}
