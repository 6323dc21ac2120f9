package erc20

import (
	"context"

	"github.com/bluele/gcache"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/meverselabs/swapharness/contract/evm"
)

// Metadata is the immutable description of a token
type Metadata struct {
	Symbol   string
	Decimals uint8
}

// Registry caches token handles and their metadata by address
type Registry struct {
	backend evm.Backend
	tokens  gcache.Cache
	meta    gcache.Cache
}

// NewRegistry returns a registry holding at most size tokens
func NewRegistry(backend evm.Backend, size int) *Registry {
	r := &Registry{
		backend: backend,
	}
	r.tokens = gcache.New(size).LRU().LoaderFunc(func(key interface{}) (interface{}, error) {
		return NewToken(key.(common.Address), backend), nil
	}).Build()
	r.meta = gcache.New(size).LRU().Build()
	return r
}

// Token returns the token handle of addr
func (r *Registry) Token(addr common.Address) *Token {
	v, err := r.tokens.Get(addr)
	if err != nil {
		// the loader never fails
		return NewToken(addr, r.backend)
	}
	return v.(*Token)
}

// Metadata returns the symbol and decimals of addr, querying the chain once
func (r *Registry) Metadata(ctx context.Context, addr common.Address) (Metadata, error) {
	if v, err := r.meta.Get(addr); err == nil {
		return v.(Metadata), nil
	} else if err != gcache.KeyNotFoundError {
		return Metadata{}, errors.WithStack(err)
	}

	t := r.Token(addr)
	symbol, err := t.Symbol(ctx)
	if err != nil {
		return Metadata{}, err
	}
	decimals, err := t.Decimals(ctx)
	if err != nil {
		return Metadata{}, err
	}
	m := Metadata{Symbol: symbol, Decimals: decimals}
	if err := r.meta.Set(addr, m); err != nil {
		return Metadata{}, errors.WithStack(err)
	}
	return m, nil
}
