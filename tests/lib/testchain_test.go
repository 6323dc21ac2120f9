package testlib_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meverselabs/swapharness/contract/erc20"
	"github.com/meverselabs/swapharness/forknet"
	"github.com/meverselabs/swapharness/scenario"
	testlib "github.com/meverselabs/swapharness/tests/lib"
)

func TestChainChargesGas(t *testing.T) {
	ctx := context.Background()
	cn := testlib.NewMainnetChain(testlib.MainnetOptions{})
	from := testlib.GetSigners()[0]

	before, err := cn.Balance(ctx, from)
	require.NoError(t, err)
	_, err = erc20.NewToken(scenario.DAI, cn).Transfer(ctx, from, scenario.DAIWhale, big.NewInt(1))
	assert.True(t, errors.Is(err, forknet.ErrReverted))

	after, err := cn.Balance(ctx, from)
	require.NoError(t, err)
	fee := new(big.Int).Mul(testlib.GasPrice, new(big.Int).SetUint64(testlib.TxGas))
	assert.Equal(t, fee, new(big.Int).Sub(before, after))
}

func TestChainSnapshotRevert(t *testing.T) {
	ctx := context.Background()
	cn := testlib.NewMainnetChain(testlib.MainnetOptions{})
	whale := scenario.DAIWhale
	require.NoError(t, cn.Impersonate(ctx, whale))
	require.NoError(t, cn.SetBalance(ctx, whale, scenario.WhaleFunding))

	id, err := cn.Snapshot(ctx)
	require.NoError(t, err)
	_, err = erc20.NewToken(scenario.DAI, cn).Transfer(ctx, whale, testlib.Pool, testlib.Units(1, 18))
	require.NoError(t, err)
	assert.Equal(t, testlib.Units(999_999, 18), cn.TokenBalance(scenario.DAI, whale))

	require.NoError(t, cn.Revert(ctx, id))
	assert.Equal(t, testlib.Units(1_000_000, 18), cn.TokenBalance(scenario.DAI, whale))

	assert.True(t, errors.Is(cn.Revert(ctx, "0x99"), testlib.ErrUnknownSnapshot))
}

func TestChainImpersonation(t *testing.T) {
	ctx := context.Background()
	cn := testlib.NewMainnetChain(testlib.MainnetOptions{})
	whale := scenario.DAIWhale
	dai := erc20.NewToken(scenario.DAI, cn)

	require.NoError(t, cn.SetBalance(ctx, whale, scenario.WhaleFunding))
	_, err := dai.Transfer(ctx, whale, testlib.Pool, big.NewInt(1))
	assert.True(t, errors.Is(err, testlib.ErrUnknownAccount))

	require.NoError(t, cn.Impersonate(ctx, whale))
	_, err = dai.Transfer(ctx, whale, testlib.Pool, big.NewInt(1))
	require.NoError(t, err)

	require.NoError(t, cn.StopImpersonating(ctx, whale))
	_, err = dai.Transfer(ctx, whale, testlib.Pool, big.NewInt(1))
	assert.True(t, errors.Is(err, testlib.ErrUnknownAccount))
}

func TestChainReset(t *testing.T) {
	ctx := context.Background()
	cn := testlib.NewMainnetChain(testlib.MainnetOptions{})
	require.NoError(t, cn.SetBalance(ctx, scenario.DAIWhale, big.NewInt(7)))

	assert.True(t, errors.Is(cn.Reset(ctx, forknet.Fork{}), forknet.ErrForkURLRequired))
	require.NoError(t, cn.Reset(ctx, forknet.Fork{URL: "http://fork", BlockNumber: 10}))

	bal, err := cn.Balance(ctx, scenario.DAIWhale)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())
	assert.Equal(t, []forknet.Fork{{URL: "http://fork", BlockNumber: 10}}, cn.Forks())

	accounts, err := cn.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, testlib.GetSigners(), accounts)
}

func TestChainAddBalance(t *testing.T) {
	ctx := context.Background()
	cn := testlib.NewMainnetChain(testlib.MainnetOptions{AddBalance: true, NoAccounts: true})

	require.NoError(t, cn.SetBalance(ctx, scenario.DAIWhale, big.NewInt(5)))
	require.NoError(t, cn.SetBalance(ctx, scenario.DAIWhale, big.NewInt(5)))
	bal, err := cn.Balance(ctx, scenario.DAIWhale)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), bal)

	accounts, err := cn.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestTokenTransferFee(t *testing.T) {
	tk := testlib.NewToken("Fee", "FEE", 18)
	tk.SetTransferFee(100)
	tk.Mint(scenario.DAIWhale, big.NewInt(10000))

	require.NoError(t, tk.Transfer(scenario.DAIWhale, testlib.Pool, big.NewInt(10000)))
	assert.Equal(t, big.NewInt(9900), tk.BalanceOf(testlib.Pool))
	assert.Zero(t, tk.BalanceOf(scenario.DAIWhale).Sign())
}
