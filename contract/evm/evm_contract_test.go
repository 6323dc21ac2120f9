package evm_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meverselabs/swapharness/contract/evm"
	"github.com/meverselabs/swapharness/forknet"
	testlib "github.com/meverselabs/swapharness/tests/lib"
)

func TestDeployAndCall(t *testing.T) {
	ctx := context.Background()
	cn := testlib.NewMainnetChain(testlib.MainnetOptions{})
	deployer := testlib.GetSigners()[1]

	c, receipt, err := evm.Deploy(ctx, cn, testlib.SwapArtifact(), deployer)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.NotEqual(t, common.Address{}, c.Address)

	owner, err := evm.Result[common.Address](c.Call(ctx, "owner"))
	require.NoError(t, err)
	assert.Equal(t, deployer, owner)

	_, err = evm.Result[*big.Int](c.Call(ctx, "owner"))
	assert.True(t, errors.Is(err, evm.ErrUnexpectedOutput))
}

func TestTransactReverted(t *testing.T) {
	ctx := context.Background()
	cn := testlib.NewMainnetChain(testlib.MainnetOptions{})
	from := testlib.GetSigners()[0]

	c, _, err := evm.Deploy(ctx, cn, testlib.SwapArtifact(), from)
	require.NoError(t, err)

	receipt, err := c.Transact(ctx, from, "deposit", common.HexToAddress("0x01"), big.NewInt(1))
	assert.True(t, errors.Is(err, forknet.ErrReverted))
	require.NotNil(t, receipt)
	assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
}

func TestTransactPackError(t *testing.T) {
	cn := testlib.NewMainnetChain(testlib.MainnetOptions{})
	c := evm.NewContract(testlib.SwapArtifact().ABI, cn, common.HexToAddress("0x01"))

	_, err := c.Transact(context.Background(), testlib.GetSigners()[0], "deposit", "not an address")
	assert.Error(t, err)
	_, err = c.Transact(context.Background(), testlib.GetSigners()[0], "mint")
	assert.Error(t, err)
}

func TestDeployUnknownCode(t *testing.T) {
	cn := testlib.NewMainnetChain(testlib.MainnetOptions{})
	art := testlib.SwapArtifact()
	art.Bytecode = []byte{0xfe}

	_, _, err := evm.Deploy(context.Background(), cn, art, testlib.GetSigners()[0])
	assert.True(t, errors.Is(err, testlib.ErrUnknownCode))
}
