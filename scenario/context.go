package scenario

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/meverselabs/swapharness/common/amount"
	"github.com/meverselabs/swapharness/contract/erc20"
	"github.com/meverselabs/swapharness/contract/swap"
)

// Context is threaded through the stages of one run, each stage returns it updated
type Context struct {
	RunID  string
	Params Params
	Logger log.Logger

	Deployer common.Address
	TokenIn  *erc20.Token
	TokenOut *erc20.Token
	InMeta   erc20.Metadata
	OutMeta  erc20.Metadata
	Swap     *swap.Swap
	Owner    common.Address

	Deposited      *big.Int
	SwapIn         *big.Int
	SwapOut        *big.Int
	Withdrawn      *big.Int
	WhaleOutBefore *big.Int
	WhaleOutAfter  *big.Int
}

// SwapAddress returns the address of the deployed Swap
func (sc Context) SwapAddress() common.Address {
	if sc.Swap == nil {
		return common.Address{}
	}
	return sc.Swap.Address
}

// WhaleDelta returns the output token gained by the whale during withdraw
func (sc Context) WhaleDelta() *big.Int {
	if sc.WhaleOutBefore == nil || sc.WhaleOutAfter == nil {
		return nil
	}
	return new(big.Int).Sub(sc.WhaleOutAfter, sc.WhaleOutBefore)
}

func (sc Context) formatIn(v *big.Int) string {
	return amount.NewAmount(v).Format(sc.InMeta.Decimals) + " " + sc.InMeta.Symbol
}

func (sc Context) formatOut(v *big.Int) string {
	return amount.NewAmount(v).Format(sc.OutMeta.Decimals) + " " + sc.OutMeta.Symbol
}
