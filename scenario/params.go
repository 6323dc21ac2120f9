package scenario

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/meverselabs/swapharness/common/amount"
	"github.com/meverselabs/swapharness/forknet"
)

// mainnet addresses
var (
	DAI      = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	USDT     = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	DAIWhale = common.HexToAddress("0x9759A6Ac90977b93B58547b4A71c78317f391A28")
)

// WhaleFunding is the native balance forced on the whale, 1000 ether
var WhaleFunding = amount.Ether(1000).Int

// Params selects the fork and the accounts of a run
type Params struct {
	Fork         forknet.Fork
	Whale        common.Address
	WhaleFunding *big.Int
	TokenIn      common.Address
	TokenOut     common.Address
}

// DefaultParams returns the DAI to USDT run funded by the DAI whale, forking url at its head
func DefaultParams(url string) Params {
	return Params{
		Fork:         forknet.Fork{URL: url},
		Whale:        DAIWhale,
		WhaleFunding: new(big.Int).Set(WhaleFunding),
		TokenIn:      DAI,
		TokenOut:     USDT,
	}
}
