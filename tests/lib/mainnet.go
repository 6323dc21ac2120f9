package testlib

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/meverselabs/swapharness/scenario"
)

// MainnetOptions shapes the genesis of NewMainnetChain, nil amounts take the defaults
type MainnetOptions struct {
	WhaleDAI       *big.Int
	PoolUSDT       *big.Int
	DAITransferFee int64 // bps burned on every DAI transfer
	NoAccounts     bool  // no unlocked default accounts
	AddBalance     bool
	Swap           SwapOptions
}

// NewMainnetChain returns a chain holding DAI and USDT at their mainnet addresses, the DAI whale
// balance and a USDT pool. Deploying SwapBytecode creates a SwapContract.
func NewMainnetChain(opts MainnetOptions) *Chain {
	whaleDAI := opts.WhaleDAI
	if whaleDAI == nil {
		whaleDAI = Units(1_000_000, 18)
	}
	poolUSDT := opts.PoolUSDT
	if poolUSDT == nil {
		poolUSDT = Units(100_000_000, 6)
	}

	c := NewChain(func(st *State) {
		dai := NewToken("Dai Stablecoin", "DAI", 18)
		dai.SetTransferFee(opts.DAITransferFee)
		if whaleDAI.Sign() > 0 {
			dai.Mint(scenario.DAIWhale, whaleDAI)
		}
		dai.Mint(Pool, Units(50_000_000, 18))
		st.SetContract(scenario.DAI, dai)

		usdt := NewToken("Tether USD", "USDT", 6)
		usdt.Mint(Pool, poolUSDT)
		st.SetContract(scenario.USDT, usdt)
	})
	c.AddBalance = opts.AddBalance
	if opts.NoAccounts {
		c.SetAccounts(nil)
	}
	c.RegisterCode(SwapBytecode, func(owner common.Address) Contract {
		return NewSwapContract(owner, opts.Swap)
	})
	return c
}
