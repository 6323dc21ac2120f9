package testlib

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/meverselabs/swapharness/common/amount"
)

// TxGas is the gas every transaction of the Chain uses
const TxGas uint64 = 50000

var (
	ChainID  = big.NewInt(31337)
	GasPrice = big.NewInt(20_000_000_000)

	// Curve 3pool, the liquidity source of the stand-in Swap contract
	Pool = common.HexToAddress("0xbEbc44782C7dB0a1A60Cb6fe97d0b483032FF1C7")

	// SwapBytecode is the creation code the Chain deploys as a SwapContract
	SwapBytecode = common.FromHex("0x608060405234801561001057600080fd5b50")

	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// hardhat and anvil default accounts
var signerKeys = []string{
	"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", //0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266
	"59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d", //0x70997970c51812dc3a010c7d01b50e0d17dc79c8
	"5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a", //0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc
}

// GetSigners returns the addresses of the default dev node accounts
func GetSigners() []common.Address {
	addrs := make([]common.Address, 0, len(signerKeys))
	for _, k := range signerKeys {
		pk, err := crypto.HexToECDSA(k)
		if err != nil {
			panic(err)
		}
		addrs = append(addrs, crypto.PubkeyToAddress(pk.PublicKey))
	}
	return addrs
}

// Units returns i whole units of a token with decimals
func Units(i uint64, decimals uint8) *big.Int {
	return amount.NewUnits(i, decimals).Int
}
