package swap

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI is the interface of the Swap contract as the scenario uses it
const ABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"deposit","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"swap","stateMutability":"nonpayable","inputs":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getBalance","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"token","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// Methods are the methods every Swap artifact must declare
var Methods = []string{"owner", "deposit", "swap", "withdraw", "getBalance"}

// ParsedABI is ABI decoded
var ParsedABI = mustParse(ABI)

func mustParse(s string) *abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return &a
}
