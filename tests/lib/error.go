package testlib

import "github.com/pkg/errors"

// errors
var (
	ErrUnknownAccount   = errors.New("unknown account")
	ErrInsufficientGas  = errors.New("insufficient funds for gas * price + value")
	ErrUnknownSelector  = errors.New("function selector was not recognized")
	ErrNotView          = errors.New("state-changing method in a call")
	ErrUnknownCode      = errors.New("unknown creation code")
	ErrUnknownSnapshot  = errors.New("unknown snapshot")
	ErrNotToken         = errors.New("address is not a token")
	ErrInsufficient     = errors.New("insufficient balance")
	ErrInsufficientPool = errors.New("insufficient pool liquidity")
)
