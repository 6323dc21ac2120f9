package scenario

import "github.com/pkg/errors"

// errors
var (
	ErrNoDeployer         = errors.New("no unlocked account to deploy from")
	ErrFundingMismatch    = errors.New("whale native balance was not set")
	ErrNoWhaleBalance     = errors.New("whale holds no input token")
	ErrDepositMismatch    = errors.New("contract balance delta differs from the deposit")
	ErrWhaleNotDrained    = errors.New("whale still holds input token after deposit")
	ErrNoSwapInput        = errors.New("contract holds no input token to swap")
	ErrSwapInputRemaining = errors.New("contract still holds input token after swap")
	ErrNoSwapOutput       = errors.New("swap produced no output token")
	ErrWithdrawMismatch   = errors.New("whale balance delta differs from the withdrawal")
	ErrContractNotEmpty   = errors.New("contract still holds tokens after withdraw")
	ErrNoSwap             = errors.New("swap contract is not acquired")
)
