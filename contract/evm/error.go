package evm

import "github.com/pkg/errors"

// errors
var (
	ErrFileRead          = errors.New("artifact read error")
	ErrNoBytecode        = errors.New("artifact has no bytecode")
	ErrNoContractAddress = errors.New("receipt has no contract address")
	ErrNoOutput          = errors.New("call returned no output")
	ErrUnexpectedOutput  = errors.New("unexpected output type")
	ErrMissingMethod     = errors.New("abi is missing a method")
)
