package forknet

import "github.com/pkg/errors"

// errors
var (
	ErrForkURLRequired = errors.New("fork url required")
	ErrUnknownDialect  = errors.New("unknown node dialect")
	ErrReverted        = errors.New("transaction reverted")
	ErrProcessExited   = errors.New("node process exited")
	ErrRevertFailed    = errors.New("snapshot revert failed")
)
