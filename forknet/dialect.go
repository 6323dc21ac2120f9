package forknet

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Dialect is the flavour of dev node, it selects the namespace of the node control methods
type Dialect string

// dialects
const (
	Hardhat Dialect = "hardhat"
	Anvil   Dialect = "anvil"
)

// ParseDialect returns the dialect of the name, the empty name is returned as is for detection
func ParseDialect(name string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return "", nil
	case Hardhat:
		return Hardhat, nil
	case Anvil:
		return Anvil, nil
	default:
		return "", errors.Wrap(ErrUnknownDialect, name)
	}
}

// Method returns the node control method of the dialect, e.g. hardhat_impersonateAccount
func (d Dialect) Method(name string) string {
	return string(d) + "_" + name
}

// DetectDialect asks the node for its client version
func DetectDialect(ctx context.Context, c *rpc.Client) (Dialect, error) {
	var version string
	if err := c.CallContext(ctx, &version, "web3_clientVersion"); err != nil {
		return "", errors.Wrap(err, "web3_clientVersion")
	}
	if strings.Contains(strings.ToLower(version), string(Anvil)) {
		return Anvil, nil
	}
	return Hardhat, nil
}
