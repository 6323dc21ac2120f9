package main

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/meverselabs/swapharness/cmd/config"
	"github.com/meverselabs/swapharness/common/amount"
	"github.com/meverselabs/swapharness/forknet"
	"github.com/meverselabs/swapharness/scenario"
)

// Config is a configuration for the cmd
type Config struct {
	Network  NetworkConfig  `toml:"network" yaml:"network"`
	Anvil    AnvilConfig    `toml:"anvil" yaml:"anvil"`
	Scenario ScenarioConfig `toml:"scenario" yaml:"scenario"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// NetworkConfig is the single network profile
type NetworkConfig struct {
	NodeURL   string `toml:"node_url" yaml:"node_url"`
	ForkURL   string `toml:"fork_url" yaml:"fork_url"`
	ForkBlock uint64 `toml:"fork_block" yaml:"fork_block"`
	GasPrice  string `toml:"gas_price" yaml:"gas_price"` // gwei
	GasLimit  uint64 `toml:"gas_limit" yaml:"gas_limit"`
	Dialect   string `toml:"dialect" yaml:"dialect"`
}

// AnvilConfig configures the launched node
type AnvilConfig struct {
	Binary  string   `toml:"binary" yaml:"binary"`
	Port    int      `toml:"port" yaml:"port"`
	ChainID uint64   `toml:"chain_id" yaml:"chain_id"`
	Args    []string `toml:"args" yaml:"args"`
}

// ScenarioConfig selects the accounts of the run
type ScenarioConfig struct {
	Whale        string `toml:"whale" yaml:"whale"`
	WhaleFunding string `toml:"whale_funding" yaml:"whale_funding"` // ether
	TokenIn      string `toml:"token_in" yaml:"token_in"`
	TokenOut     string `toml:"token_out" yaml:"token_out"`
	Artifact     string `toml:"artifact" yaml:"artifact"`
}

// LogConfig configures the terminal logger
type LogConfig struct {
	Verbosity int  `toml:"verbosity" yaml:"verbosity"`
	Color     bool `toml:"color" yaml:"color"`
}

// DefaultConfig returns the DAI to USDT scenario on a local node
func DefaultConfig() Config {
	return Config{
		Network: NetworkConfig{
			NodeURL:  "http://127.0.0.1:8545",
			GasPrice: "20",
		},
		Anvil: AnvilConfig{
			Binary: "anvil",
			Port:   8545,
		},
		Scenario: ScenarioConfig{
			Whale:        scenario.DAIWhale.Hex(),
			WhaleFunding: "1000",
			TokenIn:      scenario.DAI.Hex(),
			TokenOut:     scenario.USDT.Hex(),
			Artifact:     "artifacts/contracts/Swap.sol/Swap.json",
		},
		Log: LogConfig{
			Verbosity: 3,
		},
	}
}

// LoadConfig reads the config file over the defaults, a missing file is allowed unless required.
// MAINNET_RPC_URL from the environment or .env overrides the fork url.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); err == nil || required {
		if err := config.LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := config.LoadEnv(".env"); err != nil {
		return cfg, err
	}
	if url := config.Getenv("MAINNET_RPC_URL"); len(url) > 0 {
		cfg.Network.ForkURL = url
	}
	return cfg, nil
}

// GasPriceWei returns the fixed gas price in wei
func (cfg Config) GasPriceWei() (*big.Int, error) {
	if len(cfg.Network.GasPrice) == 0 {
		return nil, nil
	}
	am, err := amount.Parse(cfg.Network.GasPrice, 9)
	if err != nil {
		return nil, errors.Wrap(err, "gas_price")
	}
	return am.Int, nil
}

// Fork returns the fork source
func (cfg Config) Fork() forknet.Fork {
	return forknet.Fork{URL: cfg.Network.ForkURL, BlockNumber: cfg.Network.ForkBlock}
}

// Params returns the scenario params
func (cfg Config) Params() (scenario.Params, error) {
	p := scenario.DefaultParams(cfg.Network.ForkURL)
	p.Fork = cfg.Fork()
	for _, f := range []struct {
		name  string
		value string
		addr  *common.Address
	}{
		{"whale", cfg.Scenario.Whale, &p.Whale},
		{"token_in", cfg.Scenario.TokenIn, &p.TokenIn},
		{"token_out", cfg.Scenario.TokenOut, &p.TokenOut},
	} {
		if len(f.value) == 0 {
			continue
		}
		if !common.IsHexAddress(f.value) {
			return p, errors.Errorf("%s: invalid address %q", f.name, f.value)
		}
		*f.addr = common.HexToAddress(f.value)
	}
	if len(cfg.Scenario.WhaleFunding) > 0 {
		am, err := amount.Parse(cfg.Scenario.WhaleFunding, amount.EtherDecimals)
		if err != nil {
			return p, errors.Wrap(err, "whale_funding")
		}
		p.WhaleFunding = am.Int
	}
	return p, nil
}

// Launcher returns the anvil launcher config
func (cfg Config) Launcher() (forknet.LauncherConfig, error) {
	gasPrice, err := cfg.GasPriceWei()
	if err != nil {
		return forknet.LauncherConfig{}, err
	}
	return forknet.LauncherConfig{
		Binary:    cfg.Anvil.Binary,
		Port:      cfg.Anvil.Port,
		Fork:      cfg.Fork(),
		GasPrice:  gasPrice,
		ChainID:   cfg.Anvil.ChainID,
		ExtraArgs: cfg.Anvil.Args,
	}, nil
}
