package forknet

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/meverselabs/swapharness/common/rlog"
)

// LauncherConfig configures a local anvil node forking a remote chain
type LauncherConfig struct {
	Binary       string // anvil when empty
	Host         string // 127.0.0.1 when empty
	Port         int    // 8545 when zero
	Fork         Fork
	GasPrice     *big.Int
	ChainID      uint64
	ExtraArgs    []string
	PollInterval time.Duration
}

func (cfg *LauncherConfig) setDefaults() {
	if len(cfg.Binary) == 0 {
		cfg.Binary = "anvil"
	}
	if len(cfg.Host) == 0 {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8545
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
}

// Args returns the command line of the node
func (cfg LauncherConfig) Args() []string {
	cfg.setDefaults()
	args := []string{
		"--fork-url", cfg.Fork.URL,
		"--host", cfg.Host,
		"--port", strconv.Itoa(cfg.Port),
	}
	if cfg.Fork.BlockNumber > 0 {
		args = append(args, "--fork-block-number", strconv.FormatUint(cfg.Fork.BlockNumber, 10))
	}
	if cfg.GasPrice != nil {
		args = append(args, "--gas-price", cfg.GasPrice.String())
	}
	if cfg.ChainID > 0 {
		args = append(args, "--chain-id", strconv.FormatUint(cfg.ChainID, 10))
	}
	return append(args, cfg.ExtraArgs...)
}

// Launcher owns a running node process
type Launcher struct {
	cfg    LauncherConfig
	cmd    *exec.Cmd
	out    *rlog.LineWriter
	done   chan struct{}
	err    error
	logger log.Logger
}

// Launch starts the node and blocks until it answers json-rpc requests or ctx is done
func Launch(ctx context.Context, cfg LauncherConfig, logger log.Logger) (*Launcher, error) {
	if len(cfg.Fork.URL) == 0 {
		return nil, ErrForkURLRequired
	}
	cfg.setDefaults()
	if logger == nil {
		logger = log.Root()
	}

	l := &Launcher{
		cfg:    cfg,
		out:    rlog.NewLineWriter(logger, slog.LevelDebug, "Node output"),
		done:   make(chan struct{}),
		logger: logger,
	}
	l.cmd = exec.Command(cfg.Binary, cfg.Args()...)
	l.cmd.Stdout = l.out
	l.cmd.Stderr = l.out
	if err := l.cmd.Start(); err != nil {
		return nil, errors.Wrap(err, cfg.Binary)
	}
	logger.Info("Node started", "binary", cfg.Binary, "pid", l.cmd.Process.Pid, "url", l.URL(), "fork_block", cfg.Fork.BlockNumber)

	go func() {
		l.err = l.cmd.Wait()
		l.out.Flush()
		close(l.done)
	}()

	if err := l.waitReady(ctx); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// URL returns the json-rpc endpoint of the node
func (l *Launcher) URL() string {
	return fmt.Sprintf("http://%s:%d", l.cfg.Host, l.cfg.Port)
}

func (l *Launcher) waitReady(ctx context.Context) error {
	rc, err := rpc.DialContext(ctx, l.URL())
	if err != nil {
		return errors.WithStack(err)
	}
	defer rc.Close()

	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()
	for {
		var id string
		if err := rc.CallContext(ctx, &id, "eth_chainId"); err == nil {
			l.logger.Info("Node ready", "url", l.URL(), "chain_id", id)
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for node")
		case <-l.done:
			return errors.Wrapf(ErrProcessExited, "%v", l.err)
		case <-ticker.C:
		}
	}
}

// Done is closed when the process exits
func (l *Launcher) Done() <-chan struct{} {
	return l.done
}

// Close interrupts the process and waits for it, killing it after a grace period
func (l *Launcher) Close() error {
	select {
	case <-l.done:
		return nil
	default:
	}
	if err := l.cmd.Process.Signal(os.Interrupt); err != nil {
		l.cmd.Process.Kill()
	}
	select {
	case <-l.done:
	case <-time.After(5 * time.Second):
		l.cmd.Process.Kill()
		<-l.done
	}
	l.logger.Info("Node stopped", "pid", l.cmd.Process.Pid)
	return nil
}
