package ping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/khmm12/srvchk/internal/ports"
)

// Count of echo requests sent per probe.
const echoCount = 2

const waitDelay = 2 * time.Second

// Probe checks reachability by running the operating system's ping utility.
type Probe struct {
	logger *slog.Logger
	binary string
	goos   string
	sem    *semaphore.Weighted // nil when unbounded
}

func New(logger *slog.Logger, concurrency int) (*Probe, error) {
	binary, err := exec.LookPath("ping")
	if err != nil {
		return nil, fmt.Errorf("failed to find ping executable: %w", err)
	}

	logger.Debug("Found ping executable", slog.String("path", binary))

	return newProbe(logger, binary, runtime.GOOS, concurrency)
}

// newProbe limits running ping processes to concurrency; zero means no limit.
func newProbe(logger *slog.Logger, binary, goos string, concurrency int) (*Probe, error) {
	if concurrency < 0 {
		return nil, fmt.Errorf("ping: probe concurrency must not be negative")
	}

	p := &Probe{
		logger: logger,
		binary: binary,
		goos:   goos,
	}

	if concurrency > 0 {
		p.sem = semaphore.NewWeighted(int64(concurrency))
	}

	return p, nil
}

func (p *Probe) Probe(ctx context.Context, address string, family ports.AddressFamily) (ports.HostState, error) {
	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return ports.HostUnknown, err
		}

		defer p.sem.Release(1)
	}

	cmd := exec.CommandContext(ctx, p.binary, buildArgs(p.goos, address, family)...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.WaitDelay = waitDelay
	configureCommand(cmd)

	p.logger.DebugContext(ctx, "Running ping", slog.Any("args", cmd.Args))

	err := cmd.Run()
	if err == nil {
		return ports.HostUp, nil
	}

	if ctx.Err() != nil {
		return ports.HostUnknown, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		p.logger.DebugContext(ctx, "Ping exited unsuccessfully", slog.Int("exit_code", exitErr.ExitCode()))
		return ports.HostDown, nil
	}

	return ports.HostUnknown, fmt.Errorf("failed to run ping: %w", err)
}

// buildArgs returns the ping arguments for the given operating system.
func buildArgs(goos, address string, family ports.AddressFamily) []string {
	var args []string

	if goos == "windows" {
		args = append(args, "-n", fmt.Sprint(echoCount))
	} else {
		args = append(args, "-n", "-c", fmt.Sprint(echoCount))
	}

	switch family {
	case ports.FamilyIPv4:
		args = append(args, "-4")
	case ports.FamilyIPv6:
		args = append(args, "-6")
	case ports.FamilyAny:
	}

	if goos == "windows" {
		return append(args, address)
	}

	return append(args, "--", address)
}
