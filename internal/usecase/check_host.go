package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/khmm12/srvchk/internal/common/logging"
	"github.com/khmm12/srvchk/internal/ports"
)

// HostSpec describes one monitored host.
type HostSpec struct {
	Name    string
	Address string
	Family  ports.AddressFamily
	Method  ports.ProbeMethod
	Delay   time.Duration
	Jitter  time.Duration
}

// DisplayName is the name used in alerts, falling back to the address.
func (h HostSpec) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}

	return h.Address
}

// CheckHostUseCase runs one probe iteration for a single host and tracks its
// reachability. The state is owned by the use case and must not be shared
// between hosts; Execute must not be called concurrently.
type CheckHostUseCase struct {
	logger   *slog.Logger
	probe    ports.Probe
	notifier ports.Notifier
	host     HostSpec

	state ports.HostState
}

func NewCheckHostUseCase(logger *slog.Logger, probe ports.Probe, notifier ports.Notifier, host HostSpec) *CheckHostUseCase {
	return &CheckHostUseCase{
		logger:   logger.With(logging.Host(host.Name, host.Address)),
		probe:    probe,
		notifier: notifier,
		host:     host,
		state:    ports.HostUp,
	}
}

func (u *CheckHostUseCase) State() ports.HostState {
	return u.state
}

// Execute probes the host once and applies the up/down transition. Only the
// Up to Down edge notifies. Failures are logged and never returned; the only
// error is the context's when the probe was interrupted by cancellation.
func (u *CheckHostUseCase) Execute(ctx context.Context) error {
	state, err := u.probe.Probe(ctx, u.host.Address, u.host.Family)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		u.logger.ErrorContext(ctx, "Failed to probe host", logging.Error(err))
		state = ports.HostDown
	}

	up := state == ports.HostUp

	switch {
	case up == (u.state == ports.HostUp):
		u.logger.DebugContext(ctx, "Host state unchanged", slog.String("state", u.state.String()))

	case up:
		u.state = ports.HostUp
		u.logger.InfoContext(ctx, "Host recovered")

	default:
		u.state = ports.HostDown
		u.logger.WarnContext(ctx, "Host is down")

		u.notify(ctx)
	}

	return nil
}

func (u *CheckHostUseCase) notify(ctx context.Context) {
	now := time.Now()

	err := u.notifier.Notify(ctx, u.host.DisplayName(), u.host.Address)
	if err != nil {
		u.logger.ErrorContext(ctx, "Failed to send down notification", logging.Error(err), slog.Duration("duration", time.Since(now)))
		return
	}

	u.logger.InfoContext(ctx, "Sent down notification", slog.Duration("duration", time.Since(now)))
}
