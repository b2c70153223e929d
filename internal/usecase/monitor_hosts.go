package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/khmm12/srvchk/internal/adapter/worker"
	"github.com/khmm12/srvchk/internal/common/logging"
	"github.com/khmm12/srvchk/internal/ports"
)

// MonitorHostsUseCase runs one independent monitor per configured host.
type MonitorHostsUseCase struct {
	logger   *slog.Logger
	probes   map[ports.ProbeMethod]ports.Probe
	notifier ports.Notifier
}

func NewMonitorHostsUseCase(logger *slog.Logger, probes map[ports.ProbeMethod]ports.Probe, notifier ports.Notifier) *MonitorHostsUseCase {
	return &MonitorHostsUseCase{
		logger:   logger,
		probes:   probes,
		notifier: notifier,
	}
}

type MonitorHostsCommand struct {
	Hosts []HostSpec
}

// Execute blocks until every monitor has stopped, which happens only once ctx
// is done. It fails before starting anything if a host has no probe for its method.
func (u *MonitorHostsUseCase) Execute(ctx context.Context, cmd MonitorHostsCommand) error {
	if len(cmd.Hosts) == 0 {
		u.logger.ErrorContext(ctx, "No hosts configured, nothing to monitor")
		return nil
	}

	workers := make([]*worker.Worker, 0, len(cmd.Hosts))

	for _, host := range cmd.Hosts {
		probe, ok := u.probes[host.Method]
		if !ok {
			return fmt.Errorf("no probe available for method %q of host %s", host.Method, host.Address)
		}

		workers = append(workers, worker.NewWorker(
			u.logger.With(logging.Host(host.Name, host.Address)),
			worker.NewJitter(host.Delay, host.Jitter),
			NewCheckHostUseCase(u.logger, probe, u.notifier, host),
		))
	}

	var g errgroup.Group

	for i, w := range workers {
		host := cmd.Hosts[i]

		u.logger.InfoContext(ctx, "Start host monitor",
			logging.Host(host.Name, host.Address),
			slog.String("family", host.Family.String()),
			slog.String("method", string(host.Method)),
			slog.Duration("delay", host.Delay),
			slog.Duration("jitter", host.Jitter),
		)

		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	return g.Wait()
}
