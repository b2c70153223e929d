package icmp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/khmm12/srvchk/internal/common/logging"
	"github.com/khmm12/srvchk/internal/ports"
)

const echoCount = 2

type resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// Probe sends ICMP echo requests from within the process.
type Probe struct {
	logger     *slog.Logger
	resolver   resolver
	timeout    time.Duration
	privileged bool
}

func New(logger *slog.Logger, timeout time.Duration, privileged bool) (*Probe, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("icmp: timeout must be greater than zero")
	}

	return &Probe{
		logger:     logger,
		resolver:   net.DefaultResolver,
		timeout:    timeout,
		privileged: privileged,
	}, nil
}

func (p *Probe) Probe(ctx context.Context, address string, family ports.AddressFamily) (ports.HostState, error) {
	pinger := probing.New(address)
	pinger.SetNetwork(network(family))
	pinger.SetPrivileged(p.privileged)
	pinger.SetLogger(&slogLogger{ctx: ctx, logger: p.logger})
	pinger.Count = echoCount
	pinger.Timeout = p.timeout

	ip, err := p.resolve(ctx, address, family)
	if err != nil {
		if ctx.Err() != nil {
			return ports.HostUnknown, ctx.Err()
		}

		p.logger.DebugContext(ctx, "Failed to resolve host", logging.Error(err))

		return ports.HostDown, nil
	}

	pinger.SetIPAddr(&net.IPAddr{IP: ip})

	if err := pinger.RunWithContext(ctx); err != nil {
		if ctx.Err() != nil {
			return ports.HostUnknown, ctx.Err()
		}

		return ports.HostUnknown, fmt.Errorf("failed to run icmp probe: %w", err)
	}

	stats := pinger.Statistics()

	p.logger.DebugContext(ctx, "ICMP probe finished",
		slog.Int("sent", stats.PacketsSent),
		slog.Int("received", stats.PacketsRecv),
		slog.Duration("avg_rtt", stats.AvgRtt),
	)

	if stats.PacketsRecv > 0 {
		return ports.HostUp, nil
	}

	return ports.HostDown, nil
}

// resolve looks address up honouring ctx, so shutdown is not held up by DNS.
func (p *Probe) resolve(ctx context.Context, address string, family ports.AddressFamily) (net.IP, error) {
	ips, err := p.resolver.LookupIP(ctx, network(family), address)
	if err != nil {
		return nil, err
	}

	if len(ips) == 0 {
		return nil, fmt.Errorf("no %s address for %s", network(family), address)
	}

	return ips[0], nil
}

func network(family ports.AddressFamily) string {
	switch family {
	case ports.FamilyIPv4:
		return "ip4"
	case ports.FamilyIPv6:
		return "ip6"
	default:
		return "ip"
	}
}
