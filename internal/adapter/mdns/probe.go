package mdns

import (
	"context"
	"errors"
	"log/slog"

	"github.com/khmm12/srvchk/internal/ports"
)

type Probe struct {
	client *Client
}

func NewProbe(client *Client) *Probe {
	return &Probe{client: client}
}

func (p *Probe) Probe(ctx context.Context, address string, family ports.AddressFamily) (ports.HostState, error) {
	addr, err := p.client.Resolve(ctx, address)
	if errors.Is(err, ErrNoAnswer) {
		return ports.HostDown, nil
	}

	if err != nil {
		return ports.HostUnknown, err
	}

	if (family == ports.FamilyIPv4 && !addr.Is4()) || (family == ports.FamilyIPv6 && !addr.Is6()) {
		p.client.logger.DebugContext(ctx, "mDNS answer does not match address family",
			slog.String("addr", addr.String()),
			slog.String("family", family.String()),
		)

		return ports.HostDown, nil
	}

	return ports.HostUp, nil
}
