package icmp

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/khmm12/srvchk/internal/ports"
)

func TestNetwork(t *testing.T) {
	require.Equal(t, "ip", network(ports.FamilyAny))
	require.Equal(t, "ip4", network(ports.FamilyIPv4))
	require.Equal(t, "ip6", network(ports.FamilyIPv6))
}

func TestNew_RejectsNonPositiveTimeout(t *testing.T) {
	_, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), 0, false)
	require.ErrorContains(t, err, "timeout must be greater than zero")
}

func TestProbe_UnresolvableHostIsDown(t *testing.T) {
	p, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second, false)
	require.NoError(t, err)

	state, err := p.Probe(t.Context(), "host.invalid", ports.FamilyAny)

	require.NoError(t, err)
	require.Equal(t, ports.HostDown, state)
}

type blockingResolver struct{}

func (blockingResolver) LookupIP(ctx context.Context, _, _ string) ([]net.IP, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type emptyResolver struct{}

func (emptyResolver) LookupIP(context.Context, string, string) ([]net.IP, error) {
	return nil, nil
}

func TestProbe_ResolutionHonoursCancellation(t *testing.T) {
	p, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second, false)
	require.NoError(t, err)
	p.resolver = blockingResolver{}

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	state, err := p.Probe(ctx, "slow-dns.example.org", ports.FamilyAny)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, ports.HostUnknown, state)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestProbe_NoAddressIsDown(t *testing.T) {
	p, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second, false)
	require.NoError(t, err)
	p.resolver = emptyResolver{}

	state, err := p.Probe(t.Context(), "v6only.example.org", ports.FamilyIPv4)

	require.NoError(t, err)
	require.Equal(t, ports.HostDown, state)
}

func TestSlogLogger_WritesThroughLogger(t *testing.T) {
	var buf bytes.Buffer

	l := &slogLogger{ctx: context.Background(), logger: slog.New(slog.NewTextHandler(&buf, nil))}
	l.Warnf("packet %d lost", 3)

	require.Contains(t, buf.String(), "level=WARN")
	require.Contains(t, buf.String(), `msg="packet 3 lost"`)
}
