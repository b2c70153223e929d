package mdns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sync/semaphore"
)

// ErrNoAnswer is returned when no host answered a query before its timeout.
var ErrNoAnswer = errors.New("mdns: no answer")

type querier interface {
	QueryAddr(ctx context.Context, name string) (netip.Addr, error)
}

// Client owns the multicast DNS connection shared by every mDNS probe.
type Client struct {
	logger  *slog.Logger
	querier querier
	closer  func() error
	timeout time.Duration
	sem     *semaphore.Weighted // nil when unbounded
}

type ClientOptions struct {
	UseIPv4  bool
	UseIPv6  bool
	IPv4Addr string
	IPv6Addr string
	Timeout  time.Duration
	// Concurrency caps in-flight queries; zero means no limit.
	Concurrency int
}

func New(logger *slog.Logger, opts ClientOptions) (*Client, error) {
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("mdns: probe concurrency must not be negative")
	}

	if opts.Timeout <= 0 {
		return nil, fmt.Errorf("mdns: timeout must be greater than zero")
	}

	if !opts.UseIPv4 && !opts.UseIPv6 {
		return nil, errors.New("mdns: at least one of IPv4 or IPv6 must be enabled")
	}

	conn, err := buildConn(opts)
	if err != nil {
		return nil, err
	}

	logger.Info("Opened mdns connection",
		slog.Bool("ipv4", opts.UseIPv4),
		slog.Bool("ipv6", opts.UseIPv6),
		slog.Duration("timeout", opts.Timeout),
	)

	return newClient(logger, pionQuerier{conn: conn}, conn.Close, opts), nil
}

func newClient(logger *slog.Logger, q querier, closer func() error, opts ClientOptions) *Client {
	c := &Client{
		logger:  logger,
		querier: q,
		closer:  closer,
		timeout: opts.Timeout,
	}

	if opts.Concurrency > 0 {
		c.sem = semaphore.NewWeighted(int64(opts.Concurrency))
	}

	return c
}

// Close releases the multicast sockets.
func (c *Client) Close() error {
	return c.closer()
}

// Resolve asks the link for name's address. It returns ErrNoAnswer when the
// query times out and the parent context's error when ctx ends first.
func (c *Client) Resolve(ctx context.Context, name string) (netip.Addr, error) {
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return netip.Addr{}, err
		}

		defer c.sem.Release(1)
	}

	queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	addr, err := c.querier.QueryAddr(queryCtx, name)
	if err != nil {
		if ctx.Err() != nil {
			return netip.Addr{}, ctx.Err()
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(queryCtx.Err(), context.DeadlineExceeded) {
			return netip.Addr{}, ErrNoAnswer
		}

		return netip.Addr{}, fmt.Errorf("mdns: query %s: %w", name, err)
	}

	return addr.Unmap(), nil
}

type pionQuerier struct {
	conn *mdns.Conn
}

func (q pionQuerier) QueryAddr(ctx context.Context, name string) (netip.Addr, error) {
	_, addr, err := q.conn.QueryAddr(ctx, name)
	return addr, err
}

func buildConn(opts ClientOptions) (*mdns.Conn, error) {
	var (
		packetConnV4 *ipv4.PacketConn
		packetConnV6 *ipv6.PacketConn
		err          error
	)

	if opts.UseIPv4 {
		packetConnV4, err = listen4(opts.IPv4Addr)
		if err != nil {
			return nil, err
		}
	}

	if opts.UseIPv6 {
		packetConnV6, err = listen6(opts.IPv6Addr)
		if err != nil {
			if packetConnV4 != nil {
				_ = packetConnV4.Close()
			}

			return nil, err
		}
	}

	conn, err := mdns.Server(packetConnV4, packetConnV6, &mdns.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to init mdns connection: %w", err)
	}

	return conn, nil
}

func listen4(addr string) (*ipv4.PacketConn, error) {
	l, err := listenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("mdns ipv4: %w", err)
	}

	return ipv4.NewPacketConn(l), nil
}

func listen6(addr string) (*ipv6.PacketConn, error) {
	l, err := listenUDP("udp6", addr)
	if err != nil {
		return nil, fmt.Errorf("mdns ipv6: %w", err)
	}

	return ipv6.NewPacketConn(l), nil
}

func listenUDP(network, addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr(network, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", addr, err)
	}

	l, err := net.ListenUDP(network, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	return l, nil
}
