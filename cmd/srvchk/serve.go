package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/khmm12/srvchk/internal/adapter/icmp"
	"github.com/khmm12/srvchk/internal/adapter/mdns"
	"github.com/khmm12/srvchk/internal/adapter/ntfy"
	"github.com/khmm12/srvchk/internal/adapter/ping"
	"github.com/khmm12/srvchk/internal/common/logging"
	"github.com/khmm12/srvchk/internal/config"
	"github.com/khmm12/srvchk/internal/ports"
	"github.com/khmm12/srvchk/internal/usecase"
)

type Probe struct {
	Concurrency int `name:"concurrency" env:"SRVCHK_PROBE_CONCURRENCY" default:"0" help:"The maximum number of ping processes or mDNS queries running at once, shared by all hosts; 0 means no limit. With a limit, hung probes holding every slot delay the other hosts' checks."`
}

type ICMP struct {
	Timeout    time.Duration `name:"timeout" env:"SRVCHK_ICMP_TIMEOUT" default:"10s" help:"The maximum duration of a single ICMP probe (e.g., 5s, 1m)."`
	Privileged bool          `name:"privileged" env:"SRVCHK_ICMP_PRIVILEGED" default:"false" help:"Use raw ICMP sockets instead of unprivileged datagram sockets."`
}

type MDNS struct {
	Timeout  time.Duration `name:"timeout" env:"SRVCHK_MDNS_TIMEOUT" default:"5s" help:"The maximum duration to wait for an mDNS answer (e.g., 1s, 5s)."`
	UseIPv4  bool          `name:"ipv4" env:"SRVCHK_MDNS_USE_IPV4" default:"true" negatable:"" help:"Enable mDNS probing over IPv4."`
	IPv4Addr string        `name:"ipv4.addr" env:"SRVCHK_MDNS_IPV4_ADDR" default:"224.0.0.0:5353" help:"IPv4 address to bind to for mDNS probing."`
	UseIPv6  bool          `name:"ipv6" env:"SRVCHK_MDNS_USE_IPV6" default:"true" negatable:"" help:"Enable mDNS probing over IPv6."`
	IPv6Addr string        `name:"ipv6.addr" env:"SRVCHK_MDNS_IPV6_ADDR" default:"[FF02::]:5353" help:"IPv6 address to bind to for mDNS probing."`
}

type Notify struct {
	Timeout time.Duration `name:"timeout" env:"SRVCHK_NOTIFY_TIMEOUT" default:"30s" help:"The maximum duration of a notification request."`
}

type Serve struct {
	Config    string `name:"config" short:"c" env:"SRVCHK_CONFIG" help:"Path to configuration file (TOML, or YAML for .yaml/.yml)."`
	Probe     Probe  `embed:"" prefix:"probe."`
	ICMP      ICMP   `embed:"" prefix:"icmp."`
	MDNS      MDNS   `embed:"" prefix:"mdns."`
	Notify    Notify `embed:"" prefix:"notify."`
	LogLevel  string `name:"log.level" env:"SRVCHK_LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log.format" env:"SRVCHK_LOG_FORMAT" default:"json" help:"Log format (json, text)"`
}

func serve(cli *CLI) error {
	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger(os.Stdout, cli.Serve.LogLevel, cli.Serve.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	cfg, err := config.Load(ctx, cli.Serve.Config, envconfig.PrefixLookuper(config.EnvPrefix, envconfig.OsLookuper()))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load configuration", logging.Error(err))
		return err
	}

	logger.InfoContext(ctx, "Loaded configuration",
		slog.String("path", cli.Serve.Config),
		slog.Int("hosts", len(cfg.Hosts)),
	)

	notifier, err := ntfy.New(logger, ntfy.Target{
		URL:      cfg.Ntfy.URL,
		Username: cfg.Ntfy.Username,
		Password: cfg.Ntfy.Password,
		Topic:    cfg.Ntfy.Topic,
		Icon:     cfg.Ntfy.Icon,
	}, ntfy.Options{
		UserAgent: programName + "/" + logging.Version(),
		Timeout:   cli.Serve.Notify.Timeout,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create notifier", logging.Error(err))
		return err
	}

	probes, closeProbes, err := newProbes(logger, &cli.Serve, cfg.Methods())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create probes", logging.Error(err))
		return err
	}

	defer closeProbes()

	uc := usecase.NewMonitorHostsUseCase(logger, probes, notifier)

	err = uc.Execute(ctx, usecase.MonitorHostsCommand{
		Hosts: hostSpecs(cfg.Hosts),
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to monitor hosts", logging.Error(err))
		return err
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Stopped")

	return nil
}

func newProbes(logger *slog.Logger, s *Serve, methods map[ports.ProbeMethod]bool) (map[ports.ProbeMethod]ports.Probe, func(), error) {
	probes := make(map[ports.ProbeMethod]ports.Probe, len(methods))
	closers := make([]func(), 0, 1)

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if methods[ports.MethodExec] {
		p, err := ping.New(logger, s.Probe.Concurrency)
		if err != nil {
			return nil, closeAll, err
		}

		probes[ports.MethodExec] = p
	}

	if methods[ports.MethodICMP] {
		p, err := icmp.New(logger, s.ICMP.Timeout, s.ICMP.Privileged)
		if err != nil {
			return nil, closeAll, err
		}

		probes[ports.MethodICMP] = p
	}

	if methods[ports.MethodMDNS] {
		client, err := mdns.New(logger, mdns.ClientOptions{
			UseIPv4:     s.MDNS.UseIPv4,
			UseIPv6:     s.MDNS.UseIPv6,
			IPv4Addr:    s.MDNS.IPv4Addr,
			IPv6Addr:    s.MDNS.IPv6Addr,
			Timeout:     s.MDNS.Timeout,
			Concurrency: s.Probe.Concurrency,
		})
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to create mdns client: %w", err)
		}

		closers = append(closers, func() {
			logger.Info("Closing mdns client")
			_ = client.Close()
		})

		probes[ports.MethodMDNS] = mdns.NewProbe(client)
	}

	return probes, closeAll, nil
}

func hostSpecs(hosts []config.Host) []usecase.HostSpec {
	specs := make([]usecase.HostSpec, 0, len(hosts))

	for _, h := range hosts {
		specs = append(specs, usecase.HostSpec{
			Name:    h.Name,
			Address: h.Address,
			Family:  h.Family,
			Method:  h.Method,
			Delay:   h.DelayDuration(),
			Jitter:  h.JitterDuration(),
		})
	}

	return specs
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	logLevel, err := parseLogLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse to log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler

	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(logging.NewTraceHandler(handler)).With(logging.NewProgramAttr()), nil
}

func (c *CLI) Validate() error {
	var errs []error

	s := &c.Serve

	if s.Probe.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("--probe.concurrency: must not be negative"))
	}

	if s.ICMP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("--icmp.timeout: must be greater than zero"))
	}

	if s.MDNS.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("--mdns.timeout: must be greater than zero"))
	}

	if !s.MDNS.UseIPv4 && !s.MDNS.UseIPv6 {
		errs = append(errs, errors.New("at least one of --mdns.ipv4 or --mdns.ipv6 must be enabled"))
	}

	if s.MDNS.UseIPv4 && !isIP4Addr(s.MDNS.IPv4Addr) {
		errs = append(errs, fmt.Errorf("--mdns.ipv4.addr: must be a valid UDP IPv4 address e.g. 224.0.0.0:5353"))
	}

	if s.MDNS.UseIPv6 && !isIP6Addr(s.MDNS.IPv6Addr) {
		errs = append(errs, fmt.Errorf("--mdns.ipv6.addr: must be a valid UDP IPv6 address e.g. [FF02::]:5353"))
	}

	if s.Notify.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("--notify.timeout: must be greater than zero"))
	}

	if !isLogLevel(s.LogLevel) {
		errs = append(errs, fmt.Errorf("--log.level: must be one of debug, info, warn, error"))
	}

	if !isLogFormat(s.LogFormat) {
		errs = append(errs, fmt.Errorf("--log.format: must be one of json, text"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func parseLogLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.Level(-1), fmt.Errorf("invalid log level: %s", levelStr)
	}
}
