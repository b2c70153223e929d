package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"

	"github.com/khmm12/srvchk/internal/ports"
)

func TestLoad_NoPathYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.Context(), "", nil)

	require.NoError(t, err)
	require.Equal(t, DefaultURL, cfg.Ntfy.URL)
	require.Equal(t, DefaultTopic, cfg.Ntfy.Topic)
	require.Empty(t, cfg.Hosts)
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "srvchk.toml", `
[ntfy]
url = "https://ntfy.example.org/"
username = "alice"
password = "s3cret"
topic = "homelab"
icon = "https://example.org/icon.png"

[[hosts]]
name = "router"
address = "192.0.2.1"
family = "IPv4"
delay = 30
jitter = 2.5

[[hosts]]
address = "printer.local"
method = "mdns"
`)

	cfg, err := Load(t.Context(), path, nil)
	require.NoError(t, err)

	require.Equal(t, Notification{
		URL:      "https://ntfy.example.org/",
		Username: "alice",
		Password: "s3cret",
		Topic:    "homelab",
		Icon:     "https://example.org/icon.png",
	}, cfg.Ntfy)

	require.Len(t, cfg.Hosts, 2)

	router := cfg.Hosts[0]
	require.Equal(t, "router", router.Name)
	require.Equal(t, ports.FamilyIPv4, router.Family)
	require.Equal(t, ports.MethodExec, router.Method)
	require.Equal(t, 30*time.Second, router.DelayDuration())
	require.Equal(t, 2500*time.Millisecond, router.JitterDuration())

	printer := cfg.Hosts[1]
	require.Empty(t, printer.Name)
	require.Equal(t, ports.FamilyAny, printer.Family)
	require.Equal(t, ports.MethodMDNS, printer.Method)
	require.Equal(t, 60*time.Second, printer.DelayDuration())
	require.Equal(t, 10*time.Second, printer.JitterDuration())

	require.Equal(t, map[ports.ProbeMethod]bool{ports.MethodExec: true, ports.MethodMDNS: true}, cfg.Methods())
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "srvchk.yaml", `
ntfy:
  topic: alerts
hosts:
  - address: "2001:db8::1"
    family: ipv6
    method: icmp
    jitter: 0
`)

	cfg, err := Load(t.Context(), path, nil)
	require.NoError(t, err)

	require.Equal(t, DefaultURL, cfg.Ntfy.URL)
	require.Equal(t, "alerts", cfg.Ntfy.Topic)
	require.Len(t, cfg.Hosts, 1)
	require.Equal(t, ports.FamilyIPv6, cfg.Hosts[0].Family)
	require.Equal(t, ports.MethodICMP, cfg.Hosts[0].Method)
	require.Zero(t, cfg.Hosts[0].JitterDuration())
}

func TestLoad_EnvironmentOverridesNotification(t *testing.T) {
	path := writeConfig(t, "srvchk.toml", `
[ntfy]
url = "https://ntfy.example.org/"
topic = "homelab"
`)

	lookuper := envconfig.PrefixLookuper(EnvPrefix, envconfig.MapLookuper(map[string]string{
		"SRVCHK_NTFY_TOPIC":    "override",
		"SRVCHK_NTFY_PASSWORD": "from-env",
	}))

	cfg, err := Load(t.Context(), path, lookuper)
	require.NoError(t, err)

	require.Equal(t, "https://ntfy.example.org/", cfg.Ntfy.URL)
	require.Equal(t, "override", cfg.Ntfy.Topic)
	require.Equal(t, "from-env", cfg.Ntfy.Password)
}

func TestLoad_RejectsInvalidHosts(t *testing.T) {
	path := writeConfig(t, "srvchk.toml", `
[[hosts]]
name = "nameless"

[[hosts]]
address = "192.0.2.1"
delay = 0
jitter = -1
`)

	_, err := Load(t.Context(), path, nil)

	require.ErrorContains(t, err, "hosts[0].address: must not be empty")
	require.ErrorContains(t, err, "hosts[1].delay: must be greater than zero and at most 86400")
	require.ErrorContains(t, err, "hosts[1].jitter: must be between zero and 86400")
}

func TestLoad_RejectsOversizedDelayAndJitter(t *testing.T) {
	path := writeConfig(t, "srvchk.toml", `
[[hosts]]
address = "192.0.2.1"
delay = 1e10
jitter = 1e10

[[hosts]]
address = "192.0.2.2"
delay = 86400
jitter = 86400
`)

	_, err := Load(t.Context(), path, nil)

	require.ErrorContains(t, err, "hosts[0].delay: must be greater than zero and at most 86400")
	require.ErrorContains(t, err, "hosts[0].jitter: must be between zero and 86400")
	require.NotContains(t, err.Error(), "hosts[1]")
}

func TestHost_MaxDurationsStayPositive(t *testing.T) {
	limit := MaxSeconds
	h := Host{Delay: &limit, Jitter: &limit}

	require.Equal(t, 24*time.Hour, h.DelayDuration())
	require.Equal(t, 24*time.Hour, h.JitterDuration())
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	family := writeConfig(t, "family.toml", `
[[hosts]]
address = "192.0.2.1"
family = "ipx"
`)
	_, err := Load(t.Context(), family, nil)
	require.ErrorContains(t, err, "unknown address family")

	keys := writeConfig(t, "keys.toml", `
[[hosts]]
address = "192.0.2.1"
intervall = 5
`)
	_, err = Load(t.Context(), keys, nil)
	require.ErrorContains(t, err, "unknown keys: hosts.intervall")
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := Load(t.Context(), filepath.Join(t.TempDir(), "missing.toml"), nil)
	require.ErrorContains(t, err, "read config")
}

func TestLoad_JitterLargerThanDelayIsAllowed(t *testing.T) {
	path := writeConfig(t, "srvchk.toml", `
[[hosts]]
address = "192.0.2.1"
delay = 1
jitter = 5
`)

	cfg, err := Load(t.Context(), path, nil)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.Hosts[0].JitterDuration())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}
