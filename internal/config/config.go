package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/khmm12/srvchk/internal/ports"
)

const (
	DefaultURL    = "https://ntfy.sh/"
	DefaultTopic  = "srvchk"
	DefaultDelay  = 60.0
	DefaultJitter = 10.0
)

// MaxSeconds bounds delay and jitter so they always fit in a time.Duration.
const MaxSeconds = 24 * 60 * 60.0

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SRVCHK_"

// Config is the contents of the configuration file.
type Config struct {
	Ntfy  Notification `toml:"ntfy" yaml:"ntfy"`
	Hosts []Host       `toml:"hosts" yaml:"hosts"`
}

// Notification describes the ntfy target. Environment variables override file values.
type Notification struct {
	URL      string `toml:"url" yaml:"url" env:"NTFY_URL, overwrite"`
	Username string `toml:"username" yaml:"username" env:"NTFY_USERNAME, overwrite"`
	Password string `toml:"password" yaml:"password" env:"NTFY_PASSWORD, overwrite"`
	Topic    string `toml:"topic" yaml:"topic" env:"NTFY_TOPIC, overwrite"`
	Icon     string `toml:"icon" yaml:"icon" env:"NTFY_ICON, overwrite"`
}

// Host is one monitored host. Delay and Jitter are in seconds; nil means unset.
type Host struct {
	Name    string              `toml:"name" yaml:"name"`
	Address string              `toml:"address" yaml:"address"`
	Family  ports.AddressFamily `toml:"family" yaml:"family"`
	Method  ports.ProbeMethod   `toml:"method" yaml:"method"`
	Delay   *float64            `toml:"delay" yaml:"delay"`
	Jitter  *float64            `toml:"jitter" yaml:"jitter"`
}

func (h Host) DelayDuration() time.Duration {
	return seconds(valueOr(h.Delay, DefaultDelay))
}

func (h Host) JitterDuration() time.Duration {
	return seconds(valueOr(h.Jitter, DefaultJitter))
}

func Default() Config {
	return Config{
		Ntfy: Notification{
			URL:   DefaultURL,
			Topic: DefaultTopic,
		},
	}
}

// Load reads the file at path, applies defaults and environment overrides, and
// validates the result. An empty path yields the defaults with no hosts.
func Load(ctx context.Context, path string, lookuper envconfig.Lookuper) (Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}

		if err := decode(path, content, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if lookuper != nil {
		err := envconfig.ProcessWith(ctx, &envconfig.Config{
			Target:   &cfg.Ntfy,
			Lookuper: lookuper,
		})
		if err != nil {
			return Config{}, fmt.Errorf("apply environment: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func decode(path string, content []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)

		err := dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			return nil
		}

		return err
	default:
		md, err := toml.Decode(string(content), cfg)
		if err != nil {
			return err
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}

			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}

		return nil
	}
}

func (c *Config) applyDefaults() {
	if c.Ntfy.URL == "" {
		c.Ntfy.URL = DefaultURL
	}

	if c.Ntfy.Topic == "" {
		c.Ntfy.Topic = DefaultTopic
	}

	for i := range c.Hosts {
		if c.Hosts[i].Method == "" {
			c.Hosts[i].Method = ports.MethodExec
		}
	}
}

func (c *Config) Validate() error {
	var errs []error

	for i, h := range c.Hosts {
		if strings.TrimSpace(h.Address) == "" {
			errs = append(errs, fmt.Errorf("hosts[%d].address: must not be empty", i))
		}

		if d := valueOr(h.Delay, DefaultDelay); !(d > 0 && d <= MaxSeconds) {
			errs = append(errs, fmt.Errorf("hosts[%d].delay: must be greater than zero and at most %g", i, MaxSeconds))
		}

		if j := valueOr(h.Jitter, DefaultJitter); !(j >= 0 && j <= MaxSeconds) {
			errs = append(errs, fmt.Errorf("hosts[%d].jitter: must be between zero and %g", i, MaxSeconds))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Methods reports the distinct probe methods used by the configured hosts.
func (c *Config) Methods() map[ports.ProbeMethod]bool {
	used := make(map[ports.ProbeMethod]bool)
	for _, h := range c.Hosts {
		used[h.Method] = true
	}

	return used
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}

	return *v
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
