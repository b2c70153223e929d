package ntfy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Target is the ntfy endpoint alerts are published to. Empty fields are unset.
type Target struct {
	URL      string
	Username string
	Password string
	Topic    string
	Icon     string
}

type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ntfy: unexpected response status %s", e.Status)
}

type payload struct {
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Icon    string `json:"icon,omitempty"`
}

// Notifier publishes "host down" messages. It holds no per-call state and is
// safe for concurrent use.
type Notifier struct {
	logger    *slog.Logger
	target    Target
	client    *http.Client
	userAgent string
}

type Options struct {
	UserAgent string
	Timeout   time.Duration
}

func New(logger *slog.Logger, target Target, opts Options) (*Notifier, error) {
	u, err := url.Parse(target.URL)
	if err != nil {
		return nil, fmt.Errorf("ntfy: invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("ntfy: url must use http or https, got %q", target.URL)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("ntfy: url %q has no host", target.URL)
	}

	if target.Topic == "" {
		return nil, fmt.Errorf("ntfy: topic must not be empty")
	}

	return &Notifier{
		logger:    logger,
		target:    target,
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
	}, nil
}

// Notify sends a single down alert. Delivery is attempted once.
func (n *Notifier) Notify(ctx context.Context, name, address string) error {
	title := name
	if title == "" {
		title = address
	}

	body, err := json.Marshal(payload{
		Topic:   n.target.Topic,
		Title:   title + " is down!",
		Message: fmt.Sprintf("Host %q is unreachable.", address),
		Icon:    n.target.Icon,
	})
	if err != nil {
		return fmt.Errorf("ntfy: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.target.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ntfy: failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	if n.target.Username != "" {
		req.SetBasicAuth(n.target.Username, n.target.Password)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy: request failed: %w", err)
	}

	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	n.logger.DebugContext(ctx, "Notification delivered", slog.Int("status", resp.StatusCode))

	return nil
}
