package ports

import "context"

// Notifier delivers a "host down" alert. An empty name means the host has no display name.
type Notifier interface {
	Notify(ctx context.Context, name, address string) error
}
