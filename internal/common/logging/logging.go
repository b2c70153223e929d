package logging

import (
	"log/slog"
	"os"
	"runtime/debug"
)

func NewProgramAttr() slog.Attr {
	hostname, _ := os.Hostname()

	return slog.Group("program",
		slog.Int("pid", os.Getpid()),
		slog.String("machine", hostname),
		slog.String("version", Version()),
	)
}

// Version reports the main module version recorded at build time.
func Version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok || buildInfo.Main.Version == "" {
		return "(devel)"
	}

	return buildInfo.Main.Version
}

func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// Host groups the identity of a monitored host. Name is omitted when empty.
func Host(name, address string) slog.Attr {
	if name == "" {
		return slog.Group("host", slog.String("address", address))
	}

	return slog.Group("host",
		slog.String("name", name),
		slog.String("address", address),
	)
}
