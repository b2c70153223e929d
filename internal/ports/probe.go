package ports

import (
	"context"
	"fmt"
	"strings"
)

type HostState int

const (
	HostUnknown HostState = iota
	HostUp
	HostDown
)

func (s HostState) String() string {
	switch s {
	case HostUp:
		return "up"
	case HostDown:
		return "down"
	default:
		return "unknown"
	}
}

// AddressFamily constrains which IP version a probe may use.
type AddressFamily int

const (
	FamilyAny AddressFamily = iota
	FamilyIPv4
	FamilyIPv6
)

func (f AddressFamily) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "any"
	}
}

func (f *AddressFamily) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "any", "*":
		*f = FamilyAny
	case "ipv4", "4", "inet":
		*f = FamilyIPv4
	case "ipv6", "6", "inet6":
		*f = FamilyIPv6
	default:
		return fmt.Errorf("unknown address family %q", text)
	}

	return nil
}

func (f AddressFamily) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ProbeMethod selects the reachability mechanism used for a host.
type ProbeMethod string

const (
	MethodExec ProbeMethod = "exec"
	MethodICMP ProbeMethod = "icmp"
	MethodMDNS ProbeMethod = "mdns"
)

func (m *ProbeMethod) UnmarshalText(text []byte) error {
	switch v := ProbeMethod(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case "":
		*m = MethodExec
	case MethodExec, MethodICMP, MethodMDNS:
		*m = v
	default:
		return fmt.Errorf("unknown probe method %q", text)
	}

	return nil
}

// Probe performs a single reachability check. A non-nil error means the probing
// mechanism itself failed; the returned state is HostUnknown in that case.
type Probe interface {
	Probe(ctx context.Context, address string, family AddressFamily) (HostState, error)
}
