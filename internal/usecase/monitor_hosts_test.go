package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khmm12/srvchk/internal/ports"
	portsm "github.com/khmm12/srvchk/internal/ports/mocks"
)

func TestMonitorHostsUseCase_NoHostsLogsAndReturns(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	uc := NewMonitorHostsUseCase(logger, nil, portsm.NewMockNotifier(t))

	err := uc.Execute(t.Context(), MonitorHostsCommand{})

	require.NoError(t, err)
	require.Contains(t, buf.String(), "level=ERROR")
	require.Contains(t, buf.String(), "No hosts configured")
}

func TestMonitorHostsUseCase_FailsOnMissingProbe(t *testing.T) {
	probe := portsm.NewMockProbe(t)

	uc := NewMonitorHostsUseCase(newTestLogger(), map[ports.ProbeMethod]ports.Probe{
		ports.MethodExec: probe,
	}, portsm.NewMockNotifier(t))

	err := uc.Execute(t.Context(), MonitorHostsCommand{
		Hosts: []HostSpec{{Address: "printer.local", Method: ports.MethodMDNS, Delay: time.Millisecond}},
	})

	require.ErrorContains(t, err, `no probe available for method "mdns"`)
	probe.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything, mock.Anything)
}

func TestMonitorHostsUseCase_DuplicateAddressesKeepIndependentState(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	failing := portsm.NewMockProbe(t)
	healthy := portsm.NewMockProbe(t)
	notifier := portsm.NewMockNotifier(t)

	failing.On("Probe", mock.Anything, "192.0.2.10", ports.FamilyAny).Return(ports.HostDown, nil)
	healthy.On("Probe", mock.Anything, "192.0.2.10", ports.FamilyAny).Return(ports.HostUp, nil)
	notifier.On("Notify", mock.Anything, "a", "192.0.2.10").Return(nil).Once()

	uc := NewMonitorHostsUseCase(newTestLogger(), map[ports.ProbeMethod]ports.Probe{
		ports.MethodExec: failing,
		ports.MethodICMP: healthy,
	}, notifier)

	err := uc.Execute(ctx, MonitorHostsCommand{
		Hosts: []HostSpec{
			{Name: "a", Address: "192.0.2.10", Method: ports.MethodExec, Delay: time.Millisecond},
			{Name: "b", Address: "192.0.2.10", Method: ports.MethodICMP, Delay: time.Millisecond},
		},
	})

	require.NoError(t, err)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
	require.Greater(t, len(failing.Calls), 1)
	require.Greater(t, len(healthy.Calls), 1)
}

func TestMonitorHostsUseCase_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	probe := portsm.NewMockProbe(t)
	probe.On("Probe", mock.Anything, "example.org", ports.FamilyAny).Return(ports.HostUp, nil).Maybe()

	uc := NewMonitorHostsUseCase(newTestLogger(), map[ports.ProbeMethod]ports.Probe{
		ports.MethodExec: probe,
	}, portsm.NewMockNotifier(t))

	done := make(chan error, 1)
	go func() {
		done <- uc.Execute(ctx, MonitorHostsCommand{
			Hosts: []HostSpec{{Address: "example.org", Method: ports.MethodExec, Delay: time.Hour, Jitter: time.Minute}},
		})
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitors did not stop")
	}
}
