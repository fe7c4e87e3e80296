package reachability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeevan/internal/platform/logger"
)

func TestMonitorStartsOffline(t *testing.T) {
	m := NewMonitor(logger.Discard())
	assert.False(t, m.Online())
	assert.False(t, m.ForcedOffline())
}

func TestMonitorTransitions(t *testing.T) {
	m := NewMonitor(logger.Discard())

	m.SetOnline(true)
	assert.True(t, m.Online())

	m.SetOnline(false)
	assert.False(t, m.Online())
}

func TestForceOfflineOverridesConnectivity(t *testing.T) {
	m := NewMonitor(logger.Discard())
	m.SetOnline(true)

	m.SetForceOffline(true)
	assert.False(t, m.Online(), "forced offline must win over connectivity")
	assert.True(t, m.ForcedOffline())

	// Connectivity changes while forced do not leak through.
	m.SetOnline(false)
	m.SetOnline(true)
	assert.False(t, m.Online())

	m.SetForceOffline(false)
	assert.True(t, m.Online(), "clearing the override restores the platform signal")
}

func TestSubscribeReceivesEffectiveTransitions(t *testing.T) {
	m := NewMonitor(logger.Discard())
	ch, cancel := m.Subscribe()
	defer cancel()

	m.SetOnline(true)

	select {
	case online := <-ch:
		require.True(t, online)
	default:
		t.Fatal("expected a transition signal")
	}
}

func TestSubscribeSkipsNoOpTransitions(t *testing.T) {
	m := NewMonitor(logger.Discard())
	ch, cancel := m.Subscribe()
	defer cancel()

	// Still offline effectively: forcing offline while disconnected changes
	// nothing.
	m.SetForceOffline(true)
	m.SetOnline(false)

	select {
	case <-ch:
		t.Fatal("no effective transition happened")
	default:
	}
}

func TestSubscribeCoalescesToLatestState(t *testing.T) {
	m := NewMonitor(logger.Discard())
	ch, cancel := m.Subscribe()
	defer cancel()

	m.SetOnline(true)
	m.SetOnline(false)
	m.SetOnline(true)

	// A slow reader sees the latest effective state, not the backlog.
	online := <-ch
	assert.True(t, online)
	select {
	case <-ch:
		t.Fatal("expected transitions to coalesce")
	default:
	}
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	m := NewMonitor(logger.Discard())
	ch, cancel := m.Subscribe()
	cancel()

	m.SetOnline(true)

	select {
	case <-ch:
		t.Fatal("unexpected signal after cancel")
	default:
	}
}
