// Package reachability is the single source of truth for "can the device
// reach the remote system": the platform connectivity signal combined with
// the app-level manual offline override.
package reachability

import (
	"log/slog"
	"sync"
)

// Monitor tracks online/offline transitions. State changes are pushed in by
// the platform layer (no polling); observers subscribe for the effective
// transitions.
type Monitor struct {
	mu     sync.RWMutex
	online bool
	forced bool
	subs   map[chan bool]struct{}
	logger *slog.Logger
}

// NewMonitor starts offline: the device must prove connectivity before the
// orchestrator is allowed to try an upload.
func NewMonitor(logger *slog.Logger) *Monitor {
	return &Monitor{
		subs:   make(map[chan bool]struct{}),
		logger: logger,
	}
}

// Online reports the effective reachability: the platform signal, overridden
// to false while the manual offline switch is set.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online && !m.forced
}

// ForcedOffline reports whether the manual override is set.
func (m *Monitor) ForcedOffline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.forced
}

// SetOnline records a platform connectivity transition.
func (m *Monitor) SetOnline(online bool) {
	m.transition(func() { m.online = online })
}

// SetForceOffline sets or clears the manual override. While set, Online
// reports false for every dependent component regardless of connectivity.
func (m *Monitor) SetForceOffline(forced bool) {
	m.transition(func() { m.forced = forced })
}

// Subscribe returns a channel receiving the effective reachability after each
// transition, and a cancel func releasing the subscription. The channel is
// buffered; a slow reader coalesces bursts.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()
	cancel := func() {
		m.mu.Lock()
		delete(m.subs, ch)
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *Monitor) transition(apply func()) {
	m.mu.Lock()
	before := m.online && !m.forced
	apply()
	after := m.online && !m.forced
	var notify []chan bool
	if before != after {
		for ch := range m.subs {
			notify = append(notify, ch)
		}
	}
	m.mu.Unlock()

	if before == after {
		return
	}
	m.logger.Info("reachability transition", "online", after)
	for _, ch := range notify {
		select {
		case ch <- after:
		default:
			// Replace a stale pending signal with the latest state.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- after:
			default:
			}
		}
	}
}
