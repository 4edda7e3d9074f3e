package connectivity

import (
	"sync"

	"go.uber.org/zap"
)

// Monitor translates the host's binary connectivity signal into edge-triggered
// notifications. It holds no state beyond the last known status: feeding the
// same level twice fires nothing, only transitions do.
type Monitor struct {
	logger *zap.Logger

	mu        sync.Mutex
	online    bool
	onOnline  []func()
	onOffline []func()
}

// NewMonitor creates a Monitor with the given initial status. Subscribers are
// not notified of the initial level, only of later transitions.
func NewMonitor(initiallyOnline bool, logger *zap.Logger) *Monitor {
	return &Monitor{
		logger: logger,
		online: initiallyOnline,
	}
}

// OnOnline registers fn to run on every offline→online transition.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// OnOffline registers fn to run on every online→offline transition.
func (m *Monitor) OnOffline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOffline = append(m.onOffline, fn)
}

// Online reports the last known connectivity status.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records the current connectivity status and fires subscribers when the
// status actually changed. Subscribers run synchronously on the caller's
// goroutine, outside the monitor lock.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	var subs []func()
	if online {
		subs = append(subs, m.onOnline...)
	} else {
		subs = append(subs, m.onOffline...)
	}
	m.mu.Unlock()

	if online {
		m.logger.Info("connectivity regained")
	} else {
		m.logger.Info("connectivity lost")
	}

	for _, fn := range subs {
		fn()
	}
}
