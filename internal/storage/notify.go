package storage

import "sync"

// Broadcaster implements Notifier for in-process observers. Notifications are
// level-triggered: a slow subscriber coalesces bursts into one pending signal
// instead of blocking the writer.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[Collection]map[chan struct{}]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[Collection]map[chan struct{}]struct{})}
}

func (b *Broadcaster) Subscribe(collection Collection) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	if b.subs[collection] == nil {
		b.subs[collection] = make(map[chan struct{}]struct{})
	}
	b.subs[collection][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs[collection], ch)
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) Notify(collection Collection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
