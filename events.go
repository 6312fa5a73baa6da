package syncfile

import (
	"sync"

	"github.com/google/uuid"
)

// SaveEvent reports the outcome of one completed write. Err is nil on success.
type SaveEvent struct {
	Path string
	Err  error
}

const eventBufferSize = 8

// saveBus is a non-blocking publish-subscribe bus for save outcomes.
// Subscribers that are slow to consume have events dropped rather than
// blocking the save path.
type saveBus struct {
	mu     sync.Mutex
	closed bool
	subs   map[string]chan SaveEvent
}

func newSaveBus() *saveBus {
	return &saveBus{subs: make(map[string]chan SaveEvent)}
}

func (b *saveBus) subscribe() (string, <-chan SaveEvent) {
	id := uuid.New().String()
	ch := make(chan SaveEvent, eventBufferSize)
	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *saveBus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *saveBus) publish(ev SaveEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Drop if subscriber is slow
		}
	}
}

func (b *saveBus) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
