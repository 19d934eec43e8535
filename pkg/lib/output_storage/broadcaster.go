package output_storage

import (
	"errors"
	"sync"
)

// ErrBroadcasterStopped is returned by Subscribe after Stop.
var ErrBroadcasterStopped = errors.New("broadcaster is stopped")

// Broadcaster fans each published message out to every subscriber. Slow
// subscribers lose their oldest pending message rather than blocking.
type Broadcaster[T any] struct {
	messageReceiver chan T
	stopOnce        sync.Once

	mu          sync.Mutex
	subscribers map[chan T]struct{}
	stopped     bool
}

func RunNewBroadcaster[T any]() *Broadcaster[T] {
	b := &Broadcaster[T]{
		messageReceiver: make(chan T, 1),
		subscribers:     make(map[chan T]struct{}),
	}
	go b.start()
	return b
}

func (b *Broadcaster[T]) start() {
	log := logger()
	for msg := range b.messageReceiver {
		// Sends never block, so holding the lock keeps Unsubscribe from
		// closing a channel mid-send.
		b.mu.Lock()
		for s := range b.subscribers {
			sendLatest(s, msg)
		}
		b.mu.Unlock()
	}

	b.mu.Lock()
	for s := range b.subscribers {
		close(s)
	}
	b.stopped = true
	b.mu.Unlock()
	log.Trace().Msg("broadcaster stopped")
}

// sendLatest sends msg without blocking, dropping the oldest queued message
// when ch is full.
func sendLatest[T any](ch chan T, msg T) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}

// Stop closes every subscriber channel once pending messages are delivered.
// It is safe to call more than once.
func (b *Broadcaster[T]) Stop() {
	b.stopOnce.Do(func() {
		close(b.messageReceiver)
	})
}

func (b *Broadcaster[T]) Subscribe() (chan T, error) {
	// A buffer of 1 lets stale notifications be replaced without blocking.
	ch := make(chan T, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, ErrBroadcasterStopped
	}
	b.subscribers[ch] = struct{}{}
	return ch, nil
}

func (b *Broadcaster[T]) Unsubscribe(ch chan T) {
	b.mu.Lock()
	_, ok := b.subscribers[ch]
	delete(b.subscribers, ch)
	stopped := b.stopped
	b.mu.Unlock()
	if ok && !stopped {
		close(ch)
	}
}

// Publish queues msg for delivery. When the queue is full the older message
// is replaced. Publish must not be called after Stop.
func (b *Broadcaster[T]) Publish(msg T) {
	sendLatest(b.messageReceiver, msg)
}
