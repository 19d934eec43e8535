// Package output_storage keeps the complete output of a child process and
// lets any number of subscribers replay it from the start while it grows.
package output_storage

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

// readChunkSize is the buffer size ReadFrom allocates for each read.
const readChunkSize = 4096

func logger() *zerolog.Logger {
	return lib.Logger("output_storage")
}

// node is an element of the append-only list.
type node struct {
	data []byte
	next atomic.Pointer[node]
}

// OutputStorage is an append-only list of chunks with a single writer and
// any number of concurrent readers. Readers never block the writer.
type OutputStorage struct {
	head *node // sentinel, immutable
	tail *node // last element, or the sentinel when empty

	broadcaster *Broadcaster[struct{}]
}

// RunNewOutputStorage creates an empty storage and starts its broadcaster.
func RunNewOutputStorage() *OutputStorage {
	sentinel := &node{}
	return &OutputStorage{
		head:        sentinel,
		tail:        sentinel,
		broadcaster: RunNewBroadcaster[struct{}](),
	}
}

// Stop marks the output as complete. Subscribers receive what remains and
// then see their channel closed.
func (s *OutputStorage) Stop() {
	if s == nil {
		return
	}
	s.broadcaster.Stop()
}

// Append adds data to the end of the list. The slice is stored as-is.
// Append must not be called concurrently with itself.
func (s *OutputStorage) Append(data []byte) {
	if s == nil {
		return
	}

	newTail := &node{data: data}
	s.tail.next.Store(newTail)
	s.tail = newTail

	logger().Trace().Int("bytes", len(data)).Msg("appended")
	s.broadcaster.Publish(struct{}{})
}

// ReadFrom appends everything read from r until EOF. Each read lands in a
// fresh buffer that is stored directly, so no copy is made.
func (s *OutputStorage) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		buf := make([]byte, readChunkSize)
		n, err := r.Read(buf)
		if n > 0 {
			s.Append(buf[:n:n])
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// replay sends every node after prev to ch and returns the last one sent.
// ok is false when ctx ended first.
func replay(ctx context.Context, prev *node, ch chan<- []byte) (last *node, ok bool) {
	for {
		current := prev.next.Load()
		if current == nil {
			return prev, true
		}
		select {
		case ch <- current.data:
		case <-ctx.Done():
			return prev, false
		}
		prev = current
	}
}

func (s *OutputStorage) subscribeRunningProcess(ctx context.Context, notifier chan struct{}, ch chan []byte) {
	log := logger().With().Str("subscriber", uuid.NewString()).Logger()
	log.Trace().Msg("subscribed to running output")
	defer close(ch)

	prev := s.head
	for {
		var ok bool
		if prev, ok = replay(ctx, prev, ch); !ok {
			s.broadcaster.Unsubscribe(notifier)
			log.Trace().Msg("subscription cancelled")
			return
		}
		select {
		case _, open := <-notifier:
			if open {
				continue
			}
			// Stopped: nothing is appended after this, so drain and finish.
			replay(ctx, prev, ch)
			log.Trace().Msg("output complete")
			return
		case <-ctx.Done():
			s.broadcaster.Unsubscribe(notifier)
			log.Trace().Msg("subscription cancelled")
			return
		}
	}
}

func (s *OutputStorage) subscribeStoppedProcess(ctx context.Context, ch chan []byte) {
	replay(ctx, s.head, ch)
	close(ch)
}

// Subscribe returns a channel that replays the output from the beginning,
// follows new appends, and is closed once the storage is stopped.
func (s *OutputStorage) Subscribe(capacity int) <-chan []byte {
	return s.SubscribeContext(context.Background(), capacity)
}

// SubscribeContext is Subscribe with a cancellable lifetime: when ctx ends
// the subscription is dropped and the channel closed, even if the output
// is still growing.
func (s *OutputStorage) SubscribeContext(ctx context.Context, capacity int) <-chan []byte {
	ch := make(chan []byte, capacity)
	notifier, err := s.broadcaster.Subscribe()
	if err == nil {
		go s.subscribeRunningProcess(ctx, notifier, ch)
	} else {
		go s.subscribeStoppedProcess(ctx, ch)
	}
	return ch
}

// ForEach visits the stored chunks in order until iter returns false.
func (s *OutputStorage) ForEach(iter func([]byte) bool) {
	if s == nil || iter == nil {
		return
	}
	for cur := s.head.next.Load(); cur != nil; cur = cur.next.Load() {
		if !iter(cur.data) {
			return
		}
	}
}

// Bytes concatenates all stored chunks.
func (s *OutputStorage) Bytes() []byte {
	total := 0
	chunks := make([][]byte, 0, 16)
	s.ForEach(func(b []byte) bool {
		chunks = append(chunks, b)
		total += len(b)
		return true
	})
	out := make([]byte, 0, total)
	for _, b := range chunks {
		out = append(out, b...)
	}
	return out
}

func (s *OutputStorage) String() string {
	return string(s.Bytes())
}
