package output_storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/iotest"
	"time"
)

func TestNewOutputStorage_Empty(t *testing.T) {
	s := RunNewOutputStorage()
	defer s.Stop()

	cnt := 0
	s.ForEach(func([]byte) bool {
		cnt++
		return true
	})
	if cnt != 0 || len(s.Bytes()) != 0 {
		t.Fatalf("expected empty storage, got %d chunks", cnt)
	}
}

func TestAppendAndForEach_OrderAndEarlyStop(t *testing.T) {
	s := RunNewOutputStorage()
	defer s.Stop()
	for _, c := range []string{"a", "b", "c"} {
		s.Append([]byte(c))
	}

	var got []string
	s.ForEach(func(b []byte) bool {
		got = append(got, string(b))
		return len(got) < 2
	})
	if fmt.Sprint(got) != fmt.Sprint([]string{"a", "b"}) {
		t.Fatalf("early stop failed: got=%v", got)
	}
	if s.String() != "abc" {
		t.Fatalf("expected abc, got %q", s.String())
	}
}

func TestNilReceiverSafety(t *testing.T) {
	var s *OutputStorage

	s.ForEach(nil)
	s.ForEach(func([]byte) bool {
		t.Fatalf("ForEach should not invoke iter for nil receiver")
		return false
	})
	s.Append([]byte("x"))
	s.Stop()
	if got := s.Bytes(); len(got) != 0 {
		t.Fatalf("expected empty bytes from nil receiver, got %q", got)
	}
}

func TestReadFrom(t *testing.T) {
	s := RunNewOutputStorage()
	defer s.Stop()

	src := strings.Repeat("0123456789", 1000)
	n, err := s.ReadFrom(iotest.HalfReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if n != int64(len(src)) || s.String() != src {
		t.Fatalf("expected %d bytes stored, got %d", len(src), n)
	}
}

func TestReadFromError(t *testing.T) {
	s := RunNewOutputStorage()
	defer s.Stop()

	boom := errors.New("boom")
	r := iotest.DataErrReader(&failingReader{data: []byte("partial"), err: boom})
	if _, err := s.ReadFrom(r); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	if s.String() != "partial" {
		t.Fatalf("expected data before the error to be kept, got %q", s.String())
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestSubscribe_ReplaysExistingItems(t *testing.T) {
	s := RunNewOutputStorage()
	defer s.Stop()
	for _, c := range []string{"a", "b", "c"} {
		s.Append([]byte(c))
	}

	ch := s.Subscribe(3)
	for _, want := range []string{"a", "b", "c"} {
		if v, ok := recvWithTimeout[[]byte](t, ch, 200*time.Millisecond); !ok || string(v) != want {
			t.Fatalf("expected %q, ok=%v v=%q", want, ok, v)
		}
	}
	assertNoRecv[[]byte](t, ch, 50*time.Millisecond)

	s.Append([]byte("d"))
	if v, ok := recvWithTimeout[[]byte](t, ch, 200*time.Millisecond); !ok || string(v) != "d" {
		t.Fatalf("expected live item d, ok=%v v=%q", ok, v)
	}
}

func TestSubscribe_ChannelClosesOnStop(t *testing.T) {
	s := RunNewOutputStorage()
	s.Append([]byte("x"))
	ch := s.Subscribe(1)

	var got bytes.Buffer
	done := make(chan struct{})
	go func() {
		for b := range ch {
			got.Write(b)
		}
		close(done)
	}()

	s.Append([]byte("y"))
	s.Stop()

	select {
	case <-done:
	case <-time.After(300 * time.Millisecond):
		t.Fatalf("subscription channel did not close after Stop")
	}
	if got.String() != "xy" {
		t.Fatalf("expected xy before close, got %q", got.String())
	}
}

func TestSubscribe_AfterStopReplaysAll(t *testing.T) {
	s := RunNewOutputStorage()
	s.Append([]byte("done"))
	s.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, err := s.broadcaster.Subscribe(); err != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := string(collect(s.Subscribe(1))); got != "done" {
		t.Fatalf("expected full replay, got %q", got)
	}
}

func subscriberCount(b *Broadcaster[struct{}]) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func TestSubscribeContext_CancelUnsubscribes(t *testing.T) {
	s := RunNewOutputStorage()
	defer s.Stop()
	s.Append([]byte("before"))

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.SubscribeContext(ctx, 1)
	if b, ok := recvWithTimeout(t, ch, time.Second); !ok || string(b) != "before" {
		t.Fatalf("expected replay of existing output, got %q, %v", b, ok)
	}
	if n := subscriberCount(s.broadcaster); n != 1 {
		t.Fatalf("expected one broadcaster subscriber, got %d", n)
	}

	cancel()
	deadline := time.Now().Add(time.Second)
	for {
		_, open := <-ch
		if !open {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("channel not closed after cancel")
		}
	}

	for subscriberCount(s.broadcaster) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber still registered after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Output keeps flowing to the storage and to other subscribers.
	other := s.Subscribe(4)
	s.Append([]byte("after"))
	s.Stop()
	if got := string(collect(other)); got != "beforeafter" {
		t.Fatalf("expected beforeafter, got %q", got)
	}
}

func TestSubscribeContext_CancelWhileReaderIsSlow(t *testing.T) {
	s := RunNewOutputStorage()
	defer s.Stop()
	for i := 0; i < 10; i++ {
		s.Append([]byte{byte('0' + i)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.SubscribeContext(ctx, 0)
	cancel()

	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("blocked replay did not stop on cancel")
	}
}
