// ABOUTME: Tests for the malgo stream's callback hand-off
// ABOUTME: Drives the data callback by hand, no audio device needed
package output

import (
	"sync"
	"testing"
	"time"
)

func newTestMalgoStream(channels int) *malgoStream {
	s := &malgoStream{channels: channels}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func TestMalgoStreamFillPadsWithSilence(t *testing.T) {
	s := newTestMalgoStream(2)
	s.pending = []float32{0.5, -0.5}

	out := make([]byte, 4*2*2)
	for i := range out {
		out[i] = 0xff
	}
	s.fill(out, 2)

	if len(s.pending) != 0 {
		t.Errorf("expected pending drained, %d left", len(s.pending))
	}
	for i := 8; i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("expected silence after the samples, byte %d = %#x", i, out[i])
		}
	}
}

func TestMalgoStreamCloseWaitsForLastPeriod(t *testing.T) {
	s := newTestMalgoStream(1)

	written := make(chan error, 1)
	go func() { written <- s.Write([]float32{0.1, 0.2, 0.3}) }()

	out := make([]byte, 4*4)
	deadline := time.Now().Add(time.Second)
	for {
		s.mu.Lock()
		queued := len(s.pending) > 0
		s.mu.Unlock()
		if queued || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	s.fill(out, 4)

	if err := <-written; err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned before the final period was played")
	case <-time.After(50 * time.Millisecond):
	}

	s.fill(out, 4)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the next callback")
	}
}

func TestMalgoStreamCloseTimesOutWithoutCallbacks(t *testing.T) {
	s := newTestMalgoStream(1)
	s.pending = []float32{0.1}
	s.fill(make([]byte, 4), 1)

	start := time.Now()
	s.Close()
	if elapsed := time.Since(start); elapsed > drainTimeout+time.Second {
		t.Errorf("Close blocked for %v", elapsed)
	}
}

func TestMalgoStreamCloseWithoutWrites(t *testing.T) {
	s := newTestMalgoStream(2)

	start := time.Now()
	s.Close()
	if time.Since(start) >= drainTimeout {
		t.Error("Close should not wait when nothing was written")
	}
	if err := s.Write([]float32{0}); err == nil {
		t.Error("expected write after close to fail")
	}
}
