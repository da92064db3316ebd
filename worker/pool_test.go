package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

const testDelay = 80 * time.Millisecond

// runTwo acquires a slot per goroutine and waits testDelay through it.
func runTwo(t *testing.T, p *Pool) time.Duration {
	t.Helper()

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			slot, err := p.Acquire(ctx)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer slot.Release()
			_ = slot.Wait(ctx, func() error {
				time.Sleep(testDelay)
				return nil
			})
		}()
	}
	wg.Wait()
	return time.Since(start)
}

func TestPool_BlockingSerializesWaits(t *testing.T) {
	elapsed := runTwo(t, NewPool(1, Blocking))
	if elapsed < 2*testDelay {
		t.Fatalf("expected blocking waits to serialize (>= %s), took %s", 2*testDelay, elapsed)
	}
}

func TestPool_CooperativeOverlapsWaits(t *testing.T) {
	elapsed := runTwo(t, NewPool(1, Cooperative))
	if elapsed >= 2*testDelay-10*time.Millisecond {
		t.Fatalf("expected cooperative waits to overlap (< %s), took %s", 2*testDelay, elapsed)
	}
}

func TestPool_AcquireTimesOutWhenNoWorker(t *testing.T) {
	p := NewPool(1, Blocking)
	held, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSlot_ReleaseIsIdempotent(t *testing.T) {
	p := NewPool(1, Blocking)
	s, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	s.Release()
	s.Release()
	if s.Held() {
		t.Fatalf("expected slot released")
	}

	// the single worker must be free again
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s2, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("expected worker to be free: %v", err)
	}
	s2.Release()
}

func TestSlot_CooperativeWaitReacquires(t *testing.T) {
	p := NewPool(1, Cooperative)
	s, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer s.Release()

	wantErr := errors.New("boom")
	err = s.Wait(context.Background(), func() error {
		if s.Held() {
			t.Errorf("expected worker handed back during wait")
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if !s.Held() {
		t.Fatalf("expected worker reacquired after wait")
	}
}

func TestWait_WithoutSlotRunsDirectly(t *testing.T) {
	called := false
	if err := Wait(context.Background(), func() error { called = true; return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("expected fn to run")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"": Blocking, "blocking": Blocking, "Cooperative": Cooperative}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("gevent"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSlot_CooperativeWaitFinishesAfterCancel(t *testing.T) {
	p := NewPool(1, Cooperative)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer s.Release()

	err = s.Wait(ctx, func() error {
		cancel()
		return nil
	})
	if err != nil {
		t.Fatalf("expected wait to finish despite cancel, got %v", err)
	}
	if !s.Held() {
		t.Fatalf("expected worker reacquired after cancelled wait")
	}
}

func TestPool_Size(t *testing.T) {
	if got := NewPool(3, Blocking).Size(); got != 3 {
		t.Fatalf("expected size 3, got %d", got)
	}
	if got := NewPool(0, Blocking).Size(); got != 1 {
		t.Fatalf("expected size below 1 to become 1, got %d", got)
	}
}
