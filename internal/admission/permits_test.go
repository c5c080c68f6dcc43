package admission

import (
	"context"
	"testing"
	"time"
)

func TestPermitsBoundsConcurrency(t *testing.T) {
	p := New(2)
	ctx := context.Background()

	if err := p.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := p.Acquire(ctx); err != nil {
		t.Fatalf("second acquire: %v", err)
	}

	acquired := make(chan error, 1)
	go func() { acquired <- p.Acquire(ctx) }()

	select {
	case <-acquired:
		t.Fatal("third acquire should have blocked while pool is full")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release()
	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("third acquire after release: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("third acquire never unblocked after release")
	}
}

func TestPermitsCloseFailsBlockedAcquire(t *testing.T) {
	p := New(1)
	ctx := context.Background()

	if err := p.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	blocked := make(chan error, 1)
	go func() { blocked <- p.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	p.Close()

	select {
	case err := <-blocked:
		if err != ErrClosed {
			t.Fatalf("got %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked acquire never returned after Close")
	}

	// Release of the original permit after Close must not panic.
	p.Release()
}

func TestPermitsCloseFailsFutureAcquire(t *testing.T) {
	p := New(5)
	p.Close()

	if err := p.Acquire(context.Background()); err != ErrClosed {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}

func TestPermitsRespectsCallerContext(t *testing.T) {
	p := New(1)
	_ = p.Acquire(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Acquire(ctx)
	if err == nil {
		t.Fatal("expected error from caller context deadline")
	}
	if err == ErrClosed {
		t.Fatal("pool was never closed, error should come from caller context")
	}
}
