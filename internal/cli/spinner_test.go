package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner(context.Background(), "Rendering checkout...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	// Repeated stops must not panic or block.
	s.Stop()
	s.Stop()

	if s.Cancelled() != true {
		// Stop cancels the spinner's own context.
		t.Error("Cancelled() = false after Stop()")
	}
}

func TestSpinnerParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "Rendering...")
	s.Start()

	if s.Cancelled() {
		t.Fatal("spinner cancelled before parent context")
	}
	cancel()

	// Give the animation goroutine time to notice.
	time.Sleep(100 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("spinner should report cancellation after parent cancel")
	}
}

func TestSpinnerContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinner(ctx, "Rendering...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after context timeout")
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner(context.Background(), "Rendering...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Render failed: layout timeout")
}
