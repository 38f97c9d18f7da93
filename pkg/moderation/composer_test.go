package moderation

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesCalls(t *testing.T) {
	var calls int32
	d := NewDebouncer(20 * time.Millisecond)

	for i := 0; i < 5; i++ {
		d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	}

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one coalesced call, got %d", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	var calls int32
	d := NewDebouncer(10 * time.Millisecond)

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	d.Cancel()

	time.Sleep(40 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected cancelled call dropped, got %d", got)
	}
}

func TestDebouncerSupersededTimerRunsNothing(t *testing.T) {
	var calls int32
	d := NewDebouncer(time.Hour)

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	d.Schedule(func() { atomic.AddInt32(&calls, 1) })

	// The first timer arriving after its replacement was scheduled must not
	// run the replacement ahead of its delay.
	d.fire(1)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected superseded timer to run nothing, got %d", got)
	}

	d.fire(2)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected current timer to run once, got %d", got)
	}
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	var calls int32
	d := NewDebouncer(time.Hour)

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	d.Flush()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected flushed call to run, got %d", got)
	}
	// Flush with nothing pending is a no-op.
	d.Flush()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected no second run, got %d", got)
	}
}

func TestComposerValidatesOnSetText(t *testing.T) {
	v := newValidator(t)
	c := NewComposer(v, KindComment)
	defer c.Close()

	if c.CanSubmit() {
		t.Fatalf("expected empty composer blocked")
	}
	if c.Report().UGC.Code != CodeRequired {
		t.Fatalf("expected required code for empty draft, got %+v", c.Report())
	}

	c.SetText("this looks perfectly fine")
	if !c.Report().Allowed() {
		t.Fatalf("expected clean draft allowed, got %+v", c.Report())
	}
	if !c.CanSubmit() {
		t.Fatalf("expected submit gate open")
	}

	c.SetText("buy cheap visas at www.example.com")
	if c.CanSubmit() {
		t.Fatalf("expected spam draft blocked")
	}
}

func TestComposerDebouncedValidation(t *testing.T) {
	v := newValidator(t)

	var mu sync.Mutex
	var reports []Report
	c := NewComposer(v, KindComment,
		WithDebounce(15*time.Millisecond),
		WithOnChange(func(r Report) {
			mu.Lock()
			reports = append(reports, r)
			mu.Unlock()
		}),
	)
	defer c.Close()

	// Rapid keystrokes produce one validation, not five.
	for _, text := range []string{"b", "bu", "buy", "buy c", "buy ch"} {
		c.SetText(text)
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	count := len(reports)
	mu.Unlock()
	if count != 1 {
		t.Fatalf("expected one debounced report, got %d", count)
	}
	if c.Text() != "buy ch" {
		t.Fatalf("expected latest draft kept, got %q", c.Text())
	}
}

func TestComposerCanSubmitBypassesDebounce(t *testing.T) {
	v := newValidator(t)
	c := NewComposer(v, KindComment, WithDebounce(time.Hour))
	defer c.Close()

	c.SetText("totally reasonable comment")
	// The debounced validation has not fired, but the gate must not act on
	// the stale empty-draft report.
	if !c.CanSubmit() {
		t.Fatalf("expected synchronous validation at submit time")
	}
}

func TestComposerRestoreAfterFailedCreate(t *testing.T) {
	v := newValidator(t)
	c := NewComposer(v, KindComment, WithDebounce(time.Hour))
	defer c.Close()

	c.SetText("my comment text")
	if !c.CanSubmit() {
		t.Fatalf("expected draft submittable")
	}
	c.Clear()
	if c.Text() != "" {
		t.Fatalf("expected cleared draft, got %q", c.Text())
	}

	// The create failed; the submitted text comes back ready to retry.
	c.Restore("my comment text")
	if c.Text() != "my comment text" {
		t.Fatalf("expected restored draft, got %q", c.Text())
	}
	if !c.Report().Allowed() {
		t.Fatalf("expected restored draft validated immediately, got %+v", c.Report())
	}
}
