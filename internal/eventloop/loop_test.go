package eventloop

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestRunPending_IdleRunsAfterPostedBatch(t *testing.T) {
	l := New(nil)
	var order []string

	l.Idle(func() { order = append(order, "idle") })
	l.Post(func() {
		order = append(order, "post-1")
		l.Post(func() { order = append(order, "post-nested") })
	})
	l.Post(func() { order = append(order, "post-2") })

	if !l.RunPending() {
		t.Fatal("expected work to run")
	}
	want := []string{"post-1", "post-2", "post-nested", "idle"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestPass_IdleQueuedByPostedWorkRunsSamePass(t *testing.T) {
	l := New(nil)
	var order []string
	l.Post(func() {
		order = append(order, "post")
		l.Idle(func() { order = append(order, "idle") })
	})
	if !l.pass() {
		t.Fatal("expected work to run")
	}
	want := []string{"post", "idle"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order after one pass = %v, want %v", order, want)
	}
}

func TestRunPending_IdleQueuedDuringIdleRunsNextPass(t *testing.T) {
	l := New(nil)
	var order []string
	l.Idle(func() {
		order = append(order, "idle-1")
		l.Idle(func() { order = append(order, "idle-2") })
		l.Post(func() { order = append(order, "post") })
	})
	l.RunPending()
	want := []string{"idle-1", "post", "idle-2"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if l.RunPending() {
		t.Fatal("expected no remaining work")
	}
}

func TestRun_PanicDoesNotStopLoop(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	l.Post(func() { panic("boom") })
	got := 0
	if err := l.Do(ctx, func() { got = 42 }); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestDo_AfterStopReturnsErrStopped(t *testing.T) {
	defer goleak.VerifyNone(t)
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(finished)
	}()
	cancel()
	<-finished

	if err := l.Do(context.Background(), func() {}); err != ErrStopped {
		t.Fatalf("Do() error = %v, want ErrStopped", err)
	}
}

// fakeTimers lets tests fire scheduled callbacks by hand.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	f       func()
	d       time.Duration
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (ft *fakeTimers) afterFunc(d time.Duration, f func()) Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{f: f, d: d}
	ft.timers = append(ft.timers, t)
	return t
}

// fireAll runs every timer callback, including stopped ones, emulating
// timers whose Stop lost the race with expiry.
func (ft *fakeTimers) fireAll() {
	ft.mu.Lock()
	timers := append([]*fakeTimer(nil), ft.timers...)
	ft.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func TestDebouncer_BurstRunsOnceWithLastValue(t *testing.T) {
	l := New(nil)
	timers := &fakeTimers{}
	d := NewDebouncer(l, 0, timers.afterFunc)

	var applied []int
	for i := 1; i <= 5; i++ {
		v := i
		d.Trigger(func() { applied = append(applied, v) })
	}
	if !d.Pending() {
		t.Fatal("expected pending action")
	}

	timers.fireAll()
	l.RunPending()

	if !reflect.DeepEqual(applied, []int{5}) {
		t.Fatalf("applied = %v, want [5]", applied)
	}
	if d.Pending() {
		t.Fatal("expected nothing pending after run")
	}
	if got := timers.timers[0].d; got != DefaultQuiescence {
		t.Fatalf("window = %v, want %v", got, DefaultQuiescence)
	}
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	l := New(nil)
	timers := &fakeTimers{}
	d := NewDebouncer(l, 10*time.Millisecond, timers.afterFunc)

	ran := false
	d.Trigger(func() { ran = true })
	d.Cancel()
	timers.fireAll()
	l.RunPending()
	if ran {
		t.Fatal("cancelled action ran")
	}
}

func TestDebouncer_RealTimer(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	d := NewDebouncer(l, 20*time.Millisecond, nil)
	var mu sync.Mutex
	count, last := 0, 0
	for i := 1; i <= 10; i++ {
		v := i
		d.Trigger(func() {
			mu.Lock()
			count++
			last = v
			mu.Unlock()
		})
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		c := count
		mu.Unlock()
		if c > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 || last != 10 {
		t.Fatalf("count=%d last=%d, want 1 and 10", count, last)
	}
}
