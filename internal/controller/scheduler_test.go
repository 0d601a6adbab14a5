package controller

import (
	"sync"
	"testing"
	"time"
)

type fireRecorder struct {
	mu    sync.Mutex
	fired map[string]int
}

func newFireRecorder() *fireRecorder {
	return &fireRecorder{fired: make(map[string]int)}
}

func (r *fireRecorder) fire(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired[key]++
}

func (r *fireRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fired[key]
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatal("condition not met before deadline")
	}
}

func TestSchedulerCoalescesBursts(t *testing.T) {
	rec := newFireRecorder()
	s := newScheduler(30*time.Millisecond, rec.fire)
	defer s.Stop()

	for i := 0; i < 5; i++ {
		s.Trigger("folder-a")
	}

	waitFor(t, time.Second, func() bool { return rec.count("folder-a") > 0 })

	// Settle long enough for any stray timers to have fired.
	time.Sleep(60 * time.Millisecond)
	if got := rec.count("folder-a"); got != 1 {
		t.Errorf("burst must coalesce into one firing, got %d", got)
	}
}

func TestSchedulerKeysAreIndependent(t *testing.T) {
	rec := newFireRecorder()
	s := newScheduler(10*time.Millisecond, rec.fire)
	defer s.Stop()

	s.Trigger("folder-a")
	s.Trigger("folder-b")

	waitFor(t, time.Second, func() bool {
		return rec.count("folder-a") == 1 && rec.count("folder-b") == 1
	})
}

func TestSchedulerCancel(t *testing.T) {
	rec := newFireRecorder()
	s := newScheduler(20*time.Millisecond, rec.fire)
	defer s.Stop()

	s.Trigger("folder-a")
	s.Cancel("folder-a")

	time.Sleep(60 * time.Millisecond)
	if got := rec.count("folder-a"); got != 0 {
		t.Errorf("cancelled trigger must not fire, got %d", got)
	}
}

func TestSchedulerStop(t *testing.T) {
	rec := newFireRecorder()
	s := newScheduler(20*time.Millisecond, rec.fire)

	s.Trigger("folder-a")
	s.Stop()
	s.Trigger("folder-b")

	time.Sleep(60 * time.Millisecond)
	if rec.count("folder-a") != 0 || rec.count("folder-b") != 0 {
		t.Error("nothing may fire after Stop")
	}
}
