package controller

import (
	"sync"
	"time"
)

// scheduler coalesces bursts of triggers per key into one delayed firing.
// A new trigger for a key that already has a pending timer resets it, so the
// stale invocation never runs.
type scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[string]*time.Timer
	fire    func(key string)
	stopped bool
}

func newScheduler(delay time.Duration, fire func(key string)) *scheduler {
	return &scheduler{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

func (s *scheduler) Trigger(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
	}

	s.timers[key] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		s.fire(key)
	})
}

func (s *scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}
