package mvi

import (
	"time"
)

// timerEntry tracks a running timer
type timerEntry[I any] struct {
	timer    *time.Timer
	intent   I
	interval time.Duration // non-zero for tickers
}

// StartTimer dispatches intent once after duration.
// If a timer with the same name exists, it is replaced.
func (s *Store[S, I]) StartTimer(name string, duration time.Duration, intent I) {
	s.startTimer(name, duration, intent, 0)
}

// StartTicker dispatches intent every interval until the timer is stopped or
// the store is torn down.
func (s *Store[S, I]) StartTicker(name string, interval time.Duration, intent I) {
	if interval <= 0 {
		s.logger.Warn("ignoring ticker with non-positive interval", "name", name, "interval", interval)
		return
	}
	s.startTimer(name, interval, intent, interval)
}

func (s *Store[S, I]) startTimer(name string, duration time.Duration, intent I, interval time.Duration) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timersClosed {
		s.logger.Debug("store stopped, not starting timer", "name", name)
		return
	}

	// Cancel existing timer with same name
	if existing, ok := s.timers[name]; ok {
		existing.timer.Stop()
		delete(s.timers, name)
	}

	entry := &timerEntry[I]{intent: intent, interval: interval}
	entry.timer = time.AfterFunc(duration, func() {
		s.timerMu.Lock()
		// Check this entry is still the live one (not stopped or replaced)
		if s.timers[name] != entry {
			s.timerMu.Unlock()
			return
		}
		if entry.interval > 0 {
			entry.timer.Reset(entry.interval)
		} else {
			delete(s.timers, name)
		}
		s.timerMu.Unlock()

		s.logger.Debug("timer fired", "name", name, "intent", intentName(intent))
		s.Dispatch(intent)
	})
	s.timers[name] = entry

	s.logger.Debug("timer started", "name", name, "duration", duration, "periodic", interval > 0)
}

// StopTimer stops a timer by name. No-op if the timer doesn't exist.
func (s *Store[S, I]) StopTimer(name string) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if entry, ok := s.timers[name]; ok {
		entry.timer.Stop()
		delete(s.timers, name)
		s.logger.Debug("timer stopped", "name", name)
	}
}

// StopAllTimers stops all running timers
func (s *Store[S, I]) StopAllTimers() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.stopAllTimersLocked()
}

// TimerActive checks if a timer is running
func (s *Store[S, I]) TimerActive(name string) bool {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	_, ok := s.timers[name]
	return ok
}

// closeTimers stops all timers and refuses new ones
func (s *Store[S, I]) closeTimers() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.timersClosed = true
	s.stopAllTimersLocked()
}

func (s *Store[S, I]) stopAllTimersLocked() {
	for name, entry := range s.timers {
		entry.timer.Stop()
		s.logger.Debug("timer stopped (cleanup)", "name", name)
	}
	s.timers = make(map[string]*timerEntry[I])
}
