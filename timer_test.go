package mvi

import (
	"context"
	"testing"
	"time"
)

func waitFor[S any](t *testing.T, sub *Subscription[S], cond func(S) bool) S {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		st, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("condition not reached: %v", err)
		}
		if cond(st) {
			return st
		}
	}
}

func TestImperativeTimer(t *testing.T) {
	s := buildSum(t)
	startStore(t, s)

	sub := s.Subscribe()
	defer sub.Close()

	s.StartTimer("test", 20*time.Millisecond, 5)
	if !s.TimerActive("test") {
		t.Error("timer should be active")
	}

	waitFor(t, sub, func(v int) bool { return v == 5 })

	if s.TimerActive("test") {
		t.Error("one-shot timer should not be active after firing")
	}
}

func TestTicker(t *testing.T) {
	s := buildSum(t)
	startStore(t, s)

	sub := s.Subscribe()
	defer sub.Close()

	s.StartTicker("tick", 5*time.Millisecond, 1)
	waitFor(t, sub, func(v int) bool { return v >= 3 })

	if !s.TimerActive("tick") {
		t.Error("ticker should stay active")
	}
	s.StopTimer("tick")
	if s.TimerActive("tick") {
		t.Error("ticker should be stopped")
	}
}

func TestTickerIgnoresNonPositiveInterval(t *testing.T) {
	s := buildSum(t)
	s.StartTicker("tick", 0, 1)
	if s.TimerActive("tick") {
		t.Error("ticker with zero interval should not start")
	}
}

func TestTimerReplacedBySameName(t *testing.T) {
	s := buildSum(t)
	startStore(t, s)

	sub := s.Subscribe()
	defer sub.Close()

	s.StartTimer("test", 30*time.Millisecond, 100)
	s.StartTimer("test", 10*time.Millisecond, 1)

	waitFor(t, sub, func(v int) bool { return v == 1 })
	time.Sleep(60 * time.Millisecond)

	if got := s.State(); got != 1 {
		t.Errorf("replaced timer must not fire, state %d", got)
	}
}

func TestTimersStoppedOnTeardown(t *testing.T) {
	s := buildSum(t)
	startStore(t, s)

	s.StartTicker("tick", time.Millisecond, 1)
	s.StartTimer("once", time.Hour, 1)
	s.Stop()

	if s.TimerActive("tick") || s.TimerActive("once") {
		t.Error("timers should be stopped on teardown")
	}

	s.StartTimer("late", time.Millisecond, 1)
	if s.TimerActive("late") {
		t.Error("timers must not start after teardown")
	}

	final := s.State()
	time.Sleep(10 * time.Millisecond)
	if s.State() != final {
		t.Error("state changed after teardown")
	}
}

func TestStopAllTimers(t *testing.T) {
	s := buildSum(t)
	s.StartTimer("a", time.Hour, 1)
	s.StartTimer("b", time.Hour, 1)
	s.StopAllTimers()

	if s.TimerActive("a") || s.TimerActive("b") {
		t.Error("expected all timers stopped")
	}
	s.Stop()
}
