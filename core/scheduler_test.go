package core

import (
	"testing"
	"time"
)

func TestManualSchedulerRunsInDueOrder(t *testing.T) {
	var s ManualScheduler
	var order []string
	s.AfterFunc(20*time.Millisecond, func() { order = append(order, "late") })
	s.AfterFunc(10*time.Millisecond, func() { order = append(order, "early") })
	cancel := s.AfterFunc(10*time.Millisecond, func() { order = append(order, "canceled") })
	s.AfterFunc(10*time.Millisecond, func() { order = append(order, "early-2") })
	cancel()

	if s.Pending() != 3 {
		t.Fatalf("pending = %d", s.Pending())
	}
	if ran := s.Advance(30 * time.Millisecond); ran != 3 {
		t.Fatalf("ran = %d", ran)
	}
	want := []string{"early", "early-2", "late"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	fired := make(chan struct{}, 1)
	cancel := TimerScheduler{}.AfterFunc(time.Hour, func() { fired <- struct{}{} })
	cancel()
	select {
	case <-fired:
		t.Fatalf("canceled timer fired")
	default:
	}
}
