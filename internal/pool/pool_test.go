package pool

import (
	"context"
	"testing"
	"time"
)

func TestPool(t *testing.T) {
	p := New(2)

	// Jobs with deadlines in the past and future must all run without
	// deadlocking the workers.
	p.Add("a", func(context.Context) time.Time {
		return time.Now().Add(100 * time.Millisecond)
	})

	p.Add("b", func(context.Context) time.Time {
		return time.Now().Add(-100 * time.Millisecond)
	})

	p.Add("c", func(context.Context) time.Time {
		return time.Now().Add(200 * time.Millisecond)
	})

	time.Sleep(300 * time.Millisecond)
}

type run struct {
	left     int
	ran      int
	sleep    time.Duration
	deadline time.Duration
}

func (r *run) Execute(context.Context) time.Time {
	if r.left > 0 {
		time.Sleep(r.sleep)
		r.left--
		r.ran++
		return time.Now().Add(r.deadline)
	}

	var zero time.Time
	return zero // retire job
}

func TestTrigger(t *testing.T) {
	t.Run("trigger pulls queued job forward", func(t *testing.T) {
		p := New(2)

		rx := &run{left: 3, deadline: 200 * time.Millisecond}

		p.Add("t", rx.Execute) // runs once, then queued for 200 ms

		_ = p.Trigger("t") // pulled in front, run #2
		time.Sleep(50 * time.Millisecond)
		_ = p.Trigger("t")                 // pulled in front, run #3
		time.Sleep(300 * time.Millisecond) // third run retires the job

		if exp, act := 3, rx.ran; exp != act {
			t.Errorf("expected counter of %d, got %d", exp, act)
		}
	})

	t.Run("trigger reruns executing job right away", func(t *testing.T) {
		p := New(2)

		// Without the trigger there would be no second run within the
		// observation window: the next deadline is a second out.
		rx := &run{left: 3, sleep: 100 * time.Millisecond, deadline: time.Second}

		p.Add("t", rx.Execute)
		time.Sleep(50 * time.Millisecond)
		_ = p.Trigger("t") // re-run after the current run finishes

		time.Sleep(300 * time.Millisecond)

		if exp, act := 2, rx.ran; exp != act {
			t.Errorf("expected counter of %d, got %d", exp, act)
		}
	})
}
