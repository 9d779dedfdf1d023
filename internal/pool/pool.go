// Package pool schedules recurring build jobs on a fixed number of worker
// goroutines. Jobs carry a deadline; the earliest deadline runs first. A job
// reschedules itself by returning the next deadline from its function, or
// retires by returning the zero time.
package pool

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"
)

type Pool struct {
	mu      sync.Mutex
	queue   jobHeap
	running map[string]*job
	wake    chan struct{}
}

type job struct {
	name     string
	fn       func(context.Context) time.Time
	deadline time.Time
	index    int // heap position, -1 while executing
	rerun    bool
}

func New(workers int) *Pool {
	p := &Pool{running: make(map[string]*job)}

	for range workers {
		go p.work()
	}

	return p
}

// Add schedules a job to run immediately.
func (p *Pool) Add(name string, fn func(context.Context) time.Time) {
	p.schedule(&job{name: name, fn: fn, deadline: time.Now()})
}

// Trigger moves the named job to the front of the queue. If the job is
// executing right now, it is re-run as soon as the current run finishes.
func (p *Pool) Trigger(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, j := range p.queue {
		if j.name == name {
			j.deadline = time.Now()
			heap.Fix(&p.queue, j.index)
			p.wakeWaiters()
			return nil
		}
	}

	if j, ok := p.running[name]; ok {
		j.rerun = true
		return nil
	}

	return fmt.Errorf("no job with name %s", name)
}

func (p *Pool) work() {
	for {
		j := p.next()

		j.deadline = j.fn(context.Background())

		p.mu.Lock()
		if j.rerun {
			j.rerun = false
			j.deadline = time.Now()
		}
		delete(p.running, j.name)
		p.mu.Unlock()

		if !j.deadline.IsZero() {
			p.schedule(j)
		}
	}
}

func (p *Pool) schedule(j *job) {
	p.mu.Lock()
	heap.Push(&p.queue, j)
	p.wakeWaiters()
	p.mu.Unlock()
}

// next blocks until the earliest deadline has passed, then claims that job.
func (p *Pool) next() *job {
	p.mu.Lock()
	for {
		var wait time.Duration
		if len(p.queue) == 0 {
			wait = time.Hour
		} else if d := time.Until(p.queue[0].deadline); d > 0 {
			wait = d
		} else {
			break
		}

		if p.wake == nil {
			p.wake = make(chan struct{})
		}
		wake := p.wake
		p.mu.Unlock()

		select {
		case <-time.After(wait):
		case <-wake:
		}

		p.mu.Lock()
	}

	j := heap.Pop(&p.queue).(*job)
	p.running[j.name] = j
	p.mu.Unlock()
	return j
}

// wakeWaiters must be called with p.mu held.
func (p *Pool) wakeWaiters() {
	if p.wake != nil {
		close(p.wake)
		p.wake = nil
	}
}

type jobHeap []*job

func (h jobHeap) Len() int           { return len(h) }
func (h jobHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *jobHeap) Push(x any) {
	j := x.(*job)
	j.index = len(*h)
	*h = append(*h, j)
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	j := old[n-1]
	old[n-1] = nil
	j.index = -1
	*h = old[:n-1]
	return j
}
