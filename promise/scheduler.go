// Package promise implements spec.md §4.6: the Promise state machine and
// its cooperative single-threaded task scheduler.
//
// Scheduler is grounded directly on the teacher's js/eventloop package,
// whose behavior was recovered from its test suite (js/eventloop/eventloop_test.go,
// see DESIGN.md): Start runs a function and then drains posted/registered
// work until none remains, RegisterCallback hands out a single-use token a
// host goroutine uses to post a callback back onto the loop, and
// WaitOnRegistered lets a caller wait out in-flight registered callbacks
// after Start has already returned an error.
package promise

import (
	"sync"
	"sync/atomic"

	"github.com/go-ecma/engine/jserror"
)

// MaxCallDepth bounds the promise resolution/thenable-assimilation
// re-entrancy counter (spec.md §4.6).
const MaxCallDepth = 2000

// Scheduler is a single-engine FIFO task queue.
type Scheduler struct {
	mu         sync.Mutex
	taskCh     chan func() error
	backlog    []func() error // tasks Post()ed before/between Start() calls
	outstanding int
	zeroCh     chan struct{}
	callDepth  int32
}

// NewScheduler creates an idle scheduler.
func NewScheduler() *Scheduler {
	s := &Scheduler{zeroCh: make(chan struct{})}
	close(s.zeroCh) // outstanding starts at 0
	return s
}

// Start runs f on the calling goroutine, then drains tasks — both posted
// via Post and delivered via a RegisterCallback token — in FIFO order
// until none remain pending. If f, or any drained task, returns an error,
// Start stops immediately and returns it; callbacks still in flight are
// not waited for for that, call WaitOnRegistered.
func (s *Scheduler) Start(f func() error) error {
	s.mu.Lock()
	ch := make(chan func() error, 256)
	ch = s.drainBacklogLocked(ch)
	s.taskCh = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.taskCh = nil
		s.mu.Unlock()
	}()

	if err := f(); err != nil {
		return err
	}
	return s.drain(ch)
}

// drainBacklogLocked moves any tasks Post()ed while no Start() was running
// onto the fresh channel. Caller holds s.mu.
func (s *Scheduler) drainBacklogLocked(ch chan func() error) chan func() error {
	for _, t := range s.backlog {
		ch <- t
	}
	s.backlog = nil
	return ch
}

func (s *Scheduler) drain(ch chan func() error) error {
	for {
		s.mu.Lock()
		zeroCh := s.zeroCh
		s.mu.Unlock()

		select {
		case task := <-ch:
			if err := task(); err != nil {
				return err
			}
		case <-zeroCh:
			select {
			case task := <-ch:
				if err := task(); err != nil {
					return err
				}
			default:
				return nil
			}
		}
	}
}

// Post enqueues task to run on the loop. If no Start() is currently
// running, task is held until the next Start() call (used by promise
// reactions settled before the host ever starts the engine).
func (s *Scheduler) Post(task func() error) {
	s.mu.Lock()
	ch := s.taskCh
	if ch == nil {
		s.backlog = append(s.backlog, task)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	ch <- task
}

// RegisterCallback reserves one outstanding unit of async work and returns
// a single-use setter a host goroutine calls (from anywhere) to post its
// result back onto the loop. Calling the returned function twice panics.
func (s *Scheduler) RegisterCallback() func(func() error) {
	s.mu.Lock()
	s.outstanding++
	if s.outstanding == 1 {
		s.zeroCh = make(chan struct{})
	}
	s.mu.Unlock()

	var used int32
	return func(task func() error) {
		if !atomic.CompareAndSwapInt32(&used, 0, 1) {
			panic("promise: RegisterCallback token invoked more than once")
		}
		s.Post(task)

		s.mu.Lock()
		s.outstanding--
		if s.outstanding == 0 {
			close(s.zeroCh)
		}
		s.mu.Unlock()
	}
}

// WaitOnRegistered blocks until every RegisterCallback token handed out so
// far has been invoked, whether or not a Start() drain consumes the
// resulting tasks.
func (s *Scheduler) WaitOnRegistered() {
	for {
		s.mu.Lock()
		if s.outstanding == 0 {
			s.mu.Unlock()
			return
		}
		zeroCh := s.zeroCh
		s.mu.Unlock()
		<-zeroCh
	}
}

// enterCall increments the synchronous re-entrancy counter used to guard
// against unbounded thenable-assimilation chains, returning an exit func
// to release it and an error if MaxCallDepth was already reached.
func (s *Scheduler) enterCall() (func(), error) {
	d := atomic.AddInt32(&s.callDepth, 1)
	if d > MaxCallDepth {
		atomic.AddInt32(&s.callDepth, -1)
		return func() {}, jserror.DepthGuardExceeded(MaxCallDepth)
	}
	return func() { atomic.AddInt32(&s.callDepth, -1) }, nil
}
