package promise

import (
	"sync"

	"github.com/go-ecma/engine/value"
)

// State is a Promise's settlement state (spec.md §4.6: Pending -> Fulfilled
// or Pending -> Rejected, terminal).
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

// Handler is a then/catch callback. Returning a non-nil *ThrownError
// rejects the downstream promise with the wrapped value (a JS-level
// throw); any other non-nil error is treated as a genuine engine fault
// and aborts the scheduler's current Start drain.
type Handler func(value.Value) (value.Value, error)

// ThrownError distinguishes "the handler threw this JS value" from an
// engine-level error (spec.md §4.6: "Exceptions thrown by handlers reject
// the downstream with the thrown value").
type ThrownError struct {
	Value value.Value
}

func (e *ThrownError) Error() string { return "promise handler threw" }

// CheckThenable lets the realm plug in "does v have a callable then
// property, and invoke it" semantics without promise importing object/realm
// (mirrors object.CallGetter's package-level hook-swap to avoid an import
// cycle; see DESIGN.md). The default rejects nothing as thenable.
var CheckThenable = func(v value.Value, resolve, reject func(value.Value)) (isThenable bool, err error) {
	return false, nil
}

// ErrorToValue converts a Go error (other than *ThrownError) into the
// value.Value used as a rejection reason. The realm overrides this to
// construct a real Error object; the default is a diagnostic string.
var ErrorToValue = func(err error) value.Value { return value.String(err.Error()) }

type reaction struct {
	onFulfilled, onRejected Handler
	downstream              *Promise
}

type pendingReaction struct {
	r         reaction
	fulfilled bool
}

// Promise is spec.md §4.6's state machine: resolve/reject are idempotent
// after the first settle, then always returns a new Promise, and handler
// drains are posted as tasks on the scheduler's queue rather than run
// synchronously.
type Promise struct {
	scheduler *Scheduler

	mu            sync.Mutex
	state         State
	value         value.Value
	resolveCalled bool

	fulfillReactions []reaction
	rejectReactions  []reaction

	pendingReactions []pendingReaction
	drainScheduled   bool
}

// New creates a pending promise bound to scheduler.
func New(scheduler *Scheduler) *Promise {
	return &Promise{scheduler: scheduler}
}

// Resolved creates an already-fulfilled promise (subject to thenable
// assimilation if v is itself thenable, per Resolve's semantics).
func Resolved(scheduler *Scheduler, v value.Value) *Promise {
	p := New(scheduler)
	p.Resolve(v)
	return p
}

// Rejected creates an already-rejected promise.
func Rejected(scheduler *Scheduler, reason value.Value) *Promise {
	p := New(scheduler)
	p.Reject(reason)
	return p
}

// State returns the current settlement state.
func (p *Promise) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Value returns the fulfillment value or rejection reason once settled;
// it is value.Undefined while Pending.
func (p *Promise) Value() value.Value {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Resolve settles p with v, assimilating v if it is a thenable. A second
// call (after resolution has already begun) is a silent no-op.
func (p *Promise) Resolve(v value.Value) {
	p.mu.Lock()
	if p.resolveCalled {
		p.mu.Unlock()
		return
	}
	p.resolveCalled = true
	p.mu.Unlock()
	p.settle(v)
}

// Reject settles p as rejected with reason. A second call is a no-op.
func (p *Promise) Reject(reason value.Value) {
	p.mu.Lock()
	if p.resolveCalled {
		p.mu.Unlock()
		return
	}
	p.resolveCalled = true
	p.mu.Unlock()
	p.rejectInternal(reason)
}

// settle implements the ECMA-262 resolve-function algorithm including
// thenable assimilation. It recurses (once per nested thenable) without
// re-checking resolveCalled, which only guards the outward-facing entry
// point (Resolve).
func (p *Promise) settle(v value.Value) {
	if !v.IsObject() {
		p.fulfillInternal(v)
		return
	}

	exit, err := p.scheduler.enterCall()
	if err != nil {
		p.rejectInternal(ErrorToValue(err))
		return
	}
	defer exit()

	var once sync.Once
	thenResolve := func(inner value.Value) { once.Do(func() { p.settle(inner) }) }
	thenReject := func(reason value.Value) { once.Do(func() { p.rejectInternal(reason) }) }

	isThenable, terr := CheckThenable(v, thenResolve, thenReject)
	if terr != nil {
		once.Do(func() { p.rejectInternal(ErrorToValue(terr)) })
		return
	}
	if !isThenable {
		p.fulfillInternal(v)
	}
}

func (p *Promise) fulfillInternal(v value.Value) {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return
	}
	p.state = Fulfilled
	p.value = v
	reactions := p.fulfillReactions
	p.fulfillReactions, p.rejectReactions = nil, nil
	p.mu.Unlock()

	for _, r := range reactions {
		p.queueReaction(r, true)
	}
}

func (p *Promise) rejectInternal(reason value.Value) {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return
	}
	p.state = Rejected
	p.value = reason
	reactions := p.rejectReactions
	p.fulfillReactions, p.rejectReactions = nil, nil
	p.mu.Unlock()

	for _, r := range reactions {
		p.queueReaction(r, false)
	}
}

// Then always returns a new Promise (spec.md §4.6); missing handlers
// propagate the parent settlement transparently.
func (p *Promise) Then(onFulfilled, onRejected Handler) *Promise {
	downstream := New(p.scheduler)
	r := reaction{onFulfilled: onFulfilled, onRejected: onRejected, downstream: downstream}

	p.mu.Lock()
	switch p.state {
	case Pending:
		p.fulfillReactions = append(p.fulfillReactions, r)
		p.rejectReactions = append(p.rejectReactions, r)
		p.mu.Unlock()
	case Fulfilled:
		p.mu.Unlock()
		p.queueReaction(r, true)
	case Rejected:
		p.mu.Unlock()
		p.queueReaction(r, false)
	}
	return downstream
}

// Catch is sugar for Then(nil, onRejected).
func (p *Promise) Catch(onRejected Handler) *Promise {
	return p.Then(nil, onRejected)
}

// queueReaction appends to the batch of reactions waiting to drain and, if
// no drain task is already outstanding for p, posts exactly one — spec.md
// §4.6's "drain-pending flag so only one task is outstanding per promise."
func (p *Promise) queueReaction(r reaction, fulfilled bool) {
	p.mu.Lock()
	p.pendingReactions = append(p.pendingReactions, pendingReaction{r: r, fulfilled: fulfilled})
	alreadyScheduled := p.drainScheduled
	p.drainScheduled = true
	p.mu.Unlock()

	if alreadyScheduled {
		return
	}
	p.scheduler.Post(p.drainReactions)
}

func (p *Promise) drainReactions() error {
	for {
		p.mu.Lock()
		if len(p.pendingReactions) == 0 {
			p.drainScheduled = false
			p.mu.Unlock()
			return nil
		}
		pr := p.pendingReactions[0]
		p.pendingReactions = p.pendingReactions[1:]
		p.mu.Unlock()

		if err := p.runReaction(pr); err != nil {
			return err
		}
	}
}

func (p *Promise) runReaction(pr pendingReaction) error {
	p.mu.Lock()
	val := p.value
	p.mu.Unlock()

	handler := pr.r.onRejected
	if pr.fulfilled {
		handler = pr.r.onFulfilled
	}

	if handler == nil {
		if pr.fulfilled {
			pr.r.downstream.Resolve(val)
		} else {
			pr.r.downstream.Reject(val)
		}
		return nil
	}

	result, err := handler(val)
	if err != nil {
		if thrown, ok := err.(*ThrownError); ok {
			pr.r.downstream.Reject(thrown.Value)
			return nil
		}
		return err
	}
	pr.r.downstream.Resolve(result)
	return nil
}
