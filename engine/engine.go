// Package engine implements spec.md §6's embedding API: the top-level
// type a host constructs to evaluate ECMAScript source against a single
// realm. Source text is parsed into a cps.Node tree by a host-supplied
// ParseFunc (parsing is an external collaborator per spec.md §1 — this
// package never tokenizes source text itself), which cps.Transform then
// lowers before the tree-walking evaluator in eval.go runs it.
package engine

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/go-ecma/engine/cps"
	"github.com/go-ecma/engine/envscope"
	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/realm"
	"github.com/go-ecma/engine/value"
)

// ParseFunc adapts source text into the cps.Node vocabulary. A host wires
// its own parser in via SetParser; Evaluate/EvaluateModule fail with a
// jserror.Internal until one is set, the same "external collaborator"
// boundary spec.md §1 draws around tokenization/parsing.
type ParseFunc func(source string) (*cps.Node, error)

// ModuleResolver resolves an import specifier (relative to referrer) to
// the module's source text, the callback shape spec.md §6's
// set_module_loader names.
type ModuleResolver func(specifier, referrer string) (string, error)

// Engine ties together a realm, its promise scheduler, engine-wide
// options, and a structured logger — spec.md §6's "Embedding API (ties
// everything together)".
type Engine struct {
	realm  *realm.Realm
	opts   Options
	logger logrus.FieldLogger

	parser   ParseFunc
	resolver ModuleResolver

	globalScope *envscope.Scope

	mu      sync.Mutex
	modules map[string]value.Value
}

// New constructs an Engine with a fresh realm sized per
// opts.ArrayDenseThreshold, the way the teacher wires a runner's VU
// runtime up from config before running anything (SPEC_FULL.md §1).
// logger may be nil, in which case a discarding logrus.Logger is used.
func New(opts Options, logger logrus.FieldLogger) *Engine {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Engine{
		realm:       realm.New(uint32(opts.ArrayDenseThreshold)),
		opts:        opts,
		logger:      logger,
		globalScope: envscope.NewScope(nil),
		modules:     make(map[string]value.Value),
	}
}

// SetParser installs the host's source-to-AST adapter.
func (e *Engine) SetParser(p ParseFunc) { e.parser = p }

// SetModuleLoader installs the resolver EvaluateModule uses to fetch an
// imported specifier's source text (spec.md §6 set_module_loader).
func (e *Engine) SetModuleLoader(resolver func(specifier, referrer string) (string, error)) {
	e.resolver = resolver
}

// SetGlobal installs v as a global binding (spec.md §6 set_global).
func (e *Engine) SetGlobal(name string, v value.Value) error {
	return e.realm.SetGlobal(name, v)
}

// SetGlobalFunction installs handler as a global host function (spec.md
// §6 set_global_function).
func (e *Engine) SetGlobalFunction(name string, handler realm.HostHandler) error {
	return e.realm.SetGlobalFunction(name, handler)
}

// Evaluate parses, CPS-transforms, and runs source as a top-level
// program, returning the value of its last statement (spec.md §6
// evaluate's "future<value>", realized here as a synchronous return once
// the realm's microtask queue has drained — matching realm_test.go's own
// r.Scheduler.Start(...) drain pattern).
func (e *Engine) Evaluate(ctx context.Context, source string) (value.Value, error) {
	program, err := e.parse(source)
	if err != nil {
		return value.Value{}, err
	}
	return e.run(ctx, program)
}

// EvaluateModule evaluates source as the module named specifier. Results
// are cached per specifier so re-evaluating the same module (e.g. via a
// diamond import graph resolved by the host's ModuleResolver) returns the
// first run's value rather than re-executing top-level side effects,
// mirroring ECMAScript's module-singleton semantics.
func (e *Engine) EvaluateModule(ctx context.Context, source, specifier string) (value.Value, error) {
	e.mu.Lock()
	if cached, ok := e.modules[specifier]; ok {
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	v, err := e.Evaluate(ctx, source)
	if err != nil {
		return value.Value{}, err
	}

	e.mu.Lock()
	e.modules[specifier] = v
	e.mu.Unlock()
	return v, nil
}

func (e *Engine) parse(source string) (*cps.Node, error) {
	if e.parser == nil {
		return nil, jserror.New(jserror.Internal, "no parser configured: call SetParser before Evaluate")
	}
	node, err := e.parser(source)
	if err != nil {
		return nil, jserror.New(jserror.SyntaxError, "%s", err)
	}
	return cps.Transform(node), nil
}

type evalResult struct {
	value value.Value
	err   error
}

// run drives one program through the scheduler's FIFO drain loop, honoring
// ctx/opts.ExecutionTimeout the way SPEC_FULL.md §4.11 describes: the
// program runs to completion (or its own abort) on a background goroutine
// while run races that against ctx's deadline; on timeout, WaitOnRegistered
// lets any in-flight host callbacks (timers, I/O) finish before returning,
// so a timed-out evaluation never leaves the scheduler mid-callback.
func (e *Engine) run(ctx context.Context, program *cps.Node) (value.Value, error) {
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	resultCh := make(chan evalResult, 1)
	go func() {
		it := newInterpreter(e.realm, e.opts.MaxCallDepth)
		var v value.Value
		runErr := e.realm.Scheduler.Start(func() error {
			var innerErr error
			v, innerErr = it.run(program, e.globalScope)
			return innerErr
		})
		resultCh <- evalResult{value: v, err: runErr}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return value.Value{}, toEngineError(res.err)
		}
		return res.value, nil
	case <-ctx.Done():
		e.realm.Scheduler.WaitOnRegistered()
		return value.Value{}, jserror.ExecutionTimeout()
	}
}

func (e *Engine) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.ExecutionTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.ExecutionTimeout)
}

// toEngineError normalizes whatever the evaluator surfaced into something
// that carries a *jserror.Error (directly, or reachable by Unwrap through
// an errext exit-code/hint wrapper from jserror.DepthGuardExceeded or
// jserror.ExecutionTimeout) so it satisfies the
// errext.HasStackTrace/HasAbortReason contract the host boundary expects.
// err is returned unchanged whenever it already qualifies; only a bare
// ThrownValue or an unrelated Go error gets freshly wrapped.
func toEngineError(err error) error {
	var je *jserror.Error
	if errors.As(err, &je) {
		return err
	}
	if tv, ok := err.(ThrownValue); ok {
		return jserror.New(jserror.Internal, "uncaught exception").WithPayload(tv.Value)
	}
	return jserror.New(jserror.Internal, "%s", err)
}
