package engine

import (
	"github.com/go-ecma/engine/cps"
	"github.com/go-ecma/engine/envscope"
	"github.com/go-ecma/engine/realm"
	"github.com/go-ecma/engine/value"
)

// makeFunction turns a cps.KindFunction node into a callable Value bound
// to the interpreter: each call gets a fresh child scope off defScope (so
// the closure captures its defining environment, spec.md §4.9's lexical
// scoping), a "this" binding from the call's receiver, its parameters
// bound by bindParams, and its body run through evalBlock with a caught
// returnSignal unwrapped into the handler's actual return value — the
// same "non-local control flow via Go error return" translation
// signals.go uses throughout the evaluator.
func (it *interpreter) makeFunction(n *cps.Node, defScope *envscope.Scope) value.Value {
	handler := func(r *realm.Realm, this value.Value, args []value.Value) (value.Value, error) {
		callScope := envscope.NewScope(defScope)
		callScope.Declare("this", envscope.KindConst, true, this)
		it.bindParams(n.Params, args, callScope)

		_, err := it.evalBlock(n.Body, callScope)
		if rs, ok := err.(returnSignal); ok {
			return rs.value, nil
		}
		if err != nil {
			return value.Value{}, err
		}
		return value.Undefined, nil
	}
	fn := realm.NewHostFunction(it.realm, n.Name, len(n.Params), true, handler)
	return value.Object(it.realm.Arena.Alloc(fn))
}

// makeArrow is identical to makeFunction except it never declares its own
// "this" binding, so a `this` lookup inside an arrow body resolves
// lexically outward through defScope's parent chain (ECMA-262's defining
// trait of arrow functions) — and, with no explicit return, the value of
// the last evaluated statement is what the call yields.
func (it *interpreter) makeArrow(n *cps.Node, defScope *envscope.Scope) value.Value {
	handler := func(r *realm.Realm, this value.Value, args []value.Value) (value.Value, error) {
		callScope := envscope.NewScope(defScope)
		it.bindParams(n.Params, args, callScope)

		last, err := it.evalBlock(n.Body, callScope)
		if rs, ok := err.(returnSignal); ok {
			return rs.value, nil
		}
		if err != nil {
			return value.Value{}, err
		}
		return last, nil
	}
	fn := realm.NewHostFunction(it.realm, n.Name, len(n.Params), false, handler)
	return value.Object(it.realm.Arena.Alloc(fn))
}

// bindParams declares each parameter name against the call's positional
// arguments, defaulting missing trailing arguments to undefined rather
// than erroring — ECMA-262's own "missing arguments bind to undefined"
// rule (spec.md doesn't call out a stricter arity check for user
// functions, only for host functions via Function.length).
func (it *interpreter) bindParams(params []string, args []value.Value, scope *envscope.Scope) {
	for i, name := range params {
		v := value.Undefined
		if i < len(args) {
			v = args[i]
		}
		scope.Declare(name, envscope.KindParam, true, v)
	}
}
