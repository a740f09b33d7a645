package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-ecma/engine/cps"
	"github.com/go-ecma/engine/envscope"
	"github.com/go-ecma/engine/jserror"
	"github.com/go-ecma/engine/object"
	"github.com/go-ecma/engine/realm"
	"github.com/go-ecma/engine/value"
)

// interpreter is the tree-walking evaluator spec.md §2's dataflow
// sentence describes ("the evaluator walks the AST against a lexical
// environment"). It operates over exactly the Kind vocabulary cps.Node
// defines — the same vocabulary cps.Transform's own output is expressed
// in — so it is, by construction, sufficient to run any CPS-transformed
// program: Program/Block/If/While/ForOf/Try/Break/Continue/Throw/Return/
// VarDecl/ExprStmt plus Call/Ident/Literal/Arrow/Function/Binary/Assign/
// Other(unary-not) expressions. A fuller ECMAScript expression grammar
// (destructuring, template literals, spread, object/array literal
// syntax) is out of scope here exactly where parsing itself is (spec.md
// §1) — those constructs are expected to already be desugared into this
// vocabulary by whatever produced the tree.
type interpreter struct {
	realm    *realm.Realm
	maxDepth int
	depth    int
}

func newInterpreter(r *realm.Realm, maxDepth int) *interpreter {
	if maxDepth <= 0 {
		maxDepth = 2000
	}
	return &interpreter{realm: r, maxDepth: maxDepth}
}

// run evaluates a top-level program (after cps.Transform has already run
// over it) in a fresh scope chained off global, returning the value of
// its last statement, matching spec.md §6 evaluate's "future<value>".
func (it *interpreter) run(program *cps.Node, global *envscope.Scope) (value.Value, error) {
	top := envscope.NewScope(global)
	return it.evalBlock(program.Body, top)
}

func (it *interpreter) evalBlock(stmts []*cps.Node, scope *envscope.Scope) (value.Value, error) {
	last := value.Undefined
	for _, s := range stmts {
		v, err := it.evalStmt(s, scope)
		if err != nil {
			return value.Value{}, err
		}
		last = v
	}
	return last, nil
}

func (it *interpreter) evalStmt(n *cps.Node, scope *envscope.Scope) (value.Value, error) {
	switch n.Kind {
	case cps.KindBlock:
		return it.evalBlock(n.Body, envscope.NewScope(scope))

	case cps.KindExprStmt:
		return it.evalExpr(n.Expr, scope)

	case cps.KindVarDecl:
		v := value.Undefined
		if n.Expr != nil {
			var err error
			v, err = it.evalExpr(n.Expr, scope)
			if err != nil {
				return value.Value{}, err
			}
		}
		scope.Declare(n.Name, envscope.KindLet, true, v)
		return value.Undefined, nil

	case cps.KindReturn:
		v := value.Undefined
		if n.Expr != nil {
			var err error
			v, err = it.evalExpr(n.Expr, scope)
			if err != nil {
				return value.Value{}, err
			}
		}
		return value.Value{}, returnSignal{value: v}

	case cps.KindBreak:
		return value.Value{}, breakSignal{}

	case cps.KindContinue:
		return value.Value{}, continueSignal{}

	case cps.KindThrow:
		v, err := it.evalExpr(n.Expr, scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Value{}, ThrownValue{Value: v}

	case cps.KindIf:
		test, err := it.evalExpr(n.Test, scope)
		if err != nil {
			return value.Value{}, err
		}
		if test.ToBoolean() {
			return it.evalStmt(n.Then, scope)
		}
		if n.Else != nil {
			return it.evalStmt(n.Else, scope)
		}
		return value.Undefined, nil

	case cps.KindWhile:
		for {
			test, err := it.evalExpr(n.Test, scope)
			if err != nil {
				return value.Value{}, err
			}
			if !test.ToBoolean() {
				return value.Undefined, nil
			}
			if _, err := it.evalBlock(n.Body, envscope.NewScope(scope)); err != nil {
				if _, ok := err.(breakSignal); ok {
					return value.Undefined, nil
				}
				if _, ok := err.(continueSignal); ok {
					continue
				}
				return value.Value{}, err
			}
		}

	case cps.KindForOf:
		iterable, err := it.evalExpr(n.Expr, scope)
		if err != nil {
			return value.Value{}, err
		}
		items, err := it.arrayLikeElements(iterable)
		if err != nil {
			return value.Value{}, err
		}
		for _, item := range items {
			inner := envscope.NewScope(scope)
			inner.Declare(n.Name, envscope.KindLet, true, item)
			if _, err := it.evalBlock(n.Body, inner); err != nil {
				if _, ok := err.(breakSignal); ok {
					return value.Undefined, nil
				}
				if _, ok := err.(continueSignal); ok {
					continue
				}
				return value.Value{}, err
			}
		}
		return value.Undefined, nil

	case cps.KindTry:
		return it.evalTry(n, scope)

	case cps.KindFunction:
		fnVal := it.makeFunction(n, scope)
		if n.Name != "" {
			scope.Declare(n.Name, envscope.KindVar, true, fnVal)
		}
		return value.Undefined, nil

	default:
		return it.evalExpr(n, scope)
	}
}

// evalTry runs a try/catch/finally the way ECMA-262 §14.15.1 defines it:
// finally always runs, regardless of how the try/catch portion completed
// (normally, by throw, or via a break/continue/return escaping through
// it), and a break/continue/return completion is never routed through the
// catch clause — only an actual throw is.
func (it *interpreter) evalTry(n *cps.Node, scope *envscope.Scope) (value.Value, error) {
	resultVal, bodyErr := it.evalBlock(n.Body, envscope.NewScope(scope))

	result := bodyErr
	if bodyErr != nil && n.CatchBody != nil && !isControlSignal(bodyErr) {
		catchScope := envscope.NewScope(scope)
		if n.CatchParam != "" {
			catchScope.Declare(n.CatchParam, envscope.KindLet, true, errorToValue(it.realm, bodyErr))
		}
		resultVal, result = it.evalBlock(n.CatchBody.Body, catchScope)
	}

	if n.Finally != nil {
		if _, ferr := it.evalBlock(n.Finally.Body, envscope.NewScope(scope)); ferr != nil {
			return value.Value{}, ferr
		}
	}

	if result != nil {
		return value.Value{}, result
	}
	return resultVal, nil
}

func (it *interpreter) evalExpr(n *cps.Node, scope *envscope.Scope) (value.Value, error) {
	if n == nil {
		return value.Undefined, nil
	}
	switch n.Kind {
	case cps.KindLiteral:
		if v, ok := n.Value.(value.Value); ok {
			return v, nil
		}
		return value.Undefined, nil

	case cps.KindIdent:
		if n.Expr != nil {
			base, err := it.evalExpr(n.Expr, scope)
			if err != nil {
				return value.Value{}, err
			}
			return it.getMember(base, n.Name)
		}
		if v, err := scope.Get(n.Name); err == nil {
			return v, nil
		}
		// Not bound in any lexical frame: fall back to the realm's global
		// object, where SetGlobal/SetGlobalFunction install host bindings
		// (spec.md §6) that never go through envscope.Declare. A property
		// found on the global object or its prototype chain counts — otherwise
		// the original ReferenceError from scope.Get stands.
		global := it.realm.Arena.Resolve(it.realm.Global)
		if v, ok, err := global.TryGet(it.realm.Arena, object.StringKey(n.Name), it.realm.Global); err == nil && ok {
			return v, nil
		}
		return scope.Get(n.Name)

	case cps.KindAssign:
		v, err := it.evalExpr(n.Expr, scope)
		if err != nil {
			return value.Value{}, err
		}
		if err := scope.Assign(n.Name, v); err != nil {
			return value.Value{}, err
		}
		return v, nil

	case cps.KindBinary:
		return it.evalBinary(n, scope)

	case cps.KindOther:
		if n.Op == "!" {
			v, err := it.evalExpr(n.Expr, scope)
			if err != nil {
				return value.Value{}, err
			}
			return value.Bool(!v.ToBoolean()), nil
		}
		return value.Undefined, nil

	case cps.KindArrow:
		return it.makeArrow(n, scope), nil

	case cps.KindFunction:
		return it.makeFunction(n, scope), nil

	case cps.KindCall:
		return it.evalCall(n, scope)

	case cps.KindAwait:
		return value.Value{}, jserror.New(jserror.Internal, "await reached the evaluator untransformed")

	default:
		return value.Undefined, nil
	}
}

func (it *interpreter) getMember(base value.Value, name string) (value.Value, error) {
	if !base.IsObject() {
		return value.Value{}, it.realm.Throw(jserror.TypeError, "cannot read property %q of non-object", name)
	}
	obj := it.realm.Arena.Resolve(base)
	v, _, err := obj.TryGet(it.realm.Arena, object.StringKey(name), base)
	return v, err
}

func (it *interpreter) evalCall(n *cps.Node, scope *envscope.Scope) (value.Value, error) {
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := it.evalExpr(a, scope)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}

	thisVal := value.Undefined
	var fnVal value.Value
	var err error
	if n.Callee.Kind == cps.KindIdent && n.Callee.Expr != nil {
		thisVal, err = it.evalExpr(n.Callee.Expr, scope)
		if err != nil {
			return value.Value{}, err
		}
		fnVal, err = it.getMember(thisVal, n.Callee.Name)
	} else {
		fnVal, err = it.evalExpr(n.Callee, scope)
	}
	if err != nil {
		return value.Value{}, err
	}

	if it.depth++; it.depth > it.maxDepth {
		it.depth--
		return value.Value{}, jserror.DepthGuardExceeded(it.maxDepth)
	}
	defer func() { it.depth-- }()

	if n.IsNew {
		return it.realm.Construct(fnVal, args)
	}
	return it.realm.Call(fnVal, thisVal, args)
}

func (it *interpreter) evalBinary(n *cps.Node, scope *envscope.Scope) (value.Value, error) {
	switch n.Op {
	case "&&":
		l, err := it.evalExpr(n.Left, scope)
		if err != nil || !l.ToBoolean() {
			return l, err
		}
		return it.evalExpr(n.Right, scope)
	case "||":
		l, err := it.evalExpr(n.Left, scope)
		if err != nil || l.ToBoolean() {
			return l, err
		}
		return it.evalExpr(n.Right, scope)
	}

	l, err := it.evalExpr(n.Left, scope)
	if err != nil {
		return value.Value{}, err
	}
	r, err := it.evalExpr(n.Right, scope)
	if err != nil {
		return value.Value{}, err
	}

	switch n.Op {
	case "+":
		if l.IsString() || r.IsString() {
			return value.String(displayString(l) + displayString(r)), nil
		}
		return value.Number(l.AsNumber() + r.AsNumber()), nil
	case "-":
		return value.Number(l.AsNumber() - r.AsNumber()), nil
	case "*":
		return value.Number(l.AsNumber() * r.AsNumber()), nil
	case "/":
		return value.Number(l.AsNumber() / r.AsNumber()), nil
	case "%":
		return value.Number(math.Mod(l.AsNumber(), r.AsNumber())), nil
	case "===":
		return value.Bool(value.StrictEquals(l, r)), nil
	case "!==":
		return value.Bool(!value.StrictEquals(l, r)), nil
	case "<":
		return value.Bool(l.AsNumber() < r.AsNumber()), nil
	case "<=":
		return value.Bool(l.AsNumber() <= r.AsNumber()), nil
	case ">":
		return value.Bool(l.AsNumber() > r.AsNumber()), nil
	case ">=":
		return value.Bool(l.AsNumber() >= r.AsNumber()), nil
	default:
		return value.Value{}, jserror.New(jserror.Internal, "unsupported binary operator %q", n.Op)
	}
}

func displayString(v value.Value) string {
	switch {
	case v.IsString():
		return v.AsString()
	case v.IsNumber():
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64)
	case v.IsBoolean():
		return strconv.FormatBool(v.AsBool())
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	default:
		return fmt.Sprintf("%v", v.Kind())
	}
}

// arrayLikeElements reads a "length" property plus that many numeric-index
// properties, the same protocol arraylib.Array itself exposes an array
// through (spec.md §4.2) — works for any array-like object, not just
// arraylib's own Array, since it only uses the ordinary Get protocol.
func (it *interpreter) arrayLikeElements(v value.Value) ([]value.Value, error) {
	if !v.IsObject() {
		return nil, it.realm.Throw(jserror.TypeError, "value is not iterable")
	}
	obj := it.realm.Arena.Resolve(v)
	lengthVal, ok, err := obj.TryGet(it.realm.Arena, object.StringKey("length"), v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, it.realm.Throw(jserror.TypeError, "value is not iterable")
	}
	n := int(lengthVal.AsNumber())
	out := make([]value.Value, 0, n)
	for i := 0; i < n; i++ {
		item, _, err := obj.TryGet(it.realm.Arena, object.StringKey(strconv.Itoa(i)), v)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
