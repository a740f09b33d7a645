package cps_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ecma/engine/cps"
)

func await(e *cps.Node) *cps.Node {
	return &cps.Node{Kind: cps.KindAwait, Expr: e}
}

func TestNeedsTransformFalseForPlainTree(t *testing.T) {
	t.Parallel()
	fn := cps.Func("f", false, []string{"x"}, cps.Return(cps.Ident("x")))
	assert.False(t, cps.NeedsTransform(fn))
}

func TestNeedsTransformTrueForAsyncFunction(t *testing.T) {
	t.Parallel()
	fn := cps.Func("f", true, nil, cps.Return(cps.Ident("x")))
	assert.True(t, cps.NeedsTransform(fn))
}

func TestTransformLeavesPlainTreeUntouched(t *testing.T) {
	t.Parallel()
	fn := cps.Func("f", false, []string{"x"}, cps.Return(cps.Ident("x")))
	out := cps.Transform(fn)
	require.Equal(t, fn, out)
}

// TestAsyncFunctionWrapsInPromiseExecutor checks rule 1's shape: the
// transformed function is no longer async and its single statement
// returns `new Promise((resolve, reject) => { try {...} catch(e) {...} })`.
func TestAsyncFunctionWrapsInPromiseExecutor(t *testing.T) {
	t.Parallel()
	fn := cps.Func("f", true, nil, cps.Return(cps.Ident("undefined")))
	out := cps.Transform(fn)

	require.Equal(t, cps.KindFunction, out.Kind)
	assert.False(t, out.IsAsync)
	require.Len(t, out.Body, 1)
	ret := out.Body[0]
	require.Equal(t, cps.KindReturn, ret.Kind)

	promiseNew := ret.Expr
	require.Equal(t, cps.KindCall, promiseNew.Kind)
	assert.True(t, promiseNew.IsNew)
	require.Equal(t, cps.KindIdent, promiseNew.Callee.Kind)
	assert.Equal(t, "Promise", promiseNew.Callee.Name)
	require.Len(t, promiseNew.Args, 1)

	executor := promiseNew.Args[0]
	require.Equal(t, cps.KindArrow, executor.Kind)
	require.Len(t, executor.Params, 2)
	require.Len(t, executor.Body, 1)
	assert.Equal(t, cps.KindTry, executor.Body[0].Kind)
	assert.Equal(t, cps.KindBlock, executor.Body[0].CatchBody.Kind)
}

// TestReturnInsideAsyncRewrittenToResolve checks rule 3: a plain
// `return x;` inside an async body becomes a call to the synthesized
// resolve callback with x as its argument.
func TestReturnInsideAsyncRewrittenToResolve(t *testing.T) {
	t.Parallel()
	fn := cps.Func("f", true, nil, cps.Return(cps.Ident("x")))
	out := cps.Transform(fn)

	tryNode := out.Body[0].Expr.Args[0].Body[0]
	require.Len(t, tryNode.Body, 1)
	stmt := tryNode.Body[0]
	require.Equal(t, cps.KindExprStmt, stmt.Kind)
	call := stmt.Expr
	require.Equal(t, cps.KindCall, call.Kind)
	require.Len(t, call.Args, 1)
	assert.Equal(t, "x", call.Args[0].Name)
}

// TestAwaitSplitsIntoThenChain checks rules 2/3: `let x = await e; return x;`
// becomes `__awaitHelper(e).then(x => resolve(x))`.
func TestAwaitSplitsIntoThenChain(t *testing.T) {
	t.Parallel()
	fn := cps.Func("f", true, nil,
		&cps.Node{Kind: cps.KindVarDecl, Name: "x", Expr: await(cps.Ident("e"))},
		cps.Return(cps.Ident("x")),
	)
	out := cps.Transform(fn)

	tryNode := out.Body[0].Expr.Args[0].Body[0]
	require.Len(t, tryNode.Body, 1)
	stmt := tryNode.Body[0]
	require.Equal(t, cps.KindExprStmt, stmt.Kind)

	chain := stmt.Expr
	require.Equal(t, cps.KindCall, chain.Kind)
	assert.Equal(t, "catch", chain.Callee.Name)

	thenCall := chain.Callee.Expr
	require.NotNil(t, thenCall)
	assert.Equal(t, "then", thenCall.Callee.Name)

	awaitCall := thenCall.Callee.Expr
	require.Equal(t, cps.KindCall, awaitCall.Kind)
	assert.Equal(t, "__awaitHelper", awaitCall.Callee.Name)

	cb := thenCall.Args[0]
	require.Equal(t, cps.KindArrow, cb.Kind)
	require.Equal(t, []string{"x"}, cb.Params)
}

// TestForAwaitOfLoweredWithLoopCheck checks rule 4: a for-await-of loop
// produces the __iter/__loopCheck/__loopResolve/__afterLoop machinery.
func TestForAwaitOfLoweredWithLoopCheck(t *testing.T) {
	t.Parallel()
	loop := &cps.Node{
		Kind:    cps.KindForOf,
		Name:    "item",
		Expr:    cps.Ident("items"),
		IsAsync: true,
		Body:    []*cps.Node{cps.ExprStmt(cps.Call(cps.Ident("use"), cps.Ident("item")))},
	}
	fn := cps.Func("f", true, nil, loop, cps.Return(nil))
	out := cps.Transform(fn)

	tryNode := out.Body[0].Expr.Args[0].Body[0]
	require.GreaterOrEqual(t, len(tryNode.Body), 4)

	var sawLoopCheck, sawLoopResolve, sawAfterLoop, sawIterInit bool
	for _, s := range tryNode.Body {
		if s.Kind == cps.KindVarDecl && s.Expr != nil && s.Expr.Callee != nil && s.Expr.Callee.Name == "__getIterator" {
			sawIterInit = true
		}
		if s.Kind == cps.KindFunction {
			switch {
			case matchPrefix(s.Name, "__loopCheck"):
				sawLoopCheck = true
			case matchPrefix(s.Name, "__loopResolve"):
				sawLoopResolve = true
			case matchPrefix(s.Name, "__afterLoop"):
				sawAfterLoop = true
			}
		}
	}
	assert.True(t, sawIterInit)
	assert.True(t, sawLoopCheck)
	assert.True(t, sawLoopResolve)
	assert.True(t, sawAfterLoop)
}

// TestWhileWithAwaitLoweredWithWhileCheck checks rule 5 analogously.
func TestWhileWithAwaitLoweredWithWhileCheck(t *testing.T) {
	t.Parallel()
	loop := &cps.Node{
		Kind: cps.KindWhile,
		Test: cps.Ident("cond"),
		Body: []*cps.Node{&cps.Node{Kind: cps.KindExprStmt, Expr: await(cps.Call(cps.Ident("step")))}},
	}
	fn := cps.Func("f", true, nil, loop, cps.Return(nil))
	out := cps.Transform(fn)

	tryNode := out.Body[0].Expr.Args[0].Body[0]
	var sawWhileCheck, sawWhileResolve bool
	for _, s := range tryNode.Body {
		if s.Kind == cps.KindFunction {
			if matchPrefix(s.Name, "__whileCheck") {
				sawWhileCheck = true
			}
			if matchPrefix(s.Name, "__whileResolve") {
				sawWhileResolve = true
			}
		}
	}
	assert.True(t, sawWhileCheck)
	assert.True(t, sawWhileResolve)
}

// TestTryCatchWithAwaitInCatchSynthesizesHandler checks rule 7: when the
// catch block contains await, the construct lowers to a synthesized
// handler function plus an inner try routing to it.
func TestTryCatchWithAwaitInCatchSynthesizesHandler(t *testing.T) {
	t.Parallel()
	tryStmt := &cps.Node{
		Kind:       cps.KindTry,
		Body:       []*cps.Node{cps.ExprStmt(cps.Call(cps.Ident("risky")))},
		CatchParam: "e",
		CatchBody:  cps.Block(&cps.Node{Kind: cps.KindExprStmt, Expr: await(cps.Call(cps.Ident("log"), cps.Ident("e")))}),
	}
	fn := cps.Func("f", true, nil, tryStmt, cps.Return(nil))
	out := cps.Transform(fn)

	tryNode := out.Body[0].Expr.Args[0].Body[0]
	require.Len(t, tryNode.Body, 2)
	handlerFn := tryNode.Body[0]
	require.Equal(t, cps.KindFunction, handlerFn.Kind)
	assert.True(t, matchPrefix(handlerFn.Name, "__catchHandler"))

	innerTry := tryNode.Body[1]
	require.Equal(t, cps.KindTry, innerTry.Kind)
	require.Len(t, innerTry.CatchBody.Body, 1)
	callHandler := innerTry.CatchBody.Body[0].Expr
	assert.Equal(t, handlerFn.Name, callHandler.Callee.Name)
}

// TestSyncTryCatchPassesThroughUnchanged checks that a try/catch with no
// await anywhere keeps its original structure inside an async body.
func TestSyncTryCatchPassesThroughUnchanged(t *testing.T) {
	t.Parallel()
	tryStmt := &cps.Node{
		Kind:       cps.KindTry,
		Body:       []*cps.Node{cps.ExprStmt(cps.Call(cps.Ident("risky")))},
		CatchParam: "e",
		CatchBody:  cps.Block(cps.ExprStmt(cps.Call(cps.Ident("log"), cps.Ident("e")))),
	}
	fn := cps.Func("f", true, nil, tryStmt, cps.Return(nil))
	out := cps.Transform(fn)

	tryNode := out.Body[0].Expr.Args[0].Body[0]
	require.GreaterOrEqual(t, len(tryNode.Body), 1)
	assert.Equal(t, cps.KindTry, tryNode.Body[0].Kind)
	assert.Equal(t, "e", tryNode.Body[0].CatchParam)
}

func matchPrefix(name, prefix string) bool {
	if len(name) < len(prefix) {
		return false
	}
	return name[:len(prefix)] == prefix
}
