package cps

// chainCtx carries the names and fallthrough behavior transformSeq needs
// to thread through a statement list:
//
//   - resolveName/rejectName: the enclosing async function's executor
//     callbacks. `return` and `return await e` always resolve/reject
//     through these, regardless of how many loops or try blocks a
//     statement sits inside — a return unwinds the whole function.
//   - fallthrough_: what to run when control reaches the end of the
//     current statement list with no explicit return/break/continue.
//     At an async function's top level this resolves with no value; at
//     the bottom of a loop body it's the loop's own continuation.
//   - breakName/continueName: set only while inside a lowered loop body;
//     empty otherwise.
type chainCtx struct {
	resolveName  string
	rejectName   string
	fallthrough_ func() []*Node
	breakName    string
	continueName string
}

// transformSeq rewrites stmts[i:] into the rest of the CPS chain. It
// returns a (usually short) statement list: a flat run of ordinary
// statements up to the first await, then a single expression statement
// wrapping the `.then`-chained continuation.
func (t *transformer) transformSeq(stmts []*Node, i int, ctx chainCtx) []*Node {
	if i >= len(stmts) {
		return ctx.fallthrough_()
	}
	stmt := stmts[i]

	switch stmt.Kind {
	case KindReturn:
		return t.transformReturn(stmt, ctx)

	case KindBreak:
		if ctx.breakName == "" {
			return []*Node{t.rewriteGeneric(stmt)}
		}
		return []*Node{ExprStmt(Call(Ident(ctx.breakName)))}

	case KindContinue:
		if ctx.continueName == "" {
			return []*Node{t.rewriteGeneric(stmt)}
		}
		return []*Node{ExprStmt(Call(Ident(ctx.continueName)))}

	case KindVarDecl:
		if stmt.Expr != nil && stmt.Expr.Kind == KindAwait {
			rest := t.transformSeq(stmts, i+1, ctx)
			chainExpr := t.awaitChain(stmt.Expr.Expr, Arrow([]string{stmt.Name}, rest...))
			return []*Node{ExprStmt(chainExpr)}
		}
		return t.passThrough(stmt, stmts, i, ctx)

	case KindExprStmt:
		if stmt.Expr != nil && stmt.Expr.Kind == KindAwait {
			rest := t.transformSeq(stmts, i+1, ctx)
			chainExpr := t.awaitChain(stmt.Expr.Expr, Arrow(nil, rest...))
			return []*Node{ExprStmt(chainExpr)}
		}
		return t.passThrough(stmt, stmts, i, ctx)

	case KindIf:
		return t.transformIfInChain(stmt, stmts[i+1:], ctx)

	case KindTry:
		return t.transformTryInChain(stmt, stmts[i+1:], ctx)

	case KindForOf:
		if stmt.IsAsync || containsAwaitAny(stmt.Body) {
			return t.lowerForOf(stmt, stmts[i+1:], ctx)
		}
		return t.passThrough(stmt, stmts, i, ctx)

	case KindWhile:
		if containsAwaitAny(stmt.Body) {
			return t.lowerWhile(stmt, stmts[i+1:], ctx)
		}
		return t.passThrough(stmt, stmts, i, ctx)

	case KindFunction:
		nested := t.transformFunction(stmt)
		rest := t.transformSeq(stmts, i+1, ctx)
		return append([]*Node{nested}, rest...)

	default:
		return t.passThrough(stmt, stmts, i, ctx)
	}
}

// passThrough rewrites stmt generically (recursing into any nested
// functions it contains) and continues the chain after it. Used for any
// statement kind that needs no CPS splitting of its own.
func (t *transformer) passThrough(stmt *Node, stmts []*Node, i int, ctx chainCtx) []*Node {
	rewritten := t.rewriteGeneric(stmt)
	rest := t.transformSeq(stmts, i+1, ctx)
	return append([]*Node{rewritten}, rest...)
}

// awaitChain builds `__awaitHelper(e).then(cb)`.
func (t *transformer) awaitChain(e *Node, cb *Node) *Node {
	awaited := Call(Ident("__awaitHelper"), t.rewrite(e))
	return Call(Member(awaited, "then"), cb)
}

// transformReturn implements the return half of rules 2/3: a bare
// `return;` resolves with no value, `return e;` resolves with e, and
// `return await e;` resolves via the awaited value directly (the
// resolve callback IS the fulfillment handler, matching spec.md §4.7's
// `__awaitHelper(e).then(__resolve)` shape).
func (t *transformer) transformReturn(stmt *Node, ctx chainCtx) []*Node {
	if stmt.Expr == nil {
		return []*Node{ExprStmt(Call(Ident(ctx.resolveName)))}
	}
	if stmt.Expr.Kind == KindAwait {
		chainExpr := t.awaitChain(stmt.Expr.Expr, Ident(ctx.resolveName))
		return []*Node{ExprStmt(chainExpr)}
	}
	return []*Node{ExprStmt(Call(Ident(ctx.resolveName), t.rewrite(stmt.Expr)))}
}

func endsInReturn(stmts []*Node) bool {
	if len(stmts) == 0 {
		return false
	}
	return stmts[len(stmts)-1].Kind == KindReturn
}

func containsAwaitAny(stmts []*Node) bool {
	for _, s := range stmts {
		if containsAwait(s) {
			return true
		}
	}
	return false
}

// buildBranch combines a branch's own statements with the raw
// continuation that follows it (unless the branch already ends in
// return, in which case appending more statements after it would be
// unreachable) and runs the combined sequence through transformSeq as
// one chain, so an await anywhere in the branch properly threads into
// the continuation via .then.
func (t *transformer) buildBranch(body []*Node, terminates bool, remainingRaw []*Node, ctx chainCtx) []*Node {
	combined := append(append([]*Node{}, body...))
	if !terminates {
		combined = append(combined, remainingRaw...)
	}
	return t.transformSeq(combined, 0, ctx)
}

// transformIfInChain implements the general shape rule 6 describes for
// loop bodies, applied here to any if-statement appearing mid-chain:
// each branch is transformed with the remaining statements appended
// (the synthetic else, when there is no explicit else), except where a
// branch provably terminates in return.
func (t *transformer) transformIfInChain(ifStmt *Node, remainingRaw []*Node, ctx chainCtx) []*Node {
	thenTerm := endsInReturn(ifStmt.Then.Body)
	thenSeq := t.buildBranch(ifStmt.Then.Body, thenTerm, remainingRaw, ctx)

	var elseSeq []*Node
	if ifStmt.Else != nil {
		elseTerm := endsInReturn(ifStmt.Else.Body)
		elseSeq = t.buildBranch(ifStmt.Else.Body, elseTerm, remainingRaw, ctx)
	} else {
		elseSeq = t.buildBranch(nil, false, remainingRaw, ctx)
	}

	newIf := &Node{
		Kind: KindIf,
		Test: t.rewrite(ifStmt.Test),
		Then: Block(thenSeq...),
		Else: Block(elseSeq...),
	}
	return []*Node{newIf}
}

// transformTryInChain implements rule 7. A try/catch where neither side
// contains await keeps its original shape (recursed into generically)
// and the chain simply continues after it. Otherwise the whole
// construct is lowered: the catch body (plus the original continuation)
// becomes a synthesized handler function, the try body's rejection path
// is rerouted to that handler instead of the enclosing reject, and the
// real try/catch left behind exists only to catch synchronous throws
// raised while building the try body's chain.
func (t *transformer) transformTryInChain(tryStmt *Node, remainingRaw []*Node, ctx chainCtx) []*Node {
	var catchBody []*Node
	if tryStmt.CatchBody != nil {
		catchBody = tryStmt.CatchBody.Body
	}

	tryHasAwait := containsAwaitAny(tryStmt.Body)
	catchHasAwait := containsAwaitAny(catchBody)

	if !tryHasAwait && !catchHasAwait {
		newTry := t.rewriteGeneric(tryStmt)
		rest := t.transformSeq(remainingRaw, 0, ctx)
		return append([]*Node{newTry}, rest...)
	}

	handlerName := t.sym.next("__catchHandler")
	catchTerm := endsInReturn(catchBody)
	handlerChain := t.buildBranch(catchBody, catchTerm, remainingRaw, ctx)
	catchParam := tryStmt.CatchParam
	if catchParam == "" {
		catchParam = t.sym.next("__caught")
	}
	handlerFn := Func(handlerName, false, []string{catchParam}, handlerChain...)

	tryCtx := ctx
	tryCtx.rejectName = handlerName
	tryTerm := endsInReturn(tryStmt.Body)
	tryChain := attachCatch(t.buildBranch(tryStmt.Body, tryTerm, remainingRaw, tryCtx), handlerName)

	innerTry := &Node{
		Kind:       KindTry,
		Body:       tryChain,
		CatchParam: catchParam,
		CatchBody:  Block(ExprStmt(Call(Ident(handlerName), Ident(catchParam)))),
	}
	return []*Node{handlerFn, innerTry}
}

// attachCatch appends `.catch(rejectName)` to a chain's single
// outermost promise expression, when the produced statement list is in
// fact one `.then`-chain call — the point at which an async rejection
// that nothing downstream has handled needs to reach rejectName.
func attachCatch(stmts []*Node, rejectName string) []*Node {
	if len(stmts) != 1 || stmts[0].Kind != KindExprStmt {
		return stmts
	}
	expr := stmts[0].Expr
	if !looksLikePromiseChain(expr) {
		return stmts
	}
	return []*Node{ExprStmt(Call(Member(expr, "catch"), Ident(rejectName)))}
}

func looksLikePromiseChain(e *Node) bool {
	if e == nil || e.Kind != KindCall || e.Callee == nil {
		return false
	}
	return e.Callee.Kind == KindIdent && e.Callee.Name == "then" && e.Callee.Expr != nil
}
