// Package cps implements spec.md §4.7's CPS (continuation-passing style)
// transformer: an AST-to-AST rewrite that lowers async functions, await,
// and await-containing for[-await]-of/while loops into explicit Promise
// `.then` chains and thunk-style loop recursion, so the evaluator can run
// async code on a cooperative event loop without native coroutines.
//
// Parsing source text to an AST is an external collaborator (spec.md §1);
// Node is the minimal boundary type a parser's output is adapted to (or
// produced as, directly) before Transform runs.
package cps

// Kind discriminates a Node's shape, the "list-structured" AST spec.md
// §4.7 describes — a small fixed vocabulary of statement/expression forms
// rather than one Go type per ECMAScript grammar production, since cps
// only ever needs to pattern-match on these specific forms.
type Kind string

const (
	KindProgram      Kind = "Program"
	KindBlock        Kind = "Block"
	KindFunction     Kind = "Function"
	KindReturn       Kind = "Return"
	KindExprStmt     Kind = "ExprStmt"
	KindVarDecl      Kind = "VarDecl"
	KindIf           Kind = "If"
	KindForOf        Kind = "ForOf"
	KindWhile        Kind = "While"
	KindTry          Kind = "Try"
	KindBreak        Kind = "Break"
	KindContinue     Kind = "Continue"
	KindThrow        Kind = "Throw"
	KindAwait        Kind = "Await"
	KindYield        Kind = "Yield"
	KindCall         Kind = "Call"
	KindIdent        Kind = "Ident"
	KindLiteral      Kind = "Literal"
	KindArrow        Kind = "Arrow"
	KindBinary       Kind = "Binary"
	KindAssign       Kind = "Assign"
	KindOther        Kind = "Other" // any expression/statement cps doesn't special-case
)

// Node is a single AST node. Only the fields relevant to a given Kind are
// populated; the rest are left at their zero value. This mirrors the
// "tagged variant" shape the rest of the engine uses (spec.md §9) rather
// than one struct type per grammar production.
type Node struct {
	Kind Kind

	// Function: Name, Params, IsAsync, IsGenerator, Body (its Block).
	Name        string
	Params      []string
	IsAsync     bool
	IsGenerator bool

	// Generic single-child slots, meaning depends on Kind:
	//   Return/ExprStmt/Throw: Expr is the value expression.
	//   VarDecl: Name is the bound identifier, Expr is the initializer
	//     (nil for `let x;` with no initializer).
	//   Await/Yield: Expr is the operand.
	//   If: Test, Then, Else (Else may be nil).
	//   ForOf: Name is the loop variable, Expr is the iterable, Body the
	//     loop body, IsAsync marks for-await-of.
	//   While: Test, Body.
	//   Try: Body is the try block, CatchParam is the catch binding name
	//     (""  for a parameter-less catch), CatchBody is the catch block,
	//     Finally is the optional finally block.
	//   Call: Callee, Args.
	//   Arrow: Params, Body (an implicit-return expression body is
	//     represented as a single-statement Body of Kind Return).
	//   Binary: Op ("+","-","*","/","%","===","!==","<","<=",">",">=",
	//     "&&","||"), Left, Right.
	//   Assign: Name is the target identifier, Expr is the new value.
	//   Literal: Value holds a pre-evaluated value.Value (cps never
	//     parses literal syntax itself).
	//   Other: a unary operator (currently only logical-not) with the
	//     operator in Op ("!") and its operand in Expr, or any construct cps has
	//     no dedicated handling for and simply leaves untouched.
	Expr  *Node
	Test  *Node
	Then  *Node
	Else  *Node

	Callee *Node
	Args   []*Node
	IsNew  bool // Call represents `new Callee(Args)` rather than `Callee(Args)`

	Op          string
	Left, Right *Node

	CatchParam string
	CatchBody  *Node
	Finally    *Node

	Body  []*Node // Block/Function/ForOf/While/Try(as try-block) statement list
	Value interface{}
}

// Block builds a Kind=KindBlock node wrapping stmts.
func Block(stmts ...*Node) *Node { return &Node{Kind: KindBlock, Body: stmts} }

// Ident builds an identifier reference/binding-name node.
func Ident(name string) *Node { return &Node{Kind: KindIdent, Name: name} }

// ExprStmt wraps an expression as a statement.
func ExprStmt(e *Node) *Node { return &Node{Kind: KindExprStmt, Expr: e} }

// Return builds a return statement; value may be nil (bare `return;`).
func Return(value *Node) *Node { return &Node{Kind: KindReturn, Expr: value} }

// Call builds a call expression.
func Call(callee *Node, args ...*Node) *Node {
	return &Node{Kind: KindCall, Callee: callee, Args: args}
}

// Member builds `base.name`, represented as a KindIdent node whose Name
// is the accessed property and whose Expr holds the base expression —
// cps never needs a richer MemberExpression shape than "accessor name
// plus the object it's read off of." A plain Ident (built by Ident) is
// the same Kind with Expr left nil.
func Member(base *Node, name string) *Node {
	return &Node{Kind: KindIdent, Name: name, Expr: base}
}

// Arrow builds `(params) => { body }`.
func Arrow(params []string, body ...*Node) *Node {
	return &Node{Kind: KindArrow, Params: params, Body: body}
}

// Func builds a function declaration/expression node.
func Func(name string, isAsync bool, params []string, body ...*Node) *Node {
	return &Node{Kind: KindFunction, Name: name, IsAsync: isAsync, Params: params, Body: body}
}

// Binary builds a binary-operator expression.
func Binary(op string, left, right *Node) *Node {
	return &Node{Kind: KindBinary, Op: op, Left: left, Right: right}
}

// Not builds a logical-not unary expression.
func Not(e *Node) *Node { return &Node{Kind: KindOther, Op: "!", Expr: e} }

// Assign builds a simple identifier assignment `name = value`.
func Assign(name string, value *Node) *Node {
	return &Node{Kind: KindAssign, Name: name, Expr: value}
}
