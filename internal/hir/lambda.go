package hir

import "capy/internal/source"

// LambdaParam is one parameter of a lowered function literal.
type LambdaParam struct {
	Name     source.Name
	Type     ExprIdx
	Variadic bool
}

// Lambda is a lowered function literal: either a top-level item's value, a
// nested closure-free function expression, or an extern declaration (Body
// is EMissing when Extern is true: extern bodies lower to Expr::Missing,
// not Void).
type Lambda struct {
	Span     source.Span
	Params   []LambdaParam
	Result   ExprIdx
	Extern   bool
	Body     ExprIdx
	ScopeLen int // number of LocalDefs reachable from Body, for frame sizing in codegen
}

// Comptime is one `comptime { ... }` block, evaluated once by the const
// evaluator (package comptime) and cached against its FQComptime key.
type Comptime struct {
	Span source.Span
	Body ExprIdx
}
