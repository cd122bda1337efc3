package hir

import "capy/internal/source"

// StmtKind tags a statement inside a block.
type StmtKind uint8

const (
	SLet StmtKind = iota
	SExpr
	SAssign
)

// Stmt is one lowered statement inside a block.
type Stmt struct {
	Kind StmtKind
	Span source.Span

	// SLet.
	Local LocalDefIdx

	// SExpr, and the value half of SAssign. SLet's value lives on the
	// LocalDef it points at instead, since inference needs it keyed by
	// LocalDefIdx (for ELocalRef lookups) independent of the statement.
	Expr ExprIdx

	// SAssign.
	Target ExprIdx
}

// LocalDef is one `let`/`:=`-introduced local binding. Its declared type
// (if any) and inferred type live in the inference engine's per-body
// tables, not here — Bodies only records the binding site and whether it
// carries an explicit type annotation, so inference knows whether the
// local's type is pinned (strong) or must be derived from its value.
type LocalDef struct {
	Name           source.Name
	Span           source.Span
	BindKind       BindKindHIR
	TypeAnnotation *ExprIdx // nil if inferred
	Value          ExprIdx
	Mutable        bool
}

// BindKindHIR mirrors cst.BindKind; kept distinct so hir's lowering output
// does not alias a cst-package type a consumer might assume is unstable.
type BindKindHIR uint8

const (
	BindConst BindKindHIR = iota
	BindVarTyped
	BindVarInferred
)
