package hir

import (
	"capy/internal/source"
)

// GlobalDef is one lowered top-level binding. Unlike a local, its type is
// resolved on demand by the inference engine rather than at lowering time.
type GlobalDef struct {
	Name           source.Name
	Span           source.Span
	NameSpan       source.Span
	BindKind       BindKindHIR
	TypeAnnotation *ExprIdx
	Value          ExprIdx
	Extern         bool
}

// Bodies holds every lowered expression, statement, local, lambda, and
// comptime block for one source file, plus the file's top-level bindings.
// Indices into the arenas are stable for the Bodies' lifetime and are
// paired with the owning FileName to form a globally unique reference
// (Fqn, FQLambda, FQComptime) elsewhere.
type Bodies struct {
	File source.FileName

	Exprs     ExprArena
	Stmts     StmtArena
	Locals    LocalDefArena
	Lambdas   LambdaArena
	Comptimes ComptimeArena

	Items []GlobalDef

	scopeCounter ScopeID
}

// NewBodies returns an empty Bodies for file, ready for lowering to
// populate.
func NewBodies(file source.FileName) *Bodies {
	return &Bodies{
		File:      file,
		Exprs:     newExprArena(0),
		Stmts:     newStmtArena(0),
		Locals:    newLocalDefArena(0),
		Lambdas:   newLambdaArena(0),
		Comptimes: newComptimeArena(0),
	}
}

// NewScope allocates the next ScopeID, used to tag a block/loop so that
// break/continue targeting it can be found during inference.
func (b *Bodies) NewScope() ScopeID {
	b.scopeCounter++
	return b.scopeCounter
}

// Global looks up a top-level binding by name, returning (def, true) if
// this file defines it.
func (b *Bodies) Global(name source.Name) (GlobalDef, bool) {
	for _, it := range b.Items {
		if it.Name == name {
			return it, true
		}
	}
	return GlobalDef{}, false
}
