// Package hir is the High-level Intermediate Representation: the per-file
// Bodies produced by lowering. Every source expression is
// lowered into exactly one arena-indexed Expr; locals are resolved
// lexically during lowering, globals are left as unresolved EGlobal
// references for the inference engine (package infer) to settle against a
// WorldIndex.
package hir

import "capy/internal/arena"

// ExprIdx, StmtIdx, LocalDefIdx, LambdaIdx, and ComptimeIdx are opaque
// per-file arena handles. They are stable for the life of the Bodies that
// produced them and are never reused across files.
type (
	ExprIdx     arena.Idx[Expr]
	StmtIdx     arena.Idx[Stmt]
	LocalDefIdx arena.Idx[LocalDef]
	LambdaIdx   arena.Idx[Lambda]
	ComptimeIdx arena.Idx[Comptime]
)

// IsValid reports whether idx was actually produced by an Alloc call.
func (idx ExprIdx) IsValid() bool { return arena.Idx[Expr](idx).IsValid() }

// IsValid reports whether idx was actually produced by an Alloc call.
func (idx StmtIdx) IsValid() bool { return arena.Idx[Stmt](idx).IsValid() }

// IsValid reports whether idx was actually produced by an Alloc call.
func (idx LocalDefIdx) IsValid() bool { return arena.Idx[LocalDef](idx).IsValid() }

// IsValid reports whether idx was actually produced by an Alloc call.
func (idx LambdaIdx) IsValid() bool { return arena.Idx[Lambda](idx).IsValid() }

// IsValid reports whether idx was actually produced by an Alloc call.
func (idx ComptimeIdx) IsValid() bool { return arena.Idx[Comptime](idx).IsValid() }

// ScopeID identifies a labelable block/loop so `break value` usages
// targeting it can be collected and reconciled during inference.
type ScopeID uint32

// NoScopeID marks an expression that cannot be the target of break/continue.
const NoScopeID ScopeID = 0
