package hir

import "capy/internal/arena"

// The wrappers below adapt arena.Arena[T]'s generic Idx[T] handles to the
// hir package's own opaque index types (ExprIdx, StmtIdx, ...). A direct
// type alias (ExprIdx = arena.Idx[Expr]) can't be used here because Expr
// holds ExprIdx fields, and Go rejects a type alias that is recursive
// through a generic instantiation (see go.dev/issue/50729); so ExprIdx
// and friends are defined types instead, and these wrappers do the
// (zero-cost) conversion at the arena boundary.

// ExprArena is an arena.Arena[Expr] addressed by ExprIdx.
type ExprArena struct{ a *arena.Arena[Expr] }

func newExprArena(capHint int) ExprArena { return ExprArena{arena.New[Expr](capHint)} }

func (e ExprArena) Alloc(value Expr) ExprIdx   { return ExprIdx(e.a.Alloc(value)) }
func (e ExprArena) Get(idx ExprIdx) *Expr      { return e.a.Get(arena.Idx[Expr](idx)) }
func (e ExprArena) Set(idx ExprIdx, value Expr) { e.a.Set(arena.Idx[Expr](idx), value) }
func (e ExprArena) Len() int                   { return e.a.Len() }
func (e ExprArena) All(yield func(ExprIdx, Expr) bool) {
	e.a.All(func(i arena.Idx[Expr], v Expr) bool { return yield(ExprIdx(i), v) })
}

// StmtArena is an arena.Arena[Stmt] addressed by StmtIdx.
type StmtArena struct{ a *arena.Arena[Stmt] }

func newStmtArena(capHint int) StmtArena { return StmtArena{arena.New[Stmt](capHint)} }

func (s StmtArena) Alloc(value Stmt) StmtIdx   { return StmtIdx(s.a.Alloc(value)) }
func (s StmtArena) Get(idx StmtIdx) *Stmt      { return s.a.Get(arena.Idx[Stmt](idx)) }
func (s StmtArena) Set(idx StmtIdx, value Stmt) { s.a.Set(arena.Idx[Stmt](idx), value) }
func (s StmtArena) Len() int                   { return s.a.Len() }
func (s StmtArena) All(yield func(StmtIdx, Stmt) bool) {
	s.a.All(func(i arena.Idx[Stmt], v Stmt) bool { return yield(StmtIdx(i), v) })
}

// LocalDefArena is an arena.Arena[LocalDef] addressed by LocalDefIdx.
type LocalDefArena struct{ a *arena.Arena[LocalDef] }

func newLocalDefArena(capHint int) LocalDefArena { return LocalDefArena{arena.New[LocalDef](capHint)} }

func (l LocalDefArena) Alloc(value LocalDef) LocalDefIdx   { return LocalDefIdx(l.a.Alloc(value)) }
func (l LocalDefArena) Get(idx LocalDefIdx) *LocalDef      { return l.a.Get(arena.Idx[LocalDef](idx)) }
func (l LocalDefArena) Set(idx LocalDefIdx, value LocalDef) { l.a.Set(arena.Idx[LocalDef](idx), value) }
func (l LocalDefArena) Len() int                            { return l.a.Len() }
func (l LocalDefArena) All(yield func(LocalDefIdx, LocalDef) bool) {
	l.a.All(func(i arena.Idx[LocalDef], v LocalDef) bool { return yield(LocalDefIdx(i), v) })
}

// LambdaArena is an arena.Arena[Lambda] addressed by LambdaIdx.
type LambdaArena struct{ a *arena.Arena[Lambda] }

func newLambdaArena(capHint int) LambdaArena { return LambdaArena{arena.New[Lambda](capHint)} }

func (l LambdaArena) Alloc(value Lambda) LambdaIdx   { return LambdaIdx(l.a.Alloc(value)) }
func (l LambdaArena) Get(idx LambdaIdx) *Lambda      { return l.a.Get(arena.Idx[Lambda](idx)) }
func (l LambdaArena) Set(idx LambdaIdx, value Lambda) { l.a.Set(arena.Idx[Lambda](idx), value) }
func (l LambdaArena) Len() int                       { return l.a.Len() }
func (l LambdaArena) All(yield func(LambdaIdx, Lambda) bool) {
	l.a.All(func(i arena.Idx[Lambda], v Lambda) bool { return yield(LambdaIdx(i), v) })
}

// ComptimeArena is an arena.Arena[Comptime] addressed by ComptimeIdx.
type ComptimeArena struct{ a *arena.Arena[Comptime] }

func newComptimeArena(capHint int) ComptimeArena { return ComptimeArena{arena.New[Comptime](capHint)} }

func (c ComptimeArena) Alloc(value Comptime) ComptimeIdx   { return ComptimeIdx(c.a.Alloc(value)) }
func (c ComptimeArena) Get(idx ComptimeIdx) *Comptime      { return c.a.Get(arena.Idx[Comptime](idx)) }
func (c ComptimeArena) Set(idx ComptimeIdx, value Comptime) { c.a.Set(arena.Idx[Comptime](idx), value) }
func (c ComptimeArena) Len() int                            { return c.a.Len() }
func (c ComptimeArena) All(yield func(ComptimeIdx, Comptime) bool) {
	c.a.All(func(i arena.Idx[Comptime], v Comptime) bool { return yield(ComptimeIdx(i), v) })
}
