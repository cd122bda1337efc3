package infer

import (
	"capy/internal/hir"
)

// isSafeToCompile reports whether an expression may be handed to the
// comptime evaluator: it must contain no missing subtrees, no
// subexpression already typed Unknown by an earlier failure, and no
// break/continue that escapes the checked expression. The walk is
// iterative — a worklist, not recursion — so a pathologically deep
// constant expression can't overflow the compiler's own stack.
//
// A lambda that only appears in type position (a bare signature) is safe;
// a lambda used as a value is only safe if its body is, so the body joins
// the worklist.
func (eng *Engine) isSafeToCompile(fr *frame, root hir.ExprIdx) bool {
	w := &safetyWalk{
		eng:    eng,
		fr:     fr,
		scopes: make(map[hir.ScopeID]bool),
		seen:   make(map[hir.ExprIdx]bool),
	}
	w.pushExpr(root)
	for len(w.work) > 0 {
		idx := w.work[len(w.work)-1]
		w.work = w.work[:len(w.work)-1]
		if !w.check(idx) {
			return false
		}
	}
	return true
}

type safetyWalk struct {
	eng    *Engine
	fr     *frame
	work   []hir.ExprIdx
	scopes map[hir.ScopeID]bool // scopes declared inside the checked expression
	seen   map[hir.ExprIdx]bool
}

func (w *safetyWalk) pushExpr(idx hir.ExprIdx) {
	if idx.IsValid() && !w.seen[idx] {
		w.seen[idx] = true
		w.work = append(w.work, idx)
	}
}

func (w *safetyWalk) pushOpt(idx *hir.ExprIdx) {
	if idx != nil {
		w.pushExpr(*idx)
	}
}

// check inspects one node and queues its evaluatable children. Scopes are
// recorded before children are pushed, so a break inside a loop always
// finds its target already known — only a jump out of the checked
// expression entirely comes up missing.
func (w *safetyWalk) check(idx hir.ExprIdx) bool {
	e := w.fr.bodies.Exprs.Get(idx)

	switch e.Kind {
	case hir.EMissing:
		return false
	case hir.EBreak, hir.EContinue:
		if !w.scopes[e.Scope] {
			return false
		}
	}
	if ty, ok := w.eng.exprTys[exprKey{w.fr.file, idx}]; ok && ty == w.eng.Types.Builtins().Unknown {
		return false
	}

	switch e.Kind {
	case hir.EBlock, hir.EWhile:
		w.scopes[e.Block.Scope] = true
		w.pushBlock(e.Block)
		w.pushOpt(e.A)

	case hir.ELambda:
		// Used as a value here, so its body must fold too.
		lam := w.fr.bodies.Lambdas.Get(e.LambdaValue)
		if !lam.Extern {
			w.pushExpr(lam.Body)
		}

	case hir.EComptime:
		inner := w.fr.bodies.Comptimes.Get(e.Comptime)
		w.pushExpr(inner.Body)

	case hir.EPrimitiveType, hir.EPointerType, hir.EArrayType, hir.ESliceType,
		hir.ERawPtrType, hir.ERawSliceType, hir.EDistinctType, hir.EStructType,
		hir.EEnumType, hir.EFnType, hir.EAnyType, hir.EVoidType, hir.ETypeType:
		// Type syntax never evaluates; signatures are always safe.

	default:
		w.pushOpt(e.A)
		w.pushOpt(e.B)
		w.pushOpt(e.Then)
		w.pushOpt(e.Else)
		w.pushOpt(e.Scrut)
		w.pushOpt(e.Default)
		for _, a := range e.Args {
			w.pushExpr(a)
		}
		for _, arm := range e.Arms {
			w.pushExpr(arm.Body)
		}
		w.pushBlock(e.Block)
	}
	return true
}

func (w *safetyWalk) pushBlock(blk hir.BlockData) {
	for _, sidx := range blk.Stmts {
		s := w.fr.bodies.Stmts.Get(sidx)
		switch s.Kind {
		case hir.SLet:
			w.pushExpr(w.fr.bodies.Locals.Get(s.Local).Value)
		case hir.SExpr:
			w.pushExpr(s.Expr)
		case hir.SAssign:
			w.pushExpr(s.Target)
			w.pushExpr(s.Expr)
		}
	}
	if blk.Tail != nil {
		w.pushExpr(*blk.Tail)
	}
}
