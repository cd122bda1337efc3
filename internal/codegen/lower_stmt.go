package codegen

import "capy/internal/hir"

// lowerStmt lowers one statement inside a block, for its side effects only.
func (l *funcLowerer) lowerStmt(idx hir.StmtIdx) error {
	s := l.bodies.Stmts.Get(idx)
	switch s.Kind {
	case hir.SLet:
		def := l.bodies.Locals.Get(s.Local)
		val, err := l.lowerValue(def.Value)
		if err != nil {
			return err
		}
		ty, _ := l.eng.LocalType(l.file, s.Local)
		id := l.localFor(s.Local)
		l.storeInto(Place{Kind: PlaceLocal, Local: id}, ty, val)
		return nil

	case hir.SExpr:
		_, err := l.lowerValue(s.Expr)
		return err

	case hir.SAssign:
		target, err := l.placeOf(s.Target)
		if err != nil {
			return err
		}
		ty := l.exprType(s.Target)
		val, err := l.lowerValue(s.Expr)
		if err != nil {
			return err
		}
		l.storeInto(target, ty, val)
		return nil

	default:
		return nil
	}
}
