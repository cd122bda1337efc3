package infer

import (
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/index"
	"capy/internal/source"
	"capy/internal/types"
)

// InferGlobal resolves fqn's signature, memoizing the result and breaking
// self/mutual recursion by installing a function's signature (built from its
// declared parameter/result type syntax, never its body) before the body is
// inferred. A value global with no type annotation instead installs the
// NotYetResolved sentinel while its initializer is inferred, so a genuinely
// cyclic value definition is reported rather than looping forever.
func (eng *Engine) InferGlobal(fqn types.Fqn) types.TypeID {
	if sig, ok := eng.signatures[fqn]; ok {
		if sig.Ty == eng.Types.Builtins().NotYetResolved && eng.status[fqn] == inProgress {
			// The reference closed a cycle: we are back at a global whose
			// own initializer is still being inferred and whose signature is
			// only the cycle-breaker sentinel.
			eng.Diags.Add(diag.New(diag.NotYetResolved, eng.defSpan(fqn), "cyclic global definition"))
		}
		return sig.Ty
	}
	switch eng.status[fqn] {
	case inProgress:
		eng.Diags.Add(diag.New(diag.NotYetResolved, eng.defSpan(fqn), "cyclic global definition"))
		return eng.Types.Builtins().NotYetResolved
	case done:
		// Signature table miss with status done means the global failed to
		// resolve earlier; fall through and return Unknown without re-adding
		// a second diagnostic.
		return eng.Types.Builtins().Unknown
	}

	def, status := eng.World.Status(fqn)
	if status != index.Defined {
		return eng.Types.Builtins().Unknown
	}
	eng.status[fqn] = inProgress

	bodies := eng.World.Bodies(fqn.File)
	fr := &frame{file: fqn.File, bodies: bodies}

	var result types.TypeID
	if isLambda(bodies, def.Value) {
		result = eng.inferFunctionGlobal(fr, fqn, def)
	} else {
		result = eng.inferValueGlobal(fr, fqn, def)
	}

	eng.status[fqn] = done
	return result
}

func isLambda(bodies *hir.Bodies, idx hir.ExprIdx) bool {
	return bodies.Exprs.Get(idx).Kind == hir.ELambda
}

func (eng *Engine) inferFunctionGlobal(fr *frame, fqn types.Fqn, def index.Definition) types.TypeID {
	lamExpr := fr.bodies.Exprs.Get(def.Value)
	lam := fr.bodies.Lambdas.Get(lamExpr.LambdaValue)

	paramTys := make([]types.TypeID, len(lam.Params))
	for i, p := range lam.Params {
		paramTys[i] = eng.constTy(fr, p.Type)
	}
	resultTy := eng.constTy(fr, lam.Result)
	variadic := false
	for _, p := range lam.Params {
		if p.Variadic {
			variadic = true
		}
	}
	fnTy := eng.Types.InternFunction(paramTys, resultTy, variadic)

	// Install the signature before inferring the body so a self- or
	// mutually-recursive EGlobal reference resolves to fnTy instead of
	// re-entering InferGlobal.
	eng.signatures[fqn] = Signature{Ty: fnTy, Kind: SigFunction}
	eng.exprTys[exprKey{fr.file, def.Value}] = fnTy

	if !lam.Extern {
		inner := &frame{file: fr.file, bodies: fr.bodies, paramTypes: paramTys}
		bodyTy := eng.inferExpr(inner, lam.Body)
		if !eng.assignable(bodyTy, resultTy) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, lam.Span, "function body type does not match declared result type"))
		} else if bodyTy != resultTy {
			eng.replaceWeakTy(inner, lam.Body, resultTy)
		}
	}
	return fnTy
}

func (eng *Engine) inferValueGlobal(fr *frame, fqn types.Fqn, def index.Definition) types.TypeID {
	b := eng.Types.Builtins()

	if def.TypeAnnotation != nil {
		annTy := eng.constTy(fr, *def.TypeAnnotation)
		eng.signatures[fqn] = Signature{Ty: annTy, Kind: SigValue}
		if fr.bodies.Exprs.Get(def.Value).Kind == hir.EMissing {
			// `x : T;` — zero-initialized storage, so T must default.
			if !def.Extern && !eng.Types.HasDefault(annTy) {
				eng.Diags.Add(diag.New(diag.DeclTypeHasNoDefault, def.Span, "declared type has no default value"))
			}
			return annTy
		}
		valTy := eng.inferExpr(fr, def.Value)
		if !eng.assignable(valTy, annTy) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, def.Span, "value does not match declared global type"))
		} else if valTy != annTy {
			eng.replaceWeakTy(fr, def.Value, annTy)
		}
		return annTy
	}

	// No annotation: install the cycle-breaker sentinel while the
	// initializer is inferred so a genuinely self-referential value global
	// (illegal, since it has nothing to anchor a signature on) surfaces as
	// NotYetResolved instead of infinite recursion.
	eng.signatures[fqn] = Signature{Ty: b.NotYetResolved, Kind: SigValue}
	valTy := eng.inferExpr(fr, def.Value)
	if valTy == b.NotYetResolved {
		// The initializer bottomed out on the sentinel: the definition is
		// cyclic and no real type exists for it.
		valTy = b.Unknown
	}
	eng.signatures[fqn] = Signature{Ty: valTy, Kind: SigValue}
	eng.exprTys[exprKey{fr.file, def.Value}] = valTy
	return valTy
}

// defSpan returns fqn's declaration span for diagnostics, or the zero span
// when the definition is unknown.
func (eng *Engine) defSpan(fqn types.Fqn) source.Span {
	if def, status := eng.World.Status(fqn); status == index.Defined {
		return def.Span
	}
	return source.Span{}
}
