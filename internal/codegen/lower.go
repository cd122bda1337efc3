// Package codegen lowers inferred HIR function bodies into the backend IR
// defined by this package's other files: basic blocks, explicit
// terminators, and an aggregate calling convention (sret trailing pointer
// for aggregate returns, callee-owned copies for aggregate params).
// Lowering a global function only requires that InferGlobal has already run
// for it and for everything it calls — codegen never infers a type itself,
// it only reads the Engine's memo tables.
package codegen

import (
	"fmt"

	"capy/internal/hir"
	"capy/internal/index"
	"capy/internal/infer"
	"capy/internal/source"
	"capy/internal/types"
)

// Lowerer drives compilation of an entire world into one Module. Lambda
// literals nested inside a function body (assigned to a local, passed as a
// value) are not compiled inline: the first value-mode reference to one
// declares its Func and enqueues the body for lowering, so the same literal
// is never lowered twice even if referenced from two places (the
// LambdaToCompile work queue).
type Lowerer struct {
	World *index.WorldIndex
	Eng   *infer.Engine
	Types *types.Interner
	Lay   *LayoutEngine
	Mod   *Module

	globalByFqn map[types.Fqn]GlobalID
	stringIDs   map[string]GlobalID
	queue       []queuedLambda
	queuedSet   map[lambdaKey]FuncID
	compiled    map[types.Fqn]bool
}

type lambdaKey struct {
	file   source.FileName
	lambda hir.LambdaIdx
}

// queuedLambda is one nested lambda literal waiting to be lowered into its
// already-declared Func.
type queuedLambda struct {
	id     FuncID
	file   source.FileName
	bodies *hir.Bodies
	lam    *hir.Lambda
}

// NewLowerer returns a Lowerer ready to compile globals out of world, given
// an Engine that has already resolved every signature codegen will need.
func NewLowerer(world *index.WorldIndex, eng *infer.Engine, tys *types.Interner) *Lowerer {
	return &Lowerer{
		World:       world,
		Eng:         eng,
		Types:       tys,
		Lay:         NewLayoutEngine(tys),
		Mod:         NewModule(),
		globalByFqn: make(map[types.Fqn]GlobalID),
		stringIDs:   make(map[string]GlobalID),
		queuedSet:   make(map[lambdaKey]FuncID),
		compiled:    make(map[types.Fqn]bool),
	}
}

// LowerGlobalFunction compiles fqn (which must name a function global whose
// signature InferGlobal has already resolved) and drains the nested-lambda
// queue until every reachable lambda literal has a compiled Func. Calling it
// twice for the same fqn is a no-op the second time, so a caller building a
// whole program can freely call it for every function global without
// tracking which ones a call or value reference already pulled in.
func (lw *Lowerer) LowerGlobalFunction(fqn types.Fqn) (*Func, error) {
	if lw.compiled[fqn] {
		f, _ := lw.Mod.Lookup(fqn)
		return f, nil
	}
	sig, ok := lw.Eng.Signature(fqn)
	if !ok || sig.Kind != infer.SigFunction {
		return nil, fmt.Errorf("codegen: %v has no resolved function signature", fqn)
	}
	def, status := lw.World.Status(fqn)
	if status != index.Defined {
		return nil, fmt.Errorf("codegen: %v is not defined", fqn)
	}
	bodies := lw.World.Bodies(fqn.File)
	lamExpr := bodies.Exprs.Get(def.Value)
	lam := bodies.Lambdas.Get(lamExpr.LambdaValue)

	f := lw.Mod.DeclareFunc(fqn, lw.spelling(fqn.Name))
	lw.compiled[fqn] = true
	if err := lw.lowerFuncBody(f, fqn.File, bodies, lam, sig.Ty); err != nil {
		return nil, err
	}
	if err := lw.drainQueue(); err != nil {
		return nil, err
	}
	return f, nil
}

// LowerProgram compiles every function-typed global fqns names, reusing
// whatever the entry point's own compilation already pulled in. Pass it the
// Fqns a driver collected from a project's WorldIndex (a full
// ProjectInference sweep) to get a Module covering the whole program
// rather than just one reachable subgraph.
func (lw *Lowerer) LowerProgram(fqns []types.Fqn) error {
	for _, fqn := range fqns {
		sig, ok := lw.Eng.Signature(fqn)
		if !ok || sig.Kind != infer.SigFunction {
			continue
		}
		if _, err := lw.LowerGlobalFunction(fqn); err != nil {
			return err
		}
	}
	return nil
}

func (lw *Lowerer) drainQueue() error {
	for len(lw.queue) > 0 {
		item := lw.queue[0]
		lw.queue = lw.queue[1:]
		fnTy := lw.lambdaType(item.bodies, item.lam)
		f := lw.Mod.Funcs[item.id]
		if err := lw.lowerFuncBody(f, item.file, item.bodies, item.lam, fnTy); err != nil {
			return err
		}
	}
	return nil
}

func (lw *Lowerer) lambdaType(bodies *hir.Bodies, lam *hir.Lambda) types.TypeID {
	params := make([]types.TypeID, len(lam.Params))
	variadic := false
	for i, p := range lam.Params {
		// Parameter/result annotations are type expressions: their denoted
		// type lives in the engine's meta-type table, not exprTys.
		ty, _ := lw.Eng.MetaType(bodies.File, p.Type)
		params[i] = ty
		if p.Variadic {
			variadic = true
		}
	}
	result, _ := lw.Eng.MetaType(bodies.File, lam.Result)
	return lw.Types.InternFunction(params, result, variadic)
}

// declareLambda returns the FuncID for the lambda literal at (file, idx),
// declaring and queuing it for lowering on first sight.
func (lw *Lowerer) declareLambda(file source.FileName, idx hir.LambdaIdx) FuncID {
	key := lambdaKey{file: file, lambda: idx}
	if id, ok := lw.queuedSet[key]; ok {
		return id
	}
	bodies := lw.World.Bodies(file)
	lam := bodies.Lambdas.Get(idx)
	name := fmt.Sprintf("$lambda%d", len(lw.queuedSet))
	id := lw.Mod.nextFunc
	lw.Mod.nextFunc++
	f := &Func{ID: id, Name: name, Entry: NoBlockID}
	lw.Mod.Funcs[id] = f
	lw.queuedSet[key] = id
	lw.queue = append(lw.queue, queuedLambda{id: id, file: file, bodies: bodies, lam: lam})
	return id
}

func (lw *Lowerer) spelling(name source.Name) string {
	if lw.Eng.Names == nil {
		return ""
	}
	s, _ := lw.Eng.Names.Lookup(name)
	return s
}

// stringGlobal interns one string literal into the module's data section,
// so every use of the same literal shares a single emission and is
// referenced by address.
func (lw *Lowerer) stringGlobal(s string, ty types.TypeID) GlobalID {
	if id, ok := lw.stringIDs[s]; ok {
		return id
	}
	id := lw.Mod.AddGlobal(GlobalString, ty, []byte(s))
	lw.stringIDs[s] = id
	return id
}

// globalSlot lazily reserves module storage for a runtime (non-foldable)
// value global, zero-initialized to its layout size. This only fires for a
// `:=` global whose initializer does not comptime-fold — the common case of
// a `::` constant or a foldable `:=` is handled entirely by Const operands
// in lower_expr.go, never touching the Module's Globals table.
func (lw *Lowerer) globalSlot(fqn types.Fqn, ty types.TypeID) GlobalID {
	if id, ok := lw.globalByFqn[fqn]; ok {
		return id
	}
	size := lw.Lay.SizeOf(ty)
	id := lw.Mod.AddGlobal(GlobalBytes, ty, make([]byte, size))
	lw.globalByFqn[fqn] = id
	return id
}
