// Package infer is the demand-driven, per-global type inference engine.
// A caller asks for one global's type; the engine infers
// only the expressions that global's body actually reaches, recursing into
// other globals on demand and memoizing every result so nothing is solved
// twice. Cycles are broken by installing a function's signature (or a
// value's declared annotation) before its body is inferred, so a
// self-recursive or mutually-recursive reference resolves against the
// signature rather than looping forever.
package infer

import (
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/index"
	"capy/internal/intern"
	"capy/internal/source"
	"capy/internal/types"
)

// SignatureKind distinguishes an ordinary value global from a function
// global, mirroring the Inferrable (Global | Lambda) split at the
// signature-table level.
type SignatureKind uint8

const (
	SigValue SignatureKind = iota
	SigFunction
)

// Signature is one global's resolved type.
type Signature struct {
	Ty   types.TypeID
	Kind SignatureKind
}

type exprKey struct {
	File source.FileName
	Expr hir.ExprIdx
}

type localKey struct {
	File  source.FileName
	Local hir.LocalDefIdx
}

type scopeKey struct {
	File  source.FileName
	Scope hir.ScopeID
}

type globalStatus uint8

const (
	notStarted globalStatus = iota
	inProgress
	done
)

// Engine holds every memo table inference accumulates across a project.
// One Engine serves an entire build; globals are resolved lazily as
// InferGlobal is called for each root (e.g. the entry-point function).
type Engine struct {
	Types *types.Interner
	Names *intern.Interner // resolves source.Name keyword spellings; nil disables primitive/builtin-member name resolution
	Files *intern.Interner // resolves import("path") path strings to source.FileName; nil disables import resolution (EImport stays Unknown)
	World *index.WorldIndex
	Diags *diag.Bag

	signatures  map[types.Fqn]Signature
	status      map[types.Fqn]globalStatus
	exprTys     map[exprKey]types.TypeID
	metaTys     map[exprKey]types.TypeID // what a type-expression denotes, kept apart from exprTys (every type-expression's exprTys entry is just Type)
	localTys    map[localKey]types.TypeID
	switchTys   map[localKey]types.TypeID // per-arm switch capture locals; also mirrored into localTys for ordinary ELocalRef lookup
	typeGlobals map[types.Fqn]types.TypeID

	// breakVals[s] is every `break value` expression targeting scope s,
	// collected while the enclosing body is walked and reconciled into the
	// block/loop's type once its own walk finishes.
	breakVals map[scopeKey][]hir.ExprIdx

	// localUsages[l] is the set of statements (within l's own file) that
	// reference local l, discovered as inference walks each statement.
	// Widening l's type later re-infers every statement in this set, so an
	// annotation or sibling operand discovered downstream still reaches
	// earlier uses of the same binding.
	localUsages map[localKey]map[hir.StmtIdx]bool
}

// New returns an Engine ready to infer globals out of world.
func New(tys *types.Interner, names *intern.Interner, world *index.WorldIndex, diags *diag.Bag) *Engine {
	return &Engine{
		Types: tys, Names: names, World: world, Diags: diags,
		signatures:  make(map[types.Fqn]Signature),
		status:      make(map[types.Fqn]globalStatus),
		exprTys:     make(map[exprKey]types.TypeID),
		metaTys:     make(map[exprKey]types.TypeID),
		localTys:    make(map[localKey]types.TypeID),
		switchTys:   make(map[localKey]types.TypeID),
		typeGlobals: make(map[types.Fqn]types.TypeID),
		breakVals:   make(map[scopeKey][]hir.ExprIdx),
		localUsages: make(map[localKey]map[hir.StmtIdx]bool),
	}
}

// frame is the lexical context inferExpr/constTy need beyond the engine's
// memo tables: which file and Bodies own the expression, the resolved
// parameter types EParamRef indexes into (inside a lambda body), and the
// statement presently being inferred, if any — curStmt is the zero
// (invalid) StmtIdx outside of a statement (e.g. while walking a block's
// tail expression), which recordLocalUsage treats as "nothing to record".
type frame struct {
	file       source.FileName
	bodies     *hir.Bodies
	paramTypes []types.TypeID
	curStmt    hir.StmtIdx
}

// withStmt returns a copy of fr with curStmt set to sidx, for inferring one
// statement's worth of expressions.
func (fr *frame) withStmt(sidx hir.StmtIdx) *frame {
	cp := *fr
	cp.curStmt = sidx
	return &cp
}

// ExprType returns the memoized type of expr within file, if inference has
// already reached it.
func (eng *Engine) ExprType(file source.FileName, expr hir.ExprIdx) (types.TypeID, bool) {
	ty, ok := eng.exprTys[exprKey{file, expr}]
	return ty, ok
}

// Signature returns the memoized signature of fqn, if InferGlobal has
// already resolved it.
func (eng *Engine) Signature(fqn types.Fqn) (Signature, bool) {
	sig, ok := eng.signatures[fqn]
	return sig, ok
}

// LocalType returns the memoized type of a local binding within file, if
// inference has already reached the enclosing body. Codegen calls this
// once InferGlobal has been run for every function it needs to lower, so
// it never has to re-derive a local's type from its initializer itself.
func (eng *Engine) LocalType(file source.FileName, local hir.LocalDefIdx) (types.TypeID, bool) {
	ty, ok := eng.localTys[localKey{file, local}]
	return ty, ok
}

// MetaType returns the memoized type that the type-expression at expr
// denotes, if constTy has already resolved it. This is a different question
// from ExprType: a type-expression's own type is always Type; MetaType is
// what it evaluates to.
func (eng *Engine) MetaType(file source.FileName, expr hir.ExprIdx) (types.TypeID, bool) {
	ty, ok := eng.metaTys[exprKey{file, expr}]
	return ty, ok
}

// SwitchLocalType returns the memoized type of a per-arm switch capture
// binding, if inference has reached the enclosing switch.
func (eng *Engine) SwitchLocalType(file source.FileName, local hir.LocalDefIdx) (types.TypeID, bool) {
	ty, ok := eng.switchTys[localKey{file, local}]
	return ty, ok
}

// BreakValues returns every `break value` expression inference collected
// for the given scope. Codegen consults this to decide whether a block
// needs the result-local-plus-join-block shape.
func (eng *Engine) BreakValues(file source.FileName, scope hir.ScopeID) []hir.ExprIdx {
	return eng.breakVals[scopeKey{file, scope}]
}

// assignable reports whether a value of type value can be used where
// target is expected: either they're identical, value is on the weak side
// of the replacement lattice (a weak numeric, an anonymous array, an empty
// anonymous struct) and target is a compatible strong type, or value is an
// error-recovery sentinel that an earlier diagnostic already covers.
func (eng *Engine) assignable(value, target types.TypeID) bool {
	if value == target {
		return true
	}
	b := eng.Types.Builtins()
	// A hole left by an earlier failure never cascades a second diagnostic.
	if value == b.Unknown || value == b.NotYetResolved || value == b.NoEval ||
		target == b.Unknown || target == b.NotYetResolved {
		return true
	}
	if m, ok := eng.Types.UnifyNumeric(value, target); ok && m == target {
		return true
	}
	tv, okv := eng.Types.Lookup(value)
	tt, okt := eng.Types.Lookup(target)
	if !okv || !okt {
		return false
	}
	// Anonymous array literals slot into same-size arrays and into slices.
	if tv.Kind == types.KindArray && tv.Anonymous {
		switch tt.Kind {
		case types.KindArray:
			return tt.ArraySize == tv.ArraySize && eng.elemAssignable(tv, tt)
		case types.KindSlice:
			return eng.elemAssignable(tv, tt)
		}
		return false
	}
	// An empty `{}` literal slots into any struct whose members all carry
	// defaults (an explicit initializer, or a defaultable type).
	if tv.Kind == types.KindStruct && tv.Anonymous && tt.Kind == types.KindStruct {
		vi, _ := eng.Types.StructInfo(value)
		if len(vi.Members) != 0 {
			return false
		}
		ti, _ := eng.Types.StructInfo(target)
		for _, m := range ti.Members {
			if !m.HasDefault && !eng.Types.HasDefault(m.Type) {
				return false
			}
		}
		return true
	}
	return false
}

// elemAssignable compares element types, treating the zero-length array's
// placeholder element (nothing to infer from) as compatible with anything.
func (eng *Engine) elemAssignable(value, target types.Type) bool {
	if value.ArraySize == 0 {
		return true
	}
	return value.Elem == target.Elem || eng.assignable(value.Elem, target.Elem)
}

// CheckEntry verifies the configured entry symbol's shape: a function of no
// parameters returning void or an integer. It returns false (with a
// diagnostic) for anything else, including a value global.
func (eng *Engine) CheckEntry(fqn types.Fqn) bool {
	ty := eng.InferGlobal(fqn)
	def, status := eng.World.Status(fqn)
	if status != index.Defined {
		eng.Diags.Add(diag.New(diag.UnknownFqn, source.Span{}, "entry point is not defined"))
		return false
	}
	sig, ok := eng.signatures[fqn]
	fi, isFn := eng.Types.FnInfo(ty)
	if !ok || sig.Kind != SigFunction || !isFn {
		eng.Diags.Add(diag.New(diag.TypeMismatch, def.Span, "entry point must be a function"))
		return false
	}
	if len(fi.Params) != 0 {
		eng.Diags.Add(diag.New(diag.TypeMismatch, def.Span, "entry point must take no parameters"))
		return false
	}
	rt, _ := eng.Types.Lookup(fi.Result)
	if rt.Kind != types.KindVoid && rt.Kind != types.KindIInt && rt.Kind != types.KindUInt {
		eng.Diags.Add(diag.New(diag.TypeMismatch, def.Span, "entry point must return void or an integer"))
		return false
	}
	return true
}
