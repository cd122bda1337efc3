package codegen

import (
	"testing"

	"capy/internal/cst"
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/index"
	"capy/internal/infer"
	"capy/internal/intern"
	"capy/internal/source"
	"capy/internal/types"
)

func primType(names *intern.Interner, spelling string) *cst.Expr {
	return &cst.Expr{Kind: cst.EPrimitiveType, Name: names.Intern(spelling)}
}

// setupAddFunction builds `add :: fn(a: i32, b: i32) -> i32 { a + b }` and
// returns a Lowerer with nothing compiled yet.
func setupAddFunction(t *testing.T) (*Lowerer, types.Fqn) {
	t.Helper()
	names := intern.New()
	aName := names.Intern("a")
	bName := names.Intern("b")
	fnName := names.Intern("add")

	lambda := &cst.Expr{
		Kind: cst.EFnLit,
		Params: []*cst.FnParam{
			{Name: aName, Type: primType(names, "i32")},
			{Name: bName, Type: primType(names, "i32")},
		},
		Result: primType(names, "i32"),
		Body: &cst.Expr{
			Kind: cst.EBlock,
			Tail: &cst.Expr{
				Kind: cst.EBinary, Op: cst.OpAdd,
				A: &cst.Expr{Kind: cst.EIdent, Name: aName},
				B: &cst.Expr{Kind: cst.EIdent, Name: bName},
			},
		},
	}
	file := &cst.File{
		Name:  source.FileName(1),
		Items: []*cst.Item{{Name: fnName, BindKind: cst.BindConst, Value: lambda}},
	}

	diags := diag.NewBag()
	world := index.New()
	b := hir.Lower(file, diags)
	if diags.HasErrors() {
		t.Fatalf("lowering errors: %v", diags.Items())
	}
	world.AddFile(b, diags)

	tys := types.NewInterner()
	eng := infer.New(tys, names, world, diags)
	fqn := types.Fqn{File: file.Name, Name: fnName}
	eng.InferGlobal(fqn)
	if diags.HasErrors() {
		t.Fatalf("inference errors: %v", diags.Items())
	}

	return NewLowerer(world, eng, tys), fqn
}

func TestLowerGlobalFunctionProducesTwoParamsAndReturn(t *testing.T) {
	lw, fqn := setupAddFunction(t)
	f, err := lw.LowerGlobalFunction(fqn)
	if err != nil {
		t.Fatalf("LowerGlobalFunction: %v", err)
	}
	if f.ParamCount != 2 {
		t.Fatalf("got %d params, want 2", f.ParamCount)
	}
	if f.ReturnsAggregate {
		t.Fatalf("i32 result should not be aggregate")
	}
	entry := f.Block(f.Entry)
	if entry.Term.Kind != TermReturn {
		t.Fatalf("expected entry block to terminate in a return, got %v", entry.Term.Kind)
	}
	if !entry.Term.Return.HasValue {
		t.Fatalf("scalar return should carry a value")
	}

	foundBinary := false
	for _, instr := range entry.Instrs {
		if instr.Kind == InstrAssign && instr.Assign.Src.Kind == RValueBinaryOp {
			if instr.Assign.Src.Binary.Op != types.Add {
				t.Fatalf("got binary op %v, want Add", instr.Assign.Src.Binary.Op)
			}
			foundBinary = true
		}
	}
	if !foundBinary {
		t.Fatalf("expected a binary-add instruction lowering a + b")
	}
}

func TestLowerGlobalFunctionIsIdempotent(t *testing.T) {
	lw, fqn := setupAddFunction(t)
	f1, err := lw.LowerGlobalFunction(fqn)
	if err != nil {
		t.Fatalf("first lowering: %v", err)
	}
	f2, err := lw.LowerGlobalFunction(fqn)
	if err != nil {
		t.Fatalf("second lowering: %v", err)
	}
	if f1 != f2 {
		t.Fatalf("calling LowerGlobalFunction twice should return the same *Func")
	}
}

func TestLayoutEngineTreatsEnumAsAggregate(t *testing.T) {
	tys := types.NewInterner()
	i32 := tys.Int(types.Width32)
	enumTy := tys.NewEnum([]types.VariantSpec{{Name: source.Name(1), Payload: i32}})
	lay := NewLayoutEngine(tys)
	if !lay.IsAggregate(enumTy) {
		t.Fatalf("an enum with a payload should be treated as an aggregate")
	}
	structTy := tys.NewStruct(false, []types.StructField{{Name: source.Name(2), Type: i32}})
	if !lay.IsAggregate(structTy) {
		t.Fatalf("a struct should be treated as an aggregate")
	}
	if lay.IsAggregate(i32) {
		t.Fatalf("a plain i32 should not be treated as an aggregate")
	}
}

// setupWorld lowers and infers every item in file, returning a Lowerer
// ready to compile.
func setupWorld(t *testing.T, names *intern.Interner, file *cst.File) *Lowerer {
	t.Helper()
	diags := diag.NewBag()
	world := index.New()
	b := hir.Lower(file, diags)
	if diags.HasErrors() {
		t.Fatalf("lowering errors: %v", diags.Items())
	}
	world.AddFile(b, diags)

	tys := types.NewInterner()
	eng := infer.New(tys, names, world, diags)
	for _, item := range file.Items {
		eng.InferGlobal(types.Fqn{File: file.Name, Name: item.Name})
	}
	if diags.HasErrors() {
		t.Fatalf("inference errors: %v", diags.Items())
	}
	return NewLowerer(world, eng, tys)
}

// TestAggregateReturnUsesSretSlot covers §8 scenario 6: a function
// returning [3]i32 gets an sret parameter, and the call site reserves a
// 12-byte slot whose address feeds the call.
func TestAggregateReturnUsesSretSlot(t *testing.T) {
	names := intern.New()
	makeName := names.Intern("make3")
	callerName := names.Intern("caller")
	xName := names.Intern("x")

	arr3 := &cst.Expr{
		Kind: cst.EArrayType,
		A:    &cst.Expr{Kind: cst.EIntLit, IntVal: 3},
		B:    primType(names, "i32"),
	}
	makeFn := &cst.Expr{
		Kind:   cst.EFnLit,
		Result: arr3,
		Body: &cst.Expr{
			Kind: cst.EBlock,
			Tail: &cst.Expr{Kind: cst.EArrayLit, Args: []*cst.Expr{
				{Kind: cst.EIntLit, IntVal: 1}, {Kind: cst.EIntLit, IntVal: 2}, {Kind: cst.EIntLit, IntVal: 3},
			}},
		},
	}
	callerFn := &cst.Expr{
		Kind:   cst.EFnLit,
		Result: primType(names, "i32"),
		Body: &cst.Expr{
			Kind: cst.EBlock,
			Stmts: []*cst.Stmt{{
				Kind: cst.StmtLet, Name: xName, BindKind: cst.BindVarInferred,
				Value: &cst.Expr{Kind: cst.ECall, A: &cst.Expr{Kind: cst.EIdent, Name: makeName}},
			}},
			Tail: &cst.Expr{
				Kind: cst.EIndex,
				A:    &cst.Expr{Kind: cst.EIdent, Name: xName},
				B:    &cst.Expr{Kind: cst.EIntLit, IntVal: 0},
			},
		},
	}
	file := &cst.File{
		Name: source.FileName(1),
		Items: []*cst.Item{
			{Name: makeName, BindKind: cst.BindConst, Value: makeFn},
			{Name: callerName, BindKind: cst.BindConst, Value: callerFn},
		},
	}

	lw := setupWorld(t, names, file)
	caller, err := lw.LowerGlobalFunction(types.Fqn{File: file.Name, Name: callerName})
	if err != nil {
		t.Fatalf("LowerGlobalFunction(caller): %v", err)
	}
	callee, _ := lw.Mod.Lookup(types.Fqn{File: file.Name, Name: makeName})
	if callee == nil {
		t.Fatalf("calling make3 should have compiled it on demand")
	}
	if !callee.ReturnsAggregate || callee.SretParam == NoLocalID {
		t.Fatalf("an array-returning function must use the sret convention")
	}

	var call *CallInstr
	for _, blk := range caller.Blocks {
		for i := range blk.Instrs {
			if blk.Instrs[i].Kind == InstrCall {
				call = &blk.Instrs[i].Call
			}
		}
	}
	if call == nil {
		t.Fatalf("caller should contain a call instruction")
	}
	if !call.HasSret || call.HasDst {
		t.Fatalf("aggregate-returning call must pass an sret slot, not a scalar dst")
	}
	slotTy := caller.Locals[call.SretArg.Local].Type
	if got := lw.Lay.SizeOf(slotTy); got != 12 {
		t.Fatalf("sret slot is %d bytes, want 12 for [3]i32", got)
	}
}

// TestInfiniteLoopBreakValueFlowsThroughResultLocal: `loop { break 5 }` in
// a value position threads its break value into a shared result local read
// at the loop's exit block.
func TestInfiniteLoopBreakValueFlowsThroughResultLocal(t *testing.T) {
	names := intern.New()
	fName := names.Intern("f")
	loop := &cst.Expr{
		Kind: cst.ELoop,
		B: &cst.Expr{
			Kind: cst.EBlock,
			Stmts: []*cst.Stmt{{
				Kind: cst.StmtExpr,
				Expr: &cst.Expr{Kind: cst.EBreak, A: &cst.Expr{Kind: cst.EIntLit, IntVal: 5}},
			}},
		},
	}
	fn := &cst.Expr{
		Kind:   cst.EFnLit,
		Result: primType(names, "i32"),
		Body:   &cst.Expr{Kind: cst.EBlock, Tail: loop},
	}
	file := &cst.File{
		Name:  source.FileName(1),
		Items: []*cst.Item{{Name: fName, BindKind: cst.BindConst, Value: fn}},
	}

	lw := setupWorld(t, names, file)
	f, err := lw.LowerGlobalFunction(types.Fqn{File: file.Name, Name: fName})
	if err != nil {
		t.Fatalf("LowerGlobalFunction: %v", err)
	}

	// The break must store its value before jumping to the exit block, and
	// some block must end in a return carrying a value.
	storedConst := false
	returns := false
	for _, blk := range f.Blocks {
		for _, instr := range blk.Instrs {
			if instr.Kind == InstrAssign && instr.Assign.Src.Kind == RValueUse &&
				instr.Assign.Src.Use.Kind == OperandConst &&
				instr.Assign.Src.Use.Const.Kind == ConstInt &&
				instr.Assign.Src.Use.Const.IntValue == 5 {
				storedConst = true
			}
		}
		if blk.Term.Kind == TermReturn && blk.Term.Return.HasValue {
			returns = true
		}
	}
	if !storedConst {
		t.Fatalf("break value 5 should be stored into the loop's result local")
	}
	if !returns {
		t.Fatalf("function should return the loop's value")
	}
}
