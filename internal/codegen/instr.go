package codegen

import "capy/internal/types"

// OperandKind distinguishes how an Operand's value is produced.
type OperandKind uint8

const (
	OperandConst OperandKind = iota
	OperandCopy            // read Place's current value (Place's type is Copy-sized and small)
	OperandMove            // read Place's current value and mark it logically consumed
	OperandAddrOf          // the address of Place, as an immutable pointer
	OperandAddrOfMut       // the address of Place, as a mutable pointer
)

// Operand is a value consumed by an instruction or terminator.
type Operand struct {
	Kind  OperandKind
	Type  TypeID
	Const Const
	Place Place
}

// ConstKind distinguishes literal constant shapes.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstUint
	ConstFloat
	ConstBool
	ConstString
	ConstVoid
	ConstFunc // a direct reference to a compiled function, for function-valued operands
)

// Const is a literal operand.
type Const struct {
	Kind ConstKind
	Type TypeID

	IntValue    int64
	UintValue   uint64
	FloatValue  float64
	BoolValue   bool
	StringValue string
	Func        FuncID
}

// InstrKind enumerates the instruction shapes this backend lowers to —
// trimmed to capy's operation set (no async/channel/select: capy has no
// concurrency model).
type InstrKind uint8

const (
	InstrAssign InstrKind = iota
	InstrCall
	InstrStackAlloc // reserves a Local's storage; emitted once per aggregate-typed local on entry to its scope
	InstrMemcpy     // copies Size bytes from Src to Dst, for aggregate assignment/return/param-copy
	InstrNop
)

// Instr is one instruction within a Block.
type Instr struct {
	Kind InstrKind

	Assign    AssignInstr
	Call      CallInstr
	StackSlot StackAllocInstr
	Memcpy    MemcpyInstr
}

// AssignInstr stores an RValue's result into Dst. Used for every
// scalar-valued computation (binary/unary ops, casts, loads, address
// arithmetic results).
type AssignInstr struct {
	Dst Place
	Src RValue
}

// CalleeKind distinguishes a direct call to a known function symbol from an
// indirect call through a function-typed value.
type CalleeKind uint8

const (
	CalleeDirect CalleeKind = iota
	CalleeIndirect
)

// Callee is a call's target.
type Callee struct {
	Kind  CalleeKind
	Func  FuncID  // CalleeDirect
	Value Operand // CalleeIndirect
}

// CallInstr is a function call. When the callee's result type is an
// aggregate, SretArg names the stack slot the callee writes its result into
// directly (the "callee address is an extra trailing parameter" convention)
// and HasDst is false — the result lives at SretArg, not in a returned
// value.
type CallInstr struct {
	HasDst   bool
	Dst      Place
	Callee   Callee
	Args     []Operand
	HasSret  bool
	SretArg  Place
}

// StackAllocInstr reserves storage for an aggregate-typed Local. Scalars
// never need this — they're allocated implicitly by Func.Locals.
type StackAllocInstr struct {
	Local LocalID
}

// MemcpyInstr copies an aggregate value, used for `let`/assignment/argument
// passing/return of struct and array types rather than the single-word
// AssignInstr scalars use.
type MemcpyInstr struct {
	Dst  Place
	Src  Place
	Size uint32
}

// RValueKind distinguishes the right-hand sides an AssignInstr can compute.
type RValueKind uint8

const (
	RValueUse RValueKind = iota
	RValueUnaryOp
	RValueBinaryOp
	RValueCast
	RValueFieldAddr
	RValueIndexAddr
	RValueTagTest    // enum discriminant == N, produces a Bool
	RValueTagPayload // projects a variant's payload after a successful TagTest
)

// RValue is the right-hand side of an AssignInstr.
type RValue struct {
	Kind RValueKind

	Use        Operand
	Unary      UnaryOp
	Binary     BinaryOp
	Cast       CastOp
	FieldAddr  FieldAddr
	IndexAddr  IndexAddr
	TagTest    TagTest
	TagPayload TagPayload
}

// UnOp mirrors hir.UnOp without importing package hir, so codegen's
// instruction set doesn't carry a front-end dependency.
type UnOp uint8

const (
	OpNeg UnOp = iota
	OpPos
	OpNot
)

// BinOp mirrors types.BinOp, carried through from the inference engine's
// operator table.
type BinOp = types.BinOp

// UnaryOp applies Op to Operand.
type UnaryOp struct {
	Op      UnOp
	Operand Operand
}

// BinaryOp applies Op to Left/Right, already widened to the same type by
// inference's UnifyNumeric.
type BinaryOp struct {
	Op    BinOp
	Left  Operand
	Right Operand
}

// CastOp reinterprets Value as TargetTy.
type CastOp struct {
	Value    Operand
	TargetTy TypeID
}

// FieldAddr computes the address of one struct field of Object.
type FieldAddr struct {
	Object   Operand
	FieldIdx int
}

// IndexAddr computes the address of one array/slice element of Object.
type IndexAddr struct {
	Object Operand
	Index  Operand
}

// TagTest compares Value's enum discriminant against Variant's.
type TagTest struct {
	Value   Operand
	Variant TypeID
}

// TagPayload projects Value's payload for Variant, valid only once a
// TagTest for Variant has succeeded.
type TagPayload struct {
	Value   Operand
	Variant TypeID
}
