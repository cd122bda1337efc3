package codegen

import (
	"capy/internal/source"
	"capy/internal/types"
)

// Func is one compiled function body: its parameter/local storage and the
// basic blocks implementing it.
type Func struct {
	ID   FuncID
	Fqn  types.Fqn
	Name string
	Span source.Span

	Result types.TypeID

	// ParamCount is how many of Locals[0:ParamCount] are real parameters,
	// in declaration order; the sret destination, when present, is not
	// counted here (see ReturnsAggregate/SretParam).
	ParamCount int
	Locals     []Local
	Blocks     []Block
	Entry      BlockID

	// ReturnsAggregate marks a function whose result is lowered as a
	// trailing output pointer (SretParam) instead of a returned value,
	// because the result doesn't fit in a register-sized operand.
	ReturnsAggregate bool
	SretParam        LocalID
}

// Block looks up one of f's blocks by ID.
func (f *Func) Block(id BlockID) *Block {
	return &f.Blocks[id]
}

// NewLocal appends a Local to f and returns its ID.
func (f *Func) NewLocal(name string, ty types.TypeID, flags LocalFlags) LocalID {
	id := LocalID(len(f.Locals))
	f.Locals = append(f.Locals, Local{Name: name, Type: ty, Flags: flags})
	return id
}

// NewBlock appends an empty Block to f and returns its ID.
func (f *Func) NewBlock() BlockID {
	id := BlockID(len(f.Blocks))
	f.Blocks = append(f.Blocks, Block{ID: id, Term: Terminator{Kind: TermNone}})
	return id
}
