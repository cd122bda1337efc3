package codegen

// FuncID identifies a compiled function.
type FuncID int32

// BlockID identifies a basic block within a Func.
type BlockID int32

// LocalID identifies a stack slot within a Func (parameters, lets, and
// compiler-introduced temporaries/aggregate slots all share this space).
type LocalID int32

// GlobalID identifies a global constant or string literal emitted once per
// module and referenced by Place everywhere it's used.
type GlobalID int32

const (
	NoFuncID   FuncID   = -1
	NoBlockID  BlockID  = -1
	NoLocalID  LocalID  = -1
	NoGlobalID GlobalID = -1
)
