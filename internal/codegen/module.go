package codegen

import "capy/internal/types"

// GlobalKind distinguishes the shapes of module-level constant data a Func
// body can reference through a Place rooted at PlaceGlobal.
type GlobalKind uint8

const (
	GlobalString GlobalKind = iota
	GlobalBytes
)

// Global is one piece of constant data emitted once per Module and shared
// by every Place that references its GlobalID.
type Global struct {
	ID    GlobalID
	Kind  GlobalKind
	Type  types.TypeID
	Bytes []byte
}

// Module is the complete output of the codegen pass for a world of files:
// every compiled Func plus the constant data they reference.
type Module struct {
	Funcs     map[FuncID]*Func
	FuncByFqn map[types.Fqn]FuncID
	Globals   []Global

	nextFunc   FuncID
	nextGlobal GlobalID
}

// NewModule returns an empty Module ready to receive compiled functions.
func NewModule() *Module {
	return &Module{
		Funcs:     make(map[FuncID]*Func),
		FuncByFqn: make(map[types.Fqn]FuncID),
	}
}

// DeclareFunc reserves a FuncID for fqn before its body is lowered, so
// recursive and forward calls within the same module resolve to a stable
// ID regardless of compilation order.
func (m *Module) DeclareFunc(fqn types.Fqn, name string) *Func {
	if id, ok := m.FuncByFqn[fqn]; ok {
		return m.Funcs[id]
	}
	id := m.nextFunc
	m.nextFunc++
	f := &Func{ID: id, Fqn: fqn, Name: name, Entry: NoBlockID}
	m.Funcs[id] = f
	m.FuncByFqn[fqn] = id
	return f
}

// Lookup returns the Func already declared for fqn, if any.
func (m *Module) Lookup(fqn types.Fqn) (*Func, bool) {
	id, ok := m.FuncByFqn[fqn]
	if !ok {
		return nil, false
	}
	return m.Funcs[id], true
}

// AddGlobal appends a constant and returns its ID.
func (m *Module) AddGlobal(kind GlobalKind, ty types.TypeID, bytes []byte) GlobalID {
	id := m.nextGlobal
	m.nextGlobal++
	m.Globals = append(m.Globals, Global{ID: id, Kind: kind, Type: ty, Bytes: bytes})
	return id
}
