// Package index builds the WorldIndex: the union of every file's top-level
// bindings, answering "does file F define name N, and where" without
// committing to any type information. The inference engine (package infer)
// consults a WorldIndex to turn an hir.EGlobal reference into a concrete
// Fqn before it ever asks what that Fqn's type is.
package index

import (
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/intern"
	"capy/internal/source"
	"capy/internal/types"
)

// DefinitionStatus reports what a WorldIndex lookup found.
type DefinitionStatus uint8

const (
	// UnknownFile means no Bodies were ever indexed for that FileName.
	UnknownFile DefinitionStatus = iota
	// UnknownDefinition means the file is known but has no binding by that name.
	UnknownDefinition
	// Defined means the file has exactly one binding by that name.
	Defined
)

// Definition is one indexed top-level binding.
type Definition struct {
	Fqn    types.Fqn
	Span   source.Span
	Extern bool
	// Value/TypeAnnotation point back into the owning Bodies so the
	// inference engine can look the expression up without a second pass.
	Value          hir.ExprIdx
	TypeAnnotation *hir.ExprIdx
	BindKind       hir.BindKindHIR
}

// WorldIndex is the set of every indexed file's top-level bindings.
type WorldIndex struct {
	files map[source.FileName]*hir.Bodies
	defs  map[types.Fqn]Definition
}

// New returns an empty WorldIndex.
func New() *WorldIndex {
	return &WorldIndex{
		files: make(map[source.FileName]*hir.Bodies),
		defs:  make(map[types.Fqn]Definition),
	}
}

// AddFile indexes one file's Bodies into the world, reporting
// AlreadyDefined for every binding whose name collides with one already
// indexed for the same file. The diagnostic is reported at the second
// occurrence; the first definition stays addressable.
func (w *WorldIndex) AddFile(b *hir.Bodies, diags *diag.Bag) {
	w.files[b.File] = b
	seen := make(map[source.Name]bool, len(b.Items))
	for _, item := range b.Items {
		fqn := types.Fqn{File: b.File, Name: item.Name}
		if seen[item.Name] {
			diags.Add(diag.New(diag.AlreadyDefined, item.Span, "name already defined in this file"))
			continue
		}
		seen[item.Name] = true
		w.defs[fqn] = Definition{
			Fqn: fqn, Span: item.Span, Extern: item.Extern,
			Value: item.Value, TypeAnnotation: item.TypeAnnotation, BindKind: item.BindKind,
		}
	}
}

// Status reports whether fqn resolves, and if so its Definition.
func (w *WorldIndex) Status(fqn types.Fqn) (Definition, DefinitionStatus) {
	if _, ok := w.files[fqn.File]; !ok {
		return Definition{}, UnknownFile
	}
	def, ok := w.defs[fqn]
	if !ok {
		return Definition{}, UnknownDefinition
	}
	return def, Defined
}

// Resolve finds which of the given candidate files define name, in file
// order: an unqualified global lookup searches the current file first, then
// its imports in declaration order. Returns (fqn, true) on the first hit.
func Resolve(files []source.FileName, name source.Name, w *WorldIndex) (types.Fqn, bool) {
	for _, f := range files {
		fqn := types.Fqn{File: f, Name: name}
		if _, status := w.Status(fqn); status == Defined {
			return fqn, true
		}
	}
	return types.Fqn{}, false
}

// Bodies returns the Bodies indexed for file, or nil if none were added.
func (w *WorldIndex) Bodies(file source.FileName) *hir.Bodies {
	return w.files[file]
}

// CheckImports reports ImportNotFound for every import("path") expression
// whose path does not name an indexed file. Run it once after the last
// AddFile call, when the world is complete — an import can legally point
// at a file indexed later than its own.
func (w *WorldIndex) CheckImports(files *intern.Interner, diags *diag.Bag) {
	for _, b := range w.files {
		b.Exprs.All(func(_ hir.ExprIdx, e hir.Expr) bool {
			if e.Kind != hir.EImport {
				return true
			}
			target := source.FileName(files.Intern(e.Path))
			if _, ok := w.files[target]; !ok {
				diags.Add(diag.New(diag.ImportNotFound, e.Span, "imported file is not part of this build"))
			}
			return true
		})
	}
}
