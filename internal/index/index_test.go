package index

import (
	"testing"

	"capy/internal/cst"
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/intern"
	"capy/internal/source"
	"capy/internal/types"
)

func lowerFile(t *testing.T, file *cst.File) *hir.Bodies {
	t.Helper()
	diags := diag.NewBag()
	b := hir.Lower(file, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected lowering errors: %v", diags.Items())
	}
	return b
}

func TestAddFileReportsAlreadyDefined(t *testing.T) {
	name := source.Name(1)
	file := &cst.File{
		Name: source.FileName(1),
		Items: []*cst.Item{
			{Name: name, BindKind: cst.BindConst, Value: &cst.Expr{Kind: cst.EIntLit, IntVal: 1}},
			{Name: name, BindKind: cst.BindConst, Value: &cst.Expr{Kind: cst.EIntLit, IntVal: 2}},
		},
	}
	b := lowerFile(t, file)

	w := New()
	diags := diag.NewBag()
	w.AddFile(b, diags)

	if got := diags.ByKind(diag.AlreadyDefined); len(got) != 1 {
		t.Fatalf("expected 1 AlreadyDefined diagnostic, got %d", len(got))
	}
	fqn := types.Fqn{File: file.Name, Name: name}
	def, status := w.Status(fqn)
	if status != Defined {
		t.Fatalf("expected Defined, got %v", status)
	}
	e := b.Exprs.Get(def.Value)
	if e.Kind != hir.EIntLit || e.IntVal != 1 {
		t.Fatalf("expected the first definition to be kept live, got %+v", e)
	}
}

func TestStatusUnknownFileVsUnknownDefinition(t *testing.T) {
	w := New()
	file := &cst.File{Name: source.FileName(1), Items: []*cst.Item{
		{Name: source.Name(1), BindKind: cst.BindConst, Value: &cst.Expr{Kind: cst.EIntLit}},
	}}
	b := lowerFile(t, file)
	w.AddFile(b, diag.NewBag())

	if _, status := w.Status(types.Fqn{File: source.FileName(99), Name: source.Name(1)}); status != UnknownFile {
		t.Fatalf("expected UnknownFile, got %v", status)
	}
	if _, status := w.Status(types.Fqn{File: source.FileName(1), Name: source.Name(2)}); status != UnknownDefinition {
		t.Fatalf("expected UnknownDefinition, got %v", status)
	}
}

func TestResolveSearchesFilesInOrder(t *testing.T) {
	name := source.Name(5)
	f1 := &cst.File{Name: source.FileName(1), Items: []*cst.Item{
		{Name: source.Name(1), BindKind: cst.BindConst, Value: &cst.Expr{Kind: cst.EIntLit}},
	}}
	f2 := &cst.File{Name: source.FileName(2), Items: []*cst.Item{
		{Name: name, BindKind: cst.BindConst, Value: &cst.Expr{Kind: cst.EIntLit, IntVal: 7}},
	}}

	w := New()
	w.AddFile(lowerFile(t, f1), diag.NewBag())
	w.AddFile(lowerFile(t, f2), diag.NewBag())

	fqn, ok := Resolve([]source.FileName{f1.Name, f2.Name}, name, w)
	if !ok || fqn.File != f2.Name {
		t.Fatalf("expected to resolve %v in file 2, got %v ok=%v", name, fqn, ok)
	}
	if _, ok := Resolve([]source.FileName{f1.Name}, name, w); ok {
		t.Fatalf("expected no resolution when file 2 is not in the search list")
	}
}

func TestCheckImportsFlagsUnknownFile(t *testing.T) {
	files := intern.New()
	known := source.FileName(files.Intern("lib.capy"))
	main := source.FileName(files.Intern("main.capy"))

	file := &cst.File{
		Name: main,
		Items: []*cst.Item{
			{Name: source.Name(1), BindKind: cst.BindConst, Value: &cst.Expr{Kind: cst.EImport, Path: "lib.capy"}},
			{Name: source.Name(2), BindKind: cst.BindConst, Value: &cst.Expr{Kind: cst.EImport, Path: "gone.capy"}},
		},
	}
	lib := &cst.File{Name: known}

	diags := diag.NewBag()
	w := New()
	w.AddFile(hir.Lower(file, diags), diags)
	w.AddFile(hir.Lower(lib, diags), diags)
	w.CheckImports(files, diags)

	if got := diags.ByKind(diag.ImportNotFound); len(got) != 1 {
		t.Fatalf("expected exactly 1 ImportNotFound (gone.capy), got %d: %v", len(got), diags.Items())
	}
}
