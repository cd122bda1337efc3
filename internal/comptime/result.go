// Package comptime folds compile-time constant expressions — the bodies of
// `comptime { ... }` blocks, array sizes, and enum discriminants. Arithmetic
// is arbitrary-width via package bignum, so folding never silently loses
// precision before a width is actually chosen.
package comptime

import (
	"capy/internal/bignum"
	"capy/internal/types"
)

// ResultKind tags a folded constant's shape.
type ResultKind uint8

const (
	RVoid ResultKind = iota
	RInt             // arbitrary-width signed integer (unsigned values are never negative)
	RFloat
	RBool
	RType // a type value, e.g. `comptime { i32 }`
	RData // raw bytes: folded string/array/struct literals
)

// Result is one folded compile-time value.
type Result struct {
	Kind ResultKind

	Int   bignum.BigInt
	Float bignum.BigFloat
	Bool  bool
	Type  types.TypeID
	Data  []byte
}

func IntResult(v bignum.BigInt) Result   { return Result{Kind: RInt, Int: v} }
func FloatResult(v bignum.BigFloat) Result { return Result{Kind: RFloat, Float: v} }
func BoolResult(v bool) Result            { return Result{Kind: RBool, Bool: v} }
func TypeResult(t types.TypeID) Result    { return Result{Kind: RType, Type: t} }
func DataResult(b []byte) Result          { return Result{Kind: RData, Data: b} }
