// Package source defines the identity and range types shared across the
// pipeline: interned file names and byte-offset spans. File loading itself
// (reading from disk, REPL buffers, file watching) is out of scope here —
// callers hand in a FileName and a byte range; where the bytes came from is
// not this package's concern.
package source

import "capy/internal/intern"

// Name is an interned identifier key. Equality is integer equality.
type Name = intern.ID

// NoName marks the absence of an identifier.
const NoName = intern.NoID

// FileName is an interned canonical path key. Two files with the same
// canonical path share the key.
type FileName = intern.ID

// NoFileName marks the absence of a file.
const NoFileName = intern.NoID

// Span is a contiguous byte range within one file.
type Span struct {
	File  FileName
	Start uint32 // inclusive
	End   uint32 // exclusive
}

// NoSpan is the zero span: no file, zero-length.
var NoSpan = Span{}

// Empty reports whether the span has zero length.
func (s Span) Empty() bool { return s.Start == s.End }

// Len returns the span's length in bytes.
func (s Span) Len() uint32 { return s.End - s.Start }

// Cover returns the smallest span covering both s and other. If the spans
// belong to different files, s is returned unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
