// Package intern canonicalizes strings into small integer keys with
// reverse lookup. It backs both identifier interning (Name) and file path
// interning (FileName) in package source; two call sites, one table type.
package intern

// ID is an interned string key. Equality is integer equality.
type ID uint32

// NoID marks the absence of an interned value.
const NoID ID = 0

// Interner canonicalizes strings to stable IDs, assigned in first-seen order.
// Two equal strings interned into the same Interner always share an ID.
type Interner struct {
	byID  []string
	index map[string]ID
}

// New returns an Interner with NoID reserved for the empty string.
func New() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]ID{"": NoID},
	}
}

// Intern returns s's ID, assigning a fresh one on first sight.
func (in *Interner) Intern(s string) ID {
	if id, ok := in.index[s]; ok {
		return id
	}
	id := ID(len(in.byID))
	// Copy so callers can reuse byte slices they built s from.
	cpy := string([]byte(s))
	in.byID = append(in.byID, cpy)
	in.index[cpy] = id
	return id
}

// Lookup returns the string behind id, or false if id is unknown.
func (in *Interner) Lookup(id ID) (string, bool) {
	if int(id) < 0 || int(id) >= len(in.byID) {
		return "", false
	}
	return in.byID[id], true
}

// MustLookup panics if id was never interned by in.
func (in *Interner) MustLookup(id ID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic("intern: invalid ID")
	}
	return s
}

// Len reports how many distinct strings (including the reserved empty one)
// have been interned.
func (in *Interner) Len() int {
	return len(in.byID)
}
