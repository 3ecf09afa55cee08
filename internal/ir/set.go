package ir

import "slices"

// SymbolSet is an unordered set of symbols.
// Engines own their sets exclusively for the duration of one run.
type SymbolSet map[Symbol]struct{}

// NewSymbolSet returns a set holding syms.
func NewSymbolSet(syms ...Symbol) SymbolSet {
	s := make(SymbolSet, len(syms))
	for _, sym := range syms {
		s[sym] = struct{}{}
	}
	return s
}

// Has reports whether sym is in the set.
func (s SymbolSet) Has(sym Symbol) bool {
	_, ok := s[sym]
	return ok
}

// Add inserts sym.
func (s SymbolSet) Add(sym Symbol) {
	s[sym] = struct{}{}
}

// Remove deletes sym.
func (s SymbolSet) Remove(sym Symbol) {
	delete(s, sym)
}

// Clone returns an independent copy.
func (s SymbolSet) Clone() SymbolSet {
	out := make(SymbolSet, len(s))
	for sym := range s {
		out[sym] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexicographic order.
func (s SymbolSet) Sorted() []Symbol {
	out := make([]Symbol, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	slices.Sort(out)
	return out
}

// ContainsAll reports whether every member of other is in s.
func (s SymbolSet) ContainsAll(other SymbolSet) bool {
	for sym := range other {
		if !s.Has(sym) {
			return false
		}
	}
	return true
}

// Missing returns the members of want absent from s, sorted.
func (s SymbolSet) Missing(want SymbolSet) []Symbol {
	var out []Symbol
	for sym := range want {
		if !s.Has(sym) {
			out = append(out, sym)
		}
	}
	slices.Sort(out)
	return out
}
