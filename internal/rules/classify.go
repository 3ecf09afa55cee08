package rules

import (
	"unicode"
	"unicode/utf8"

	"github.com/roach88/deduce/internal/ir"
)

// Classifier assigns a category to a symbol.
//
// Classification is a heuristic used only to bias rule selection when
// several rules conclude the same symbol. It is not a type system and is
// never consulted for correctness.
type Classifier func(ir.Symbol) ir.Category

// Known symbols of the triangle-solving domain. Lookups win over the
// structural fallback, so R, P and S (circumradius, perimeter, area) are
// edge-like even though they are single uppercase letters.
var (
	edgeSymbols = map[ir.Symbol]struct{}{
		"a": {}, "b": {}, "c": {},
		"ma": {}, "mb": {}, "mc": {},
		"ha": {}, "hb": {}, "hc": {},
		"r": {}, "R": {}, "p": {}, "P": {}, "S": {},
	}
	angleSymbols = map[ir.Symbol]struct{}{
		"A": {}, "B": {}, "C": {},
	}
)

// Classify is the default Classifier: fixed lookup first, then a single
// uppercase letter is angle-like and anything else is edge-like.
func Classify(sym ir.Symbol) ir.Category {
	if _, ok := angleSymbols[sym]; ok {
		return ir.CategoryAngle
	}
	if _, ok := edgeSymbols[sym]; ok {
		return ir.CategoryEdge
	}
	r, size := utf8.DecodeRuneInString(string(sym))
	if size > 0 && size == len(sym) && unicode.IsUpper(r) {
		return ir.CategoryAngle
	}
	return ir.CategoryEdge
}

// LookupClassifier returns a Classifier that consults the given tables
// before falling back to Classify.
func LookupClassifier(edge, angle []ir.Symbol) Classifier {
	e := ir.NewSymbolSet(edge...)
	a := ir.NewSymbolSet(angle...)
	return func(sym ir.Symbol) ir.Category {
		switch {
		case a.Has(sym):
			return ir.CategoryAngle
		case e.Has(sym):
			return ir.CategoryEdge
		default:
			return Classify(sym)
		}
	}
}
