package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolSet(t *testing.T) {
	s := NewSymbolSet("b", "a")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))

	s.Add("c")
	s.Remove("b")
	assert.Equal(t, []Symbol{"a", "c"}, s.Sorted())
}

func TestSymbolSetCloneIsIndependent(t *testing.T) {
	s := NewSymbolSet("a")
	c := s.Clone()
	c.Add("b")
	assert.False(t, s.Has("b"))
	assert.True(t, c.Has("b"))
}

func TestSymbolSetContainsAllAndMissing(t *testing.T) {
	have := NewSymbolSet("a", "b", "C")

	assert.True(t, have.ContainsAll(NewSymbolSet("a", "C")))
	assert.True(t, have.ContainsAll(NewSymbolSet()))
	assert.False(t, have.ContainsAll(NewSymbolSet("a", "z")))

	assert.Equal(t, []Symbol{"A", "z"}, have.Missing(NewSymbolSet("z", "a", "A")))
	assert.Empty(t, have.Missing(NewSymbolSet("a")))
}
