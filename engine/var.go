package engine

import (
	"fmt"
	"sync/atomic"
)

var varSeq atomic.Uint64

// Var is a named mutable cell read and written by match-time nodes.
//
// A Var is not owned by any pattern: patterns hold a reference to it and
// read or store its value when the corresponding node is reached. Vars are
// not safe for concurrent use by multiple matches.
type Var struct {
	name  string
	value any
}

// NewVar creates a variable. An empty name is replaced by "var1", "var2", ...
func NewVar(name string) *Var {
	if name == "" {
		name = fmt.Sprintf("var%d", varSeq.Add(1))
	}
	return &Var{name: name}
}

// NewVarValue creates a variable holding an initial value.
func NewVarValue(name string, value any) *Var {
	v := NewVar(name)
	v.value = value
	return v
}

// Name returns the variable name
func (v *Var) Name() string {
	return v.name
}

// Get returns the current value (nil if never set)
func (v *Var) Get() any {
	return v.value
}

// Set stores a new value
func (v *Var) Set(value any) {
	v.value = value
}

// String returns the variable name, for node listings.
func (v *Var) String() string {
	if v == nil {
		return "<nil>"
	}
	return v.name
}
