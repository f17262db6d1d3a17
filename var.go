package snopat

import "github.com/coregx/snopat/engine"

// Var is a named mutable cell. Assignment elements store matched text (or
// a cursor offset) into a Var; class, integer and Deref elements read one
// at match time.
type Var = engine.Var

// NewVar returns an empty variable. An empty name is replaced by a
// generated one ("var1", "var2", ...).
func NewVar(name string) *Var {
	return engine.NewVar(name)
}

// NewVarValue returns a variable holding value.
func NewVarValue(name string, value any) *Var {
	return engine.NewVarValue(name, value)
}
