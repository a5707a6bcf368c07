// Package propagation holds the values the solver propagates: a Value is
// the set of path values reaching a program point for one symbol.
package propagation

import (
	"strings"

	"github.com/april1989/fieldprop/go/field"
	"golang.org/x/xerrors"
)

// A Value is a set of path values, one per distinct path through the
// abstract object's lifecycle. Duplicate path values collapse.
type Value struct {
	paths map[string]*PathValue
	top   bool
}

var top = &Value{top: true}

// Top returns the distinguished unknown value.
func Top() *Value { return top }

// NewValue returns a value holding paths.
func NewValue(paths ...*PathValue) *Value {
	v := &Value{paths: make(map[string]*PathValue, len(paths))}
	for _, p := range paths {
		v.AddPathValue(p)
	}
	return v
}

// AddPathValue adds p, unless an equal path value is already present.
// Adding to Top is a no-op.
func (v *Value) AddPathValue(p *PathValue) {
	if v.top {
		return
	}
	k := p.Key()
	if _, ok := v.paths[k]; !ok {
		v.paths[k] = p
	}
}

// PathValues returns the path values of v in key order.
func (v *Value) PathValues() []*PathValue {
	return sortPathValues(v.paths)
}

func (v *Value) Len() int { return len(v.paths) }

func (v *Value) IsTop() bool { return v.top }

// Join returns the union of v and o. Top absorbs everything.
func (v *Value) Join(o *Value) *Value {
	if v.top || o.top {
		return top
	}
	res := NewValue()
	for k, p := range v.paths {
		res.paths[k] = p
	}
	for k, p := range o.paths {
		res.paths[k] = p
	}
	return res
}

// ValuesForField returns the distinct values of f across the paths of v.
// A nil element means that at least one path does not track f.
func (v *Value) ValuesForField(f string) []*field.Value {
	set := make(map[*field.Value]struct{})
	for _, p := range v.paths {
		set[p.fields[f]] = struct{}{}
	}
	return field.SortValues(set)
}

// ContainsIntermediate reports whether some path value still references
// another value.
func (v *Value) ContainsIntermediate() bool {
	for _, p := range v.paths {
		if p.ContainsIntermediateField() {
			return true
		}
	}
	return false
}

// FinalValue returns a value in which every path value with intermediate
// fields is replaced with its final branch values. v itself is left
// untouched, so that it can still be compared with later iterations.
func (v *Value) FinalValue(r *field.Resolver) (*Value, error) {
	if v.top || !v.ContainsIntermediate() {
		return v, nil
	}
	res := NewValue()
	for _, p := range v.PathValues() {
		if !p.ContainsIntermediateField() {
			res.AddPathValue(p)
			continue
		}
		branches, err := p.MakeFinalBranchValues(r)
		if err != nil {
			return nil, xerrors.Errorf("path %s: %w", p, err)
		}
		for _, b := range branches {
			res.AddPathValue(b)
		}
	}
	return res, nil
}

// Equal reports whether v and o hold the same path values.
func (v *Value) Equal(o *Value) bool {
	if v.top || o.top {
		return v.top == o.top
	}
	if len(v.paths) != len(o.paths) {
		return false
	}
	for k := range v.paths {
		if _, ok := o.paths[k]; !ok {
			return false
		}
	}
	return true
}

func (v *Value) String() string {
	if v.top {
		return "top"
	}
	var b strings.Builder
	for i, p := range v.PathValues() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("{" + p.String() + "}")
	}
	return b.String()
}
