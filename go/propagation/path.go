package propagation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/april1989/fieldprop/go/field"
	"golang.org/x/xerrors"
)

// ErrMultipleValues is returned when a single value is requested for a
// field that holds more than one.
var ErrMultipleValues = xerrors.New("more than one value")

// ErrNotString is returned when a string is requested for a field holding
// values of another type.
var ErrNotString = xerrors.New("not a string value")

// A PathValue is what one execution path knows about the fields of one
// abstract object: a mapping from field name to field value.
//
// A field mapped to nil is present but absent along this path. Once a
// PathValue has been added to a Value it must not be modified.
type PathValue struct {
	fields map[string]*field.Value
}

// NewPathValue returns a path value tracking no field.
func NewPathValue() *PathValue {
	return &PathValue{fields: make(map[string]*field.Value)}
}

// AddFieldEntry sets the value of f, replacing any previous entry.
func (p *PathValue) AddFieldEntry(f string, v *field.Value) {
	p.fields[f] = v
}

// FieldMap returns a copy of the field mapping.
func (p *PathValue) FieldMap() map[string]*field.Value {
	m := make(map[string]*field.Value, len(p.fields))
	for f, v := range p.fields {
		m[f] = v
	}
	return m
}

// Fields returns the tracked field names, sorted.
func (p *PathValue) Fields() []string {
	names := make([]string, 0, len(p.fields))
	for f := range p.fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// FieldValue returns the value of f; ok is false if f is not tracked on
// this path.
func (p *PathValue) FieldValue(f string) (v *field.Value, ok bool) {
	v, ok = p.fields[f]
	return
}

// StringFieldValue returns the display form of the values of f, sorted;
// ok is false if f is untracked, absent or has no set.
func (p *PathValue) StringFieldValue(f string) ([]string, bool) {
	v := p.fields[f]
	if v == nil || v.Values() == nil {
		return nil, false
	}
	return v.Strings(), true
}

// IntFieldValue returns the integer values of f, sorted. Non-integer
// values are skipped.
func (p *PathValue) IntFieldValue(f string) ([]int, bool) {
	v := p.fields[f]
	if v == nil || v.Values() == nil {
		return nil, false
	}
	var out []int
	for x := range v.Values() {
		if i, ok := x.(int); ok {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out, true
}

// SingleStringFieldValue returns the only value of f. It should only be
// used for string fields known to hold at most one value: more than one
// value is an error wrapping ErrMultipleValues, a value that is not a
// string one wrapping ErrNotString.
func (p *PathValue) SingleStringFieldValue(f string) (string, bool, error) {
	v := p.fields[f]
	if v == nil || v.Len() == 0 {
		return "", false, nil
	}
	if v.Len() > 1 {
		return "", false, xerrors.Errorf("field %s: %w", f, ErrMultipleValues)
	}
	for x := range v.Values() {
		s, ok := x.(string)
		if !ok {
			return "", false, xerrors.Errorf("field %s holds %T: %w", f, x, ErrNotString)
		}
		return s, true, nil
	}
	return "", false, nil
}

// ContainsNonNullFieldValue reports whether f is tracked with a non-empty
// set of values.
func (p *PathValue) ContainsNonNullFieldValue(f string) bool {
	v := p.fields[f]
	return v != nil && v.Len() != 0
}

// ContainsIntermediateField reports whether some field still references
// another value.
func (p *PathValue) ContainsIntermediateField() bool {
	for _, v := range p.fields {
		if v != nil && v.HasTransformerSequence() {
			return true
		}
	}
	return false
}

// MakeFinalBranchValues returns the path values without intermediate
// fields that p stands for.
//
// Each intermediate field resolves to several possible values, and
// different fields resolve independently, so the result is the cross
// product of the resolutions of every intermediate field. A field whose
// resolution is absent is left untracked in that branch. Duplicate
// branches collapse.
func (p *PathValue) MakeFinalBranchValues(r *field.Resolver) ([]*PathValue, error) {
	partial := NewPathValue()
	var intermediate []string
	for f, v := range p.fields {
		if v != nil && v.HasTransformerSequence() {
			intermediate = append(intermediate, f)
		} else {
			partial.fields[f] = v
		}
	}
	sort.Strings(intermediate)

	branches := []*PathValue{partial}
	for _, f := range intermediate {
		finals, err := p.fields[f].MakeFinalFieldValues(f, r)
		if err != nil {
			return nil, xerrors.Errorf("field %s: %w", f, err)
		}
		next := make(map[string]*PathValue, len(branches)*len(finals))
		for _, b := range branches {
			for _, fv := range finals {
				nb := &PathValue{fields: b.FieldMap()}
				if fv != nil {
					nb.fields[f] = fv
				}
				next[nb.Key()] = nb
			}
		}
		branches = sortPathValues(next)
	}
	return branches, nil
}

// Equal reports whether p and o map the same fields to the same values.
func (p *PathValue) Equal(o *PathValue) bool {
	if len(p.fields) != len(o.fields) {
		return false
	}
	for f, v := range p.fields {
		w, ok := o.fields[f]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// Key returns the structural encoding of p. Equal path values have equal
// keys.
func (p *PathValue) Key() string {
	parts := make([]string, 0, len(p.fields))
	for f, v := range p.fields {
		k := "nil"
		if v != nil {
			k = v.Key()
		}
		parts = append(parts, strconv.Quote(f)+"="+k)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (p *PathValue) String() string {
	parts := make([]string, 0, len(p.fields))
	for f, v := range p.fields {
		s := "null"
		if v != nil {
			s = v.String()
		}
		parts = append(parts, fmt.Sprintf("%s=%s", f, s))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func sortPathValues(set map[string]*PathValue) []*PathValue {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*PathValue, len(keys))
	for i, k := range keys {
		out[i] = set[k]
	}
	return out
}
