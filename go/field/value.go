package field

import (
	"sort"
)

// A Value is the content of one field along one path.
//
// A concrete value is a set of opaque values (possibly absent). An
// intermediate value additionally carries a sequence of deferred
// operations that depend on another value not known yet; its set is only
// the partial content computed before the first pending reference.
//
// Values are immutable once returned by a Manager and are interned:
// equal values are the same pointer.
type Value struct {
	values   Set
	sequence *Sequence
	key      string
}

// addAll unions add into v's set, allocating it on first non-empty use.
// Only valid on a value that has not been interned.
func (v *Value) addAll(add Set) {
	if len(add) == 0 {
		return
	}
	v.values = v.values.union(add)
}

// removeAll subtracts remove from v's set, if v has one.
// Only valid on a value that has not been interned.
func (v *Value) removeAll(remove Set) {
	if v.values != nil {
		v.values.subtract(remove)
	}
}

// Values returns a copy of the concrete set, nil if absent.
func (v *Value) Values() Set { return v.values.Clone() }

func (v *Value) Len() int { return len(v.values) }

func (v *Value) Contains(x interface{}) bool { return v.values.Contains(x) }

// Strings returns the display form of the concrete set, sorted.
func (v *Value) Strings() []string { return v.values.Strings() }

// HasTransformerSequence reports whether v is intermediate, i.e. whether
// it still references another value that must be resolved.
func (v *Value) HasTransformerSequence() bool { return v.sequence != nil }

// Sequence returns the deferred sequence of an intermediate value.
func (v *Value) Sequence() *Sequence { return v.sequence }

func (v *Value) Key() string { return v.key }

// Equal reports structural equality.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.key == o.key
}

// String returns the sorted, comma-joined concrete set.
func (v *Value) String() string { return v.values.String() }

// NewValue returns the canonical concrete value holding values. With no
// arguments the set is absent.
func (m *Manager) NewValue(values ...interface{}) *Value {
	v := &Value{}
	if len(values) > 0 {
		v.addAll(NewSet(values...))
	}
	return m.internValue(v)
}

// NewValueFromSet returns the canonical concrete value holding s.
func (m *Manager) NewValueFromSet(s Set) *Value {
	v := &Value{}
	v.addAll(s)
	return m.internValue(v)
}

// NewIntermediateValue returns the canonical intermediate value with the
// partial set s and the deferred sequence seq.
func (m *Manager) NewIntermediateValue(s Set, seq *Sequence) *Value {
	v := &Value{sequence: seq}
	v.addAll(s)
	return m.internValue(v)
}

func (m *Manager) internValue(v *Value) *Value {
	v.key = "v" + v.values.Key() + "|" + v.sequence.Key()
	return m.pool.Intern(v).(*Value)
}

// MakeFinalFieldValues resolves the deferred sequence of v against the
// solver and returns every concrete value v may stand for. A nil element
// means that, along some branch of a referenced value, field is not
// tracked at all. A concrete v resolves to itself.
func (v *Value) MakeFinalFieldValues(field string, r *Resolver) ([]*Value, error) {
	if v.sequence == nil {
		return []*Value{v}, nil
	}
	ts, err := r.sequenceTransformers(v.sequence, field)
	if err != nil {
		return nil, err
	}

	// an empty partial set stays present
	partial := r.Manager.internValue(&Value{values: v.values.Clone()})
	out := make(map[*Value]struct{}, len(ts))
	for _, t := range ts {
		if t == nil {
			out[nil] = struct{}{}
			continue
		}
		out[r.Manager.Apply(t, partial)] = struct{}{}
	}
	return SortValues(out), nil
}

// SortValues returns the elements of set ordered by key, nil first.
func SortValues(set map[*Value]struct{}) []*Value {
	out := make([]*Value, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i] == nil || out[j] == nil {
			return out[i] == nil && out[j] != nil
		}
		return out[i].key < out[j].key
	})
	return out
}

func sortTransformers(set map[*Transformer]struct{}) []*Transformer {
	out := make([]*Transformer, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i] == nil || out[j] == nil {
			return out[i] == nil && out[j] != nil
		}
		return out[i].key < out[j].key
	})
	return out
}
