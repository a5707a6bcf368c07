package field

import (
	"fmt"
	"strconv"
)

// Kind classifies a transformer by the parts it carries. It is derived
// from the transformer's contents, never set independently.
type Kind int

const (
	KindGeneric  Kind = iota // add and remove, or neither (identity)
	KindAdd                  // add only
	KindRemove               // remove only
	KindClear                // clear, optionally followed by add/remove
	KindSequence             // carries a deferred sequence
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindAdd:
		return "add"
	case KindRemove:
		return "remove"
	case KindClear:
		return "clear"
	case KindSequence:
		return "sequence"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// A Transformer models the influence of a single statement on a single
// field: optionally clear the field, then remove a set of values, then
// add a set of values, then replay a deferred sequence.
//
// Transformers are immutable. Canonical instances are obtained from a
// Manager, which interns every transformer it returns; two canonical
// transformers are structurally equal iff they are the same pointer.
type Transformer struct {
	add      Set
	remove   Set
	clear    bool
	sequence *Sequence

	kind Kind
	key  string
}

// NewTransformer returns a transformer that is not yet interned. It takes
// ownership of add and remove. Custom factories use it; callers outside a
// factory should go through a Manager.
func NewTransformer(add, remove Set, clear bool, seq *Sequence) *Transformer {
	t := &Transformer{add: add, remove: remove, clear: clear, sequence: seq}
	switch {
	case seq != nil:
		t.kind = KindSequence
	case clear:
		t.kind = KindClear
	case add != nil && remove == nil:
		t.kind = KindAdd
	case add == nil && remove != nil:
		t.kind = KindRemove
	default:
		t.kind = KindGeneric
	}
	t.key = "t" + strconv.FormatBool(clear) + "|" + add.Key() + "|" + remove.Key() + "|" + seq.Key()
	return t
}

func (t *Transformer) Kind() Kind { return t.kind }

// Add returns a copy of the values added by t, nil if absent.
func (t *Transformer) Add() Set { return t.add.Clone() }

// Remove returns a copy of the values removed by t, nil if absent.
func (t *Transformer) Remove() Set { return t.remove.Clone() }

func (t *Transformer) Clear() bool { return t.clear }

// Sequence returns the deferred sequence of t, nil if none.
func (t *Transformer) Sequence() *Sequence { return t.sequence }

func (t *Transformer) Key() string { return t.key }

// Equal reports structural equality.
func (t *Transformer) Equal(o *Transformer) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.key == o.key
}

func (t *Transformer) String() string {
	add, remove := "null", "null"
	if t.add != nil {
		add = t.add.String()
	}
	if t.remove != nil {
		remove = t.remove.String()
	}
	return fmt.Sprintf("add %s, remove %s, clear %t, sequence %s", add, remove, t.clear, t.sequence)
}

// Apply applies t to the field value v and returns the canonical result.
//
// A deferred sequence is contagious: if t carries one, or if v does and t
// does not clear the field, the result is intermediate. When v already
// carries a sequence, t's add/remove cannot be applied to the partial set
// directly since they must be replayed after the pending references; they
// are appended to the sequence instead.
func (m *Manager) Apply(t *Transformer, v *Value) *Value {
	res := &Value{}
	if !t.clear {
		res.values = v.values.Clone()
		res.sequence = v.sequence
	}

	if v.sequence != nil && !t.clear {
		res.sequence = res.sequence.withTransformer(m.NonComposed(t))
	} else {
		res.removeAll(t.remove)
		res.addAll(t.add)
	}

	if t.sequence != nil {
		res.sequence = res.sequence.concat(t.sequence)
	}
	return m.internValue(res)
}

// Compose returns the transformer equivalent to applying first, then
// second. Composition is not commutative: callers must compose in program
// order.
func (m *Manager) Compose(first, second *Transformer) *Transformer {
	switch {
	case second.clear:
		// clearing erases every prior effect
		return second
	case first == m.identity:
		return second
	case second == m.identity:
		return first
	case first.kind == KindAdd && second.kind == KindAdd:
		return m.intern(NewTransformer(first.add.Clone().union(second.add), nil, false, nil))
	}

	add, remove := first.add.Clone(), first.remove.Clone()
	var seq *Sequence

	if first.sequence != nil {
		// second's own edits must wait for first's references
		seq = first.sequence
		if second.add != nil || second.remove != nil {
			seq = seq.withTransformer(m.NonComposed(second))
		}
	} else {
		// whatever second undoes of first is dropped, not accumulated
		if second.add != nil {
			remove.subtract(second.add)
			add = add.union(second.add)
		}
		if second.remove != nil {
			add.subtract(second.remove)
			remove = remove.union(second.remove)
		}
	}

	if second.sequence != nil {
		seq = seq.concat(second.sequence)
	}
	return m.intern(NewTransformer(add, remove, first.clear, seq))
}

// NonComposed returns the canonical transformer with t's add and remove
// but no clear and no sequence.
func (m *Manager) NonComposed(t *Transformer) *Transformer {
	return m.intern(NewTransformer(t.add.Clone(), t.remove.Clone(), false, nil))
}

// Identity returns the canonical transformer that leaves a field as is.
func (m *Manager) Identity() *Transformer { return m.identity }

func (m *Manager) intern(t *Transformer) *Transformer {
	return m.pool.Intern(t).(*Transformer)
}
