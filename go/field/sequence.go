package field

import (
	"fmt"
	"strconv"
	"strings"
)

// A Ref is a symbolic reference to a value that may not be known yet:
// the value of Symbol at program point Point, whose field contents are to
// be folded in with the field operation Op (e.g. "add").
//
// Point and Symbol are opaque identifiers supplied by the solver; they
// must be comparable. Type is the type of the referenced field and selects
// the conservative transformer used when the reference cannot be resolved.
// Field, if set, names the referenced field; otherwise the field holding
// the reference is used.
type Ref struct {
	Point  interface{}
	Symbol interface{}
	Op     string
	Type   string
	Field  string
}

func (r Ref) String() string {
	s := fmt.Sprintf("%v@%v %s", r.Symbol, r.Point, r.Op)
	if r.Field != "" {
		s += " ." + r.Field
	}
	return s
}

func (r Ref) key() string {
	return strings.Join([]string{
		elementKey(r.Symbol),
		elementKey(r.Point),
		strconv.Quote(r.Op),
		strconv.Quote(r.Type),
		strconv.Quote(r.Field),
	}, "/")
}

// step is one symbolic reference followed by the concrete transformers
// that were layered on after it. ref is nil for concrete transformers
// recorded before any reference.
type step struct {
	ref   *Ref
	after []*Transformer
}

// A Sequence is a deferred composition: an ordered chain of symbolic
// references, each followed by the concrete transformers that must be
// replayed once the reference is resolved.
//
// Sequences are immutable. Combining two sequences concatenates their
// steps, it never nests one inside the other.
type Sequence struct {
	steps []step
	key   string
}

// NewSequence returns a sequence replaying refs in order.
func NewSequence(refs ...Ref) *Sequence {
	s := &Sequence{steps: make([]step, len(refs))}
	for i := range refs {
		ref := refs[i]
		s.steps[i] = step{ref: &ref}
	}
	s.key = s.makeKey()
	return s
}

// Len returns the number of steps of s.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.steps)
}

// Refs returns the symbolic references of s, in replay order.
func (s *Sequence) Refs() []Ref {
	var refs []Ref
	if s == nil {
		return refs
	}
	for _, st := range s.steps {
		if st.ref != nil {
			refs = append(refs, *st.ref)
		}
	}
	return refs
}

// After returns the concrete transformers replayed after step i.
func (s *Sequence) After(i int) []*Transformer {
	return append([]*Transformer(nil), s.steps[i].after...)
}

// withTransformer returns a copy of s with t appended after the last step.
func (s *Sequence) withTransformer(t *Transformer) *Sequence {
	res := &Sequence{}
	if s != nil {
		res.steps = append(res.steps, s.steps...)
	}
	if len(res.steps) == 0 {
		res.steps = append(res.steps, step{})
	}
	last := &res.steps[len(res.steps)-1]
	last.after = append(append([]*Transformer(nil), last.after...), t)
	res.key = res.makeKey()
	return res
}

// concat returns the steps of s followed by the steps of other.
func (s *Sequence) concat(other *Sequence) *Sequence {
	switch {
	case other.Len() == 0:
		return s
	case s.Len() == 0:
		return other
	}
	res := &Sequence{steps: make([]step, 0, len(s.steps)+len(other.steps))}
	res.steps = append(res.steps, s.steps...)
	res.steps = append(res.steps, other.steps...)
	res.key = res.makeKey()
	return res
}

func (s *Sequence) Key() string {
	if s == nil {
		return "-"
	}
	return s.key
}

func (s *Sequence) makeKey() string {
	var b strings.Builder
	b.WriteByte('<')
	for i, st := range s.steps {
		if i > 0 {
			b.WriteByte(';')
		}
		if st.ref != nil {
			b.WriteString(st.ref.key())
		}
		b.WriteByte('(')
		for j, t := range st.after {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(t.Key())
		}
		b.WriteByte(')')
	}
	b.WriteByte('>')
	return b.String()
}

func (s *Sequence) String() string {
	if s == nil {
		return "none"
	}
	var parts []string
	for _, st := range s.steps {
		if st.ref != nil {
			parts = append(parts, "ref "+st.ref.String())
		}
		for _, t := range st.after {
			parts = append(parts, "("+t.String()+")")
		}
	}
	return "[" + strings.Join(parts, " -> ") + "]"
}
