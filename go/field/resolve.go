package field

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Referenced is the view of a propagation value needed to compose it into
// a field: every possible content of a field, one per path.
type Referenced interface {
	// IsTop reports whether the value is the unknown (top) value.
	IsTop() bool
	// ValuesForField returns one entry per path; a nil entry means that
	// a path does not track field.
	ValuesForField(field string) []*Value
}

// Solver is the fixed-point solver the references are resolved against.
type Solver interface {
	// ResultAt returns the value currently known for symbol at point,
	// or nil if it has not been computed yet. Answers must be monotone
	// across the iteration.
	ResultAt(point, symbol interface{}) Referenced
	// Finalize forces v to its fully resolved form.
	Finalize(v Referenced) (Referenced, error)
}

// TopProvider supplies the conservative transformer used for a field of
// the given type when a reference cannot be resolved.
type TopProvider interface {
	TopFieldTransformer(typ string) (*Transformer, error)
}

// A Resolver bundles what is needed to replay deferred sequences.
type Resolver struct {
	Manager *Manager
	Solver  Solver
	Top     TopProvider
}

func (r *Resolver) top(typ string) (*Transformer, error) {
	if r.Top == nil {
		return nil, xerrors.Errorf("no top transformer for type %q", typ)
	}
	t, err := r.Top.TopFieldTransformer(typ)
	if err != nil {
		return nil, err
	}
	return r.Manager.intern(t), nil
}

// TransformersFromReferencedValue returns the transformers modeling the
// influence of the value of symbol at point on field, when its contents
// are folded in with the operation op. There is one transformer per path
// of the referenced value; a nil transformer stands for a path that does
// not track field.
//
// If the solver does not know the value yet, or only knows it to be top,
// the result is the single top transformer for typ and the boolean result
// is true.
func (r *Resolver) TransformersFromReferencedValue(point, symbol interface{}, field, typ, op string) ([]*Transformer, bool, error) {
	entry := log.WithFields(log.Fields{"symbol": symbol, "point": point, "field": field})

	ref := r.Solver.ResultAt(point, symbol)
	if ref != nil && !ref.IsTop() {
		final, err := r.Solver.Finalize(ref)
		if err != nil {
			return nil, false, xerrors.Errorf("finalizing %v@%v: %w", symbol, point, err)
		}
		ref = final
	}
	if ref == nil || ref.IsTop() {
		entry.Debug("referenced value unknown, returning top")
		t, err := r.top(typ)
		if err != nil {
			return nil, true, err
		}
		return []*Transformer{t}, true, nil
	}

	m := r.Manager
	res := make(map[*Transformer]struct{})
	for _, fv := range ref.ValuesForField(field) {
		if fv == nil {
			res[nil] = struct{}{}
			continue
		}
		t := m.Identity()
		for _, v := range fv.values.Sorted() {
			next, err := m.MakeFieldTransformer(op, v)
			if err != nil {
				return nil, false, err
			}
			t = m.Compose(t, next)
		}
		res[t] = struct{}{}
	}
	out := sortTransformers(res)
	entry.WithField("transformers", len(out)).Debug("resolved referenced value")
	return out, false, nil
}

// sequenceTransformers returns the alternative transformers equivalent to
// replaying seq, each of which is the left-to-right composition of one
// choice of resolution per reference with the concrete steps in between.
func (r *Resolver) sequenceTransformers(seq *Sequence, field string) ([]*Transformer, error) {
	m := r.Manager
	current := []*Transformer{m.Identity()}
	for _, st := range seq.steps {
		alts := []*Transformer{m.Identity()}
		if st.ref != nil {
			referenced := st.ref.Field
			if referenced == "" {
				referenced = field
			}
			var err error
			alts, _, err = r.TransformersFromReferencedValue(st.ref.Point, st.ref.Symbol, referenced, st.ref.Type, st.ref.Op)
			if err != nil {
				return nil, err
			}
		}

		next := make(map[*Transformer]struct{}, len(current)*len(alts))
		for _, c := range current {
			for _, a := range alts {
				if c == nil || a == nil {
					next[nil] = struct{}{}
					continue
				}
				t := m.Compose(c, a)
				for _, after := range st.after {
					t = m.Compose(t, after)
				}
				next[t] = struct{}{}
			}
		}
		current = sortTransformers(next)
	}
	return current, nil
}
