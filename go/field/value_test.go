package field

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeReferenced struct {
	top    bool
	fields map[string][]*Value
}

func (f *fakeReferenced) IsTop() bool { return f.top }

func (f *fakeReferenced) ValuesForField(field string) []*Value { return f.fields[field] }

type fakeSolver struct {
	results   map[interface{}]Referenced
	finalized int
}

func (s *fakeSolver) ResultAt(point, symbol interface{}) Referenced {
	return s.results[symbol]
}

func (s *fakeSolver) Finalize(v Referenced) (Referenced, error) {
	s.finalized++
	return v, nil
}

type fakeTop struct{ m *Manager }

func (p fakeTop) TopFieldTransformer(typ string) (*Transformer, error) {
	return p.m.MakeFieldTransformer(ActionAdd, "(.*)")
}

func valueStrings(vs []*Value) [][]string {
	var out [][]string
	for _, v := range vs {
		if v == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, v.Strings())
	}
	return out
}

func TestInterning(t *testing.T) {
	m := newTestManager()
	a := m.NewValue("x", "y")
	b := m.NewValue("y", "x")
	if a != b {
		t.Errorf("equal values interned to distinct instances")
	}
	if got := m.Pool().Intern(m.Pool().Intern(a)); got != a {
		t.Errorf("intern is not idempotent")
	}
	if m.NewValue(1) == m.NewValue("1") {
		t.Errorf("values of different types collapsed")
	}
	if m.NewValue() == m.NewValueFromSet(NewSet("x")) {
		t.Errorf("absent set collapsed with a non-empty one")
	}
	seq := NewSequence(Ref{Symbol: "a"})
	if m.NewIntermediateValue(NewSet("x"), seq) == a {
		t.Errorf("intermediate value collapsed with concrete value")
	}
}

func TestPoolConcurrentIntern(t *testing.T) {
	m := newTestManager()
	var wg sync.WaitGroup
	got := make([]*Value, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = m.NewValue("a", "b", "c")
		}(i)
	}
	wg.Wait()
	for _, v := range got[1:] {
		if v != got[0] {
			t.Fatalf("concurrent interning produced distinct instances")
		}
	}
	before := m.Pool().Len()
	m.Pool().Reset()
	if m.Pool().Len() != 0 || before == 0 {
		t.Errorf("reset: before %d, after %d", before, m.Pool().Len())
	}
}

func TestValueString(t *testing.T) {
	m := newTestManager()
	if got, want := m.NewValue("b", "c", "a").String(), "[a, b, c]"; got != want {
		t.Errorf("string: got %q, want %q", got, want)
	}
	if got := m.NewValue().String(); got != "[]" {
		t.Errorf("absent string: got %q", got)
	}
}

func TestTransformersFromReferencedValue(t *testing.T) {
	m := newTestManager()
	solver := &fakeSolver{results: map[interface{}]Referenced{
		"bundle": &fakeReferenced{fields: map[string][]*Value{
			"extras": {m.NewValue("k1", "k2"), m.NewValue("k3"), nil},
		}},
		"unknown": &fakeReferenced{top: true},
	}}
	r := &Resolver{Manager: m, Solver: solver, Top: fakeTop{m}}

	ts, top, err := r.TransformersFromReferencedValue("s1", "bundle", "extras", "string", ActionAdd)
	if err != nil {
		t.Fatal(err)
	}
	if top {
		t.Errorf("resolved reference reported top")
	}
	if solver.finalized != 1 {
		t.Errorf("referenced value finalized %d times, want 1", solver.finalized)
	}
	var adds [][]string
	for _, tr := range ts {
		if tr == nil {
			adds = append(adds, nil)
			continue
		}
		adds = append(adds, tr.Add().Strings())
	}
	want := [][]string{nil, {"k1", "k2"}, {"k3"}}
	if diff := cmp.Diff(want, adds); diff != "" {
		t.Errorf("transformers mismatch (-want +got):\n%s", diff)
	}

	for _, symbol := range []string{"missing", "unknown"} {
		ts, top, err = r.TransformersFromReferencedValue("s1", symbol, "extras", "string", ActionAdd)
		if err != nil {
			t.Fatal(err)
		}
		if !top || len(ts) != 1 {
			t.Fatalf("%s: got %d transformers, top %t", symbol, len(ts), top)
		}
		if diff := cmp.Diff([]string{"(.*)"}, ts[0].Add().Strings()); diff != "" {
			t.Errorf("%s: top transformer mismatch (-want +got):\n%s", symbol, diff)
		}
	}
}

func TestMakeFinalFieldValues(t *testing.T) {
	m := newTestManager()
	solver := &fakeSolver{results: map[interface{}]Referenced{
		"bundle": &fakeReferenced{fields: map[string][]*Value{
			"extras": {m.NewValue("a1"), m.NewValue("a2", "a3"), nil},
		}},
	}}
	r := &Resolver{Manager: m, Solver: solver, Top: fakeTop{m}}

	compose, err := m.MakeRefTransformer(ActionCompose, Ref{Point: "s0", Symbol: "bundle", Op: ActionAdd, Type: "string"})
	if err != nil {
		t.Fatal(err)
	}
	v := m.Apply(compose, m.NewValue("p"))
	v = m.Apply(mustTransformer(t, m, ActionRemove, "a2"), v)

	got, err := v.MakeFinalFieldValues("extras", r)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{nil, {"a1", "p"}, {"a3", "p"}}
	if diff := cmp.Diff(want, valueStrings(got)); diff != "" {
		t.Errorf("final values mismatch (-want +got):\n%s", diff)
	}
	for _, fv := range got {
		if fv != nil && fv.HasTransformerSequence() {
			t.Errorf("final value %s is still intermediate", fv)
		}
	}

	concrete := m.NewValue("x")
	got, err = concrete.MakeFinalFieldValues("extras", r)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != concrete {
		t.Errorf("concrete value did not resolve to itself: %v", got)
	}
}

func TestMakeFinalFieldValuesCrossProduct(t *testing.T) {
	m := newTestManager()
	solver := &fakeSolver{results: map[interface{}]Referenced{
		"a": &fakeReferenced{fields: map[string][]*Value{"f": {m.NewValue("a1"), m.NewValue("a2")}}},
		"b": &fakeReferenced{fields: map[string][]*Value{"f": {m.NewValue("b1"), m.NewValue("b2"), m.NewValue("b3")}}},
	}}
	r := &Resolver{Manager: m, Solver: solver, Top: fakeTop{m}}

	seq := NewSequence(
		Ref{Point: "s0", Symbol: "a", Op: ActionAdd},
		Ref{Point: "s1", Symbol: "b", Op: ActionAdd},
	)
	got, err := m.NewIntermediateValue(nil, seq).MakeFinalFieldValues("f", r)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 6 {
		t.Errorf("got %d final values, want 6: %v", len(got), valueStrings(got))
	}
}

func TestMakeFinalFieldValuesKeepsEmptyPartial(t *testing.T) {
	m := newTestManager()
	solver := &fakeSolver{results: map[interface{}]Referenced{
		// a path tracking the field without any value resolves to the identity
		"bundle": &fakeReferenced{fields: map[string][]*Value{"extras": {m.NewValue()}}},
	}}
	r := &Resolver{Manager: m, Solver: solver, Top: fakeTop{m}}

	compose, err := m.MakeRefTransformer(ActionCompose, Ref{Point: "s0", Symbol: "bundle", Op: ActionAdd})
	if err != nil {
		t.Fatal(err)
	}
	empty := m.Apply(mustTransformer(t, m, ActionRemove, "p"), m.NewValue("p"))
	v := m.Apply(compose, empty)
	if !v.HasTransformerSequence() || v.Values() == nil {
		t.Fatalf("intermediate value: got %s, absent partial %t", v, v.Values() == nil)
	}

	got, err := v.MakeFinalFieldValues("extras", r)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != empty {
		t.Errorf("final values: got %v, want the empty set", valueStrings(got))
	}
}
