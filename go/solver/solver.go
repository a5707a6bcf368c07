// Package solver computes the propagation values described by a model and
// resolves the references between them.
//
// The values of every object are built once, by composing the transformers
// of each field in program order and applying them to an empty field.
// References to other objects stay symbolic until an object is finalized.
// Objects whose references form a cycle are top.
package solver

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/april1989/fieldprop/go/arguments"
	"github.com/april1989/fieldprop/go/field"
	"github.com/april1989/fieldprop/go/model"
	"github.com/april1989/fieldprop/go/propagation"
	log "github.com/sirupsen/logrus"
	"github.com/twmb/algoimpl/go/graph"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/xerrors"
)

type Solver struct {
	fields   *field.Manager
	args     *arguments.Manager
	resolver *field.Resolver

	ids    []model.ID // sorted
	values map[model.ID]*propagation.Value
	tops   map[model.ID]bool

	mu     sync.Mutex
	finals map[*propagation.Value]*propagation.Value
	group  singleflight.Group

	Timers *Timers
}

// New builds the values of every object of m.
func New(m *model.Model, fields *field.Manager, args *arguments.Manager) (*Solver, error) {
	s := &Solver{
		fields: fields,
		args:   args,
		values: make(map[model.ID]*propagation.Value, len(m.Objects)),
		tops:   make(map[model.ID]bool),
		finals: make(map[*propagation.Value]*propagation.Value),
		Timers: &Timers{},
	}
	s.resolver = &field.Resolver{Manager: fields, Solver: s, Top: args}

	start := time.Now()
	for i := range m.Objects {
		o := &m.Objects[i]
		v, err := s.buildObject(o)
		if err != nil {
			return nil, xerrors.Errorf("object %s: %w", o.ID(), err)
		}
		s.values[o.ID()] = v
		s.ids = append(s.ids, o.ID())
	}
	sort.Slice(s.ids, func(i, j int) bool { return lessID(s.ids[i], s.ids[j]) })
	s.markCycles(m)
	s.Timers.Since(&s.Timers.ValueComposition, start)
	return s, nil
}

func (s *Solver) buildObject(o *model.Object) (*propagation.Value, error) {
	v := propagation.NewValue()
	for _, p := range o.Paths {
		pv := propagation.NewPathValue()
		for i := range p.Fields {
			f := &p.Fields[i]
			t, err := s.fieldTransformer(f)
			if err != nil {
				return nil, xerrors.Errorf("field %s: %w", f.Name, err)
			}
			pv.AddFieldEntry(f.Name, s.fields.Apply(t, s.fields.NewValue()))
		}
		v.AddPathValue(pv)
	}
	return v, nil
}

// fieldTransformer composes the operations of f in order.
func (s *Solver) fieldTransformer(f *model.Field) (*field.Transformer, error) {
	m := s.fields
	t := m.Identity()
	for _, op := range f.Ops {
		ts, err := s.opTransformers(f, op)
		if err != nil {
			return nil, err
		}
		for _, next := range ts {
			t = m.Compose(t, next)
		}
	}
	return t, nil
}

func (s *Solver) opTransformers(f *model.Field, op model.Op) ([]*field.Transformer, error) {
	m := s.fields
	if op.Ref != nil {
		refOp := op.Ref.Op
		if refOp == "" {
			refOp = field.ActionAdd
		}
		t, err := m.MakeRefTransformer(op.Action, field.Ref{
			Point:  op.Ref.Point,
			Symbol: op.Ref.Symbol,
			Op:     refOp,
			Type:   f.FieldType(),
			Field:  op.Ref.Field,
		})
		if err != nil {
			return nil, err
		}
		return []*field.Transformer{t}, nil
	}

	values, err := s.args.InlineValues(f.FieldType(), op.Values)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		if op.Action != field.ActionClear {
			return nil, xerrors.Errorf("%s without values: %w", op.Action, model.ErrInvalid)
		}
		t, err := m.MakeFieldTransformer(op.Action, nil)
		if err != nil {
			return nil, err
		}
		return []*field.Transformer{t}, nil
	}
	out := make([]*field.Transformer, 0, len(values))
	for i, v := range values {
		action := op.Action
		// a replace of several values clears once and adds the rest
		if action == field.ActionReplace && i > 0 {
			action = field.ActionAdd
		}
		t, err := m.MakeFieldTransformer(action, v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// markCycles makes top every object on a reference cycle.
func (s *Solver) markCycles(m *model.Model) {
	g := graph.New(graph.Directed)
	nodes := make(map[model.ID]graph.Node, len(m.Objects))
	node := func(id model.ID) graph.Node {
		n, ok := nodes[id]
		if !ok {
			n = g.MakeNode()
			*n.Value = id
			nodes[id] = n
		}
		return n
	}
	for i := range m.Objects {
		o := &m.Objects[i]
		from := node(o.ID())
		for _, p := range o.Paths {
			for _, f := range p.Fields {
				for _, op := range f.Ops {
					if op.Ref == nil {
						continue
					}
					if op.Ref.ID() == o.ID() {
						s.tops[o.ID()] = true
						continue
					}
					g.MakeEdge(from, node(op.Ref.ID()))
				}
			}
		}
	}
	for _, scc := range g.StronglyConnectedComponents() {
		if len(scc) < 2 {
			continue
		}
		for _, n := range scc {
			id := (*n.Value).(model.ID)
			if _, ok := s.values[id]; ok {
				s.tops[id] = true
			}
		}
	}
	for id := range s.tops {
		log.WithField("object", id).Info("object on a reference cycle, using top")
	}
}

// ResultAt returns the value of symbol at point, nil if there is none.
func (s *Solver) ResultAt(point, symbol interface{}) field.Referenced {
	id := model.ID{Symbol: fmt.Sprint(symbol), Point: fmt.Sprint(point)}
	if s.tops[id] {
		return propagation.Top()
	}
	v, ok := s.values[id]
	if !ok {
		return nil
	}
	return v
}

// Value returns the value built for id, before finalization.
func (s *Solver) Value(id model.ID) (*propagation.Value, bool) {
	if s.tops[id] {
		return propagation.Top(), true
	}
	v, ok := s.values[id]
	return v, ok
}

// Finalize returns the final form of v. Results are memoized and
// concurrent requests for the same value share one computation.
func (s *Solver) Finalize(v field.Referenced) (field.Referenced, error) {
	pv, ok := v.(*propagation.Value)
	if !ok {
		return nil, xerrors.Errorf("cannot finalize %T", v)
	}
	return s.finalize(pv)
}

func (s *Solver) finalize(v *propagation.Value) (*propagation.Value, error) {
	s.mu.Lock()
	final, ok := s.finals[v]
	s.mu.Unlock()
	if ok {
		return final, nil
	}
	res, err, _ := s.group.Do(fmt.Sprintf("%p", v), func() (interface{}, error) {
		final, err := v.FinalValue(s.resolver)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.finals[v] = final
		s.mu.Unlock()
		return final, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*propagation.Value), nil
}

// Run finalizes every object. With parallel set, objects are finalized
// concurrently. Run stops at the first error or when ctx is done.
func (s *Solver) Run(ctx context.Context, parallel bool) (*Result, error) {
	start := time.Now()
	defer s.Timers.Since(&s.Timers.ResultGeneration, start)

	res := &Result{values: make(map[model.ID]*propagation.Value, len(s.ids))}
	var mu sync.Mutex
	do := func(id model.ID) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		begin := time.Now()
		v, _ := s.Value(id)
		final, err := s.finalize(v)
		if err != nil {
			return xerrors.Errorf("object %s: %w", id, err)
		}
		s.Timers.object(time.Since(begin), final.Len())
		mu.Lock()
		res.values[id] = final
		mu.Unlock()
		return nil
	}

	if !parallel {
		for _, id := range s.ids {
			if err := do(id); err != nil {
				return nil, err
			}
		}
		return res, nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range s.ids {
		id := id
		g.Go(func() error { return do(id) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func lessID(a, b model.ID) bool {
	if a.Symbol != b.Symbol {
		return a.Symbol < b.Symbol
	}
	return a.Point < b.Point
}
