package solver

import (
	"fmt"
	"io"
	"sort"

	"github.com/april1989/fieldprop/go/model"
	"github.com/april1989/fieldprop/go/propagation"
)

// Result holds the final value of every object of a run.
type Result struct {
	values map[model.ID]*propagation.Value
}

// IDs returns the objects of r, sorted by symbol then point.
func (r *Result) IDs() []model.ID {
	ids := make([]model.ID, 0, len(r.values))
	for id := range r.values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })
	return ids
}

func (r *Result) Value(id model.ID) (*propagation.Value, bool) {
	v, ok := r.values[id]
	return v, ok
}

func (r *Result) Len() int { return len(r.values) }

// Fprint writes the final path values of every object.
func (r *Result) Fprint(w io.Writer) {
	for _, id := range r.IDs() {
		v := r.values[id]
		fmt.Fprintf(w, "%s:\n", id)
		if v.IsTop() {
			fmt.Fprintln(w, "  top")
			continue
		}
		for _, p := range v.PathValues() {
			fmt.Fprintf(w, "  {%s}\n", p)
		}
	}
}
