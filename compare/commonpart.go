package compare

import (
	"fmt"
	"io"
	"sort"

	"github.com/april1989/fieldprop/go/model"
	"github.com/april1989/fieldprop/go/solver"
)

// Report lists, per object, whether two results agree.
type Report struct {
	Sames []model.ID
	Diffs []Diff
}

// Diff describes an object on which two results disagree. A nil side means
// the object is missing from that result.
type Diff struct {
	ID          model.ID
	Base, Other fmt.Stringer
}

//compute the common parts of two results: same final path values or not
func CommonParts(base, other *solver.Result) *Report {
	ids := make(map[model.ID]bool)
	for _, id := range base.IDs() {
		ids[id] = true
	}
	for _, id := range other.IDs() {
		ids[id] = true
	}
	sorted := make([]model.ID, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	r := &Report{}
	for _, id := range sorted {
		b, okb := base.Value(id)
		o, oko := other.Value(id)
		if okb && oko && b.Equal(o) {
			r.Sames = append(r.Sames, id)
			continue
		}
		d := Diff{ID: id}
		if okb {
			d.Base = b
		}
		if oko {
			d.Other = o
		}
		r.Diffs = append(r.Diffs, d)
	}
	return r
}

func (r *Report) Fprint(w io.Writer) {
	fmt.Fprintln(w, "\n\nCompute Common parts ... ")
	fmt.Fprintln(w, "#same: ", len(r.Sames), " #diff: ", len(r.Diffs))
	for _, id := range r.Sames {
		fmt.Fprintln(w, "same ", id)
	}
	for _, d := range r.Diffs {
		fmt.Fprintln(w, "diff ", d.ID)
		fmt.Fprintln(w, "  base:  ", side(d.Base))
		fmt.Fprintln(w, "  other: ", side(d.Other))
	}
}

func side(s fmt.Stringer) string {
	if s == nil {
		return "missing"
	}
	return s.String()
}
