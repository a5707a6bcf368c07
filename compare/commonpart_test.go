package compare

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/april1989/fieldprop/go/arguments"
	"github.com/april1989/fieldprop/go/field"
	"github.com/april1989/fieldprop/go/model"
	"github.com/april1989/fieldprop/go/solver"
	"github.com/google/go-cmp/cmp"
)

func run(t *testing.T, src string) *solver.Result {
	t.Helper()
	m, err := model.Decode(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	fields := field.NewManager(field.NewPool())
	fields.RegisterDefaultFactories()
	args := arguments.NewManager(fields)
	args.RegisterDefaults()
	s, err := solver.New(m, fields, args)
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestCommonParts(t *testing.T) {
	base := run(t, `
version: v1.0.0
objects:
  - {symbol: a, point: s1, paths: [{fields: [{name: f, ops: [{action: add, values: [x]}]}]}]}
  - {symbol: b, point: s1, paths: [{fields: [{name: f, ops: [{action: add, values: [y]}]}]}]}
  - {symbol: c, point: s1, paths: [{fields: [{name: f, ops: [{action: add, values: [z]}]}]}]}
`)
	other := run(t, `
version: v1.0.0
objects:
  - {symbol: a, point: s1, paths: [{fields: [{name: f, ops: [{action: add, values: [x]}]}]}]}
  - {symbol: b, point: s1, paths: [{fields: [{name: f, ops: [{action: replace, values: [w]}]}]}]}
  - {symbol: d, point: s1, paths: []}
`)

	r := CommonParts(base, other)
	if diff := cmp.Diff([]model.ID{{Symbol: "a", Point: "s1"}}, r.Sames); diff != "" {
		t.Errorf("sames mismatch (-want +got):\n%s", diff)
	}
	var diffs []string
	for _, d := range r.Diffs {
		diffs = append(diffs, d.ID.String())
	}
	if diff := cmp.Diff([]string{"b@s1", "c@s1", "d@s1"}, diffs); diff != "" {
		t.Errorf("diffs mismatch (-want +got):\n%s", diff)
	}
	if r.Diffs[1].Other != nil || r.Diffs[2].Base != nil {
		t.Errorf("missing sides not reported: %+v", r.Diffs)
	}

	var buf bytes.Buffer
	r.Fprint(&buf)
	if !strings.Contains(buf.String(), "base:   missing") {
		t.Errorf("report:\n%s", buf.String())
	}
}
