package flags

import (
	"flag"
	"testing"
	"time"

	"github.com/urfave/cli"
)

func context(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags {
		f.Apply(set)
	}
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(nil, set, nil)
}

func TestParseFlags(t *testing.T) {
	c := context(t, "-doParallel", "-timeLimit", "1m30s", "-compare", "other.yaml")
	if err := ParseFlags(c); err != nil {
		t.Fatal(err)
	}
	if !DoParallel || DoLog || DoCompare != "other.yaml" || TimeLimit != 90*time.Second {
		t.Errorf("got parallel %t, log %t, compare %q, limit %s", DoParallel, DoLog, DoCompare, TimeLimit)
	}

	if err := ParseFlags(context(t, "-timeLimit", "soon")); err == nil {
		t.Errorf("bad time limit accepted")
	}
}
