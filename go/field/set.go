package field

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// A Set is an unordered set of opaque values (string literals, integers,
// ...). Elements must be comparable.
//
// A nil Set means "absent", which is not the same as an empty Set: the
// distinction is preserved by the transformer algebra and takes part in
// structural equality.
type Set map[interface{}]struct{}

// NewSet returns a set holding values.
func NewSet(values ...interface{}) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Clone returns a copy of s that the caller owns. Clone of nil is nil.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	c := make(Set, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

func (s Set) Len() int { return len(s) }

func (s Set) Contains(v interface{}) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the elements of s in canonical order.
func (s Set) Sorted() []interface{} {
	out := make([]interface{}, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return elementKey(out[i]) < elementKey(out[j])
	})
	return out
}

// Strings returns the display form of every element, sorted.
func (s Set) Strings() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, fmt.Sprint(v))
	}
	sort.Strings(out)
	return out
}

func (s Set) String() string {
	return "[" + strings.Join(s.Strings(), ", ") + "]"
}

// Key returns the structural encoding of s; "-" stands for an absent set.
func (s Set) Key() string {
	if s == nil {
		return "-"
	}
	keys := make([]string, 0, len(s))
	for v := range s {
		keys = append(keys, elementKey(v))
	}
	sort.Strings(keys)
	return "{" + strings.Join(keys, ",") + "}"
}

// union adds other into s, allocating s if needed, and returns s.
func (s Set) union(other Set) Set {
	if s == nil {
		s = make(Set, len(other))
	}
	for v := range other {
		s[v] = struct{}{}
	}
	return s
}

// subtract removes other from s in place. No-op on a nil s.
func (s Set) subtract(other Set) {
	for v := range other {
		delete(s, v)
	}
}

// elementKey distinguishes values that print alike but differ in type,
// e.g. the string "1" and the integer 1.
func elementKey(v interface{}) string {
	return fmt.Sprintf("%T:%s", v, strconv.Quote(fmt.Sprint(v)))
}
