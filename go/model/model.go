// Package model reads the description of the abstract objects to analyze.
//
// A model file is YAML: every object is identified by a symbol and the
// program point at which it is observed, and lists the paths reaching that
// point. Each path records, per field, the operations applied to the field
// in program order. An operation either carries inline values or
// references the value of another object.
//
//	version: v1.0.0
//	objects:
//	  - symbol: intent
//	    point: s3
//	    paths:
//	      - fields:
//	          - name: action
//	            type: string
//	            ops:
//	              - {action: add, values: [VIEW]}
//	          - name: extras
//	            ops:
//	              - action: compose
//	                ref: {symbol: bundle, point: s2, op: add}
package model

import (
	"io"
	"io/ioutil"
	"os"

	"golang.org/x/mod/semver"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

var ErrInvalid = xerrors.New("invalid model")

type Model struct {
	Version string   `yaml:"version"`
	Objects []Object `yaml:"objects"`
}

type Object struct {
	Symbol string `yaml:"symbol"`
	Point  string `yaml:"point"`
	Paths  []Path `yaml:"paths"`
}

type Path struct {
	Fields []Field `yaml:"fields"`
}

type Field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"` // defaults to string
	Ops  []Op   `yaml:"ops"`
}

type Op struct {
	Action string   `yaml:"action"`
	Values []string `yaml:"values,omitempty"`
	Ref    *Ref     `yaml:"ref,omitempty"`
}

// A Ref names the value of another object. Field defaults to the field the
// operation applies to, Op to add.
type Ref struct {
	Symbol string `yaml:"symbol"`
	Point  string `yaml:"point"`
	Field  string `yaml:"field,omitempty"`
	Op     string `yaml:"op,omitempty"`
}

// ID identifies an object in a model.
type ID struct {
	Symbol, Point string
}

func (id ID) String() string { return id.Symbol + "@" + id.Point }

func (o *Object) ID() ID { return ID{o.Symbol, o.Point} }

func (r *Ref) ID() ID { return ID{r.Symbol, r.Point} }

// FieldType returns the declared type of f, string if none.
func (f *Field) FieldType() string {
	if f.Type == "" {
		return "string"
	}
	return f.Type
}

// Decode reads and validates a model.
func Decode(r io.Reader) (*Model, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("reading model: %w", err)
	}
	m := &Model{}
	if err := yaml.UnmarshalStrict(data, m); err != nil {
		return nil, xerrors.Errorf("decoding model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeFile reads and validates the model at path.
func DecodeFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("opening model: %w", err)
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks the structure of m. Actions are not checked against a
// registry here, unknown ones are reported when the model is built.
func (m *Model) Validate() error {
	if !semver.IsValid(m.Version) {
		return xerrors.Errorf("version %q: %w", m.Version, ErrInvalid)
	}
	if semver.Major(m.Version) != "v1" {
		return xerrors.Errorf("unsupported version %s: %w", m.Version, ErrInvalid)
	}
	seen := make(map[ID]bool, len(m.Objects))
	for i := range m.Objects {
		o := &m.Objects[i]
		if o.Symbol == "" || o.Point == "" {
			return xerrors.Errorf("object %d: missing symbol or point: %w", i, ErrInvalid)
		}
		if seen[o.ID()] {
			return xerrors.Errorf("object %s: duplicated: %w", o.ID(), ErrInvalid)
		}
		seen[o.ID()] = true
		for j, p := range o.Paths {
			for _, f := range p.Fields {
				if f.Name == "" {
					return xerrors.Errorf("object %s path %d: unnamed field: %w", o.ID(), j, ErrInvalid)
				}
				for k, op := range f.Ops {
					if err := op.validate(); err != nil {
						return xerrors.Errorf("object %s path %d field %s op %d: %w", o.ID(), j, f.Name, k, err)
					}
				}
			}
		}
	}
	return nil
}

func (op *Op) validate() error {
	if op.Action == "" {
		return xerrors.Errorf("missing action: %w", ErrInvalid)
	}
	if op.Ref == nil {
		switch op.Action {
		case "add", "remove", "replace":
			if len(op.Values) == 0 {
				return xerrors.Errorf("%s without values: %w", op.Action, ErrInvalid)
			}
		}
		return nil
	}
	if len(op.Values) != 0 {
		return xerrors.Errorf("both values and ref: %w", ErrInvalid)
	}
	if op.Ref.Symbol == "" || op.Ref.Point == "" {
		return xerrors.Errorf("ref without symbol or point: %w", ErrInvalid)
	}
	return nil
}
