package field

import (
	"golang.org/x/xerrors"
)

// Names of the field operations every Manager knows after
// RegisterDefaultFactories.
const (
	ActionAdd     = "add"
	ActionRemove  = "remove"
	ActionClear   = "clear"
	ActionReplace = "replace"
	ActionCompose = "compose"
)

var (
	// ErrUnknownAction is returned when no factory is registered for an
	// action. It means that a model refers to an operation the analysis
	// does not know, and should abort the run.
	ErrUnknownAction = xerrors.New("no factory for action")

	// ErrUnsupportedOperand is returned when a factory is asked to build a
	// transformer from a kind of operand it does not accept.
	ErrUnsupportedOperand = xerrors.New("unsupported operand")
)

// A Factory builds the transformer for one field operation, either from
// a literal value or from a symbolic reference to another value.
//
// The returned transformer does not need to be interned.
type Factory interface {
	FromValue(value interface{}) (*Transformer, error)
	FromRef(ref Ref) (*Transformer, error)
}

// ValueFactory adapts a function to a Factory accepting non-nil literal
// values only.
type ValueFactory func(value interface{}) *Transformer

func (f ValueFactory) FromValue(value interface{}) (*Transformer, error) {
	if value == nil {
		return nil, xerrors.Errorf("missing value: %w", ErrUnsupportedOperand)
	}
	return f(value), nil
}

func (f ValueFactory) FromRef(ref Ref) (*Transformer, error) {
	return nil, xerrors.Errorf("reference %s: %w", ref, ErrUnsupportedOperand)
}

// RefFactory adapts a function to a Factory accepting symbolic references
// only.
type RefFactory func(ref Ref) *Transformer

func (f RefFactory) FromValue(value interface{}) (*Transformer, error) {
	return nil, xerrors.Errorf("literal %v: %w", value, ErrUnsupportedOperand)
}

func (f RefFactory) FromRef(ref Ref) (*Transformer, error) {
	return f(ref), nil
}

func addTransformer(value interface{}) *Transformer {
	return NewTransformer(NewSet(value), nil, false, nil)
}

func removeTransformer(value interface{}) *Transformer {
	return NewTransformer(nil, NewSet(value), false, nil)
}

// clearFactory takes no operand: any literal is ignored.
type clearFactory struct{}

func (clearFactory) FromValue(interface{}) (*Transformer, error) {
	return NewTransformer(nil, nil, true, nil), nil
}

func (clearFactory) FromRef(ref Ref) (*Transformer, error) {
	return nil, xerrors.Errorf("reference %s: %w", ref, ErrUnsupportedOperand)
}

func replaceTransformer(value interface{}) *Transformer {
	return NewTransformer(NewSet(value), nil, true, nil)
}

// composeTransformer defers the composition with the referenced value.
func composeTransformer(ref Ref) *Transformer {
	return NewTransformer(nil, nil, false, NewSequence(ref))
}
