package field

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// A Manager is the entry point for building field transformers and field
// values. It owns the factory registry and interns everything it returns
// into its pool.
//
// A Manager is safe for concurrent use once its factories are
// registered; registration itself is also serialized.
type Manager struct {
	pool     *Pool
	identity *Transformer

	mu        sync.RWMutex
	factories map[string]Factory
}

// NewManager returns a Manager interning into pool, with no factory
// registered.
func NewManager(pool *Pool) *Manager {
	m := &Manager{
		pool:      pool,
		factories: make(map[string]Factory),
	}
	m.identity = m.intern(NewTransformer(nil, nil, false, nil))
	return m
}

// Pool returns the pool m interns into.
func (m *Manager) Pool() *Pool { return m.pool }

// RegisterFactory associates action with f. A later registration for the
// same action replaces the earlier one, which lets an analysis override
// the defaults.
func (m *Manager) RegisterFactory(action string, f Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.factories[action]; ok {
		log.WithField("action", action).Debug("overriding field transformer factory")
	}
	m.factories[action] = f
}

// RegisterDefaultFactories registers add, remove, clear, replace and
// compose.
func (m *Manager) RegisterDefaultFactories() {
	m.RegisterFactory(ActionAdd, ValueFactory(addTransformer))
	m.RegisterFactory(ActionRemove, ValueFactory(removeTransformer))
	m.RegisterFactory(ActionClear, clearFactory{})
	m.RegisterFactory(ActionReplace, ValueFactory(replaceTransformer))
	m.RegisterFactory(ActionCompose, RefFactory(composeTransformer))
}

// Actions returns the registered action names.
func (m *Manager) Actions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	actions := make([]string, 0, len(m.factories))
	for a := range m.factories {
		actions = append(actions, a)
	}
	return actions
}

func (m *Manager) factory(action string) (Factory, error) {
	m.mu.RLock()
	f, ok := m.factories[action]
	m.mu.RUnlock()
	if !ok {
		return nil, xerrors.Errorf("%q: %w", action, ErrUnknownAction)
	}
	return f, nil
}

// MakeFieldTransformer returns the canonical transformer for applying
// action with a literal value.
func (m *Manager) MakeFieldTransformer(action string, value interface{}) (*Transformer, error) {
	f, err := m.factory(action)
	if err != nil {
		return nil, err
	}
	t, err := f.FromValue(value)
	if err != nil {
		return nil, xerrors.Errorf("action %q: %w", action, err)
	}
	return m.intern(t), nil
}

// MakeRefTransformer returns the canonical transformer for applying
// action with the value referenced by ref.
func (m *Manager) MakeRefTransformer(action string, ref Ref) (*Transformer, error) {
	f, err := m.factory(action)
	if err != nil {
		return nil, err
	}
	t, err := f.FromRef(ref)
	if err != nil {
		return nil, xerrors.Errorf("action %q: %w", action, err)
	}
	return m.intern(t), nil
}
