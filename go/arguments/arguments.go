// Package arguments knows, for each field type, how to read inline values
// from a model and which value stands for "unknown".
package arguments

import (
	"sort"
	"strconv"
	"sync"

	"github.com/april1989/fieldprop/go/field"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

const (
	TypeString = "string"
	TypeInt    = "int"
)

// An Analysis reads the values of one field type.
type Analysis interface {
	// InlineValues parses the textual values given in a model.
	InlineValues(raw []string) ([]interface{}, error)
	// TopValue is the value used when nothing is known.
	TopValue() interface{}
}

type StringAnalysis struct{}

func (StringAnalysis) InlineValues(raw []string) ([]interface{}, error) {
	out := make([]interface{}, len(raw))
	for i, s := range raw {
		out[i] = s
	}
	return out, nil
}

// TopValue matches any string.
func (StringAnalysis) TopValue() interface{} { return "(.*)" }

type IntAnalysis struct{}

func (IntAnalysis) InlineValues(raw []string) ([]interface{}, error) {
	out := make([]interface{}, len(raw))
	for i, s := range raw {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, xerrors.Errorf("inline int value %q: %w", s, err)
		}
		out[i] = n
	}
	return out, nil
}

func (IntAnalysis) TopValue() interface{} { return -1 }

// Manager maps field types to their analysis. It is safe for concurrent use.
type Manager struct {
	fields *field.Manager

	mu       sync.RWMutex
	analyses map[string]Analysis
}

func NewManager(fields *field.Manager) *Manager {
	return &Manager{fields: fields, analyses: make(map[string]Analysis)}
}

// Register binds typ to a. A later registration replaces an earlier one.
func (m *Manager) Register(typ string, a Analysis) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.analyses[typ]; ok {
		log.WithField("type", typ).Debug("overriding argument analysis")
	}
	m.analyses[typ] = a
}

func (m *Manager) RegisterDefaults() {
	m.Register(TypeString, StringAnalysis{})
	m.Register(TypeInt, IntAnalysis{})
}

// Analysis returns the analysis registered for typ.
func (m *Manager) Analysis(typ string) (Analysis, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.analyses[typ]
	return a, ok
}

// Types returns the registered types, sorted.
func (m *Manager) Types() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.analyses))
	for t := range m.analyses {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// InlineValues parses raw with the analysis of typ.
func (m *Manager) InlineValues(typ string, raw []string) ([]interface{}, error) {
	a, ok := m.Analysis(typ)
	if !ok {
		return nil, xerrors.Errorf("no argument analysis for type %q", typ)
	}
	return a.InlineValues(raw)
}

// TopFieldTransformer returns the transformer adding the top value of typ.
// Types without an analysis fall back to the string analysis.
func (m *Manager) TopFieldTransformer(typ string) (*field.Transformer, error) {
	a, ok := m.Analysis(typ)
	if !ok {
		log.WithField("type", typ).Debug("no argument analysis, using string top")
		if a, ok = m.Analysis(TypeString); !ok {
			a = StringAnalysis{}
		}
	}
	return m.fields.MakeFieldTransformer(field.ActionAdd, a.TopValue())
}
