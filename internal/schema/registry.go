package schema

import (
	"fmt"
	"sync"

	"gasdoc/internal/domain"
)

// Registry maps a document type to its schema entry. It is built once and is
// safe for concurrent reads.
type Registry struct {
	entries map[domain.DocumentType]*Entry
	order   []domain.DocumentType
}

// NewRegistry validates and indexes entries. Entries keep their argument order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[domain.DocumentType]*Entry, len(entries))}
	for i := range entries {
		e := entries[i]
		if e.DocumentType == domain.DocTypeUnknown || e.DocumentType == "" {
			return nil, fmt.Errorf("registry entry %d: document type %q cannot be registered", i, e.DocumentType)
		}
		if _, dup := r.entries[e.DocumentType]; dup {
			return nil, fmt.Errorf("registry entry %d: duplicate document type %s", i, e.DocumentType)
		}
		if err := checkEntry(&e); err != nil {
			return nil, fmt.Errorf("registry entry %s: %w", e.DocumentType, err)
		}
		env, err := compileEnvelope(&e)
		if err != nil {
			return nil, fmt.Errorf("registry entry %s: %w", e.DocumentType, err)
		}
		e.envelope = env
		r.entries[e.DocumentType] = &e
		r.order = append(r.order, e.DocumentType)
	}
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of built-in gas billing document types.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(builtinEntries()...)
		if err != nil {
			panic(fmt.Sprintf("schema: invalid built-in registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Lookup returns the entry for t, or an UnregisteredTypeError.
func (r *Registry) Lookup(t domain.DocumentType) (*Entry, error) {
	e, ok := r.entries[t]
	if !ok {
		return nil, &domain.UnregisteredTypeError{DocumentType: t}
	}
	return e, nil
}

// ListTypes returns the registered types in registration order.
func (r *Registry) ListTypes() []domain.DocumentType {
	out := make([]domain.DocumentType, len(r.order))
	copy(out, r.order)
	return out
}

func checkEntry(e *Entry) error {
	if e.Transform == nil {
		return fmt.Errorf("no transform")
	}
	if err := checkContract(e.Header); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	if e.MultiRow() {
		if e.Rows.Name == "" {
			return fmt.Errorf("row set has no name")
		}
		if _, clash := e.Header.Field(e.Rows.Name); clash {
			return fmt.Errorf("row set %s shadows a header field", e.Rows.Name)
		}
		if err := checkContract(e.Rows.Fields); err != nil {
			return fmt.Errorf("rows: %w", err)
		}
	}

	switch t := e.Transform.(type) {
	case Identity:
		return nil
	case Mapping:
		return checkMapping(e, t)
	default:
		return fmt.Errorf("unsupported transform %T", t)
	}
}

func checkContract(c FieldContract) error {
	seen := make(map[string]bool, len(c))
	for _, f := range c {
		if f.Name == "" {
			return fmt.Errorf("field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %s", f.Name)
		}
		seen[f.Name] = true
		if f.Type != domain.ValueNumber && f.Type != domain.ValueText {
			return fmt.Errorf("field %s: unsupported type %q", f.Name, f.Type)
		}
		if f.Default != nil && f.Type != domain.ValueNumber {
			return fmt.Errorf("field %s: defaults are only supported on numbers", f.Name)
		}
	}
	return nil
}

func checkMapping(e *Entry, m Mapping) error {
	outputs := map[string]bool{}
	claim := func(name string) error {
		if outputs[name] {
			return fmt.Errorf("output %s produced twice", name)
		}
		outputs[name] = true
		return nil
	}
	for _, s := range m.Sums {
		if len(s.Inputs) < 2 {
			return fmt.Errorf("sum %s needs at least two inputs", s.Output)
		}
		for _, in := range s.Inputs {
			f, ok := e.Header.Field(in)
			if !ok {
				return fmt.Errorf("sum %s references undeclared field %s", s.Output, in)
			}
			if f.Type != domain.ValueNumber {
				return fmt.Errorf("sum %s references non-numeric field %s", s.Output, in)
			}
		}
		if err := claim(s.Output); err != nil {
			return err
		}
	}
	for _, rn := range m.Renames {
		if _, ok := e.Header.Field(rn.From); !ok {
			return fmt.Errorf("rename references undeclared field %s", rn.From)
		}
		if err := claim(rn.To); err != nil {
			return err
		}
	}
	if len(m.RowRenames) > 0 && !e.MultiRow() {
		return fmt.Errorf("row renames declared without a row set")
	}
	for _, rn := range m.RowRenames {
		if _, ok := e.Rows.Fields.Field(rn.From); !ok {
			return fmt.Errorf("row rename references undeclared field %s", rn.From)
		}
	}
	if e.MultiRow() {
		if err := claim(e.Rows.Name); err != nil {
			return err
		}
	}
	return nil
}
