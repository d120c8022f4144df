package parser

import (
	"fmt"
	"sync"

	"github.com/cloudcmd/cloud/vtype"
)

// Factory produces a fresh Parser for a ValueType. Factories are
// stateless; a new Parser value is produced per call so registry-level
// configuration (e.g. default ranges) cannot leak between commands.
type Factory func() Parser

// Registry maps a ValueType to its default parser Factory, with
// collision detection: one key, one owner, checked under a lock.
type Registry struct {
	mu        sync.RWMutex
	factories map[any]Factory
	names     map[any]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[any]Factory),
		names:     make(map[any]string),
	}
}

// Register installs the default factory for vt. Registering the same
// ValueType twice is an error, mirroring the tree's "no two siblings
// share a name" discipline applied here to the registry's keyspace.
func (r *Registry) Register(vt vtype.Type, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := vt.Key()
	if existing, ok := r.names[k]; ok {
		return fmt.Errorf("parser already registered for %s (as %s)", vt, existing)
	}
	r.factories[k] = factory
	r.names[k] = vt.String()
	return nil
}

// Resolve returns a fresh Parser for vt, or false if no factory is
// registered. The execution engine never calls Resolve: parsers live
// directly on tree nodes. Resolve exists for construction-time glue
// (annotation-style registration building a tree from ValueTypes alone).
func (r *Registry) Resolve(vt vtype.Type) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[vt.Key()]
	if !ok {
		return nil, false
	}
	return f(), true
}

// NewDefault returns a Registry pre-populated with the built-in scalar
// parsers: the numeric/boolean/string readers wired as the standard
// ValueType factories.
func NewDefault() *Registry {
	r := NewRegistry()
	_ = r.Register(vtype.Of[int](), func() Parser { return Erase(NewIntegerParser(Unbounded[int]())) })
	_ = r.Register(vtype.Of[int64](), func() Parser { return Erase(NewLongParser(Unbounded[int64]())) })
	_ = r.Register(vtype.Of[int16](), func() Parser { return Erase(NewShortParser(Unbounded[int16]())) })
	_ = r.Register(vtype.Of[int8](), func() Parser { return Erase(NewByteParser(Unbounded[int8]())) })
	_ = r.Register(vtype.Of[float32](), func() Parser { return Erase(NewFloatParser(Unbounded[float32]())) })
	_ = r.Register(vtype.Of[float64](), func() Parser { return Erase(NewDoubleParser(Unbounded[float64]())) })
	_ = r.Register(vtype.Of[bool](), func() Parser { return Erase(NewBooleanParser(false)) })
	_ = r.Register(vtype.Of[string](), func() Parser { return Erase(NewStringParser(WordMode)) })
	return r
}
