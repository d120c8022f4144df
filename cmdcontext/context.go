// Package cmdcontext implements the per-execution Context and Flag
// Context: a typed key/value bag keyed by (name,
// ValueType), plus the flag-value bag, the sender, the raw input line,
// and the running list of parser failures used to surface the deepest
// one.
package cmdcontext

import (
	"sync"

	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/vtype"
)

type key struct {
	name string
	vt   any // vtype.Type.Key()
}

// Context is a per-execution typed value bag. A Context is created fresh
// for each Manager.Execute/Suggest call and is dropped once the handler
// returns; it must not be retained past that call.
type Context struct {
	mu     sync.RWMutex
	values map[key]any
	types  map[string]vtype.Type

	sender  any
	rawLine string

	flags *FlagContext

	deepest *cerr.Error
}

// New constructs an empty Context for the given sender and raw input line.
func New(sender any, rawLine string) *Context {
	return &Context{
		values:  make(map[key]any),
		types:   make(map[string]vtype.Type),
		sender:  sender,
		rawLine: rawLine,
		flags:   newFlagContext(),
	}
}

// Sender returns the sender that issued this execution.
func (c *Context) Sender() any { return c.sender }

// RawInput returns the full input line being parsed.
func (c *Context) RawInput() string { return c.rawLine }

// Flags returns the flag-value bag for this execution.
func (c *Context) Flags() *FlagContext { return c.flags }

// Store records value under name with the given ValueType, overwriting
// any prior entry of the same name and type.
func (c *Context) Store(name string, vt vtype.Type, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key{name: name, vt: vt.Key()}] = value
	c.types[name] = vt
}

// Get returns the value stored under name, whose declared type must
// match vt, and whether it was present.
func (c *Context) Get(name string, vt vtype.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key{name: name, vt: vt.Key()}]
	return v, ok
}

// GetOrDefault returns the value stored under name, or def if absent.
func (c *Context) GetOrDefault(name string, vt vtype.Type, def any) any {
	if v, ok := c.Get(name, vt); ok {
		return v
	}
	return def
}

// TypeOf returns the ValueType most recently stored under name, so a
// caller holding only a name can validate an access against the key's
// declared type descriptor.
func (c *Context) TypeOf(name string) (vtype.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vt, ok := c.types[name]
	return vt, ok
}

// Contains reports whether name has been stored under vt.
func (c *Context) Contains(name string, vt vtype.Type) bool {
	_, ok := c.Get(name, vt)
	return ok
}

// ComputeIfAbsent returns the existing value under (name, vt), or calls
// compute, stores, and returns its result if absent.
func (c *Context) ComputeIfAbsent(name string, vt vtype.Type, compute func() any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key{name: name, vt: vt.Key()}
	if v, ok := c.values[k]; ok {
		return v
	}
	v := compute()
	c.values[k] = v
	c.types[name] = vt
	return v
}

// NoteFailure records a parser failure encountered during traversal,
// keeping only the deepest one seen so far.
func (c *Context) NoteFailure(err *cerr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deepest = cerr.Deepest(c.deepest, err)
}

// DeepestFailure returns the deepest failure recorded via NoteFailure,
// or nil if none were recorded.
func (c *Context) DeepestFailure() *cerr.Error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deepest
}
