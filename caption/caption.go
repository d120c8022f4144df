// Package caption implements the keyed, templated message layer, an
// injected collaborator of the command core: the core never formats or
// writes a message anywhere itself, it only carries a caption key and
// substitution variables on a failure (cerr.Error) for whatever
// CaptionProvider the host wires in to render.
package caption

import "strings"

// Provider resolves a caption key, for a given sender, to a template
// string. A Provider that has no opinion on a key returns ok=false so
// the registry can fall through to the next one; the first provider returning non-empty
// wins.
type Provider interface {
	Provide(key string, sender any) (template string, ok bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(key string, sender any) (string, bool)

func (f ProviderFunc) Provide(key string, sender any) (string, bool) { return f(key, sender) }

// Registry holds an ordered list of Providers, queried in registration
// order until one resolves the key.
type Registry struct {
	providers []Provider
}

// NewRegistry builds a Registry from an ordered list of providers.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: append([]Provider(nil), providers...)}
}

// Add appends a provider, to be consulted after every provider already
// registered.
func (r *Registry) Add(p Provider) {
	r.providers = append(r.providers, p)
}

// Resolve returns the first non-empty template for key, or ok=false if
// no provider has one.
func (r *Registry) Resolve(key string, sender any) (string, bool) {
	for _, p := range r.providers {
		if tmpl, ok := p.Provide(key, sender); ok {
			return tmpl, true
		}
	}
	return "", false
}

// Render resolves key via Resolve, then substitutes every "<name>"
// placeholder in the template with vars["name"]. A placeholder
// with no matching variable is left untouched so a formatting bug is
// visible in the output rather than silently swallowed.
func (r *Registry) Render(key string, sender any, vars map[string]string) (string, bool) {
	tmpl, ok := r.Resolve(key, sender)
	if !ok {
		return "", false
	}
	return Substitute(tmpl, vars), true
}

// Substitute replaces every "<name>" occurrence in tmpl with vars[name].
func Substitute(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	var b strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] == '<' {
			if end := strings.IndexByte(tmpl[i:], '>'); end > 0 {
				name := tmpl[i+1 : i+end]
				if val, ok := vars[name]; ok {
					b.WriteString(val)
					i += end + 1
					continue
				}
			}
		}
		b.WriteByte(tmpl[i])
		i++
	}
	return b.String()
}

// MapProvider is a trivial Provider backed by a flat key->template map,
// ignoring sender. Useful for tests and as the default provider a host
// installs before layering sender-aware or locale-aware ones on top.
type MapProvider map[string]string

func (m MapProvider) Provide(key string, _ any) (string, bool) {
	tmpl, ok := m[key]
	return tmpl, ok
}
