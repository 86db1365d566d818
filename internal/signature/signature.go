// Package signature computes the outline label and selection range of a
// syntax node.
package signature

import (
	"sync"

	"jsoutline/internal/ast"
)

// DefaultMaxPropertyLength bounds the property list rendered into Details.
const DefaultMaxPropertyLength = 50

// Signature is the display label, optional details and selectable range of a node.
type Signature struct {
	Label string `json:"label" yaml:"label"`
	// Details is empty unless the node is object shaped.
	Details string    `json:"details,omitempty" yaml:"details,omitempty"`
	Range   ast.Range `json:"range" yaml:"range"`
}

// Resolver assembles signatures. The zero value is not usable, use New.
type Resolver struct {
	maxPropertyLength int
	cache             *Cache
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxPropertyLength sets the budget of the property list in Details.
func WithMaxPropertyLength(n int) Option {
	return func(r *Resolver) {
		r.maxPropertyLength = n
	}
}

// WithCache memoizes computed signatures in c.
func WithCache(c *Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{maxPropertyLength: DefaultMaxPropertyLength}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = New()

// Compute returns the signature of n using default settings and no cache.
func Compute(n ast.Node) (Signature, bool) {
	return defaultResolver.Compute(n)
}

// Compute returns the signature of n. The boolean is false only when n is nil.
func (r *Resolver) Compute(n ast.Node) (Signature, bool) {
	if ast.IsNil(n) {
		return Signature{}, false
	}
	if r.cache != nil {
		if sig, ok := r.cache.Get(n); ok {
			return sig, true
		}
	}

	name := resolveName(n, r.maxPropertyLength)
	sig := Signature{
		Label:   name.Label,
		Details: name.Details,
		Range:   ResolveRange(n),
	}

	if r.cache != nil {
		sig = r.cache.Put(n, sig)
	}
	return sig, true
}

// Cache memoizes signatures by node identity. It is owned by the caller and
// safe for concurrent use.
type Cache struct {
	m sync.Map // ast.Node -> Signature
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the memoized signature of n.
func (c *Cache) Get(n ast.Node) (Signature, bool) {
	v, ok := c.m.Load(n)
	if !ok {
		return Signature{}, false
	}
	return v.(Signature), true
}

// Put stores sig for n unless a value is already present, and returns the stored value.
func (c *Cache) Put(n ast.Node, sig Signature) Signature {
	v, _ := c.m.LoadOrStore(n, sig)
	return v.(Signature)
}

// Forget drops the memoized signature of n.
func (c *Cache) Forget(n ast.Node) {
	c.m.Delete(n)
}
