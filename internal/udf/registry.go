package udf

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds functions by name. Lookups ignore case, as SQL does.
//
// A Registry is not safe for concurrent modification; populate it before
// sharing it.
type Registry struct {
	funcs map[string]Function
}

// NewRegistry returns a registry holding fns. Later functions replace
// earlier ones with the same name.
func NewRegistry(fns ...Function) *Registry {
	r := &Registry{funcs: make(map[string]Function, len(fns))}
	for _, fn := range fns {
		r.funcs[strings.ToLower(fn.Name())] = fn
	}
	return r
}

// Builtin returns a registry of the built-in functions.
func Builtin(opts ...Option) *Registry {
	return NewRegistry(Catalog(opts...)...)
}

// Register adds fn. It fails when the name is taken.
func (r *Registry) Register(fn Function) error {
	key := strings.ToLower(fn.Name())
	if _, ok := r.funcs[key]; ok {
		return fmt.Errorf("function %s already registered", fn.Name())
	}
	r.funcs[key] = fn
	return nil
}

// Lookup finds a function by name.
func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.funcs[strings.ToLower(name)]
	return fn, ok
}

// Bind looks up name and binds it with args.
func (r *Registry) Bind(name string, args []ArgSpec) (Instance, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, newBindError(ErrCodeUnknownFunction, name, "no such function")
	}
	return fn.Bind(args)
}

// List returns all functions sorted by name.
func (r *Registry) List() []Function {
	fns := make([]Function, 0, len(r.funcs))
	for _, fn := range r.funcs {
		fns = append(fns, fn)
	}
	sort.Slice(fns, func(i, j int) bool {
		return fns[i].Name() < fns[j].Name()
	})
	return fns
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.funcs)
}

// Subset returns a registry holding only the named functions. An empty
// list selects everything. Unknown names are an error.
func (r *Registry) Subset(names []string) (*Registry, error) {
	if len(names) == 0 {
		return NewRegistry(r.List()...), nil
	}

	sub := NewRegistry()
	for _, name := range names {
		fn, ok := r.Lookup(name)
		if !ok {
			return nil, newBindError(ErrCodeUnknownFunction, name, "cannot enable unknown function")
		}
		sub.funcs[strings.ToLower(fn.Name())] = fn
	}
	return sub, nil
}
