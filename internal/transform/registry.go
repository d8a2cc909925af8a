package transform

import (
	"sort"

	"github.com/pkg/errors"
)

// Module is implemented by every step package. Register adds the package's
// steps to r; it is called once per registry at startup.
type Module interface {
	Register(r *Registry) error
}

// Registry maps step names, as they appear in configuration, to constructors.
// It is populated at startup and only read afterwards, so lookups need no
// locking once registration is done.
type Registry struct {
	ctors         map[string]Constructor
	allowOverride bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// AllowOverride makes a later registration of an existing name replace the
// earlier one instead of failing. Duplicate names are usually a mistake, and
// with this option they go unnoticed.
func AllowOverride() RegistryOption {
	return func(r *Registry) { r.allowOverride = true }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{ctors: map[string]Constructor{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register records name → ctor.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" {
		return errors.New("transform: register: empty step name")
	}
	if ctor == nil {
		return errors.Errorf("transform: register %q: nil constructor", name)
	}
	if _, exists := r.ctors[name]; exists && !r.allowOverride {
		return errors.Wrapf(ErrDuplicateTransformation, "register %q", name)
	}
	r.ctors[name] = ctor
	return nil
}

// Install calls Register on each module in order and stops at the first error.
func (r *Registry) Install(mods ...Module) error {
	for _, m := range mods {
		if err := m.Register(r); err != nil {
			return err
		}
	}
	return nil
}

// Build instantiates the step registered under name.
func (r *Registry) Build(name string, params Params) (Step, error) {
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, &UnknownTransformationError{Name: name}
	}
	if params == nil {
		params = Params{}
	}
	return ctor(params)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.ctors[name]
	return ok
}

// Names lists the registered step names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for n := range r.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
