package module

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Scheme prefixes module paths that name a registered Go control law
// rather than a file, e.g. "go:baseline".
const Scheme = "go:"

// IsBuiltin reports whether path names a registered Go control law.
func IsBuiltin(path string) bool { return strings.HasPrefix(path, Scheme) }

// Factory builds a fresh, independent control-law instance.
type Factory func() Entry

// Registry maps names to Go control laws and loads them like files.
type Registry struct {
	mu    sync.RWMutex
	laws  map[string]Factory
	descr map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		laws:  make(map[string]Factory),
		descr: make(map[string]string),
	}
}

func (r *Registry) Register(name, description string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.laws[name] = f
	r.descr[name] = description
}

// Load instantiates the law named by path ("go:<name>"). Every load gets
// its own instance, so Go laws never share state between controllers.
func (r *Registry) Load(path string) (Module, error) {
	name := strings.TrimPrefix(path, Scheme)
	r.mu.RLock()
	f, ok := r.laws[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no registered control law %q", ErrNotFound, name)
	}
	return &goModule{Entry: f(), path: path}, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.laws))
	for name := range r.laws {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Description(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descr[name]
}

type goModule struct {
	Entry
	path string
}

func (m *goModule) Path() string { return m.path }

func (m *goModule) Close() error {
	if c, ok := m.Entry.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Router sends "go:" paths to Builtin and everything else to Native.
type Router struct {
	Builtin *Registry
	Native  Loader
}

func (r Router) Load(path string) (Module, error) {
	if IsBuiltin(path) {
		if r.Builtin == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return r.Builtin.Load(path)
	}
	native := r.Native
	if native == nil {
		native = Native{}
	}
	return native.Load(path)
}
