//go:build !(darwin || freebsd || linux || windows)

package module

type library struct{}

func openLibrary(path string) (library, error) {
	return library{}, ErrUnsupported
}

func (library) lookup(name string) (uintptr, error) { return 0, ErrUnsupported }

func (library) call(fn uintptr, args ...uintptr) {}

func (library) close() error { return nil }
