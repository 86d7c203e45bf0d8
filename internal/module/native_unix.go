//go:build darwin || freebsd || linux

package module

import "github.com/ebitengine/purego"

type library uintptr

func openLibrary(path string) (library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return 0, err
	}
	return library(h), nil
}

func (l library) lookup(name string) (uintptr, error) {
	return purego.Dlsym(uintptr(l), name)
}

func (l library) call(fn uintptr, args ...uintptr) {
	purego.SyscallN(fn, args...)
}

func (l library) close() error {
	return purego.Dlclose(uintptr(l))
}
