//go:build windows

package module

import (
	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

type library struct {
	dll *windows.DLL
}

func openLibrary(path string) (library, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return library{}, err
	}
	return library{dll: dll}, nil
}

func (l library) lookup(name string) (uintptr, error) {
	proc, err := l.dll.FindProc(name)
	if err != nil {
		return 0, err
	}
	return proc.Addr(), nil
}

func (l library) call(fn uintptr, args ...uintptr) {
	purego.SyscallN(fn, args...)
}

func (l library) close() error {
	return l.dll.Release()
}
