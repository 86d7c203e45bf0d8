package module

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/san-kum/turbinectl/internal/record"
)

// Native loads shared libraries with the platform dynamic loader.
type Native struct{}

func (Native) Load(path string) (Module, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}

	lib, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}

	fn, err := lib.lookup(EntryPoint)
	if err != nil {
		lib.close()
		return nil, fmt.Errorf("%w: %s in %s: %v", ErrEntryPoint, EntryPoint, path, err)
	}

	return &nativeModule{path: path, lib: lib, fn: fn}, nil
}

type nativeModule struct {
	path   string
	lib    library
	fn     uintptr
	closed bool
}

func (m *nativeModule) Call(rec *record.Exchange, fail *int32, in, out, msg *record.Text) {
	m.lib.call(m.fn,
		uintptr(unsafe.Pointer(&rec[0])),
		uintptr(unsafe.Pointer(fail)),
		uintptr(unsafe.Pointer(&in[0])),
		uintptr(unsafe.Pointer(&out[0])),
		uintptr(unsafe.Pointer(&msg[0])),
	)
	runtime.KeepAlive(rec)
	runtime.KeepAlive(fail)
	runtime.KeepAlive(in)
	runtime.KeepAlive(out)
	runtime.KeepAlive(msg)
}

func (m *nativeModule) Path() string { return m.path }

func (m *nativeModule) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.lib.close()
}
