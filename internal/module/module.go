// Package module loads control-law modules that implement the DISCON
// calling convention and manages the resources that back them.
//
// A module is either a native shared library resolved through the
// platform loader or a Go implementation registered under a "go:" path
// (see [Registry]). Both are called through [Entry].
package module

import (
	"errors"

	"github.com/san-kum/turbinectl/internal/record"
)

// EntryPoint is the exported symbol every native control-law module provides.
const EntryPoint = "DISCON"

var (
	ErrNotFound    = errors.New("module: file not found")
	ErrLoad        = errors.New("module: load failed")
	ErrEntryPoint  = errors.New("module: entry point not found")
	ErrUnsupported = errors.New("module: native modules unsupported on this platform")
)

// Entry is a resolved DISCON entry point. The module reads and writes rec,
// sets *fail negative on failure and may leave a message in msg.
type Entry interface {
	Call(rec *record.Exchange, fail *int32, in, out, msg *record.Text)
}

// Module is a loaded control-law module.
type Module interface {
	Entry
	// Path is the file (or registry name) the module was loaded from.
	Path() string
	Close() error
}

// Loader turns a path into a loaded module with its entry point resolved.
type Loader interface {
	Load(path string) (Module, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (Module, error)

func (f LoaderFunc) Load(path string) (Module, error) { return f(path) }
