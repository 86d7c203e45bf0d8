package module

import (
	"go.uber.org/zap"
)

// Handle owns a loaded module and, for non-shareable modules, the private
// copy it was loaded from. Close releases both.
type Handle struct {
	Module
	source string
	copy   *TempCopy
	log    *zap.Logger
}

// OpenOptions configures Open.
type OpenOptions struct {
	// Shareable modules are loaded straight from their file. Others are
	// copied to a private temporary file first so that each handle gets its
	// own instance of the library's global state.
	Shareable bool
	// TempDir receives private copies; os.TempDir when empty.
	TempDir string
	Logger  *zap.Logger
}

// Open loads the module at path through l. On failure nothing is left
// loaded and no copy remains on disk.
func Open(l Loader, path string, opts OpenOptions) (*Handle, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	h := &Handle{source: path, log: log}
	loadPath := path
	if !opts.Shareable && !IsBuiltin(path) {
		c, err := CopyToTemp(path, opts.TempDir)
		if err != nil {
			return nil, err
		}
		h.copy = c
		loadPath = c.Path()
		log.Debug("private module copy created", zap.String("source", path), zap.String("copy", loadPath))
	}

	m, err := l.Load(loadPath)
	if err != nil {
		h.releaseCopy()
		return nil, err
	}
	h.Module = m
	log.Info("control-law module loaded", zap.String("source", path), zap.String("loaded", loadPath))
	return h, nil
}

// Source is the path Open was called with.
func (h *Handle) Source() string { return h.source }

// LoadedPath is the file actually loaded: the private copy if one was made.
func (h *Handle) LoadedPath() string {
	if h.copy != nil {
		return h.copy.Path()
	}
	return h.source
}

// Private reports whether the handle runs from a private copy.
func (h *Handle) Private() bool { return h.copy != nil }

// Close unloads the module and removes any private copy. A failure to
// remove the copy is logged and not returned.
func (h *Handle) Close() error {
	var err error
	if h.Module != nil {
		err = h.Module.Close()
		h.Module = nil
		h.log.Info("control-law module unloaded", zap.String("source", h.source))
	}
	h.releaseCopy()
	return err
}

func (h *Handle) releaseCopy() {
	if h.copy == nil {
		return
	}
	path := h.copy.Path()
	if err := h.copy.Release(); err != nil {
		h.log.Warn("could not remove private module copy", zap.String("copy", path), zap.Error(err))
	}
	h.copy = nil
}
