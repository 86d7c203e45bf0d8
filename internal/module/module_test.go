package module

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/turbinectl/internal/record"
)

// fileModule stands in for a native library: it requires its backing file
// to exist on every call, the way a mapped library needs its image.
type fileModule struct {
	path   string
	calls  int
	closed bool
}

func (m *fileModule) Call(rec *record.Exchange, fail *int32, in, out, msg *record.Text) {
	if _, err := os.Stat(m.path); err != nil {
		*fail = -1
		msg.Write(err.Error())
		return
	}
	m.calls++
	rec.Set(record.DemandedTorque, float64(m.calls))
	*fail = 0
}

func (m *fileModule) Path() string { return m.path }

func (m *fileModule) Close() error {
	m.closed = true
	return nil
}

type fakeLoader struct {
	loaded []*fileModule
	err    error
}

func (l *fakeLoader) Load(path string) (Module, error) {
	if l.err != nil {
		return nil, l.err
	}
	m := &fileModule{path: path}
	l.loaded = append(l.loaded, m)
	return m, nil
}

func writeLibrary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "discon.so")
	if err := os.WriteFile(path, []byte("\x7fELF fake controller"), 0o644); err != nil {
		t.Fatalf("write library: %v", err)
	}
	return path
}

func TestOpenShareable(t *testing.T) {
	src := writeLibrary(t)
	l := &fakeLoader{}

	h, err := Open(l, src, OpenOptions{Shareable: true})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if h.Private() || h.LoadedPath() != src {
		t.Errorf("shareable module should load in place, loaded %s", h.LoadedPath())
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !l.loaded[0].closed {
		t.Error("module not unloaded")
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("closing a shareable module must not touch the source file")
	}
}

func TestOpenPrivateCopiesAreIsolated(t *testing.T) {
	src := writeLibrary(t)
	tmp := t.TempDir()
	l := &fakeLoader{}

	a, err := Open(l, src, OpenOptions{TempDir: tmp})
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	b, err := Open(l, src, OpenOptions{TempDir: tmp})
	if err != nil {
		t.Fatalf("open b: %v", err)
	}

	if a.LoadedPath() == b.LoadedPath() {
		t.Fatalf("both handles loaded %s", a.LoadedPath())
	}
	if a.LoadedPath() == src || filepath.Ext(a.LoadedPath()) != ".so" {
		t.Errorf("unexpected private path %s", a.LoadedPath())
	}

	aPath := a.LoadedPath()
	if err := a.Close(); err != nil {
		t.Fatalf("close a: %v", err)
	}
	if _, err := os.Stat(aPath); !os.IsNotExist(err) {
		t.Errorf("private copy %s not removed", aPath)
	}

	var rec record.Exchange
	var fail int32
	var in, out, msg record.Text
	b.Call(&rec, &fail, &in, &out, &msg)
	if fail != 0 {
		t.Fatalf("second instance broken after first closed: %s", msg.String())
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close b: %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source file removed")
	}
}

func TestOpenFailureCleansUp(t *testing.T) {
	src := writeLibrary(t)
	tmp := t.TempDir()
	l := &fakeLoader{err: ErrEntryPoint}

	_, err := Open(l, src, OpenOptions{TempDir: tmp})
	if !errors.Is(err, ErrEntryPoint) {
		t.Fatalf("expected ErrEntryPoint, got %v", err)
	}
	entries, _ := os.ReadDir(tmp)
	if len(entries) != 0 {
		t.Errorf("private copy left behind: %v", entries)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(&fakeLoader{}, filepath.Join(t.TempDir(), "absent.dll"), OpenOptions{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = Native{}.Load(filepath.Join(t.TempDir(), "absent.so"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("native: expected ErrNotFound, got %v", err)
	}
}

func TestTempCopyReleaseTwice(t *testing.T) {
	c, err := CopyToTemp(writeLibrary(t), t.TempDir())
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if err := c.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := c.Release(); err != nil {
		t.Errorf("second release: %v", err)
	}
}

type constLaw struct{ torque float64 }

func (c *constLaw) Call(rec *record.Exchange, fail *int32, in, out, msg *record.Text) {
	rec.Set(record.DemandedTorque, c.torque)
}

func TestRegistryAndRouter(t *testing.T) {
	reg := NewRegistry()
	reg.Register("const", "constant torque", func() Entry { return &constLaw{torque: 5} })

	if names := reg.Names(); len(names) != 1 || names[0] != "const" {
		t.Errorf("names = %v", names)
	}

	r := Router{Builtin: reg, Native: &fakeLoader{err: ErrLoad}}

	// builtin paths never get copied even when not shareable
	h, err := Open(r, "go:const", OpenOptions{TempDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open builtin: %v", err)
	}
	if h.Private() {
		t.Error("builtin law should not be copied")
	}

	var rec record.Exchange
	var fail int32
	var in, out, msg record.Text
	h.Call(&rec, &fail, &in, &out, &msg)
	if rec.Get(record.DemandedTorque) != 5 {
		t.Errorf("torque = %v", rec.Get(record.DemandedTorque))
	}
	h.Close()

	if _, err := r.Load("go:missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Load("/opt/ctrl/discon.so"); !errors.Is(err, ErrLoad) {
		t.Errorf("expected native loader error, got %v", err)
	}
}
