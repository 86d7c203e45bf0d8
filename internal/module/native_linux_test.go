//go:build linux

package module

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/san-kum/turbinectl/internal/record"
)

// The destructor leaves a marker file once the loader unmaps the library.
const disconSource = `
#include <stdio.h>
#include <string.h>

__attribute__((destructor)) static void unloaded(void) {
	FILE *f = fopen(MARKER, "w");
	if (f) fclose(f);
}

#ifdef WITH_ENTRY
void DISCON(float *avrSwap, int *aviFail, char *accInfile, char *avcOutname, char *avcMsg) {
	avrSwap[46] = avrSwap[1] * 2.0f;
	strcpy(avcMsg, "ok");
	*aviFail = 0;
}
#else
void not_discon(void) {}
#endif
`

func buildLibrary(t *testing.T, name string, entry bool) (lib, marker string) {
	t.Helper()
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no C compiler")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, name+".c")
	if err := os.WriteFile(src, []byte(disconSource), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	lib = filepath.Join(dir, name+".so")
	marker = filepath.Join(dir, name+".unloaded")
	args := []string{"-shared", "-fPIC", "-o", lib, "-DMARKER=" + strconv.Quote(marker)}
	if entry {
		args = append(args, "-DWITH_ENTRY")
	}
	out, err := exec.Command(cc, append(args, src)...).CombinedOutput()
	if err != nil {
		t.Fatalf("cc: %v\n%s", err, out)
	}
	return lib, marker
}

func unloaded(marker string) bool {
	_, err := os.Stat(marker)
	return err == nil
}

func TestNativeCall(t *testing.T) {
	lib, marker := buildLibrary(t, "discon", true)

	m, err := Native{}.Load(lib)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Path() != lib {
		t.Errorf("expected path %s, got %s", lib, m.Path())
	}

	var rec record.Exchange
	var in, out, msg record.Text
	fail := int32(-1)
	rec.Set(record.CurrentTime, 1.5)
	m.Call(&rec, &fail, &in, &out, &msg)
	if fail != 0 {
		t.Errorf("expected success flag, got %d", fail)
	}
	if got := rec.Float(record.DemandedTorque); got != 3 {
		t.Errorf("expected torque 3, got %v", got)
	}
	if got := msg.String(); got != "ok" {
		t.Errorf("expected message ok, got %q", got)
	}
	if unloaded(marker) {
		t.Fatal("library unloaded while still open")
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !unloaded(marker) {
		t.Error("expected library unloaded after Close")
	}
	if err := m.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestNativeMissingEntryPoint(t *testing.T) {
	lib, marker := buildLibrary(t, "plain", false)

	m, err := Native{}.Load(lib)
	if !errors.Is(err, ErrEntryPoint) {
		t.Fatalf("expected ErrEntryPoint, got %v", err)
	}
	if m != nil {
		t.Error("expected no module")
	}
	if !unloaded(marker) {
		t.Error("expected library unloaded after failed lookup")
	}
}

func TestNativeNotALibrary(t *testing.T) {
	path := writeLibrary(t)
	if _, err := (Native{}).Load(path); !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
}
