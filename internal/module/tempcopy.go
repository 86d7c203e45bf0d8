package module

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TempCopy is a private copy of a module file under a random name. The
// copy exists from CopyToTemp until Release.
type TempCopy struct {
	path string
}

// CopyToTemp copies src into dir (os.TempDir when empty) under a fresh
// random name that keeps the source extension.
func CopyToTemp(src, dir string) (*TempCopy, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return nil, err
	}
	defer in.Close()

	dst := filepath.Join(dir, uuid.NewString()+filepath.Ext(src))
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o755)
	if err != nil {
		return nil, fmt.Errorf("module: create private copy: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return nil, fmt.Errorf("module: copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("module: copy %s: %w", src, err)
	}

	return &TempCopy{path: dst}, nil
}

func (c *TempCopy) Path() string { return c.path }

// Release deletes the copy. It is safe to call more than once.
func (c *TempCopy) Release() error {
	if c == nil || c.path == "" {
		return nil
	}
	err := os.Remove(c.path)
	c.path = ""
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
