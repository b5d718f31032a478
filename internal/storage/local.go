package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// PublicPrefix is the URL path local uploads are served under.
const PublicPrefix = "/public/uploads"

type Local struct {
	Dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &Local{Dir: dir}, nil
}

func (l *Local) Put(ctx context.Context, name, _ string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Base(name)
	if err := os.WriteFile(filepath.Join(l.Dir, clean), body, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", clean, err)
	}
	return path.Join(PublicPrefix, clean), nil
}

func (l *Local) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := filepath.Base(name)
	if err := os.Remove(filepath.Join(l.Dir, clean)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", clean, err)
	}
	return nil
}
