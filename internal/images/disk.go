package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var errTooLarge = errors.New("image exceeds size limit")

// DiskStore reads images from a directory. Lookups cannot escape it, even
// through symlinks.
type DiskStore struct {
	root *os.Root
}

func OpenDiskStore(dir string) (*DiskStore, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open image root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) ReadImage(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open image: %s is a directory", name)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, errTooLarge
	}
	return data, nil
}

func (s *DiskStore) Close() error {
	return s.root.Close()
}
