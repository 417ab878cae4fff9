package kvstore

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

var _ Store = (*File)(nil)

// File keeps each key in its own file under a profile directory.
type File struct {
	dir string
}

// NewFile creates a File store rooted at dir, creating the directory when
// it does not exist yet.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create profile dir")
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get returns the stored value for key, or ErrNotFound.
func (f *File) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "read %s", key)
	}
	return data, nil
}

// Set stores value under key. The value is written to a temporary file and
// renamed into place so the slot stays readable if the process dies mid-write.
func (f *File) Set(key string, value []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return errors.Wrapf(err, "rename %s", key)
	}
	return nil
}

// Delete removes the value stored under key. Deleting an absent key is a no-op.
func (f *File) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}
