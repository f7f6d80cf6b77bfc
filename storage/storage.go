// Package storage holds the persistent-store collaborators: a read-only,
// seekable file store for animation containers and small key-value byte
// stores for the personality record.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// ErrNotFound is returned when a key is absent from a store.
var ErrNotFound = errors.New("storage: key not found")

// File is an open handle on a stored blob.
type File interface {
	io.Reader
	io.Seeker
	io.Closer
}

// FS opens stored blobs by key.
type FS interface {
	Open(key string) (File, error)
}

// KV is a byte store for small records.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

type fsStore struct {
	fsys fs.FS
}

// FromFS adapts an fs.FS (embed.FS on the device, os.DirFS on a host) to FS.
// Files returned by fsys must be seekable.
func FromFS(fsys fs.FS) FS {
	return fsStore{fsys: fsys}
}

func (s fsStore) Open(key string) (File, error) {
	f, err := s.fsys.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	file, ok := f.(File)
	if !ok {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: file is not seekable", key)
	}
	return file, nil
}

// Mount checks that fsys holds the given marker key (the asset manifest) and
// returns it as an FS. A failed mount is the only fatal storage error.
func Mount(fsys fs.FS, marker string) (FS, error) {
	store := FromFS(fsys)
	f, err := store.Open(marker)
	if err != nil {
		return nil, fmt.Errorf("mount: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("mount: %w", err)
	}
	return store, nil
}
