package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-farm/internal/storage"
)

type StorageBackend string

const (
	StorageBackendFile   StorageBackend = "file"
	StorageBackendSQLite StorageBackend = "sqlite"
)

type StorageConfig struct {
	Backend StorageBackend `json:"backend" env:"BACKEND"`
	Path    string         `json:"path" env:"PATH"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case "", StorageBackendFile, StorageBackendSQLite:
	default:
		el.Add(fmt.Errorf("unknown storage backend: %s", c.Backend))
	}
	if c.Path == "" {
		el.Add(fmt.Errorf("storage path is required"))
	}

	return el.Err()
}

// BuildPersister opens the configured snapshot store. The returned close
// function releases it and is never nil.
func (c *StorageConfig) BuildPersister() (storage.Persister, func() error, error) {
	switch c.Backend {
	case "", StorageBackendFile:
		return storage.NewFileStore(c.Path), func() error { return nil }, nil
	case StorageBackendSQLite:
		db, err := storage.OpenSQLite(c.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", c.Backend)
	}
}
