package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Persister loads and saves room snapshots. Load reports ErrNoSnapshot when
// nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
}

// FileStore keeps the snapshot as a single JSON document. Paths ending in
// .zst are zstd compressed.
type FileStore struct {
	path string
	now  func() time.Time
}

type FileStoreOpt func(*FileStore)

func WithFileClock(now func() time.Time) FileStoreOpt {
	return func(s *FileStore) {
		s.now = now
	}
}

func NewFileStore(path string, opts ...FileStoreOpt) *FileStore {
	s := &FileStore{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) compressed() bool {
	return strings.HasSuffix(s.path, ".zst")
}

func (s *FileStore) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	if s.compressed() {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer dec.Close()

		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing snapshot: %w", err)
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshalling snapshot %s: %w", filepath.Base(s.path), err)
	}
	return &snap, nil
}

func (s *FileStore) Save(_ context.Context, snap *Snapshot) error {
	snap.LastSaved = s.now().UnixMilli()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	if s.compressed() {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return fmt.Errorf("closing zstd writer: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	return atomicWrite(s.path, data, 0644)
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
