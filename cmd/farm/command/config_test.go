package command

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-farm/internal/storage"
	"github.com/pixil98/go-testutil"
)

func validConfig() Config {
	return Config{
		Listener: ListenerConfig{Addr: "127.0.0.1:8080"},
		Storage:  StorageConfig{Backend: StorageBackendFile, Path: "data/room.json"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(c *Config)
		expErr bool
	}{
		"valid": {
			mutate: func(c *Config) {},
		},
		"default backend": {
			mutate: func(c *Config) { c.Storage.Backend = "" },
		},
		"sqlite backend": {
			mutate: func(c *Config) { c.Storage.Backend = StorageBackendSQLite },
		},
		"unknown backend": {
			mutate: func(c *Config) { c.Storage.Backend = "redis" },
			expErr: true,
		},
		"missing storage path": {
			mutate: func(c *Config) { c.Storage.Path = "" },
			expErr: true,
		},
		"missing addr": {
			mutate: func(c *Config) { c.Listener.Addr = "" },
			expErr: true,
		},
		"addr without port": {
			mutate: func(c *Config) { c.Listener.Addr = "localhost" },
			expErr: true,
		},
		"bad write timeout": {
			mutate: func(c *Config) { c.Listener.WriteTimeout = "soon" },
			expErr: true,
		},
		"bad nats timeout": {
			mutate: func(c *Config) { c.Nats.StartTimeout = "10" },
			expErr: true,
		},
		"nats random port": {
			mutate: func(c *Config) { c.Nats.Port = -1 },
		},
		"nats port out of range": {
			mutate: func(c *Config) { c.Nats.Port = 70000 },
			expErr: true,
		},
		"missing tuning file": {
			mutate: func(c *Config) { c.Room.TuningPath = "does/not/exist.yaml" },
			expErr: true,
		},
		"negative inbox": {
			mutate: func(c *Config) { c.Room.InboxSize = -1 },
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			testutil.AssertEqual(t, "error", err != nil, tt.expErr)
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("FARM_LISTENER_ADDR", "0.0.0.0:9000")
	t.Setenv("FARM_STORAGE_BACKEND", "sqlite")
	t.Setenv("FARM_NATS_PORT", "4333")
	t.Setenv("FARM_ROOM_INBOX_SIZE", "64")

	c := validConfig()
	c.Listener.OutboxSize = 12
	if err := c.ApplyEnv(); err != nil {
		t.Fatalf("applying env: %v", err)
	}

	testutil.AssertEqual(t, "addr", c.Listener.Addr, "0.0.0.0:9000")
	testutil.AssertEqual(t, "outbox kept", c.Listener.OutboxSize, 12)
	testutil.AssertEqual(t, "backend", c.Storage.Backend, StorageBackendSQLite)
	testutil.AssertEqual(t, "path kept", c.Storage.Path, "data/room.json")
	testutil.AssertEqual(t, "nats port", c.Nats.Port, 4333)
	testutil.AssertEqual(t, "inbox", c.Room.InboxSize, 64)
}

func TestConfig_ApplyEnvInvalid(t *testing.T) {
	t.Setenv("FARM_NATS_PORT", "lots")

	c := validConfig()
	if err := c.ApplyEnv(); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}

func TestStorageConfig_BuildPersister(t *testing.T) {
	tests := map[string]struct {
		backend StorageBackend
		file    string
		expErr  bool
	}{
		"file":    {backend: StorageBackendFile, file: "room.json"},
		"default": {backend: "", file: "room.json"},
		"sqlite":  {backend: StorageBackendSQLite, file: "room.db"},
		"unknown": {backend: "tape", file: "room.bin", expErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := StorageConfig{Backend: tt.backend, Path: filepath.Join(t.TempDir(), tt.file)}
			p, closeStore, err := c.BuildPersister()
			testutil.AssertEqual(t, "error", err != nil, tt.expErr)
			if tt.expErr {
				return
			}
			defer closeStore()

			_, err = p.Load(t.Context())
			if !errors.Is(err, storage.ErrNoSnapshot) {
				t.Errorf("expected empty store, got %v", err)
			}
		})
	}
}

func TestRoomConfig_LoadTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("plots: 9\nheartbeat_timeout: 20s\n"), 0644); err != nil {
		t.Fatalf("writing tuning: %v", err)
	}

	c := RoomConfig{TuningPath: path}
	if err := c.validate(); err != nil {
		t.Fatalf("validating: %v", err)
	}

	tu, err := c.loadTuning()
	if err != nil {
		t.Fatalf("loading tuning: %v", err)
	}
	testutil.AssertEqual(t, "plots", tu.Plots, 9)
	testutil.AssertEqual(t, "heartbeat", tu.HeartbeatTimeout.String(), "20s")
	testutil.AssertEqual(t, "pickups default", tu.Pickups, 6)
}
