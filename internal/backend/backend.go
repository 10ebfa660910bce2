// Package backend selects and wires the kv store implementation.
package backend

import (
	"fmt"
	"log/slog"

	"subtrack/internal/kv"
)

type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) IsValid() bool {
	return t == MemoryBackend || t == SQLiteBackend
}

type Config struct {
	Type         Type
	SQLiteDBPath string
}

// Result bundles the opened store with its cleanup hook.
type Result struct {
	Store   kv.Store
	Cleanup func() error
}

// Open creates the configured store.
func Open(config Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		store, err := kv.NewSQLite(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		logger.Info("Initialized in-memory backend")
		return &Result{
			Store:   kv.NewMemory(),
			Cleanup: func() error { return nil },
		}, nil
	}
}
