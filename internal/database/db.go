package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/chatify/chatify-cli/internal/config"
)

type DB struct {
	*sqlx.DB
}

// Open opens (creating if needed) the local state database. The client is a
// single process, so the pool is capped at one connection and writes are
// serialized by SQLite itself.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.StateDirPerm); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, config.StateBusyTimeout.Milliseconds())
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	db.SetMaxOpenConns(config.StateMaxOpenConns)

	return &DB{db}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.DB.Close()
}
