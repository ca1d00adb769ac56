// MeterDB is the keyed store converted frames are written to.
// Every canonical frame is stored under its meter key together with
// the dataset metadata and a per day summary.
package meterdb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	_ "time/tzdata"

	"github.com/NotCoffee418/dbmigrator"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type Store struct {
	db *sql.DB
}

// Open opens the store file at path. ModeOverwrite deletes any existing
// file so keys from an earlier run never survive into this one.
func Open(path, format string, mode Mode) (*Store, error) {
	if format == "" {
		format = FormatSQLite
	}
	if !strings.EqualFold(format, FormatSQLite) {
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}

	switch mode {
	case ModeOverwrite:
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("%w: create store dir: %v", types.ErrResource, err)
		}
		for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: remove old store: %v", types.ErrResource, err)
			}
		}
	case ModeAppend:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: store %s: %v", types.ErrResource, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown open mode %d", types.ErrResource, mode)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open store: %v", types.ErrResource, err)
	}
	// Verify connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open store: %v", types.ErrResource, err)
	}
	// One writer, and rows written inside a transaction stay on its connection
	db.SetMaxOpenConns(1)

	// Apply migrations
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)
	if _, err := db.Exec("SELECT 1 FROM frames LIMIT 1;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: store schema: %v", types.ErrResource, err)
	}

	logrus.WithFields(logrus.Fields{"path": path, "mode": mode}).Info("opened datastore")
	return &Store{db: db}, nil
}

// Close is safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("%w: close store: %v", types.ErrResource, err)
	}
	return nil
}
