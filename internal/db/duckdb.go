// Package db keeps a DuckDB copy of the loaded locations for ad-hoc queries.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/c3r4h/dptkp/internal/service"
)

// Config holds database configuration. An empty DataDir opens an
// in-memory database.
type Config struct {
	DataDir string
	DBName  string
}

// Store is a DuckDB database holding the locations table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database described by cfg.
func Open(cfg Config) (*Store, error) {
	dsn := ""
	if cfg.DataDir != "" {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
		}
		name := cfg.DBName
		if name == "" {
			name = "dptkp"
		}
		dsn = filepath.Join(duckdbDir, name+".duckdb")
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: %w", err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const createLocations = `CREATE OR REPLACE TABLE locations (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	lat DOUBLE NOT NULL,
	lng DOUBLE NOT NULL,
	category VARCHAR,
	categories VARCHAR,
	open_hours VARCHAR,
	close_hours VARCHAR,
	info VARCHAR,
	tubruk DOUBLE,
	hot_coffee DOUBLE,
	ac BOOLEAN,
	smoking VARCHAR,
	parking_car INTEGER,
	parking_motor INTEGER,
	gmaps VARCHAR,
	instagram VARCHAR
)`

const insertLocation = `INSERT INTO locations VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ReplaceLocations recreates the locations table from locs in one transaction.
func (s *Store) ReplaceLocations(ctx context.Context, locs []service.Location) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createLocations); err != nil {
		return fmt.Errorf("create locations: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertLocation)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range locs {
		if _, err := stmt.ExecContext(ctx,
			l.ID, l.Name, l.Lat, l.Lng,
			l.PrimaryCategory(), strings.Join(l.Category, ","),
			l.OpenHours, l.CloseHours, nullString(l.Info), nullFloat(l.Tubruk),
			l.HotCoffee, l.AC, l.Smoking, l.Parking.Car, l.Parking.Motor,
			l.GMaps, nullString(l.Instagram),
		); err != nil {
			return fmt.Errorf("insert location %s: %w", l.ID, err)
		}
	}
	return tx.Commit()
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
