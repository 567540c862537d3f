package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trackshelf/internal/favorites"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Database wraps a *sql.DB holding the favorites table. It implements
// favorites.Backend and is safe for concurrent use because the underlying
// *sql.DB is concurrency-safe.
type Database struct {
	conn   *sql.DB
	logger *logrus.Logger
	fresh  bool

	insertFavoriteStmt *sql.Stmt
	listFavoritesStmt  *sql.Stmt
}

var (
	_ favorites.Backend = (*Database)(nil)
	_ favorites.Fresh   = (*Database)(nil)
)

// NewDatabase opens (or creates) a SQLite database at the provided path and
// ensures the favorites table exists. Caller should Close() it when
// finished.
func NewDatabase(dbPath string, logger *logrus.Logger) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(15 * time.Minute)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			logger.WithError(err).WithField("pragma", pragma).Warn("Failed to set pragma")
		}
	}

	db := &Database{
		conn:   conn,
		logger: logger,
	}

	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := db.prepareStatements(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	logger.WithField("db_path", dbPath).Debug("Favorites database initialized")
	return db, nil
}

// createTables is idempotent and safe to call multiple times.
func (db *Database) createTables() error {
	var existing int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'favorites'`).Scan(&existing)
	if err != nil {
		return err
	}
	db.fresh = existing == 0

	favoritesTable := `
	CREATE TABLE IF NOT EXISTS favorites (
		track_id INTEGER PRIMARY KEY,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := db.conn.Exec(favoritesTable); err != nil {
		return err
	}
	return nil
}

func (db *Database) prepareStatements() error {
	var err error

	db.insertFavoriteStmt, err = db.conn.Prepare(`INSERT OR IGNORE INTO favorites (track_id) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert favorite statement: %w", err)
	}

	db.listFavoritesStmt, err = db.conn.Prepare(`SELECT track_id FROM favorites ORDER BY track_id`)
	if err != nil {
		return fmt.Errorf("failed to prepare list favorites statement: %w", err)
	}

	return nil
}

// Fresh reports whether the favorites table was created by this open.
func (db *Database) Fresh() bool {
	return db.fresh
}

// Load returns the stored favorite ids in ascending order.
func (db *Database) Load() ([]int, error) {
	rows, err := db.listFavoritesStmt.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Save replaces the stored favorites with ids in one transaction.
func (db *Database) Save(ids []int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM favorites`); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}

	stmt := tx.Stmt(db.insertFavoriteStmt)
	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			db.logger.WithError(err).WithField("track_id", id).Error("Failed to insert favorite")
			return fmt.Errorf("failed to insert favorite %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit favorites: %w", err)
	}
	return nil
}

// Close closes prepared statements and the connection.
func (db *Database) Close() error {
	statements := []*sql.Stmt{
		db.insertFavoriteStmt,
		db.listFavoritesStmt,
	}

	for _, stmt := range statements {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				db.logger.WithError(err).Error("Failed to close prepared statement")
			}
		}
	}

	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
