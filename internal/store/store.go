// ABOUTME: SQLite persistence for settings and button configurations
// ABOUTME: Stores named button grids and key/value settings with mattn/go-sqlite3
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrConfigNotFound is returned when a configuration id does not exist
var ErrConfigNotFound = errors.New("configuration not found")

// Default grid size for configurations saved without one
const (
	DefaultRows = 3
	DefaultCols = 3
)

// Config is a named button grid
type Config struct {
	ID       int64
	Name     string
	Rows     int
	Cols     int
	LastUsed bool
}

// Button is one cell of a configuration
type Button struct {
	Label     string `json:"label"`
	AudioPath string `json:"audio_path"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
}

// Store wraps the soundboard database
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS configurations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	last_used INTEGER DEFAULT 0
);
CREATE TABLE IF NOT EXISTS buttons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	config_id INTEGER,
	label TEXT,
	audio_path TEXT,
	row INTEGER,
	col INTEGER,
	FOREIGN KEY(config_id) REFERENCES configurations(id)
);
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT
);
`

// Open opens (creating if needed) the database at path
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving database path: %w", err)
	}

	db, err := sql.Open("sqlite3", absPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates tables and adds grid size columns to older databases
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	columns, err := s.columns("configurations")
	if err != nil {
		return err
	}
	for _, col := range []struct {
		name string
		def  int
	}{{"rows", DefaultRows}, {"cols", DefaultCols}} {
		if columns[col.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE configurations ADD COLUMN \"%s\" INTEGER DEFAULT %d", col.name, col.def)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("error adding column %s: %w", col.name, err)
		}
	}
	return nil
}

func (s *Store) columns(table string) (map[string]bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("error reading table info: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("error scanning table info: %w", err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetSetting returns a setting value and whether it exists
func (s *Store) GetSetting(key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading setting %s: %w", key, err)
	}
	return value.String, value.Valid, nil
}

// SetSetting inserts or replaces a setting
func (s *Store) SetSetting(key, value string) error {
	if _, err := s.db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value); err != nil {
		return fmt.Errorf("error writing setting %s: %w", key, err)
	}
	return nil
}

// SaveConfig creates or replaces the named configuration's buttons and grid size
func (s *Store) SaveConfig(name string, buttons []Button, rows, cols int) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("configuration name cannot be empty")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR IGNORE INTO configurations (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("error creating configuration: %w", err)
	}

	var id int64
	if err := tx.QueryRow("SELECT id FROM configurations WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("error reading configuration id: %w", err)
	}

	if _, err := tx.Exec(`UPDATE configurations SET "rows" = ?, "cols" = ? WHERE id = ?`, rows, cols, id); err != nil {
		return 0, fmt.Errorf("error updating grid size: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM buttons WHERE config_id = ?", id); err != nil {
		return 0, fmt.Errorf("error clearing buttons: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO buttons (config_id, label, audio_path, row, col) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range buttons {
		var path sql.NullString
		if b.AudioPath != "" {
			path = sql.NullString{String: b.AudioPath, Valid: true}
		}
		if _, err := stmt.Exec(id, b.Label, path, b.Row, b.Col); err != nil {
			return 0, fmt.Errorf("error inserting button: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing configuration: %w", err)
	}
	return id, nil
}

// GetConfigButtons returns the buttons of a configuration ordered by cell
func (s *Store) GetConfigButtons(configID int64) ([]Button, error) {
	rows, err := s.db.Query("SELECT label, audio_path, row, col FROM buttons WHERE config_id = ? ORDER BY row, col", configID)
	if err != nil {
		return nil, fmt.Errorf("error querying buttons: %w", err)
	}
	defer rows.Close()

	var buttons []Button
	for rows.Next() {
		var (
			b     Button
			label sql.NullString
			path  sql.NullString
		)
		if err := rows.Scan(&label, &path, &b.Row, &b.Col); err != nil {
			return nil, fmt.Errorf("error scanning button: %w", err)
		}
		b.Label = label.String
		b.AudioPath = path.String
		buttons = append(buttons, b)
	}
	return buttons, rows.Err()
}

const configColumns = `id, name, COALESCE("rows", 3), COALESCE("cols", 3), COALESCE(last_used, 0)`

func scanConfig(scan func(dest ...any) error) (Config, error) {
	var (
		c        Config
		lastUsed int
	)
	if err := scan(&c.ID, &c.Name, &c.Rows, &c.Cols, &lastUsed); err != nil {
		return Config{}, err
	}
	c.LastUsed = lastUsed == 1
	return c, nil
}

// GetConfig returns a configuration by id
func (s *Store) GetConfig(id int64) (Config, error) {
	c, err := scanConfig(s.db.QueryRow("SELECT "+configColumns+" FROM configurations WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, fmt.Errorf("%w: %d", ErrConfigNotFound, id)
	}
	if err != nil {
		return Config{}, fmt.Errorf("error reading configuration: %w", err)
	}
	return c, nil
}

// GetConfigByName returns a configuration by name
func (s *Store) GetConfigByName(name string) (Config, error) {
	c, err := scanConfig(s.db.QueryRow("SELECT "+configColumns+" FROM configurations WHERE name = ?", name).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	if err != nil {
		return Config{}, fmt.Errorf("error reading configuration: %w", err)
	}
	return c, nil
}

// GetLastUsedConfig returns the configuration marked last used, if any
func (s *Store) GetLastUsedConfig() (Config, bool, error) {
	c, err := scanConfig(s.db.QueryRow("SELECT " + configColumns + " FROM configurations WHERE last_used = 1 LIMIT 1").Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, false, nil
	}
	if err != nil {
		return Config{}, false, fmt.Errorf("error reading last used configuration: %w", err)
	}
	return c, true, nil
}

// SetLastUsedConfig marks one configuration as last used
func (s *Store) SetLastUsedConfig(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE configurations SET last_used = 0"); err != nil {
		return fmt.Errorf("error clearing last used: %w", err)
	}
	res, err := tx.Exec("UPDATE configurations SET last_used = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error setting last used: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrConfigNotFound, id)
	}
	return tx.Commit()
}

// ListConfigs returns all configurations ordered by name
func (s *Store) ListConfigs() ([]Config, error) {
	rows, err := s.db.Query("SELECT " + configColumns + " FROM configurations ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("error listing configurations: %w", err)
	}
	defer rows.Close()

	var configs []Config
	for rows.Next() {
		c, err := scanConfig(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning configuration: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}
