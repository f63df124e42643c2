package profile

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	profileKey  = "profile"
	settingsKey = "settings"
)

// ErrNotFound is returned when the requested record has never been saved.
var ErrNotFound = errors.New("record not found")

// Store persists the candidate profile and backend settings as two
// independently keyed records. Records are read at startup and overwritten
// wholesale on explicit save; there are no partial updates.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the record store at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS records (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveProfile validates and stores the profile, replacing any previous one.
func (s *Store) SaveProfile(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.NormalizeFormats()

	return s.save(profileKey, p)
}

// LoadProfile returns the stored profile or ErrNotFound.
func (s *Store) LoadProfile() (*Profile, error) {
	var p Profile
	if err := s.load(profileKey, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveSettings stores the backend settings record.
func (s *Store) SaveSettings(settings *Settings) error {
	if settings == nil {
		return errors.New("settings are required")
	}
	return s.save(settingsKey, settings)
}

// LoadSettings returns the stored settings or ErrNotFound.
func (s *Store) LoadSettings() (*Settings, error) {
	var settings Settings
	if err := s.load(settingsKey, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Store) save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}

	_, err = s.db.Exec(`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: save %s: %w", key, err)
	}
	return nil
}

func (s *Store) load(key string, target any) error {
	var data string
	err := s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: load %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), target); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}
