// Package settings holds per-user preference state (display currency,
// language, theme), persisted in a local SQLite database.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Settings are one user's UI preferences.
type Settings struct {
	DisplayCurrency string `json:"display_currency"`
	Language        string `json:"language"`
	Theme           string `json:"theme"`
}

// Default returns the preferences applied before a user has saved any.
func Default() Settings {
	return Settings{
		DisplayCurrency: "USD",
		Language:        "en",
		Theme:           "light",
	}
}

// Store persists settings in a local SQLite database.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create settings db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping settings database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run settings migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Load returns the stored settings for a user, or the defaults when the
// user has never saved any.
func (s *Store) Load(ctx context.Context, userID string) (Settings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT display_currency, language, theme FROM user_settings WHERE user_id = ?`,
		userID)

	var out Settings
	err := row.Scan(&out.DisplayCurrency, &out.Language, &out.Theme)
	if errors.Is(err, sql.ErrNoRows) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("load settings: %w", err)
	}
	return out, nil
}

// Save upserts a user's settings.
func (s *Store) Save(ctx context.Context, userID string, in Settings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, display_currency, language, theme)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   display_currency = excluded.display_currency,
		   language = excluded.language,
		   theme = excluded.theme`,
		userID, in.DisplayCurrency, in.Language, in.Theme)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
