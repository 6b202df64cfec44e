package main

import (
	"database/sql"
	"fmt"
)

const (
	introKey     = "intro"
	defaultIntro = "Welcome to the free board. Be kind, keep it short."
)

func getSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %q: %w", key, err)
	}
	return value, nil
}

func setSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// seedSettings writes the default intro unless one is already stored.
func seedSettings(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM settings WHERE key = ?", introKey).Scan(&count); err != nil {
		return fmt.Errorf("checking %q setting: %w", introKey, err)
	}
	if count > 0 {
		return nil
	}
	return setSetting(db, introKey, defaultIntro)
}
