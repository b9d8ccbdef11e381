// Package store persists colour history and user preferences in a local
// key-value store.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jmylchreest/pipette/internal/colour"
)

// Keys under which values are stored.
const (
	keyHistory    = "colorHistory"
	keyTheme      = "theme"
	keyCopyFormat = "copyFormat"
)

// ErrNotFound is returned by a backend when a key has no value.
var ErrNotFound = errors.New("key not found")

// Theme is the UI theme preference.
type Theme string

const (
	// ThemeLight is the default light theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark theme.
	ThemeDark Theme = "dark"
)

// ValidThemes returns the supported themes.
func ValidThemes() []Theme {
	return []Theme{ThemeLight, ThemeDark}
}

// ParseTheme converts a string to a Theme.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if slices.Contains(ValidThemes(), t) {
		return t, nil
	}
	return "", fmt.Errorf("invalid theme: %s (valid themes: %v)", s, ValidThemes())
}

// Preferences holds the persisted user preferences.
type Preferences struct {
	Theme      Theme         `json:"theme"`
	CopyFormat colour.Format `json:"copyFormat"`
}

// DefaultPreferences returns the preferences used before anything is saved.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, CopyFormat: colour.FormatHex}
}

// Store is the persistent state owned by the host.
type Store interface {
	// History returns the saved history, most recent first.
	History(ctx context.Context) ([]string, error)
	// SaveHistory replaces the saved history.
	SaveHistory(ctx context.Context, entries []string) error
	// Preferences returns the saved preferences, filling gaps with defaults.
	Preferences(ctx context.Context) (Preferences, error)
	// SavePreferences replaces the saved preferences.
	SavePreferences(ctx context.Context, prefs Preferences) error
	// Close releases the store.
	Close() error
}

// backend is the raw key-value layer a Store is built on.
type backend interface {
	get(key string, dest any) error
	set(values map[string]any) error
}

// Option configures a store.
type Option func(*kvStore)

// WithDefaultPreferences sets the preferences returned for values that have
// never been saved.
func WithDefaultPreferences(p Preferences) Option {
	return func(s *kvStore) {
		s.defaults = p
	}
}

// kvStore implements Store on top of a backend.
type kvStore struct {
	db       backend
	defaults Preferences
}

func newKVStore(db backend, opts []Option) kvStore {
	s := kvStore{db: db, defaults: DefaultPreferences()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s kvStore) History(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []string
	if err := s.db.get(keyHistory, &entries); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

func (s kvStore) SaveHistory(ctx context.Context, entries []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entries == nil {
		entries = []string{}
	}
	if err := s.db.set(map[string]any{keyHistory: entries}); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s kvStore) Preferences(ctx context.Context) (Preferences, error) {
	if err := ctx.Err(); err != nil {
		return Preferences{}, err
	}

	prefs := s.defaults
	if err := s.db.get(keyTheme, &prefs.Theme); err != nil && !errors.Is(err, ErrNotFound) {
		return Preferences{}, fmt.Errorf("load theme: %w", err)
	}
	if err := s.db.get(keyCopyFormat, &prefs.CopyFormat); err != nil && !errors.Is(err, ErrNotFound) {
		return Preferences{}, fmt.Errorf("load copy format: %w", err)
	}
	return prefs, nil
}

func (s kvStore) SavePreferences(ctx context.Context, prefs Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := ParseTheme(string(prefs.Theme)); err != nil {
		return err
	}
	if _, err := colour.ParseFormat(string(prefs.CopyFormat)); err != nil {
		return err
	}

	err := s.db.set(map[string]any{
		keyTheme:      prefs.Theme,
		keyCopyFormat: prefs.CopyFormat,
	})
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
