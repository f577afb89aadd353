package preferences

import (
	"fmt"
	"strings"
	"sync"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps s onto a known theme. Anything unrecognised is light.
func ParseTheme(s string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(s))) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Themes tracks the current theme and tells subscribers when it changes.
type Themes struct {
	store Store

	mu        sync.Mutex
	current   Theme
	observers map[int]func(Theme)
	nextID    int
}

// LoadThemes reads the persisted theme from store.
func LoadThemes(store Store) (*Themes, error) {
	v, _, err := store.Get(KeyTheme)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme: %w", err)
	}
	return &Themes{store: store, current: ParseTheme(v), observers: map[int]func(Theme){}}, nil
}

// Current returns the active theme.
func (t *Themes) Current() Theme {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Set switches to theme, persisting it and notifying subscribers. Setting the
// current theme again does nothing.
func (t *Themes) Set(theme Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("unknown theme %q (want light or dark)", theme)
	}

	t.mu.Lock()
	if t.current == theme {
		t.mu.Unlock()
		return nil
	}
	if err := t.store.Set(KeyTheme, string(theme)); err != nil {
		t.mu.Unlock()
		return fmt.Errorf("failed to persist theme: %w", err)
	}
	t.current = theme
	observers := make([]func(Theme), 0, len(t.observers))
	for _, fn := range t.observers {
		observers = append(observers, fn)
	}
	t.mu.Unlock()

	for _, fn := range observers {
		fn(theme)
	}
	return nil
}

// Toggle flips between light and dark.
func (t *Themes) Toggle() error {
	if t.Current() == ThemeDark {
		return t.Set(ThemeLight)
	}
	return t.Set(ThemeDark)
}

// Subscribe registers fn to run after every theme change and returns a func
// that removes it.
func (t *Themes) Subscribe(fn func(Theme)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.observers[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.observers, id)
	}
}
