package memory

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/invoicegen/internal/domain/settings"
)

// SettingsStore holds the settings singleton behind a mutex. Every operation,
// reservation included, runs entirely under the lock.
type SettingsStore struct {
	mu       sync.Mutex
	settings *settings.Settings
	now      func() time.Time
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{now: time.Now}
}

var _ settings.Repository = (*SettingsStore)(nil)

// load must be called with mu held
func (s *SettingsStore) load() *settings.Settings {
	if s.settings == nil {
		s.settings = settings.Default(s.now())
	}
	return s.settings
}

func (s *SettingsStore) Get(_ context.Context) (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *s.load()
	return &c, nil
}

func (s *SettingsStore) Update(_ context.Context, update settings.Update) (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load()
	update.Apply(current)
	current.UpdatedAt = s.now().UTC()

	c := *current
	return &c, nil
}

func (s *SettingsStore) ReserveInvoiceNumber(_ context.Context) (*settings.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load()
	value := settings.EffectiveCounter(current.NextInvoiceNumber)
	current.NextInvoiceNumber = value + 1
	current.UpdatedAt = s.now().UTC()

	return &settings.Reservation{Prefix: current.Prefix, Value: value}, nil
}

// Seed replaces the stored record, used to start tests from a known counter
func (s *SettingsStore) Seed(st *settings.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *st
	s.settings = &c
}

// Clear drops the record so the next access recreates the defaults
func (s *SettingsStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = nil
}
