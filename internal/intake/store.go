package intake

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Backend persists the full drink sequence. Every mutation rewrites it wholesale.
type Backend interface {
	LoadDrinks() ([]Drink, error)
	SaveDrinks(drinks []Drink) error
}

// Store is the insertion-ordered set of logged drinks. A nil backend keeps
// the drinks in memory only.
type Store struct {
	mu      sync.RWMutex
	drinks  []Drink
	backend Backend
	log     *slog.Logger
	// loadErr is set when the last Load failed; mutations other than Clear
	// refuse to run until it is cleared.
	loadErr error
}

// NewStore creates an empty Store. Call Load to read persisted drinks.
func NewStore(backend Backend, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{backend: backend, log: log}
}

// Load replaces the in-memory sequence with the persisted one. A failed or
// corrupt load leaves the store empty and read-only until Clear or a
// successful Load, so the unreadable rows are never overwritten implicitly.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drinks = nil
	s.loadErr = nil
	if s.backend == nil {
		return
	}
	drinks, err := s.backend.LoadDrinks()
	if err != nil {
		s.log.Error("load drinks failed, showing an empty list and refusing writes until cleared", "error", err)
		s.loadErr = err
		return
	}
	s.drinks = drinks
}

// LoadErr returns the error from the last Load, or nil.
func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Append adds d to the end of the sequence with a fresh ID and returns the stored copy.
func (s *Store) Append(d Drink) (Drink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return Drink{}, fmt.Errorf("append drink: %w", err)
	}
	d.ID = uuid.New()
	d.ConsumedAt = NormalizeTime(d.ConsumedAt)

	next := append(s.clone(), d)
	if err := s.commit(next); err != nil {
		return Drink{}, fmt.Errorf("append drink: %w", err)
	}
	return d, nil
}

// Remove deletes the drink with the given ID.
func (s *Store) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	for i, d := range s.drinks {
		if d.ID == id {
			return s.removeLocked(i)
		}
	}
	return fmt.Errorf("remove %s: %w", id, ErrNotFound)
}

// RemoveAt deletes the drink at position index (0-based, oldest first).
func (s *Store) RemoveAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writable(); err != nil {
		return fmt.Errorf("remove at %d: %w", index, err)
	}
	if index < 0 || index >= len(s.drinks) {
		return fmt.Errorf("remove at %d (have %d): %w", index, len(s.drinks), ErrIndexOutOfRange)
	}
	return s.removeLocked(index)
}

// Clear empties the sequence. It also discards unreadable persisted drinks
// left by a failed Load.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(nil); err != nil {
		return fmt.Errorf("clear drinks: %w", err)
	}
	s.loadErr = nil
	return nil
}

// All returns a copy of the drinks, oldest-logged first.
func (s *Store) All() []Drink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone()
}

// Len returns the number of logged drinks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drinks)
}

func (s *Store) writable() error {
	if s.loadErr != nil {
		return fmt.Errorf("%w: %v", ErrLoadFailed, s.loadErr)
	}
	return nil
}

func (s *Store) removeLocked(i int) error {
	next := make([]Drink, 0, len(s.drinks)-1)
	next = append(next, s.drinks[:i]...)
	next = append(next, s.drinks[i+1:]...)
	if err := s.commit(next); err != nil {
		return fmt.Errorf("remove drink: %w", err)
	}
	return nil
}

// commit persists next and only then makes it visible to readers.
func (s *Store) commit(next []Drink) error {
	if s.backend != nil {
		if err := s.backend.SaveDrinks(next); err != nil {
			return err
		}
	}
	s.drinks = next
	return nil
}

func (s *Store) clone() []Drink {
	out := make([]Drink, len(s.drinks))
	copy(out, s.drinks)
	return out
}
