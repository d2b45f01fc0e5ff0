package storage

import (
	"sync"

	"github.com/wekolo/justified-grid/internal/grid"
)

var defaultConstraints = grid.Constraints{
	AvailableWidth: 1526,
	MinLineHeight:  200,
	MaxLineHeight:  575,
	MinItemWidth:   175,
	Gap:            4,
}

// Storage provides access to the layout constraints used by the justifier.
type Storage interface {
	GetConstraints() (grid.Constraints, error)
	SetConstraints(c grid.Constraints) error
}

// MemoryStorage keeps layout constraints in-memory and guards access with a
// RWMutex. Constraints are plain values, so reads never alias stored state.
type MemoryStorage struct {
	mu          sync.RWMutex
	constraints grid.Constraints
}

// NewMemoryStorage initialises storage with the default constraints.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{constraints: defaultConstraints}
}

// DefaultConstraints returns the default layout constraints.
func DefaultConstraints() grid.Constraints {
	return defaultConstraints
}

// GetConstraints returns the currently configured constraints.
func (s *MemoryStorage) GetConstraints() (grid.Constraints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.constraints, nil
}

// SetConstraints validates and stores the provided constraints.
func (s *MemoryStorage) SetConstraints(c grid.Constraints) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.constraints = c
	s.mu.Unlock()

	return nil
}
