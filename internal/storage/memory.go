package storage

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/school-bot/internal/models"
)

type MemoryStorage struct {
	mu    sync.RWMutex
	users map[string]models.UserProfile
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users: make(map[string]models.UserProfile),
	}
}

func (s *MemoryStorage) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	// Callers get a copy; the registry owns the stored profile.
	return &user, nil
}

func (s *MemoryStorage) UpsertUser(ctx context.Context, id string, grade, classNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[id] = models.UserProfile{
		ID:          id,
		Grade:       grade,
		ClassNumber: classNumber,
		UpdatedAt:   time.Now(),
	}
	return nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
