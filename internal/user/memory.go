package user

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]User
	nextID int64
}

func NewMemoryRepository() Repository {
	return &memoryRepository{byID: make(map[int64]User)}
}

func (r *memoryRepository) Create(ctx context.Context, user *User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Username == user.Username {
			return 0, ErrUsernameExists
		}
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.byID[user.ID] = *user

	return user.ID, nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memoryRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	username = strings.TrimSpace(username)
	for _, u := range r.byID {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	r.byID[id] = u
	return nil
}
