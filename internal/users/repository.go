package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for user storage
type Repository interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context) ([]*User, error)
}

// InMemoryRepository is a process-lifetime implementation of Repository.
// All read-modify-write sequences on the same record must happen through
// Get/Update; the mutex only protects the map itself.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users: make(map[string]*User),
	}
}

// Create inserts a new user. It fails rather than silently overwriting an
// existing record.
func (r *InMemoryRepository) Create(ctx context.Context, user *User) error {
	if user == nil || user.ID == "" {
		return ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return ErrUserExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = user
	return nil
}

// Get retrieves a user by id
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByEmail retrieves the oldest user with the given email
func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var match *User
	for _, user := range r.users {
		if user.Email != email {
			continue
		}
		if match == nil || user.CreatedAt.Before(match.CreatedAt) {
			match = user
		}
	}
	if match == nil {
		return nil, ErrUserNotFound
	}
	return match, nil
}

// Update overwrites an existing user record
func (r *InMemoryRepository) Update(ctx context.Context, user *User) error {
	if user == nil || user.ID == "" {
		return ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	return nil
}

// List returns all users ordered by creation time
func (r *InMemoryRepository) List(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
