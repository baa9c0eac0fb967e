package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository keeps admin accounts in memory; usernames stay unique.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.AdminUser
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[primitive.ObjectID]models.AdminUser{}}
}

func (m *MemoryUserRepository) taken(username string, except primitive.ObjectID) bool {
	for id, u := range m.users {
		if id != except && u.Username == username {
			return true
		}
	}
	return false
}

func (m *MemoryUserRepository) Create(ctx context.Context, u *models.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken(u.Username, primitive.NilObjectID) {
		return ErrDuplicateUsername
	}
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryUserRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.AdminUser, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *MemoryUserRepository) Update(ctx context.Context, u *models.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if m.taken(u.Username, u.ID) {
		return ErrDuplicateUsername
	}
	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}
