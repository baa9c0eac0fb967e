package users

import (
	"context"
	"errors"
	"strings"

	"github.com/Ayush22-04/xetor-backen/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingFields      = errors.New("username and password are required")
	ErrInvalidID          = errors.New("invalid admin user id")
)

// Service encapsulates admin account logic. Passwords are only ever stored as bcrypt hashes.
type Service struct {
	repo UserRepository
	cost int
}

func NewService(r UserRepository, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: r, cost: bcryptCost}
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Create adds an account.
func (s *Service) Create(ctx context.Context, username, password string) (*models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	h, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	u := &models.AdminUser{Username: username, PasswordHash: h}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.AdminUser, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]models.AdminUser, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.AdminUser, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Update renames the account and re-hashes the password only when one is given.
func (s *Service) Update(ctx context.Context, id, username, password string) (*models.AdminUser, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if username = strings.TrimSpace(username); username != "" {
		u.Username = username
	}
	if password != "" {
		h, err := s.hash(password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = h
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, oid)
}
