package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	CreateOwner(ctx context.Context, o *Owner) error
	GetOwner(ctx context.Context, id uuid.UUID) (*Owner, error)

	// FindOwnerByUsername returns (nil, nil) when the username is unknown.
	FindOwnerByUsername(ctx context.Context, username string) (*Owner, error)

	DeleteOwner(ctx context.Context, id uuid.UUID) error
}

// Service manages owner accounts: registration with bcrypt-hashed
// credentials, password authentication, and account deletion.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, username, password string) (*Owner, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	existing, err := s.repo.FindOwnerByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up username: %w", err)
	}

	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	o := &Owner{Username: username, PasswordHash: string(hash)}
	if err := s.repo.CreateOwner(ctx, o); err != nil {
		return nil, fmt.Errorf("creating owner: %w", err)
	}

	return o, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and wrong
// passwords fail identically so the response does not reveal which it was.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Owner, error) {
	o, err := s.repo.FindOwnerByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up username: %w", err)
	}

	if o == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Owner, error) {
	return s.repo.GetOwner(ctx, id)
}

// Delete removes an owner account and, through cascade, every person, debt,
// and transaction it owns.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteOwner(ctx, id)
}
