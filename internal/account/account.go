package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Owner is an authenticated account. It exclusively controls a set of people
// and, through them, every debt and transaction in its ledger.
type Owner struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

var (
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidUsername    = errors.New("username must not be empty")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
