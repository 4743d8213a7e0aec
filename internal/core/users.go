package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JonMunkholm/CompanyPortal/internal/logging"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords, and
// disabled accounts alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserExists is returned when creating a username that is taken.
var ErrUserExists = errors.New("user already exists")

// Role is a portal account role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("invalid enum: role %q must be %q or %q", raw, RoleUser, RoleAdmin)
	}
}

// User is a portal account.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

// Identity returns the service identity of the account.
func (u User) Identity() Identity {
	return Identity{Submitter: u.Username, Admin: u.Role == RoleAdmin}
}

// CreateUser hashes password and stores a new active account.
func (s *Service) CreateUser(ctx context.Context, username, password string, role Role) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("create user: %w", ErrEmptyCredentials)
	}
	if _, err := ParseRole(string(role)); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u := User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("create user %s: %w", username, err)
	}

	s.logAudit(ctx, AuditEvent{
		Action: ActionUserCreate,
		Detail: fmt.Sprintf("username=%s role=%s", username, role),
	})
	return nil
}

// ErrEmptyCredentials is returned when a username or password is blank.
var ErrEmptyCredentials = errors.New("required field: username and password must not be empty")

// Authenticate checks a username and password and returns the caller's
// identity.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	u, err := s.users.GetUser(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, fmt.Errorf("load user: %w", err)
	}
	if !u.Active {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return u.Identity(), nil
}

// SetUserActive enables or disables an account. Disabled accounts fail
// Authenticate but keep their staged records.
func (s *Service) SetUserActive(ctx context.Context, username string, active bool) error {
	if err := s.users.SetUserActive(ctx, username, active); err != nil {
		return fmt.Errorf("set user %s active=%t: %w", username, active, err)
	}
	logging.FromContext(ctx).Info("user status changed", "username", username, "active", active)
	return nil
}
