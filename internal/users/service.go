package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"promotore-backend/internal/shared/telemetry"
)

type Service struct {
	Repo Repo
	Cost int
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Cost: bcrypt.DefaultCost}
}

// Register hashes the password and stores a new user.
func (s *Service) Register(ctx context.Context, username, password, fullName, email string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, errors.New("username and password are required")
	}
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.Create(ctx, User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		Email:        strings.TrimSpace(email),
	})
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin seeds the administrator account when it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	_, err := s.Repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	user, err := s.Register(ctx, username, password, "Administrador", "admin@promotore.com")
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return nil
		}
		return fmt.Errorf("seed admin: %w", err)
	}
	telemetry.Info("users.admin_seeded", map[string]any{"user_id": user.ID, "username": user.Username})
	return nil
}

func (s *Service) GetByID(ctx context.Context, userID int64) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if userID <= 0 {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}
