package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
	EnsureUser(ctx context.Context, username, password string) (*User, bool, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

type service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) Service {
	return &service{repo: repo, cost: bcrypt.DefaultCost}
}

// NewServiceWithCost is NewService with a custom bcrypt cost. Tests use
// bcrypt.MinCost to stay fast.
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

// dummyHash is compared against when the username is unknown so that a
// missing account costs about as much as a wrong password.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z5Z4nU5s5Wg0xZ8Rj6c1b6Q6")

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			log.Warn().Str("username", username).Msg("service: login attempt for unknown user")
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Str("username", username).Msg("service: failed to load user for login")
		return nil, fmt.Errorf("service: failed to authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("username", username).Msg("service: wrong password")
		return nil, ErrInvalidCredentials
	}

	log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("service: user authenticated")
	return u, nil
}

func (s *service) EnsureUser(ctx context.Context, username, password string) (*User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, errors.New("service: username and password cannot be empty")
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		if err := s.syncPassword(ctx, existing, password); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("service: failed to look up user %q: %w", username, err)
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, false, err
	}

	u := &User{Username: username, PasswordHash: hash}
	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			// Created concurrently by another process.
			existing, getErr := s.repo.GetByUsername(ctx, username)
			if getErr != nil {
				return nil, false, fmt.Errorf("service: failed to reload user %q: %w", username, getErr)
			}
			return existing, false, nil
		}
		log.Error().Err(err).Str("username", username).Msg("service: failed to create user in repository")
		return nil, false, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("service: user created")
	return u, true, nil
}

// syncPassword re-hashes the stored password of u when it no longer matches
// password.
func (s *service) syncPassword(ctx context.Context, u *User, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
		return nil
	}

	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("service: failed to update password in repository")
		return fmt.Errorf("service: failed to update password of user %q: %w", u.Username, err)
	}
	u.PasswordHash = hash

	log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("service: password updated")
	return nil
}

func (s *service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return "", fmt.Errorf("service: failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to get user by id in repository")
		return nil, fmt.Errorf("service: failed to get user by id %d: %w", id, err)
	}

	return u, nil
}
