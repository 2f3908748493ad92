package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/config"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/user"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// ensureAdmin makes sure the configured admin can log in, falling back to the
// development credentials when none are configured.
func ensureAdmin(ctx context.Context, users user.Service, cfg config.AuthConfig) error {
	username, password := cfg.AdminUsername, cfg.AdminPassword
	if username == "" {
		username, password = defaultAdminUsername, defaultAdminPassword
		log.Warn().Str("username", username).Msg("ADMIN_USERNAME not set, using the default development credentials")
	}

	admin, created, err := users.EnsureUser(ctx, username, password)
	if err != nil {
		return err
	}
	log.Info().Str("username", admin.Username).Bool("created", created).Msg("Admin user ready")
	return nil
}
