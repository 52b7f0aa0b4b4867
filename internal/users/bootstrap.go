package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/atacado-catalog/pkg/config"
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/security"
)

const bootstrapPasswordLength = 16

// EnsureAdmin creates the configured admin account when no ADMIN exists yet.
// Without a configured password a temporary one is generated and logged once.
// It reports whether an account was created.
func EnsureAdmin(ctx context.Context, svc Service, repo *Repository, cfg config.BootstrapConfig, logg *logger.Logger) (bool, error) {
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		return false, nil
	}

	admins, err := repo.CountByRole(ctx, enums.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return false, nil
	}

	password := cfg.AdminPassword
	generated := strings.TrimSpace(password) == ""
	if generated {
		if password, err = security.GenerateTempPassword(bootstrapPasswordLength); err != nil {
			return false, fmt.Errorf("generate bootstrap password: %w", err)
		}
	}

	created, err := svc.CreateUser(ctx, CreateUserInput{Username: username, Password: password, Role: enums.RoleAdmin})
	if err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}

	fields := map[string]any{"user_id": created.ID, "username": created.Username}
	if generated {
		fields["temporary_password"] = password
	}
	logg.Info(logg.WithFields(ctx, fields), "users.bootstrap_admin.created")
	return true, nil
}
