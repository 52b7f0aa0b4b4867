package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-catalog/pkg/config"
	"github.com/angelmondragon/atacado-catalog/pkg/db"
	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/security"
)

// Service manages back-office and buyer accounts.
type Service interface {
	ListUsers(ctx context.Context) ([]UserDTO, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*UserDTO, error)
	DeleteUser(ctx context.Context, actorID, id string) error
}

type CreateUserInput struct {
	Username string
	Password string
	Role     enums.Role
}

// UpdateUserInput holds optional changes. A nil or blank Password keeps the
// stored hash.
type UpdateUserInput struct {
	Username *string
	Password *string
	Role     *enums.Role
}

type ServiceParams struct {
	Repo           *Repository
	PasswordConfig config.PasswordConfig
}

type service struct {
	repo   *Repository
	pwdCfg config.PasswordConfig
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: params.Repo, pwdCfg: params.PasswordConfig}, nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if !input.Role.IsAccountRole() {
		return nil, invalidRole(input.Role)
	}
	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: hash, Role: input.Role}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "load user")
	}

	if input.Username != nil {
		username, err := normalizeUsername(*input.Username)
		if err != nil {
			return nil, err
		}
		user.Username = username
	}
	if input.Role != nil {
		if !input.Role.IsAccountRole() {
			return nil, invalidRole(*input.Role)
		}
		user.Role = *input.Role
	}
	if input.Password != nil && strings.TrimSpace(*input.Password) != "" {
		hash, err := s.hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "update user")
	}
	return FromModel(user), nil
}

// DeleteUser removes an account. Admins cannot remove themselves.
func (s *service) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID != "" && actorID == id {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete user")
	}
	return nil
}

func (s *service) hash(password string) (string, error) {
	if err := security.ValidatePassword(password); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	hash, err := security.HashPassword(password, s.pwdCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return hash, nil
}

func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	return username, nil
}

func invalidRole(role enums.Role) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
		WithDetails(map[string]any{"role": role})
}

func mapRepoError(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	case db.IsUniqueViolation(err, "username"):
		return pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
