// Package auth manages the system accounts and their session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("this action requires the admin role")
)

// Identity is an authenticated user.
type Identity struct {
	ID       uuid.UUID   `json:"id" example:"9a7a6c7e-1d39-4d5b-8cfb-5a1b3c2d4e5f"`
	Username string      `json:"username" example:"registrar"`
	Role     models.Role `json:"role" example:"staff"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Authenticator checks credentials against the users table.
type Authenticator struct {
	db   *gorm.DB
	cost int
}

type Option func(*Authenticator)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(a *Authenticator) {
		a.cost = cost
	}
}

func NewAuthenticator(db *gorm.DB, opts ...Option) *Authenticator {
	a := &Authenticator{db: db, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type UserInput struct {
	Username string      `json:"username" validate:"min=3" example:"registrar"`
	Password string      `json:"password" validate:"min=6" example:"s3cret!"`
	Role     models.Role `json:"role" validate:"oneof=staff admin" example:"staff"`
}

type passwordInput struct {
	Password string `json:"password" validate:"min=6"`
}

func (a *Authenticator) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Validate returns the identity of the user if the password matches.
func (a *Authenticator) Validate(ctx context.Context, username, password string) (*Identity, error) {
	var users []models.User
	err := a.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Limit(1).Find(&users).Error
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, ErrInvalidCredentials
	}

	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Ctx(ctx).Info().Str("username", user.Username).Msg("failed login attempt")
		return nil, ErrInvalidCredentials
	}

	return &Identity{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (a *Authenticator) CreateUser(ctx context.Context, in UserInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	hash, err := a.hash(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{Username: in.Username, PasswordHash: hash, Role: in.Role}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: username %s is already taken", models.ErrDuplicateKey, user.Username)
		}

		return tx.Create(&user).Error
	})

	return user, err
}

// DeleteUser deletes a user unless it is the last admin.
func (a *Authenticator) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}

		if user.Role == models.RoleAdmin {
			var admins int64
			if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return fmt.Errorf("%w: %s is the last admin", models.ErrReferenced, user.Username)
			}
		}

		return tx.Delete(&user).Error
	})
}

func (a *Authenticator) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	if err := validation.Struct(passwordInput{Password: password}); err != nil {
		return err
	}

	hash, err := a.hash(password)
	if err != nil {
		return err
	}

	var user models.User
	db := a.db.WithContext(ctx)
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return err
	}

	return db.Model(&user).Update("password_hash", hash).Error
}

// GetByUsername is used by the maintenance CLI.
func (a *Authenticator) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).First(&user, "username = ?", strings.TrimSpace(username)).Error
	return user, err
}

func (a *Authenticator) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := a.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}

// EnsureDefaultAdmin creates an admin if there are no users at all.
// It reports whether a user was created.
func (a *Authenticator) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return false, err
	}

	if count > 0 {
		return false, nil
	}

	if _, err := a.CreateUser(ctx, UserInput{Username: username, Password: password, Role: models.RoleAdmin}); err != nil {
		return false, err
	}

	log.Ctx(ctx).Warn().Str("username", username).Msg("created default admin, change its password")
	return true, nil
}
