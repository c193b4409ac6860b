package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/apperror"
	"github.com/medideal/records-api/internal/auth"
	"github.com/medideal/records-api/internal/models"
	"github.com/medideal/records-api/internal/repository"
	"gorm.io/gorm"
)

// AccountEntity constrains the account kinds the service operates on
type AccountEntity[T any] interface {
	*T
	models.Account
	SetPassword(hash string)
}

// AccountService implements signup, login and password change for one
// account kind. A single instantiation serves doctors, another patients.
type AccountService[T any, PT AccountEntity[T]] struct {
	store  repository.EntityStore[T]
	tokens *auth.TokenService
}

// NewAccountService creates an account service for one kind
func NewAccountService[T any, PT AccountEntity[T]](store repository.EntityStore[T], tokens *auth.TokenService) *AccountService[T, PT] {
	return &AccountService[T, PT]{store: store, tokens: tokens}
}

// Signup hashes the credentials, creates the account and issues a token.
// Duplicate emails surface as a uniqueness conflict.
func (s *AccountService[T, PT]) Signup(ctx context.Context, account PT, plainPassword string) (PT, string, error) {
	hash, err := auth.HashPassword(plainPassword)
	if err != nil {
		return nil, "", err
	}
	account.SetPassword(hash)

	if err := s.store.Create(ctx, (*T)(account)); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(account.AccountID())
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// Login verifies the credentials and issues a token. A missing account
// and a wrong password are indistinguishable to the caller.
func (s *AccountService[T, PT]) Login(ctx context.Context, email, password string) (PT, string, error) {
	entity, err := s.store.FindOne(ctx, map[string]interface{}{"email": email})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperror.Unauthorized("Email or password is incorrect")
		}
		return nil, "", err
	}

	account := PT(entity)
	if !auth.CheckPassword(password, account.PasswordHash()) {
		return nil, "", apperror.Unauthorized("Email or password is incorrect")
	}

	token, err := s.tokens.Issue(account.AccountID())
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// UpdatePassword verifies the old password and stores the new hash with
// the backdated change timestamp, invalidating previously issued tokens.
func (s *AccountService[T, PT]) UpdatePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) (PT, error) {
	entity, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account := PT(entity)
	if !auth.CheckPassword(oldPassword, account.PasswordHash()) {
		return nil, apperror.Unauthorized("Incorrect password")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateByID(ctx, id, map[string]interface{}{
		"password":            hash,
		"password_changed_at": time.Now().Add(-time.Second),
	})
	if err != nil {
		return nil, err
	}
	return PT(updated), nil
}
