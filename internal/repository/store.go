package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/database"
	"github.com/medideal/records-api/internal/query"
	"gorm.io/gorm"
)

// EntityStore is the capability set the generic handlers operate on
type EntityStore[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindOne(ctx context.Context, filter map[string]interface{}) (*T, error)
	Find(ctx context.Context, opts query.Options) ([]T, error)
	Create(ctx context.Context, entity *T) error
	UpdateByID(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*T, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Store is the gorm-backed EntityStore for one entity kind
type Store[T any] struct{}

// NewStore creates a store for one entity kind
func NewStore[T any]() *Store[T] {
	return &Store[T]{}
}

// FindByID retrieves an entity by primary key
func (s *Store[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := database.DB.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindOne retrieves the first entity matching filter
func (s *Store[T]) FindOne(ctx context.Context, filter map[string]interface{}) (*T, error) {
	var entity T
	if err := database.DB.WithContext(ctx).Where(filter).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// Find executes the fetch plan composed from opts
func (s *Store[T]) Find(ctx context.Context, opts query.Options) ([]T, error) {
	var entities []T
	tx := database.DB.WithContext(ctx).Model(new(T))
	tx, err := opts.Apply(tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return entities, nil
}

// Create inserts a new entity; uniqueness violations surface as-is for
// the error translator.
func (s *Store[T]) Create(ctx context.Context, entity *T) error {
	return database.DB.WithContext(ctx).Create(entity).Error
}

// UpdateByID applies a partial update and returns the fresh row
func (s *Store[T]) UpdateByID(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*T, error) {
	var entity T
	tx := database.DB.WithContext(ctx).Model(&entity).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.FindByID(ctx, id)
}

// DeleteByID removes an entity; absent ids report not found
func (s *Store[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tx := database.DB.WithContext(ctx).Delete(new(T), "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
