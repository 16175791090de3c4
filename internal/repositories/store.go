package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/database"
	"gorm.io/gorm"
)

type scope = func(*gorm.DB) *gorm.DB

// store holds the CRUD plumbing every repository shares. Each call is its
// own unit of work unless the context already carries a transaction.
type store[T any] struct {
	db *gorm.DB
}

func (s store[T]) create(ctx context.Context, entity *T) error {
	return database.Atomic(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Create(entity).Error
	})
}

func (s store[T]) first(ctx context.Context, scopes ...scope) (*T, error) {
	var entity T
	err := database.Atomic(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Scopes(scopes...).First(&entity).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (s store[T]) get(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.first(ctx, byID(id))
}

// update writes only the given columns and returns the fresh row, or nil
// when id does not exist.
func (s store[T]) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*T, error) {
	var entity T
	found := true
	err := database.Atomic(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&entity, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
				return nil
			}
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&entity).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&entity, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &entity, nil
}

func (s store[T]) delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := database.Atomic(ctx, s.db, func(tx *gorm.DB) error {
		result := tx.Delete(new(T), "id = ?", id)
		deleted = result.RowsAffected > 0
		return result.Error
	})
	return deleted, err
}

func (s store[T]) list(ctx context.Context, scopes ...scope) ([]T, error) {
	var entities []T
	err := database.Atomic(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Scopes(scopes...).Find(&entities).Error
	})
	return entities, err
}

func (s store[T]) count(ctx context.Context, scopes ...scope) (int64, error) {
	var total int64
	err := database.Atomic(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Model(new(T)).Scopes(scopes...).Count(&total).Error
	})
	return total, err
}

func byID(id uuid.UUID) scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func preload(associations ...string) scope {
	return func(db *gorm.DB) *gorm.DB {
		for _, association := range associations {
			db = db.Preload(association)
		}
		return db
	}
}
