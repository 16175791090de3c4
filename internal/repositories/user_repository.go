package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/models"
	"gorm.io/gorm"
)

type UserFilter struct {
	Filter
	Role         *models.Role
	IsActive     *bool
	IsVerified   *bool
	NameContains string
}

func (f UserFilter) where(db *gorm.DB) *gorm.DB {
	db = f.Filter.where(db)
	db = equal(db, "role", f.Role)
	db = equal(db, "is_active", f.IsActive)
	db = equal(db, "is_verified", f.IsVerified)
	return contains(db, "name", f.NameContains)
}

// UserUpdate carries the columns to change; nil fields are left alone.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
	PhoneNumber  *string
	Role         *models.Role
	IsActive     *bool
	IsVerified   *bool
}

func (u UserUpdate) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Email != nil {
		fields["email"] = strings.ToLower(*u.Email)
	}
	if u.PasswordHash != nil {
		fields["password_hash"] = *u.PasswordHash
	}
	if u.PhoneNumber != nil {
		fields["phone_number"] = *u.PhoneNumber
	}
	if u.Role != nil {
		fields["role"] = *u.Role
	}
	if u.IsActive != nil {
		fields["is_active"] = *u.IsActive
	}
	if u.IsVerified != nil {
		fields["is_verified"] = *u.IsVerified
	}
	return fields
}

type UserRepository struct {
	store store[models.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{store: store[models.User]{db: db}}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return r.store.create(ctx, user)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.store.get(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.store.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("email = ?", strings.ToLower(email))
	})
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*models.User, error) {
	return r.store.update(ctx, id, update.fields())
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.delete(ctx, id)
}

func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	return r.store.list(ctx, filter.where, filter.page("created_at"))
}

func (r *UserRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	return r.store.count(ctx, filter.where)
}
