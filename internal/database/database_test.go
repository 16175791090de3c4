package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mgltickets/api/internal/database"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(email string) *models.User {
	return &models.User{Name: "Wanjiru", Email: email, PasswordHash: "x", PhoneNumber: "0700000000", IsActive: true}
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestAtomicCommits(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	err := database.Atomic(ctx, db, func(tx *gorm.DB) error {
		return tx.Create(newUser("a@example.com")).Error
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, countUsers(t, db))
}

func TestAtomicRollsBackOnError(t *testing.T) {
	db := testdb.New(t)
	boom := errors.New("boom")

	err := database.Atomic(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(newUser("a@example.com")).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, countUsers(t, db))
}

func TestAtomicRollsBackOnPanic(t *testing.T) {
	db := testdb.New(t)

	assert.Panics(t, func() {
		_ = database.Atomic(context.Background(), db, func(tx *gorm.DB) error {
			tx.Create(newUser("a@example.com"))
			panic("kaboom")
		})
	})
	assert.EqualValues(t, 0, countUsers(t, db))
}

func TestWithinTransactionJoinsNestedUnits(t *testing.T) {
	db := testdb.New(t)
	boom := errors.New("boom")

	err := database.WithinTransaction(context.Background(), db, func(ctx context.Context) error {
		assert.True(t, database.InTransaction(ctx))
		if err := database.Atomic(ctx, db, func(tx *gorm.DB) error {
			return tx.Create(newUser("a@example.com")).Error
		}); err != nil {
			return err
		}
		return database.Atomic(ctx, db, func(tx *gorm.DB) error {
			return tx.Create(newUser("b@example.com")).Error
		})
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, countUsers(t, db))

	err = database.WithinTransaction(context.Background(), db, func(ctx context.Context) error {
		if err := database.Atomic(ctx, db, func(tx *gorm.DB) error {
			return tx.Create(newUser("c@example.com")).Error
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 2, countUsers(t, db), "outer rollback discards inner savepoints")
}

func TestDuplicateKeyIsTranslated(t *testing.T) {
	db := testdb.New(t)
	require.NoError(t, db.Create(newUser("dup@example.com")).Error)

	err := db.Create(newUser("dup@example.com")).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
