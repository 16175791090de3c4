package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type txKey struct{}

// GormConfig is shared by the postgres pool and the sqlite test databases.
func GormConfig(logger zerolog.Logger, echo bool) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: NewGormLogger(logger, echo),
	}
}

// WithinTransaction runs fn inside one database transaction whose handle
// travels in the returned context. Repository calls made with that context
// join the transaction instead of opening their own.
func WithinTransaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	return Conn(ctx, db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Atomic runs fn as a single unit of work. Inside an outer transaction it
// becomes a savepoint; otherwise it opens and commits its own transaction.
// Panics roll back and re-panic.
func Atomic(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return Conn(ctx, db).Transaction(fn)
}

// Conn returns the transaction stored in ctx, or db bound to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok && tx != nil
}
