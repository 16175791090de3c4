package repositories

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// DateRange bounds are both inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Filter is embedded in every entity filter. The After/Before bounds are
// exclusive, CreatedBetween and UpdatedBetween are inclusive.
type Filter struct {
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	UpdatedAfter   *time.Time
	UpdatedBefore  *time.Time
	CreatedBetween *DateRange
	UpdatedBetween *DateRange
	Order          Order
	Limit          int
	Offset         int
}

func (f Filter) where(db *gorm.DB) *gorm.DB {
	if f.CreatedAfter != nil {
		db = db.Where("created_at > ?", f.CreatedAfter.UTC())
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", f.CreatedBefore.UTC())
	}
	if f.UpdatedAfter != nil {
		db = db.Where("updated_at > ?", f.UpdatedAfter.UTC())
	}
	if f.UpdatedBefore != nil {
		db = db.Where("updated_at < ?", f.UpdatedBefore.UTC())
	}
	if f.CreatedBetween != nil {
		db = db.Where("created_at >= ? AND created_at <= ?", f.CreatedBetween.Start.UTC(), f.CreatedBetween.End.UTC())
	}
	if f.UpdatedBetween != nil {
		db = db.Where("updated_at >= ? AND updated_at <= ?", f.UpdatedBetween.Start.UTC(), f.UpdatedBetween.End.UTC())
	}
	return db
}

// page applies ordering and pagination. column must come from a whitelist.
func (f Filter) page(column string) scope {
	return func(db *gorm.DB) *gorm.DB {
		direction := "ASC"
		if f.Order == OrderDesc {
			direction = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", column, direction))
		if f.Limit > 0 {
			db = db.Limit(f.Limit)
		}
		if f.Offset > 0 {
			db = db.Offset(f.Offset)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains is a case-insensitive substring match; needle is matched
// literally.
func contains(db *gorm.DB, column, needle string) *gorm.DB {
	if needle == "" {
		return db
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(needle)) + "%"
	return db.Where(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column), pattern)
}

func equal[V any](db *gorm.DB, column string, value *V) *gorm.DB {
	if value == nil {
		return db
	}
	return db.Where(fmt.Sprintf("%s = ?", column), *value)
}
