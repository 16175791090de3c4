package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/database"
	"github.com/mgltickets/api/internal/models"
	"gorm.io/gorm"
)

type TicketInstanceFilter struct {
	Filter
	UserID       *uuid.UUID
	BookingID    *uuid.UUID
	TicketTypeID *uuid.UUID
	Status       *models.TicketStatus
}

func (f TicketInstanceFilter) where(db *gorm.DB) *gorm.DB {
	db = f.Filter.where(db)
	db = equal(db, "user_id", f.UserID)
	db = equal(db, "booking_id", f.BookingID)
	db = equal(db, "ticket_type_id", f.TicketTypeID)
	return equal(db, "status", f.Status)
}

type TicketInstanceUpdate struct {
	Status   *models.TicketStatus
	IssuedTo *string
	UsedAt   *time.Time
}

func (u TicketInstanceUpdate) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.IssuedTo != nil {
		fields["issued_to"] = *u.IssuedTo
	}
	if u.UsedAt != nil {
		fields["used_at"] = u.UsedAt.UTC()
	}
	return fields
}

type TicketInstanceRepository struct {
	store store[models.TicketInstance]
}

func NewTicketInstanceRepository(db *gorm.DB) *TicketInstanceRepository {
	return &TicketInstanceRepository{store: store[models.TicketInstance]{db: db}}
}

func (r *TicketInstanceRepository) Create(ctx context.Context, ticket *models.TicketInstance) error {
	return r.store.create(ctx, ticket)
}

// CreateBatch inserts all tickets or none.
func (r *TicketInstanceRepository) CreateBatch(ctx context.Context, tickets []models.TicketInstance) error {
	if len(tickets) == 0 {
		return nil
	}
	return database.Atomic(ctx, r.store.db, func(tx *gorm.DB) error {
		return tx.Create(&tickets).Error
	})
}

func (r *TicketInstanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TicketInstance, error) {
	return r.store.get(ctx, id)
}

func (r *TicketInstanceRepository) GetByCode(ctx context.Context, code string) (*models.TicketInstance, error) {
	return r.store.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("code = ?", code)
	})
}

func (r *TicketInstanceRepository) Update(ctx context.Context, id uuid.UUID, update TicketInstanceUpdate) (*models.TicketInstance, error) {
	return r.store.update(ctx, id, update.fields())
}

// UpdateStatusByBooking moves every ticket of a booking currently in from
// to the to status and reports how many rows changed.
func (r *TicketInstanceRepository) UpdateStatusByBooking(ctx context.Context, bookingID uuid.UUID, from, to models.TicketStatus) (int64, error) {
	var affected int64
	err := database.Atomic(ctx, r.store.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.TicketInstance{}).
			Where("booking_id = ? AND status = ?", bookingID, from).
			Update("status", to)
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}

// MarkUsed flips an active ticket to used. It returns false when the
// ticket was not active, so a code can only be redeemed once.
func (r *TicketInstanceRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	var changed bool
	err := database.Atomic(ctx, r.store.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.TicketInstance{}).
			Where("id = ? AND status = ?", id, models.TicketActive).
			Updates(map[string]interface{}{"status": models.TicketUsed, "used_at": at.UTC()})
		changed = result.RowsAffected > 0
		return result.Error
	})
	return changed, err
}

func (r *TicketInstanceRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.delete(ctx, id)
}

func (r *TicketInstanceRepository) List(ctx context.Context, filter TicketInstanceFilter) ([]models.TicketInstance, error) {
	return r.store.list(ctx, filter.where, filter.page("created_at"))
}

func (r *TicketInstanceRepository) Count(ctx context.Context, filter TicketInstanceFilter) (int64, error) {
	return r.store.count(ctx, filter.where)
}
