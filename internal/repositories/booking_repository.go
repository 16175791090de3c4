package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/models"
	"gorm.io/gorm"
)

type BookingFilter struct {
	Filter
	UserID       *uuid.UUID
	TicketTypeID *uuid.UUID
	Status       *models.BookingStatus
}

func (f BookingFilter) where(db *gorm.DB) *gorm.DB {
	db = f.Filter.where(db)
	db = equal(db, "user_id", f.UserID)
	db = equal(db, "ticket_type_id", f.TicketTypeID)
	return equal(db, "status", f.Status)
}

type BookingUpdate struct {
	Quantity   *int
	Status     *models.BookingStatus
	TotalPrice *int
}

func (u BookingUpdate) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Quantity != nil {
		fields["quantity"] = *u.Quantity
	}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.TotalPrice != nil {
		fields["total_price"] = *u.TotalPrice
	}
	return fields
}

type BookingRepository struct {
	store store[models.Booking]
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{store: store[models.Booking]{db: db}}
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.store.create(ctx, booking)
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.store.get(ctx, id)
}

// GetDetailed loads the booking with its payment and issued tickets.
func (r *BookingRepository) GetDetailed(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.store.first(ctx, byID(id), preload("TicketType", "Payment", "TicketInstances"))
}

func (r *BookingRepository) Update(ctx context.Context, id uuid.UUID, update BookingUpdate) (*models.Booking, error) {
	return r.store.update(ctx, id, update.fields())
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.delete(ctx, id)
}

func (r *BookingRepository) List(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	return r.store.list(ctx, filter.where, filter.page("created_at"))
}

func (r *BookingRepository) Count(ctx context.Context, filter BookingFilter) (int64, error) {
	return r.store.count(ctx, filter.where)
}
