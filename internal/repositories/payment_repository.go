package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/database"
	"github.com/mgltickets/api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentFilter struct {
	Filter
	BookingID *uuid.UUID
	Status    *models.PaymentStatus
}

func (f PaymentFilter) where(db *gorm.DB) *gorm.DB {
	db = f.Filter.where(db)
	db = equal(db, "booking_id", f.BookingID)
	return equal(db, "status", f.Status)
}

type PaymentUpdate struct {
	Amount          *decimal.Decimal
	Currency        *string
	Method          *string
	Status          *models.PaymentStatus
	MpesaRef        *string
	CallbackPayload *string
}

func (u PaymentUpdate) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Amount != nil {
		fields["amount"] = *u.Amount
	}
	if u.Currency != nil {
		fields["currency"] = *u.Currency
	}
	if u.Method != nil {
		fields["method"] = *u.Method
	}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.MpesaRef != nil {
		fields["mpesa_ref"] = *u.MpesaRef
	}
	if u.CallbackPayload != nil {
		fields["callback_payload"] = *u.CallbackPayload
	}
	return fields
}

type PaymentRepository struct {
	store store[models.Payment]
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{store: store[models.Payment]{db: db}}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.store.create(ctx, payment)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.store.get(ctx, id)
}

func (r *PaymentRepository) GetByMpesaRef(ctx context.Context, ref string) (*models.Payment, error) {
	return r.store.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("mpesa_ref = ?", ref)
	})
}

func (r *PaymentRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	return r.store.first(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("booking_id = ?", bookingID)
	})
}

// SumAmountByBooking totals every payment recorded against the booking.
func (r *PaymentRepository) SumAmountByBooking(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := database.Atomic(ctx, r.store.db, func(tx *gorm.DB) error {
		return tx.Model(&models.Payment{}).
			Where("booking_id = ?", bookingID).
			Select("SUM(amount)").
			Row().
			Scan(&total)
	})
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *PaymentRepository) Update(ctx context.Context, id uuid.UUID, update PaymentUpdate) (*models.Payment, error) {
	return r.store.update(ctx, id, update.fields())
}

func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.delete(ctx, id)
}

func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	return r.store.list(ctx, filter.where, filter.page("created_at"))
}

func (r *PaymentRepository) Count(ctx context.Context, filter PaymentFilter) (int64, error) {
	return r.store.count(ctx, filter.where)
}
