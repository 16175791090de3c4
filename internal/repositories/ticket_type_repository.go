package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/database"
	"github.com/mgltickets/api/internal/models"
	"gorm.io/gorm"
)

// ErrInsufficientQuantity is returned when a sold-count change would leave
// quantity_sold outside [0, quantity_available].
var ErrInsufficientQuantity = errors.New("insufficient ticket quantity")

type TicketTypeFilter struct {
	Filter
	EventID *uuid.UUID
}

func (f TicketTypeFilter) where(db *gorm.DB) *gorm.DB {
	db = f.Filter.where(db)
	return equal(db, "event_id", f.EventID)
}

type TicketTypeUpdate struct {
	Name              *string
	Description       *string
	Price             *int
	QuantityAvailable *int
}

func (u TicketTypeUpdate) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.QuantityAvailable != nil {
		fields["quantity_available"] = *u.QuantityAvailable
	}
	return fields
}

type TicketTypeRepository struct {
	store store[models.TicketType]
}

func NewTicketTypeRepository(db *gorm.DB) *TicketTypeRepository {
	return &TicketTypeRepository{store: store[models.TicketType]{db: db}}
}

func (r *TicketTypeRepository) Create(ctx context.Context, ticketType *models.TicketType) error {
	return r.store.create(ctx, ticketType)
}

func (r *TicketTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TicketType, error) {
	return r.store.get(ctx, id)
}

// Update writes the given columns. A new quantity_available only lands
// while it still covers quantity_sold, checked in the same statement so a
// concurrent AdjustSold cannot slip in between. Returns nil, nil when id is
// absent.
func (r *TicketTypeRepository) Update(ctx context.Context, id uuid.UUID, update TicketTypeUpdate) (*models.TicketType, error) {
	if update.QuantityAvailable == nil {
		return r.store.update(ctx, id, update.fields())
	}

	var ticketType models.TicketType
	found := true
	err := database.Atomic(ctx, r.store.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.TicketType{}).
			Where("id = ? AND quantity_sold <= ?", id, *update.QuantityAvailable).
			Updates(update.fields())
		if result.Error != nil {
			return result.Error
		}

		if err := tx.First(&ticketType, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
				return nil
			}
			return err
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientQuantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &ticketType, nil
}

func (r *TicketTypeRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.delete(ctx, id)
}

func (r *TicketTypeRepository) List(ctx context.Context, filter TicketTypeFilter) ([]models.TicketType, error) {
	return r.store.list(ctx, filter.where, filter.page("created_at"))
}

func (r *TicketTypeRepository) Count(ctx context.Context, filter TicketTypeFilter) (int64, error) {
	return r.store.count(ctx, filter.where)
}

// AdjustSold moves quantity_sold by delta in a single conditional UPDATE so
// concurrent bookings cannot oversell. Returns nil, nil when id is absent.
func (r *TicketTypeRepository) AdjustSold(ctx context.Context, id uuid.UUID, delta int) (*models.TicketType, error) {
	var ticketType models.TicketType
	found := true
	err := database.Atomic(ctx, r.store.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.TicketType{}).
			Where("id = ?", id).
			Where("quantity_sold + ? >= 0 AND quantity_sold + ? <= quantity_available", delta, delta).
			Update("quantity_sold", gorm.Expr("quantity_sold + ?", delta))
		if result.Error != nil {
			return result.Error
		}

		if err := tx.First(&ticketType, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
				return nil
			}
			return err
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientQuantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &ticketType, nil
}
