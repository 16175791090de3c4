package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/database"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"gorm.io/gorm"
)

type CreateTicketTypeInput struct {
	EventID           uuid.UUID `json:"event_id" validate:"required"`
	Name              string    `json:"name" validate:"required,max=100"`
	Description       *string   `json:"description" validate:"omitempty,max=500"`
	Price             int       `json:"price" validate:"gte=0"`
	QuantityAvailable int       `json:"quantity_available" validate:"gte=0"`
}

type UpdateTicketTypeInput struct {
	Name              *string `json:"name" validate:"omitempty,max=100"`
	Description       *string `json:"description" validate:"omitempty,max=500"`
	Price             *int    `json:"price" validate:"omitempty,gte=0"`
	QuantityAvailable *int    `json:"quantity_available" validate:"omitempty,gte=0"`
}

type TicketTypeService struct {
	db          *gorm.DB
	ticketTypes *repositories.TicketTypeRepository
	events      *repositories.EventRepository
}

func NewTicketTypeService(db *gorm.DB, ticketTypes *repositories.TicketTypeRepository, events *repositories.EventRepository) *TicketTypeService {
	return &TicketTypeService{db: db, ticketTypes: ticketTypes, events: events}
}

func (s *TicketTypeService) Create(ctx context.Context, input CreateTicketTypeInput) (*models.TicketType, error) {
	logger := loggerFor(ctx, "ticket_types")
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := s.authorizeEvent(ctx, input.EventID); err != nil {
		return nil, err
	}

	ticketType := &models.TicketType{
		EventID:           input.EventID,
		Name:              input.Name,
		Description:       input.Description,
		Price:             input.Price,
		QuantityAvailable: input.QuantityAvailable,
	}
	if err := s.ticketTypes.Create(ctx, ticketType); err != nil {
		return nil, persistence("create ticket type", err)
	}
	logger.Info().Str("ticket_type_id", ticketType.ID.String()).Str("event_id", input.EventID.String()).Msg("ticket type created")
	return ticketType, nil
}

func (s *TicketTypeService) Get(ctx context.Context, id uuid.UUID) (*models.TicketType, error) {
	ticketType, err := s.ticketTypes.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("load ticket type", err)
	}
	if ticketType == nil {
		return nil, notFound("ticket type")
	}
	return ticketType, nil
}

func (s *TicketTypeService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.TicketType, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, persistence("load event", err)
	}
	if event == nil {
		return nil, notFound("event")
	}
	return s.List(ctx, repositories.TicketTypeFilter{EventID: &eventID})
}

func (s *TicketTypeService) List(ctx context.Context, filter repositories.TicketTypeFilter) ([]models.TicketType, error) {
	ticketTypes, err := s.ticketTypes.List(ctx, filter)
	if err != nil {
		return nil, persistence("list ticket types", err)
	}
	return ticketTypes, nil
}

func (s *TicketTypeService) Count(ctx context.Context, filter repositories.TicketTypeFilter) (int64, error) {
	total, err := s.ticketTypes.Count(ctx, filter)
	if err != nil {
		return 0, persistence("count ticket types", err)
	}
	return total, nil
}

// Update refuses to shrink quantity_available below what is already sold.
func (s *TicketTypeService) Update(ctx context.Context, id uuid.UUID, input UpdateTicketTypeInput) (*models.TicketType, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, invalid("name", "is required")
	}

	var updated *models.TicketType
	err := database.WithinTransaction(ctx, s.db, func(ctx context.Context) error {
		current, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.authorizeEvent(ctx, current.EventID); err != nil {
			return err
		}
		if input.QuantityAvailable != nil && *input.QuantityAvailable < current.QuantitySold {
			return ErrInsufficientQuantity
		}

		updated, err = s.ticketTypes.Update(ctx, id, repositories.TicketTypeUpdate{
			Name:              trimmed(input.Name),
			Description:       input.Description,
			Price:             input.Price,
			QuantityAvailable: input.QuantityAvailable,
		})
		if errors.Is(err, repositories.ErrInsufficientQuantity) {
			return ErrInsufficientQuantity
		}
		if err != nil {
			return persistence("update ticket type", err)
		}
		if updated == nil {
			return notFound("ticket type")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger := loggerFor(ctx, "ticket_types")
	logger.Info().Str("ticket_type_id", id.String()).Msg("ticket type updated")
	return updated, nil
}

func (s *TicketTypeService) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeEvent(ctx, current.EventID); err != nil {
		return err
	}
	deleted, err := s.ticketTypes.Delete(ctx, id)
	if err != nil {
		return persistence("delete ticket type", err)
	}
	if !deleted {
		return notFound("ticket type")
	}
	logger := loggerFor(ctx, "ticket_types")
	logger.Info().Str("ticket_type_id", id.String()).Msg("ticket type deleted")
	return nil
}

// authorizeEvent checks the event exists and belongs to the caller.
func (s *TicketTypeService) authorizeEvent(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return persistence("load event", err)
	}
	if event == nil {
		return notFound("event")
	}
	return authorizeOwner(ctx, event.OrganizerID)
}
