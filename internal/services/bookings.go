package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/database"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	UserID       *uuid.UUID `json:"user_id"`
	TicketTypeID uuid.UUID  `json:"ticket_type_id" validate:"required"`
	Quantity     int        `json:"quantity" validate:"gte=1"`
	TotalPrice   int        `json:"total_price" validate:"gte=0"`
}

// UpdateBookingInput leaves status out; status moves through Confirm and
// Cancel so sold counts and tickets stay consistent.
type UpdateBookingInput struct {
	Quantity   *int `json:"quantity" validate:"omitempty,gte=1"`
	TotalPrice *int `json:"total_price" validate:"omitempty,gte=0"`
}

type BookingService struct {
	db          *gorm.DB
	bookings    *repositories.BookingRepository
	ticketTypes *repositories.TicketTypeRepository
	tickets     *repositories.TicketInstanceRepository
}

func NewBookingService(db *gorm.DB, bookings *repositories.BookingRepository, ticketTypes *repositories.TicketTypeRepository, tickets *repositories.TicketInstanceRepository) *BookingService {
	return &BookingService{db: db, bookings: bookings, ticketTypes: ticketTypes, tickets: tickets}
}

// Create records a pending booking. Stock is only taken on Confirm, but a
// booking larger than what remains is refused up front. TotalPrice is taken
// as given.
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	logger := loggerFor(ctx, "bookings")
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	userID, err := resolveBooker(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	ticketType, err := s.ticketTypes.GetByID(ctx, input.TicketTypeID)
	if err != nil {
		return nil, persistence("load ticket type", err)
	}
	if ticketType == nil {
		return nil, notFound("ticket type")
	}
	if ticketType.Remaining() < input.Quantity {
		logger.Warn().Str("ticket_type_id", ticketType.ID.String()).Int("requested", input.Quantity).Int("remaining", ticketType.Remaining()).Msg("booking exceeds remaining tickets")
		return nil, ErrInsufficientQuantity
	}

	booking := &models.Booking{
		UserID:       userID,
		TicketTypeID: input.TicketTypeID,
		Quantity:     input.Quantity,
		TotalPrice:   input.TotalPrice,
		Status:       models.BookingPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, persistence("create booking", err)
	}
	logger.Info().Str("booking_id", booking.ID.String()).Int("quantity", booking.Quantity).Msg("booking created")
	return booking, nil
}

func resolveBooker(ctx context.Context, requested *uuid.UUID) (uuid.UUID, error) {
	identity := auth.IdentityFrom(ctx)
	switch {
	case requested != nil && (identity == nil || identity.Owns(*requested) || identity.Can(auth.CapBookingsManage)):
		return *requested, nil
	case requested != nil:
		return uuid.Nil, ErrNotOwner
	case identity != nil:
		return identity.UserID, nil
	}
	return uuid.Nil, invalid("user_id", "is required")
}

// Get returns the booking if the caller owns it or manages bookings.
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetDetailed(ctx, id)
	if err != nil {
		return nil, persistence("load booking", err)
	}
	if booking == nil {
		return nil, notFound("booking")
	}
	if err := authorizeOwnerOr(ctx, booking.UserID, auth.CapBookingsManage); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, filter repositories.BookingFilter) ([]models.Booking, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("status", "unknown booking status")
	}
	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, persistence("list bookings", err)
	}
	return bookings, nil
}

func (s *BookingService) Count(ctx context.Context, filter repositories.BookingFilter) (int64, error) {
	total, err := s.bookings.Count(ctx, filter)
	if err != nil {
		return 0, persistence("count bookings", err)
	}
	return total, nil
}

// Recent lists the newest bookings, optionally for one user.
func (s *BookingService) Recent(ctx context.Context, userID *uuid.UUID, limit int) ([]models.Booking, error) {
	return s.List(ctx, repositories.BookingFilter{
		Filter: repositories.Filter{Order: repositories.OrderDesc, Limit: clampLimit(limit, 10, 100)},
		UserID: userID,
	})
}

// Update changes quantity only while the booking is pending, since a
// confirmed booking already holds stock and issued tickets.
func (s *BookingService) Update(ctx context.Context, id uuid.UUID, input UpdateBookingInput) (*models.Booking, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var updated *models.Booking
	err := database.WithinTransaction(ctx, s.db, func(ctx context.Context) error {
		current, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return persistence("load booking", err)
		}
		if current == nil {
			return notFound("booking")
		}
		if input.Quantity != nil && *input.Quantity != current.Quantity {
			if current.Status != models.BookingPending {
				return ErrInvalidTransition
			}
			ticketType, err := s.ticketTypes.GetByID(ctx, current.TicketTypeID)
			if err != nil {
				return persistence("load ticket type", err)
			}
			if ticketType == nil {
				return notFound("ticket type")
			}
			if ticketType.Remaining() < *input.Quantity {
				return ErrInsufficientQuantity
			}
		}

		updated, err = s.bookings.Update(ctx, id, repositories.BookingUpdate{
			Quantity:   input.Quantity,
			TotalPrice: input.TotalPrice,
		})
		if err != nil {
			return persistence("update booking", err)
		}
		if updated == nil {
			return notFound("booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger := loggerFor(ctx, "bookings")
	logger.Info().Str("booking_id", id.String()).Msg("booking updated")
	return updated, nil
}

// Confirm takes the booked quantity from the ticket type and issues one
// ticket per seat. Nothing is written unless all of it succeeds.
func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	logger := loggerFor(ctx, "bookings")

	var confirmed *models.Booking
	err := database.WithinTransaction(ctx, s.db, func(ctx context.Context) error {
		booking, err := s.loadOwned(ctx, id)
		if err != nil {
			return err
		}
		if booking.Status != models.BookingPending {
			return ErrInvalidTransition
		}

		ticketType, err := s.ticketTypes.AdjustSold(ctx, booking.TicketTypeID, booking.Quantity)
		if errors.Is(err, repositories.ErrInsufficientQuantity) {
			return ErrInsufficientQuantity
		}
		if err != nil {
			return persistence("reserve tickets", err)
		}
		if ticketType == nil {
			return notFound("ticket type")
		}

		tickets := make([]models.TicketInstance, 0, booking.Quantity)
		for i := 0; i < booking.Quantity; i++ {
			tickets = append(tickets, models.TicketInstance{
				UserID:       booking.UserID,
				TicketTypeID: booking.TicketTypeID,
				BookingID:    booking.ID,
				Code:         NewTicketCode(),
				Status:       models.TicketActive,
			})
		}
		if err := s.tickets.CreateBatch(ctx, tickets); err != nil {
			return persistence("issue tickets", err)
		}

		status := models.BookingConfirmed
		confirmed, err = s.bookings.Update(ctx, id, repositories.BookingUpdate{Status: &status})
		if err != nil {
			return persistence("confirm booking", err)
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("booking_id", id.String()).Msg("booking confirmation failed")
		return nil, err
	}

	logger.Info().Str("booking_id", id.String()).Int("tickets", confirmed.Quantity).Msg("booking confirmed")
	return confirmed, nil
}

// Cancel releases stock and voids active tickets when the booking had
// been confirmed.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	logger := loggerFor(ctx, "bookings")

	var cancelled *models.Booking
	err := database.WithinTransaction(ctx, s.db, func(ctx context.Context) error {
		booking, err := s.loadOwned(ctx, id)
		if err != nil {
			return err
		}
		switch booking.Status {
		case models.BookingCancelled:
			return ErrInvalidTransition
		case models.BookingConfirmed:
			if _, err := s.ticketTypes.AdjustSold(ctx, booking.TicketTypeID, -booking.Quantity); err != nil {
				if errors.Is(err, repositories.ErrInsufficientQuantity) {
					return ErrInsufficientQuantity
				}
				return persistence("release tickets", err)
			}
			if _, err := s.tickets.UpdateStatusByBooking(ctx, booking.ID, models.TicketActive, models.TicketCancelled); err != nil {
				return persistence("cancel tickets", err)
			}
		}

		status := models.BookingCancelled
		cancelled, err = s.bookings.Update(ctx, id, repositories.BookingUpdate{Status: &status})
		if err != nil {
			return persistence("cancel booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("booking_id", id.String()).Msg("booking cancelled")
	return cancelled, nil
}

func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return persistence("delete booking", err)
	}
	if !deleted {
		return notFound("booking")
	}
	logger := loggerFor(ctx, "bookings")
	logger.Info().Str("booking_id", id.String()).Msg("booking deleted")
	return nil
}

func (s *BookingService) loadOwned(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("load booking", err)
	}
	if booking == nil {
		return nil, notFound("booking")
	}
	if err := authorizeOwnerOr(ctx, booking.UserID, auth.CapBookingsManage); err != nil {
		return nil, err
	}
	return booking, nil
}

// NewTicketCode returns a random 32 character upper-case ticket code.
func NewTicketCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
