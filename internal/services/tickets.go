package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/skip2/go-qrcode"
)

// TicketSigner produces and checks the tamper-proof payload encoded in a
// ticket's QR image.
type TicketSigner interface {
	Payload(ticket *models.TicketInstance) string
	Code(payload string) (string, error)
	Verify(ticket *models.TicketInstance, payload string) bool
}

type IssueTicketInput struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
	IssuedTo  *string   `json:"issued_to" validate:"omitempty,max=150"`
}

type UpdateTicketInput struct {
	Status   *models.TicketStatus `json:"status" validate:"omitempty,oneof=active used cancelled"`
	IssuedTo *string              `json:"issued_to" validate:"omitempty,max=150"`
}

type TicketInstanceService struct {
	tickets     *repositories.TicketInstanceRepository
	bookings    *repositories.BookingRepository
	ticketTypes *repositories.TicketTypeRepository
	events      *repositories.EventRepository
	signer      TicketSigner
	now         func() time.Time
}

func NewTicketInstanceService(
	tickets *repositories.TicketInstanceRepository,
	bookings *repositories.BookingRepository,
	ticketTypes *repositories.TicketTypeRepository,
	events *repositories.EventRepository,
	signer TicketSigner,
) *TicketInstanceService {
	return &TicketInstanceService{
		tickets:     tickets,
		bookings:    bookings,
		ticketTypes: ticketTypes,
		events:      events,
		signer:      signer,
		now:         time.Now,
	}
}

// Issue adds a single ticket to an existing booking outside the confirm flow.
func (s *TicketInstanceService) Issue(ctx context.Context, input IssueTicketInput) (*models.TicketInstance, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, persistence("load booking", err)
	}
	if booking == nil {
		return nil, notFound("booking")
	}

	ticket := &models.TicketInstance{
		UserID:       booking.UserID,
		TicketTypeID: booking.TicketTypeID,
		BookingID:    booking.ID,
		Code:         NewTicketCode(),
		Status:       models.TicketActive,
		IssuedTo:     input.IssuedTo,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, persistence("issue ticket", err)
	}
	logger := loggerFor(ctx, "tickets")
	logger.Info().Str("ticket_id", ticket.ID.String()).Str("booking_id", booking.ID.String()).Msg("ticket issued")
	return ticket, nil
}

// Get returns the ticket if the caller holds it or manages tickets.
func (s *TicketInstanceService) Get(ctx context.Context, id uuid.UUID) (*models.TicketInstance, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("load ticket", err)
	}
	if ticket == nil {
		return nil, notFound("ticket")
	}
	if err := authorizeOwnerOr(ctx, ticket.UserID, auth.CapTicketsManage); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketInstanceService) List(ctx context.Context, filter repositories.TicketInstanceFilter) ([]models.TicketInstance, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("status", "unknown ticket status")
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, persistence("list tickets", err)
	}
	return tickets, nil
}

func (s *TicketInstanceService) Count(ctx context.Context, filter repositories.TicketInstanceFilter) (int64, error) {
	total, err := s.tickets.Count(ctx, filter)
	if err != nil {
		return 0, persistence("count tickets", err)
	}
	return total, nil
}

func (s *TicketInstanceService) Update(ctx context.Context, id uuid.UUID, input UpdateTicketInput) (*models.TicketInstance, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	update := repositories.TicketInstanceUpdate{Status: input.Status, IssuedTo: input.IssuedTo}
	if input.Status != nil && *input.Status == models.TicketUsed {
		usedAt := s.now()
		update.UsedAt = &usedAt
	}
	ticket, err := s.tickets.Update(ctx, id, update)
	if err != nil {
		return nil, persistence("update ticket", err)
	}
	if ticket == nil {
		return nil, notFound("ticket")
	}
	logger := loggerFor(ctx, "tickets")
	logger.Info().Str("ticket_id", id.String()).Msg("ticket updated")
	return ticket, nil
}

func (s *TicketInstanceService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.tickets.Delete(ctx, id)
	if err != nil {
		return persistence("delete ticket", err)
	}
	if !deleted {
		return notFound("ticket")
	}
	logger := loggerFor(ctx, "tickets")
	logger.Info().Str("ticket_id", id.String()).Msg("ticket deleted")
	return nil
}

// QRCode renders the signed ticket payload as a PNG.
func (s *TicketInstanceService) QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketActive {
		return nil, ErrInvalidTransition
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(s.signer.Payload(ticket), qrcode.Medium, size)
	if err != nil {
		return nil, persistence("encode qr code", err)
	}
	return png, nil
}

// Redeem admits the holder of a scanned payload. The signature must match
// and the ticket must still be active; it is then marked used exactly once.
func (s *TicketInstanceService) Redeem(ctx context.Context, payload string) (*models.TicketInstance, error) {
	logger := loggerFor(ctx, "tickets")

	code, err := s.signer.Code(payload)
	if err != nil {
		return nil, invalid("payload", "malformed ticket payload")
	}
	ticket, err := s.tickets.GetByCode(ctx, code)
	if err != nil {
		return nil, persistence("load ticket", err)
	}
	if ticket == nil {
		return nil, notFound("ticket")
	}
	if !s.signer.Verify(ticket, payload) {
		logger.Warn().Str("ticket_id", ticket.ID.String()).Msg("ticket signature mismatch")
		return nil, invalid("payload", "invalid ticket signature")
	}
	if err := s.authorizeRedeem(ctx, ticket); err != nil {
		return nil, err
	}

	changed, err := s.tickets.MarkUsed(ctx, ticket.ID, s.now())
	if err != nil {
		return nil, persistence("redeem ticket", err)
	}
	if !changed {
		logger.Warn().Str("ticket_id", ticket.ID.String()).Str("status", string(ticket.Status)).Msg("ticket not redeemable")
		return nil, ErrInvalidTransition
	}

	redeemed, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, persistence("load ticket", err)
	}
	logger.Info().Str("ticket_id", ticket.ID.String()).Msg("ticket redeemed")
	return redeemed, nil
}

// authorizeRedeem limits redemption to the event's organizer and admins.
func (s *TicketInstanceService) authorizeRedeem(ctx context.Context, ticket *models.TicketInstance) error {
	ticketType, err := s.ticketTypes.GetByID(ctx, ticket.TicketTypeID)
	if err != nil {
		return persistence("load ticket type", err)
	}
	if ticketType == nil {
		return notFound("ticket type")
	}
	event, err := s.events.GetByID(ctx, ticketType.EventID)
	if err != nil {
		return persistence("load event", err)
	}
	if event == nil {
		return notFound("event")
	}
	return authorizeOwner(ctx, event.OrganizerID)
}
