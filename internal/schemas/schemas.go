// Package schemas holds the outbound JSON shapes. Every timestamp leaves
// the API in East Africa Time and password hashes never appear.
package schemas

import (
	"time"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/models"
	"github.com/shopspring/decimal"
)

type UserOut struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phone_number"`
	Role        models.Role `json:"role"`
	IsActive    bool        `json:"is_active"`
	IsVerified  bool        `json:"is_verified"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func User(user *models.User) UserOut {
	return UserOut{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		IsActive:    user.IsActive,
		IsVerified:  user.IsVerified,
		CreatedAt:   helpers.ToEAT(user.CreatedAt),
		UpdatedAt:   helpers.ToEAT(user.UpdatedAt),
	}
}

type EventOut struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Venue       string             `json:"venue"`
	Country     string             `json:"country"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	FlyerURL    string             `json:"flyer_url"`
	Status      models.EventStatus `json:"status"`
	Approved    bool               `json:"approved"`
	Rejected    bool               `json:"rejected"`
	OrganizerID uuid.UUID          `json:"organizer_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	TicketTypes []TicketTypeOut    `json:"ticket_types,omitempty"`
}

func Event(event *models.Event) EventOut {
	out := EventOut{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Venue:       event.Venue,
		Country:     event.Country,
		StartTime:   helpers.ToEAT(event.StartTime),
		EndTime:     helpers.ToEAT(event.EndTime),
		FlyerURL:    event.FlyerURL,
		Status:      event.Status,
		Approved:    event.Approved,
		Rejected:    event.Rejected,
		OrganizerID: event.OrganizerID,
		CreatedAt:   helpers.ToEAT(event.CreatedAt),
		UpdatedAt:   helpers.ToEAT(event.UpdatedAt),
	}
	if len(event.TicketTypes) > 0 {
		out.TicketTypes = TicketTypes(event.TicketTypes)
	}
	return out
}

type TicketTypeOut struct {
	ID                uuid.UUID `json:"id"`
	EventID           uuid.UUID `json:"event_id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	Price             int       `json:"price"`
	QuantityAvailable int       `json:"quantity_available"`
	QuantitySold      int       `json:"quantity_sold"`
	Remaining         int       `json:"remaining"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func TicketType(ticketType *models.TicketType) TicketTypeOut {
	return TicketTypeOut{
		ID:                ticketType.ID,
		EventID:           ticketType.EventID,
		Name:              ticketType.Name,
		Description:       ticketType.Description,
		Price:             ticketType.Price,
		QuantityAvailable: ticketType.QuantityAvailable,
		QuantitySold:      ticketType.QuantitySold,
		Remaining:         ticketType.Remaining(),
		CreatedAt:         helpers.ToEAT(ticketType.CreatedAt),
		UpdatedAt:         helpers.ToEAT(ticketType.UpdatedAt),
	}
}

type BookingOut struct {
	ID           uuid.UUID            `json:"id"`
	UserID       uuid.UUID            `json:"user_id"`
	TicketTypeID uuid.UUID            `json:"ticket_type_id"`
	Quantity     int                  `json:"quantity"`
	Status       models.BookingStatus `json:"status"`
	TotalPrice   int                  `json:"total_price"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Payment      *PaymentOut          `json:"payment,omitempty"`
	Tickets      []TicketOut          `json:"tickets,omitempty"`
}

func Booking(booking *models.Booking) BookingOut {
	out := BookingOut{
		ID:           booking.ID,
		UserID:       booking.UserID,
		TicketTypeID: booking.TicketTypeID,
		Quantity:     booking.Quantity,
		Status:       booking.Status,
		TotalPrice:   booking.TotalPrice,
		CreatedAt:    helpers.ToEAT(booking.CreatedAt),
		UpdatedAt:    helpers.ToEAT(booking.UpdatedAt),
	}
	if booking.Payment != nil {
		payment := Payment(booking.Payment)
		out.Payment = &payment
	}
	if len(booking.TicketInstances) > 0 {
		out.Tickets = Tickets(booking.TicketInstances)
	}
	return out
}

type TicketOut struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"user_id"`
	TicketTypeID uuid.UUID           `json:"ticket_type_id"`
	BookingID    uuid.UUID           `json:"booking_id"`
	Code         string              `json:"code"`
	Status       models.TicketStatus `json:"status"`
	IssuedTo     *string             `json:"issued_to"`
	UsedAt       *time.Time          `json:"used_at"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func Ticket(ticket *models.TicketInstance) TicketOut {
	return TicketOut{
		ID:           ticket.ID,
		UserID:       ticket.UserID,
		TicketTypeID: ticket.TicketTypeID,
		BookingID:    ticket.BookingID,
		Code:         ticket.Code,
		Status:       ticket.Status,
		IssuedTo:     ticket.IssuedTo,
		UsedAt:       helpers.ToEATPtr(ticket.UsedAt),
		CreatedAt:    helpers.ToEAT(ticket.CreatedAt),
		UpdatedAt:    helpers.ToEAT(ticket.UpdatedAt),
	}
}

type PaymentOut struct {
	ID              uuid.UUID            `json:"id"`
	BookingID       uuid.UUID            `json:"booking_id"`
	Amount          decimal.Decimal      `json:"amount"`
	Currency        string               `json:"currency"`
	Method          string               `json:"method"`
	Status          models.PaymentStatus `json:"status"`
	MpesaRef        string               `json:"mpesa_ref"`
	CallbackPayload *string              `json:"callback_payload,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func Payment(payment *models.Payment) PaymentOut {
	return PaymentOut{
		ID:              payment.ID,
		BookingID:       payment.BookingID,
		Amount:          payment.Amount,
		Currency:        payment.Currency,
		Method:          payment.Method,
		Status:          payment.Status,
		MpesaRef:        payment.MpesaRef,
		CallbackPayload: payment.CallbackPayload,
		CreatedAt:       helpers.ToEAT(payment.CreatedAt),
		UpdatedAt:       helpers.ToEAT(payment.UpdatedAt),
	}
}

func Users(users []models.User) []UserOut {
	return mapAll(users, User)
}

func Events(events []models.Event) []EventOut {
	return mapAll(events, Event)
}

func TicketTypes(ticketTypes []models.TicketType) []TicketTypeOut {
	return mapAll(ticketTypes, TicketType)
}

func Bookings(bookings []models.Booking) []BookingOut {
	return mapAll(bookings, Booking)
}

func Tickets(tickets []models.TicketInstance) []TicketOut {
	return mapAll(tickets, Ticket)
}

func Payments(payments []models.Payment) []PaymentOut {
	return mapAll(payments, Payment)
}

func mapAll[M any, O any](items []M, convert func(*M) O) []O {
	out := make([]O, 0, len(items))
	for i := range items {
		out = append(out, convert(&items[i]))
	}
	return out
}
