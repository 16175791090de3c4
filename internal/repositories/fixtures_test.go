package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/testdb"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	users       *repositories.UserRepository
	events      *repositories.EventRepository
	ticketTypes *repositories.TicketTypeRepository
	bookings    *repositories.BookingRepository
	tickets     *repositories.TicketInstanceRepository
	payments    *repositories.PaymentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	return &fixture{
		db:          db,
		users:       repositories.NewUserRepository(db),
		events:      repositories.NewEventRepository(db),
		ticketTypes: repositories.NewTicketTypeRepository(db),
		bookings:    repositories.NewBookingRepository(db),
		tickets:     repositories.NewTicketInstanceRepository(db),
		payments:    repositories.NewPaymentRepository(db),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		PasswordHash: "hash",
		PhoneNumber:  "0712345678",
		IsActive:     true,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) event(t *testing.T, organizer *models.User, title string, start time.Time) *models.Event {
	t.Helper()
	event := &models.Event{
		Title:       title,
		Venue:       "KICC, Nairobi",
		StartTime:   start,
		EndTime:     start.Add(4 * time.Hour),
		OrganizerID: organizer.ID,
	}
	require.NoError(t, f.events.Create(context.Background(), event))
	return event
}

func (f *fixture) ticketType(t *testing.T, event *models.Event, available int) *models.TicketType {
	t.Helper()
	ticketType := &models.TicketType{
		EventID:           event.ID,
		Name:              "Regular",
		Price:             1500,
		QuantityAvailable: available,
	}
	require.NoError(t, f.ticketTypes.Create(context.Background(), ticketType))
	return ticketType
}

func (f *fixture) booking(t *testing.T, user *models.User, ticketType *models.TicketType, quantity int) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		UserID:       user.ID,
		TicketTypeID: ticketType.ID,
		Quantity:     quantity,
		TotalPrice:   quantity * ticketType.Price,
	}
	require.NoError(t, f.bookings.Create(context.Background(), booking))
	return booking
}

func ptr[V any](v V) *V {
	return &v
}
