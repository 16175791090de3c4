package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/services"
	"github.com/mgltickets/api/internal/testdb"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	db          *gorm.DB
	userRepo    *repositories.UserRepository
	ticketRepo  *repositories.TicketInstanceRepository
	typeRepo    *repositories.TicketTypeRepository
	tokens      *auth.TokenManager
	signer      *helpers.TicketSignature
	users       *services.UserService
	auth        *services.AuthService
	events      *services.EventService
	ticketTypes *services.TicketTypeService
	bookings    *services.BookingService
	tickets     *services.TicketInstanceService
	payments    *services.PaymentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testdb.New(t)

	userRepo := repositories.NewUserRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	typeRepo := repositories.NewTicketTypeRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	ticketRepo := repositories.NewTicketInstanceRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	tokens, err := auth.NewTokenManager("test-secret", "HS256", time.Hour, "test")
	require.NoError(t, err)
	signer := helpers.NewTicketSignature("test-secret")

	users := services.NewUserService(userRepo)
	return &env{
		db:          db,
		userRepo:    userRepo,
		ticketRepo:  ticketRepo,
		typeRepo:    typeRepo,
		tokens:      tokens,
		signer:      signer,
		users:       users,
		auth:        services.NewAuthService(users, userRepo, tokens),
		events:      services.NewEventService(eventRepo),
		ticketTypes: services.NewTicketTypeService(db, typeRepo, eventRepo),
		bookings:    services.NewBookingService(db, bookingRepo, typeRepo, ticketRepo),
		tickets:     services.NewTicketInstanceService(ticketRepo, bookingRepo, typeRepo, eventRepo, signer),
		payments:    services.NewPaymentService(paymentRepo, bookingRepo),
	}
}

func (e *env) register(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), services.RegisterInput{
		Name:        name,
		Email:       fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password:    "password123",
		PhoneNumber: "0712345678",
		Role:        role,
	})
	require.NoError(t, err)
	return user
}

// as returns a context carrying user's identity.
func as(user *models.User) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
}

func (e *env) event(t *testing.T, organizer *models.User) *models.Event {
	t.Helper()
	start := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
	event, err := e.events.Create(as(organizer), services.CreateEventInput{
		Title:     "Nairobi Jazz Festival",
		Venue:     "Carnivore Grounds",
		StartTime: start,
		EndTime:   start.Add(6 * time.Hour),
	})
	require.NoError(t, err)
	return event
}

func (e *env) ticketType(t *testing.T, organizer *models.User, event *models.Event, available int) *models.TicketType {
	t.Helper()
	ticketType, err := e.ticketTypes.Create(as(organizer), services.CreateTicketTypeInput{
		EventID:           event.ID,
		Name:              "VIP",
		Price:             5000,
		QuantityAvailable: available,
	})
	require.NoError(t, err)
	return ticketType
}

func (e *env) booking(t *testing.T, buyer *models.User, ticketType *models.TicketType, quantity int) *models.Booking {
	t.Helper()
	booking, err := e.bookings.Create(as(buyer), services.CreateBookingInput{
		TicketTypeID: ticketType.ID,
		Quantity:     quantity,
		TotalPrice:   quantity * ticketType.Price,
	})
	require.NoError(t, err)
	return booking
}

func ptr[V any](v V) *V {
	return &v
}
