package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketInstanceRepository_BatchAndRedeem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "buyer")
	ticketType := f.ticketType(t, f.event(t, f.user(t, "organizer"), "Safari Rally", time.Now().Add(time.Hour)), 10)
	booking := f.booking(t, buyer, ticketType, 2)

	tickets := []models.TicketInstance{
		{UserID: buyer.ID, TicketTypeID: ticketType.ID, BookingID: booking.ID, Code: uuid.NewString()},
		{UserID: buyer.ID, TicketTypeID: ticketType.ID, BookingID: booking.ID, Code: uuid.NewString()},
	}
	require.NoError(t, f.tickets.CreateBatch(ctx, tickets))

	issued, err := f.tickets.List(ctx, repositories.TicketInstanceFilter{BookingID: &booking.ID})
	require.NoError(t, err)
	require.Len(t, issued, 2)
	for _, ticket := range issued {
		assert.Equal(t, models.TicketActive, ticket.Status)
	}

	byCode, err := f.tickets.GetByCode(ctx, tickets[0].Code)
	require.NoError(t, err)
	require.NotNil(t, byCode)

	changed, err := f.tickets.MarkUsed(ctx, byCode.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.tickets.MarkUsed(ctx, byCode.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, changed, "a used ticket cannot be used again")

	cancelled, err := f.tickets.UpdateStatusByBooking(ctx, booking.ID, models.TicketActive, models.TicketCancelled)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cancelled)

	used, err := f.tickets.GetByID(ctx, byCode.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketUsed, used.Status)
	require.NotNil(t, used.UsedAt)
}

func TestBookingRepository_GetDetailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "buyer")
	ticketType := f.ticketType(t, f.event(t, f.user(t, "organizer"), "Koroga", time.Now().Add(time.Hour)), 10)
	booking := f.booking(t, buyer, ticketType, 1)

	got, err := f.bookings.GetDetailed(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.TicketType)
	assert.Equal(t, ticketType.ID, got.TicketType.ID)
	assert.Nil(t, got.Payment)
	assert.Empty(t, got.TicketInstances)

	updated, err := f.bookings.Update(ctx, booking.ID, repositories.BookingUpdate{Status: ptr(models.BookingConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, updated.Status)
	assert.Equal(t, 1, updated.Quantity)
	assert.Equal(t, booking.TotalPrice, updated.TotalPrice)
}
