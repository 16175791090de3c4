package services_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedTicket(t *testing.T, e *env) (*models.User, *models.User, *models.TicketInstance) {
	t.Helper()
	organizer := e.register(t, "organizer", models.RoleOrganizer)
	buyer := e.register(t, "buyer", models.RoleAttendee)
	booking := e.booking(t, buyer, e.ticketType(t, organizer, e.event(t, organizer), 5), 1)
	_, err := e.bookings.Confirm(as(buyer), booking.ID)
	require.NoError(t, err)

	tickets, err := e.tickets.List(context.Background(), repositories.TicketInstanceFilter{BookingID: &booking.ID})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	return organizer, buyer, &tickets[0]
}

func TestRedeem_OnlyOnce(t *testing.T) {
	e := newEnv(t)
	organizer, _, ticket := confirmedTicket(t, e)
	payload := e.signer.Payload(ticket)

	redeemed, err := e.tickets.Redeem(as(organizer), payload)
	require.NoError(t, err)
	assert.Equal(t, models.TicketUsed, redeemed.Status)
	require.NotNil(t, redeemed.UsedAt)

	_, err = e.tickets.Redeem(as(organizer), payload)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestRedeem_RejectsForgeries(t *testing.T) {
	e := newEnv(t)
	organizer, buyer, ticket := confirmedTicket(t, e)

	_, err := e.tickets.Redeem(as(organizer), ticket.Code+".forged")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = e.tickets.Redeem(as(organizer), "garbage")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = e.tickets.Redeem(as(organizer), "UNKNOWN.sig")
	assert.ErrorIs(t, err, services.ErrNotFound)

	other := e.register(t, "other-organizer", models.RoleOrganizer)
	_, err = e.tickets.Redeem(as(other), e.signer.Payload(ticket))
	assert.ErrorIs(t, err, services.ErrForbidden)

	still, err := e.tickets.Get(as(buyer), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketActive, still.Status)
}

func TestQRCode(t *testing.T) {
	e := newEnv(t)
	_, buyer, ticket := confirmedTicket(t, e)

	png, err := e.tickets.QRCode(as(buyer), ticket.ID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	stranger := e.register(t, "stranger", models.RoleAttendee)
	_, err = e.tickets.QRCode(as(stranger), ticket.ID, 0)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestIssueUpdateDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, buyer, ticket := confirmedTicket(t, e)

	extra, err := e.tickets.Issue(ctx, services.IssueTicketInput{BookingID: ticket.BookingID, IssuedTo: ptr("Guest")})
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, extra.UserID)
	assert.NotEqual(t, ticket.Code, extra.Code)

	used := models.TicketUsed
	updated, err := e.tickets.Update(ctx, extra.ID, services.UpdateTicketInput{Status: &used})
	require.NoError(t, err)
	assert.Equal(t, models.TicketUsed, updated.Status)
	assert.NotNil(t, updated.UsedAt)
	require.NotNil(t, updated.IssuedTo)
	assert.Equal(t, "Guest", *updated.IssuedTo)

	require.NoError(t, e.tickets.Delete(ctx, extra.ID))
	assert.ErrorIs(t, e.tickets.Delete(ctx, extra.ID), services.ErrNotFound)
}
