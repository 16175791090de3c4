package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketTypeRepository_AdjustSoldStaysInBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, f.user(t, "organizer"), "Koroga", time.Now().Add(time.Hour))
	ticketType := f.ticketType(t, event, 5)

	got, err := f.ticketTypes.AdjustSold(ctx, ticketType.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.QuantitySold)
	assert.Equal(t, 2, got.Remaining())

	_, err = f.ticketTypes.AdjustSold(ctx, ticketType.ID, 3)
	require.ErrorIs(t, err, repositories.ErrInsufficientQuantity)

	got, err = f.ticketTypes.AdjustSold(ctx, ticketType.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, got.QuantitySold)

	_, err = f.ticketTypes.AdjustSold(ctx, ticketType.ID, -6)
	require.ErrorIs(t, err, repositories.ErrInsufficientQuantity)

	got, err = f.ticketTypes.AdjustSold(ctx, ticketType.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantitySold)

	missing, err := f.ticketTypes.AdjustSold(ctx, uuid.New(), 1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTicketTypeRepository_ListByEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer")
	first := f.event(t, organizer, "First", time.Now().Add(time.Hour))
	second := f.event(t, organizer, "Second", time.Now().Add(time.Hour))
	f.ticketType(t, first, 10)
	f.ticketType(t, first, 10)
	f.ticketType(t, second, 10)

	list, err := f.ticketTypes.List(ctx, repositories.TicketTypeFilter{EventID: &first.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	updated, err := f.ticketTypes.Update(ctx, list[0].ID, repositories.TicketTypeUpdate{Price: ptr(2500)})
	require.NoError(t, err)
	assert.Equal(t, 2500, updated.Price)
	assert.Equal(t, "Regular", updated.Name)
	assert.Equal(t, 10, updated.QuantityAvailable)
}

func TestTicketTypeRepository_UpdateKeepsAvailableAboveSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, f.user(t, "organizer"), "Blankets & Wine", time.Now().Add(time.Hour))
	ticketType := f.ticketType(t, event, 10)

	_, err := f.ticketTypes.AdjustSold(ctx, ticketType.ID, 8)
	require.NoError(t, err)

	// The repository enforces this on its own, with no read beforehand.
	_, err = f.ticketTypes.Update(ctx, ticketType.ID, repositories.TicketTypeUpdate{QuantityAvailable: ptr(6), Price: ptr(1)})
	require.ErrorIs(t, err, repositories.ErrInsufficientQuantity)

	got, err := f.ticketTypes.GetByID(ctx, ticketType.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.QuantityAvailable)
	assert.Equal(t, 1500, got.Price)

	got, err = f.ticketTypes.Update(ctx, ticketType.ID, repositories.TicketTypeUpdate{QuantityAvailable: ptr(8)})
	require.NoError(t, err)
	assert.Equal(t, 8, got.QuantityAvailable)
	assert.Equal(t, 0, got.Remaining())

	missing, err := f.ticketTypes.Update(ctx, uuid.New(), repositories.TicketTypeUpdate{QuantityAvailable: ptr(1)})
	require.NoError(t, err)
	assert.Nil(t, missing)
}
