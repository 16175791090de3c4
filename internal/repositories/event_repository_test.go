package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_CreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	organizer := f.user(t, "organizer")
	start := time.Date(2026, 12, 5, 15, 0, 0, 0, time.UTC)

	event := f.event(t, organizer, "Blankets & Wine", start)

	got, err := f.events.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.DefaultCountry, got.Country)
	assert.Equal(t, models.EventUpcoming, got.Status)
	assert.False(t, got.Approved)
	assert.False(t, got.Rejected)
	assert.True(t, start.Equal(got.StartTime))
	assert.Equal(t, organizer.ID, got.OrganizerID)
}

func TestEventRepository_FiltersAndSorting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer")
	other := f.user(t, "other")
	base := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)

	late := f.event(t, organizer, "Nairobi Jazz Night", base.Add(72*time.Hour))
	early := f.event(t, organizer, "Mombasa Beach Fest", base)
	foreign := f.event(t, other, "Kampala Comedy", base.Add(24*time.Hour))
	_, err := f.events.Update(ctx, foreign.ID, repositories.EventUpdate{Country: ptr("Uganda"), Approved: ptr(true)})
	require.NoError(t, err)

	mine, err := f.events.List(ctx, repositories.EventFilter{OrganizerID: &organizer.ID, SortBy: "start_time"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, early.ID, mine[0].ID)
	assert.Equal(t, late.ID, mine[1].ID)

	jazz, err := f.events.List(ctx, repositories.EventFilter{TitleContains: "jazz"})
	require.NoError(t, err)
	require.Len(t, jazz, 1)
	assert.Equal(t, late.ID, jazz[0].ID)

	uganda, err := f.events.Count(ctx, repositories.EventFilter{CountryContains: "UGAN", Approved: ptr(true)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, uganda)

	window, err := f.events.List(ctx, repositories.EventFilter{Window: &repositories.DateRange{
		Start: base,
		End:   base.Add(24*time.Hour + 4*time.Hour),
	}})
	require.NoError(t, err)
	assert.Len(t, window, 2, "both bounds are inclusive")

	// unknown sort columns fall back to created_at
	_, err = f.events.List(ctx, repositories.EventFilter{SortBy: "title; DROP TABLE events"})
	require.NoError(t, err)
}

func TestEventRepository_HasBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	organizer := f.user(t, "organizer")
	buyer := f.user(t, "buyer")
	start := time.Now().Add(48 * time.Hour)

	booked := f.event(t, organizer, "Booked", start)
	f.event(t, organizer, "Empty", start)
	f.booking(t, buyer, f.ticketType(t, booked, 10), 2)

	withBookings, err := f.events.List(ctx, repositories.EventFilter{HasBookings: ptr(true)})
	require.NoError(t, err)
	require.Len(t, withBookings, 1)
	assert.Equal(t, booked.ID, withBookings[0].ID)

	without, err := f.events.Count(ctx, repositories.EventFilter{HasBookings: ptr(false)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, without)
}

func TestEventRepository_GetWithTicketTypes(t *testing.T) {
	f := newFixture(t)
	event := f.event(t, f.user(t, "organizer"), "Sauti Sol Live", time.Now().Add(time.Hour))
	f.ticketType(t, event, 100)
	f.ticketType(t, event, 20)

	got, err := f.events.GetWithTicketTypes(context.Background(), event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.TicketTypes, 2)
}
