package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/models"
	"gorm.io/gorm"
)

var eventSortColumns = map[string]bool{
	"created_at": true,
	"start_time": true,
	"end_time":   true,
}

type EventFilter struct {
	Filter
	OrganizerID     *uuid.UUID
	Status          *models.EventStatus
	Approved        *bool
	Rejected        *bool
	TitleContains   string
	VenueContains   string
	CountryContains string
	// Window keeps events that start and end inside the range, inclusive.
	Window      *DateRange
	HasBookings *bool
	SortBy      string
}

func (f EventFilter) where(db *gorm.DB) *gorm.DB {
	db = f.Filter.where(db)
	db = equal(db, "organizer_id", f.OrganizerID)
	db = equal(db, "status", f.Status)
	db = equal(db, "approved", f.Approved)
	db = equal(db, "rejected", f.Rejected)
	db = contains(db, "title", f.TitleContains)
	db = contains(db, "venue", f.VenueContains)
	db = contains(db, "country", f.CountryContains)
	if f.Window != nil {
		db = db.Where("start_time >= ? AND end_time <= ?", f.Window.Start.UTC(), f.Window.End.UTC())
	}
	if f.HasBookings != nil {
		exists := "EXISTS (SELECT 1 FROM bookings JOIN ticket_types ON ticket_types.id = bookings.ticket_type_id WHERE ticket_types.event_id = events.id)"
		if *f.HasBookings {
			db = db.Where(exists)
		} else {
			db = db.Where("NOT " + exists)
		}
	}
	return db
}

func (f EventFilter) sortColumn() string {
	if eventSortColumns[f.SortBy] {
		return f.SortBy
	}
	return "created_at"
}

type EventUpdate struct {
	Title       *string
	Description *string
	Venue       *string
	Country     *string
	StartTime   *time.Time
	EndTime     *time.Time
	FlyerURL    *string
	Status      *models.EventStatus
	Approved    *bool
	Rejected    *bool
	OrganizerID *uuid.UUID
}

func (u EventUpdate) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Title != nil {
		fields["title"] = *u.Title
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Venue != nil {
		fields["venue"] = *u.Venue
	}
	if u.Country != nil {
		fields["country"] = *u.Country
	}
	if u.StartTime != nil {
		fields["start_time"] = u.StartTime.UTC()
	}
	if u.EndTime != nil {
		fields["end_time"] = u.EndTime.UTC()
	}
	if u.FlyerURL != nil {
		fields["flyer_url"] = *u.FlyerURL
	}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.Approved != nil {
		fields["approved"] = *u.Approved
	}
	if u.Rejected != nil {
		fields["rejected"] = *u.Rejected
	}
	if u.OrganizerID != nil {
		fields["organizer_id"] = *u.OrganizerID
	}
	return fields
}

type EventRepository struct {
	store store[models.Event]
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{store: store[models.Event]{db: db}}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	event.StartTime = event.StartTime.UTC()
	event.EndTime = event.EndTime.UTC()
	return r.store.create(ctx, event)
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.store.get(ctx, id)
}

// GetWithTicketTypes loads the event together with its ticket types.
func (r *EventRepository) GetWithTicketTypes(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.store.first(ctx, byID(id), preload("TicketTypes"))
}

func (r *EventRepository) Update(ctx context.Context, id uuid.UUID, update EventUpdate) (*models.Event, error) {
	return r.store.update(ctx, id, update.fields())
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.delete(ctx, id)
}

func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	return r.store.list(ctx, filter.where, filter.page(filter.sortColumn()))
}

func (r *EventRepository) Count(ctx context.Context, filter EventFilter) (int64, error) {
	return r.store.count(ctx, filter.where)
}
