package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
)

type CreateEventInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Venue       string     `json:"venue" validate:"required,max=255"`
	Country     string     `json:"country" validate:"max=100"`
	StartTime   time.Time  `json:"start_time" validate:"required"`
	EndTime     time.Time  `json:"end_time" validate:"required,gtefield=StartTime"`
	FlyerURL    string     `json:"flyer_url" validate:"max=500"`
	OrganizerID *uuid.UUID `json:"organizer_id"`
}

type UpdateEventInput struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Venue       *string    `json:"venue" validate:"omitempty,max=255"`
	Country     *string    `json:"country" validate:"omitempty,max=100"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	FlyerURL    *string    `json:"flyer_url" validate:"omitempty,max=500"`
}

type EventService struct {
	events *repositories.EventRepository
}

func NewEventService(events *repositories.EventRepository) *EventService {
	return &EventService{events: events}
}

// Create stores a new upcoming event. The organizer is the caller unless an
// admin names someone else.
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	logger := loggerFor(ctx, "events")
	input.Title = strings.TrimSpace(input.Title)
	input.Venue = strings.TrimSpace(input.Venue)
	if err := validateStruct(input); err != nil {
		logger.Warn().Err(err).Msg("event rejected")
		return nil, err
	}

	organizerID, err := resolveOrganizer(ctx, input.OrganizerID)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:       input.Title,
		Description: input.Description,
		Venue:       input.Venue,
		Country:     strings.TrimSpace(input.Country),
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		FlyerURL:    input.FlyerURL,
		OrganizerID: organizerID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, persistence("create event", err)
	}

	logger.Info().Str("event_id", event.ID.String()).Str("organizer_id", organizerID.String()).Msg("event created")
	return event, nil
}

func resolveOrganizer(ctx context.Context, requested *uuid.UUID) (uuid.UUID, error) {
	identity := auth.IdentityFrom(ctx)
	switch {
	case requested != nil && (identity == nil || identity.IsAdmin() || identity.Owns(*requested)):
		return *requested, nil
	case requested != nil:
		return uuid.Nil, ErrNotOwner
	case identity != nil:
		return identity.UserID, nil
	}
	return uuid.Nil, invalid("organizer_id", "is required")
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("load event", err)
	}
	if event == nil {
		return nil, notFound("event")
	}
	return event, nil
}

func (s *EventService) GetWithTicketTypes(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.events.GetWithTicketTypes(ctx, id)
	if err != nil {
		return nil, persistence("load event", err)
	}
	if event == nil {
		return nil, notFound("event")
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context, filter repositories.EventFilter) ([]models.Event, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("status", "unknown event status")
	}
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, persistence("list events", err)
	}
	return events, nil
}

func (s *EventService) ListByStatus(ctx context.Context, status string) ([]models.Event, error) {
	eventStatus := models.EventStatus(strings.ToLower(status))
	return s.List(ctx, repositories.EventFilter{Status: &eventStatus})
}

func (s *EventService) Count(ctx context.Context, filter repositories.EventFilter) (int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return 0, invalid("status", "unknown event status")
	}
	total, err := s.events.Count(ctx, filter)
	if err != nil {
		return 0, persistence("count events", err)
	}
	return total, nil
}

// Latest returns the most recently created events.
func (s *EventService) Latest(ctx context.Context, limit int) ([]models.Event, error) {
	return s.List(ctx, repositories.EventFilter{Filter: repositories.Filter{
		Order: repositories.OrderDesc,
		Limit: clampLimit(limit, 10, 100),
	}})
}

// Update applies a partial change and re-checks the time window against
// the merged record.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*models.Event, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, invalid("title", "is required")
	}
	if input.Venue != nil && strings.TrimSpace(*input.Venue) == "" {
		return nil, invalid("venue", "is required")
	}
	current, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end := current.StartTime, current.EndTime
	if input.StartTime != nil {
		start = *input.StartTime
	}
	if input.EndTime != nil {
		end = *input.EndTime
	}
	if end.Before(start) {
		return nil, invalid("end_time", "must not be before start_time")
	}

	return s.apply(ctx, id, repositories.EventUpdate{
		Title:       trimmed(input.Title),
		Description: input.Description,
		Venue:       trimmed(input.Venue),
		Country:     trimmed(input.Country),
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		FlyerURL:    input.FlyerURL,
	}, "event updated")
}

// Approve and Reject always leave exactly one of the two flags set.
func (s *EventService) Approve(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.apply(ctx, id, repositories.EventUpdate{Approved: boolPtr(true), Rejected: boolPtr(false)}, "event approved")
}

func (s *EventService) Reject(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.apply(ctx, id, repositories.EventUpdate{Approved: boolPtr(false), Rejected: boolPtr(true)}, "event rejected")
}

func (s *EventService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Event, error) {
	eventStatus := models.EventStatus(strings.ToLower(status))
	if !eventStatus.Valid() {
		return nil, invalid("status", "unknown event status")
	}
	if _, err := s.owned(ctx, id); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, repositories.EventUpdate{Status: &eventStatus}, "event status changed")
}

func (s *EventService) SetFlyer(ctx context.Context, id uuid.UUID, url string) (*models.Event, error) {
	if _, err := s.owned(ctx, id); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, repositories.EventUpdate{FlyerURL: &url}, "event flyer set")
}

func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.owned(ctx, id); err != nil {
		return err
	}
	deleted, err := s.events.Delete(ctx, id)
	if err != nil {
		return persistence("delete event", err)
	}
	if !deleted {
		return notFound("event")
	}
	logger := loggerFor(ctx, "events")
	logger.Info().Str("event_id", id.String()).Msg("event deleted")
	return nil
}

// owned loads the event and checks the caller may modify it.
func (s *EventService) owned(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(ctx, event.OrganizerID); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) apply(ctx context.Context, id uuid.UUID, update repositories.EventUpdate, message string) (*models.Event, error) {
	event, err := s.events.Update(ctx, id, update)
	if err != nil {
		return nil, persistence("update event", err)
	}
	if event == nil {
		return nil, notFound("event")
	}
	logger := loggerFor(ctx, "events")
	logger.Info().Str("event_id", id.String()).Msg(message)
	return event, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
