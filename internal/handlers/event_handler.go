package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/schemas"
	"github.com/mgltickets/api/internal/services"
	"github.com/rs/zerolog"
)

type EventHandler struct {
	events      *services.EventService
	ticketTypes *services.TicketTypeService
	uploads     helpers.UploadConfig
}

func NewEventHandler(events *services.EventService, ticketTypes *services.TicketTypeService, uploads helpers.UploadConfig) *EventHandler {
	return &EventHandler{events: events, ticketTypes: ticketTypes, uploads: uploads}
}

// Test serves a fixed sample event without touching the database.
func (h *EventHandler) Test(c *gin.Context) {
	description := "A fantastic show with live bands and food trucks."
	start := time.Date(2025, time.November, 21, 15, 0, 0, 0, time.UTC)
	sample := models.Event{
		ID:          uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Title:       "Exciting Music Festival Tonight",
		Description: &description,
		Venue:       "Uhuru Gardens, Nairobi",
		Country:     models.DefaultCountry,
		StartTime:   start,
		EndTime:     start.Add(3 * time.Hour),
		FlyerURL:    "http://example.com/flyer1.png",
		Status:      models.EventUpcoming,
		OrganizerID: uuid.MustParse("00000000-0000-0000-0000-00000000002a"),
		CreatedAt:   start.AddDate(0, -1, 0),
		UpdatedAt:   start.Add(-3 * time.Hour),
	}
	c.JSON(http.StatusOK, []schemas.EventOut{schemas.Event(&sample)})
}

func (h *EventHandler) List(c *gin.Context) {
	base, pagination, ok := listFilter(c)
	if !ok {
		return
	}
	filter := repositories.EventFilter{
		Filter:          base,
		TitleContains:   c.Query("title"),
		VenueContains:   c.Query("venue"),
		CountryContains: c.Query("country"),
		SortBy:          helpers.LowerQuery(c, "sort_by"),
	}
	if status := helpers.LowerQuery(c, "status"); status != "" {
		eventStatus := models.EventStatus(status)
		filter.Status = &eventStatus
	}
	if filter.OrganizerID, ok = queryUUID(c, "organizer_id"); !ok {
		return
	}
	if filter.Approved, ok = queryBool(c, "approved"); !ok {
		return
	}
	if filter.Rejected, ok = queryBool(c, "rejected"); !ok {
		return
	}
	if filter.HasBookings, ok = queryBool(c, "has_bookings"); !ok {
		return
	}

	window, ok := dateRange(c, "starts_from", "ends_by")
	if !ok {
		return
	}
	filter.Window = window

	ctx := c.Request.Context()
	events, err := h.events.List(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	total, err := h.events.Count(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	paginated(c, "events", schemas.Events(events), total, pagination)
}

func (h *EventHandler) ListByStatus(c *gin.Context) {
	events, err := h.events.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Events(events))
}

func (h *EventHandler) Latest(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	events, err := h.events.Latest(c.Request.Context(), limit)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Events(events))
}

func (h *EventHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	event, err := h.events.GetWithTicketTypes(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Event(event))
}

func (h *EventHandler) TicketTypes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketTypes, err := h.ticketTypes.ListByEvent(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.TicketTypes(ticketTypes))
}

func (h *EventHandler) Create(c *gin.Context) {
	var req services.CreateEventInput
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.events.Create(c.Request.Context(), req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schemas.Event(event))
}

func (h *EventHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateEventInput
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.events.Update(c.Request.Context(), id, req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Event(event))
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.events.Delete(c.Request.Context(), id); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully."})
}

// UploadFlyer stores the multipart "flyer" image and points the event at it.
func (h *EventHandler) UploadFlyer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("flyer")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing flyer file.")
		return
	}

	url, err := helpers.UploadFile(c, fileHeader, "flyers", h.uploads)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.events.SetFlyer(c.Request.Context(), id, url)
	if err != nil {
		if cleanupErr := helpers.DeleteUpload(url, h.uploads); cleanupErr != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(cleanupErr).Str("url", url).Msg("failed to remove orphaned flyer")
		}
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Event(event))
}

func (h *EventHandler) Approve(c *gin.Context) {
	h.moderate(c, h.events.Approve)
}

func (h *EventHandler) Reject(c *gin.Context) {
	h.moderate(c, h.events.Reject)
}

func (h *EventHandler) moderate(c *gin.Context, action func(ctx context.Context, id uuid.UUID) (*models.Event, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	event, err := action(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Event(event))
}

func (h *EventHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	event, err := h.events.UpdateStatus(c.Request.Context(), id, c.Param("status"))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Event(event))
}
