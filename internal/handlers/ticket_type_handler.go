package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/schemas"
	"github.com/mgltickets/api/internal/services"
)

type TicketTypeHandler struct {
	ticketTypes *services.TicketTypeService
}

func NewTicketTypeHandler(ticketTypes *services.TicketTypeService) *TicketTypeHandler {
	return &TicketTypeHandler{ticketTypes: ticketTypes}
}

func (h *TicketTypeHandler) Create(c *gin.Context) {
	var req services.CreateTicketTypeInput
	if !bindJSON(c, &req) {
		return
	}
	ticketType, err := h.ticketTypes.Create(c.Request.Context(), req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schemas.TicketType(ticketType))
}

func (h *TicketTypeHandler) List(c *gin.Context) {
	base, pagination, ok := listFilter(c)
	if !ok {
		return
	}
	filter := repositories.TicketTypeFilter{Filter: base}
	if filter.EventID, ok = queryUUID(c, "event_id"); !ok {
		return
	}

	ctx := c.Request.Context()
	ticketTypes, err := h.ticketTypes.List(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	total, err := h.ticketTypes.Count(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	paginated(c, "ticket_types", schemas.TicketTypes(ticketTypes), total, pagination)
}

func (h *TicketTypeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticketType, err := h.ticketTypes.Get(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.TicketType(ticketType))
}

func (h *TicketTypeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTicketTypeInput
	if !bindJSON(c, &req) {
		return
	}
	ticketType, err := h.ticketTypes.Update(c.Request.Context(), id, req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.TicketType(ticketType))
}

func (h *TicketTypeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ticketTypes.Delete(c.Request.Context(), id); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket type deleted successfully."})
}
