package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/metrics"
	"github.com/mgltickets/api/internal/middleware"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/schemas"
	"github.com/mgltickets/api/internal/services"
)

type RedeemRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type TicketHandler struct {
	tickets *services.TicketInstanceService
}

func NewTicketHandler(tickets *services.TicketInstanceService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

func (h *TicketHandler) Issue(c *gin.Context) {
	var req services.IssueTicketInput
	if !bindJSON(c, &req) {
		return
	}
	ticket, err := h.tickets.Issue(c.Request.Context(), req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schemas.Ticket(ticket))
}

func (h *TicketHandler) List(c *gin.Context) {
	base, pagination, ok := listFilter(c)
	if !ok {
		return
	}
	filter := repositories.TicketInstanceFilter{Filter: base}
	if filter.UserID, ok = queryUUID(c, "user_id"); !ok {
		return
	}
	if filter.BookingID, ok = queryUUID(c, "booking_id"); !ok {
		return
	}
	if filter.TicketTypeID, ok = queryUUID(c, "ticket_type_id"); !ok {
		return
	}
	if status := helpers.LowerQuery(c, "status"); status != "" {
		ticketStatus := models.TicketStatus(status)
		filter.Status = &ticketStatus
	}
	if identity := middleware.CurrentIdentity(c); !identity.Can(auth.CapTicketsManage) {
		filter.UserID = &identity.UserID
	}

	ctx := c.Request.Context()
	tickets, err := h.tickets.List(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	total, err := h.tickets.Count(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	paginated(c, "tickets", schemas.Tickets(tickets), total, pagination)
}

func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ticket, err := h.tickets.Get(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Ticket(ticket))
}

// QRCode returns a PNG of the signed payload scanned at the gate.
func (h *TicketHandler) QRCode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	size, err := helpers.StringToInt(c.DefaultQuery("size", "256"))
	if err != nil || size < 64 || size > 1024 {
		helpers.RespondWithError(c, http.StatusBadRequest, "size must be between 64 and 1024")
		return
	}
	png, err := h.tickets.QRCode(c.Request.Context(), id, size)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *TicketHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTicketInput
	if !bindJSON(c, &req) {
		return
	}
	ticket, err := h.tickets.Update(c.Request.Context(), id, req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Ticket(ticket))
}

func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tickets.Delete(c.Request.Context(), id); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully."})
}

func (h *TicketHandler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if !bindJSON(c, &req) {
		return
	}
	ticket, err := h.tickets.Redeem(c.Request.Context(), req.Payload)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	metrics.TicketsRedeemed.Inc()
	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket redeemed.",
		"ticket":  schemas.Ticket(ticket),
	})
}
