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

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req services.CreateBookingInput
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schemas.Booking(booking))
}

// List shows the caller's own bookings unless they may manage all of them.
func (h *BookingHandler) List(c *gin.Context) {
	base, pagination, ok := listFilter(c)
	if !ok {
		return
	}
	filter := repositories.BookingFilter{Filter: base}
	if filter.UserID, ok = queryUUID(c, "user_id"); !ok {
		return
	}
	if filter.TicketTypeID, ok = queryUUID(c, "ticket_type_id"); !ok {
		return
	}
	if status := helpers.LowerQuery(c, "status"); status != "" {
		bookingStatus := models.BookingStatus(status)
		filter.Status = &bookingStatus
	}
	if identity := middleware.CurrentIdentity(c); !identity.Can(auth.CapBookingsManage) {
		filter.UserID = &identity.UserID
	}

	ctx := c.Request.Context()
	bookings, err := h.bookings.List(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	total, err := h.bookings.Count(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	paginated(c, "bookings", schemas.Bookings(bookings), total, pagination)
}

func (h *BookingHandler) Recent(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	userID, ok := queryUUID(c, "user_id")
	if !ok {
		return
	}
	if identity := middleware.CurrentIdentity(c); !identity.Can(auth.CapBookingsManage) {
		userID = &identity.UserID
	}
	bookings, err := h.bookings.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Bookings(bookings))
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Booking(booking))
}

func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateBookingInput
	if !bindJSON(c, &req) {
		return
	}
	booking, err := h.bookings.Update(c.Request.Context(), id, req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Booking(booking))
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookings.Confirm(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	metrics.BookingsConfirmed.Inc()
	c.JSON(http.StatusOK, schemas.Booking(booking))
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookings.Cancel(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Booking(booking))
}

func (h *BookingHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.bookings.Delete(c.Request.Context(), id); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully."})
}
