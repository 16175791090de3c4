package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/schemas"
	"github.com/mgltickets/api/internal/services"
)

// CallbackRequest is the M-Pesa confirmation relayed by the payment gateway.
type CallbackRequest struct {
	MpesaRef string `json:"mpesa_ref" binding:"required"`
	Status   string `json:"status" binding:"required"`
	Payload  string `json:"payload"`
}

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req services.CreatePaymentInput
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.Create(c.Request.Context(), req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schemas.Payment(payment))
}

func (h *PaymentHandler) List(c *gin.Context) {
	base, pagination, ok := listFilter(c)
	if !ok {
		return
	}
	filter := repositories.PaymentFilter{Filter: base}
	if filter.BookingID, ok = queryUUID(c, "booking_id"); !ok {
		return
	}
	if status := helpers.LowerQuery(c, "status"); status != "" {
		paymentStatus := models.PaymentStatus(status)
		filter.Status = &paymentStatus
	}

	ctx := c.Request.Context()
	payments, err := h.payments.List(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	total, err := h.payments.Count(ctx, filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	paginated(c, "payments", schemas.Payments(payments), total, pagination)
}

func (h *PaymentHandler) Latest(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	payments, err := h.payments.Latest(c.Request.Context(), limit)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Payments(payments))
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.payments.Get(c.Request.Context(), id)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Payment(payment))
}

func (h *PaymentHandler) GetByMpesaRef(c *gin.Context) {
	payment, err := h.payments.GetByMpesaRef(c.Request.Context(), c.Param("ref"))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Payment(payment))
}

func (h *PaymentHandler) TotalForBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	total, err := h.payments.TotalForBooking(c.Request.Context(), bookingID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking_id": bookingID,
		"total":      total,
		"currency":   models.DefaultCurrency,
	})
}

func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdatePaymentInput
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.Update(c.Request.Context(), id, req)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Payment(payment))
}

func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.payments.UpdateStatus(c.Request.Context(), id, c.Param("status"))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Payment(payment))
}

func (h *PaymentHandler) Callback(c *gin.Context) {
	var req CallbackRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.RecordCallback(c.Request.Context(), req.MpesaRef, req.Payload, req.Status)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas.Payment(payment))
}

func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.payments.Delete(c.Request.Context(), id); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully."})
}
