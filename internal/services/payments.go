package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreatePaymentInput struct {
	BookingID uuid.UUID            `json:"booking_id" validate:"required"`
	Amount    decimal.Decimal      `json:"amount"`
	Currency  string               `json:"currency" validate:"omitempty,len=3"`
	Method    string               `json:"method" validate:"required,max=50"`
	MpesaRef  string               `json:"mpesa_ref" validate:"required,max=100"`
	Status    models.PaymentStatus `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
}

type UpdatePaymentInput struct {
	Amount          *decimal.Decimal      `json:"amount"`
	Currency        *string               `json:"currency" validate:"omitempty,len=3"`
	Method          *string               `json:"method" validate:"omitempty,max=50"`
	Status          *models.PaymentStatus `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	MpesaRef        *string               `json:"mpesa_ref" validate:"omitempty,max=100"`
	CallbackPayload *string               `json:"callback_payload" validate:"omitempty,max=2000"`
}

type PaymentService struct {
	payments *repositories.PaymentRepository
	bookings *repositories.BookingRepository
}

func NewPaymentService(payments *repositories.PaymentRepository, bookings *repositories.BookingRepository) *PaymentService {
	return &PaymentService{payments: payments, bookings: bookings}
}

// Create records the single payment for a booking. Amount is not checked
// against the booking total.
func (s *PaymentService) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	logger := loggerFor(ctx, "payments")
	input.Method = strings.TrimSpace(input.Method)
	input.MpesaRef = strings.TrimSpace(input.MpesaRef)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, invalid("amount", "must be greater than 0")
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, persistence("load booking", err)
	}
	if booking == nil {
		return nil, notFound("booking")
	}

	payment := &models.Payment{
		BookingID: input.BookingID,
		Amount:    input.Amount.Round(2),
		Currency:  strings.ToUpper(input.Currency),
		Method:    input.Method,
		MpesaRef:  input.MpesaRef,
		Status:    input.Status,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPaymentExists
		}
		return nil, persistence("create payment", err)
	}
	logger.Info().Str("payment_id", payment.ID.String()).Str("booking_id", booking.ID.String()).Str("amount", payment.Amount.String()).Msg("payment recorded")
	return payment, nil
}

// Get lets the booking owner read their own payment.
func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("load payment", err)
	}
	if payment == nil {
		return nil, notFound("payment")
	}
	if err := s.authorizeRead(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) GetByMpesaRef(ctx context.Context, ref string) (*models.Payment, error) {
	payment, err := s.payments.GetByMpesaRef(ctx, strings.TrimSpace(ref))
	if err != nil {
		return nil, persistence("load payment", err)
	}
	if payment == nil {
		return nil, notFound("payment")
	}
	if err := s.authorizeRead(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, filter repositories.PaymentFilter) ([]models.Payment, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("status", "unknown payment status")
	}
	payments, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, persistence("list payments", err)
	}
	return payments, nil
}

func (s *PaymentService) Count(ctx context.Context, filter repositories.PaymentFilter) (int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return 0, invalid("status", "unknown payment status")
	}
	total, err := s.payments.Count(ctx, filter)
	if err != nil {
		return 0, persistence("count payments", err)
	}
	return total, nil
}

func (s *PaymentService) Latest(ctx context.Context, limit int) ([]models.Payment, error) {
	return s.List(ctx, repositories.PaymentFilter{Filter: repositories.Filter{
		Order: repositories.OrderDesc,
		Limit: clampLimit(limit, 10, 100),
	}})
}

func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, input UpdatePaymentInput) (*models.Payment, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, invalid("amount", "must be greater than 0")
		}
		rounded := input.Amount.Round(2)
		input.Amount = &rounded
	}
	if input.Currency != nil {
		upper := strings.ToUpper(*input.Currency)
		input.Currency = &upper
	}
	return s.apply(ctx, id, repositories.PaymentUpdate{
		Amount:          input.Amount,
		Currency:        input.Currency,
		Method:          trimmed(input.Method),
		Status:          input.Status,
		MpesaRef:        trimmed(input.MpesaRef),
		CallbackPayload: input.CallbackPayload,
	}, "payment updated")
}

func (s *PaymentService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Payment, error) {
	paymentStatus := models.PaymentStatus(strings.ToLower(status))
	if !paymentStatus.Valid() {
		return nil, invalid("status", "unknown payment status")
	}
	return s.apply(ctx, id, repositories.PaymentUpdate{Status: &paymentStatus}, "payment status changed")
}

// RecordCallback stores the raw provider callback against the payment with
// the given reference and moves it to status.
func (s *PaymentService) RecordCallback(ctx context.Context, mpesaRef, payload, status string) (*models.Payment, error) {
	paymentStatus := models.PaymentStatus(strings.ToLower(status))
	if !paymentStatus.Valid() {
		return nil, invalid("status", "unknown payment status")
	}
	if len(payload) > 2000 {
		return nil, invalid("callback_payload", "must be at most 2000 characters long")
	}
	payment, err := s.payments.GetByMpesaRef(ctx, strings.TrimSpace(mpesaRef))
	if err != nil {
		return nil, persistence("load payment", err)
	}
	if payment == nil {
		return nil, notFound("payment")
	}
	return s.apply(ctx, payment.ID, repositories.PaymentUpdate{
		Status:          &paymentStatus,
		CallbackPayload: &payload,
	}, "payment callback recorded")
}

func (s *PaymentService) TotalForBooking(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.payments.SumAmountByBooking(ctx, bookingID)
	if err != nil {
		return decimal.Zero, persistence("sum payments", err)
	}
	return total, nil
}

func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.payments.Delete(ctx, id)
	if err != nil {
		return persistence("delete payment", err)
	}
	if !deleted {
		return notFound("payment")
	}
	logger := loggerFor(ctx, "payments")
	logger.Info().Str("payment_id", id.String()).Msg("payment deleted")
	return nil
}

func (s *PaymentService) apply(ctx context.Context, id uuid.UUID, update repositories.PaymentUpdate, message string) (*models.Payment, error) {
	payment, err := s.payments.Update(ctx, id, update)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrPaymentExists
	}
	if err != nil {
		return nil, persistence("update payment", err)
	}
	if payment == nil {
		return nil, notFound("payment")
	}
	logger := loggerFor(ctx, "payments")
	logger.Info().Str("payment_id", id.String()).Msg(message)
	return payment, nil
}

func (s *PaymentService) authorizeRead(ctx context.Context, payment *models.Payment) error {
	identity := auth.IdentityFrom(ctx)
	if identity == nil || identity.Can(auth.CapPaymentsManage) {
		return nil
	}
	booking, err := s.bookings.GetByID(ctx, payment.BookingID)
	if err != nil {
		return persistence("load booking", err)
	}
	if booking == nil || !identity.Owns(booking.UserID) {
		return ErrNotOwner
	}
	return nil
}
