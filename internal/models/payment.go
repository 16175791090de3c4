package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

const DefaultCurrency = "KES"

type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Booking         *Booking        `gorm:"foreignKey:BookingID"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency        string          `gorm:"size:10;not null;default:KES"`
	Method          string          `gorm:"size:50;not null"`
	Status          PaymentStatus   `gorm:"size:50;not null;default:pending;index"`
	MpesaRef        string          `gorm:"size:100;not null;index"`
	CallbackPayload *string         `gorm:"size:2000"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime"`
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.Currency == "" {
		payment.Currency = DefaultCurrency
	}
	if payment.Status == "" {
		payment.Status = PaymentPending
	}
	return
}
