package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID     `gorm:"type:uuid;not null;index"`
	User         *User         `gorm:"foreignKey:UserID"`
	TicketTypeID uuid.UUID     `gorm:"type:uuid;not null;index"`
	TicketType   *TicketType   `gorm:"foreignKey:TicketTypeID"`
	Quantity     int           `gorm:"not null"`
	Status       BookingStatus `gorm:"size:50;not null;default:pending;index"`
	TotalPrice   int           `gorm:"not null"`
	CreatedAt    time.Time     `gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime"`

	Payment         *Payment         `gorm:"foreignKey:BookingID"`
	TicketInstances []TicketInstance `gorm:"foreignKey:BookingID"`
}

func (booking *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = BookingPending
	}
	return
}
