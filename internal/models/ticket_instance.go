package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketActive, TicketUsed, TicketCancelled:
		return true
	}
	return false
}

// TicketInstance is one issued ticket unit; Code is what ends up in the QR image.
type TicketInstance struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	TicketTypeID uuid.UUID    `gorm:"type:uuid;not null;index"`
	BookingID    uuid.UUID    `gorm:"type:uuid;not null;index"`
	Booking      *Booking     `gorm:"foreignKey:BookingID"`
	Code         string       `gorm:"size:100;uniqueIndex;not null"`
	Status       TicketStatus `gorm:"size:50;not null;default:active;index"`
	IssuedTo     *string      `gorm:"size:150"`
	UsedAt       *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (ticket *TicketInstance) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if ticket.Status == "" {
		ticket.Status = TicketActive
	}
	return
}
