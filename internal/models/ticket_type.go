package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketType is a priced category of tickets for an event (Standard, VIP, Early Bird...).
type TicketType struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Event             *Event    `gorm:"foreignKey:EventID"`
	Name              string    `gorm:"size:100;not null"`
	Description       *string   `gorm:"size:500"`
	Price             int       `gorm:"not null"`
	QuantityAvailable int       `gorm:"not null"`
	QuantitySold      int       `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (ticketType *TicketType) Remaining() int {
	return ticketType.QuantityAvailable - ticketType.QuantitySold
}

func (ticketType *TicketType) BeforeCreate(tx *gorm.DB) (err error) {
	if ticketType.ID == uuid.Nil {
		ticketType.ID = uuid.New()
	}
	return
}
