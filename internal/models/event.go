package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventUpcoming, EventOngoing, EventCompleted, EventCancelled:
		return true
	}
	return false
}

const DefaultCountry = "Kenya"

type Event struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Title       string      `gorm:"size:200;not null"`
	Description *string     `gorm:"size:1000"`
	Venue       string      `gorm:"size:255;not null"`
	Country     string      `gorm:"size:100;not null;default:Kenya"`
	StartTime   time.Time   `gorm:"not null;index"`
	EndTime     time.Time   `gorm:"not null"`
	FlyerURL    string      `gorm:"size:500;not null;default:''"`
	Status      EventStatus `gorm:"size:50;not null;default:upcoming;index"`
	Approved    bool        `gorm:"not null;default:false"`
	Rejected    bool        `gorm:"not null;default:false"`
	OrganizerID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Organizer   *User       `gorm:"foreignKey:OrganizerID"`
	CreatedAt   time.Time   `gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime"`

	TicketTypes []TicketType `gorm:"foreignKey:EventID"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Country == "" {
		event.Country = DefaultCountry
	}
	if event.Status == "" {
		event.Status = EventUpcoming
	}
	return
}
