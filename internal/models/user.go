package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"size:100;not null"`
	Email        string    `gorm:"size:150;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	PhoneNumber  string    `gorm:"size:20;not null"`
	Role         Role      `gorm:"size:50;not null;default:attendee"`
	IsActive     bool      `gorm:"not null"`
	IsVerified   bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`

	Events          []Event          `gorm:"foreignKey:OrganizerID"`
	Bookings        []Booking        `gorm:"foreignKey:UserID"`
	TicketInstances []TicketInstance `gorm:"foreignKey:UserID"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = RoleAttendee
	}
	return
}
