package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactMessage stores one contact-form submission. The row is written even
// when the outbound email fails, so the back office can still follow up.
type ContactMessage struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name          string `gorm:"not null" json:"name"`
	Email         string `gorm:"not null" json:"email"`
	Phone         string `json:"phone"`
	PropertyFicha string `json:"property_ficha"` // Optional: which listing the visitor asked about
	Message       string `gorm:"type:text;not null" json:"message"`

	EmailSent bool `gorm:"not null;default:false" json:"email_sent"`
}

// BeforeCreate hook to generate UUID
func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ContactMessage model
func (ContactMessage) TableName() string {
	return "contact_messages"
}
