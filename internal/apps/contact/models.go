package contact

import "time"

// Contact is an append-only contact-form submission.
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserType  string    `gorm:"size:50;not null" json:"user_type"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Company   string    `gorm:"size:255" json:"company"`
	Plan      string    `gorm:"size:50" json:"plan"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// --- DTOs ---

// ContactForm carries everything the public form collects. Only a subset is
// persisted; the rest flows into the operator notification mail.
type ContactForm struct {
	UserType     string `json:"user_type" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Company      string `json:"company"`
	Position     string `json:"position"`
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
	Plan         string `json:"plan"`
	Servers      int    `json:"servers" validate:"omitempty,min=0"`
	Timeline     string `json:"timeline"`
	Purpose      string `json:"purpose"`
	Message      string `json:"message" validate:"required"`
}
