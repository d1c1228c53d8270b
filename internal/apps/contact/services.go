package contact

import (
	"fmt"

	"gorm.io/gorm"
)

type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// Create persists a submission. Sole-proprietor forms carry the business
// name instead of a company name; either lands in the company column.
func (s *ContactService) Create(form *ContactForm) (*Contact, error) {
	company := form.Company
	if company == "" {
		company = form.BusinessName
	}

	entry := Contact{
		UserType: form.UserType,
		Name:     form.Name,
		Email:    form.Email,
		Company:  company,
		Plan:     form.Plan,
		Message:  form.Message,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &entry, nil
}

// List returns all submissions, newest first.
func (s *ContactService) List() ([]Contact, error) {
	var contacts []Contact
	err := s.db.Order("created_at DESC").Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}
