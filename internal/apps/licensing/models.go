package licensing

import (
	"time"
)

// License grants usage rights for a plan within a validity window and
// machine-count limit. Records are never deleted; revocation flips IsActive.
type License struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Key           string    `gorm:"size:40;uniqueIndex;not null" json:"license_key"`
	Plan          string    `gorm:"size:20;not null" json:"plan"`
	CustomerName  string    `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail string    `gorm:"size:255;not null;index:idx_licenses_trial_once,unique,where:plan = 'trial14'" json:"customer_email"`
	ServerLimit   int       `gorm:"not null" json:"server_limit"`
	ValidFrom     time.Time `gorm:"not null" json:"-"`
	ValidUntil    time.Time `gorm:"not null" json:"-"`
	// No default tag: GORM omits zero-valued fields that carry one on insert,
	// which would store a revoked license as active. Issuance sets it explicitly.
	IsActive bool `gorm:"not null" json:"is_active"`
	Note          string    `gorm:"type:text" json:"note"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
}

// Activation binds one machine identifier to one license key. The composite
// unique index makes the (key, machine) pair the unit of admission.
type Activation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LicenseKey  string    `gorm:"size:40;not null;uniqueIndex:idx_activations_key_machine" json:"license_key"`
	MachineID   string    `gorm:"size:255;not null;uniqueIndex:idx_activations_key_machine" json:"machine_id"`
	ActivatedAt time.Time `gorm:"not null" json:"activated_at"`
	LastSeen    time.Time `gorm:"not null" json:"last_seen"`
}

// --- DTOs ---

type GenerateLicenseRequest struct {
	Plan          string `json:"plan" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	Months        int    `json:"months" validate:"omitempty,min=1,max=120"`
	Note          string `json:"note"`
}

type TrialRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company"`
}

type ActivateRequest struct {
	LicenseKey string `json:"license_key" validate:"required"`
	MachineID  string `json:"machine_id" validate:"required"`
}

type GenerateLicenseResponse struct {
	Status        string `json:"status"`
	LicenseKey    string `json:"license_key"`
	Plan          string `json:"plan"`
	CustomerEmail string `json:"customer_email"`
	ValidFrom     string `json:"valid_from"`
	ValidUntil    string `json:"valid_until"`
	ServerLimit   int    `json:"server_limit"`
}

type TrialResponse struct {
	Status         string `json:"status"`
	LicenseKey     string `json:"license_key"`
	ValidUntil     string `json:"valid_until"`
	ServerLimit    int    `json:"server_limit"`
	InstallCommand string `json:"install_command"`
}

type ActivateResponse struct {
	IsValid        bool   `json:"is_valid"`
	Status         string `json:"status"`
	Plan           string `json:"plan"`
	CustomerName   string `json:"customer_name"`
	ValidUntil     string `json:"valid_until"`
	ServerLimit    int    `json:"server_limit"`
	ActivatedCount int64  `json:"activated_count"`
}

// ActivationDenied is the 403 body for revoked / expired / limit_reached.
type ActivationDenied struct {
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
	Message     string `json:"message"`
	ValidUntil  string `json:"valid_until,omitempty"`
	ServerLimit int    `json:"server_limit,omitempty"`
}

type LicenseResponse struct {
	ID             uint   `json:"id"`
	LicenseKey     string `json:"license_key"`
	Plan           string `json:"plan"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	ServerLimit    int    `json:"server_limit"`
	ValidFrom      string `json:"valid_from"`
	ValidUntil     string `json:"valid_until"`
	IsActive       bool   `json:"is_active"`
	Note           string `json:"note,omitempty"`
	CreatedAt      string `json:"created_at"`
	ActivatedCount int64  `json:"activated_count"`
}

type ValidateResponse struct {
	LicenseResponse
	IsExpired bool `json:"is_expired"`
	IsValid   bool `json:"is_valid"`
}

type ActivationResponse struct {
	MachineID   string `json:"machine_id"`
	ActivatedAt string `json:"activated_at"`
	LastSeen    string `json:"last_seen"`
}
