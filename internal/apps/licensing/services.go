package licensing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noveos/backend/internal/apps/contact"
	"github.com/noveos/backend/internal/mailer"
	"gorm.io/gorm"
)

const (
	StatusActivated = "activated"
	StatusValid     = "valid"

	dateLayout = "2006-01-02"
)

type LicenseService struct {
	db      *gorm.DB
	mail    *mailer.Mailer
	siteURL string
}

func NewLicenseService(db *gorm.DB, mail *mailer.Mailer, siteURL string) *LicenseService {
	return &LicenseService{db: db, mail: mail, siteURL: siteURL}
}

// today returns the current calendar date at midnight UTC. All validity
// comparisons happen on this value: valid_until is inclusive, a license is
// expired only when valid_until is strictly before today.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func fmtDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// isDuplicate recognizes unique-constraint violations across drivers.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

type IssueParams struct {
	Plan          string
	CustomerName  string
	CustomerEmail string
	Months        int
	Note          string
}

// Issue creates a standard license. A key collision surfaces as
// ErrKeyConflict; the caller retries with a fresh request rather than the
// service looping internally.
func (s *LicenseService) Issue(p IssueParams) (*License, error) {
	plan, ok := LookupPlan(p.Plan)
	if !ok {
		return nil, ErrUnknownPlan
	}
	if p.Months <= 0 {
		p.Months = 12
	}

	from := today()
	lic := License{
		Key:           newKey(p.Plan),
		Plan:          p.Plan,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		ServerLimit:   plan.ServerLimit,
		ValidFrom:     from,
		ValidUntil:    from.AddDate(0, 0, 30*p.Months),
		IsActive:      true,
		Note:          p.Note,
	}

	if err := s.db.Create(&lic).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrKeyConflict
		}
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	s.mail.SendLicenseNotifications(s.mailData(&lic, plan))
	return &lic, nil
}

// IssueTrial creates a 14-day single-machine trial license and the matching
// contact record. One trial per email: the pre-check gives a friendly error,
// the partial unique index on (customer_email WHERE plan='trial14') is the
// authority when two requests race.
func (s *LicenseService) IssueTrial(name, email, company string) (*License, error) {
	var existing int64
	if err := s.db.Model(&License{}).
		Where("customer_email = ? AND plan = ?", email, TrialPlanID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check for existing trial: %w", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateTrial
	}

	plan, _ := LookupPlan(TrialPlanID)
	from := today()
	lic := License{
		Key:           newKey(TrialPlanID),
		Plan:          TrialPlanID,
		CustomerName:  name,
		CustomerEmail: email,
		ServerLimit:   plan.ServerLimit,
		ValidFrom:     from,
		ValidUntil:    from.AddDate(0, 0, TrialDays),
		IsActive:      true,
		Note:          strings.TrimSpace("trial signup " + company),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lic).Error; err != nil {
			return err
		}
		return tx.Create(&contact.Contact{
			UserType: "trial",
			Name:     name,
			Email:    email,
			Company:  company,
			Plan:     TrialPlanID,
			Message:  "14-day trial signup",
		}).Error
	})
	if err != nil {
		if isDuplicate(err) {
			// Either a concurrent trial request won the index, or the fresh
			// key collided. Recheck to tell the two apart.
			var again int64
			s.db.Model(&License{}).
				Where("customer_email = ? AND plan = ?", email, TrialPlanID).
				Count(&again)
			if again > 0 {
				return nil, ErrDuplicateTrial
			}
			return nil, ErrKeyConflict
		}
		return nil, fmt.Errorf("failed to create trial license: %w", err)
	}

	s.mail.SendTrialNotifications(s.mailData(&lic, plan))
	return &lic, nil
}

// InstallCommand returns the ready-to-run installer invocation for a key.
func (s *LicenseService) InstallCommand(key string) string {
	return fmt.Sprintf("curl -fsSL %s/install.sh | sudo bash -s -- --license-key %s", s.siteURL, key)
}

// LicenseStatus is the result of a validity check: the stored record plus
// the derived booleans and the current activation count.
type LicenseStatus struct {
	License        License
	IsExpired      bool
	IsValid        bool
	ActivatedCount int64
}

// Validate computes current validity for a key. Pure read, no mutation.
func (s *LicenseService) Validate(key string) (*LicenseStatus, error) {
	var lic License
	if err := s.db.Where("key = ?", key).First(&lic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("failed to load license: %w", err)
	}

	var count int64
	if err := s.db.Model(&Activation{}).Where("license_key = ?", key).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count activations: %w", err)
	}

	expired := lic.ValidUntil.Before(today())
	return &LicenseStatus{
		License:        lic,
		IsExpired:      expired,
		IsValid:        lic.IsActive && !expired,
		ActivatedCount: count,
	}, nil
}

// ActivationResult reports the outcome of an admission: "activated" on first
// contact from a machine, "valid" on every later call.
type ActivationResult struct {
	Status         string
	License        License
	ActivatedCount int64
}

// Activate binds a machine to a license or refreshes an existing binding.
// Order of checks: existence, revocation, expiry, then admission. A machine
// that is already bound never counts against the limit and never fails the
// limit check.
//
// The count-then-insert admission runs inside a transaction that first
// writes the license row, taking its row lock. Concurrent activations for
// the same key therefore serialize at the store and cannot jointly exceed
// server_limit. The composite unique index on (license_key, machine_id) is
// the backstop for two racing calls from the same machine.
func (s *LicenseService) Activate(key, machineID string) (*ActivationResult, error) {
	var res ActivationResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lic License
		if err := tx.Where("key = ?", key).First(&lic).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLicenseNotFound
			}
			return fmt.Errorf("failed to load license: %w", err)
		}

		if !lic.IsActive {
			return &ForbiddenError{Reason: ReasonRevoked}
		}
		if lic.ValidUntil.Before(today()) {
			return &ForbiddenError{Reason: ReasonExpired, ValidUntil: fmtDate(lic.ValidUntil)}
		}

		// Touching the license row takes its write lock for the rest of the
		// transaction, serializing concurrent admissions on this key.
		now := time.Now().UTC()
		if err := tx.Model(&License{}).Where("id = ?", lic.ID).
			Update("updated_at", now).Error; err != nil {
			return fmt.Errorf("failed to lock license row: %w", err)
		}

		var act Activation
		lookupErr := tx.Where("license_key = ? AND machine_id = ?", key, machineID).First(&act).Error
		switch {
		case lookupErr == nil:
			// Known machine: heartbeat only, free regardless of the limit.
			if err := tx.Model(&act).Update("last_seen", now).Error; err != nil {
				return fmt.Errorf("failed to update last_seen: %w", err)
			}
			res.Status = StatusValid

		case errors.Is(lookupErr, gorm.ErrRecordNotFound):
			if lic.ServerLimit > 0 {
				var count int64
				if err := tx.Model(&Activation{}).Where("license_key = ?", key).Count(&count).Error; err != nil {
					return fmt.Errorf("failed to count activations: %w", err)
				}
				if count >= int64(lic.ServerLimit) {
					return &ForbiddenError{Reason: ReasonLimitReached, ServerLimit: lic.ServerLimit}
				}
			}
			act = Activation{LicenseKey: key, MachineID: machineID, ActivatedAt: now, LastSeen: now}
			if err := tx.Create(&act).Error; err != nil {
				if isDuplicate(err) {
					// Lost a race against the same machine id; fold into the
					// heartbeat path.
					if err := tx.Model(&Activation{}).
						Where("license_key = ? AND machine_id = ?", key, machineID).
						Update("last_seen", now).Error; err != nil {
						return fmt.Errorf("failed to update last_seen: %w", err)
					}
					res.Status = StatusValid
				} else {
					return fmt.Errorf("failed to create activation: %w", err)
				}
			} else {
				res.Status = StatusActivated
			}

		default:
			return fmt.Errorf("failed to look up activation: %w", lookupErr)
		}

		if err := tx.Model(&Activation{}).Where("license_key = ?", key).
			Count(&res.ActivatedCount).Error; err != nil {
			return fmt.Errorf("failed to recount activations: %w", err)
		}
		res.License = lic
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// LicenseWithCount pairs a license with its current activation count for
// the admin listing.
type LicenseWithCount struct {
	License        `gorm:"embedded"`
	ActivatedCount int64
}

// ListLicenses returns all licenses, newest first, with activation counts.
func (s *LicenseService) ListLicenses() ([]LicenseWithCount, error) {
	var rows []LicenseWithCount
	err := s.db.Table("licenses").
		Select("licenses.*, (SELECT COUNT(*) FROM activations a WHERE a.license_key = licenses.key) AS activated_count").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list licenses: %w", err)
	}
	return rows, nil
}

// ListActivations returns the machines bound to a key, oldest first.
func (s *LicenseService) ListActivations(key string) ([]Activation, error) {
	if err := s.requireLicense(key); err != nil {
		return nil, err
	}

	var acts []Activation
	err := s.db.Where("license_key = ?", key).
		Order("activated_at ASC").
		Find(&acts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activations: %w", err)
	}
	return acts, nil
}

// RemoveActivation unbinds a machine from a license, returning the pair to
// the unseen state. Removing a pair that does not exist is a no-op success.
func (s *LicenseService) RemoveActivation(key, machineID string) error {
	if err := s.requireLicense(key); err != nil {
		return err
	}

	err := s.db.Where("license_key = ? AND machine_id = ?", key, machineID).
		Delete(&Activation{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove activation: %w", err)
	}
	return nil
}

// Revoke deactivates a license. Expiry and activations are untouched; the
// record is never deleted.
func (s *LicenseService) Revoke(key string) error {
	result := s.db.Model(&License{}).Where("key = ?", key).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke license: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLicenseNotFound
	}
	return nil
}

func (s *LicenseService) requireLicense(key string) error {
	var count int64
	if err := s.db.Model(&License{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up license: %w", err)
	}
	if count == 0 {
		return ErrLicenseNotFound
	}
	return nil
}

func (s *LicenseService) mailData(lic *License, plan Plan) mailer.LicenseMailData {
	limitLabel := fmt.Sprintf("%d servers", lic.ServerLimit)
	if lic.ServerLimit == 0 {
		limitLabel = "unlimited"
	}
	return mailer.LicenseMailData{
		CustomerName:     lic.CustomerName,
		CustomerEmail:    lic.CustomerEmail,
		Key:              lic.Key,
		PlanName:         plan.DisplayName,
		Price:            plan.Price,
		ServerLimitLabel: limitLabel,
		ValidFrom:        fmtDate(lic.ValidFrom),
		ValidUntil:       fmtDate(lic.ValidUntil),
		InstallCommand:   s.InstallCommand(lic.Key),
		SiteURL:          s.siteURL,
	}
}
