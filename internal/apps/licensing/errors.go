package licensing

import (
	"errors"
	"fmt"
)

var (
	ErrLicenseNotFound = errors.New("license key not found")
	ErrUnknownPlan     = errors.New("unknown plan")
	ErrKeyConflict     = errors.New("license key collision, retry the request")
	ErrDuplicateTrial  = errors.New("a trial license was already issued for this email")
)

const (
	ReasonRevoked      = "revoked"
	ReasonExpired      = "expired"
	ReasonLimitReached = "limit_reached"
)

// ForbiddenError denies an activation with the reason and the values needed
// for a user-facing message.
type ForbiddenError struct {
	Reason      string
	ValidUntil  string
	ServerLimit int
}

func (e *ForbiddenError) Error() string {
	switch e.Reason {
	case ReasonRevoked:
		return "license has been revoked"
	case ReasonExpired:
		return fmt.Sprintf("license expired on %s", e.ValidUntil)
	case ReasonLimitReached:
		return fmt.Sprintf("server limit of %d reached", e.ServerLimit)
	default:
		return "activation forbidden"
	}
}
