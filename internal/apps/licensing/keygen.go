package licensing

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// newKey is the key source used by issuance; swappable in tests to force
// collisions.
var newKey = GenerateKey

// GenerateKey produces a license key of the form NOVE-XXX-AAAA-BBBB-CCCC.
// XXX is the first three characters of the plan id; the hex groups come from
// a fresh random UUID, so collisions are left to the key's unique constraint.
// The key is an opaque identifier, not a signed token.
func GenerateKey(plan string) string {
	raw := strings.ToUpper(hex.EncodeToString(uuidBytes()))
	prefix := strings.ToUpper(plan)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("NOVE-%s-%s-%s-%s", prefix, raw[:4], raw[4:8], raw[8:12])
}

func uuidBytes() []byte {
	u := uuid.New()
	return u[:]
}
