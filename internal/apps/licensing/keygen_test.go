package licensing

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyFormat(t *testing.T) {
	keyPattern := regexp.MustCompile(`^NOVE-[A-Z0-9]{3}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)

	for _, plan := range []string{"personal", "academic", "startup", "standard", "enterprise", "beta", TrialPlanID} {
		key := GenerateKey(plan)
		assert.Regexp(t, keyPattern, key, "plan %s", plan)
	}

	assert.Equal(t, "NOVE-STA-", GenerateKey("startup")[:9])
	assert.Equal(t, "NOVE-TRI-", GenerateKey(TrialPlanID)[:9])
}

func TestGenerateKeyUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		key := GenerateKey("standard")
		require.False(t, seen[key], "duplicate key after %d draws: %s", i, key)
		seen[key] = true
	}
}
