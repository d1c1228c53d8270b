package licensing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPlan(t *testing.T) {
	limits := map[string]int{
		"personal":     3,
		"academic":     10,
		"startup":      50,
		"standard":     500,
		"enterprise":   99999,
		"beta":         50,
		TrialPlanID:    1,
		"trial":        0,
		"consultation": 0,
		"other":        0,
	}

	for id, want := range limits {
		p, ok := LookupPlan(id)
		require.True(t, ok, "plan %s must exist", id)
		assert.Equal(t, want, p.ServerLimit, "plan %s", id)
		assert.NotEmpty(t, p.DisplayName)
		assert.NotEmpty(t, p.Price)
	}

	_, ok := LookupPlan("platinum")
	assert.False(t, ok)
}

func TestPlanDisplayName(t *testing.T) {
	assert.Equal(t, "Startup", PlanDisplayName("startup"))
	assert.Equal(t, "14-Day Trial", PlanDisplayName(TrialPlanID))

	// Retired or unknown plan ids fall back to the raw id.
	assert.Equal(t, "legacy2019", PlanDisplayName("legacy2019"))
}
