package licensing

// Plan describes one entry of the static plan catalog.
type Plan struct {
	DisplayName string
	ServerLimit int // 0 means unlimited
	Price       string
}

const (
	// TrialPlanID is the fixed plan used by the self-serve trial flow.
	TrialPlanID = "trial14"

	// TrialDays is the trial validity window.
	TrialDays = 14
)

// planCatalog is built once at init and never mutated afterwards.
var planCatalog = map[string]Plan{
	"personal":     {DisplayName: "Personal", ServerLimit: 3, Price: "¥5,000/mo"},
	"academic":     {DisplayName: "Academic", ServerLimit: 10, Price: "¥50,000/mo"},
	"startup":      {DisplayName: "Startup", ServerLimit: 50, Price: "¥200,000/mo"},
	"standard":     {DisplayName: "Standard", ServerLimit: 500, Price: "¥1,000,000/mo"},
	"enterprise":   {DisplayName: "Enterprise", ServerLimit: 99999, Price: "¥1,500,000~/mo"},
	"beta":         {DisplayName: "Beta Program", ServerLimit: 50, Price: "50% off"},
	TrialPlanID:    {DisplayName: "14-Day Trial", ServerLimit: 1, Price: "Free"},
	"trial":        {DisplayName: "Trial Consultation", ServerLimit: 0, Price: "Free"},
	"consultation": {DisplayName: "Free Consultation", ServerLimit: 0, Price: "Free"},
	"other":        {DisplayName: "Other", ServerLimit: 0, Price: "-"},
}

// LookupPlan resolves a plan identifier. Unknown identifiers are a client
// error, not a system fault.
func LookupPlan(id string) (Plan, bool) {
	p, ok := planCatalog[id]
	return p, ok
}

// PlanDisplayName returns the human label for a plan id, falling back to the
// raw id for records issued under a retired plan.
func PlanDisplayName(id string) string {
	if p, ok := planCatalog[id]; ok {
		return p.DisplayName
	}
	return id
}
