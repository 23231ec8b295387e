package domain

// GoalType discriminates the Goal tagged union.
type GoalType string

const (
	GoalSaveByDate GoalType = "save_by_date"
	GoalMonthlyCap GoalType = "monthly_cap"
)

// Goal is the user's savings objective handed to the recommender.
// Exactly one variant's fields are meaningful, selected by GoalType.
type Goal struct {
	GoalType GoalType `json:"goalType"`

	// save_by_date
	SaveAmount float64 `json:"saveAmount,omitempty"`
	ByDate     string  `json:"byDate,omitempty"` // YYYY-MM-DD

	// monthly_cap
	Category  string  `json:"category,omitempty"`
	CapAmount float64 `json:"capAmount,omitempty"`
}

// ActionType classifies a savings recommendation.
type ActionType string

const (
	ActionCancel     ActionType = "cancel"
	ActionCap        ActionType = "cap"
	ActionSubstitute ActionType = "substitute"
)

// TargetKind says whether a recommendation targets a merchant or a
// whole category.
type TargetKind string

const (
	TargetMerchant TargetKind = "merchant"
	TargetCategory TargetKind = "category"
)

// Target names what a recommendation acts on.
type Target struct {
	Kind  TargetKind `json:"kind"`
	Value string     `json:"value"`
}

// Recommendation is one ranked, explainable savings action.
type Recommendation struct {
	ID                     string     `json:"id"`
	ActionType             ActionType `json:"actionType"`
	Title                  string     `json:"title"`
	Target                 Target     `json:"target"`
	ExpectedMonthlySavings float64    `json:"expectedMonthlySavings"`
	EffortScore            float64    `json:"effortScore"` // 0 = trivial, 1 = painful
	Confidence             float64    `json:"confidence"`
	Explanation            string     `json:"explanation"`
	Reasons                []string   `json:"reasons,omitempty"`
}

// ScenarioResult projects spend before and after applying a selected
// set of recommendations. All fields are finite by construction.
type ScenarioResult struct {
	BeforeSpend             float64 `json:"beforeSpend"`
	AfterSpend              float64 `json:"afterSpend"`
	EstimatedMonthlySavings float64 `json:"estimatedMonthlySavings"`
	SelectedActionCount     int     `json:"selectedActionCount"`
}
