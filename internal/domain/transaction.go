package domain

// Source identifies which feed a transaction came from.
type Source string

const (
	SourceCSV    Source = "csv"
	SourceBank   Source = "bank"
	SourceDemo   Source = "demo"
	SourceNessie Source = "nessie"
)

// Transaction is the canonical, source-agnostic representation of one
// spend or refund event. Adapters produce it; every later stage treats
// it as immutable. A "modified" sync delta supersedes an earlier record
// with the same upstream id rather than mutating it.
type Transaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Amount      float64 `json:"amount"`
	MerchantRaw string  `json:"merchantRaw"`
	Merchant    string  `json:"merchant"`
	Category    string  `json:"category"`
	Source      Source  `json:"source"`
	AccountID   string  `json:"accountId,omitempty"`
	Pending     bool    `json:"pending,omitempty"`
}

// Filters selects which transaction classes are dropped before
// aggregation. It is a plain configuration value.
type Filters struct {
	ExcludeTransfers bool `json:"excludeTransfers"`
	ExcludeRefunds   bool `json:"excludeRefunds"`
}

// Cadence is the periodic interval at which a recurring charge repeats.
type Cadence string

const (
	CadenceWeekly   Cadence = "weekly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceMonthly  Cadence = "monthly"
)

// RecurringCharge is a detected periodic charge for one merchant.
// Derived data; recomputed on every summarization pass, never stored
// independently of the transaction set that produced it.
type RecurringCharge struct {
	ID             string  `json:"id"`
	Merchant       string  `json:"merchant"`
	Cadence        Cadence `json:"cadence"`
	NextDate       string  `json:"nextDate"`
	ExpectedAmount float64 `json:"expectedAmount"`
	Confidence     float64 `json:"confidence"`
	SampleCount    int     `json:"sampleCount"`
}

// Summary aggregates a filtered transaction set.
type Summary struct {
	Transactions []Transaction      `json:"transactions"`
	ByCategory   map[string]float64 `json:"byCategory"`
	ByMerchant   map[string]float64 `json:"byMerchant"`
	Recurring    []RecurringCharge  `json:"recurring"`
	TotalSpend   float64            `json:"totalSpend"`
}
