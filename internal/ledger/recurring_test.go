package ledger

import (
	"testing"

	"github.com/spendlens/spendlens/internal/domain"
)

func weeklyCoffee() []domain.Transaction {
	return []domain.Transaction{
		{ID: "1", Date: "2025-01-05", Amount: 6.25, Merchant: "STARBUCKS", Category: "Coffee"},
		{ID: "2", Date: "2025-01-12", Amount: 6.25, Merchant: "STARBUCKS", Category: "Coffee"},
	}
}

func TestDetectRecurringWeekly(t *testing.T) {
	got := DetectRecurring(weeklyCoffee())
	if len(got) != 1 {
		t.Fatalf("got %d recurring charges, want 1", len(got))
	}
	rc := got[0]
	if rc.Merchant != "STARBUCKS" {
		t.Errorf("Merchant = %q, want STARBUCKS", rc.Merchant)
	}
	if rc.Cadence != domain.CadenceWeekly {
		t.Errorf("Cadence = %q, want weekly", rc.Cadence)
	}
	if !almostEqual(rc.ExpectedAmount, 6.25) {
		t.Errorf("ExpectedAmount = %v, want 6.25", rc.ExpectedAmount)
	}
	if rc.NextDate != "2025-01-19" {
		t.Errorf("NextDate = %q, want 2025-01-19", rc.NextDate)
	}
	if rc.Confidence < MinRecurringConfidence || rc.Confidence > 1 {
		t.Errorf("Confidence = %v, want within [%v, 1]", rc.Confidence, MinRecurringConfidence)
	}
	if rc.SampleCount != 2 {
		t.Errorf("SampleCount = %d, want 2", rc.SampleCount)
	}
}

func TestDetectRecurringMonthly(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Date: "2025-01-15", Amount: 15.49, Merchant: "NETFLIX", Category: "Entertainment"},
		{ID: "2", Date: "2025-02-15", Amount: 15.49, Merchant: "NETFLIX", Category: "Entertainment"},
		{ID: "3", Date: "2025-03-15", Amount: 15.49, Merchant: "NETFLIX", Category: "Entertainment"},
		{ID: "4", Date: "2025-04-15", Amount: 15.49, Merchant: "NETFLIX", Category: "Entertainment"},
	}
	got := DetectRecurring(txs)
	if len(got) != 1 {
		t.Fatalf("got %d recurring charges, want 1", len(got))
	}
	if got[0].Cadence != domain.CadenceMonthly {
		t.Errorf("Cadence = %q, want monthly", got[0].Cadence)
	}
	if got[0].Confidence <= 0.5 {
		t.Errorf("four tight monthly samples scored %v, want > 0.5", got[0].Confidence)
	}
}

func TestDetectRecurringBiweekly(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Date: "2025-01-03", Amount: 40, Merchant: "GYM", Category: "Fitness"},
		{ID: "2", Date: "2025-01-17", Amount: 40, Merchant: "GYM", Category: "Fitness"},
		{ID: "3", Date: "2025-01-31", Amount: 40, Merchant: "GYM", Category: "Fitness"},
	}
	got := DetectRecurring(txs)
	if len(got) != 1 || got[0].Cadence != domain.CadenceBiweekly {
		t.Fatalf("biweekly cadence not detected: %+v", got)
	}
}

func TestDetectRecurringIgnoresIrregular(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Date: "2025-01-01", Amount: 20, Merchant: "RANDOM SHOP"},
		{ID: "2", Date: "2025-01-04", Amount: 35, Merchant: "RANDOM SHOP"},
		{ID: "3", Date: "2025-03-20", Amount: 12, Merchant: "RANDOM SHOP"},
	}
	if got := DetectRecurring(txs); len(got) != 0 {
		t.Errorf("irregular merchant surfaced as recurring: %+v", got)
	}
}

func TestDetectRecurringSingleOccurrence(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Date: "2025-01-01", Amount: 20, Merchant: "ONE-OFF"},
	}
	if got := DetectRecurring(txs); len(got) != 0 {
		t.Errorf("single occurrence surfaced as recurring: %+v", got)
	}
}

func TestDetectRecurringDeterministicID(t *testing.T) {
	a := DetectRecurring(weeklyCoffee())
	b := DetectRecurring(weeklyCoffee())
	if a[0].ID == "" || a[0].ID != b[0].ID {
		t.Errorf("recurring charge IDs unstable across runs: %q vs %q", a[0].ID, b[0].ID)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"odd", []float64{9, 1, 5}, 5},
		{"even", []float64{1, 2, 3, 4}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.xs); !almostEqual(got, tt.want) {
				t.Errorf("median(%v) = %v, want %v", tt.xs, got, tt.want)
			}
		})
	}
}
