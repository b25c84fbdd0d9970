package matching

import (
	"fmt"
	"math"
)

// WeightSet defines the relative importance of each matching factor.
// All weights must sum to 1.0 (±0.001 tolerance).
type WeightSet struct {
	CreditScore    float64 `yaml:"credit_score"`
	LoanAmount     float64 `yaml:"loan_amount"`
	TimeInBusiness float64 `yaml:"time_in_business"`
	Industry       float64 `yaml:"industry"`
	Geography      float64 `yaml:"geography"`
	Revenue        float64 `yaml:"revenue"`
	BankingTenure  float64 `yaml:"banking_tenure"`
}

// DefaultWeights returns the standard factor distribution.
func DefaultWeights() WeightSet {
	return WeightSet{
		CreditScore:    0.25,
		LoanAmount:     0.20,
		TimeInBusiness: 0.15,
		Industry:       0.10,
		Geography:      0.10,
		Revenue:        0.10,
		BankingTenure:  0.10,
	}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.CreditScore + w.LoanAmount + w.TimeInBusiness + w.Industry +
		w.Geography + w.Revenue + w.BankingTenure
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("match weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative match weight: %f", v)
		}
	}
	return nil
}

func (w WeightSet) asList() []float64 {
	return []float64{
		w.CreditScore, w.LoanAmount, w.TimeInBusiness, w.Industry,
		w.Geography, w.Revenue, w.BankingTenure,
	}
}

// Config holds the matcher's weights, cutoffs and term estimation knobs.
type Config struct {
	Weights WeightSet `yaml:"weights"`
	// MinMatchScore excludes lenders scoring at or below it.
	MinMatchScore float64 `yaml:"min_match_score"`
	// CreditHeadroom is the number of points above a lender's minimum that
	// earns full credit-score fit; meeting the minimum earns CreditBaseFraction.
	CreditHeadroom      float64 `yaml:"credit_headroom"`
	CreditBaseFraction  float64 `yaml:"credit_base_fraction"`
	RevenueCeiling      float64 `yaml:"revenue_ceiling"`
	BankingTenureMonths int     `yaml:"banking_tenure_months"`
	MaxApprovalOdds     float64 `yaml:"max_approval_odds"`
	MaxRateReduction    float64 `yaml:"max_rate_reduction"`
	RateFloor           float64 `yaml:"rate_floor"`
	DefaultMaxResults   int     `yaml:"default_max_results"`
	// ProfileFields maps assessment criteria onto BusinessProfile fields.
	ProfileFields ProfileFields `yaml:"profile_fields"`
}

// DefaultConfig returns the standard matching configuration.
func DefaultConfig() Config {
	return Config{
		Weights:             DefaultWeights(),
		MinMatchScore:       0.3,
		CreditHeadroom:      100,
		CreditBaseFraction:  0.5,
		RevenueCeiling:      1_000_000,
		BankingTenureMonths: 24,
		MaxApprovalOdds:     95,
		MaxRateReduction:    0.20,
		RateFloor:           3.0,
		DefaultMaxResults:   10,
		ProfileFields:       DefaultProfileFields(),
	}
}

// Validate checks the weights and the numeric knobs.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.MinMatchScore < 0 || c.MinMatchScore >= 1 {
		return fmt.Errorf("min match score %.3f out of [0,1)", c.MinMatchScore)
	}
	if c.CreditBaseFraction < 0 || c.CreditBaseFraction > 1 {
		return fmt.Errorf("credit base fraction %.3f out of [0,1]", c.CreditBaseFraction)
	}
	if c.MaxApprovalOdds <= 0 || c.MaxApprovalOdds >= 100 {
		return fmt.Errorf("max approval odds %.1f must be in (0,100)", c.MaxApprovalOdds)
	}
	if c.MaxRateReduction < 0 || c.MaxRateReduction > 1 {
		return fmt.Errorf("max rate reduction %.3f out of [0,1]", c.MaxRateReduction)
	}
	if c.RateFloor < 0 {
		return fmt.Errorf("rate floor must not be negative, got %.2f", c.RateFloor)
	}
	if c.DefaultMaxResults <= 0 {
		return fmt.Errorf("default max results must be positive, got %d", c.DefaultMaxResults)
	}
	return nil
}
