package scoring

import (
	"fmt"
	"sort"
)

// Band is one step of a number banding table: values >= Min earn Fraction.
type Band struct {
	Min      float64 `yaml:"min" json:"min"`
	Fraction float64 `yaml:"fraction" json:"fraction"`
}

// ReadinessTier labels overall scores at or above MinScore.
type ReadinessTier struct {
	Name     string `yaml:"name" json:"name"`
	MinScore int    `yaml:"min_score" json:"minScore"`
}

// Config holds every weight and threshold the engine uses.
type Config struct {
	CategoryWeights       map[string]float64 `yaml:"category_weights"`
	DefaultCategoryWeight float64            `yaml:"default_category_weight"`
	SelectLabels          map[string]float64 `yaml:"select_labels"`
	Bands                 map[string][]Band  `yaml:"bands"`
	DefaultBands          string             `yaml:"default_bands"`
	Tiers                 []ReadinessTier    `yaml:"readiness_tiers"`
}

// DefaultConfig returns the consolidated weight and band tables.
func DefaultConfig() Config {
	return Config{
		CategoryWeights: map[string]float64{
			"Business Foundation":  1.2,
			"Banking & Finance":    1.4,
			"Business Credit":      1.3,
			"Personal Credit":      1.1,
			"Financial Statements": 1.2,
			"Compliance":           1.0,
			"Online Presence":      1.0,
		},
		DefaultCategoryWeight: 1.0,
		SelectLabels: map[string]float64{
			"excellent":     1.0,
			"very good":     0.9,
			"good":          0.8,
			"fair":          0.6,
			"average":       0.6,
			"below average": 0.4,
			"poor":          0.2,
			"none":          0.0,
		},
		Bands: map[string][]Band{
			"annual_revenue": {
				{Min: 50_000, Fraction: 0.2},
				{Min: 100_000, Fraction: 0.4},
				{Min: 250_000, Fraction: 0.6},
				{Min: 500_000, Fraction: 0.8},
				{Min: 1_000_000, Fraction: 1.0},
			},
			"time_in_business_months": {
				{Min: 6, Fraction: 0.25},
				{Min: 12, Fraction: 0.5},
				{Min: 24, Fraction: 0.75},
				{Min: 36, Fraction: 1.0},
			},
			"credit_score": {
				{Min: 550, Fraction: 0.2},
				{Min: 600, Fraction: 0.4},
				{Min: 650, Fraction: 0.6},
				{Min: 700, Fraction: 0.8},
				{Min: 750, Fraction: 1.0},
			},
			"banking_relationship_months": {
				{Min: 6, Fraction: 0.3},
				{Min: 12, Fraction: 0.6},
				{Min: 24, Fraction: 1.0},
			},
			"count": {
				{Min: 1, Fraction: 1.0},
			},
		},
		DefaultBands: "count",
		Tiers: []ReadinessTier{
			{Name: "excellent", MinScore: 80},
			{Name: "good", MinScore: 65},
			{Name: "fair", MinScore: 45},
			{Name: "poor", MinScore: 0},
		},
	}
}

// Validate checks weights and band tables.
func (c Config) Validate() error {
	if c.DefaultCategoryWeight <= 0 {
		return fmt.Errorf("default category weight must be positive, got %f", c.DefaultCategoryWeight)
	}
	for name, w := range c.CategoryWeights {
		if w <= 0 {
			return fmt.Errorf("category %q: weight must be positive, got %f", name, w)
		}
	}
	for name, bands := range c.Bands {
		for _, b := range bands {
			if b.Fraction < 0 || b.Fraction > 1 {
				return fmt.Errorf("band table %q: fraction %f out of [0,1]", name, b.Fraction)
			}
		}
	}
	if c.DefaultBands != "" {
		if _, ok := c.Bands[c.DefaultBands]; !ok {
			return fmt.Errorf("default band table %q not defined", c.DefaultBands)
		}
	}
	return nil
}

func (c *Config) categoryWeight(category string) float64 {
	if w, ok := c.CategoryWeights[category]; ok && w > 0 {
		return w
	}
	return c.DefaultCategoryWeight
}

// bandFraction applies a step function: the fraction of the highest band
// whose Min the value reaches, or 0 below every band.
func (c *Config) bandFraction(table string, value float64) float64 {
	bands, ok := c.Bands[table]
	if !ok {
		bands = c.Bands[c.DefaultBands]
	}
	best := -1
	for i, b := range bands {
		if value >= b.Min && (best < 0 || b.Min > bands[best].Min) {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return clamp(bands[best].Fraction, 0, 1)
}

func (c *Config) readinessTier(score int) string {
	tiers := make([]ReadinessTier, len(c.Tiers))
	copy(tiers, c.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinScore > tiers[j].MinScore })
	for _, t := range tiers {
		if score >= t.MinScore {
			return t.Name
		}
	}
	return ""
}
