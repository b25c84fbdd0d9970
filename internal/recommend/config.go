package recommend

import (
	"fmt"
	"sort"

	"github.com/MikeSquared-Agency/Fundable/internal/ranking"
)

// TierBoundary assigns Priority to gaps whose criterion weight is >= MinWeight.
type TierBoundary struct {
	MinWeight float64          `yaml:"min_weight"`
	Priority  ranking.Priority `yaml:"priority"`
}

// Config controls gap detection and recommendation shaping.
type Config struct {
	// Threshold is the category percentage below which gaps are reported.
	Threshold float64        `yaml:"threshold"`
	Tiers     []TierBoundary `yaml:"tiers"`
	// EscalateRequired raises unanswered required gaps in the top tier to critical.
	EscalateRequired bool                        `yaml:"escalate_required"`
	MaxActionItems   int                         `yaml:"max_action_items"`
	TimeToComplete   map[ranking.Priority]string `yaml:"time_to_complete"`
}

// DefaultConfig returns the default thresholds and tier boundaries.
func DefaultConfig() Config {
	return Config{
		Threshold: 70,
		Tiers: []TierBoundary{
			{MinWeight: 8, Priority: ranking.High},
			{MinWeight: 5, Priority: ranking.Medium},
			{MinWeight: 0, Priority: ranking.Low},
		},
		EscalateRequired: true,
		MaxActionItems:   5,
		TimeToComplete: map[ranking.Priority]string{
			ranking.Critical: "1-2 weeks",
			ranking.High:     "2-4 weeks",
			ranking.Medium:   "1-2 months",
			ranking.Low:      "2-3 months",
		},
	}
}

// Validate checks the threshold, tiers and caps.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("recommendation threshold %.2f out of [0,100]", c.Threshold)
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("at least one recommendation tier required")
	}
	for _, t := range c.Tiers {
		if !t.Priority.Valid() {
			return fmt.Errorf("unknown tier priority %q", t.Priority)
		}
	}
	if c.MaxActionItems <= 0 {
		return fmt.Errorf("max action items must be positive, got %d", c.MaxActionItems)
	}
	return nil
}

// tierFor returns the priority of the highest boundary the weight reaches.
// Weights below every boundary fall into the lowest tier.
func (c *Config) tierFor(weight float64) ranking.Priority {
	tiers := c.sortedTiers()
	for _, t := range tiers {
		if weight >= t.MinWeight {
			return t.Priority
		}
	}
	return tiers[len(tiers)-1].Priority
}

func (c *Config) topTier() ranking.Priority {
	return c.sortedTiers()[0].Priority
}

func (c *Config) sortedTiers() []TierBoundary {
	tiers := make([]TierBoundary, len(c.Tiers))
	copy(tiers, c.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinWeight > tiers[j].MinWeight })
	return tiers
}
