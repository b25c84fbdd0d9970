package recommend

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Fundable/internal/ranking"
	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
)

// recommendationNamespace seeds deterministic recommendation IDs.
var recommendationNamespace = uuid.MustParse("6f1c2a8e-3b5d-4c7a-9e21-5d8f0b4a7c13")

// Recommendation is one prioritized improvement for a category.
type Recommendation struct {
	ID                    string           `json:"id"`
	Category              string           `json:"category"`
	Title                 string           `json:"title"`
	Description           string           `json:"description"`
	Priority              ranking.Priority `json:"priority"`
	EstimatedImpactPoints float64          `json:"estimatedImpactPoints"`
	ActionItems           []string         `json:"actionItems"`
	TimeToComplete        string           `json:"timeToComplete,omitempty"`
}

// Gap is a criterion that is unanswered or earns less than its full weight.
type Gap struct {
	CriterionID string           `json:"criterionId"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Weight      float64          `json:"weight"`
	Earned      float64          `json:"earned"`
	Answered    bool             `json:"answered"`
	Required    bool             `json:"required"`
	Priority    ranking.Priority `json:"priority"`
}

// Generator turns scoring gaps into a capped, ordered recommendation list.
type Generator struct {
	cfg    Config
	engine *scoring.Engine
}

// NewGenerator creates a Generator. The engine supplies per-criterion earned
// points so gaps are judged with the same bands and labels as the score.
func NewGenerator(cfg Config, engine *scoring.Engine) *Generator {
	def := DefaultConfig()
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = def.Tiers
	}
	if cfg.MaxActionItems <= 0 {
		cfg.MaxActionItems = def.MaxActionItems
	}
	return &Generator{cfg: cfg, engine: engine}
}

// Recommend returns one recommendation per category that falls below the
// threshold and has at least one gap, sorted by estimated impact.
func (g *Generator) Recommend(criteria []scoring.Criterion, answers []scoring.Answer, scores scoring.AssessmentScore) []Recommendation {
	recs := []Recommendation{}
	for _, category := range g.categories(criteria) {
		gaps := g.Gaps(criteria, answers, scores, category)
		if len(gaps) == 0 {
			continue
		}
		recs = append(recs, g.build(category, gaps, g.percentage(criteria, answers, scores, category)))
	}

	ranking.Sort(recs, func(r Recommendation) ranking.Key {
		return ranking.Key{Value: r.EstimatedImpactPoints, Tier: r.Priority, Name: r.Category}
	})
	return recs
}

// Gaps lists the gaps of one category, or nil when the category is at or
// above the threshold.
func (g *Generator) Gaps(criteria []scoring.Criterion, answers []scoring.Answer, scores scoring.AssessmentScore, category string) []Gap {
	if g.percentage(criteria, answers, scores, category) >= g.cfg.Threshold {
		return nil
	}

	latest := scoring.LatestAnswers(answers)
	seen := make(map[string]bool)
	var gaps []Gap
	for _, c := range criteria {
		if c.Category != category || seen[c.ID] || c.Weight <= 0 {
			continue
		}
		seen[c.ID] = true

		cr := g.engine.Evaluate(c, latest)
		if cr.Answered && cr.Earned >= cr.Possible-1e-9 {
			continue
		}
		gap := Gap{
			CriterionID: c.ID,
			Name:        c.Name,
			Category:    c.Category,
			Weight:      c.Weight,
			Earned:      cr.Earned,
			Answered:    cr.Answered,
			Required:    c.Required,
			Priority:    g.cfg.tierFor(c.Weight),
		}
		if gap.Name == "" {
			gap.Name = c.ID
		}
		if g.cfg.EscalateRequired && c.Required && !cr.Answered && gap.Priority == g.cfg.topTier() {
			gap.Priority = ranking.Critical
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

func (g *Generator) build(category string, gaps []Gap, pct float64) Recommendation {
	ordered := make([]Gap, len(gaps))
	copy(ordered, gaps)
	slices.SortStableFunc(ordered, func(a, b Gap) int {
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return rb - ra
		}
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return 0
	})

	priority := ordered[0].Priority
	var impact float64
	var unanswered int
	for _, gap := range ordered {
		impact += gap.Weight
		if !gap.Answered {
			unanswered++
		}
	}

	items := make([]string, 0, g.cfg.MaxActionItems)
	for _, gap := range ordered {
		if len(items) == g.cfg.MaxActionItems {
			break
		}
		items = append(items, gap.Name)
	}

	return Recommendation{
		ID:                    uuid.NewSHA1(recommendationNamespace, []byte(category)).String(),
		Category:              category,
		Title:                 titleFor(priority, category),
		Description:           describe(category, pct, g.cfg.Threshold, len(ordered), unanswered),
		Priority:              priority,
		EstimatedImpactPoints: math.Round(impact*100) / 100,
		ActionItems:           items,
		TimeToComplete:        g.cfg.TimeToComplete[priority],
	}
}

// percentage prefers the supplied category score and falls back to the
// engine when the caller's scores do not cover the category.
func (g *Generator) percentage(criteria []scoring.Criterion, answers []scoring.Answer, scores scoring.AssessmentScore, category string) float64 {
	if cs, ok := scores.Category(category); ok {
		return cs.Percentage
	}
	cs, _ := g.engine.Score(criteria, answers).Category(category)
	return cs.Percentage
}

func (g *Generator) categories(criteria []scoring.Criterion) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range criteria {
		if !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	return out
}

func titleFor(p ranking.Priority, category string) string {
	switch p {
	case ranking.Critical:
		return "Resolve critical gaps in " + category
	case ranking.High:
		return "Strengthen " + category
	case ranking.Medium:
		return "Improve " + category
	default:
		return "Polish " + category
	}
}

func describe(category string, pct, threshold float64, gaps, unanswered int) string {
	noun := "items"
	if gaps == 1 {
		noun = "item"
	}
	desc := fmt.Sprintf("%s scores %.0f%%, below the %.0f%% lender-ready target. %d %s need attention",
		category, pct, threshold, gaps, noun)
	if unanswered > 0 {
		desc += fmt.Sprintf(", %d not yet answered", unanswered)
	}
	return desc + "."
}
