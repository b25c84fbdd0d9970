package scoring

import "math"

// Engine computes fundability scores from a criteria catalog and answers.
// It holds only configuration; Score is a pure function of its inputs.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score rolls answers up into per-category and overall scores.
func (e *Engine) Score(criteria []Criterion, answers []Answer) AssessmentScore {
	latest := LatestAnswers(answers)

	result := AssessmentScore{
		CategoryScores:  []CategoryScore{},
		MissingRequired: []string{},
		Criteria:        []CriterionResult{},
	}

	index := make(map[string]int)
	seen := make(map[string]bool, len(criteria))
	var answered, total int

	for _, c := range criteria {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true

		cr := e.Evaluate(c, latest)
		result.Criteria = append(result.Criteria, cr)

		i, ok := index[c.Category]
		if !ok {
			i = len(result.CategoryScores)
			index[c.Category] = i
			result.CategoryScores = append(result.CategoryScores, CategoryScore{Category: c.Category})
		}
		cs := &result.CategoryScores[i]
		cs.PossiblePoints += cr.Possible
		cs.EarnedPoints += cr.Earned
		cs.TotalCount++
		total++
		if cr.Answered {
			cs.AnsweredCount++
			answered++
		} else if c.Required {
			result.MissingRequired = append(result.MissingRequired, c.ID)
		}
	}

	var weightedEarned, weightedPossible float64
	for i := range result.CategoryScores {
		cs := &result.CategoryScores[i]
		cs.Percentage = round2(ratio(cs.EarnedPoints, cs.PossiblePoints) * 100)
		if cs.PossiblePoints <= 0 {
			continue
		}
		w := e.cfg.categoryWeight(cs.Category)
		weightedEarned += cs.EarnedPoints * w
		weightedPossible += cs.PossiblePoints * w
	}

	overall := math.Round(ratio(weightedEarned, weightedPossible) * 100)
	result.OverallScore = int(clamp(overall, 0, 100))
	result.CompletionPercentage = round2(ratio(float64(answered), float64(total)) * 100)
	result.ReadinessTier = e.cfg.readinessTier(result.OverallScore)
	return result
}

// Evaluate scores a single criterion against the latest answers by criterion ID.
func (e *Engine) Evaluate(c Criterion, latest map[string]Answer) CriterionResult {
	weight := math.Max(c.Weight, 0)
	cr := CriterionResult{
		CriterionID: c.ID,
		Category:    c.Category,
		Possible:    weight,
		Required:    c.Required,
	}
	a, ok := latest[c.ID]
	if !ok {
		return cr
	}
	resolved := Resolve(c, a.Value)
	if resolved == nil {
		return cr
	}
	cr.Answered = true
	cr.Earned = weight * clamp(resolved.fraction(c, &e.cfg), 0, 1)
	return cr
}

// LatestAnswers keeps one answer per criterion: the latest AnsweredAt wins,
// and on equal timestamps the later element of the slice wins.
func LatestAnswers(answers []Answer) map[string]Answer {
	latest := make(map[string]Answer, len(answers))
	for _, a := range answers {
		if a.CriterionID == "" {
			continue
		}
		prev, ok := latest[a.CriterionID]
		if ok && a.AnsweredAt.Before(prev.AnsweredAt) {
			continue
		}
		latest[a.CriterionID] = a
	}
	return latest
}

func ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0
	}
	return num / den
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
