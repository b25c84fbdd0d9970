package scoring

import "time"

// AnswerType is the declared shape of a criterion's answer.
type AnswerType string

const (
	AnswerBoolean AnswerType = "boolean"
	AnswerSelect  AnswerType = "select"
	AnswerNumber  AnswerType = "number"
	AnswerText    AnswerType = "text"
)

// Criterion is a single weighted, categorized question from the catalog.
type Criterion struct {
	ID          string     `json:"id" yaml:"id"`
	Category    string     `json:"category" yaml:"category"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Weight      float64    `json:"weight" yaml:"weight"`
	Required    bool       `json:"required" yaml:"required"`
	AnswerType  AnswerType `json:"answerType" yaml:"answer_type"`
	Options     []string   `json:"options,omitempty" yaml:"options"`

	// OptionScores pins the fraction earned by specific select options and
	// takes precedence over label and ordinal scoring.
	OptionScores map[string]float64 `json:"optionScores,omitempty" yaml:"option_scores"`

	// Bands names the number band table used for number answers.
	Bands string `json:"bands,omitempty" yaml:"bands"`
}

// Answer is one caller-supplied answer. Value holds any JSON-compatible
// value; it is resolved against the criterion's AnswerType when scored.
type Answer struct {
	CriterionID string    `json:"criterionId" yaml:"criterion_id"`
	Value       any       `json:"value" yaml:"value"`
	AnsweredAt  time.Time `json:"answeredAt,omitempty" yaml:"answered_at"`
}

// CategoryScore is the roll-up of one category.
type CategoryScore struct {
	Category       string  `json:"category"`
	EarnedPoints   float64 `json:"score"`
	PossiblePoints float64 `json:"maxScore"`
	Percentage     float64 `json:"percentage"`
	AnsweredCount  int     `json:"completedCriteria"`
	TotalCount     int     `json:"totalCriteria"`
}

// CriterionResult captures one criterion's contribution to its category.
type CriterionResult struct {
	CriterionID string  `json:"criterionId"`
	Category    string  `json:"category"`
	Earned      float64 `json:"earned"`
	Possible    float64 `json:"possible"`
	Answered    bool    `json:"answered"`
	Required    bool    `json:"required"`
}

// AssessmentScore is the derived result of one scoring pass.
type AssessmentScore struct {
	OverallScore         int               `json:"overallScore"`
	CategoryScores       []CategoryScore   `json:"categoryScores"`
	CompletionPercentage float64           `json:"completionPercentage"`
	ReadinessTier        string            `json:"readinessTier"`
	MissingRequired      []string          `json:"missingRequired"`
	Criteria             []CriterionResult `json:"criteria,omitempty"`
}

// Category returns the score for the named category, if present.
func (s AssessmentScore) Category(name string) (CategoryScore, bool) {
	for _, cs := range s.CategoryScores {
		if cs.Category == name {
			return cs, true
		}
	}
	return CategoryScore{}, false
}
