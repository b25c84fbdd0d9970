package hermes

import "time"

type AnswersUpdatedEvent struct {
	AssessmentID string    `json:"assessment_id"`
	CriterionIDs []string  `json:"criterion_ids"`
	Timestamp    time.Time `json:"timestamp"`
}

type ScoredEvent struct {
	AssessmentID         string    `json:"assessment_id"`
	OverallScore         int       `json:"overall_score"`
	ReadinessTier        string    `json:"readiness_tier"`
	CompletionPercentage float64   `json:"completion_percentage"`
	Recommendations      int       `json:"recommendations"`
	Timestamp            time.Time `json:"timestamp"`
}

type MatchedEvent struct {
	AssessmentID string    `json:"assessment_id"`
	LoanAmount   float64   `json:"loan_amount"`
	LoanType     string    `json:"loan_type,omitempty"`
	Evaluated    int       `json:"lenders_evaluated"`
	Matched      int       `json:"lenders_matched"`
	TopLenderID  string    `json:"top_lender_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

type LendersUpdatedEvent struct {
	LenderIDs []string  `json:"lender_ids,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
