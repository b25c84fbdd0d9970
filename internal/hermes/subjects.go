package hermes

const (
	// SubjectLendersUpdated is published by the directory owner when lender
	// terms change; subscribers drop cached lender lists.
	SubjectLendersUpdated = "fundability.lenders.updated"

	StreamName   = "FUNDABILITY_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

var StreamSubjects = []string{"fundability.assessment.>", "fundability.lenders.>"}

func SubjectAnswersUpdated(assessmentID string) string {
	return "fundability.assessment." + assessmentID + ".answers_updated"
}
func SubjectScored(assessmentID string) string {
	return "fundability.assessment." + assessmentID + ".scored"
}
func SubjectMatched(assessmentID string) string {
	return "fundability.assessment." + assessmentID + ".matched"
}
