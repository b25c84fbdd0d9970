package matching

import (
	"math"
	"strings"

	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
)

// ProfileFields names the criteria whose answers feed a BusinessProfile.
type ProfileFields struct {
	CreditScore               string `yaml:"credit_score"`
	TimeInBusinessMonths      string `yaml:"time_in_business_months"`
	Industry                  string `yaml:"industry"`
	State                     string `yaml:"state"`
	AnnualRevenue             string `yaml:"annual_revenue"`
	BankingRelationshipMonths string `yaml:"banking_relationship_months"`
}

// DefaultProfileFields returns the criterion IDs used by the default catalog.
func DefaultProfileFields() ProfileFields {
	return ProfileFields{
		CreditScore:               "personal_credit_score",
		TimeInBusinessMonths:      "time_in_business_months",
		Industry:                  "industry",
		State:                     "business_state",
		AnnualRevenue:             "annual_revenue",
		BankingRelationshipMonths: "banking_relationship_months",
	}
}

// DeriveProfile builds a matching profile from assessment answers. Later
// answers win per criterion; values that cannot be coerced are left zero.
func DeriveProfile(answers []scoring.Answer, fields ProfileFields, requestedAmount float64) BusinessProfile {
	latest := scoring.LatestAnswers(answers)
	number := func(id string) float64 {
		a, ok := latest[id]
		if id == "" || !ok {
			return 0
		}
		n, ok := scoring.NumberValue(a.Value)
		if !ok || n < 0 {
			return 0
		}
		return n
	}
	text := func(id string) string {
		a, ok := latest[id]
		if id == "" || !ok {
			return ""
		}
		s, _ := scoring.StringValue(a.Value)
		return s
	}

	return BusinessProfile{
		CreditScore:               int(math.Round(number(fields.CreditScore))),
		TimeInBusinessMonths:      int(math.Round(number(fields.TimeInBusinessMonths))),
		Industry:                  text(fields.Industry),
		State:                     strings.ToUpper(text(fields.State)),
		AnnualRevenue:             number(fields.AnnualRevenue),
		BankingRelationshipMonths: int(math.Round(number(fields.BankingRelationshipMonths))),
		RequestedAmount:           requestedAmount,
	}
}
