package matching

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FactorResult captures one factor's contribution to the match score.
type FactorResult struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Weighted  float64 `json:"weighted"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason"`
}

// MatchContext bundles all inputs needed to score a single profile–lender pair.
type MatchContext struct {
	Profile    BusinessProfile
	Lender     Lender
	LoanAmount float64
	Config     *Config

	printer *message.Printer
}

func (mc *MatchContext) sprintf(format string, a ...any) string {
	if mc.printer == nil {
		mc.printer = message.NewPrinter(language.English)
	}
	return mc.printer.Sprintf(format, a...)
}

// --- Individual factor calculators ---

// CreditScoreFactor is 0 below the lender minimum. Meeting the minimum earns
// CreditBaseFraction and the rest scales with headroom up to CreditHeadroom points.
func CreditScoreFactor(mc *MatchContext) FactorResult {
	p, l := mc.Profile, mc.Lender
	if p.CreditScore == 0 {
		return FactorResult{Name: "credit_score", Score: 0, Available: false, Reason: "credit score unknown"}
	}
	if p.CreditScore < l.MinCreditScore {
		return FactorResult{Name: "credit_score", Score: 0, Available: true,
			Reason: mc.sprintf("credit score %d below the %d minimum", p.CreditScore, l.MinCreditScore)}
	}
	base := clamp(mc.Config.CreditBaseFraction, 0, 1)
	score := 1.0
	if mc.Config.CreditHeadroom > 0 {
		headroom := float64(p.CreditScore - l.MinCreditScore)
		score = base + (1-base)*math.Min(headroom/mc.Config.CreditHeadroom, 1.0)
	}
	return FactorResult{Name: "credit_score", Score: clamp(score, 0, 1), Available: true,
		Reason: mc.sprintf("Credit score %d meets the %d minimum", p.CreditScore, l.MinCreditScore)}
}

// LoanAmountFactor is binary: the requested amount must fall inside the
// lender's range. A zero maximum means the lender sets no upper bound.
func LoanAmountFactor(mc *MatchContext) FactorResult {
	l := mc.Lender
	if !inRange(mc.LoanAmount, l.MinLoanAmount, l.MaxLoanAmount) {
		return FactorResult{Name: "loan_amount", Score: 0, Available: true,
			Reason: mc.sprintf("$%.0f outside the lender's range", mc.LoanAmount)}
	}
	if l.MaxLoanAmount <= 0 {
		return FactorResult{Name: "loan_amount", Score: 1, Available: true,
			Reason: mc.sprintf("Lends $%.0f and above", l.MinLoanAmount)}
	}
	return FactorResult{Name: "loan_amount", Score: 1, Available: true,
		Reason: mc.sprintf("Lends between $%.0f and $%.0f", l.MinLoanAmount, l.MaxLoanAmount)}
}

// TimeInBusinessFactor gives full credit at or above the lender minimum.
func TimeInBusinessFactor(mc *MatchContext) FactorResult {
	p, l := mc.Profile, mc.Lender
	if p.TimeInBusinessMonths < l.MinTimeInBusinessMonths {
		return FactorResult{Name: "time_in_business", Score: 0, Available: true,
			Reason: mc.sprintf("%d months in business, %d required", p.TimeInBusinessMonths, l.MinTimeInBusinessMonths)}
	}
	return FactorResult{Name: "time_in_business", Score: 1, Available: true,
		Reason: mc.sprintf("%d months in business meets the %d month minimum", p.TimeInBusinessMonths, l.MinTimeInBusinessMonths)}
}

// IndustryFactor matches the profile industry against industriesServed.
func IndustryFactor(mc *MatchContext) FactorResult {
	industry := mc.Profile.Industry
	switch {
	case servesAll(mc.Lender.IndustriesServed):
		return FactorResult{Name: "industry", Score: 1, Available: true, Reason: "Serves all industries"}
	case industry != "" && contains(mc.Lender.IndustriesServed, industry):
		return FactorResult{Name: "industry", Score: 1, Available: true, Reason: "Serves the " + industry + " industry"}
	case industry == "":
		return FactorResult{Name: "industry", Score: 0, Available: false, Reason: "industry unknown"}
	}
	return FactorResult{Name: "industry", Score: 0, Available: true, Reason: "industry not served: " + industry}
}

// GeographyFactor matches the profile state against statesServed.
func GeographyFactor(mc *MatchContext) FactorResult {
	state := mc.Profile.State
	switch {
	case servesAll(mc.Lender.StatesServed):
		return FactorResult{Name: "geography", Score: 1, Available: true, Reason: "Lends in all states"}
	case state != "" && contains(mc.Lender.StatesServed, state):
		return FactorResult{Name: "geography", Score: 1, Available: true, Reason: "Lends in " + state}
	case state == "":
		return FactorResult{Name: "geography", Score: 0, Available: false, Reason: "state unknown"}
	}
	return FactorResult{Name: "geography", Score: 0, Available: true, Reason: "state not served: " + state}
}

// RevenueFactor scales annual revenue against RevenueCeiling, capped at 1.0.
func RevenueFactor(mc *MatchContext) FactorResult {
	revenue := mc.Profile.AnnualRevenue
	if revenue <= 0 || mc.Config.RevenueCeiling <= 0 {
		return FactorResult{Name: "revenue", Score: 0, Available: revenue > 0, Reason: "no revenue reported"}
	}
	score := math.Min(revenue/mc.Config.RevenueCeiling, 1.0)
	return FactorResult{Name: "revenue", Score: score, Available: true,
		Reason: mc.sprintf("Annual revenue of $%.0f", revenue)}
}

// BankingTenureFactor gives full credit once the banking relationship reaches
// BankingTenureMonths.
func BankingTenureFactor(mc *MatchContext) FactorResult {
	months := mc.Profile.BankingRelationshipMonths
	if months < mc.Config.BankingTenureMonths {
		return FactorResult{Name: "banking_tenure", Score: 0, Available: true,
			Reason: mc.sprintf("%d month banking relationship, %d preferred", months, mc.Config.BankingTenureMonths)}
	}
	return FactorResult{Name: "banking_tenure", Score: 1, Available: true,
		Reason: mc.sprintf("Established %d month banking relationship", months)}
}

func inRange(v, min, max float64) bool {
	if v < min {
		return false
	}
	return max <= 0 || v <= max
}

func servesAll(list []string) bool {
	return contains(list, "All")
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
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
