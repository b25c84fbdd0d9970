package matching

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MikeSquared-Agency/Fundable/internal/ranking"
)

// Matcher orchestrates the 7-factor weighted additive lender matcher.
type Matcher struct {
	cfg Config
}

// NewMatcher creates a Matcher. A zero DefaultMaxResults falls back to the
// default.
func NewMatcher(cfg Config) *Matcher {
	if cfg.DefaultMaxResults <= 0 {
		cfg.DefaultMaxResults = DefaultConfig().DefaultMaxResults
	}
	return &Matcher{cfg: cfg}
}

// Config returns the matcher configuration.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Match scores every lender against the profile, drops lenders at or below
// the cutoff and returns the rest ranked by score, approval odds and name.
// It never returns nil.
func (m *Matcher) Match(profile BusinessProfile, lenders []Lender, req Request) []LenderMatch {
	amount := req.LoanAmount
	if amount <= 0 {
		amount = profile.RequestedAmount
	}
	limit := req.MaxResults
	if limit <= 0 {
		limit = m.cfg.DefaultMaxResults
	}

	printer := message.NewPrinter(language.English)
	matches := []LenderMatch{}
	for _, l := range lenders {
		mc := &MatchContext{Profile: profile, Lender: l, LoanAmount: amount, Config: &m.cfg, printer: printer}
		lm := m.ScoreLender(mc, req.LoanType)
		if lm.MatchScore <= m.cfg.MinMatchScore {
			continue
		}
		matches = append(matches, lm)
	}

	ranking.Sort(matches, func(lm LenderMatch) ranking.Key {
		return ranking.Key{Value: lm.MatchScore, Secondary: lm.EstimatedApprovalOdds, Name: lm.Lender.Name}
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// ScoreLender computes the full match for one profile–lender pair without
// applying the cutoff.
func (m *Matcher) ScoreLender(mc *MatchContext, loanType string) LenderMatch {
	factors := []FactorResult{
		CreditScoreFactor(mc),
		LoanAmountFactor(mc),
		TimeInBusinessFactor(mc),
		IndustryFactor(mc),
		GeographyFactor(mc),
		RevenueFactor(mc),
		BankingTenureFactor(mc),
	}
	weights := m.cfg.Weights.asList()

	var total float64
	reasons := []string{}
	for i := range factors {
		factors[i].Weight = weights[i]
		factors[i].Weighted = factors[i].Score * weights[i]
		total += factors[i].Weighted
		if factors[i].Score > 0 {
			reasons = append(reasons, factors[i].Reason)
		}
	}
	score := round(clamp(total, 0, 1), 4)

	return LenderMatch{
		Lender:                mc.Lender,
		MatchScore:            score,
		MatchReasons:          reasons,
		RecommendedProducts:   recommendedProducts(mc.Lender.Products, mc.LoanAmount, loanType),
		EstimatedApprovalOdds: m.approvalOdds(score, mc.Lender.ApprovalRate),
		EstimatedRates:        m.estimateRates(score, mc.Lender.InterestRateRange),
		Factors:               factors,
	}
}

// approvalOdds is score × approval rate, capped at MaxApprovalOdds so a match
// never implies certainty.
func (m *Matcher) approvalOdds(score, approvalRate float64) float64 {
	odds := math.Min(m.cfg.MaxApprovalOdds, score*approvalRate)
	return round(clamp(odds, 0, m.cfg.MaxApprovalOdds), 1)
}

// estimateRates lowers the lender's base range by up to MaxRateReduction in
// proportion to the score, never below RateFloor.
func (m *Matcher) estimateRates(score float64, base RateRange) RateRange {
	factor := 1 - m.cfg.MaxRateReduction*score
	lo := math.Max(m.cfg.RateFloor, base.Min*factor)
	hi := math.Max(lo, math.Max(m.cfg.RateFloor, base.Max*factor))
	return RateRange{Min: round(lo, 2), Max: round(hi, 2)}
}

func recommendedProducts(products []LoanProduct, amount float64, loanType string) []LoanProduct {
	out := []LoanProduct{}
	for _, p := range products {
		if !inRange(amount, p.MinAmount, p.MaxAmount) {
			continue
		}
		if loanType != "" && !strings.EqualFold(p.Type, loanType) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
