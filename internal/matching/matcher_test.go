package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
)

func summitBank() Lender {
	return Lender{
		ID:                      "summit",
		Name:                    "Summit Bank",
		MinCreditScore:          650,
		MinLoanAmount:           50_000,
		MaxLoanAmount:           500_000,
		MinTimeInBusinessMonths: 24,
		IndustriesServed:        []string{"All"},
		StatesServed:            []string{"All"},
		InterestRateRange:       RateRange{Min: 6, Max: 12},
		ApprovalRate:            80,
		Products: []LoanProduct{
			{ID: "summit-term", Name: "Term Loan", Type: "term", MinAmount: 50_000, MaxAmount: 500_000},
			{ID: "summit-loc", Name: "Line of Credit", Type: "line_of_credit", MinAmount: 10_000, MaxAmount: 100_000},
		},
	}
}

func strongProfile() BusinessProfile {
	return BusinessProfile{
		CreditScore:               750,
		TimeInBusinessMonths:      36,
		Industry:                  "construction",
		State:                     "TX",
		AnnualRevenue:             1_000_000,
		BankingRelationshipMonths: 36,
	}
}

func newMatcher() *Matcher {
	return NewMatcher(DefaultConfig())
}

func TestMatchFullFit(t *testing.T) {
	m := newMatcher()
	got := m.Match(strongProfile(), []Lender{summitBank()}, Request{LoanAmount: 250_000})
	require.Len(t, got, 1)

	lm := got[0]
	assert.Equal(t, 1.0, lm.MatchScore)
	assert.Equal(t, 80.0, lm.EstimatedApprovalOdds)
	assert.Equal(t, RateRange{Min: 4.8, Max: 9.6}, lm.EstimatedRates)
	assert.Len(t, lm.MatchReasons, 7)
	assert.Contains(t, lm.MatchReasons[0], "Credit score 750")
	require.Len(t, lm.RecommendedProducts, 1)
	assert.Equal(t, "summit-term", lm.RecommendedProducts[0].ID)
	assert.Len(t, lm.Factors, 7)
}

func TestMatchCreditBelowMinimumExcluded(t *testing.T) {
	m := newMatcher()
	lender := summitBank()
	lender.IndustriesServed = []string{"retail"}
	lender.StatesServed = []string{"CA"}
	profile := BusinessProfile{
		CreditScore:               600,
		TimeInBusinessMonths:      6,
		Industry:                  "construction",
		State:                     "TX",
		AnnualRevenue:             100_000,
		BankingRelationshipMonths: 6,
	}

	mc := &MatchContext{Profile: profile, Lender: lender, LoanAmount: 250_000, Config: &m.cfg}
	lm := m.ScoreLender(mc, "")
	assert.Equal(t, 0.0, lm.Factors[0].Score, "credit factor contributes nothing below the minimum")
	assert.InDelta(t, 0.21, lm.MatchScore, 1e-9)

	got := m.Match(profile, []Lender{lender}, Request{LoanAmount: 250_000})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatchCutoffIsExclusive(t *testing.T) {
	m := newMatcher()
	lender := summitBank()
	lender.StatesServed = []string{"CA"}
	// Only loan amount (0.20) and industry (0.10) are satisfied: exactly 0.3.
	profile := BusinessProfile{Industry: "construction", State: "TX"}

	mc := &MatchContext{Profile: profile, Lender: lender, LoanAmount: 100_000, Config: &m.cfg}
	require.Equal(t, 0.3, m.ScoreLender(mc, "").MatchScore)

	assert.Empty(t, m.Match(profile, []Lender{lender}, Request{LoanAmount: 100_000}))
}

func TestMatchTieBreaking(t *testing.T) {
	m := newMatcher()

	alpha := summitBank()
	alpha.ID, alpha.Name, alpha.ApprovalRate = "alpha", "Alpha Capital", 70
	beta := summitBank()
	beta.ID, beta.Name, beta.ApprovalRate = "beta", "Beta Funding", 90
	zeta := summitBank()
	zeta.ID, zeta.Name, zeta.ApprovalRate = "zeta", "Zeta Lending", 70

	got := m.Match(strongProfile(), []Lender{zeta, alpha, beta}, Request{LoanAmount: 250_000})
	require.Len(t, got, 3)
	assert.Equal(t, "beta", got[0].Lender.ID, "higher approval odds wins a score tie")
	assert.Equal(t, "alpha", got[1].Lender.ID, "name breaks a full tie")
	assert.Equal(t, "zeta", got[2].Lender.ID)
}

func TestMatchSortedByScore(t *testing.T) {
	m := newMatcher()
	weak := summitBank()
	weak.ID, weak.Name, weak.MinCreditScore = "weak", "Aardvark Bank", 740
	weak.StatesServed = []string{"NY"}

	got := m.Match(strongProfile(), []Lender{weak, summitBank()}, Request{LoanAmount: 250_000})
	require.Len(t, got, 2)
	assert.Equal(t, "summit", got[0].Lender.ID)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].MatchScore, got[i].MatchScore)
	}
}

func TestMatchEmptyLenders(t *testing.T) {
	m := newMatcher()
	got := m.Match(strongProfile(), nil, Request{LoanAmount: 250_000})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatchTruncatesToMaxResults(t *testing.T) {
	m := newMatcher()
	var lenders []Lender
	for _, name := range []string{"A", "B", "C"} {
		l := summitBank()
		l.ID, l.Name = name, name
		lenders = append(lenders, l)
	}

	got := m.Match(strongProfile(), lenders, Request{LoanAmount: 250_000, MaxResults: 2})
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Lender.ID)
	assert.Equal(t, "B", got[1].Lender.ID)
}

func TestMatchUsesRequestedAmountFromProfile(t *testing.T) {
	m := newMatcher()
	profile := strongProfile()
	profile.RequestedAmount = 75_000

	got := m.Match(profile, []Lender{summitBank()}, Request{})
	require.Len(t, got, 1)
	assert.Len(t, got[0].RecommendedProducts, 2)
}

func TestRecommendedProductsByType(t *testing.T) {
	products := summitBank().Products

	got := recommendedProducts(products, 50_000, "LINE_OF_CREDIT")
	require.Len(t, got, 1)
	assert.Equal(t, "summit-loc", got[0].ID)

	assert.Len(t, recommendedProducts(products, 50_000, ""), 2)
	assert.Empty(t, recommendedProducts(products, 5_000, ""))
	assert.NotNil(t, recommendedProducts(nil, 5_000, ""))
}

func TestApprovalOddsBounds(t *testing.T) {
	m := newMatcher()
	tests := []struct {
		name  string
		score float64
		rate  float64
		want  float64
	}{
		{"capped", 1, 99, 95},
		{"scaled", 0.5, 80, 40},
		{"rounded", 0.6667, 75, 50},
		{"negative rate", 1, -10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.approvalOdds(tt.score, tt.rate))
		})
	}
}

func TestEstimateRatesFloor(t *testing.T) {
	m := newMatcher()
	got := m.estimateRates(1, RateRange{Min: 3.5, Max: 5})
	assert.Equal(t, RateRange{Min: 3, Max: 4}, got)

	got = m.estimateRates(0, RateRange{Min: 7, Max: 9})
	assert.Equal(t, RateRange{Min: 7, Max: 9}, got)
}

func TestCreditScoreFactorHeadroom(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		credit int
		want   float64
	}{
		{649, 0},
		{650, 0.5},
		{700, 0.75},
		{750, 1},
		{820, 1},
	}
	for _, tt := range tests {
		mc := &MatchContext{Profile: BusinessProfile{CreditScore: tt.credit}, Lender: summitBank(), Config: &cfg}
		assert.InDelta(t, tt.want, CreditScoreFactor(mc).Score, 1e-9, "credit %d", tt.credit)
	}
}

func TestIndustryAndGeographyFactors(t *testing.T) {
	cfg := DefaultConfig()
	lender := summitBank()
	lender.IndustriesServed = []string{"Construction", "Retail"}
	lender.StatesServed = []string{"tx"}

	mc := &MatchContext{Profile: strongProfile(), Lender: lender, Config: &cfg}
	assert.Equal(t, 1.0, IndustryFactor(mc).Score)
	assert.Equal(t, 1.0, GeographyFactor(mc).Score)

	mc.Profile.Industry = "mining"
	mc.Profile.State = ""
	assert.Equal(t, 0.0, IndustryFactor(mc).Score)
	geo := GeographyFactor(mc)
	assert.Equal(t, 0.0, geo.Score)
	assert.False(t, geo.Available)
}

func TestMatchScoreBounds(t *testing.T) {
	m := newMatcher()
	profiles := []BusinessProfile{
		{},
		strongProfile(),
		{CreditScore: 900, AnnualRevenue: 50_000_000, BankingRelationshipMonths: 500, TimeInBusinessMonths: 500},
	}
	for _, p := range profiles {
		mc := &MatchContext{Profile: p, Lender: summitBank(), LoanAmount: 250_000, Config: &m.cfg}
		lm := m.ScoreLender(mc, "")
		assert.GreaterOrEqual(t, lm.MatchScore, 0.0)
		assert.LessOrEqual(t, lm.MatchScore, 1.0)
		assert.GreaterOrEqual(t, lm.EstimatedApprovalOdds, 0.0)
		assert.LessOrEqual(t, lm.EstimatedApprovalOdds, 95.0)
	}
}

func TestDeriveProfile(t *testing.T) {
	answers := []scoring.Answer{
		{CriterionID: "personal_credit_score", Value: "712"},
		{CriterionID: "time_in_business_months", Value: 30.0},
		{CriterionID: "industry", Value: " Construction "},
		{CriterionID: "business_state", Value: "tx"},
		{CriterionID: "annual_revenue", Value: "$450,000"},
		{CriterionID: "banking_relationship_months", Value: "not sure"},
	}

	got := DeriveProfile(answers, DefaultProfileFields(), 120_000)
	assert.Equal(t, BusinessProfile{
		CreditScore:          712,
		TimeInBusinessMonths: 30,
		Industry:             "Construction",
		State:                "TX",
		AnnualRevenue:        450_000,
		RequestedAmount:      120_000,
	}, got)
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	assert.InDelta(t, 1.0, DefaultWeights().Sum(), 1e-9)

	w := DefaultWeights()
	w.CreditScore = 0.5
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.CreditScore, w.LoanAmount = -0.05, 0.50
	assert.Error(t, w.Validate())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MaxApprovalOdds = 100
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MinMatchScore = 1
	assert.Error(t, cfg.Validate())
}
