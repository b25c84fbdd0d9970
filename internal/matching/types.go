package matching

// RateRange is an interest rate range in percent APR.
type RateRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// LoanProduct is one financing product offered by a lender.
type LoanProduct struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Type       string    `json:"type" yaml:"type"`
	MinAmount  float64   `json:"minAmount" yaml:"min_amount"`
	MaxAmount  float64   `json:"maxAmount" yaml:"max_amount"`
	Rates      RateRange `json:"rates" yaml:"rates"`
	TermMonths int       `json:"termMonths,omitempty" yaml:"term_months"`
}

// Lender is read-only reference data from the lender directory.
type Lender struct {
	ID                      string        `json:"id" yaml:"id"`
	Name                    string        `json:"name" yaml:"name"`
	MinCreditScore          int           `json:"minCreditScore" yaml:"min_credit_score"`
	MinLoanAmount           float64       `json:"minLoanAmount" yaml:"min_loan_amount"`
	MaxLoanAmount           float64       `json:"maxLoanAmount" yaml:"max_loan_amount"`
	MinTimeInBusinessMonths int           `json:"minTimeInBusinessMonths" yaml:"min_time_in_business_months"`
	IndustriesServed        []string      `json:"industriesServed" yaml:"industries_served"`
	StatesServed            []string      `json:"statesServed" yaml:"states_served"`
	InterestRateRange       RateRange     `json:"interestRateRange" yaml:"interest_rate_range"`
	ApprovalRate            float64       `json:"approvalRate" yaml:"approval_rate"`
	Products                []LoanProduct `json:"products" yaml:"products"`
}

// BusinessProfile is the snapshot of answers the matcher needs.
type BusinessProfile struct {
	CreditScore               int     `json:"creditScore"`
	TimeInBusinessMonths      int     `json:"timeInBusinessMonths"`
	Industry                  string  `json:"industry"`
	State                     string  `json:"state"`
	AnnualRevenue             float64 `json:"annualRevenue"`
	BankingRelationshipMonths int     `json:"bankingRelationshipMonths"`
	RequestedAmount           float64 `json:"requestedAmount,omitempty"`
}

// Request carries the per-call matching parameters.
type Request struct {
	LoanAmount float64 `json:"loanAmount"`
	LoanType   string  `json:"loanType,omitempty"`
	MaxResults int     `json:"maxResults,omitempty"`
}

// LenderMatch is one ranked lender with its explanation and estimated terms.
type LenderMatch struct {
	Lender                Lender         `json:"lender"`
	MatchScore            float64        `json:"matchScore"`
	MatchReasons          []string       `json:"matchReasons"`
	RecommendedProducts   []LoanProduct  `json:"recommendedProducts"`
	EstimatedApprovalOdds float64        `json:"estimatedApprovalOdds"`
	EstimatedRates        RateRange      `json:"estimatedRates"`
	Factors               []FactorResult `json:"factors,omitempty"`
}
