package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Fundable/internal/config"
	"github.com/MikeSquared-Agency/Fundable/internal/fundability"
	"github.com/MikeSquared-Agency/Fundable/internal/lenders"
	"github.com/MikeSquared-Agency/Fundable/internal/matching"
	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
	"github.com/MikeSquared-Agency/Fundable/internal/store"
)

// Mocks
type mockStore struct {
	mu          sync.Mutex
	criteria    []scoring.Criterion
	assessments map[uuid.UUID]*store.Assessment
	answers     map[uuid.UUID]map[string]scoring.Answer
	snapshots   []*store.ScoreSnapshot
}

func newMockStore() *mockStore {
	return &mockStore{
		assessments: make(map[uuid.UUID]*store.Assessment),
		answers:     make(map[uuid.UUID]map[string]scoring.Answer),
	}
}

func (m *mockStore) ListCriteria(_ context.Context) ([]scoring.Criterion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]scoring.Criterion{}, m.criteria...), nil
}
func (m *mockStore) UpsertCriteria(_ context.Context, c []scoring.Criterion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria = c
	return nil
}
func (m *mockStore) CreateAssessment(_ context.Context, a *store.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.assessments[a.ID] = a
	return nil
}
func (m *mockStore) GetAssessment(_ context.Context, id uuid.UUID) (*store.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assessments[id], nil
}
func (m *mockStore) SaveAnswers(_ context.Context, id uuid.UUID, answers []scoring.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assessments[id]; !ok {
		return store.ErrNotFound
	}
	if m.answers[id] == nil {
		m.answers[id] = make(map[string]scoring.Answer)
	}
	for _, a := range answers {
		m.answers[id][a.CriterionID] = a
	}
	return nil
}
func (m *mockStore) GetAnswers(_ context.Context, id uuid.UUID) ([]scoring.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []scoring.Answer{}
	for _, a := range m.answers[id] {
		out = append(out, a)
	}
	return out, nil
}
func (m *mockStore) SaveScore(_ context.Context, snap *store.ScoreSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snap)
	return nil
}
func (m *mockStore) GetLatestScore(_ context.Context, _ uuid.UUID) (*store.ScoreSnapshot, error) {
	return nil, nil
}
func (m *mockStore) ListLenders(_ context.Context) ([]matching.Lender, error)  { return nil, nil }
func (m *mockStore) UpsertLender(_ context.Context, _ *matching.Lender) error { return nil }
func (m *mockStore) Migrate(_ context.Context) error                          { return nil }
func (m *mockStore) Close() error                                             { return nil }

type cachedDirectory struct {
	lenders.Directory
	invalidated int
}

func (c *cachedDirectory) Invalidate(_ context.Context) error {
	c.invalidated++
	return nil
}

var summit = matching.Lender{
	ID: "summit", Name: "Summit Bank", MinCreditScore: 650, MinLoanAmount: 50_000, MaxLoanAmount: 500_000,
	MinTimeInBusinessMonths: 24, IndustriesServed: []string{"All"}, StatesServed: []string{"All"},
	InterestRateRange: matching.RateRange{Min: 6, Max: 12}, ApprovalRate: 80,
}

func setupTestRouter() (http.Handler, *mockStore, *cachedDirectory) {
	ms := newMockStore()
	ms.criteria = []scoring.Criterion{
		{ID: "ein", Category: "Business Foundation", Name: "Obtain an EIN", Weight: 10, Required: true, AnswerType: scoring.AnswerBoolean},
		{ID: "bank", Category: "Banking & Finance", Name: "Business bank account", Weight: 10, Required: true, AnswerType: scoring.AnswerBoolean},
		{ID: "personal_credit_score", Category: "Personal Credit", Name: "Credit score", Weight: 8, AnswerType: scoring.AnswerNumber, Bands: "credit_score"},
		{ID: "time_in_business_months", Category: "Business Foundation", Name: "Time in business", Weight: 6, AnswerType: scoring.AnswerNumber, Bands: "time_in_business_months"},
	}
	dir := &cachedDirectory{Directory: lenders.NewStaticDirectory([]matching.Lender{summit})}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := fundability.New(ms, dir, nil, config.Default(), logger)
	return NewRouter(svc, "test-token", 0, logger), ms, dir
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set(ClientIDHeader, "test-client")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListCriteria(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doRequest(router, "GET", "/api/v1/criteria", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var criteria []scoring.Criterion
	json.NewDecoder(w.Body).Decode(&criteria)
	if len(criteria) != 4 {
		t.Errorf("expected 4 criteria, got %d", len(criteria))
	}
}

func TestEvaluateWithSuppliedCriteria(t *testing.T) {
	router, _, _ := setupTestRouter()

	body := `{
		"criteria": [
			{"id":"a","category":"Foundation","weight":10,"answerType":"boolean"},
			{"id":"b","category":"Foundation","weight":5,"answerType":"boolean"},
			{"id":"c","category":"Banking","weight":10,"answerType":"boolean"}
		],
		"answers": [
			{"criterionId":"a","value":true},
			{"criterionId":"b","value":true},
			{"criterionId":"c","value":true}
		]
	}`
	w := doRequest(router, "POST", "/api/v1/evaluate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var ev fundability.Evaluation
	json.NewDecoder(w.Body).Decode(&ev)
	if ev.Score.OverallScore != 100 {
		t.Errorf("expected overall 100, got %d", ev.Score.OverallScore)
	}
	if len(ev.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %d", len(ev.Recommendations))
	}
}

func TestEvaluateUsesCatalog(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/evaluate", `{"answers":[{"criterionId":"ein","value":true}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ev fundability.Evaluation
	json.NewDecoder(w.Body).Decode(&ev)
	if len(ev.Score.MissingRequired) != 1 || ev.Score.MissingRequired[0] != "bank" {
		t.Errorf("expected bank to be missing, got %v", ev.Score.MissingRequired)
	}
}

func TestEvaluateRejectsInvalidCriterion(t *testing.T) {
	router, _, _ := setupTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"zero weight", `{"criteria":[{"id":"a","category":"X","weight":0,"answerType":"boolean"}]}`},
		{"unknown answer type", `{"criteria":[{"id":"a","category":"X","weight":1,"answerType":"date"}]}`},
		{"missing criterion id", `{"answers":[{"value":true}]}`},
		{"malformed json", `{"answers":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "POST", "/api/v1/evaluate", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestMatchWithSuppliedProfile(t *testing.T) {
	router, _, _ := setupTestRouter()

	body := `{
		"profile": {"creditScore":720,"timeInBusinessMonths":36,"industry":"retail","state":"TX","annualRevenue":500000,"bankingRelationshipMonths":30},
		"loanAmount": 100000
	}`
	w := doRequest(router, "POST", "/api/v1/match", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res fundability.MatchResult
	json.NewDecoder(w.Body).Decode(&res)
	if res.Evaluated != 1 {
		t.Errorf("expected 1 lender evaluated, got %d", res.Evaluated)
	}
	if len(res.Matches) != 1 || res.Matches[0].Lender.ID != "summit" {
		t.Fatalf("expected summit to match, got %+v", res.Matches)
	}
	if len(res.Matches[0].MatchReasons) == 0 {
		t.Error("expected match reasons")
	}
}

func TestMatchRequiresLoanAmount(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/match", `{"profile":{"creditScore":720}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCreateAssessmentMissingName(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/assessments", `{"owner":"ops"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAssessmentLifecycle(t *testing.T) {
	router, ms, _ := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/assessments", `{"businessName":"Acme Bakery","owner":"ops"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created store.Assessment
	json.NewDecoder(w.Body).Decode(&created)
	base := "/api/v1/assessments/" + created.ID.String()

	answers := `{"answers":[
		{"criterionId":"ein","value":true},
		{"criterionId":"bank","value":true},
		{"criterionId":"personal_credit_score","value":720},
		{"criterionId":"time_in_business_months","value":36}
	]}`
	w = doRequest(router, "PUT", base+"/answers", answers)
	if w.Code != http.StatusOK {
		t.Fatalf("answers: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(ms.answers[created.ID]) != 4 {
		t.Errorf("expected 4 stored answers, got %d", len(ms.answers[created.ID]))
	}

	w = doRequest(router, "GET", base, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var detail fundability.AssessmentDetail
	json.NewDecoder(w.Body).Decode(&detail)
	if detail.Assessment == nil || detail.Assessment.BusinessName != "Acme Bakery" {
		t.Errorf("unexpected assessment %+v", detail.Assessment)
	}
	if len(detail.Answers) != 4 {
		t.Errorf("expected 4 answers, got %d", len(detail.Answers))
	}

	w = doRequest(router, "GET", base+"/report", "")
	if w.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var report fundability.Report
	json.NewDecoder(w.Body).Decode(&report)
	if len(report.Score.MissingRequired) != 0 {
		t.Errorf("expected no missing required criteria, got %v", report.Score.MissingRequired)
	}
	if len(ms.snapshots) != 1 {
		t.Errorf("expected 1 score snapshot, got %d", len(ms.snapshots))
	}

	w = doRequest(router, "POST", base+"/matches", `{"loanAmount":100000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("matches: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res fundability.MatchResult
	json.NewDecoder(w.Body).Decode(&res)
	if res.Profile.CreditScore != 720 {
		t.Errorf("expected derived credit score 720, got %d", res.Profile.CreditScore)
	}
	if res.Matches == nil {
		t.Error("expected a non-nil match list")
	}
}

func TestAssessmentNotFound(t *testing.T) {
	router, _, _ := setupTestRouter()
	base := "/api/v1/assessments/" + uuid.New().String()

	tests := []struct {
		method, path, body string
	}{
		{"GET", base, ""},
		{"PUT", base + "/answers", `{"answers":[{"criterionId":"ein","value":true}]}`},
		{"GET", base + "/report", ""},
		{"POST", base + "/matches", `{"loanAmount":50000}`},
	}
	for _, tt := range tests {
		w := doRequest(router, tt.method, tt.path, tt.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tt.method, tt.path, w.Code)
		}
	}
}

func TestInvalidAssessmentID(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doRequest(router, "GET", "/api/v1/assessments/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSubmitAnswersRequiresAnswers(t *testing.T) {
	router, ms, _ := setupTestRouter()
	a := &store.Assessment{BusinessName: "Acme"}
	ms.CreateAssessment(context.Background(), a)

	w := doRequest(router, "PUT", "/api/v1/assessments/"+a.ID.String()+"/answers", `{"answers":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMatchAssessmentRequiresLoanAmount(t *testing.T) {
	router, ms, _ := setupTestRouter()
	a := &store.Assessment{BusinessName: "Acme"}
	ms.CreateAssessment(context.Background(), a)

	w := doRequest(router, "POST", "/api/v1/assessments/"+a.ID.String()+"/matches", `{"loanType":"term_loan"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestInvalidateRequiresAdminToken(t *testing.T) {
	router, _, dir := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/admin/lenders/invalidate", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if dir.invalidated != 0 {
		t.Error("cache should not be invalidated without a token")
	}
}

func TestInvalidateWithToken(t *testing.T) {
	router, _, dir := setupTestRouter()

	req := httptest.NewRequest("POST", "/api/v1/admin/lenders/invalidate", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if dir.invalidated != 1 {
		t.Errorf("expected 1 invalidation, got %d", dir.invalidated)
	}
}

func TestInvalidateWithoutCache(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := fundability.New(newMockStore(), lenders.NewStaticDirectory(nil), nil, config.Default(), logger)
	router := NewRouter(svc, "", 0, logger)

	w := doRequest(router, "POST", "/api/v1/admin/lenders/invalidate", "")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := NewMetricsRouter()
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewMetricsRouter()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
