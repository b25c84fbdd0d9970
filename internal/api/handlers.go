package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Fundable/internal/fundability"
	"github.com/MikeSquared-Agency/Fundable/internal/matching"
	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
	"github.com/MikeSquared-Agency/Fundable/internal/store"
)

const maxBodyBytes = 1 << 20

// Service is the subset of fundability.Service the HTTP layer drives.
type Service interface {
	Criteria(ctx context.Context) ([]scoring.Criterion, error)
	Evaluate(ctx context.Context, criteria []scoring.Criterion, answers []scoring.Answer) (*fundability.Evaluation, error)
	Match(ctx context.Context, profile matching.BusinessProfile, lenders []matching.Lender, req matching.Request) (*fundability.MatchResult, error)
	CreateAssessment(ctx context.Context, businessName, owner string) (*store.Assessment, error)
	GetAssessment(ctx context.Context, id uuid.UUID) (*fundability.AssessmentDetail, error)
	SubmitAnswers(ctx context.Context, id uuid.UUID, answers []scoring.Answer) error
	Report(ctx context.Context, id uuid.UUID) (*fundability.Report, error)
	MatchAssessment(ctx context.Context, id uuid.UUID, req matching.Request) (*fundability.MatchResult, error)
	InvalidateLenders(ctx context.Context) error
}

type criterionInput struct {
	ID           string             `json:"id" validate:"required"`
	Category     string             `json:"category" validate:"required"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Weight       float64            `json:"weight" validate:"gt=0"`
	Required     bool               `json:"required"`
	AnswerType   scoring.AnswerType `json:"answerType" validate:"oneof=boolean select number text"`
	Options      []string           `json:"options"`
	OptionScores map[string]float64 `json:"optionScores"`
	Bands        string             `json:"bands"`
}

type answerInput struct {
	CriterionID string     `json:"criterionId" validate:"required"`
	Value       any        `json:"value"`
	AnsweredAt  *time.Time `json:"answeredAt"`
}

type EvaluateRequest struct {
	Criteria []criterionInput `json:"criteria" validate:"omitempty,dive"`
	Answers  []answerInput    `json:"answers" validate:"dive"`
}

type MatchRequest struct {
	Profile    matching.BusinessProfile `json:"profile"`
	Lenders    []matching.Lender        `json:"lenders"`
	LoanAmount float64                  `json:"loanAmount" validate:"gte=0"`
	LoanType   string                   `json:"loanType"`
	MaxResults int                      `json:"maxResults" validate:"gte=0,lte=100"`
}

type CreateAssessmentRequest struct {
	BusinessName string `json:"businessName" validate:"required,max=200"`
	Owner        string `json:"owner" validate:"max=200"`
}

type SubmitAnswersRequest struct {
	Answers []answerInput `json:"answers" validate:"required,min=1,dive"`
}

type AssessmentMatchRequest struct {
	LoanAmount float64 `json:"loanAmount" validate:"gt=0"`
	LoanType   string  `json:"loanType"`
	MaxResults int     `json:"maxResults" validate:"gte=0,lte=100"`
}

type Handler struct {
	svc      Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), logger: logger}
}

func (h *Handler) Criteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.svc.Criteria(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if criteria == nil {
		criteria = []scoring.Criterion{}
	}
	writeJSON(w, http.StatusOK, criteria)
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !h.decode(w, r, &req) {
		return
	}
	criteria := make([]scoring.Criterion, 0, len(req.Criteria))
	for _, c := range req.Criteria {
		criteria = append(criteria, scoring.Criterion(c))
	}

	ev, err := h.svc.Evaluate(r.Context(), criteria, toAnswers(req.Answers))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.LoanAmount == 0 && req.Profile.RequestedAmount <= 0 {
		writeError(w, http.StatusBadRequest, "loanAmount is required")
		return
	}

	res, err := h.svc.Match(r.Context(), req.Profile, req.Lenders, matching.Request{
		LoanAmount: req.LoanAmount,
		LoanType:   req.LoanType,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssessmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	a, err := h.svc.CreateAssessment(r.Context(), req.BusinessName, req.Owner)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.svc.GetAssessment(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SubmitAnswersRequest
	if !h.decode(w, r, &req) {
		return
	}

	answers := toAnswers(req.Answers)
	err := h.svc.SubmitAnswers(r.Context(), id, answers)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessmentId": id, "saved": len(answers)})
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Report(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) MatchAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AssessmentMatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.MatchAssessment(r.Context(), id, matching.Request{
		LoanAmount: req.LoanAmount,
		LoanType:   req.LoanType,
		MaxResults: req.MaxResults,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) InvalidateLenders(w http.ResponseWriter, r *http.Request) {
	err := h.svc.InvalidateLenders(r.Context())
	if errors.Is(err, fundability.ErrNoCache) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return uuid.Nil, false
	}
	return id, true
}

func toAnswers(in []answerInput) []scoring.Answer {
	out := make([]scoring.Answer, 0, len(in))
	for _, a := range in {
		ans := scoring.Answer{CriterionID: a.CriterionID, Value: a.Value}
		if a.AnsweredAt != nil {
			ans.AnsweredAt = a.AnsweredAt.UTC()
		}
		out = append(out, ans)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
