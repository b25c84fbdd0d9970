package fundability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Fundable/internal/config"
	"github.com/MikeSquared-Agency/Fundable/internal/hermes"
	"github.com/MikeSquared-Agency/Fundable/internal/lenders"
	"github.com/MikeSquared-Agency/Fundable/internal/matching"
	"github.com/MikeSquared-Agency/Fundable/internal/metrics"
	"github.com/MikeSquared-Agency/Fundable/internal/recommend"
	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
	"github.com/MikeSquared-Agency/Fundable/internal/store"
)

// ErrNoCache is returned by InvalidateLenders when the directory keeps no cache.
var ErrNoCache = errors.New("lender directory is not cached")

// Evaluation is a score plus the recommendations derived from it.
type Evaluation struct {
	Score           scoring.AssessmentScore    `json:"score"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// Report is an Evaluation of a stored assessment.
type Report struct {
	Assessment *store.Assessment `json:"assessment"`
	Evaluation
	GeneratedAt time.Time `json:"generatedAt"`
}

// AssessmentDetail is an assessment with its current answers.
type AssessmentDetail struct {
	Assessment *store.Assessment `json:"assessment"`
	Answers    []scoring.Answer  `json:"answers"`
}

// MatchResult is a ranked lender list and the profile it was computed for.
type MatchResult struct {
	Profile   matching.BusinessProfile `json:"profile"`
	Matches   []matching.LenderMatch   `json:"matches"`
	Evaluated int                      `json:"lendersEvaluated"`
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service loads reference data and answers, runs the pure engines and records
// the outcome. Derived results are recomputed on every call.
type Service struct {
	store     store.Store
	directory lenders.Directory
	hermes    hermes.Client
	engine    *scoring.Engine
	generator *recommend.Generator
	matcher   *matching.Matcher
	profile   matching.ProfileFields
	logger    *slog.Logger
}

func New(s store.Store, dir lenders.Directory, h hermes.Client, cfg *config.Config, logger *slog.Logger) *Service {
	engine := scoring.NewEngine(cfg.Scoring)
	return &Service{
		store:     s,
		directory: dir,
		hermes:    h,
		engine:    engine,
		generator: recommend.NewGenerator(cfg.Recommend, engine),
		matcher:   matching.NewMatcher(cfg.Matching),
		profile:   cfg.Matching.ProfileFields,
		logger:    logger,
	}
}

func (s *Service) Criteria(ctx context.Context) ([]scoring.Criterion, error) {
	criteria, err := s.store.ListCriteria(ctx)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	return criteria, nil
}

// Evaluate scores answers without persisting anything. When criteria is
// empty the stored catalog is used.
func (s *Service) Evaluate(ctx context.Context, criteria []scoring.Criterion, answers []scoring.Answer) (*Evaluation, error) {
	if len(criteria) == 0 {
		var err error
		if criteria, err = s.Criteria(ctx); err != nil {
			return nil, err
		}
	}
	ev := s.evaluate(criteria, answers)
	return &ev, nil
}

func (s *Service) evaluate(criteria []scoring.Criterion, answers []scoring.Answer) Evaluation {
	score := s.engine.Score(criteria, answers)
	recs := s.generator.Recommend(criteria, answers, score)

	metrics.AssessmentsScored.Inc()
	metrics.OverallScore.Observe(float64(score.OverallScore))
	for _, r := range recs {
		metrics.RecommendationsGenerated.WithLabelValues(string(r.Priority)).Inc()
	}
	return Evaluation{Score: score, Recommendations: recs}
}

// Match ranks lenders for a supplied profile. When lenderList is empty the
// directory is consulted.
func (s *Service) Match(ctx context.Context, profile matching.BusinessProfile, lenderList []matching.Lender, req matching.Request) (*MatchResult, error) {
	if len(lenderList) == 0 {
		var err error
		if lenderList, err = s.directory.ListLenders(ctx); err != nil {
			return nil, fmt.Errorf("list lenders: %w", err)
		}
	}
	res := s.match(profile, lenderList, req)
	return &res, nil
}

func (s *Service) match(profile matching.BusinessProfile, lenderList []matching.Lender, req matching.Request) MatchResult {
	matches := s.matcher.Match(profile, lenderList, req)
	metrics.LendersEvaluated.Add(float64(len(lenderList)))
	metrics.LenderMatches.Observe(float64(len(matches)))
	return MatchResult{Profile: profile, Matches: matches, Evaluated: len(lenderList)}
}

func (s *Service) CreateAssessment(ctx context.Context, businessName, owner string) (*store.Assessment, error) {
	a := &store.Assessment{BusinessName: businessName, Owner: owner}
	if err := s.store.CreateAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}
	s.logger.Info("assessment created", "assessment_id", a.ID, "business", businessName)
	return a, nil
}

// GetAssessment returns nil, nil when the assessment does not exist.
func (s *Service) GetAssessment(ctx context.Context, id uuid.UUID) (*AssessmentDetail, error) {
	var a *store.Assessment
	var answers []scoring.Answer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = s.store.GetAssessment(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		answers, err = s.store.GetAnswers(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load assessment %s: %w", id, err)
	}
	if a == nil {
		return nil, nil
	}
	return &AssessmentDetail{Assessment: a, Answers: answers}, nil
}

// SubmitAnswers records answers; store.ErrNotFound is returned for an
// unknown assessment.
func (s *Service) SubmitAnswers(ctx context.Context, id uuid.UUID, answers []scoring.Answer) error {
	now := time.Now().UTC()
	ids := make([]string, 0, len(answers))
	for i := range answers {
		if answers[i].AnsweredAt.IsZero() {
			answers[i].AnsweredAt = now
		}
		ids = append(ids, answers[i].CriterionID)
	}
	if err := s.store.SaveAnswers(ctx, id, answers); err != nil {
		return fmt.Errorf("save answers: %w", err)
	}

	s.logger.Info("answers saved", "assessment_id", id, "count", len(answers))
	s.publish(hermes.SubjectAnswersUpdated(id.String()), hermes.AnswersUpdatedEvent{
		AssessmentID: id.String(),
		CriterionIDs: ids,
		Timestamp:    now,
	})
	return nil
}

// Report recomputes the score and recommendations from the stored answers and
// keeps a snapshot for history.
func (s *Service) Report(ctx context.Context, id uuid.UUID) (*Report, error) {
	var a *store.Assessment
	var criteria []scoring.Criterion
	var answers []scoring.Answer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = s.store.GetAssessment(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		criteria, err = s.store.ListCriteria(gctx)
		return err
	})
	g.Go(func() (err error) {
		answers, err = s.store.GetAnswers(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load report inputs: %w", err)
	}
	if a == nil {
		return nil, store.ErrNotFound
	}

	ev := s.evaluate(criteria, answers)
	report := &Report{Assessment: a, Evaluation: ev, GeneratedAt: time.Now().UTC()}

	snap := &store.ScoreSnapshot{
		AssessmentID:    id,
		OverallScore:    ev.Score.OverallScore,
		Score:           ev.Score,
		Recommendations: ev.Recommendations,
	}
	if err := s.store.SaveScore(ctx, snap); err != nil {
		s.logger.Warn("failed to save score snapshot", "assessment_id", id, "error", err)
	}

	s.logger.Info("assessment scored", "assessment_id", id,
		"overall", ev.Score.OverallScore, "tier", ev.Score.ReadinessTier,
		"recommendations", len(ev.Recommendations))
	s.publish(hermes.SubjectScored(id.String()), hermes.ScoredEvent{
		AssessmentID:         id.String(),
		OverallScore:         ev.Score.OverallScore,
		ReadinessTier:        ev.Score.ReadinessTier,
		CompletionPercentage: ev.Score.CompletionPercentage,
		Recommendations:      len(ev.Recommendations),
		Timestamp:            report.GeneratedAt,
	})
	return report, nil
}

// MatchAssessment derives a profile from the stored answers and ranks the
// directory's lenders against it.
func (s *Service) MatchAssessment(ctx context.Context, id uuid.UUID, req matching.Request) (*MatchResult, error) {
	var a *store.Assessment
	var answers []scoring.Answer
	var lenderList []matching.Lender

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = s.store.GetAssessment(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		answers, err = s.store.GetAnswers(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		lenderList, err = s.directory.ListLenders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load match inputs: %w", err)
	}
	if a == nil {
		return nil, store.ErrNotFound
	}

	profile := matching.DeriveProfile(answers, s.profile, req.LoanAmount)
	res := s.match(profile, lenderList, req)

	ev := hermes.MatchedEvent{
		AssessmentID: id.String(),
		LoanAmount:   req.LoanAmount,
		LoanType:     req.LoanType,
		Evaluated:    res.Evaluated,
		Matched:      len(res.Matches),
		Timestamp:    time.Now().UTC(),
	}
	if len(res.Matches) > 0 {
		ev.TopLenderID = res.Matches[0].Lender.ID
	}
	s.logger.Info("lenders matched", "assessment_id", id, "evaluated", res.Evaluated, "matched", len(res.Matches))
	s.publish(hermes.SubjectMatched(id.String()), ev)
	return &res, nil
}

// InvalidateLenders drops cached lender data so the next match reads fresh terms.
func (s *Service) InvalidateLenders(ctx context.Context) error {
	inv, ok := s.directory.(invalidator)
	if !ok {
		return ErrNoCache
	}
	if err := inv.Invalidate(ctx); err != nil {
		return err
	}
	s.logger.Info("lender cache invalidated")
	return nil
}

// SetupSubscriptions drops the lender cache whenever the directory announces
// updated terms.
func (s *Service) SetupSubscriptions() {
	if s.hermes == nil {
		return
	}
	err := s.hermes.Subscribe(hermes.SubjectLendersUpdated, func(_ string, _ []byte) {
		if err := s.InvalidateLenders(context.Background()); err != nil && !errors.Is(err, ErrNoCache) {
			s.logger.Warn("lender cache invalidation failed", "error", err)
		}
	})
	if err != nil {
		s.logger.Warn("failed to subscribe", "subject", hermes.SubjectLendersUpdated, "error", err)
	}
}

func (s *Service) publish(subject string, data interface{}) {
	if s.hermes == nil {
		return
	}
	if err := s.hermes.Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
