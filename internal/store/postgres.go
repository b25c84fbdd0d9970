package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Fundable/internal/matching"
	"github.com/MikeSquared-Agency/Fundable/internal/metrics"
	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}

// --- Criteria ---

const criterionColumns = `id, category, name, description, weight, required,
	answer_type, options, option_scores, bands`

func (s *PostgresStore) ListCriteria(ctx context.Context) ([]scoring.Criterion, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+criterionColumns+`
		FROM fundability_criteria ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	criteria := []scoring.Criterion{}
	for rows.Next() {
		var c scoring.Criterion
		var optionsJSON, optionScoresJSON []byte
		if err := rows.Scan(&c.ID, &c.Category, &c.Name, &c.Description, &c.Weight, &c.Required,
			&c.AnswerType, &optionsJSON, &optionScoresJSON, &c.Bands); err != nil {
			return nil, err
		}
		if optionsJSON != nil {
			_ = json.Unmarshal(optionsJSON, &c.Options)
		}
		if optionScoresJSON != nil {
			_ = json.Unmarshal(optionScoresJSON, &c.OptionScores)
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}

// UpsertCriteria writes the catalog in the given order.
func (s *PostgresStore) UpsertCriteria(ctx context.Context, criteria []scoring.Criterion) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, c := range criteria {
		optionsJSON, _ := json.Marshal(c.Options)
		optionScoresJSON, _ := json.Marshal(c.OptionScores)
		_, err := tx.Exec(ctx, `
			INSERT INTO fundability_criteria (`+criterionColumns+`, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				category = EXCLUDED.category, name = EXCLUDED.name,
				description = EXCLUDED.description, weight = EXCLUDED.weight,
				required = EXCLUDED.required, answer_type = EXCLUDED.answer_type,
				options = EXCLUDED.options, option_scores = EXCLUDED.option_scores,
				bands = EXCLUDED.bands, position = EXCLUDED.position, updated_at = now()`,
			c.ID, c.Category, c.Name, c.Description, c.Weight, c.Required,
			c.AnswerType, optionsJSON, optionScoresJSON, c.Bands, i,
		)
		if err != nil {
			return fmt.Errorf("upsert criterion %s: %w", c.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// --- Assessments ---

func (s *PostgresStore) CreateAssessment(ctx context.Context, a *Assessment) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO fundability_assessments (business_name, owner)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		a.BusinessName, a.Owner,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	a := &Assessment{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, business_name, owner, created_at, updated_at
		FROM fundability_assessments WHERE id = $1`, id,
	).Scan(&a.ID, &a.BusinessName, &a.Owner, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// --- Answers ---

// SaveAnswers locks the assessment row so concurrent submissions for the same
// assessment apply one after another. An older answer never replaces a newer
// one for the same criterion.
func (s *PostgresStore) SaveAnswers(ctx context.Context, assessmentID uuid.UUID, answers []scoring.Answer) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM fundability_assessments WHERE id = $1 FOR UPDATE`, assessmentID).Scan(&locked)
	if err == pgx.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock assessment: %w", err)
	}

	now := time.Now().UTC()
	for _, a := range answers {
		value, err := encodeValue(a.Value)
		if err != nil {
			return fmt.Errorf("encode answer %s: %w", a.CriterionID, err)
		}
		answeredAt := a.AnsweredAt
		if answeredAt.IsZero() {
			answeredAt = now
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO fundability_answers (assessment_id, criterion_id, value, answered_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (assessment_id, criterion_id) DO UPDATE SET
				value = EXCLUDED.value, answered_at = EXCLUDED.answered_at
			WHERE fundability_answers.answered_at <= EXCLUDED.answered_at`,
			assessmentID, a.CriterionID, value, answeredAt,
		)
		if err != nil {
			return fmt.Errorf("upsert answer %s: %w", a.CriterionID, err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE fundability_assessments SET updated_at = now() WHERE id = $1`, assessmentID); err != nil {
		return fmt.Errorf("touch assessment: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetAnswers(ctx context.Context, assessmentID uuid.UUID) ([]scoring.Answer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT criterion_id, value, answered_at
		FROM fundability_answers WHERE assessment_id = $1
		ORDER BY answered_at, criterion_id`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []scoring.Answer{}
	for rows.Next() {
		var a scoring.Answer
		var raw []byte
		if err := rows.Scan(&a.CriterionID, &raw, &a.AnsweredAt); err != nil {
			return nil, err
		}
		a.Value = decodeValue(raw)
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// --- Score history ---

func (s *PostgresStore) SaveScore(ctx context.Context, snap *ScoreSnapshot) error {
	scoreJSON, err := json.Marshal(snap.Score)
	if err != nil {
		return fmt.Errorf("encode score: %w", err)
	}
	recsJSON, err := json.Marshal(snap.Recommendations)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO fundability_score_snapshots (assessment_id, overall_score, score, recommendations)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		snap.AssessmentID, snap.OverallScore, scoreJSON, recsJSON,
	).Scan(&snap.ID, &snap.CreatedAt)
}

func (s *PostgresStore) GetLatestScore(ctx context.Context, assessmentID uuid.UUID) (*ScoreSnapshot, error) {
	snap := &ScoreSnapshot{}
	var scoreJSON, recsJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, assessment_id, overall_score, score, recommendations, created_at
		FROM fundability_score_snapshots WHERE assessment_id = $1
		ORDER BY created_at DESC LIMIT 1`, assessmentID,
	).Scan(&snap.ID, &snap.AssessmentID, &snap.OverallScore, &scoreJSON, &recsJSON, &snap.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(scoreJSON, &snap.Score); err != nil {
		return nil, fmt.Errorf("decode score: %w", err)
	}
	if err := json.Unmarshal(recsJSON, &snap.Recommendations); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return snap, nil
}

// --- Lenders ---

// ListLenders lets the store act as the lender directory.
func (s *PostgresStore) ListLenders(ctx context.Context) ([]matching.Lender, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM lenders ORDER BY name, id`)
	if err != nil {
		metrics.DirectoryRequests.WithLabelValues("postgres", "error").Inc()
		return nil, err
	}
	defer rows.Close()

	lenders := []matching.Lender{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var l matching.Lender
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decode lender: %w", err)
		}
		lenders = append(lenders, l)
	}
	if err := rows.Err(); err != nil {
		metrics.DirectoryRequests.WithLabelValues("postgres", "error").Inc()
		return nil, err
	}
	metrics.DirectoryRequests.WithLabelValues("postgres", "ok").Inc()
	return lenders, nil
}

func (s *PostgresStore) UpsertLender(ctx context.Context, l *matching.Lender) error {
	if l.ID == "" {
		return fmt.Errorf("lender id required")
	}
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode lender: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO lenders (id, name, data) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, data = EXCLUDED.data, updated_at = now()`,
		l.ID, l.Name, data,
	)
	return err
}

// encodeValue stores answer values as JSON so booleans, numbers and strings
// keep their type across a round trip.
func encodeValue(v any) ([]byte, error) {
	return json.Marshal(v)
}

func decodeValue(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
