package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Fundable/internal/matching"
	"github.com/MikeSquared-Agency/Fundable/internal/recommend"
	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
)

// ErrNotFound is returned by writes that target a missing assessment.
var ErrNotFound = errors.New("not found")

type Assessment struct {
	ID           uuid.UUID `json:"id"`
	BusinessName string    `json:"businessName"`
	Owner        string    `json:"owner,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ScoreSnapshot records one scoring pass. Snapshots are history only; reads
// always recompute from the stored answers.
type ScoreSnapshot struct {
	ID              uuid.UUID                  `json:"id"`
	AssessmentID    uuid.UUID                  `json:"assessmentId"`
	OverallScore    int                        `json:"overallScore"`
	Score           scoring.AssessmentScore    `json:"score"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	CreatedAt       time.Time                  `json:"createdAt"`
}

type Store interface {
	// Criteria catalog
	ListCriteria(ctx context.Context) ([]scoring.Criterion, error)
	UpsertCriteria(ctx context.Context, criteria []scoring.Criterion) error

	// Assessments
	CreateAssessment(ctx context.Context, a *Assessment) error
	GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error)

	// Answers (last write wins per criterion, serialized per assessment)
	SaveAnswers(ctx context.Context, assessmentID uuid.UUID, answers []scoring.Answer) error
	GetAnswers(ctx context.Context, assessmentID uuid.UUID) ([]scoring.Answer, error)

	// Score history
	SaveScore(ctx context.Context, snap *ScoreSnapshot) error
	GetLatestScore(ctx context.Context, assessmentID uuid.UUID) (*ScoreSnapshot, error)

	// Lender directory
	ListLenders(ctx context.Context) ([]matching.Lender, error)
	UpsertLender(ctx context.Context, l *matching.Lender) error

	Migrate(ctx context.Context) error
	Close() error
}
