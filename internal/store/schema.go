package store

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS fundability_criteria (
		id            TEXT PRIMARY KEY,
		category      TEXT NOT NULL,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		weight        DOUBLE PRECISION NOT NULL CHECK (weight > 0),
		required      BOOLEAN NOT NULL DEFAULT FALSE,
		answer_type   TEXT NOT NULL,
		options       JSONB,
		option_scores JSONB,
		bands         TEXT NOT NULL DEFAULT '',
		position      INTEGER NOT NULL DEFAULT 0,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS fundability_assessments (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		business_name TEXT NOT NULL,
		owner         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS fundability_answers (
		assessment_id UUID NOT NULL REFERENCES fundability_assessments(id) ON DELETE CASCADE,
		criterion_id  TEXT NOT NULL,
		value         JSONB NOT NULL,
		answered_at   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (assessment_id, criterion_id)
	)`,
	`CREATE TABLE IF NOT EXISTS fundability_score_snapshots (
		id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		assessment_id   UUID NOT NULL REFERENCES fundability_assessments(id) ON DELETE CASCADE,
		overall_score   INTEGER NOT NULL,
		score           JSONB NOT NULL,
		recommendations JSONB NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_score_snapshots_assessment
		ON fundability_score_snapshots (assessment_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS lenders (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}
