package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/jmoiron/sqlx"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/core"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/errors"
	"github.com/seanwkelley/belief-sensitivity-explorer/ports"
)

// ResultRepositoryImpl implements ResultRepository for PostgreSQL. The whole
// per-question document is stored as one JSONB column; id, question and
// created_at are lifted into real columns for lookup and ordering.
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

// EnsureSchema creates the result table when it does not exist
func (r *ResultRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS question_results (
			id         TEXT PRIMARY KEY,
			question   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			document   JSONB NOT NULL
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to ensure question_results schema")
	}
	return nil
}

// Save upserts the result document keyed by question id
func (r *ResultRepositoryImpl) Save(ctx context.Context, result *probe.QuestionResult) error {
	document, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "failed to encode result document")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO question_results (id, question, created_at, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET question = EXCLUDED.question,
		    created_at = EXCLUDED.created_at,
		    document = EXCLUDED.document
	`, result.QuestionID.String(), result.Question, result.CreatedAt.Time(), document)

	if err != nil {
		return errors.Wrap(err, "failed to save result document")
	}
	return nil
}

// Get retrieves one result document by question id
func (r *ResultRepositoryImpl) Get(ctx context.Context, id core.QuestionID) (*probe.QuestionResult, error) {
	var document []byte
	err := r.db.GetContext(ctx, &document, `
		SELECT document FROM question_results WHERE id = $1
	`, id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrQuestionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load result document")
	}

	var result probe.QuestionResult
	if err := json.Unmarshal(document, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode result document")
	}
	return &result, nil
}

// List returns all result documents ordered by creation time
func (r *ResultRepositoryImpl) List(ctx context.Context) ([]*probe.QuestionResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT document FROM question_results ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list result documents")
	}
	defer rows.Close()

	var results []*probe.QuestionResult
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, errors.Wrap(err, "failed to scan result document")
		}
		var result probe.QuestionResult
		if err := json.Unmarshal(document, &result); err != nil {
			return nil, errors.Wrap(err, "failed to decode result document")
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}
