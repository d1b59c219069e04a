package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamnamu1/python-code-explainer/internal/apperror"
	"github.com/gamnamu1/python-code-explainer/internal/model"
	"github.com/gamnamu1/python-code-explainer/internal/repository"
)

// compile-time check that *DB implements repository.AnalysisRepository
var _ repository.AnalysisRepository = (*DB)(nil)

// SaveAnalysis inserts a new analysis and returns the persisted row.
//
// The INSERT is followed by a re-select on the generated rowid so the caller
// gets the record exactly as stored — id populated, timestamp as the driver
// round-trips it. Analyses are write-once; there is no update path.
//
// Unlike the user upsert, an unavailable store is a hard failure here:
// losing an analysis the user just paid two completion calls for is not
// acceptable, so the write path surfaces apperror.ErrUnavailable.
func (db *DB) SaveAnalysis(ctx context.Context, analysis *model.CodeAnalysis) (*model.CodeAnalysis, error) {
	if db.conn == nil {
		db.logger.Warn("cannot save analysis: database not available",
			slog.Int64("userId", analysis.UserID),
		)
		return nil, apperror.Unavailable("save analysis")
	}

	createdAt := analysis.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO code_analyses (user_id, code, file_name, elementary_explanation, college_explanation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		analysis.UserID,
		analysis.Code,
		analysis.FileName,
		analysis.ElementaryExplanation,
		analysis.CollegeExplanation,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting analysis (userId=%d): %w", analysis.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading analysis insert id: %w", err)
	}

	return db.GetAnalysisByID(ctx, id)
}

// ListByUser returns one user's analyses ordered by creation time ascending —
// oldest submission first, matching the order they were made.
//
// Degraded store → empty slice, never an error. History is a best-effort
// read; the page renders "no history yet" rather than failing.
func (db *DB) ListByUser(ctx context.Context, userID int64) ([]model.CodeAnalysis, error) {
	if db.conn == nil {
		db.logger.Warn("cannot list analyses: database not available",
			slog.Int64("userId", userID),
		)
		return []model.CodeAnalysis{}, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, code, file_name, elementary_explanation, college_explanation, created_at
		 FROM code_analyses
		 WHERE user_id = ?
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing analyses for user %d: %w", userID, err)
	}
	defer rows.Close()

	analyses := []model.CodeAnalysis{}
	for rows.Next() {
		var a model.CodeAnalysis
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Code, &a.FileName,
			&a.ElementaryExplanation, &a.CollegeExplanation, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning analysis row: %w", err)
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating analyses: %w", err)
	}

	return analyses, nil
}

// GetAnalysisByID retrieves a single analysis.
// Returns apperror.ErrNotFound when no row matches, or when the store is
// degraded (an unavailable store holds no rows, so "not found" is honest).
func (db *DB) GetAnalysisByID(ctx context.Context, id int64) (*model.CodeAnalysis, error) {
	if db.conn == nil {
		db.logger.Warn("cannot get analysis: database not available",
			slog.Int64("id", id),
		)
		return nil, apperror.NotFound("analysis", id)
	}

	var a model.CodeAnalysis
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, code, file_name, elementary_explanation, college_explanation, created_at
		 FROM code_analyses
		 WHERE id = ?`,
		id,
	).Scan(
		&a.ID, &a.UserID, &a.Code, &a.FileName,
		&a.ElementaryExplanation, &a.CollegeExplanation, &a.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("analysis", id)
		}
		return nil, fmt.Errorf("sqlite: getting analysis %d: %w", id, err)
	}

	return &a, nil
}
