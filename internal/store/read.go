package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/cptrack/internal/domain"
)

// GetProgress returns every progress record for userID.
//
// Rows come back ordered by completed_date then id so output is stable;
// callers should not rely on any particular order.
// Returns an empty slice (not nil) when the user has no progress.
func (r *Repository) GetProgress(ctx context.Context, userID string) ([]domain.ProgressRecord, error) {
	const op = "get progress"
	if err := requireID(op, "user id", userID); err != nil {
		return nil, err
	}

	e, release, err := r.manager.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := e.db.QueryContext(ctx, `
		SELECT id, user_id, problem_id, completed_date, xp_awarded
		FROM progress
		WHERE user_id = ?
		ORDER BY completed_date ASC, id ASC
	`, userID)
	if err != nil {
		r.log.Error("progress query failed", "error", err, "user_id", userID)
		return nil, newError(ErrCodeQuery, op, "query", err)
	}
	defer rows.Close()

	records := []domain.ProgressRecord{}
	for rows.Next() {
		var (
			rec       domain.ProgressRecord
			completed string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ProblemID, &completed, &rec.XPAwarded); err != nil {
			return nil, newError(ErrCodeQuery, op, "scan", err)
		}
		rec.CompletedDate, err = parseTime(completed)
		if err != nil {
			return nil, newError(ErrCodeQuery, op, fmt.Sprintf("row %s", rec.ID), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(ErrCodeQuery, op, "iterate", err)
	}

	return records, nil
}

// CountProgress returns how many problems userID has completed.
func (r *Repository) CountProgress(ctx context.Context, userID string) (int, error) {
	const op = "count progress"
	if err := requireID(op, "user id", userID); err != nil {
		return 0, err
	}

	e, release, err := r.manager.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	var n int
	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM progress WHERE user_id = ?`, userID).Scan(&n); err != nil {
		r.log.Error("progress count failed", "error", err, "user_id", userID)
		return 0, newError(ErrCodeQuery, op, "query", err)
	}
	return n, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse completed_date %q: %w", s, err)
	}
	return t.UTC(), nil
}
