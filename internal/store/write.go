package store

import (
	"context"
)

// MarkComplete records that userID completed problemID, awarding xp.
//
// The insert uses ON CONFLICT(user_id, problem_id) DO NOTHING, so checking
// and inserting is one atomic statement. If the pair already exists nothing
// changes and MarkComplete returns false with a nil error; XP is never
// awarded twice.
//
// After a successful insert the image is saved before returning. If only the
// save fails, MarkComplete returns true together with a PERSISTENCE_WRITE
// error: the row exists in the engine and Flush can retry the save.
//
// How much XP a completion earns is the caller's policy; see
// domain.RewardForCompletion.
func (r *Repository) MarkComplete(ctx context.Context, userID, problemID string, xp int) (bool, error) {
	const op = "mark complete"
	if err := requireID(op, "user id", userID); err != nil {
		return false, err
	}
	if err := requireID(op, "problem id", problemID); err != nil {
		return false, err
	}
	if xp < 0 {
		return false, newError(ErrCodeInvalidArgument, op, "xp must not be negative", nil)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	e, release, err := r.manager.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	res, err := e.db.ExecContext(ctx, `
		INSERT INTO progress
		(id, user_id, problem_id, completed_date, xp_awarded)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, problem_id) DO NOTHING
	`,
		r.ids.Generate(),
		userID,
		problemID,
		r.now().UTC().Format(timeLayout),
		xp,
	)
	if err != nil {
		r.log.Error("progress insert failed", "error", err, "user_id", userID, "problem_id", problemID)
		return false, newError(ErrCodeQuery, op, "insert", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, newError(ErrCodeQuery, op, "rows affected", err)
	}
	if inserted == 0 {
		r.log.Debug("problem already completed", "user_id", userID, "problem_id", problemID)
		return false, nil
	}

	r.log.Info("problem completed", "user_id", userID, "problem_id", problemID, "xp", xp)
	if err := r.manager.persist(ctx, e); err != nil {
		return true, err
	}
	return true, nil
}
