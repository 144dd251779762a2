package calls

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"callcenter-platform/pkg/utils"
)

// PostgresRepo assumes the following tables exist:
//
//	calls (
//	  id               UUID PRIMARY KEY,
//	  admin_id         UUID NOT NULL REFERENCES users(id),
//	  customer_id      TEXT NOT NULL DEFAULT '',
//	  customer_name    TEXT NOT NULL,
//	  phone_number     TEXT NOT NULL,
//	  call_date        TIMESTAMPTZ NOT NULL,
//	  duration_minutes INT NOT NULL DEFAULT 0,
//	  category         TEXT NOT NULL,
//	  priority         TEXT NOT NULL,
//	  status           TEXT NOT NULL,
//	  assigned_user_id TEXT NOT NULL DEFAULT '',
//	  notes            TEXT NOT NULL DEFAULT '',
//	  created_at       TIMESTAMPTZ NOT NULL,
//	  updated_at       TIMESTAMPTZ NOT NULL
//	)
//
//	call_feedback (
//	  id                  UUID PRIMARY KEY,
//	  call_id             UUID NOT NULL UNIQUE REFERENCES calls(id),
//	  user_id             UUID NOT NULL,
//	  feedback_text       TEXT NOT NULL,
//	  rating              INT NOT NULL,
//	  recording_url       TEXT NOT NULL DEFAULT '',
//	  recording_public_id TEXT NOT NULL DEFAULT '',
//	  submitted_at        TIMESTAMPTZ NOT NULL,
//	  updated_at          TIMESTAMPTZ
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const callColumns = `id, admin_id, customer_id, customer_name, phone_number, call_date, duration_minutes, category, priority, status, assigned_user_id, notes, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, c Call) error {
	const q = `
INSERT INTO calls (` + callColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.AdminID, c.CustomerID, c.CustomerName, c.PhoneNumber,
		c.CallDate, c.DurationMins, c.Category, c.Priority, c.Status,
		c.AssignedUserID, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Call, error) {
	const q = `SELECT ` + callColumns + ` FROM calls WHERE id = $1`
	return scanCall(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Call, error) {
	// Empty filter values are neutralized inside the query. The assignment
	// filter optionally includes unassigned rows, which every agent may view.
	const q = `
SELECT ` + callColumns + `
FROM calls
WHERE ($1 = '' OR status = $1)
  AND ($2 = '' OR category = $2)
  AND ($3 = '' OR priority = $3)
  AND ($4 = '' OR assigned_user_id = $4 OR ($5 AND assigned_user_id = ''))
ORDER BY call_date DESC
`
	rows, err := r.db.QueryContext(ctx, q,
		string(f.Status), string(f.Category), string(f.Priority),
		f.AssignedUserID, f.OpenToo,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Call, 0)
	for rows.Next() {
		var c Call
		if err := rows.Scan(
			&c.ID, &c.AdminID, &c.CustomerID, &c.CustomerName, &c.PhoneNumber,
			&c.CallDate, &c.DurationMins, &c.Category, &c.Priority, &c.Status,
			&c.AssignedUserID, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, c Call) error {
	const q = `
UPDATE calls
SET customer_id = $2, customer_name = $3, phone_number = $4, call_date = $5,
    duration_minutes = $6, category = $7, priority = $8, status = $9,
    assigned_user_id = $10, notes = $11, updated_at = $12
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		c.ID, c.CustomerID, c.CustomerName, c.PhoneNumber, c.CallDate,
		c.DurationMins, c.Category, c.Priority, c.Status,
		c.AssignedUserID, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) DeleteCascade(ctx context.Context, id string) error {
	// Feedback first, call second, one transaction.
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM call_feedback WHERE call_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM calls WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresRepo) SubmitFeedback(ctx context.Context, fb Feedback) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		// The conditional insert is the duplicate gate: under concurrent
		// submissions exactly one row wins, every other caller sees zero
		// rows affected.
		const q = `
INSERT INTO call_feedback (
  id, call_id, user_id, feedback_text, rating,
  recording_url, recording_public_id, submitted_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (call_id) DO NOTHING
`
		res, err := tx.ExecContext(ctx, q,
			fb.ID, fb.CallID, fb.UserID, fb.FeedbackText, fb.Rating,
			fb.RecordingURL, fb.RecordingPublicID, fb.SubmittedAt,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrDuplicateFeedback
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE calls SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
			fb.CallID, StatusCompleted, fb.SubmittedAt, StatusPending,
		)
		return err
	})
}

const feedbackColumns = `id, call_id, user_id, feedback_text, rating, recording_url, recording_public_id, submitted_at, updated_at`

func (r *PostgresRepo) GetFeedback(ctx context.Context, id string) (Feedback, error) {
	const q = `SELECT ` + feedbackColumns + ` FROM call_feedback WHERE id = $1`
	return scanFeedback(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetFeedbackByCall(ctx context.Context, callID string) (Feedback, error) {
	const q = `SELECT ` + feedbackColumns + ` FROM call_feedback WHERE call_id = $1`
	return scanFeedback(r.db.QueryRowContext(ctx, q, callID))
}

func (r *PostgresRepo) ListFeedback(ctx context.Context, f FeedbackFilter) ([]Feedback, error) {
	const q = `
SELECT ` + feedbackColumns + `
FROM call_feedback
WHERE ($1 = '' OR call_id = $1::uuid)
  AND ($2 = '' OR user_id = $2::uuid)
ORDER BY submitted_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, f.CallID, f.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Feedback, 0)
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(
			&fb.ID, &fb.CallID, &fb.UserID, &fb.FeedbackText, &fb.Rating,
			&fb.RecordingURL, &fb.RecordingPublicID, &fb.SubmittedAt, &fb.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateFeedbackRecording(ctx context.Context, id, url, publicID string, now time.Time) (Feedback, error) {
	const q = `
UPDATE call_feedback
SET recording_url = $2, recording_public_id = $3, updated_at = $4
WHERE id = $1
RETURNING ` + feedbackColumns
	return scanFeedback(r.db.QueryRowContext(ctx, q, id, url, publicID, now))
}

func scanCall(row *sql.Row) (Call, error) {
	var c Call
	err := row.Scan(
		&c.ID, &c.AdminID, &c.CustomerID, &c.CustomerName, &c.PhoneNumber,
		&c.CallDate, &c.DurationMins, &c.Category, &c.Priority, &c.Status,
		&c.AssignedUserID, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Call{}, ErrNotFound
	}
	return c, err
}

func scanFeedback(row *sql.Row) (Feedback, error) {
	var fb Feedback
	err := row.Scan(
		&fb.ID, &fb.CallID, &fb.UserID, &fb.FeedbackText, &fb.Rating,
		&fb.RecordingURL, &fb.RecordingPublicID, &fb.SubmittedAt, &fb.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Feedback{}, ErrFeedbackNotFound
	}
	return fb, err
}
