package customers

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"callcenter-platform/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo assumes the following tables exist:
//
//	customers (
//	  id            UUID PRIMARY KEY,
//	  customer_name TEXT NOT NULL,
//	  phone_number  TEXT NOT NULL UNIQUE,
//	  email         TEXT NOT NULL DEFAULT '',
//	  address       TEXT NOT NULL DEFAULT '',
//	  assigned_to   UUID NOT NULL REFERENCES users(id),
//	  status        TEXT NOT NULL,
//	  priority      TEXT NOT NULL,
//	  notes         TEXT NOT NULL DEFAULT '',
//	  created_by    UUID NOT NULL,
//	  created_at    TIMESTAMPTZ NOT NULL,
//	  updated_at    TIMESTAMPTZ NOT NULL
//	)
//
//	call_records (
//	  id                  UUID PRIMARY KEY,
//	  customer_id         UUID NOT NULL REFERENCES customers(id),
//	  user_id             UUID NOT NULL,
//	  call_date           TIMESTAMPTZ NOT NULL,
//	  duration_minutes    INT NOT NULL,
//	  recording_url       TEXT NOT NULL DEFAULT '',
//	  recording_public_id TEXT NOT NULL DEFAULT '',
//	  call_status         TEXT NOT NULL,
//	  feedback            TEXT NOT NULL DEFAULT '',
//	  follow_up_required  BOOLEAN NOT NULL DEFAULT FALSE,
//	  follow_up_date      TIMESTAMPTZ,
//	  created_at          TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const customerColumns = `id, customer_name, phone_number, email, address, assigned_to, status, priority, notes, created_by, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, c Customer) error {
	const q = `
INSERT INTO customers (` + customerColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.CustomerName, c.PhoneNumber, c.Email, c.Address,
		c.AssignedTo, c.Status, c.Priority, c.Notes, c.CreatedBy,
		c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicatePhone
	}
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Customer, error) {
	// Empty filter values are neutralized inside the query; hand-rolled
	// dynamic SQL is avoided on purpose.
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE ($1 = '' OR status = $1)
  AND ($2 = '' OR priority = $2)
  AND ($3 = '' OR assigned_to = $3::uuid)
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, string(f.Status), string(f.Priority), f.AssignedTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomerRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, c Customer) error {
	const q = `
UPDATE customers
SET customer_name = $2, phone_number = $3, email = $4, address = $5,
    assigned_to = $6, status = $7, priority = $8, notes = $9, updated_at = $10
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		c.ID, c.CustomerName, c.PhoneNumber, c.Email, c.Address,
		c.AssignedTo, c.Status, c.Priority, c.Notes, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicatePhone
	}
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

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id string, status CustomerStatus, now time.Time) (Customer, error) {
	const q = `
UPDATE customers
SET status = $2, updated_at = $3
WHERE id = $1
RETURNING ` + customerColumns
	return scanCustomer(r.db.QueryRowContext(ctx, q, id, status, now))
}

func (r *PostgresRepo) DeleteCascade(ctx context.Context, id string) error {
	// Children first, parent second, one transaction. A timed-out or failed
	// step rolls the whole cascade back.
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM call_records WHERE customer_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
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

func (r *PostgresRepo) InsertRecord(ctx context.Context, rec CallRecord, promote bool) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO call_records (
  id, customer_id, user_id, call_date, duration_minutes,
  recording_url, recording_public_id, call_status, feedback,
  follow_up_required, follow_up_date, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`
		_, err := tx.ExecContext(ctx, q,
			rec.ID, rec.CustomerID, rec.UserID, rec.CallDate, rec.DurationMinutes,
			rec.RecordingURL, rec.RecordingPublicID, rec.CallStatus, rec.Feedback,
			rec.FollowUpRequired, rec.FollowUpDate, rec.CreatedAt,
		)
		if err != nil {
			return err
		}

		if !promote {
			return nil
		}
		// Conditional update keeps the transition idempotent: a customer
		// already contacted or completed is left alone.
		_, err = tx.ExecContext(ctx,
			`UPDATE customers SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
			rec.CustomerID, StatusContacted, rec.CreatedAt, StatusPending,
		)
		return err
	})
}

func (r *PostgresRepo) ListRecords(ctx context.Context, f RecordFilter) ([]CallRecord, error) {
	const q = `
SELECT id, customer_id, user_id, call_date, duration_minutes,
       recording_url, recording_public_id, call_status, feedback,
       follow_up_required, follow_up_date, created_at
FROM call_records
WHERE ($1 = '' OR customer_id = $1::uuid)
  AND ($2 = '' OR user_id = $2::uuid)
ORDER BY call_date DESC
`
	rows, err := r.db.QueryContext(ctx, q, f.CustomerID, f.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallRecord, 0)
	for rows.Next() {
		var rec CallRecord
		if err := rows.Scan(
			&rec.ID, &rec.CustomerID, &rec.UserID, &rec.CallDate, &rec.DurationMinutes,
			&rec.RecordingURL, &rec.RecordingPublicID, &rec.CallStatus, &rec.Feedback,
			&rec.FollowUpRequired, &rec.FollowUpDate, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanCustomer(row *sql.Row) (Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.CustomerName, &c.PhoneNumber, &c.Email, &c.Address,
		&c.AssignedTo, &c.Status, &c.Priority, &c.Notes, &c.CreatedBy,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

func scanCustomerRows(rows *sql.Rows) (Customer, error) {
	var c Customer
	err := rows.Scan(
		&c.ID, &c.CustomerName, &c.PhoneNumber, &c.Email, &c.Address,
		&c.AssignedTo, &c.Status, &c.Priority, &c.Notes, &c.CreatedBy,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
