package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/lunchly/internal/model"
)

// ReservationRepo provides lookups and saves for table reservations.  All
// timestamps are stored in UTC.
type ReservationRepo struct {
	db DBTX
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db DBTX) *ReservationRepo { return &ReservationRepo{db: db} }

// WithTx returns a copy of the repository that runs its statements on tx.
func (r *ReservationRepo) WithTx(tx DBTX) *ReservationRepo { return &ReservationRepo{db: tx} }

// reservationRow mirrors the schema of the reservations table.
type reservationRow struct {
	ID         uint64
	CustomerID uint64
	StartAt    time.Time
	NumGuests  uint32
	Notes      sql.NullString
}

func (row *reservationRow) scanTargets() []any {
	return []any{&row.ID, &row.CustomerID, &row.StartAt, &row.NumGuests, &row.Notes}
}

func (row *reservationRow) toModel() *model.Reservation {
	return &model.Reservation{
		ID:         row.ID,
		CustomerID: row.CustomerID,
		StartAt:    row.StartAt.UTC(),
		NumGuests:  row.NumGuests,
		Notes:      stringPtr(row.Notes),
	}
}

const reservationSelect = `SELECT id, customer_id, start_at, num_guests, notes
		FROM reservations`

// Get fetches a reservation by id, or a *NotFoundError.
func (r *ReservationRepo) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = reservationSelect + ` WHERE id = ?`
	var row reservationRow
	if err := r.db.QueryRowContext(ctx, q, id).Scan(row.scanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Kind: "reservation", ID: id}
		}
		return nil, err
	}
	return row.toModel(), nil
}

// ForCustomer returns the reservations of a customer, earliest first.
func (r *ReservationRepo) ForCustomer(ctx context.Context, customerID uint64) ([]*model.Reservation, error) {
	const q = reservationSelect + ` WHERE customer_id = ? ORDER BY start_at`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Reservation{}
	for rows.Next() {
		var row reservationRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, err
		}
		out = append(out, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save inserts res when transient and stores the generated ID on it;
// otherwise it updates the row with res.ID.
func (r *ReservationRepo) Save(ctx context.Context, res *model.Reservation) error {
	if !res.IsPersisted() {
		const q = `INSERT INTO reservations (customer_id, start_at, num_guests, notes) VALUES (?, ?, ?, ?)`
		result, err := r.db.ExecContext(ctx, q, res.CustomerID, res.StartAt.UTC(), res.NumGuests, nullString(res.Notes))
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		res.ID = uint64(id)
		return nil
	}
	const q = `UPDATE reservations SET customer_id = ?, start_at = ?, num_guests = ?, notes = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, res.CustomerID, res.StartAt.UTC(), res.NumGuests, nullString(res.Notes), res.ID)
	return err
}
