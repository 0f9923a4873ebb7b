// Package repository contains data access logic separated from HTTP handlers.
// This file defines the customer repository: lookups, the name search, the
// top customers report and save (insert or update).
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/lunchly/internal/model"
)

// ReservationLister is the part of the reservation repository the customer
// repository delegates to.
type ReservationLister interface {
	ForCustomer(ctx context.Context, customerID uint64) ([]*model.Reservation, error)
}

// CustomerRepo encapsulates all database queries related to customers.
type CustomerRepo struct {
	db           DBTX
	reservations ReservationLister
}

// NewCustomerRepo constructs a CustomerRepo on top of db.  reservations
// backs Reservations and may be nil when that lookup is never used.
func NewCustomerRepo(db DBTX, reservations ReservationLister) *CustomerRepo {
	return &CustomerRepo{db: db, reservations: reservations}
}

// WithTx returns a copy of the repository that runs its statements on tx.
func (r *CustomerRepo) WithTx(tx DBTX) *CustomerRepo {
	return &CustomerRepo{db: tx, reservations: r.reservations}
}

// customerRow mirrors the columns selected from the customers table.  Only
// these fields are read or written by the repository.
type customerRow struct {
	ID        uint64
	FirstName string
	LastName  string
	Phone     sql.NullString
	Notes     sql.NullString
}

func (row *customerRow) scanTargets() []any {
	return []any{&row.ID, &row.FirstName, &row.LastName, &row.Phone, &row.Notes}
}

func (row *customerRow) toModel() *model.Customer {
	return &model.Customer{
		ID:        row.ID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Phone:     stringPtr(row.Phone),
		Notes:     stringPtr(row.Notes),
	}
}

const customerSelect = `SELECT id, first_name, last_name, phone, notes
		FROM customers`

const (
	qAllCustomers = customerSelect + `
		ORDER BY last_name, first_name`
	qCustomerByID = customerSelect + `
		WHERE id = ?`
	qTopCustomers = `SELECT c.id, c.first_name, c.last_name, c.phone, c.notes,
		       COUNT(r.id) AS num_reservations
		FROM customers AS c
		JOIN reservations AS r ON r.customer_id = c.id
		GROUP BY c.id
		ORDER BY num_reservations DESC, c.id
		LIMIT 10`
	qInsertCustomer = `INSERT INTO customers (first_name, last_name, phone, notes)
		VALUES (?, ?, ?, ?)`
	qUpdateCustomer = `UPDATE customers
		SET first_name = ?, last_name = ?, phone = ?, notes = ?
		WHERE id = ?`
)

// All returns every customer ordered by last name, then first name.
func (r *CustomerRepo) All(ctx context.Context) ([]*model.Customer, error) {
	return r.list(ctx, qAllCustomers)
}

// Get fetches a customer by id.  It returns a *NotFoundError (which
// satisfies errors.Is(err, ErrCustomerNotFound)) when no row matches.
func (r *CustomerRepo) Get(ctx context.Context, id uint64) (*model.Customer, error) {
	var row customerRow
	if err := r.db.QueryRowContext(ctx, qCustomerByID, id).Scan(row.scanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Kind: "customer", ID: id}
		}
		return nil, err
	}
	return row.toModel(), nil
}

// GetByName searches customers by a name typed by staff.  A nil name, or a
// name with more than two space separated tokens, yields an empty result
// without touching the database.
func (r *CustomerRepo) GetByName(ctx context.Context, name *string) ([]*model.Customer, error) {
	if name == nil {
		return []*model.Customer{}, nil
	}
	q, ok := ParseNameQuery(*name)
	if !ok {
		return []*model.Customer{}, nil
	}
	return r.FindByName(ctx, q)
}

// FindByName runs the statement selected by q.  Result order is whatever
// the database returns.
func (r *CustomerRepo) FindByName(ctx context.Context, q NameQuery) ([]*model.Customer, error) {
	return r.list(ctx, q.sql(), q.args()...)
}

// TopTen returns the ten customers with the most reservations, highest
// count first.  Customers without reservations never appear.
func (r *CustomerRepo) TopTen(ctx context.Context) ([]*model.TopCustomer, error) {
	rows, err := r.db.QueryContext(ctx, qTopCustomers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.TopCustomer, 0, 10)
	for rows.Next() {
		var row customerRow
		var count uint64
		if err := rows.Scan(append(row.scanTargets(), &count)...); err != nil {
			return nil, err
		}
		out = append(out, &model.TopCustomer{Customer: *row.toModel(), ReservationCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Reservations returns the reservations held by c.
func (r *CustomerRepo) Reservations(ctx context.Context, c *model.Customer) ([]*model.Reservation, error) {
	if r.reservations == nil {
		return nil, errors.New("customer repository has no reservation source")
	}
	return r.reservations.ForCustomer(ctx, c.ID)
}

// Save inserts c when it has no ID yet and stores the generated ID on c.
// Otherwise it overwrites the four mutable columns of the row with c.ID.
// An update that matches no row is not reported.
func (r *CustomerRepo) Save(ctx context.Context, c *model.Customer) error {
	if !c.IsPersisted() {
		res, err := r.db.ExecContext(ctx, qInsertCustomer,
			c.FirstName, c.LastName, nullString(c.Phone), nullString(c.Notes))
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		c.ID = uint64(id)
		return nil
	}
	_, err := r.db.ExecContext(ctx, qUpdateCustomer,
		c.FirstName, c.LastName, nullString(c.Phone), nullString(c.Notes), c.ID)
	return err
}

func (r *CustomerRepo) list(ctx context.Context, q string, args ...any) ([]*model.Customer, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Customer{}
	for rows.Next() {
		var row customerRow
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
