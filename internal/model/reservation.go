package model

import "time"

// Reservation records a table booking made by a customer.
//
// Fields:
//  ID         – primary key identifier (0 while transient).
//  CustomerID – customer who made the booking.
//  StartAt    – when the party is expected, stored in UTC.
//  NumGuests  – party size, at least one.
//  Notes      – free-text notes, if any.
type Reservation struct {
    ID         uint64    // reservations.id
    CustomerID uint64    // reservations.customer_id
    StartAt    time.Time // reservations.start_at
    NumGuests  uint32    // reservations.num_guests
    Notes      *string   // reservations.notes (nullable)
}

// IsPersisted reports whether the reservation has been assigned an ID.
func (r *Reservation) IsPersisted() bool {
    return r.ID != 0
}
