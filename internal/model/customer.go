package model

// Customer is a guest of the restaurant as stored in the `customers`
// table.  A zero ID means the customer has never been saved; the ID is
// assigned by the database on first insert and never changes after that.
//
// Fields:
//  ID        – primary key identifier (0 while transient).
//  FirstName – given name.
//  LastName  – family name.
//  Phone     – contact number, if any.
//  Notes     – free-text notes kept by staff, if any.
type Customer struct {
    ID        uint64  // customers.id
    FirstName string  // customers.first_name
    LastName  string  // customers.last_name
    Phone     *string // customers.phone (nullable)
    Notes     *string // customers.notes (nullable)
}

// FullName joins first and last name with a single space.
func (c *Customer) FullName() string {
    return c.FirstName + " " + c.LastName
}

// IsPersisted reports whether the customer has been assigned an ID.
func (c *Customer) IsPersisted() bool {
    return c.ID != 0
}

// TopCustomer pairs a customer with the number of reservations they hold.
// It is produced by the "top customers" report.
type TopCustomer struct {
    Customer
    ReservationCount uint64
}
