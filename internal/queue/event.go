// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into an audit trail.
package queue

import (
    "time"

    "github.com/iliyamo/lunchly/internal/model"
)

// CustomerSavedQueue is the durable queue customer events are published to.
const CustomerSavedQueue = "customer.saved"

// Customer event actions.
const (
    ActionCreated = "created"
    ActionUpdated = "updated"
)

// CustomerSavedEvent is published after a customer row is inserted or
// updated.  It carries the saved fields so consumers need not query the
// database.
type CustomerSavedEvent struct {
    CustomerID uint64  `json:"customer_id"`
    Action     string  `json:"action"`
    FirstName  string  `json:"first_name"`
    LastName   string  `json:"last_name"`
    Phone      *string `json:"phone,omitempty"`
    Notes      *string `json:"notes,omitempty"`
    StaffID    string  `json:"staff_id,omitempty"`
    RequestID  string  `json:"request_id,omitempty"`
    SavedAt    string  `json:"saved_at"`
}

// NewCustomerSavedEvent builds the event for c.  created selects the action.
func NewCustomerSavedEvent(c *model.Customer, created bool, staffID, requestID string, at time.Time) CustomerSavedEvent {
    action := ActionUpdated
    if created {
        action = ActionCreated
    }
    return CustomerSavedEvent{
        CustomerID: c.ID,
        Action:     action,
        FirstName:  c.FirstName,
        LastName:   c.LastName,
        Phone:      c.Phone,
        Notes:      c.Notes,
        StaffID:    staffID,
        RequestID:  requestID,
        SavedAt:    at.UTC().Format(time.RFC3339),
    }
}
