package domain

import "time"

// ActivityRecord is a write-only audit line. Never read back by the service;
// append-only by contract.
type ActivityRecord struct {
	ID          string
	Action      string
	Description string
	Actor       string
	CreatedAt   time.Time
}
