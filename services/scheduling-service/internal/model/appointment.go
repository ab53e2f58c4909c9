package model

import "time"

const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Appointment is a booked consultation slot. Records are never deleted;
// cancellation flips Status and leaves the row in place.
type Appointment struct {
	ID        int64
	Date      string // calendar date, YYYY-MM-DD
	Time      string // clock time, HH:MM
	Patient   string
	Physician string
	Status    string
	CreatedAt time.Time
}
