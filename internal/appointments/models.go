package appointments

import "time"

// Appointment is a single booked visit. Phone is the digits-only contact
// identifier and is unique within the active set.
type Appointment struct {
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Time  time.Time `json:"appointment_time"`
}

// MergeResult summarizes an import reconciliation.
type MergeResult struct {
	Added     int      // records only present in the new batch
	Kept      int      // existing records preserved against the batch
	Total     int      // size of the merged set
	NewPhones []string // phones never seen in any prior import
}
