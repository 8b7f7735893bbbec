package model

import "github.com/google/uuid"

// DispatchOutcome is the delivery result of one composed notification.
type DispatchOutcome struct {
	Attempted bool
	OK        bool
	Detail    string
}

// ReconcileFailure records a notification flag that could not be set.
type ReconcileFailure struct {
	OrderID uuid.UUID
	Err     error
}

// SubmissionOutcome describes everything that happened after the orders of
// one submission were persisted. Only Records is visible to callers; the rest
// is logged.
type SubmissionOutcome struct {
	Records           []OrderRecord
	ComposeErr        error
	Dispatch          DispatchOutcome
	ReconcileFailures []ReconcileFailure
}

// OrderIDs returns the IDs of the persisted records in submission order.
func (o *SubmissionOutcome) OrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Records))
	for i, rec := range o.Records {
		ids[i] = rec.ID
	}
	return ids
}

// Notified reports whether the notification was delivered and every record
// was flagged accordingly.
func (o *SubmissionOutcome) Notified() bool {
	return o.Dispatch.OK && len(o.ReconcileFailures) == 0
}
