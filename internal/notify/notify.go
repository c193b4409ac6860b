package notify

import "context"

// Notification is an outbound email notification to a patient
type Notification struct {
	To          string
	Subject     string
	Message     string
	PatientName string
	DoctorName  string
	From        string
}

// Notifier delivers notifications. Delivery is best-effort: callers
// treat failures as log-and-continue, never as request failures.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
