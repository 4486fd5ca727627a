package domain

import "time"

const (
	SourceProof   = "gcash_proof"
	SourcePayPal  = "paypal_ipn"
	FailureStatus = "failed"
)

// FailedNotification is an audit record of a webhook delivery that did not
// go through. It is never retried.
type FailedNotification struct {
	ID        string
	Source    string
	Reference string
	Payload   string
	Error     string
	Attempts  int
	Status    string
	CreatedAt time.Time
}
