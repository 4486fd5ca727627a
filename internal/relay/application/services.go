package application

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

var (
	// ErrProofMissing is returned when a submission arrives without a file.
	ErrProofMissing = errors.New("proof file is missing")
	// ErrVerification wraps any failure of the IPN verification round trip.
	ErrVerification = errors.New("ipn verification failed")
)

// WebhookSink は通知先 Webhook へのポート。
type WebhookSink interface {
	Send(ctx context.Context, msg domain.WebhookMessage) error
	SendWithFile(ctx context.Context, msg domain.WebhookMessage, file domain.ProofFile) error
}

// IPNVerifier echoes a callback to the payment provider and returns its raw verdict.
type IPNVerifier interface {
	Verify(ctx context.Context, cb domain.PaymentCallback) (string, error)
}

// FailureRecorder stores failed webhook deliveries for operators.
type FailureRecorder interface {
	Record(ctx context.Context, failure *domain.FailedNotification) error
}

// FailureQuery reads the failed delivery log.
type FailureQuery interface {
	Recent(ctx context.Context, limit int) ([]domain.FailedNotification, error)
}

// ProofService relays payment proof submissions.
type ProofService interface {
	Submit(ctx context.Context, cmd SubmitProofCommand) error
}

// PaymentService handles PayPal IPN callbacks.
type PaymentService interface {
	HandleNotification(ctx context.Context, cb domain.PaymentCallback) (Outcome, error)
}

// SubmitProofCommand captures the submitted form.
type SubmitProofCommand struct {
	Minecraft string
	Discord   string
	Rank      string
	Method    string
	Proof     *domain.ProofFile
}

// Outcome describes what happened to a callback that did not error.
type Outcome int

const (
	OutcomeForwarded Outcome = iota
	OutcomeUnverified
	OutcomeNotCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeForwarded:
		return "forwarded"
	case OutcomeUnverified:
		return "unverified"
	case OutcomeNotCompleted:
		return "not_completed"
	default:
		return "unknown"
	}
}

// failureLog is shared by the services to write delivery failures.
type failureLog struct {
	recorder FailureRecorder
	logger   *log.Logger
}

func (f failureLog) record(ctx context.Context, source, reference string, msg domain.WebhookMessage, cause error) {
	if f.recorder == nil || cause == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		payload = []byte("{}")
	}
	failure := &domain.FailedNotification{
		ID:        uuid.NewString(),
		Source:    source,
		Reference: reference,
		Payload:   string(payload),
		Error:     cause.Error(),
		Attempts:  1,
		Status:    domain.FailureStatus,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.recorder.Record(ctx, failure); err != nil && f.logger != nil {
		f.logger.Printf("failed_notifications への保存に失敗: %v", err)
	}
}
