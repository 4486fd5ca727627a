package application

import (
	"context"
	"sync"

	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

type fakeSink struct {
	mu           sync.Mutex
	SendFunc     func(ctx context.Context, msg domain.WebhookMessage) error
	SendFileFunc func(ctx context.Context, msg domain.WebhookMessage, file domain.ProofFile) error
	sent         []domain.WebhookMessage
	files        []domain.ProofFile
}

func (f *fakeSink) Send(ctx context.Context, msg domain.WebhookMessage) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	if f.SendFunc != nil {
		return f.SendFunc(ctx, msg)
	}
	return nil
}

func (f *fakeSink) SendWithFile(ctx context.Context, msg domain.WebhookMessage, file domain.ProofFile) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.files = append(f.files, file)
	f.mu.Unlock()
	if f.SendFileFunc != nil {
		return f.SendFileFunc(ctx, msg, file)
	}
	return nil
}

type fakeVerifier struct {
	VerifyFunc func(ctx context.Context, cb domain.PaymentCallback) (string, error)
	bodies     []string
}

func (f *fakeVerifier) Verify(ctx context.Context, cb domain.PaymentCallback) (string, error) {
	f.bodies = append(f.bodies, cb.VerificationBody())
	if f.VerifyFunc != nil {
		return f.VerifyFunc(ctx, cb)
	}
	return VerifiedResponse, nil
}

type fakeRecorder struct {
	RecordFunc func(ctx context.Context, failure *domain.FailedNotification) error
	recorded   []domain.FailedNotification
}

func (f *fakeRecorder) Record(ctx context.Context, failure *domain.FailedNotification) error {
	f.recorded = append(f.recorded, *failure)
	if f.RecordFunc != nil {
		return f.RecordFunc(ctx, failure)
	}
	return nil
}
