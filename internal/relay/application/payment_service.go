package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

// VerifiedResponse is the only verdict that counts as a genuine IPN.
const VerifiedResponse = "VERIFIED"

func NewPaymentService(verifier IPNVerifier, sink WebhookSink, recorder FailureRecorder, logger *log.Logger) PaymentService {
	if logger == nil {
		logger = log.Default()
	}
	return &paymentService{
		verifier: verifier,
		sink:     sink,
		failures: failureLog{recorder: recorder, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

type paymentService struct {
	verifier IPNVerifier
	sink     WebhookSink
	failures failureLog
	logger   *log.Logger
	now      func() time.Time
}

// HandleNotification verifies cb and forwards completed payments. Duplicate
// callbacks are forwarded again; there is no dedup.
func (s *paymentService) HandleNotification(ctx context.Context, cb domain.PaymentCallback) (Outcome, error) {
	verdict, err := s.verifier.Verify(ctx, cb)
	if err != nil {
		return OutcomeUnverified, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	s.logger.Printf("[PAYPAL IPN] verification response: %q txn_id=%s", verdict, cb.TxnID())

	if verdict != VerifiedResponse {
		s.logger.Printf("IPN が検証されませんでした: %q", verdict)
		return OutcomeUnverified, nil
	}

	if !cb.Completed() {
		s.logger.Printf("支払いが完了していません: payment_status=%q txn_id=%s", cb.PaymentStatus(), cb.TxnID())
		return OutcomeNotCompleted, nil
	}

	msg := domain.NewPaymentMessage(cb, s.now())
	if err := s.sink.Send(ctx, msg); err != nil {
		s.failures.record(ctx, domain.SourcePayPal, cb.TxnID(), msg, err)
		return OutcomeForwarded, fmt.Errorf("payment webhook: %w", err)
	}
	return OutcomeForwarded, nil
}
