package application

import (
	"context"
	"errors"
	"testing"

	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

func completedCallback() domain.PaymentCallback {
	return domain.ParsePaymentCallback([]byte("payment_status=Completed&custom=Steve&payer_email=s%40x.io&mc_gross=9.99&mc_currency=USD&txn_id=61E67681CH3238416"))
}

func TestPaymentServiceForwardsVerifiedCompleted(t *testing.T) {
	sink := &fakeSink{}
	verifier := &fakeVerifier{}
	svc := NewPaymentService(verifier, sink, nil, quietLogger)

	cb := completedCallback()
	outcome, err := svc.HandleNotification(context.Background(), cb)
	if err != nil {
		t.Fatalf("HandleNotification() error = %v", err)
	}
	if outcome != OutcomeForwarded {
		t.Errorf("outcome = %s, want forwarded", outcome)
	}
	if len(verifier.bodies) != 1 || verifier.bodies[0] != "cmd=_notify-validate&"+cb.Raw() {
		t.Errorf("verification bodies = %q", verifier.bodies)
	}
	if len(sink.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sink.sent))
	}
	var txn string
	for _, f := range sink.sent[0].Embeds[0].Fields {
		if f.Name == "TXN ID" {
			txn = f.Value
		}
	}
	if txn != "61E67681CH3238416" {
		t.Errorf("TXN ID = %q", txn)
	}
}

func TestPaymentServiceSkipsIncompletePayment(t *testing.T) {
	sink := &fakeSink{}
	svc := NewPaymentService(&fakeVerifier{}, sink, nil, quietLogger)

	outcome, err := svc.HandleNotification(context.Background(), domain.ParsePaymentCallback([]byte("payment_status=Pending&txn_id=1")))
	if err != nil || outcome != OutcomeNotCompleted {
		t.Fatalf("HandleNotification() = %s, %v", outcome, err)
	}
	if len(sink.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(sink.sent))
	}
}

func TestPaymentServiceSkipsUnverified(t *testing.T) {
	for _, verdict := range []string{"INVALID", "VERIFIED\n", "", "verified"} {
		sink := &fakeSink{}
		verifier := &fakeVerifier{VerifyFunc: func(context.Context, domain.PaymentCallback) (string, error) {
			return verdict, nil
		}}
		svc := NewPaymentService(verifier, sink, nil, quietLogger)

		outcome, err := svc.HandleNotification(context.Background(), completedCallback())
		if err != nil || outcome != OutcomeUnverified {
			t.Errorf("verdict %q: HandleNotification() = %s, %v", verdict, outcome, err)
		}
		if len(sink.sent) != 0 {
			t.Errorf("verdict %q: sent = %d, want 0", verdict, len(sink.sent))
		}
	}
}

func TestPaymentServiceVerificationError(t *testing.T) {
	sink := &fakeSink{}
	verifier := &fakeVerifier{VerifyFunc: func(context.Context, domain.PaymentCallback) (string, error) {
		return "", errors.New("dial tcp: timeout")
	}}
	svc := NewPaymentService(verifier, sink, nil, quietLogger)

	_, err := svc.HandleNotification(context.Background(), completedCallback())
	if !errors.Is(err, ErrVerification) {
		t.Fatalf("error = %v, want ErrVerification", err)
	}
	if len(sink.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(sink.sent))
	}
}

func TestPaymentServiceWebhookFailureIsRecorded(t *testing.T) {
	sink := &fakeSink{SendFunc: func(context.Context, domain.WebhookMessage) error { return errors.New("status=429") }}
	recorder := &fakeRecorder{}
	svc := NewPaymentService(&fakeVerifier{}, sink, recorder, quietLogger)

	_, err := svc.HandleNotification(context.Background(), completedCallback())
	if err == nil {
		t.Fatal("expected error on webhook failure")
	}
	if len(recorder.recorded) != 1 {
		t.Fatalf("recorded = %d, want 1", len(recorder.recorded))
	}
	if got := recorder.recorded[0]; got.Source != domain.SourcePayPal || got.Reference != "61E67681CH3238416" {
		t.Errorf("recorded = %+v", got)
	}
}

func TestPaymentServiceReplayIsNotDeduplicated(t *testing.T) {
	sink := &fakeSink{}
	svc := NewPaymentService(&fakeVerifier{}, sink, nil, quietLogger)

	for i := 0; i < 2; i++ {
		if _, err := svc.HandleNotification(context.Background(), completedCallback()); err != nil {
			t.Fatal(err)
		}
	}
	if len(sink.sent) != 2 {
		t.Errorf("sent = %d, want 2 independent notifications", len(sink.sent))
	}
}
