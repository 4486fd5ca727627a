package mongo

import (
	"testing"
	"time"

	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

func TestFailedNotificationDocumentRoundTrip(t *testing.T) {
	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	in := domain.FailedNotification{
		ID:        "c0ffee",
		Source:    domain.SourcePayPal,
		Reference: "TX1",
		Payload:   `{"embeds":[]}`,
		Error:     "status=500",
		Attempts:  1,
		Status:    domain.FailureStatus,
		CreatedAt: created,
	}

	doc := toFailedNotificationDocument(in)
	if doc.Target != domain.SourcePayPal || !doc.LastTriedAt.Equal(created) {
		t.Errorf("document = %+v", doc)
	}
	if out := fromFailedNotificationDocument(doc); out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestFailedNotificationDocumentFillsCreatedAt(t *testing.T) {
	doc := toFailedNotificationDocument(domain.FailedNotification{ID: "x"})
	if doc.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should default to now")
	}
}
