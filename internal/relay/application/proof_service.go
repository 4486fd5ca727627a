package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

func NewProofService(sink WebhookSink, recorder FailureRecorder, location *time.Location, logger *log.Logger) ProofService {
	if location == nil {
		location = time.Local
	}
	return &proofService{
		sink:     sink,
		failures: failureLog{recorder: recorder, logger: logger},
		location: location,
		now:      time.Now,
	}
}

type proofService struct {
	sink     WebhookSink
	failures failureLog
	location *time.Location
	now      func() time.Time
}

// Submit builds the proof notification and uploads it with the file in one
// request. The caller owns the staged file and removes it afterwards.
func (s *proofService) Submit(ctx context.Context, cmd SubmitProofCommand) error {
	submission := domain.Submission{
		Minecraft: cmd.Minecraft,
		Discord:   cmd.Discord,
		Rank:      cmd.Rank,
		Method:    cmd.Method,
		Proof:     cmd.Proof,
	}
	msg := domain.NewProofMessage(submission, s.now().In(s.location))

	if submission.Proof == nil {
		s.failures.record(ctx, domain.SourceProof, submission.Minecraft, msg, ErrProofMissing)
		return ErrProofMissing
	}

	if err := s.sink.SendWithFile(ctx, msg, *submission.Proof); err != nil {
		s.failures.record(ctx, domain.SourceProof, submission.Minecraft, msg, err)
		return fmt.Errorf("proof webhook: %w", err)
	}
	return nil
}
