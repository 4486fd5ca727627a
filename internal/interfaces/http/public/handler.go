package public

import (
	"log"
	"mime/multipart"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/rank-relay/api/internal/infrastructure/upload"
	"github.com/sngm3741/rank-relay/api/internal/interfaces/http/common"
	relayapp "github.com/sngm3741/rank-relay/api/internal/relay/application"
)

// Stager stages an uploaded part on disk for one request.
type Stager interface {
	Stage(header *multipart.FileHeader) (*upload.Staged, error)
}

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         *log.Logger
	proofs         relayapp.ProofService
	payments       relayapp.PaymentService
	uploads        Stager
	maxUploadBytes int64
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *log.Logger
	Proofs         relayapp.ProofService
	Payments       relayapp.PaymentService
	Uploads        Stager
	MaxUploadBytes int64
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = common.DefaultMaxUploadBytes
	}
	return &Handler{
		logger:         logger,
		proofs:         cfg.Proofs,
		payments:       cfg.Payments,
		uploads:        cfg.Uploads,
		maxUploadBytes: maxUpload,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submit-gcash", h.submitProofHandler())
	r.Post("/paypal-ipn", h.paypalIPNHandler())
}
