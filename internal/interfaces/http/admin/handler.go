package admin

import (
	"log"

	"github.com/go-chi/chi/v5"
	relayapp "github.com/sngm3741/rank-relay/api/internal/relay/application"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger   *log.Logger
	failures relayapp.FailureQuery
}

// Config provides dependencies for Handler.
type Config struct {
	Logger   *log.Logger
	Failures relayapp.FailureQuery
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		logger:   logger,
		failures: cfg.Failures,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/failed-notifications", h.failedNotificationListHandler())
}
