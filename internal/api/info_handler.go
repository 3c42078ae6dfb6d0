package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/montesion/montesion-api/internal/api/shared"
	"github.com/montesion/montesion-api/internal/platform/logger"
	"github.com/montesion/montesion-api/internal/redact"
)

const (
	// ServiceName identifies the API in health responses.
	ServiceName = "Monte Sion API"

	// WelcomeMessage is returned from the root path.
	WelcomeMessage = "Bienvenido a la API de Monte Sion"

	healthPingTimeout = 2 * time.Second
)

// Pinger checks that a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// InfoHandler serves the root and health endpoints.
type InfoHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewInfoHandler creates an InfoHandler. db may be nil, in which case the
// health check reports only the process itself.
func NewInfoHandler(db Pinger, logger *slog.Logger) *InfoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InfoHandler{db: db, logger: logger.With(slog.String("component", "info_handler"))}
}

// Root handles GET /.
func (h *InfoHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Mensaje: WelcomeMessage})
}

// Health handles GET /health. It answers 503 when the database is unreachable.
func (h *InfoHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Service: ServiceName, Database: "skipped"}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Error("database ping failed",
				slog.String("error", redact.Error(err)))
			resp.Status = "unhealthy"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	shared.RespondWithJSON(w, r, status, resp)
}
