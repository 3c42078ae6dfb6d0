package api

import (
	"log/slog"
	"net/http"

	"github.com/montesion/montesion-api/internal/api/shared"
	"github.com/montesion/montesion-api/internal/platform/logger"
	"github.com/montesion/montesion-api/internal/service"
)

// PrayerHandler handles the prayer request form.
type PrayerHandler struct {
	prayers service.PrayerService
	logger  *slog.Logger
}

// NewPrayerHandler creates a new PrayerHandler.
func NewPrayerHandler(prayers service.PrayerService, logger *slog.Logger) *PrayerHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PrayerHandler")
	}
	return &PrayerHandler{
		prayers: prayers,
		logger:  logger.With(slog.String("component", "prayer_handler")),
	}
}

// Submit handles POST /peticiones/.
func (h *PrayerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req PrayerRequestRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	stored, err := h.prayers.Submit(r.Context(), service.SubmitInput{
		Name:    req.Nombre,
		Surname: req.Apellido,
		Email:   req.CorreoElectronico,
		Phone:   req.Telefono,
		Subject: req.Asunto,
		Body:    req.Peticion,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Error guardando la petición")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("prayer request accepted",
		slog.Int64("ticket", stored.Ticket))

	shared.RespondWithJSON(w, r, http.StatusCreated, NewPrayerRequestResponse(stored))
}

// Message handles GET /peticiones/.
func (h *PrayerHandler) Message(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Mensaje: h.prayers.Message()})
}
