package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/montesion/montesion-api/internal/api/shared"
	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/platform/logger"
	"github.com/montesion/montesion-api/internal/service"
)

// PasswordResetMessage confirms that a temporary password was emailed.
const PasswordResetMessage = "Nueva contraseña enviada al correo electrónico registrado."

// AuthHandler handles account-related API requests.
type AuthHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(accounts service.AccountService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		FirstName: req.Nombre,
		LastName:  req.Apellido,
		Email:     req.CorreoElectronico,
		Password:  req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Error registrando la cuenta")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewUserResponse(user))
}

// Login handles POST /auth/token. Credentials arrive as an OAuth2 password
// form: the email in "username" and the password in "password".
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, shared.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		HandleAPIError(w, r, domain.NewValidationError("", "formulario inválido", err), "")
		return
	}

	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	switch {
	case email == "":
		HandleAPIError(w, r, domain.NewValidationError("username", "es obligatorio", nil), "")
		return
	case password == "":
		HandleAPIError(w, r, domain.NewValidationError("password", "es obligatorio", nil), "")
		return
	}

	res, err := h.accounts.Login(r.Context(), email, password)
	if err != nil {
		HandleAPIError(w, r, err, "Error iniciando sesión")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresAt:   res.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// CurrentUser handles GET /auth/auth.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// UpdateProfile handles PUT /auth/update.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	upd, err := req.ToProfileUpdate()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), user, upd)
	if err != nil {
		HandleAPIError(w, r, err, "Error actualizando el perfil")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(updated))
}

// DeleteAccount handles DELETE /auth/delete.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), user); err != nil {
		HandleAPIError(w, r, err, "Error eliminando la cuenta")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset handles POST /auth/password-reset.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.accounts.RequestPasswordReset(r.Context(), req.CorreoElectronico); err != nil {
		HandleAPIError(w, r, err, "Error restableciendo la contraseña")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Mensaje: PasswordResetMessage})
}

// currentUser returns the account the auth middleware resolved. A missing
// user means the route was mounted without the middleware.
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := shared.CurrentUser(r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("current user not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, shared.CodeUnauthorized, "Se requiere autenticación")
		return nil, false
	}
	return user, true
}
