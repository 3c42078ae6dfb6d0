package api

import (
	"errors"
	"net/http"

	"github.com/montesion/montesion-api/internal/api/shared"
	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/service"
	"github.com/montesion/montesion-api/internal/service/auth"
	"github.com/montesion/montesion-api/internal/store"
)

// msgUnexpected is the message for every error without a more specific one.
const msgUnexpected = "Ocurrió un error inesperado"

// wireFields maps domain field names to the JSON keys clients send.
var wireFields = map[string]string{
	domain.FieldFirstName: "nombre",
	domain.FieldLastName:  "apellido",
	domain.FieldEmail:     "correo_electronico",
	domain.FieldPassword:  "password",
	domain.FieldPhone:     "telefono",
	domain.FieldBio:       "descripcion",
	domain.FieldBirthDate: "cumpleaños",
	domain.FieldName:      "nombre",
	domain.FieldSurname:   "apellido",
	domain.FieldSubject:   "asunto",
	domain.FieldBody:      "peticion",
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrDeliveryFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToCode returns the classification reported in the error body.
func MapErrorToCode(err error) string {
	switch MapErrorToStatusCode(err) {
	case http.StatusBadRequest:
		return shared.CodeValidation
	case http.StatusConflict:
		return shared.CodeConflict
	case http.StatusUnauthorized:
		return shared.CodeUnauthorized
	case http.StatusNotFound:
		return shared.CodeNotFound
	case http.StatusBadGateway:
		return shared.CodeDeliveryFailed
	default:
		return shared.CodeInternal
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message based on the
// error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return msgUnexpected
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Datos inválidos"

	case errors.Is(err, store.ErrEmailExists):
		return "Correo ya registrado"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Credenciales inválidas"

	case errors.Is(err, auth.ErrMissingToken):
		return "Se requiere autenticación"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Token inválido"

	case errors.Is(err, store.ErrUserNotFound):
		return "Usuario no encontrado"

	case errors.Is(err, service.ErrDeliveryFailed):
		return "Error enviando correo"

	default:
		return msgUnexpected
	}
}

// ErrorField returns the JSON key of the input a validation error rejected,
// or "" when the error names no field.
func ErrorField(err error) string {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field == "" {
		return ""
	}
	if wire, ok := wireFields[verr.Field]; ok {
		return wire
	}
	return verr.Field
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message of 500 responses so the client learns which operation
// failed without seeing why.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if field := ErrorField(err); field != "" {
		opts = append(opts, shared.WithField(field))
	}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, MapErrorToCode(err), message, err, opts...)
}
