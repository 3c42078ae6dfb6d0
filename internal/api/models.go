package api

import (
	"time"

	"github.com/montesion/montesion-api/internal/domain"
)

// Wire field names follow the public site's existing contract, which is in
// Spanish.

// DateLayout is the format of calendar dates on the wire.
const DateLayout = "2006-01-02"

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Nombre            string `json:"nombre"             validate:"required"`
	Apellido          string `json:"apellido"           validate:"required"`
	CorreoElectronico string `json:"correo_electronico" validate:"required"`
	Password          string `json:"password"           validate:"required"`
}

// UpdateProfileRequest is a partial profile update; absent keys are left
// untouched.
type UpdateProfileRequest struct {
	Nombre            *string `json:"nombre"`
	Apellido          *string `json:"apellido"`
	CorreoElectronico *string `json:"correo_electronico"`
	Telefono          *string `json:"telefono"`
	Descripcion       *string `json:"descripcion"`
	Cumpleanos        *string `json:"cumpleaños"`
}

// ToProfileUpdate converts the request, parsing the birth date.
func (r UpdateProfileRequest) ToProfileUpdate() (domain.ProfileUpdate, error) {
	upd := domain.ProfileUpdate{
		FirstName: r.Nombre,
		LastName:  r.Apellido,
		Email:     r.CorreoElectronico,
		Phone:     r.Telefono,
		Bio:       r.Descripcion,
	}
	if r.Cumpleanos != nil {
		d, err := time.Parse(DateLayout, *r.Cumpleanos)
		if err != nil {
			return domain.ProfileUpdate{}, domain.NewValidationError(
				domain.FieldBirthDate, "formato de fecha inválido, use AAAA-MM-DD", err)
		}
		upd.BirthDate = &d
	}
	return upd, nil
}

// PasswordResetRequest defines the payload for the password reset endpoint.
type PasswordResetRequest struct {
	CorreoElectronico string `json:"correo_electronico" validate:"required"`
}

// UserResponse is the public view of an account. The password hash never
// leaves the service.
type UserResponse struct {
	ID                int64   `json:"id"`
	Nombre            string  `json:"nombre"`
	Apellido          string  `json:"apellido"`
	CorreoElectronico string  `json:"correo_electronico"`
	Telefono          *string `json:"telefono,omitempty"`
	Descripcion       *string `json:"descripcion,omitempty"`
	Cumpleanos        *string `json:"cumpleaños,omitempty"`
	IsActive          bool    `json:"is_active"`
}

// NewUserResponse builds the public view of user.
func NewUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:                user.ID,
		Nombre:            user.FirstName,
		Apellido:          user.LastName,
		CorreoElectronico: user.Email,
		Telefono:          user.Phone,
		Descripcion:       user.Bio,
		IsActive:          user.IsActive,
	}
	if user.BirthDate != nil {
		d := user.BirthDate.Format(DateLayout)
		resp.Cumpleanos = &d
	}
	return resp
}

// TokenResponse is the OAuth2-style body returned by the login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresAt is the RFC 3339 instant the token stops being accepted.
	ExpiresAt string `json:"expires_at"`
}

// PrayerRequestRequest defines the payload of the prayer request form.
// Content rules are enforced by the domain so every field is reported by
// name in form order.
type PrayerRequestRequest struct {
	Nombre            string `json:"nombre"`
	Apellido          string `json:"apellido"`
	CorreoElectronico string `json:"correo_electronico"`
	Telefono          string `json:"telefono"`
	Asunto            string `json:"asunto"`
	Peticion          string `json:"peticion"`
}

// PrayerRequestResponse is a stored prayer request.
type PrayerRequestResponse struct {
	ID                int64   `json:"id"`
	Ticket            int64   `json:"ticket"`
	Nombre            string  `json:"nombre"`
	Apellido          *string `json:"apellido,omitempty"`
	CorreoElectronico string  `json:"correo_electronico"`
	Telefono          *string `json:"telefono,omitempty"`
	Asunto            string  `json:"asunto"`
	Peticion          string  `json:"peticion"`
	Fecha             string  `json:"fecha"`
}

// NewPrayerRequestResponse builds the response for a stored request.
func NewPrayerRequestResponse(req *domain.PrayerRequest) PrayerRequestResponse {
	return PrayerRequestResponse{
		ID:                req.ID,
		Ticket:            req.Ticket,
		Nombre:            req.Name,
		Apellido:          req.Surname,
		CorreoElectronico: req.Email,
		Telefono:          req.Phone,
		Asunto:            req.Subject,
		Peticion:          req.Body,
		Fecha:             req.CreatedAt.Format(time.RFC3339),
	}
}

// MessageResponse carries a single human-readable message.
type MessageResponse struct {
	Mensaje string `json:"mensaje"`
}

// HealthResponse reports liveness and database reachability.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}
