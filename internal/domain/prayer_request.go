package domain

import (
	"strings"
	"time"
)

// Prayer request field names, as reported in ValidationError.Field.
const (
	FieldName    = "name"
	FieldSurname = "surname"
	FieldSubject = "subject"
	FieldBody    = "body"
)

// Minimum lengths, in characters, measured after trimming.
const (
	MinNameLength    = 2
	MinSubjectLength = 2
	MinBodyLength    = 10
)

// PrayerRequest is a submission from a visitor asking the church to pray
// for them. Ticket is the human-facing sequential number assigned at
// submission; it is zero until allocated. Requests never change once stored.
type PrayerRequest struct {
	ID        int64     `json:"id"`
	Ticket    int64     `json:"ticket"`
	Name      string    `json:"name"`
	Surname   *string   `json:"surname,omitempty"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// PrayerRequestInput is the visitor-supplied content of a prayer request.
// Surname and Phone are optional.
type PrayerRequestInput struct {
	Name    string
	Surname string
	Email   string
	Phone   string
	Subject string
	Body    string
}

// NewPrayerRequest trims every text field of in and validates the result.
// The returned request has no ticket yet.
func NewPrayerRequest(in PrayerRequestInput, createdAt time.Time) (*PrayerRequest, error) {
	req := &PrayerRequest{
		Name:      strings.TrimSpace(in.Name),
		Surname:   optional(in.Surname),
		Email:     strings.TrimSpace(in.Email),
		Phone:     optional(in.Phone),
		Subject:   strings.TrimSpace(in.Subject),
		Body:      strings.TrimSpace(in.Body),
		CreatedAt: createdAt,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks the content rules. Fields are checked in form order so the
// first problem a visitor sees is the topmost one.
func (r *PrayerRequest) Validate() error {
	if textLen(strings.TrimSpace(r.Name)) < MinNameLength {
		return NewValidationError(FieldName, "mínimo 2 caracteres", nil)
	}
	if r.Email == "" {
		return NewValidationError(FieldEmail, "es obligatorio", nil)
	}
	if !ValidEmail(r.Email) {
		return NewValidationError(FieldEmail, "correo electrónico inválido", ErrInvalidEmail)
	}
	if textLen(strings.TrimSpace(r.Subject)) < MinSubjectLength {
		return NewValidationError(FieldSubject, "mínimo 2 caracteres", nil)
	}
	if textLen(strings.TrimSpace(r.Body)) < MinBodyLength {
		return NewValidationError(FieldBody, "mínimo 10 caracteres", nil)
	}
	return nil
}
