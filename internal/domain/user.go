package domain

import (
	"strings"
	"time"
)

// User field names, as reported in ValidationError.Field.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldPhone     = "phone"
	FieldBio       = "bio"
	FieldBirthDate = "birth_date"
)

// MaxPasswordBytes is the longest password bcrypt can hash without truncation.
const MaxPasswordBytes = 72

// User represents a registered member of the church site.
// Email is the login identifier and is compared exactly (case sensitive).
type User struct {
	ID             int64      `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Password       string     `json:"-"` // Plaintext, only set between registration and hashing
	HashedPassword string     `json:"-"` // Never expose password hash in JSON
	Phone          *string    `json:"phone,omitempty"`
	Bio            *string    `json:"bio,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewUser creates an active User from registration data. Names and email are
// trimmed; the password is kept verbatim.
//
// The caller is responsible for hashing the password before storing the user.
func NewUser(firstName, lastName, email, password string, now time.Time) (*User, error) {
	user := &User{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(email),
		Password:  password,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// A user must carry either a plaintext password (before hashing) or a hash.
func (u *User) Validate() error {
	if u.FirstName == "" {
		return NewValidationError(FieldFirstName, "es obligatorio", nil)
	}
	if u.LastName == "" {
		return NewValidationError(FieldLastName, "es obligatorio", nil)
	}
	if !ValidEmail(u.Email) {
		return NewValidationError(FieldEmail, "correo electrónico inválido", ErrInvalidEmail)
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return NewValidationError(FieldPassword, "es obligatoria", ErrEmptyPassword)
	}

	return nil
}

// ValidatePassword checks a plaintext password before it is hashed.
func ValidatePassword(password string) error {
	if password == "" {
		return NewValidationError(FieldPassword, "es obligatoria", ErrEmptyPassword)
	}
	if len(password) > MaxPasswordBytes {
		return NewValidationError(FieldPassword, "máximo 72 bytes", ErrPasswordTooLong)
	}
	return nil
}

// ProfileUpdate is a sparse change to a user's profile. Nil fields are left
// untouched; there is no way to clear an optional field once set.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Bio       *string
	BirthDate *time.Time
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Phone == nil && p.Bio == nil && p.BirthDate == nil
}

// Apply validates every present field and, only if all are valid, copies
// them onto u and bumps UpdatedAt. On error u is left unchanged.
func (p ProfileUpdate) Apply(u *User, now time.Time) error {
	var first, last, email string
	if p.FirstName != nil {
		if first = strings.TrimSpace(*p.FirstName); first == "" {
			return NewValidationError(FieldFirstName, "no puede estar vacío", nil)
		}
	}
	if p.LastName != nil {
		if last = strings.TrimSpace(*p.LastName); last == "" {
			return NewValidationError(FieldLastName, "no puede estar vacío", nil)
		}
	}
	if p.Email != nil {
		if email = strings.TrimSpace(*p.Email); !ValidEmail(email) {
			return NewValidationError(FieldEmail, "correo electrónico inválido", ErrInvalidEmail)
		}
	}

	if p.FirstName != nil {
		u.FirstName = first
	}
	if p.LastName != nil {
		u.LastName = last
	}
	if p.Email != nil {
		u.Email = email
	}
	if p.Phone != nil {
		phone := *p.Phone
		u.Phone = &phone
	}
	if p.Bio != nil {
		bio := *p.Bio
		u.Bio = &bio
	}
	if p.BirthDate != nil {
		d := *p.BirthDate
		u.BirthDate = &d
	}
	u.UpdatedAt = now
	return nil
}
