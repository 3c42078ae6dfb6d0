package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/montesion/montesion-api/internal/domain"
)

// MaxBodyBytes caps the size of JSON request bodies.
const MaxBodyBytes = 1 << 20

// validate reports fields by their JSON name, which is what clients send.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into the given struct.
// Malformed JSON is reported as a validation error without a field.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("", "cuerpo JSON inválido", err)
	}
	return nil
}

// ValidateRequest validates the given struct using its validate tags. The
// first failing field is returned as a *domain.ValidationError named after
// its JSON key.
func ValidateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(fe.Field(), tagMessage(fe.Tag()), nil)
	}
	return err
}

// tagMessage maps validation tags to user-facing messages.
func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "es obligatorio"
	case "email":
		return "correo electrónico inválido"
	case "min":
		return "es demasiado corto"
	case "max":
		return "es demasiado largo"
	default:
		return "valor inválido"
	}
}
