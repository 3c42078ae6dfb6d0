package service

import (
	"strconv"
	"text/template"

	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/platform/mail"
)

// PrayerScripture is the message returned to visitors of the prayer page.
const PrayerScripture = "Confesaos vuestras ofensas unos a otros, y orad unos por otros, " +
	"para que seáis sanados. La oración eficaz del justo puede mucho. · Santiago 5:16 RVR1960"

const (
	prayerConfirmationSubject = "Confirmación de petición de oración, "
	passwordResetSubject      = "Recuperación de contraseña - Monte Sion"
)

var prayerConfirmationBody = template.Must(template.New("prayer_confirmation").Parse(
	`Hola, {{.Name}} 👋.

Hemos recibido tu petición de oración con el número {{.Ticket}}:

"{{.Body}}"

Nuestro equipo de oración estará intercediendo por ti. Dios te bendiga ✨.

Tu petición es confidencial y solo la conoce el equipo de oración de Monte Sion.
Si tienes dudas, escríbenos a {{.Contact}}
`))

var passwordResetBody = template.Must(template.New("password_reset").Parse(
	`Hola, {{.Name}}.

Recibimos una solicitud para restablecer la contraseña de tu cuenta.

Nueva contraseña: {{.Password}}

Te recomendamos iniciar sesión y cambiarla lo antes posible.

Monte Sion – Santa María Atzompa
`))

type prayerConfirmationData struct {
	Name    string
	Ticket  int64
	Body    string
	Contact string
}

type passwordResetData struct {
	Name     string
	Password string
}

// prayerConfirmation builds the email acknowledging a stored request.
// Replies go to the church's sender address.
func prayerConfirmation(req *domain.PrayerRequest, sender string) mail.Message {
	return mail.Message{
		To:      req.Email,
		Subject: prayerConfirmationSubject + strconv.FormatInt(req.Ticket, 10),
		ReplyTo: sender,
		Body:    prayerConfirmationBody,
		Data: prayerConfirmationData{
			Name:    req.Name,
			Ticket:  req.Ticket,
			Body:    req.Body,
			Contact: sender,
		},
	}
}

func passwordResetMessage(user *domain.User, temporary string) mail.Message {
	return mail.Message{
		To:      user.Email,
		Subject: passwordResetSubject,
		Body:    passwordResetBody,
		Data: passwordResetData{
			Name:     user.FirstName,
			Password: temporary,
		},
	}
}
