// Package validation valida la forma de los datos de usuario y tarjeta antes
// de que lleguen a los servicios.
package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// Card numbers: exactamente 16 dígitos.
var cardNumberRe = regexp.MustCompile(`^[0-9]{16}$`)

// FieldError describe un campo inválido.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors acumula errores de campo. Vacío => válido.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// Add agrega un error de campo.
func (e *Errors) Add(field, msg string) {
	*e = append(*e, FieldError{Field: field, Message: msg})
}

// Err retorna nil si no hay errores.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidEmail acepta una dirección simple (sin display name).
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// ValidCardNumber indica si s tiene exactamente 16 dígitos.
func ValidCardNumber(s string) bool {
	return cardNumberRe.MatchString(s)
}

// Profile valida nombre, apellido y fecha de nacimiento (no futura respecto de now).
func Profile(name, surname string, birthDate, now time.Time, errs *Errors) {
	if strings.TrimSpace(name) == "" {
		errs.Add("name", "must not be blank")
	}
	if strings.TrimSpace(surname) == "" {
		errs.Add("surname", "must not be blank")
	}
	switch {
	case birthDate.IsZero():
		errs.Add("birthDate", "is required")
	case birthDate.After(now):
		errs.Add("birthDate", "must be a date in the past or present")
	}
}

// Email valida el formato del email.
func Email(email string, errs *Errors) {
	if !ValidEmail(email) {
		errs.Add("email", "must be a well-formed email address")
	}
}

// Card valida los campos de una tarjeta.
func Card(prefix, number, holder string, expirationDate time.Time, errs *Errors) {
	if !ValidCardNumber(number) {
		errs.Add(prefix+"number", "must be exactly 16 digits")
	}
	if strings.TrimSpace(holder) == "" {
		errs.Add(prefix+"holder", "must not be blank")
	}
	if expirationDate.IsZero() {
		errs.Add(prefix+"expirationDate", "is required")
	}
}
