package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var phoneRe = regexp.MustCompile(`^\d{5,15}$`)

// IsPhone validates a phone number: digits only, so login can tell phones
// apart from email identifiers by form alone.
func IsPhone(fl validator.FieldLevel) bool {
	return phoneRe.MatchString(fl.Field().String())
}
