package checkout

import (
	"regexp"
	"unicode/utf8"
)

var (
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	cardNumberPattern = regexp.MustCompile(`^\d{4} \d{4} \d{4} \d{4}$`)
	expMonthPattern   = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	expYearPattern    = regexp.MustCompile(`^\d{2}$`)
	cvcPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// validate evaluates the rule for a single field against the current values.
// It returns an empty string when the field is valid. Each rule is independent
// of every other field.
func validate(f Field, v Values) string {
	switch f {
	case FieldFullName:
		if v.FullName == "" {
			return "El nombre es requerido"
		}
		if utf8.RuneCountInString(v.FullName) < 2 {
			return "El nombre debe tener al menos 2 caracteres"
		}
	case FieldEmail:
		if v.Email == "" {
			return "El correo electrónico es requerido"
		}
		if !emailPattern.MatchString(v.Email) {
			return "Correo electrónico inválido"
		}
	case FieldPhone:
		// Raw length check only: no digit stripping before counting.
		if utf8.RuneCountInString(v.Phone) < 10 {
			return "El teléfono debe tener al menos 10 dígitos"
		}
	case FieldAddress:
		if utf8.RuneCountInString(v.Address) < 5 {
			return "La dirección debe tener al menos 5 caracteres"
		}
	case FieldCity:
		if utf8.RuneCountInString(v.City) < 2 {
			return "La ciudad debe tener al menos 2 caracteres"
		}
	case FieldCountry:
		if v.Country == "" {
			return "El país es requerido"
		}
	case FieldCardNumber:
		if !cardNumberPattern.MatchString(v.CardNumber) {
			return "El número de tarjeta debe tener 16 dígitos"
		}
	case FieldCardHolder:
		if utf8.RuneCountInString(v.CardHolder) < 3 {
			return "El nombre en la tarjeta debe tener al menos 3 caracteres"
		}
	case FieldExpMonth:
		if !expMonthPattern.MatchString(v.ExpMonth) {
			return "Mes de vencimiento inválido"
		}
	case FieldExpYear:
		if !expYearPattern.MatchString(v.ExpYear) {
			return "Año de vencimiento inválido (AA)"
		}
	case FieldCVC:
		if !cvcPattern.MatchString(v.CVC) {
			return "El CVV debe tener 3 o 4 dígitos"
		}
	}
	return ""
}
