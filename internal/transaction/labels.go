package transaction

// fieldLabels translates the backend's dotted field paths into the labels
// shown to the shopper.
var fieldLabels = map[string]string{
	"products":                   "Productos",
	"delivery.address":           "Dirección",
	"delivery.city":              "Ciudad",
	"delivery.country":           "País",
	"delivery.customer.fullName": "Nombre completo",
	"delivery.customer.email":    "Correo electrónico",
	"delivery.customer.phone":    "Teléfono",
	"card.number":                "Número de tarjeta",
	"card.exp_month":             "Mes de vencimiento",
	"card.exp_year":              "Año de vencimiento",
	"card.cvc":                   "CVV",
	"card.card_holder":           "Nombre en la tarjeta",
}

// FieldLabel returns the human-readable label for a dotted field path,
// falling back to the raw path for unknown fields.
func FieldLabel(path string) string {
	if label, ok := fieldLabels[path]; ok {
		return label
	}
	return path
}

// statusMessages are the fixed fallbacks used when an error body cannot be
// parsed.
var statusMessages = map[int]string{
	400: "Datos inválidos. Revisa la información e intenta de nuevo.",
	401: "No autorizado.",
	402: "Pago rechazado. Verifica los datos de tu tarjeta.",
	404: "Servicio no encontrado.",
	422: "Algunos datos no son válidos.",
	500: "Error del servidor. Intenta más tarde.",
	503: "Servicio no disponible. Intenta más tarde.",
}

const genericMessage = "Ocurrió un error inesperado. Intenta de nuevo."

// statusMessage returns the fallback message for an HTTP status.
func statusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return genericMessage
}
