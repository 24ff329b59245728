package validation

var bookingSchema = MustCompile(`{
	"type": "object",
	"required": ["id", "amount", "userId"],
	"properties": {
		"id":          {"type": "string", "minLength": 1},
		"amount":      {"type": "number", "minimum": 0.01},
		"userId":      {"type": "string", "minLength": 1},
		"type":        {"type": "string"},
		"checkInDate": {"type": "string"}
	}
}`)

// ValidateBooking checks a booking-completion notice. document may be a
// models.Booking or the raw decoded job variables.
func ValidateBooking(document interface{}) *ValidationResult {
	return bookingSchema.Validate(document)
}

var aliasSchema = MustCompile(`{
	"type": "object",
	"required": ["key", "target"],
	"properties": {
		"key": {"type": "string", "minLength": 1, "maxLength": 64},
		"target": {
			"type": "object",
			"minProperties": 1,
			"maxProperties": 1,
			"additionalProperties": false,
			"properties": {
				"area":      {"type": "string", "minLength": 1},
				"city":      {"type": "string", "minLength": 1},
				"province":  {"type": "string", "minLength": 1},
				"country":   {"type": "string", "minLength": 1},
				"continent": {"type": "string", "minLength": 1}
			}
		}
	}
}`)

// ValidateAlias checks a custom alias definition: a key and a target naming
// exactly one location level.
func ValidateAlias(document interface{}) *ValidationResult {
	return aliasSchema.Validate(document)
}
