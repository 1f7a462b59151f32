package validate

// FieldError field error to be nested by other errors
type FieldError struct {
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}

// NewFieldError create new field error
func NewFieldError(domain string, reason string) *FieldError {
	return &FieldError{domain, reason}
}

// Validator validates input and translates the failures into the requested locale,
// an unknown locale falls back to english
type Validator interface {
	Struct(lang string, s interface{}) []*FieldError
	Empty(lang string, varName string, s interface{}) []*FieldError
}
