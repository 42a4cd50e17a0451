package models

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "matricula/pkg/domain-errors"
)

// Validation messages, in check order.
const (
	MsgFirstNameRequired  = "Nombres es obligatorio"
	MsgLastNameRequired   = "Apellidos es obligatorio"
	MsgDocumentIDRequired = "Documento es obligatorio"
	MsgEmailInvalid       = "Email no válido"
	MsgProgramRequired    = "Programa es obligatorio"
)

// emailPattern: non-whitespace local part, "@", and a domain containing a dot.
// The class excludes the same whitespace isFieldSpace trims, not only ASCII \s.
var emailPattern = regexp.MustCompile(`^[^\t\n\v\f\r\p{Z}\x{FEFF}@]+@[^\t\n\v\f\r\p{Z}\x{FEFF}@]+\.[^\t\n\v\f\r\p{Z}\x{FEFF}@]+$`)

var fieldMessages = map[string]string{
	"FirstName":  MsgFirstNameRequired,
	"LastName":   MsgLastNameRequired,
	"DocumentID": MsgDocumentIDRequired,
	"Email":      MsgEmailInvalid,
	"Program":    MsgProgramRequired,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Result is the outcome of validating a submission: normalized fields on
// success, or every failed check in order. There is no partial success.
type Result struct {
	Fields Fields
	Errors []string
}

// OK reports whether every check passed.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Err returns a *ValidationError when any check failed, nil otherwise.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Messages: r.Errors}
}

// Validate normalizes raw fields and runs every check without
// short-circuiting. Telefono, modalidad and inicio are not checked.
func Validate(raw Fields) Result {
	fields := raw.Normalize()
	result := Result{Fields: fields}

	err := validate.Struct(fields)
	if err == nil {
		return result
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// Only reachable on a programming error in the struct tags.
		panic(err)
	}
	for _, fe := range fieldErrs {
		if msg, ok := fieldMessages[fe.StructField()]; ok {
			result.Errors = append(result.Errors, msg)
		}
	}
	return result
}

// ValidationError carries the ordered list of validation messages.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Unwrap exposes the domain code so errors.Is/HasCode see validation_failed.
func (e *ValidationError) Unwrap() error {
	return dErrors.New(dErrors.CodeValidation, e.Error())
}
