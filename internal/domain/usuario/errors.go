package usuario

import "errors"

// Validation errors. Their messages are returned to API clients as-is.
var (
	ErrCamposObligatorios = errors.New("nombre y correo son obligatorios")
	ErrCorreoInvalido     = errors.New("correo inválido")
	ErrCampoVacio         = errors.New("los campos no pueden estar vacíos")
)

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrCamposObligatorios) ||
		errors.Is(err, ErrCorreoInvalido) ||
		errors.Is(err, ErrCampoVacio)
}
