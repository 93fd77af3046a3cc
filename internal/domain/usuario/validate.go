package usuario

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// Normalizar trims the fields of in and checks them. Missing fields take
// precedence over a malformed correo.
func (in Crear) Normalizar() (Crear, error) {
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Correo = strings.TrimSpace(in.Correo)

	err := validate.Struct(in)
	if err == nil {
		return in, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return in, err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return in, ErrCamposObligatorios
		}
	}
	return in, ErrCorreoInvalido
}

// Normalizar trims the present fields of a and checks them.
func (a Actualizar) Normalizar() (Actualizar, error) {
	if a.Nombre != nil {
		v := strings.TrimSpace(*a.Nombre)
		if v == "" {
			return a, ErrCampoVacio
		}
		a.Nombre = &v
	}
	if a.Correo != nil {
		v := strings.TrimSpace(*a.Correo)
		if v == "" {
			return a, ErrCampoVacio
		}
		if err := validate.Var(v, "email"); err != nil {
			return a, ErrCorreoInvalido
		}
		a.Correo = &v
	}
	return a, nil
}
