// Package usuario holds the Usuario resource and its input rules.
package usuario

import (
	"time"
)

// Usuario is a registered user as exposed by the API.
type Usuario struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`

	// CreadoEn orders listings. It never leaves the server.
	CreadoEn time.Time `json:"-"`
}

// Crear is the body of POST /api/usuarios.
type Crear struct {
	Nombre string `json:"nombre" validate:"required"`
	Correo string `json:"correo" validate:"required,email"`
}

// Actualizar is the body of PUT /api/usuarios/{id}. Nil fields are left untouched.
type Actualizar struct {
	Nombre *string `json:"nombre,omitempty"`
	Correo *string `json:"correo,omitempty"`
}

// Nuevo builds a Usuario from a validated Crear.
func Nuevo(id string, in Crear, now time.Time) Usuario {
	return Usuario{
		ID:       id,
		Nombre:   in.Nombre,
		Correo:   in.Correo,
		CreadoEn: now.UTC(),
	}
}

// Aplicar returns u with the non-nil fields of a applied.
func (u Usuario) Aplicar(a Actualizar) Usuario {
	if a.Nombre != nil {
		u.Nombre = *a.Nombre
	}
	if a.Correo != nil {
		u.Correo = *a.Correo
	}
	return u
}
