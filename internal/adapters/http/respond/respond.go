// Package respond writes JSON bodies and the API error envelope.
package respond

import (
	"encoding/json"
	"net/http"
)

// Messages shared by every handler that returns the error envelope.
const (
	MsgNoEncontrado  = "Usuario no encontrado"
	MsgErrorInterno  = "error interno"
	MsgJSONInvalido  = "cuerpo JSON inválido"
	MsgDatosInvalido = "Datos inválidos"
	MsgCuerpoGrande  = "cuerpo demasiado grande"
)

// Error is the body of every non-2xx API response.
type Error struct {
	Mensaje string `json:"mensaje"`
	Detalle any    `json:"detalle,omitempty"`
}

// WriteJSON writes v as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error envelope. A nil detalle is omitted.
func WriteError(w http.ResponseWriter, status int, mensaje string, detalle any) {
	WriteJSON(w, status, Error{Mensaje: mensaje, Detalle: detalle})
}
