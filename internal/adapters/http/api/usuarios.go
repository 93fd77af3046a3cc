package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/middleware"
	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/respond"
	repository "github.com/Sticlo/ProyectoCobra/internal/adapters/repository"
	"github.com/Sticlo/ProyectoCobra/internal/domain/usuario"
	"github.com/Sticlo/ProyectoCobra/pkg/logger"
)

// UsuariosDependencies defines the usuario use cases served over HTTP.
type UsuariosDependencies interface {
	ListUsuarios(ctx context.Context) ([]usuario.Usuario, error)
	GetUsuario(ctx context.Context, id string) (usuario.Usuario, error)
	CreateUsuario(ctx context.Context, in usuario.Crear) (usuario.Usuario, error)
	UpdateUsuario(ctx context.Context, id string, a usuario.Actualizar) (usuario.Usuario, error)
	DeleteUsuario(ctx context.Context, id string) error
}

// UsuariosHandler handles the /api/usuarios routes.
type UsuariosHandler struct {
	deps   UsuariosDependencies
	logger logger.Logger
}

// NewUsuariosHandler creates a new usuarios handler.
func NewUsuariosHandler(deps UsuariosDependencies, log logger.Logger) *UsuariosHandler {
	return &UsuariosHandler{deps: deps, logger: log}
}

// HandleList handles GET /api/usuarios.
func (h *UsuariosHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListUsuarios(r.Context())
	if err != nil {
		h.writeError(w, r, "api.usuarios.list", err)
		return
	}
	if list == nil {
		list = []usuario.Usuario{}
	}
	respond.WriteJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/usuarios.
func (h *UsuariosHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.usuarios.create"

	var in usuario.Crear
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, op, err)
		return
	}

	u, err := h.deps.CreateUsuario(r.Context(), in)
	if err != nil {
		h.writeError(w, r, op, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, u)
}

// HandleGet handles GET /api/usuarios/{id}.
func (h *UsuariosHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.deps.GetUsuario(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, "api.usuarios.get", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// HandleUpdate handles PUT /api/usuarios/{id}. Unknown fields are rejected.
func (h *UsuariosHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.usuarios.update"

	var a usuario.Actualizar
	if err := decodeJSON(r, &a, "nombre", "correo"); err != nil {
		h.writeError(w, r, op, err)
		return
	}

	u, err := h.deps.UpdateUsuario(r.Context(), r.PathValue("id"), a)
	if err != nil {
		h.writeError(w, r, op, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// HandleDelete handles DELETE /api/usuarios/{id}.
func (h *UsuariosHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteUsuario(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, "api.usuarios.delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bodyError reports a request body that could not be decoded.
type bodyError struct {
	kind  error
	cause error
}

func (e *bodyError) Error() string   { return e.kind.Error() + ": " + e.cause.Error() }
func (e *bodyError) Unwrap() []error { return []error{e.kind, e.cause} }

// decodeJSON reads exactly one JSON value from the request body into v.
// When allowed is non-empty the value must be an object whose keys are all
// in allowed.
func decodeJSON(r *http.Request, v any, allowed ...string) error {
	var raw json.RawMessage
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return &bodyError{kind: ErrBodyTooLarge, cause: err}
		}
		return &bodyError{kind: ErrBadRequest, cause: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &bodyError{kind: ErrBadRequest, cause: errors.New("trailing data after JSON value")}
	}

	if len(allowed) > 0 {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return &bodyError{kind: ErrBadRequest, cause: err}
		}
		var unknown []string
		for k := range fields {
			if !slices.Contains(allowed, k) {
				unknown = append(unknown, k)
			}
		}
		if len(unknown) > 0 {
			slices.Sort(unknown)
			return &bodyError{kind: ErrUnknownField, cause: fmt.Errorf("campos no permitidos: %s", strings.Join(unknown, ", "))}
		}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return &bodyError{kind: ErrBadRequest, cause: err}
	}
	return nil
}

// validationErrors are returned to clients with their own message.
var validationErrors = []error{ //nolint:gochecknoglobals // fixed lookup table
	usuario.ErrCamposObligatorios,
	usuario.ErrCorreoInvalido,
	usuario.ErrCampoVacio,
}

// writeError maps err to a status code and the error envelope.
func (h *UsuariosHandler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	for _, verr := range validationErrors {
		if errors.Is(err, verr) {
			respond.WriteError(w, http.StatusBadRequest, verr.Error(), nil)
			return
		}
	}

	var be *bodyError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, respond.MsgNoEncontrado, nil)
	case errors.As(err, &be) && errors.Is(be.kind, ErrBodyTooLarge):
		respond.WriteError(w, http.StatusRequestEntityTooLarge, respond.MsgCuerpoGrande, nil)
	case errors.As(err, &be) && errors.Is(be.kind, ErrUnknownField):
		respond.WriteError(w, http.StatusBadRequest, respond.MsgDatosInvalido, be.cause.Error())
	case errors.As(err, &be):
		respond.WriteError(w, http.StatusBadRequest, respond.MsgJSONInvalido, be.cause.Error())
	default:
		h.logger.Error(r.Context(), "request failed",
			logger.String("request_id", middleware.GetRequestID(r.Context())),
			logger.Error(Wrap(op, err)),
		)
		respond.WriteError(w, http.StatusInternalServerError, respond.MsgErrorInterno, nil)
	}
}
