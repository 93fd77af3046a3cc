package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/api"
	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/middleware"
	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/swagger"
	repository "github.com/Sticlo/ProyectoCobra/internal/adapters/repository"
	service "github.com/Sticlo/ProyectoCobra/internal/app"
	"github.com/Sticlo/ProyectoCobra/internal/domain/usuario"
	"github.com/Sticlo/ProyectoCobra/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// brokenDeps fails every call as an unreachable store would.
type brokenDeps struct{}

var errStore = errors.New("dial tcp: connection refused")

func (brokenDeps) ListUsuarios(context.Context) ([]usuario.Usuario, error) { return nil, errStore }
func (brokenDeps) GetUsuario(context.Context, string) (usuario.Usuario, error) {
	return usuario.Usuario{}, errStore
}
func (brokenDeps) CreateUsuario(context.Context, usuario.Crear) (usuario.Usuario, error) {
	return usuario.Usuario{}, errStore
}
func (brokenDeps) UpdateUsuario(context.Context, string, usuario.Actualizar) (usuario.Usuario, error) {
	return usuario.Usuario{}, errStore
}
func (brokenDeps) DeleteUsuario(context.Context, string) error { return errStore }
func (brokenDeps) Ping(context.Context) error                  { return errStore }

// nilListDeps returns a nil slice from ListUsuarios.
type nilListDeps struct{ brokenDeps }

func (nilListDeps) ListUsuarios(context.Context) ([]usuario.Usuario, error) { return nil, nil }

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, api.WithLogger(logger.Nop())).
		Register(context.Background(), mux)
	return mux
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

// contractRouter routes requests against the embedded contract.
func contractRouter() routers.Router {
	doc, err := swagger.Load(context.Background())
	So(err, ShouldBeNil)
	doc.Servers = nil
	router, err := gorillamux.NewRouter(doc)
	So(err, ShouldBeNil)
	return router
}

// conformsToContract checks a recorded response against the documented one.
func conformsToContract(router routers.Router, method, target, body string, w *httptest.ResponseRecorder) error {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	route, pathParams, err := router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("route %s %s: %w", method, target, err)
	}
	return openapi3filter.ValidateResponse(context.Background(), &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: w.Code,
		Header: w.Header(),
		Body:   io.NopCloser(strings.NewReader(w.Body.String())),
		Options: &openapi3filter.Options{
			IncludeResponseStatus: true,
		},
	})
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server backed by a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithLogger(logger.Nop()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := newMux(svc)
		router := contractRouter()

		Convey("And the root endpoint answers with the banner", func() {
			w := do(mux, http.MethodGet, "/", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "text/plain; charset=utf-8")
			So(w.Body.String(), ShouldContainSubstring, "Servidor Node.js funcionando")
		})

		Convey("And unknown paths are 404", func() {
			w := do(mux, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And wrong methods on known paths are 405", func() {
			w := do(mux, http.MethodPatch, "/api/usuarios", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("And the health endpoint reports the service as operational", func() {
			w := do(mux, http.MethodGet, "/salud", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decodeError(w)
			So(body["ok"], ShouldEqual, true)
			So(body["mensaje"], ShouldEqual, "servicio operativo")
			So(conformsToContract(router, http.MethodGet, "/salud", "", w), ShouldBeNil)
		})

		Convey("And the metrics endpoint exposes the private registry", func() {
			do(mux, http.MethodGet, "/salud", "")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "cobra_api_http_requests_total")
		})

		Convey("And the stats endpoint returns the provider stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("When listing an empty registry", func() {
			w := do(mux, http.MethodGet, "/api/usuarios", "")

			Convey("Then an empty JSON array is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
				So(conformsToContract(router, http.MethodGet, "/api/usuarios", "", w), ShouldBeNil)
			})
		})

		Convey("When a usuario is created", func() {
			const body = `{"nombre":"Ana María","correo":"anamaria@correo.com"}`
			w := do(mux, http.MethodPost, "/api/usuarios", body)

			var created usuario.Usuario
			So(json.Unmarshal(w.Body.Bytes(), &created), ShouldBeNil)

			Convey("Then 201 is returned with a generated uuid", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				_, err := uuid.Parse(created.ID)
				So(err, ShouldBeNil)
				So(created.Nombre, ShouldEqual, "Ana María")
				So(created.Correo, ShouldEqual, "anamaria@correo.com")
				So(w.Body.String(), ShouldNotContainSubstring, "CreadoEn")
				So(conformsToContract(router, http.MethodPost, "/api/usuarios", body, w), ShouldBeNil)
			})

			Convey("Then it is listed", func() {
				lw := do(mux, http.MethodGet, "/api/usuarios", "")
				var list []usuario.Usuario
				So(json.Unmarshal(lw.Body.Bytes(), &list), ShouldBeNil)
				So(len(list), ShouldEqual, 1)
				So(list[0].ID, ShouldEqual, created.ID)
				So(conformsToContract(router, http.MethodGet, "/api/usuarios", "", lw), ShouldBeNil)
			})

			Convey("Then it can be fetched by id", func() {
				target := "/api/usuarios/" + created.ID
				gw := do(mux, http.MethodGet, target, "")
				So(gw.Code, ShouldEqual, http.StatusOK)
				So(conformsToContract(router, http.MethodGet, target, "", gw), ShouldBeNil)
			})

			Convey("Then a partial update changes only the given field", func() {
				target := "/api/usuarios/" + created.ID
				const upd = `{"correo":"ana.m@correo.com"}`
				uw := do(mux, http.MethodPut, target, upd)

				So(uw.Code, ShouldEqual, http.StatusOK)
				var updated usuario.Usuario
				So(json.Unmarshal(uw.Body.Bytes(), &updated), ShouldBeNil)
				So(updated.ID, ShouldEqual, created.ID)
				So(updated.Nombre, ShouldEqual, "Ana María")
				So(updated.Correo, ShouldEqual, "ana.m@correo.com")
				So(conformsToContract(router, http.MethodPut, target, upd, uw), ShouldBeNil)
			})

			Convey("Then an update with an undocumented field is rejected", func() {
				uw := do(mux, http.MethodPut, "/api/usuarios/"+created.ID, `{"nombre":"Ana","rol":"admin"}`)

				So(uw.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(uw)
				So(body["mensaje"], ShouldEqual, "Datos inválidos")
				So(body["detalle"], ShouldContainSubstring, "rol")
			})

			Convey("Then an update with an empty nombre is rejected", func() {
				uw := do(mux, http.MethodPut, "/api/usuarios/"+created.ID, `{"nombre":"  "}`)
				So(uw.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then it can be deleted exactly once", func() {
				target := "/api/usuarios/" + created.ID
				dw := do(mux, http.MethodDelete, target, "")
				So(dw.Code, ShouldEqual, http.StatusNoContent)
				So(dw.Body.Len(), ShouldEqual, 0)
				So(conformsToContract(router, http.MethodDelete, target, "", dw), ShouldBeNil)

				again := do(mux, http.MethodDelete, target, "")
				So(again.Code, ShouldEqual, http.StatusNotFound)
				So(conformsToContract(router, http.MethodDelete, target, "", again), ShouldBeNil)
			})
		})

		Convey("When required fields are missing", func() {
			const body = `{"nombre":"Ana"}`
			w := do(mux, http.MethodPost, "/api/usuarios", body)

			Convey("Then 400 carries the documented message", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["mensaje"], ShouldEqual, "nombre y correo son obligatorios")
				So(conformsToContract(router, http.MethodPost, "/api/usuarios", body, w), ShouldBeNil)
			})
		})

		Convey("When correo is malformed", func() {
			w := do(mux, http.MethodPost, "/api/usuarios", `{"nombre":"Ana","correo":"ana"}`)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["mensaje"], ShouldEqual, "correo inválido")
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/api/usuarios", `{"nombre":`)

			Convey("Then 400 reports an invalid body", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body["mensaje"], ShouldEqual, "cuerpo JSON inválido")
				So(body["detalle"], ShouldNotBeEmpty)
			})
		})

		Convey("When the body has trailing data", func() {
			w := do(mux, http.MethodPost, "/api/usuarios", `{"nombre":"a","correo":"a@b.co"} {}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the id does not exist", func() {
			target := "/api/usuarios/" + uuid.NewString()

			Convey("Then GET, PUT and DELETE answer 404", func() {
				gw := do(mux, http.MethodGet, target, "")
				So(gw.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(gw)["mensaje"], ShouldEqual, "Usuario no encontrado")
				So(conformsToContract(router, http.MethodGet, target, "", gw), ShouldBeNil)

				pw := do(mux, http.MethodPut, target, `{"nombre":"x"}`)
				So(pw.Code, ShouldEqual, http.StatusNotFound)

				dw := do(mux, http.MethodDelete, target, "")
				So(dw.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the body exceeds the configured limit", func() {
			h := middleware.BodyLimit(32)(mux)
			w := do(h, http.MethodPost, "/api/usuarios", `{"nombre":"`+strings.Repeat("a", 64)+`","correo":"a@b.co"}`)

			Convey("Then 413 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decodeError(w)["mensaje"], ShouldEqual, "cuerpo demasiado grande")
			})
		})
	})
}

func TestServer_StoreFailures(t *testing.T) {
	Convey("Given an API server whose store is unreachable", t, func() {
		mux := newMux(brokenDeps{})
		router := contractRouter()

		Convey("Then /salud answers 503", func() {
			w := do(mux, http.MethodGet, "/salud", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w)["ok"], ShouldEqual, false)
			So(conformsToContract(router, http.MethodGet, "/salud", "", w), ShouldBeNil)
		})

		Convey("Then usuario routes answer 500 without leaking the cause", func() {
			for _, tc := range []struct{ method, target, body string }{
				{http.MethodGet, "/api/usuarios", ""},
				{http.MethodPost, "/api/usuarios", `{"nombre":"Ana","correo":"ana@correo.com"}`},
				{http.MethodGet, "/api/usuarios/a1b2c3", ""},
				{http.MethodPut, "/api/usuarios/a1b2c3", `{"nombre":"Ana"}`},
				{http.MethodDelete, "/api/usuarios/a1b2c3", ""},
			} {
				w := do(mux, tc.method, tc.target, tc.body)
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decodeError(w)
				So(body["mensaje"], ShouldEqual, "error interno")
				So(w.Body.String(), ShouldNotContainSubstring, "connection refused")
			}
		})
	})

	Convey("Given dependencies that return a nil list", t, func() {
		mux := newMux(nilListDeps{})

		Convey("Then the list is still encoded as an array", func() {
			w := do(mux, http.MethodGet, "/api/usuarios", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
		})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Given the op-tagged error helpers", t, func() {
		cause := errors.New("boom")

		Convey("Then Wrap keeps the cause and tags the op", func() {
			err := api.Wrap("api.op", cause)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: boom")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})

		Convey("Then NewKind and WrapKind expose the kind", func() {
			So(errors.Is(api.NewKind("api.op", api.ErrBadRequest), api.ErrBadRequest), ShouldBeTrue)

			err := api.WrapKind("api.op", api.ErrUnavailable, cause)
			So(errors.Is(err, api.ErrUnavailable), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(api.WrapKind("api.op", api.ErrUnavailable, nil), api.ErrUnavailable), ShouldBeTrue)
		})

		Convey("Then ErrNotFound from the store is distinct from API kinds", func() {
			So(errors.Is(repository.ErrNotFound, api.ErrBadRequest), ShouldBeFalse)
		})
	})
}
