package swagger

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/middleware"
	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/respond"
	"github.com/Sticlo/ProyectoCobra/internal/domain/usuario"
	"github.com/Sticlo/ProyectoCobra/pkg/logger"
	"github.com/Sticlo/ProyectoCobra/pkg/metrics"
)

// ValidateRequests returns middleware that rejects requests to documented
// operations when their path parameters or body do not match doc.
// Requests to undocumented routes pass through.
func ValidateRequests(doc *openapi3.T, opts ...Option) (func(http.Handler) http.Handler, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	o := newOptions(opts)

	// Route on paths only so any Host is accepted.
	routed := *doc
	routed.Servers = nil
	router, err := gorillamux.NewRouter(&routed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			err = openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				},
			})
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			metrics.RecordContractValidationFailure(operationID(route))

			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				respond.WriteError(w, http.StatusRequestEntityTooLarge, respond.MsgCuerpoGrande, nil)
				return
			}

			reason := describe(err)
			o.logger.Warn(r.Context(), "request rejected by contract",
				logger.String("request_id", middleware.GetRequestID(r.Context())),
				logger.String("operation", operationID(route)),
				logger.String("reason", reason),
			)
			respond.WriteError(w, http.StatusBadRequest, message(err), reason)
		})
	}, nil
}

func operationID(route *routers.Route) string {
	if route == nil || route.Operation == nil || route.Operation.OperationID == "" {
		return "unknown"
	}
	return route.Operation.OperationID
}

// message picks the envelope mensaje. A body missing a required property
// gets the same message the handler uses for absent fields.
func message(err error) string {
	var re *openapi3filter.RequestError
	var se *openapi3.SchemaError
	if errors.As(err, &re) && re.RequestBody != nil &&
		errors.As(err, &se) && se.SchemaField == "required" {
		return usuario.ErrCamposObligatorios.Error()
	}
	return respond.MsgDatosInvalido
}

// describe returns the shortest useful explanation of a validation error.
func describe(err error) string {
	var se *openapi3.SchemaError
	if errors.As(err, &se) && se.Reason != "" {
		return se.Reason
	}
	var re *openapi3filter.RequestError
	if errors.As(err, &re) && re.Reason != "" {
		return re.Reason
	}
	return err.Error()
}
