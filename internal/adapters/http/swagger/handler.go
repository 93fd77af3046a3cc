package swagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	swaggerFiles "github.com/swaggo/files"

	"github.com/Sticlo/ProyectoCobra/pkg/logger"
	"github.com/Sticlo/ProyectoCobra/pkg/metrics"
)

const docsPath = "/api-docs"

// mounted remembers which muxes already carry the docs routes. Entries are
// never removed, so every registered mux lives as long as the process. A
// server registers one mux at startup; tests create a few.
var mounted sync.Map //nolint:gochecknoglobals // registry of muxes

// Register attaches Swagger UI and the OpenAPI document routes to mux.
// Routes:
//
//	GET /api-docs            -> Swagger UI HTML
//	GET /api-docs/{asset}    -> Swagger UI static files
//	GET /openapi.yaml        -> Embedded OpenAPI document
//	GET /openapi.json        -> Same document as JSON
//
// Calling Register again with the same mux is a no-op.
func Register(ctx context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	o := newOptions(opts)

	if _, loaded := mounted.LoadOrStore(mux, struct{}{}); loaded {
		o.logger.Warn(ctx, "swagger already registered on this mux, skipping")
		return
	}

	doc, err := Document()
	if err != nil {
		panic(fmt.Sprintf("embedded openapi document: %v", err))
	}
	specJSON, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("marshal openapi document: %v", err))
	}
	index, err := renderIndex(doc.Info.Title, "/openapi.json")
	if err != nil {
		panic(fmt.Sprintf("render swagger ui: %v", err))
	}

	serveIndex := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(index)
	}

	assets := *swaggerFiles.Handler
	assets.Prefix = docsPath + "/"

	mux.HandleFunc("GET "+docsPath, serveIndex)
	mux.HandleFunc("GET "+docsPath+"/{$}", serveIndex)
	mux.HandleFunc("GET "+docsPath+"/index.html", serveIndex)
	mux.Handle("GET "+docsPath+"/", &assets)

	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})

	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(specJSON)
	})

	metrics.RecordDocsMount()
	o.logger.Info(ctx, "Swagger disponible en "+o.baseURL+docsPath,
		logger.String("title", doc.Info.Title),
		logger.String("version", doc.Info.Version),
	)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="es">
  <head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="/api-docs/swagger-ui.css">
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="/api-docs/swagger-ui-bundle.js"></script>
    <script src="/api-docs/swagger-ui-standalone-preset.js"></script>
    <script>
      window.onload = function () {
        window.ui = SwaggerUIBundle({
          url: {{.SpecURL}},
          dom_id: '#swagger-ui',
          deepLinking: true,
          presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
          layout: 'StandaloneLayout'
        });
      };
    </script>
  </body>
</html>`)) //nolint:gochecknoglobals // parsed once

func renderIndex(title, specURL string) ([]byte, error) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, struct{ Title, SpecURL string }{title, specURL})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServe, err)
	}
	return buf.Bytes(), nil
}
