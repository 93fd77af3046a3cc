// Package swagger owns the API contract: the embedded OpenAPI document, the
// interactive docs under /api-docs and request validation against it.
package swagger

import (
	"context"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// Load parses and validates the embedded OpenAPI document.
func Load(ctx context.Context) (*openapi3.T, error) {
	return LoadFrom(ctx, OpenAPI)
}

// LoadFrom parses and validates an OpenAPI document.
func LoadFrom(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return doc, nil
}

// document caches the embedded contract. It never changes at runtime.
var document = sync.OnceValues(func() (*openapi3.T, error) { //nolint:gochecknoglobals // parsed once per process
	return Load(context.Background())
})

// Document returns the parsed embedded contract.
func Document() (*openapi3.T, error) {
	return document()
}
