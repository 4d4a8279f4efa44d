package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/deppfellow/tours-api/internal/server"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
)

// StaticDir holds openapi.json and openapi.html.
const StaticDir = "static"

// OpenAPIHandler serves the API description and its browser UI.
type OpenAPIHandler struct {
	Handler
	dir string
}

func NewOpenAPIHandler(s *server.Server, dir string) *OpenAPIHandler {
	return &OpenAPIHandler{Handler: NewHandler(s), dir: dir}
}

// LoadSpec reads and validates the OpenAPI document at path.
func LoadSpec(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}

// ServeSpec answers with the validated OpenAPI document.
func (h *OpenAPIHandler) ServeSpec(c echo.Context) error {
	doc, err := LoadSpec(c.Request().Context(), filepath.Join(h.dir, "openapi.json"))
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.JSON(http.StatusOK, doc)
}

// ServeOpenAPIUI serves the docs page. It is never cached so document
// edits show up on reload.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	page, err := os.ReadFile(filepath.Join(h.dir, "openapi.html"))
	c.Response().Header().Set("Cache-Control", "no-cache")
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}
	return c.HTMLBlob(http.StatusOK, page)
}
