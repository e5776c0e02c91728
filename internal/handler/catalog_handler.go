package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/response"
)

// CatalogSource serves the generation service's lookup lists.
type CatalogSource interface {
	Catalog(ctx context.Context, name string) (json.RawMessage, error)
}

// CatalogHandler proxies boards, subjects and question types for the generation form.
type CatalogHandler struct {
	source CatalogSource
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(source CatalogSource) *CatalogHandler {
	return &CatalogHandler{source: source}
}

// Serve returns a handler for one named catalog.
// GET /api/v1/catalog/{boards|subjects|question-types}
func (h *CatalogHandler) Serve(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := h.source.Catalog(c.Request.Context(), name)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, raw)
	}
}
