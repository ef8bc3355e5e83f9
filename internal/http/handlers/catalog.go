package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stemtrack/cartline-backend/internal/catalog"
	"github.com/stemtrack/cartline-backend/internal/http/response"
)

// CatalogHandler serves the enumerated option sets the forms render.
type CatalogHandler struct {
	catalog catalog.Catalog
}

func NewCatalogHandler(cat catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	response.RespondOK(c, h.catalog)
}
