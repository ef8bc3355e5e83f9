package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemtrack/cartline-backend/internal/catalog"
	"github.com/stemtrack/cartline-backend/internal/http/response"
	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/repos"
	"github.com/stemtrack/cartline-backend/internal/services"
)

type PackageHandler struct {
	log         *logger.Logger
	cartService services.CartService
	catalog     catalog.Catalog
}

func NewPackageHandler(log *logger.Logger, cartService services.CartService, cat catalog.Catalog) *PackageHandler {
	return &PackageHandler{
		log:         log.With("handler", "PackageHandler"),
		cartService: cartService,
		catalog:     cat,
	}
}

type createPackageRequest struct {
	CartID   string `json:"cartId" binding:"required"`
	Variety  string `json:"variety" binding:"required"`
	Length   int    `json:"length" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

func (h *PackageHandler) CreatePackage(c *gin.Context) {
	var req createPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_cart_id", err)
		return
	}
	if !h.catalog.HasVariety(req.Variety) {
		response.RespondError(c, http.StatusBadRequest, "unknown_variety", errors.New("variety is not in the catalog"))
		return
	}
	if !h.catalog.HasStemLength(req.Length) {
		response.RespondError(c, http.StatusBadRequest, "unknown_length", errors.New("stem length is not in the catalog"))
		return
	}

	pkg, err := h.cartService.AddPackage(c.Request.Context(), cartID, req.Variety, req.Length, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCartNotFound):
			response.RespondError(c, http.StatusNotFound, "cart_not_found", err)
		case errors.Is(err, services.ErrCartCompleted):
			response.RespondError(c, http.StatusConflict, "cart_completed", err)
		case errors.Is(err, services.ErrInvalidQuantity):
			response.RespondError(c, http.StatusBadRequest, "invalid_quantity", err)
		default:
			h.log.Error("CreatePackage failed", "cart_id", cartID, "error", err)
			response.RespondError(c, http.StatusInternalServerError, "create_package_failed", err)
		}
		return
	}
	response.RespondCreated(c, pkg)
}

type updatePackageRequest struct {
	Variety  *string `json:"variety"`
	Length   *int    `json:"length"`
	Quantity *int    `json:"quantity"`
}

func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_package_id", err)
		return
	}

	var req updatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	if req.Variety != nil && !h.catalog.HasVariety(*req.Variety) {
		response.RespondError(c, http.StatusBadRequest, "unknown_variety", errors.New("variety is not in the catalog"))
		return
	}
	if req.Length != nil && !h.catalog.HasStemLength(*req.Length) {
		response.RespondError(c, http.StatusBadRequest, "unknown_length", errors.New("stem length is not in the catalog"))
		return
	}

	pkg, err := h.cartService.UpdatePackage(c.Request.Context(), id, repos.PackageUpdate{
		Variety:  req.Variety,
		Length:   req.Length,
		Quantity: req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPackageNotFound):
			response.RespondError(c, http.StatusNotFound, "package_not_found", err)
		case errors.Is(err, services.ErrInvalidQuantity):
			response.RespondError(c, http.StatusBadRequest, "invalid_quantity", err)
		default:
			h.log.Error("UpdatePackage failed", "package_id", id, "error", err)
			response.RespondError(c, http.StatusInternalServerError, "update_package_failed", err)
		}
		return
	}
	response.RespondOK(c, pkg)
}

func (h *PackageHandler) DeletePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_package_id", err)
		return
	}

	if err := h.cartService.DeletePackage(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrPackageNotFound) {
			response.RespondError(c, http.StatusNotFound, "package_not_found", err)
			return
		}
		h.log.Error("DeletePackage failed", "package_id", id, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "delete_package_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
