package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemtrack/cartline-backend/internal/http/response"
	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/repos"
	"github.com/stemtrack/cartline-backend/internal/services"
)

type CartHandler struct {
	log         *logger.Logger
	cartService services.CartService
}

func NewCartHandler(log *logger.Logger, cartService services.CartService) *CartHandler {
	return &CartHandler{
		log:         log.With("handler", "CartHandler"),
		cartService: cartService,
	}
}

func (h *CartHandler) ListCarts(c *gin.Context) {
	carts, err := h.cartService.GetAllCarts(c.Request.Context())
	if err != nil {
		h.log.Error("ListCarts failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "load_carts_failed", err)
		return
	}
	response.RespondOK(c, carts)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_cart_id", err)
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCartNotFound) {
			response.RespondError(c, http.StatusNotFound, "cart_not_found", err)
			return
		}
		h.log.Error("GetCart failed", "cart_id", id, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "load_cart_failed", err)
		return
	}
	response.RespondOK(c, cart)
}

type createCartRequest struct {
	Destination string `json:"destination" binding:"required"`
	Tag         string `json:"tag" binding:"required"`
	BucketType  string `json:"bucketType" binding:"required"`
	MaxPackages int    `json:"maxPackages"`
}

func (h *CartHandler) CreateCart(c *gin.Context) {
	var req createCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	cart, err := h.cartService.CreateCart(c.Request.Context(), services.CartSetup{
		Destination: req.Destination,
		Tag:         req.Tag,
		BucketType:  req.BucketType,
		MaxPackages: req.MaxPackages,
	})
	if err != nil {
		h.log.Error("CreateCart failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "create_cart_failed", err)
		return
	}
	response.RespondCreated(c, cart)
}

type updateCartRequest struct {
	Destination *string `json:"destination"`
	Tag         *string `json:"tag"`
	BucketType  *string `json:"bucketType"`
	MaxPackages *int    `json:"maxPackages"`
}

func (h *CartHandler) UpdateCart(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_cart_id", err)
		return
	}

	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	cart, err := h.cartService.UpdateCart(c.Request.Context(), id, repos.CartUpdate{
		Destination: req.Destination,
		Tag:         req.Tag,
		BucketType:  req.BucketType,
		MaxPackages: req.MaxPackages,
	})
	if err != nil {
		if errors.Is(err, services.ErrCartNotFound) {
			response.RespondError(c, http.StatusNotFound, "cart_not_found", err)
			return
		}
		h.log.Error("UpdateCart failed", "cart_id", id, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "update_cart_failed", err)
		return
	}
	response.RespondOK(c, cart)
}

func (h *CartHandler) DeleteCart(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_cart_id", err)
		return
	}

	if err := h.cartService.DeleteCart(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrCartNotFound) {
			response.RespondError(c, http.StatusNotFound, "cart_not_found", err)
			return
		}
		h.log.Error("DeleteCart failed", "cart_id", id, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "delete_cart_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) ListCartPackages(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_cart_id", err)
		return
	}

	pkgs, err := h.cartService.GetPackagesByCart(c.Request.Context(), cartID)
	if err != nil {
		h.log.Error("ListCartPackages failed", "cart_id", cartID, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "load_packages_failed", err)
		return
	}
	response.RespondOK(c, pkgs)
}
