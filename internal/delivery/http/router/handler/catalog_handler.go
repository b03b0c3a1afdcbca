package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"dealradar/internal/delivery/http/response"
	domainerrors "dealradar/internal/domain/errors"
	"dealradar/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves the read-only views over tracked stores, deals
// and price history.
type CatalogHandler struct {
	uc     usecase.CatalogUsecase
	logger *slog.Logger
}

// NewCatalogHandler is the constructor for CatalogHandler.
func NewCatalogHandler(uc usecase.CatalogUsecase, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: logger,
	}
}

// ListStores returns every store discovered in the requested locality.
func (h *CatalogHandler) ListStores(c echo.Context) error {
	locality := c.QueryParam("locality")
	if locality == "" {
		return domainerrors.ErrValidation.WithDetails("locality query parameter is required")
	}

	stores, err := h.uc.ListStores(c.Request().Context(), locality)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, stores, "")
}

// ListStoreDeals returns a store's currently available listings.
func (h *CatalogHandler) ListStoreDeals(c echo.Context) error {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrValidation.WithDetails("Invalid store ID")
	}

	deals, err := h.uc.ListStoreDeals(c.Request().Context(), storeID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, deals, "")
}

// PriceHistory returns a product's recorded price points, newest first.
func (h *CatalogHandler) PriceHistory(c echo.Context) error {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrValidation.WithDetails("Invalid product ID")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return domainerrors.ErrValidation.WithDetails("limit must be a non-negative integer")
		}
	}

	points, err := h.uc.PriceHistory(c.Request().Context(), productID, limit)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, points, "")
}
