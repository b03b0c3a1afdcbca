package handler

import (
	"log/slog"
	"net/http"

	"dealradar/internal/delivery/http/response"
	domainerrors "dealradar/internal/domain/errors"
	"dealradar/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// IngestHandler exposes manual control over the ingestion pipeline.
type IngestHandler struct {
	uc     usecase.IngestUsecase
	logger *slog.Logger
}

// NewIngestHandler is the constructor for IngestHandler.
func NewIngestHandler(uc usecase.IngestUsecase, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		uc:     uc,
		logger: logger,
	}
}

// Refresh triggers one ingestion cycle immediately, outside the polling
// schedule, and returns its counters. Overlap with a scheduled cycle is
// tolerated.
func (h *IngestHandler) Refresh(c echo.Context) error {
	result, err := h.uc.RunCycle(c.Request().Context())
	if err != nil {
		h.logger.Error("manual ingestion cycle failed", slog.Any("error", err))

		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}

		return domainerrors.ErrCycleFailed.WithDetails(err.Error())
	}

	return response.Success(c, http.StatusOK, result, "Ingestion cycle completed")
}
