package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/plantops/assetmodeler/pkg/apperrors"
	"github.com/plantops/assetmodeler/pkg/models"
	"github.com/plantops/assetmodeler/pkg/services"
)

// ConvertHandler receives birth-message batches and runs them through
// the conversion pipeline.
type ConvertHandler struct {
	conversionService services.ConversionService
	logger            *zap.Logger
}

// NewConvertHandler creates a new ConvertHandler.
func NewConvertHandler(conversionService services.ConversionService, logger *zap.Logger) *ConvertHandler {
	return &ConvertHandler{
		conversionService: conversionService,
		logger:            logger,
	}
}

// RegisterRoutes registers the convert handler's routes on the given mux.
func (h *ConvertHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/convert", h.Convert)
}

// Convert handles POST /api/convert. The body carries an ordered batch
// of raw birth payload trees under "birthData".
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var event models.ConvertEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	if len(event.BirthData) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "birthData must contain at least one payload")
		return
	}

	summary, err := h.conversionService.Convert(r.Context(), &event)
	if err != nil {
		h.logger.Error("Failed to process birth objects", zap.Error(err))

		if isMalformedInput(err) {
			_ = ErrorResponse(w, http.StatusUnprocessableEntity, "malformed_birth_data", err.Error())
			return
		}
		_ = ErrorResponse(w, http.StatusInternalServerError, "conversion_failed", "failed to process birth data")
		return
	}

	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to encode conversion summary", zap.Error(err))
	}
}

// isMalformedInput distinguishes bad source data, which the caller can
// fix, from destination failures, which it cannot.
func isMalformedInput(err error) bool {
	return errors.Is(err, apperrors.ErrMalformedBirth) ||
		errors.Is(err, apperrors.ErrUnknownType) ||
		errors.Is(err, apperrors.ErrDepthExceeded) ||
		errors.Is(err, apperrors.ErrMissingParameter) ||
		errors.Is(err, apperrors.ErrMalformedTemplate)
}
