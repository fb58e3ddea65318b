package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"medreserve/internal/config"
	"medreserve/internal/dto"
	apperrors "medreserve/internal/errors"
)

type SearchMedicinesUseCase interface {
	SearchMedicines(ctx context.Context, medicineNames []string, originLat, originLon, maxDistanceKm float64, city string) (*dto.SearchResponse, error)
}

type RecommendUseCase interface {
	Recommend(ctx context.Context, medicines []string, city string) (string, error)
}

type SearchController struct {
	searchUC    SearchMedicinesUseCase
	recommendUC RecommendUseCase
	searchCfg   config.SearchConfig
	logger      *zap.Logger
}

func NewSearchController(
	searchUC SearchMedicinesUseCase,
	recommendUC RecommendUseCase,
	searchCfg config.SearchConfig,
	logger *zap.Logger,
) *SearchController {
	return &SearchController{
		searchUC:    searchUC,
		recommendUC: recommendUC,
		searchCfg:   searchCfg,
		logger:      logger,
	}
}

func (c *SearchController) HandleSearch(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if validationErr := c.validateSearchRequest(req); validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if req.MaxDistanceKm == 0 {
		req.MaxDistanceKm = c.searchCfg.MaxDistanceKm
	}
	if req.City == "" {
		req.City = c.searchCfg.DefaultCity
	}

	// Search origin is the configured city center; the request carries no
	// caller coordinates.
	resp, err := c.searchUC.SearchMedicines(
		r.Context(), req.Medicines,
		c.searchCfg.DefaultLatitude, c.searchCfg.DefaultLongitude,
		req.MaxDistanceKm, req.City,
	)
	if err != nil {
		logger.Error("medicine search failed", zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "an unexpected error occurred",
		})
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *SearchController) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		c.writeValidationError(w, "invalid userID", apperrors.ValidationDetail{
			Field:   "userID",
			Message: "userID must be a positive integer",
		})
		return
	}

	var medicines []string
	for _, name := range strings.Split(r.URL.Query().Get("medicines"), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			medicines = append(medicines, name)
		}
	}
	if len(medicines) == 0 {
		c.writeValidationError(w, "at least one medicine name is required", apperrors.ValidationDetail{
			Field:   "medicines",
			Message: "medicines must be a non-empty comma-separated list",
		})
		return
	}

	city := r.URL.Query().Get("city")
	if city == "" {
		city = c.searchCfg.DefaultCity
	}

	recommendations, err := c.recommendUC.Recommend(r.Context(), medicines, city)
	if err != nil {
		logger.Error("recommendations failed", zap.Error(err), zap.Int("userId", userID))
		c.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "an unexpected error occurred",
		})
		return
	}

	c.writeJSON(w, http.StatusOK, dto.RecommendationsResponse{
		Success:           true,
		UserID:            userID,
		MedicinesSearched: medicines,
		Recommendations:   recommendations,
	})
}

func (c *SearchController) validateSearchRequest(req dto.SearchRequest) error {
	var details []apperrors.ValidationDetail

	if len(req.Medicines) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "medicines",
			Message: "medicines must not be empty",
		})
	}

	for idx, name := range req.Medicines {
		if strings.TrimSpace(name) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "medicines[" + strconv.Itoa(idx) + "]",
				Message: "medicine name must not be blank",
			})
		}
	}

	if req.MaxDistanceKm < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "max_distance_km",
			Message: "max_distance_km must be non-negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *SearchController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *SearchController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
