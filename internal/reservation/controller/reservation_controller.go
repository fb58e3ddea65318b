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

	"medreserve/internal/dto"
	apperrors "medreserve/internal/errors"
)

type ReservationUseCase interface {
	CreateReservation(ctx context.Context, userID, pharmacyID int, items []dto.ReserveItem) (*dto.ReserveResponse, error)
	ConfirmPickup(ctx context.Context, reservationID uint, suppliedCode string) (*dto.PickupResponse, error)
	CancelReservation(ctx context.Context, reservationID uint, requestingUserID int) (*dto.CancelResponse, error)
	ListReservations(ctx context.Context, userID int) (*dto.ReservationListResponse, error)
}

type ReservationController struct {
	useCase ReservationUseCase
	logger  *zap.Logger
}

func NewReservationController(useCase ReservationUseCase, logger *zap.Logger) *ReservationController {
	return &ReservationController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *ReservationController) HandleReserve(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if validationErr := c.validateReserveRequest(req); validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	resp, err := c.useCase.CreateReservation(r.Context(), req.UserID, req.PharmacyID, req.Medicines)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, resp)
}

func (c *ReservationController) HandlePickup(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	reservationID, ok := c.parseReservationID(w, r)
	if !ok {
		return
	}

	suppliedCode := r.URL.Query().Get("pickup_code")
	if suppliedCode == "" {
		c.writeValidationError(w, "pickup_code is required", apperrors.ValidationDetail{
			Field:   "pickup_code",
			Message: "pickup_code query parameter is required",
		})
		return
	}

	resp, err := c.useCase.ConfirmPickup(r.Context(), reservationID, suppliedCode)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *ReservationController) HandleCancel(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	reservationID, ok := c.parseReservationID(w, r)
	if !ok {
		return
	}

	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil || userID <= 0 {
		c.writeValidationError(w, "invalid user_id", apperrors.ValidationDetail{
			Field:   "user_id",
			Message: "user_id must be a positive integer",
		})
		return
	}

	resp, err := c.useCase.CancelReservation(r.Context(), reservationID, userID)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *ReservationController) HandleListReservations(w http.ResponseWriter, r *http.Request) {
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

	resp, err := c.useCase.ListReservations(r.Context(), userID)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *ReservationController) parseReservationID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "reservationID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.writeValidationError(w, "invalid reservationID", apperrors.ValidationDetail{
			Field:   "reservationID",
			Message: "reservationID must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func (c *ReservationController) validateReserveRequest(req dto.ReserveRequest) error {
	var details []apperrors.ValidationDetail

	if req.UserID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "user_id",
			Message: "user_id must be a positive integer",
		})
	}

	if req.PharmacyID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "pharmacy_id",
			Message: "pharmacy_id must be a positive integer",
		})
	}

	if len(req.Medicines) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "medicines",
			Message: "medicines must not be empty",
		})
	}

	for idx, item := range req.Medicines {
		if strings.TrimSpace(item.Name) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "medicines[" + strconv.Itoa(idx) + "].name",
				Message: "medicine name must not be blank",
			})
		}
		if item.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "medicines[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be at least 1",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (c *ReservationController) handleUseCaseError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeMessage(w, http.StatusNotFound, err.Error())
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeMessage(w, http.StatusForbidden, err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeMessage(w, http.StatusConflict, err.Error())
		return
	}

	if ue, ok := apperrors.IsUnprocessableError(err); ok {
		status := http.StatusUnprocessableEntity
		if ue.Code == apperrors.CodeExpired {
			status = http.StatusGone
		}
		c.writeMessage(w, status, ue.Message)
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		c.writeMessage(w, http.StatusConflict, err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeMessage(w, http.StatusInternalServerError, "an unexpected error occurred")
}

func (c *ReservationController) writeMessage(w http.ResponseWriter, status int, message string) {
	c.writeJSON(w, status, map[string]string{"message": message})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *ReservationController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *ReservationController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
