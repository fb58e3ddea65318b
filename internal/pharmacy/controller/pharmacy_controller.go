package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"medreserve/internal/domain"
	"medreserve/internal/dto"
	apperrors "medreserve/internal/errors"
)

type PharmacyRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Pharmacy, error)
	FindActiveByCity(ctx context.Context, city string) ([]domain.Pharmacy, error)
}

type InventoryRepository interface {
	FindByPharmacy(ctx context.Context, pharmacyID int) ([]domain.InventoryItem, error)
}

type PharmacyController struct {
	pharmacyRepo  PharmacyRepository
	inventoryRepo InventoryRepository
	defaultCity   string
	logger        *zap.Logger
}

func NewPharmacyController(
	pharmacyRepo PharmacyRepository,
	inventoryRepo InventoryRepository,
	defaultCity string,
	logger *zap.Logger,
) *PharmacyController {
	return &PharmacyController{
		pharmacyRepo:  pharmacyRepo,
		inventoryRepo: inventoryRepo,
		defaultCity:   defaultCity,
		logger:        logger,
	}
}

func (c *PharmacyController) HandleList(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		city = c.defaultCity
	}

	pharmacies, err := c.pharmacyRepo.FindActiveByCity(r.Context(), city)
	if err != nil {
		c.logger.Error("listing pharmacies failed", zap.Error(err), zap.String("city", city))
		c.writeMessage(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	entries := make([]dto.PharmacyListEntry, 0, len(pharmacies))
	for _, p := range pharmacies {
		entries = append(entries, toListEntry(p))
	}

	c.writeJSON(w, http.StatusOK, dto.PharmacyListResponse{
		City:       city,
		Pharmacies: entries,
		Total:      len(entries),
	})
}

func (c *PharmacyController) HandleInventory(w http.ResponseWriter, r *http.Request) {
	pharmacyID, err := strconv.Atoi(chi.URLParam(r, "pharmacyID"))
	if err != nil || pharmacyID <= 0 {
		c.writeMessage(w, http.StatusBadRequest, "pharmacyID must be a positive integer")
		return
	}

	pharmacy, err := c.pharmacyRepo.FindByID(r.Context(), pharmacyID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			c.writeMessage(w, http.StatusNotFound, err.Error())
			return
		}
		c.logger.Error("loading pharmacy failed", zap.Error(err), zap.Int("pharmacyId", pharmacyID))
		c.writeMessage(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	items, err := c.inventoryRepo.FindByPharmacy(r.Context(), pharmacyID)
	if err != nil {
		c.logger.Error("loading inventory failed", zap.Error(err), zap.Int("pharmacyId", pharmacyID))
		c.writeMessage(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	entries := make([]dto.InventoryEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, dto.InventoryEntry{
			MedicineName:         item.MedicineName,
			SaltComposition:      item.SaltComposition,
			Category:             item.Category,
			Stock:                item.StockCount,
			Price:                item.PriceINR,
			RequiresPrescription: item.RequiresPrescription,
		})
	}

	c.writeJSON(w, http.StatusOK, dto.PharmacyInventoryResponse{
		Pharmacy:   toListEntry(*pharmacy),
		Inventory:  entries,
		TotalItems: len(entries),
	})
}

func toListEntry(p domain.Pharmacy) dto.PharmacyListEntry {
	return dto.PharmacyListEntry{
		PharmacyID:     p.ID,
		Name:           p.Name,
		Address:        p.Address,
		Locality:       p.Locality,
		OperatingHours: p.OperatingHours,
		Is24Hr:         p.Is24Hr,
		Phone:          p.Phone,
	}
}

func (c *PharmacyController) writeMessage(w http.ResponseWriter, status int, message string) {
	c.writeJSON(w, status, map[string]string{"message": message})
}

func (c *PharmacyController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
