package dto

type SearchRequest struct {
	UserID        int      `json:"user_id"`
	Medicines     []string `json:"medicines"`
	MaxDistanceKm float64  `json:"max_distance_km"`
	City          string   `json:"city"`
}

type MedicineItemDTO struct {
	Name                 string   `json:"name"`
	Salt                 *string  `json:"salt"`
	Price                *float64 `json:"price"`
	Stock                int      `json:"stock"`
	InStock              bool     `json:"in_stock"`
	RequiresPrescription bool     `json:"requires_prescription"`
}

type PharmacyResultDTO struct {
	PharmacyID     int               `json:"pharmacy_id"`
	Name           string            `json:"name"`
	Address        string            `json:"address"`
	Locality       string            `json:"locality"`
	DistanceKm     float64           `json:"distance_km"`
	OperatingHours string            `json:"operating_hours"`
	Is24Hr         bool              `json:"is_24hr"`
	Phone          *string           `json:"phone"`
	Medicines      []MedicineItemDTO `json:"medicines"`
	AllAvailable   bool              `json:"all_available"`
	AvailableCount int               `json:"available_count"`
}

type SearchResponse struct {
	Success                 bool                `json:"success"`
	Pharmacies              []PharmacyResultDTO `json:"pharmacies"`
	AllFound                bool                `json:"all_found"`
	MissingMedicines        []string            `json:"missing_medicines"`
	TotalPharmaciesSearched int                 `json:"total_pharmacies_searched"`
}

type RecommendationsResponse struct {
	Success           bool     `json:"success"`
	UserID            int      `json:"user_id"`
	MedicinesSearched []string `json:"medicines_searched"`
	Recommendations   string   `json:"recommendations"`
}
