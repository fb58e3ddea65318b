package domain

import "time"

type InventoryItem struct {
	ID                   int
	PharmacyID           int
	MedicineName         string
	SaltComposition      string
	Category             string
	StockCount           int
	PriceINR             float64
	RequiresPrescription bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (i InventoryItem) InStock() bool {
	return i.StockCount > 0
}
