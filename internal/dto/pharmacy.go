package dto

type PharmacyListEntry struct {
	PharmacyID     int     `json:"pharmacy_id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Locality       string  `json:"locality"`
	OperatingHours string  `json:"operating_hours"`
	Is24Hr         bool    `json:"is_24hr"`
	Phone          *string `json:"phone"`
}

type PharmacyListResponse struct {
	City       string              `json:"city"`
	Pharmacies []PharmacyListEntry `json:"pharmacies"`
	Total      int                 `json:"total"`
}

type InventoryEntry struct {
	MedicineName         string  `json:"medicine_name"`
	SaltComposition      string  `json:"salt_composition"`
	Category             string  `json:"category"`
	Stock                int     `json:"stock"`
	Price                float64 `json:"price"`
	RequiresPrescription bool    `json:"requires_prescription"`
}

type PharmacyInventoryResponse struct {
	Pharmacy   PharmacyListEntry `json:"pharmacy"`
	Inventory  []InventoryEntry  `json:"inventory"`
	TotalItems int               `json:"total_items"`
}
