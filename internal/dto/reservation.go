package dto

import "time"

type ReserveRequest struct {
	UserID     int           `json:"user_id"`
	PharmacyID int           `json:"pharmacy_id"`
	Medicines  []ReserveItem `json:"medicines"`
}

type ReserveItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type ReserveResponse struct {
	ReservationID uint      `json:"reservation_id"`
	PickupCode    string    `json:"pickup_code"`
	ExpiresAt     time.Time `json:"expires_at"`
	TotalAmount   float64   `json:"total_amount"`
	PharmacyName  string    `json:"pharmacy_name"`
}

type PickupResponse struct {
	Success   bool    `json:"success"`
	TotalPaid float64 `json:"total_paid"`
}

type CancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ReservationLineDTO struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type ReservationSummary struct {
	ReservationID uint                 `json:"reservation_id"`
	PharmacyID    int                  `json:"pharmacy_id"`
	PharmacyName  string               `json:"pharmacy_name"`
	Status        string               `json:"status"`
	TotalAmount   float64              `json:"total_amount"`
	PickupCode    string               `json:"pickup_code,omitempty"`
	ExpiresAt     time.Time            `json:"expires_at"`
	CreatedAt     time.Time            `json:"created_at"`
	Medicines     []ReservationLineDTO `json:"medicines"`
}

type ReservationListResponse struct {
	Success      bool                 `json:"success"`
	Reservations []ReservationSummary `json:"reservations"`
}
