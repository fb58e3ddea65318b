package domain

import "time"

type Reservation struct {
	ID           uint
	UserID       int
	PharmacyID   int
	PharmacyName string
	Status       string
	TotalAmount  float64
	PickupCode   string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Lines        []ReservationLine
}

// ReservationLine is a price snapshot taken at creation time. Later price
// changes on the inventory row never affect an existing reservation.
type ReservationLine struct {
	ID            uint
	ReservationID uint
	MedicineName  string
	Quantity      int
	UnitPrice     float64
	LineTotal     float64
}

const (
	ReservationStatusPending   = "pending"
	ReservationStatusPickedUp  = "picked_up"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusExpired   = "expired"
)

func (r Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r Reservation) IsTerminal() bool {
	return r.Status != ReservationStatusPending
}
