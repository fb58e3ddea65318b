package domain

import "time"

type Pharmacy struct {
	ID             int
	Name           string
	City           string
	Locality       string
	Address        string
	Phone          *string
	Latitude       float64
	Longitude      float64
	OperatingHours string
	Is24Hr         bool
	IsActive       bool
	CreatedAt      time.Time
}
