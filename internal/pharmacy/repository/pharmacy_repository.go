package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medreserve/internal/domain"
	"medreserve/internal/errors"
)

type MySQLPharmacyRepository struct {
	db *sql.DB
}

func NewMySQLPharmacyRepository(db *sql.DB) *MySQLPharmacyRepository {
	return &MySQLPharmacyRepository{db: db}
}

func (r *MySQLPharmacyRepository) FindByID(ctx context.Context, id int) (*domain.Pharmacy, error) {
	query := `
		SELECT id, name, city, locality, address, phone, latitude, longitude,
		       operatingHours, is24hr, isActive, createdAt
		FROM Pharmacy
		WHERE id = ?
	`

	var p domain.Pharmacy
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.City, &p.Locality, &p.Address, &p.Phone,
		&p.Latitude, &p.Longitude, &p.OperatingHours, &p.Is24Hr, &p.IsActive,
		&p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("pharmacy with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying pharmacy by id: %w", err)
	}

	return &p, nil
}

func (r *MySQLPharmacyRepository) FindActiveByCity(ctx context.Context, city string) ([]domain.Pharmacy, error) {
	query := `
		SELECT id, name, city, locality, address, phone, latitude, longitude,
		       operatingHours, is24hr, isActive, createdAt
		FROM Pharmacy
		WHERE city = ?
		  AND isActive = 1
	`

	rows, err := r.db.QueryContext(ctx, query, city)
	if err != nil {
		return nil, fmt.Errorf("querying pharmacies by city: %w", err)
	}
	defer rows.Close()

	var pharmacies []domain.Pharmacy
	for rows.Next() {
		var p domain.Pharmacy
		err := rows.Scan(
			&p.ID, &p.Name, &p.City, &p.Locality, &p.Address, &p.Phone,
			&p.Latitude, &p.Longitude, &p.OperatingHours, &p.Is24Hr, &p.IsActive,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning pharmacy row: %w", err)
		}
		pharmacies = append(pharmacies, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pharmacy rows: %w", err)
	}

	return pharmacies, nil
}
