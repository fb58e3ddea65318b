package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medreserve/internal/domain"
	"medreserve/internal/errors"
)

const inventoryColumns = `id, pharmacyId, medicineName, saltComposition, category,
	       stockCount, priceInr, requiresPrescription, createdAt, updatedAt`

type MySQLInventoryRepository struct {
	db *sql.DB
}

func NewMySQLInventoryRepository(db *sql.DB) *MySQLInventoryRepository {
	return &MySQLInventoryRepository{db: db}
}

func scanInventoryItem(row *sql.Row) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(
		&item.ID, &item.PharmacyID, &item.MedicineName, &item.SaltComposition,
		&item.Category, &item.StockCount, &item.PriceINR,
		&item.RequiresPrescription, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MySQLInventoryRepository) FindByPharmacy(ctx context.Context, pharmacyID int) ([]domain.InventoryItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM Inventory
		WHERE pharmacyId = ?
		ORDER BY medicineName`, inventoryColumns)

	rows, err := r.db.QueryContext(ctx, query, pharmacyID)
	if err != nil {
		return nil, fmt.Errorf("querying inventory by pharmacy: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		err := rows.Scan(
			&item.ID, &item.PharmacyID, &item.MedicineName, &item.SaltComposition,
			&item.Category, &item.StockCount, &item.PriceINR,
			&item.RequiresPrescription, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory rows: %w", err)
	}

	return items, nil
}

// FindFirstByNameContains matches the brand name by case-insensitive substring
// and returns the first row, mirroring the search contract.
func (r *MySQLInventoryRepository) FindFirstByNameContains(ctx context.Context, pharmacyID int, query string) (*domain.InventoryItem, error) {
	stmt := fmt.Sprintf(`
		SELECT %s
		FROM Inventory
		WHERE pharmacyId = ?
		  AND LOWER(medicineName) LIKE CONCAT('%%', LOWER(?), '%%')
		ORDER BY id
		LIMIT 1`, inventoryColumns)

	item, err := scanInventoryItem(r.db.QueryRowContext(ctx, stmt, pharmacyID, query))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no inventory matching %q at pharmacy %d", query, pharmacyID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying inventory by name: %w", err)
	}
	return item, nil
}

// FindFirstBySaltContains is the composition fallback for the search contract.
func (r *MySQLInventoryRepository) FindFirstBySaltContains(ctx context.Context, pharmacyID int, query string) (*domain.InventoryItem, error) {
	stmt := fmt.Sprintf(`
		SELECT %s
		FROM Inventory
		WHERE pharmacyId = ?
		  AND LOWER(saltComposition) LIKE CONCAT('%%', LOWER(?), '%%')
		ORDER BY id
		LIMIT 1`, inventoryColumns)

	item, err := scanInventoryItem(r.db.QueryRowContext(ctx, stmt, pharmacyID, query))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no inventory matching composition %q at pharmacy %d", query, pharmacyID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying inventory by composition: %w", err)
	}
	return item, nil
}

func (r *MySQLInventoryRepository) FindByExactNameForUpdate(ctx context.Context, tx *sql.Tx, pharmacyID int, name string) (*domain.InventoryItem, error) {
	stmt := fmt.Sprintf(`
		SELECT %s
		FROM Inventory
		WHERE pharmacyId = ?
		  AND medicineName = ?
		FOR UPDATE`, inventoryColumns)

	item, err := scanInventoryItem(tx.QueryRowContext(ctx, stmt, pharmacyID, name))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("medicine %q not stocked at pharmacy %d", name, pharmacyID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying inventory for update: %w", err)
	}
	return item, nil
}

// DecrementStock applies a conditional decrement. It reports false when the
// guard fails, i.e. the row no longer holds enough stock.
func (r *MySQLInventoryRepository) DecrementStock(ctx context.Context, tx *sql.Tx, itemID int, quantity int) (bool, error) {
	query := `
		UPDATE Inventory
		SET stockCount = stockCount - ?, updatedAt = NOW()
		WHERE id = ? AND stockCount >= ?
	`

	result, err := tx.ExecContext(ctx, query, quantity, itemID, quantity)
	if err != nil {
		return false, fmt.Errorf("decrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// IncrementStockByName restores reserved stock during cancellation or expiry.
// It reports false when the inventory row no longer exists.
func (r *MySQLInventoryRepository) IncrementStockByName(ctx context.Context, tx *sql.Tx, pharmacyID int, name string, quantity int) (bool, error) {
	query := `
		UPDATE Inventory
		SET stockCount = stockCount + ?, updatedAt = NOW()
		WHERE pharmacyId = ? AND medicineName = ?
	`

	result, err := tx.ExecContext(ctx, query, quantity, pharmacyID, name)
	if err != nil {
		return false, fmt.Errorf("incrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
