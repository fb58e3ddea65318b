package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. Tests are skipped when no
// MySQL instance named 'medreserve_test' is reachable on localhost:3306.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/medreserve_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"ReservationItems", "Reservations", "Inventory", "Pharmacy"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

func SetupTestTables(t *testing.T, db *sql.DB) {
	createPharmacyTable := `
	CREATE TABLE IF NOT EXISTS Pharmacy (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		city VARCHAR(50) NOT NULL,
		locality VARCHAR(100) NOT NULL DEFAULT '',
		address VARCHAR(300) NOT NULL DEFAULT '',
		phone VARCHAR(30),
		latitude DOUBLE NOT NULL DEFAULT 0,
		longitude DOUBLE NOT NULL DEFAULT 0,
		operatingHours VARCHAR(100) NOT NULL DEFAULT '',
		is24hr TINYINT(1) NOT NULL DEFAULT 0,
		isActive TINYINT(1) NOT NULL DEFAULT 1,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_city (city),
		INDEX idx_active (isActive)
	)`

	createInventoryTable := `
	CREATE TABLE IF NOT EXISTS Inventory (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		pharmacyId INT NOT NULL,
		medicineName VARCHAR(200) NOT NULL,
		saltComposition VARCHAR(300) NOT NULL DEFAULT '',
		category VARCHAR(100) NOT NULL DEFAULT '',
		stockCount INT NOT NULL DEFAULT 0,
		priceInr DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		requiresPrescription TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (pharmacyId) REFERENCES Pharmacy(id) ON DELETE CASCADE,
		INDEX idx_pharmacy (pharmacyId),
		INDEX idx_medicine (medicineName)
	)`

	createReservationsTable := `
	CREATE TABLE IF NOT EXISTS Reservations (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		userId INT NOT NULL,
		pharmacyId INT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		totalAmount DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		pickupCode VARCHAR(6) NOT NULL,
		expiresAt DATETIME NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (pharmacyId) REFERENCES Pharmacy(id),
		INDEX idx_user (userId),
		INDEX idx_status_expiry (status, expiresAt)
	)`

	createReservationItemsTable := `
	CREATE TABLE IF NOT EXISTS ReservationItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		reservationId INT UNSIGNED NOT NULL,
		medicineName VARCHAR(200) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		unitPrice DECIMAL(10,2) NOT NULL,
		lineTotal DECIMAL(10,2) NOT NULL,
		FOREIGN KEY (reservationId) REFERENCES Reservations(id) ON DELETE CASCADE,
		INDEX idx_reservation (reservationId)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Pharmacy", createPharmacyTable},
		{"Inventory", createInventoryTable},
		{"Reservations", createReservationsTable},
		{"ReservationItems", createReservationItemsTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}

// InsertPharmacy seeds one pharmacy row and returns its id.
func InsertPharmacy(t *testing.T, db *sql.DB, name, city string, lat, lon float64) int {
	result, err := db.Exec(`
		INSERT INTO Pharmacy (name, city, locality, address, latitude, longitude, operatingHours, isActive)
		VALUES (?, ?, 'Test Locality', 'Test Address', ?, ?, '9 AM - 9 PM', 1)
	`, name, city, lat, lon)
	if err != nil {
		t.Fatalf("failed to insert pharmacy: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to get pharmacy id: %v", err)
	}
	return int(id)
}

// InsertInventory seeds one inventory row and returns its id.
func InsertInventory(t *testing.T, db *sql.DB, pharmacyID int, name, salt string, stock int, price float64) int {
	result, err := db.Exec(`
		INSERT INTO Inventory (pharmacyId, medicineName, saltComposition, stockCount, priceInr)
		VALUES (?, ?, ?, ?, ?)
	`, pharmacyID, name, salt, stock, price)
	if err != nil {
		t.Fatalf("failed to insert inventory: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to get inventory id: %v", err)
	}
	return int(id)
}

// StockCount reads the current stock of an inventory row.
func StockCount(t *testing.T, db *sql.DB, itemID int) int {
	var stock int
	if err := db.QueryRow("SELECT stockCount FROM Inventory WHERE id = ?", itemID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}
