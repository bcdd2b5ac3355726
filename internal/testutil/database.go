package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the test database. It expects a MySQL instance on
// localhost:3306 with a database named 'pixelpro_test' and skips the test
// when none is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/pixelpro_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	ResetTestTables(t, db)
	db.Close()
}

// ResetTestTables empties the test tables, children before parents.
func ResetTestTables(t *testing.T, db *sql.DB) {
	tables := []string{"Invoices", "Payments", "OrderItems", "Orders", "Addresses", "Customers", "Products"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// SetupTestTables creates the schema used by the repository tests.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createCustomersTable := `
	CREATE TABLE IF NOT EXISTS Customers (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(150) NOT NULL UNIQUE,
		firstName VARCHAR(100) NOT NULL,
		lastName VARCHAR(100) NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createAddressesTable := `
	CREATE TABLE IF NOT EXISTS Addresses (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customerId INT UNSIGNED NOT NULL,
		addressLine VARCHAR(255) NOT NULL,
		city VARCHAR(100) NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_customer (customerId)
	)`

	createProductsTable := `
	CREATE TABLE IF NOT EXISTS Products (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		sku VARCHAR(50) NOT NULL DEFAULT '',
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(10,2) NOT NULL,
		qtyStock INT NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		code VARCHAR(20) NOT NULL UNIQUE,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		deliveryType VARCHAR(20) NOT NULL,
		customerId INT UNSIGNED NOT NULL,
		shippingAddressId INT UNSIGNED,
		subtotal DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		shippingCost DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		discount DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		total DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_customer (customerId),
		INDEX idx_status (status)
	)`

	createOrderItemsTable := `
	CREATE TABLE IF NOT EXISTS OrderItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		productId INT UNSIGNED NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		unitPrice DECIMAL(10,2) NOT NULL,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId),
		INDEX idx_product (productId)
	)`

	createPaymentsTable := `
	CREATE TABLE IF NOT EXISTS Payments (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		currency VARCHAR(3) NOT NULL DEFAULT 'PEN',
		method VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		transactionId VARCHAR(100) NOT NULL UNIQUE,
		paidAt DATETIME,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`

	createInvoicesTable := `
	CREATE TABLE IF NOT EXISTS Invoices (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL UNIQUE,
		number VARCHAR(30) NOT NULL,
		documentHash CHAR(64) NOT NULL,
		issuedAt DATETIME NOT NULL,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Customers", createCustomersTable},
		{"Addresses", createAddressesTable},
		{"Products", createProductsTable},
		{"Orders", createOrdersTable},
		{"OrderItems", createOrderItemsTable},
		{"Payments", createPaymentsTable},
		{"Invoices", createInvoicesTable},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
