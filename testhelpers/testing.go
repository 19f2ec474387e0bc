package testhelpers

import (
	"context"
	"os"
	"testing"

	"toolkeeper/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing.
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=toolkeeper_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestTool inserts a test tool and returns it.
func SetupTestTool(t *testing.T, db *TestDB, barcode string) *models.Tool {
	t.Helper()

	tool := &models.Tool{
		Barcode: barcode,
		Name:    "Test Tool",
		Status:  models.ToolStatusAvailable,
	}
	query := `
		INSERT INTO tools (barcode, name, status, deleted, created_at, modified_at)
		VALUES ($1, $2, $3, FALSE, NOW(), NOW())
		ON CONFLICT (barcode) DO NOTHING
	`
	if _, err := db.Pool.Exec(context.Background(), query, tool.Barcode, tool.Name, tool.Status); err != nil {
		t.Fatalf("Failed to create test tool: %v", err)
	}
	return tool
}

// SetupTestWorker inserts a test worker and returns it.
func SetupTestWorker(t *testing.T, db *TestDB, barcode string) *models.Worker {
	t.Helper()

	worker := &models.Worker{
		Barcode:   barcode,
		FirstName: "Test",
		LastName:  "Worker",
	}
	query := `
		INSERT INTO workers (barcode, first_name, last_name, deleted, created_at, modified_at)
		VALUES ($1, $2, $3, FALSE, NOW(), NOW())
		ON CONFLICT (barcode) DO NOTHING
	`
	if _, err := db.Pool.Exec(context.Background(), query, worker.Barcode, worker.FirstName, worker.LastName); err != nil {
		t.Fatalf("Failed to create test worker: %v", err)
	}
	return worker
}

// SetupTestConsumable inserts a test consumable and returns it.
func SetupTestConsumable(t *testing.T, db *TestDB, barcode string, quantity, minQuantity int) *models.Consumable {
	t.Helper()

	consumable := &models.Consumable{
		Barcode:     barcode,
		Name:        "Test Consumable",
		Quantity:    quantity,
		MinQuantity: minQuantity,
	}
	query := `
		INSERT INTO consumables (barcode, name, quantity, min_quantity, deleted, created_at, modified_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		ON CONFLICT (barcode) DO NOTHING
	`
	if _, err := db.Pool.Exec(context.Background(), query,
		consumable.Barcode, consumable.Name, consumable.Quantity, consumable.MinQuantity); err != nil {
		t.Fatalf("Failed to create test consumable: %v", err)
	}
	return consumable
}
