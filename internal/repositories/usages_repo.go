package repositories

import (
	"context"
	"time"

	"toolkeeper/internal/models"
)

// UsageRepository persists the consumption ledger. Rows are append-only;
// writes happen only inside inventory service transactions.
type UsageRepository interface {
	Create(ctx context.Context, usage *models.ConsumableUsage) error
	GetHistory(ctx context.Context, consumableBarcode string, limit, offset int) ([]*models.ConsumableUsage, error)
	GetUsageInWindow(ctx context.Context, consumableBarcode string, since time.Time) ([]*models.ConsumableUsage, error)
	CountForWorker(ctx context.Context, workerBarcode string) (int, error)
	WithTx(tx DB) UsageRepository
}

type usageRepo struct {
	db DB
}

func NewUsageRepo(db DB) UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) WithTx(tx DB) UsageRepository {
	return &usageRepo{db: tx}
}

const usageColumns = `id, consumable_barcode, worker_barcode, quantity, used_at`

func scanUsage(row interface{ Scan(dest ...any) error }) (*models.ConsumableUsage, error) {
	u := &models.ConsumableUsage{}
	err := row.Scan(&u.ID, &u.ConsumableBarcode, &u.WorkerBarcode, &u.Quantity, &u.UsedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *usageRepo) Create(ctx context.Context, usage *models.ConsumableUsage) error {
	query := `
		INSERT INTO consumable_usages (id, consumable_barcode, worker_barcode, quantity, used_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, usage.ID, usage.ConsumableBarcode, usage.WorkerBarcode, usage.Quantity, usage.UsedAt)
	return err
}

func (r *usageRepo) GetHistory(ctx context.Context, consumableBarcode string, limit, offset int) ([]*models.ConsumableUsage, error) {
	query := `
		SELECT ` + usageColumns + `
		FROM consumable_usages
		WHERE consumable_barcode = $1
		ORDER BY used_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, consumableBarcode, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []*models.ConsumableUsage
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

// GetUsageInWindow serves forecast and reporting reads.
func (r *usageRepo) GetUsageInWindow(ctx context.Context, consumableBarcode string, since time.Time) ([]*models.ConsumableUsage, error) {
	query := `
		SELECT ` + usageColumns + `
		FROM consumable_usages
		WHERE consumable_barcode = $1 AND used_at >= $2
		ORDER BY used_at DESC
	`
	rows, err := r.db.Query(ctx, query, consumableBarcode, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []*models.ConsumableUsage
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

func (r *usageRepo) CountForWorker(ctx context.Context, workerBarcode string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM consumable_usages WHERE worker_barcode = $1`
	err := r.db.QueryRow(ctx, query, workerBarcode).Scan(&count)
	return count, err
}
