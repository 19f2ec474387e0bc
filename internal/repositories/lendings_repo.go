package repositories

import (
	"context"
	"errors"
	"time"

	"toolkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LendingRepository persists the lending ledger. Writes are only ever issued
// from inside an inventory service transaction; everything else is a read
// accessor.
type LendingRepository interface {
	Create(ctx context.Context, lending *models.Lending) error
	// GetOpen returns the open lending for a tool, or nil when there is none.
	GetOpen(ctx context.Context, toolBarcode string) (*models.Lending, error)
	GetHistory(ctx context.Context, toolBarcode string, limit, offset int) ([]*models.Lending, error)
	GetOpenForWorker(ctx context.Context, workerBarcode string) ([]*models.Lending, error)
	CountOpenForWorker(ctx context.Context, workerBarcode string) (int, error)
	MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error
	WithTx(tx DB) LendingRepository
}

type lendingRepo struct {
	db DB
}

func NewLendingRepo(db DB) LendingRepository {
	return &lendingRepo{db: db}
}

func (r *lendingRepo) WithTx(tx DB) LendingRepository {
	return &lendingRepo{db: tx}
}

const lendingColumns = `id, tool_barcode, worker_barcode, lent_at, returned_at`

func scanLending(row interface{ Scan(dest ...any) error }) (*models.Lending, error) {
	l := &models.Lending{}
	err := row.Scan(&l.ID, &l.ToolBarcode, &l.WorkerBarcode, &l.LentAt, &l.ReturnedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *lendingRepo) Create(ctx context.Context, lending *models.Lending) error {
	query := `
		INSERT INTO lendings (id, tool_barcode, worker_barcode, lent_at, returned_at)
		VALUES ($1, $2, $3, $4, NULL)
	`
	_, err := r.db.Exec(ctx, query, lending.ID, lending.ToolBarcode, lending.WorkerBarcode, lending.LentAt)
	return err
}

func (r *lendingRepo) GetOpen(ctx context.Context, toolBarcode string) (*models.Lending, error) {
	query := `
		SELECT ` + lendingColumns + `
		FROM lendings
		WHERE tool_barcode = $1 AND returned_at IS NULL
	`
	lending, err := scanLending(r.db.QueryRow(ctx, query, toolBarcode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lending, nil
}

func (r *lendingRepo) GetHistory(ctx context.Context, toolBarcode string, limit, offset int) ([]*models.Lending, error) {
	query := `
		SELECT ` + lendingColumns + `
		FROM lendings
		WHERE tool_barcode = $1
		ORDER BY lent_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, toolBarcode, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lendings []*models.Lending
	for rows.Next() {
		l, err := scanLending(rows)
		if err != nil {
			return nil, err
		}
		lendings = append(lendings, l)
	}
	return lendings, rows.Err()
}

func (r *lendingRepo) GetOpenForWorker(ctx context.Context, workerBarcode string) ([]*models.Lending, error) {
	query := `
		SELECT ` + lendingColumns + `
		FROM lendings
		WHERE worker_barcode = $1 AND returned_at IS NULL
		ORDER BY lent_at DESC
	`
	rows, err := r.db.Query(ctx, query, workerBarcode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lendings []*models.Lending
	for rows.Next() {
		l, err := scanLending(rows)
		if err != nil {
			return nil, err
		}
		lendings = append(lendings, l)
	}
	return lendings, rows.Err()
}

func (r *lendingRepo) CountOpenForWorker(ctx context.Context, workerBarcode string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM lendings WHERE worker_barcode = $1 AND returned_at IS NULL`
	err := r.db.QueryRow(ctx, query, workerBarcode).Scan(&count)
	return count, err
}

func (r *lendingRepo) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error {
	query := `
		UPDATE lendings
		SET returned_at = $1
		WHERE id = $2 AND returned_at IS NULL
	`
	_, err := r.db.Exec(ctx, query, returnedAt, id)
	return err
}
