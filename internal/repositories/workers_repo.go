package repositories

import (
	"context"

	"toolkeeper/internal/models"
)

type WorkerRepository interface {
	Create(ctx context.Context, worker *models.Worker) error
	GetByBarcode(ctx context.Context, barcode string) (*models.Worker, error)
	List(ctx context.Context, includeDeleted bool, limit, offset int) ([]*models.Worker, error)
	ListWithLendings(ctx context.Context, limit, offset int) ([]*models.WorkerWithLendings, error)
	ListDeleted(ctx context.Context, limit, offset int) ([]*models.Worker, error)
	Update(ctx context.Context, worker *models.Worker) error
	UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string) error
	SoftDelete(ctx context.Context, barcode string) error
	// Restore reports whether a trashed row was revived; an active or
	// unknown barcode matches nothing.
	Restore(ctx context.Context, barcode string) (bool, error)
	ExistsActive(ctx context.Context, barcode string) (bool, error)
	WithTx(tx DB) WorkerRepository
}

type workerRepo struct {
	db DB
}

func NewWorkerRepo(db DB) WorkerRepository {
	return &workerRepo{db: db}
}

func (r *workerRepo) WithTx(tx DB) WorkerRepository {
	return &workerRepo{db: tx}
}

const workerColumns = `barcode, first_name, last_name, department, email, deleted, created_at, modified_at, deleted_at`

func scanWorker(row interface{ Scan(dest ...any) error }) (*models.Worker, error) {
	w := &models.Worker{}
	err := row.Scan(&w.Barcode, &w.FirstName, &w.LastName, &w.Department, &w.Email,
		&w.Deleted, &w.CreatedAt, &w.ModifiedAt, &w.DeletedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *workerRepo) Create(ctx context.Context, worker *models.Worker) error {
	query := `
		INSERT INTO workers (barcode, first_name, last_name, department, email, deleted, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, worker.Barcode, worker.FirstName, worker.LastName, worker.Department, worker.Email)
	return err
}

func (r *workerRepo) GetByBarcode(ctx context.Context, barcode string) (*models.Worker, error) {
	query := `
		SELECT ` + workerColumns + `
		FROM workers
		WHERE barcode = $1 AND deleted = FALSE
	`
	return scanWorker(r.db.QueryRow(ctx, query, barcode))
}

func (r *workerRepo) List(ctx context.Context, includeDeleted bool, limit, offset int) ([]*models.Worker, error) {
	query := `
		SELECT ` + workerColumns + `
		FROM workers
		WHERE deleted = FALSE OR $1
		ORDER BY last_name, first_name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, includeDeleted, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []*models.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// ListWithLendings counts each worker's open lendings alongside the record.
func (r *workerRepo) ListWithLendings(ctx context.Context, limit, offset int) ([]*models.WorkerWithLendings, error) {
	query := `
		SELECT w.barcode, w.first_name, w.last_name, w.department, w.email,
		       w.deleted, w.created_at, w.modified_at, w.deleted_at,
		       COUNT(l.id) FILTER (WHERE l.returned_at IS NULL)
		FROM workers w
		LEFT JOIN lendings l ON l.worker_barcode = w.barcode
		WHERE w.deleted = FALSE
		GROUP BY w.barcode
		ORDER BY w.last_name, w.first_name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []*models.WorkerWithLendings
	for rows.Next() {
		w := &models.WorkerWithLendings{}
		err := rows.Scan(&w.Barcode, &w.FirstName, &w.LastName, &w.Department, &w.Email,
			&w.Deleted, &w.CreatedAt, &w.ModifiedAt, &w.DeletedAt, &w.ActiveLendings)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (r *workerRepo) ListDeleted(ctx context.Context, limit, offset int) ([]*models.Worker, error) {
	query := `
		SELECT ` + workerColumns + `
		FROM workers
		WHERE deleted = TRUE
		ORDER BY deleted_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []*models.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (r *workerRepo) Update(ctx context.Context, worker *models.Worker) error {
	query := `
		UPDATE workers
		SET first_name = $1, last_name = $2, department = $3, email = $4, modified_at = NOW()
		WHERE barcode = $5 AND deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, worker.FirstName, worker.LastName, worker.Department, worker.Email, worker.Barcode)
	return err
}

func (r *workerRepo) UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string) error {
	query := `
		UPDATE workers
		SET barcode = $1, modified_at = NOW()
		WHERE barcode = $2
	`
	_, err := r.db.Exec(ctx, query, newBarcode, oldBarcode)
	return err
}

func (r *workerRepo) SoftDelete(ctx context.Context, barcode string) error {
	query := `
		UPDATE workers
		SET deleted = TRUE, deleted_at = NOW(), modified_at = NOW()
		WHERE barcode = $1 AND deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, barcode)
	return err
}

func (r *workerRepo) Restore(ctx context.Context, barcode string) (bool, error) {
	query := `
		UPDATE workers
		SET deleted = FALSE, deleted_at = NULL, modified_at = NOW()
		WHERE barcode = $1 AND deleted = TRUE
	`
	tag, err := r.db.Exec(ctx, query, barcode)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *workerRepo) ExistsActive(ctx context.Context, barcode string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM workers WHERE barcode = $1 AND deleted = FALSE)`
	err := r.db.QueryRow(ctx, query, barcode).Scan(&exists)
	return exists, err
}
