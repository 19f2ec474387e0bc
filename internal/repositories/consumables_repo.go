package repositories

import (
	"context"

	"toolkeeper/internal/models"
)

type ConsumableRepository interface {
	Create(ctx context.Context, consumable *models.Consumable) error
	GetByBarcode(ctx context.Context, barcode string) (*models.Consumable, error)
	GetByBarcodeForUpdate(ctx context.Context, barcode string) (*models.Consumable, error)
	List(ctx context.Context, includeDeleted bool, limit, offset int) ([]*models.Consumable, error)
	ListDeleted(ctx context.Context, limit, offset int) ([]*models.Consumable, error)
	ListBelowMinimum(ctx context.Context) ([]*models.Consumable, error)
	Update(ctx context.Context, consumable *models.Consumable) error
	UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string) error
	AdjustQuantity(ctx context.Context, barcode string, quantity int) error
	// DecrementQuantity conditionally subtracts quantity; it reports false
	// without touching the row when remaining stock is insufficient.
	DecrementQuantity(ctx context.Context, barcode string, quantity int) (bool, error)
	SoftDelete(ctx context.Context, barcode string) error
	// Restore reports whether a trashed row was revived; an active or
	// unknown barcode matches nothing.
	Restore(ctx context.Context, barcode string) (bool, error)
	ExistsActive(ctx context.Context, barcode string) (bool, error)
	WithTx(tx DB) ConsumableRepository
}

type consumableRepo struct {
	db DB
}

func NewConsumableRepo(db DB) ConsumableRepository {
	return &consumableRepo{db: db}
}

func (r *consumableRepo) WithTx(tx DB) ConsumableRepository {
	return &consumableRepo{db: tx}
}

const consumableColumns = `barcode, name, description, category, location, quantity, min_quantity, deleted, created_at, modified_at, deleted_at`

func scanConsumable(row interface{ Scan(dest ...any) error }) (*models.Consumable, error) {
	c := &models.Consumable{}
	err := row.Scan(&c.Barcode, &c.Name, &c.Description, &c.Category, &c.Location,
		&c.Quantity, &c.MinQuantity, &c.Deleted, &c.CreatedAt, &c.ModifiedAt, &c.DeletedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *consumableRepo) Create(ctx context.Context, consumable *models.Consumable) error {
	query := `
		INSERT INTO consumables (barcode, name, description, category, location, quantity, min_quantity, deleted, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, consumable.Barcode, consumable.Name, consumable.Description,
		consumable.Category, consumable.Location, consumable.Quantity, consumable.MinQuantity)
	return err
}

func (r *consumableRepo) GetByBarcode(ctx context.Context, barcode string) (*models.Consumable, error) {
	query := `
		SELECT ` + consumableColumns + `
		FROM consumables
		WHERE barcode = $1 AND deleted = FALSE
	`
	return scanConsumable(r.db.QueryRow(ctx, query, barcode))
}

func (r *consumableRepo) GetByBarcodeForUpdate(ctx context.Context, barcode string) (*models.Consumable, error) {
	query := `
		SELECT ` + consumableColumns + `
		FROM consumables
		WHERE barcode = $1 AND deleted = FALSE
		FOR UPDATE
	`
	return scanConsumable(r.db.QueryRow(ctx, query, barcode))
}

func (r *consumableRepo) List(ctx context.Context, includeDeleted bool, limit, offset int) ([]*models.Consumable, error) {
	query := `
		SELECT ` + consumableColumns + `
		FROM consumables
		WHERE deleted = FALSE OR $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, includeDeleted, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consumables []*models.Consumable
	for rows.Next() {
		c, err := scanConsumable(rows)
		if err != nil {
			return nil, err
		}
		consumables = append(consumables, c)
	}
	return consumables, rows.Err()
}

func (r *consumableRepo) ListDeleted(ctx context.Context, limit, offset int) ([]*models.Consumable, error) {
	query := `
		SELECT ` + consumableColumns + `
		FROM consumables
		WHERE deleted = TRUE
		ORDER BY deleted_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consumables []*models.Consumable
	for rows.Next() {
		c, err := scanConsumable(rows)
		if err != nil {
			return nil, err
		}
		consumables = append(consumables, c)
	}
	return consumables, rows.Err()
}

// ListBelowMinimum feeds the low-stock alert job.
func (r *consumableRepo) ListBelowMinimum(ctx context.Context) ([]*models.Consumable, error) {
	query := `
		SELECT ` + consumableColumns + `
		FROM consumables
		WHERE deleted = FALSE AND quantity <= min_quantity
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consumables []*models.Consumable
	for rows.Next() {
		c, err := scanConsumable(rows)
		if err != nil {
			return nil, err
		}
		consumables = append(consumables, c)
	}
	return consumables, rows.Err()
}

func (r *consumableRepo) Update(ctx context.Context, consumable *models.Consumable) error {
	query := `
		UPDATE consumables
		SET name = $1, description = $2, category = $3, location = $4, min_quantity = $5, modified_at = NOW()
		WHERE barcode = $6 AND deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, consumable.Name, consumable.Description, consumable.Category,
		consumable.Location, consumable.MinQuantity, consumable.Barcode)
	return err
}

func (r *consumableRepo) UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string) error {
	query := `
		UPDATE consumables
		SET barcode = $1, modified_at = NOW()
		WHERE barcode = $2
	`
	_, err := r.db.Exec(ctx, query, newBarcode, oldBarcode)
	return err
}

// AdjustQuantity is an administrative restock; withdrawals go through
// DecrementQuantity so the check and the write stay one statement.
func (r *consumableRepo) AdjustQuantity(ctx context.Context, barcode string, quantity int) error {
	query := `
		UPDATE consumables
		SET quantity = quantity + $1, modified_at = NOW()
		WHERE barcode = $2 AND deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, quantity, barcode)
	return err
}

func (r *consumableRepo) DecrementQuantity(ctx context.Context, barcode string, quantity int) (bool, error) {
	query := `
		UPDATE consumables
		SET quantity = quantity - $1, modified_at = NOW()
		WHERE barcode = $2 AND deleted = FALSE AND quantity >= $1
	`
	tag, err := r.db.Exec(ctx, query, quantity, barcode)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *consumableRepo) SoftDelete(ctx context.Context, barcode string) error {
	query := `
		UPDATE consumables
		SET deleted = TRUE, deleted_at = NOW(), modified_at = NOW()
		WHERE barcode = $1 AND deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, barcode)
	return err
}

func (r *consumableRepo) Restore(ctx context.Context, barcode string) (bool, error) {
	query := `
		UPDATE consumables
		SET deleted = FALSE, deleted_at = NULL, modified_at = NOW()
		WHERE barcode = $1 AND deleted = TRUE
	`
	tag, err := r.db.Exec(ctx, query, barcode)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *consumableRepo) ExistsActive(ctx context.Context, barcode string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM consumables WHERE barcode = $1 AND deleted = FALSE)`
	err := r.db.QueryRow(ctx, query, barcode).Scan(&exists)
	return exists, err
}
