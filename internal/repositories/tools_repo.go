package repositories

import (
	"context"

	"toolkeeper/internal/models"
)

type ToolRepository interface {
	Create(ctx context.Context, tool *models.Tool) error
	GetByBarcode(ctx context.Context, barcode string) (*models.Tool, error)
	GetByBarcodeForUpdate(ctx context.Context, barcode string) (*models.Tool, error)
	List(ctx context.Context, includeDeleted bool, limit, offset int) ([]*models.Tool, error)
	ListWithBorrower(ctx context.Context, limit, offset int) ([]*models.ToolWithBorrower, error)
	ListDeleted(ctx context.Context, limit, offset int) ([]*models.Tool, error)
	Update(ctx context.Context, tool *models.Tool) error
	UpdateStatus(ctx context.Context, barcode string, status models.ToolStatus) error
	UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string) error
	SoftDelete(ctx context.Context, barcode string) error
	// Restore reports whether a trashed row was revived; an active or
	// unknown barcode matches nothing.
	Restore(ctx context.Context, barcode string) (bool, error)
	ExistsActive(ctx context.Context, barcode string) (bool, error)
	WithTx(tx DB) ToolRepository
}

type toolRepo struct {
	db DB
}

func NewToolRepo(db DB) ToolRepository {
	return &toolRepo{db: db}
}

func (r *toolRepo) WithTx(tx DB) ToolRepository {
	return &toolRepo{db: tx}
}

const toolColumns = `barcode, name, description, category, location, status, deleted, created_at, modified_at, deleted_at`

func scanTool(row interface{ Scan(dest ...any) error }) (*models.Tool, error) {
	tool := &models.Tool{}
	err := row.Scan(&tool.Barcode, &tool.Name, &tool.Description, &tool.Category, &tool.Location,
		&tool.Status, &tool.Deleted, &tool.CreatedAt, &tool.ModifiedAt, &tool.DeletedAt)
	if err != nil {
		return nil, err
	}
	return tool, nil
}

func (r *toolRepo) Create(ctx context.Context, tool *models.Tool) error {
	query := `
		INSERT INTO tools (barcode, name, description, category, location, status, deleted, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tool.Barcode, tool.Name, tool.Description, tool.Category, tool.Location, tool.Status)
	return err
}

func (r *toolRepo) GetByBarcode(ctx context.Context, barcode string) (*models.Tool, error) {
	query := `
		SELECT ` + toolColumns + `
		FROM tools
		WHERE barcode = $1 AND deleted = FALSE
	`
	return scanTool(r.db.QueryRow(ctx, query, barcode))
}

// GetByBarcodeForUpdate locks the tool row for the duration of the enclosing
// transaction so status transitions serialize per tool.
func (r *toolRepo) GetByBarcodeForUpdate(ctx context.Context, barcode string) (*models.Tool, error) {
	query := `
		SELECT ` + toolColumns + `
		FROM tools
		WHERE barcode = $1 AND deleted = FALSE
		FOR UPDATE
	`
	return scanTool(r.db.QueryRow(ctx, query, barcode))
}

func (r *toolRepo) List(ctx context.Context, includeDeleted bool, limit, offset int) ([]*models.Tool, error) {
	query := `
		SELECT ` + toolColumns + `
		FROM tools
		WHERE deleted = FALSE OR $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, includeDeleted, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []*models.Tool
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

// ListWithBorrower joins each tool with its open lending, if any.
func (r *toolRepo) ListWithBorrower(ctx context.Context, limit, offset int) ([]*models.ToolWithBorrower, error) {
	query := `
		SELECT t.barcode, t.name, t.description, t.category, t.location, t.status,
		       t.deleted, t.created_at, t.modified_at, t.deleted_at,
		       l.worker_barcode, w.first_name || ' ' || w.last_name, l.lent_at
		FROM tools t
		LEFT JOIN lendings l ON l.tool_barcode = t.barcode AND l.returned_at IS NULL
		LEFT JOIN workers w ON w.barcode = l.worker_barcode
		WHERE t.deleted = FALSE
		ORDER BY t.name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []*models.ToolWithBorrower
	for rows.Next() {
		t := &models.ToolWithBorrower{}
		err := rows.Scan(&t.Barcode, &t.Name, &t.Description, &t.Category, &t.Location, &t.Status,
			&t.Deleted, &t.CreatedAt, &t.ModifiedAt, &t.DeletedAt,
			&t.BorrowerBarcode, &t.BorrowerName, &t.LentAt)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

func (r *toolRepo) ListDeleted(ctx context.Context, limit, offset int) ([]*models.Tool, error) {
	query := `
		SELECT ` + toolColumns + `
		FROM tools
		WHERE deleted = TRUE
		ORDER BY deleted_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []*models.Tool
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

func (r *toolRepo) Update(ctx context.Context, tool *models.Tool) error {
	query := `
		UPDATE tools
		SET name = $1, description = $2, category = $3, location = $4, modified_at = NOW()
		WHERE barcode = $5 AND deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, tool.Name, tool.Description, tool.Category, tool.Location, tool.Barcode)
	return err
}

func (r *toolRepo) UpdateStatus(ctx context.Context, barcode string, status models.ToolStatus) error {
	query := `
		UPDATE tools
		SET status = $1, modified_at = NOW()
		WHERE barcode = $2 AND deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, status, barcode)
	return err
}

// UpdateBarcode rewrites the primary key; referencing ledger rows follow via
// ON UPDATE CASCADE within the same transaction.
func (r *toolRepo) UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string) error {
	query := `
		UPDATE tools
		SET barcode = $1, modified_at = NOW()
		WHERE barcode = $2
	`
	_, err := r.db.Exec(ctx, query, newBarcode, oldBarcode)
	return err
}

func (r *toolRepo) SoftDelete(ctx context.Context, barcode string) error {
	query := `
		UPDATE tools
		SET deleted = TRUE, deleted_at = NOW(), modified_at = NOW()
		WHERE barcode = $1 AND deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, barcode)
	return err
}

func (r *toolRepo) Restore(ctx context.Context, barcode string) (bool, error) {
	query := `
		UPDATE tools
		SET deleted = FALSE, deleted_at = NULL, modified_at = NOW()
		WHERE barcode = $1 AND deleted = TRUE
	`
	tag, err := r.db.Exec(ctx, query, barcode)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *toolRepo) ExistsActive(ctx context.Context, barcode string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM tools WHERE barcode = $1 AND deleted = FALSE)`
	err := r.db.QueryRow(ctx, query, barcode).Scan(&exists)
	return exists, err
}
