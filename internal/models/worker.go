package models

import (
	"time"
)

type Worker struct {
	Barcode    string     `json:"barcode" db:"barcode"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	Department *string    `json:"department" db:"department"`
	Email      *string    `json:"email" db:"email"`
	Deleted    bool       `json:"deleted" db:"deleted"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ModifiedAt time.Time  `json:"modified_at" db:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// FullName is the worker's display name as the legacy data kept it,
// "first last".
func (w *Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// WorkerWithLendings is the worker list read model: the worker plus the
// number of tools they currently hold.
type WorkerWithLendings struct {
	Worker
	ActiveLendings int `json:"active_lendings"`
}

// WorkerDetail is the single-worker read model: the worker plus what both
// ledgers have recorded against them.
type WorkerDetail struct {
	Worker
	OpenLendings int `json:"open_lendings"`
	Withdrawals  int `json:"withdrawals"`
}
