package employee

import "context"

// Directory resolves identities for the attendance core. Employee CRUD lives
// elsewhere; this is the read-only surface the core consumes.
type Directory interface {
	// GetByID retrieves a single employee
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetManagers lists employees who should receive escalations
	GetManagers(ctx context.Context) ([]Employee, error)
}
