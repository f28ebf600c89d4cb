package employee

import "time"

type Employee struct {
	ID         string
	UserID     *string
	FullName   string
	Email      string
	ManagerID  *string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
