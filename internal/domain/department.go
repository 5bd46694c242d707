package domain

import "context"

// Department labels meetings and users. Read-only to the scheduling core;
// used only for reporting conflicts and composing notifications.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DepartmentRepository is the department directory. Lookups are not part of
// the overlap invariant and may be served from a shared cache.
type DepartmentRepository interface {
	GetByID(ctx context.Context, id string) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
}
