package postgres

import (
	"context"
	"database/sql"
	"errors"

	"meetingscheduler/internal/domain"
)

type departmentRepository struct {
	DB *sql.DB
}

func NewDepartmentRepository(db *sql.DB) domain.DepartmentRepository {
	return &departmentRepository{
		DB: db,
	}
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	query := `SELECT id, name FROM departments WHERE id = $1`
	d := &domain.Department{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]*domain.Department, error) {
	query := `SELECT id, name FROM departments ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	departments := make([]*domain.Department, 0)
	for rows.Next() {
		d := &domain.Department{}
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}
