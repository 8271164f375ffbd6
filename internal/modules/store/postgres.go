package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, s *Store) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stores
		  (id, name, description, address, city, phone, email, commission_rate, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.Name, s.Description, s.Address, s.City, s.Phone, s.Email,
		s.CommissionRate, s.IsActive)
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Store, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, id)
	}
	s := &Store{}
	err = r.db.QueryRowContext(ctx, `
		SELECT id, name, description, address, city, phone, email,
		       commission_rate, is_active, created_at, updated_at
		FROM stores WHERE id=$1`, uid).Scan(
		&s.ID, &s.Name, &s.Description, &s.Address, &s.City, &s.Phone, &s.Email,
		&s.CommissionRate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return s, nil
}

func (r *postgresRepo) List(ctx context.Context, activeOnly bool) ([]*Store, error) {
	query := `
		SELECT id, name, description, address, city, phone, email,
		       commission_rate, is_active, created_at, updated_at
		FROM stores`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	stores := []*Store{}
	for rows.Next() {
		s := &Store{}
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.Address, &s.City, &s.Phone, &s.Email,
			&s.CommissionRate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, s *Store) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE stores
		SET name=$1, description=$2, address=$3, city=$4, phone=$5, email=$6,
		    commission_rate=$7, is_active=$8, updated_at=$9
		WHERE id=$10`,
		s.Name, s.Description, s.Address, s.City, s.Phone, s.Email,
		s.CommissionRate, s.IsActive, time.Now(), s.ID)
	return err
}
