package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bloem-market/bloem-backend/internal/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectSQL = `
	SELECT id, email, password_hash, first_name, last_name, phone, role,
	       store_id, created_at, updated_at
	FROM users`

func (r *postgresRepo) Create(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, role, store_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Role, u.StoreID)
	if database.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.getOne(ctx, selectSQL+` WHERE id=$1`, uid)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, selectSQL+` WHERE email=$1`, email)
}

func (r *postgresRepo) getOne(ctx context.Context, query string, args ...interface{}) (*User, error) {
	u := &User{}
	var storeID sql.NullString
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.Role, &storeID, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if storeID.Valid {
		id, _ := uuid.Parse(storeID.String)
		u.StoreID = &id
	}
	return u, nil
}

func (r *postgresRepo) Update(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET first_name=$1, last_name=$2, phone=$3, role=$4, store_id=$5, updated_at=$6
		WHERE id=$7`,
		u.FirstName, u.LastName, u.Phone, u.Role, u.StoreID, time.Now(), u.ID)
	return err
}
