package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gymcore/gym-gateway/internal/domain"
)

// AdminRepository handles persistence for administrators.
type AdminRepository interface {
	Partition
	Create(ctx context.Context, admin *domain.Admin) error
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository instantiates the repository.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Role() domain.Role {
	return domain.RoleAdmin
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (username, password_hash, name, email)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		admin.Username,
		admin.PasswordHash,
		admin.Name,
		admin.Email,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	admin.Role = domain.RoleAdmin
	return nil
}

func (r *adminRepository) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	const query = `
        SELECT id, username, password_hash
        FROM admins WHERE ` + usernameMatch

	principal := domain.Principal{Role: domain.RoleAdmin}
	if err := r.pool.QueryRow(ctx, query, username).Scan(
		&principal.ID,
		&principal.Username,
		&principal.PasswordHash,
	); err != nil {
		return nil, mapError(err)
	}
	return &principal, nil
}

func (r *adminRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, fmt.Sprintf(existsQuery, "admins"), username).Scan(&exists); err != nil {
		return false, mapError(err)
	}
	return exists, nil
}
