package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gymcore/gym-gateway/internal/domain"
)

// TrainerRepository handles persistence for trainers.
type TrainerRepository interface {
	Partition
	Create(ctx context.Context, trainer *domain.Trainer) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Trainer, error)
	GetByUsername(ctx context.Context, username string) (*domain.Trainer, error)
	List(ctx context.Context, limit, offset int) ([]domain.Trainer, error)
}

type trainerRepository struct {
	pool *pgxpool.Pool
}

// NewTrainerRepository instantiates the repository.
func NewTrainerRepository(pool *pgxpool.Pool) TrainerRepository {
	return &trainerRepository{pool: pool}
}

const trainerColumns = `id, username, password_hash, name, email, specialization, created_at, updated_at`

func (r *trainerRepository) Role() domain.Role {
	return domain.RoleTrainer
}

func (r *trainerRepository) Create(ctx context.Context, trainer *domain.Trainer) error {
	const query = `
        INSERT INTO trainers (username, password_hash, name, email, specialization)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		trainer.Username,
		trainer.PasswordHash,
		trainer.Name,
		trainer.Email,
		trainer.Specialization,
	).Scan(&trainer.ID, &trainer.CreatedAt, &trainer.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	trainer.Role = domain.RoleTrainer
	return nil
}

// Delete removes a trainer; their members are unassigned by the foreign key.
func (r *trainerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM trainers WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *trainerRepository) GetByID(ctx context.Context, id string) (*domain.Trainer, error) {
	query := `SELECT ` + trainerColumns + ` FROM trainers WHERE id=$1`
	trainer, err := scanTrainer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return trainer, nil
}

func (r *trainerRepository) GetByUsername(ctx context.Context, username string) (*domain.Trainer, error) {
	query := `SELECT ` + trainerColumns + ` FROM trainers WHERE ` + usernameMatch
	trainer, err := scanTrainer(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, mapError(err)
	}
	return trainer, nil
}

func (r *trainerRepository) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	trainer, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &trainer.Principal, nil
}

func (r *trainerRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, fmt.Sprintf(existsQuery, "trainers"), username).Scan(&exists); err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (r *trainerRepository) List(ctx context.Context, limit, offset int) ([]domain.Trainer, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + trainerColumns + ` FROM trainers ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var trainers []domain.Trainer
	for rows.Next() {
		trainer, err := scanTrainer(rows)
		if err != nil {
			return nil, mapError(err)
		}
		trainers = append(trainers, *trainer)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return trainers, nil
}

func scanTrainer(row pgx.Row) (*domain.Trainer, error) {
	var trainer domain.Trainer
	if err := row.Scan(
		&trainer.ID,
		&trainer.Username,
		&trainer.PasswordHash,
		&trainer.Name,
		&trainer.Email,
		&trainer.Specialization,
		&trainer.CreatedAt,
		&trainer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	trainer.Role = domain.RoleTrainer
	return &trainer, nil
}
