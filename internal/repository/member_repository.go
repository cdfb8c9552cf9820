package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gymcore/gym-gateway/internal/domain"
)

// MemberRepository defines persistence access for members.
type MemberRepository interface {
	Partition
	Create(ctx context.Context, member *domain.Member) error
	Update(ctx context.Context, member *domain.Member) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByUsername(ctx context.Context, username string) (*domain.Member, error)
	List(ctx context.Context, filter MemberFilter) ([]domain.Member, error)
}

// MemberFilter defines query params for member listing.
type MemberFilter struct {
	TrainerID *string
	Limit     int
	Offset    int
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a Postgres-backed implementation.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

const memberColumns = `id, username, password_hash, name, email, phone_number, gender, trainer_id, profile_complete, created_at, updated_at`

func (r *memberRepository) Role() domain.Role {
	return domain.RoleMember
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	const query = `
        INSERT INTO members (username, password_hash, name, email, phone_number, gender, trainer_id, profile_complete)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		member.Username,
		member.PasswordHash,
		member.Name,
		member.Email,
		member.PhoneNumber,
		member.Gender,
		member.TrainerID,
		member.ProfileComplete,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	member.Role = domain.RoleMember
	return nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	const query = `
        UPDATE members
        SET password_hash=$1, name=$2, email=$3, phone_number=$4, gender=$5, trainer_id=$6, profile_complete=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		member.PasswordHash,
		member.Name,
		member.Email,
		member.PhoneNumber,
		member.Gender,
		member.TrainerID,
		member.ProfileComplete,
		member.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id=$1`
	member, err := scanMember(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return member, nil
}

func (r *memberRepository) GetByUsername(ctx context.Context, username string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE ` + usernameMatch
	member, err := scanMember(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, mapError(err)
	}
	return member, nil
}

func (r *memberRepository) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	member, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &member.Principal, nil
}

func (r *memberRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, fmt.Sprintf(existsQuery, "members"), username).Scan(&exists); err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (r *memberRepository) List(ctx context.Context, filter MemberFilter) ([]domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members`
	args := []any{}
	if filter.TrainerID != nil {
		args = append(args, *filter.TrainerID)
		query += fmt.Sprintf(" WHERE trainer_id=$%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, mapError(err)
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return members, nil
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var member domain.Member
	if err := row.Scan(
		&member.ID,
		&member.Username,
		&member.PasswordHash,
		&member.Name,
		&member.Email,
		&member.PhoneNumber,
		&member.Gender,
		&member.TrainerID,
		&member.ProfileComplete,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	member.Role = domain.RoleMember
	return &member, nil
}
