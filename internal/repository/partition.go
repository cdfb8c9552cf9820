package repository

import (
	"context"

	"github.com/gymcore/gym-gateway/internal/domain"
)

// Partition is the lookup capability shared by the admin, trainer and member
// stores. Each partition answers only for its own role.
type Partition interface {
	Role() domain.Role
	FindByUsername(ctx context.Context, username string) (*domain.Principal, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// Usernames compare case-insensitively; each table carries a unique index on
// lower(username) that backs these lookups.
const (
	usernameMatch = `lower(username) = lower($1)`
	existsQuery   = `SELECT EXISTS(SELECT 1 FROM %s WHERE ` + usernameMatch + `)`
)
