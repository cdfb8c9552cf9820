package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gymcore/gym-gateway/internal/domain"
	"github.com/gymcore/gym-gateway/internal/repository"
)

// MemberCreator persists new members.
type MemberCreator interface {
	Create(ctx context.Context, member *domain.Member) error
}

// CredentialStore aggregates the admin, trainer and member partitions into a
// single identity lookup.
type CredentialStore struct {
	partitions []repository.Partition
	members    MemberCreator
}

// NewCredentialStore composes partitions. Lookup order is admin, trainer,
// member regardless of argument order.
func NewCredentialStore(members MemberCreator, partitions ...repository.Partition) (*CredentialStore, error) {
	byRole := make(map[domain.Role]repository.Partition, len(partitions))
	for _, p := range partitions {
		if _, dup := byRole[p.Role()]; dup {
			return nil, fmt.Errorf("duplicate partition for role %s", p.Role())
		}
		byRole[p.Role()] = p
	}

	ordered := make([]repository.Partition, 0, len(domain.Roles))
	for _, role := range domain.Roles {
		p, ok := byRole[role]
		if !ok {
			return nil, fmt.Errorf("missing partition for role %s", role)
		}
		ordered = append(ordered, p)
	}
	return &CredentialStore{partitions: ordered, members: members}, nil
}

// FindPrincipal returns the first principal named username, probing admin,
// then trainer, then member. Returns repository.ErrNotFound when none match.
// Every method of the store compares usernames in normalized form.
func (s *CredentialStore) FindPrincipal(ctx context.Context, username string) (*domain.Principal, error) {
	username = domain.NormalizeUsername(username)
	for _, p := range s.partitions {
		principal, err := p.FindByUsername(ctx, username)
		if err == nil {
			principal.Role = p.Role()
			return principal, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup %s in %s partition: %w", username, p.Role(), err)
		}
	}
	return nil, repository.ErrNotFound
}

// PrincipalExists checks a single partition.
func (s *CredentialStore) PrincipalExists(ctx context.Context, username string, role domain.Role) (bool, error) {
	username = domain.NormalizeUsername(username)
	for _, p := range s.partitions {
		if p.Role() == role {
			return p.Exists(ctx, username)
		}
	}
	return false, fmt.Errorf("unknown partition %q", role)
}

// UsernameTaken reports the first partition already holding username.
func (s *CredentialStore) UsernameTaken(ctx context.Context, username string) (domain.Role, bool, error) {
	username = domain.NormalizeUsername(username)
	for _, p := range s.partitions {
		exists, err := p.Exists(ctx, username)
		if err != nil {
			return "", false, err
		}
		if exists {
			return p.Role(), true, nil
		}
	}
	return "", false, nil
}

// CreateMember inserts a member. A concurrent insert of the same username
// surfaces as repository.ErrDuplicate.
func (s *CredentialStore) CreateMember(ctx context.Context, member *domain.Member) error {
	member.Username = domain.NormalizeUsername(member.Username)
	return s.members.Create(ctx, member)
}
