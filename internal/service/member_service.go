package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gymcore/gym-gateway/internal/auth"
	"github.com/gymcore/gym-gateway/internal/domain"
	"github.com/gymcore/gym-gateway/internal/repository"
)

var (
	// ErrUnknownTrainer is returned when a profile references a missing trainer.
	ErrUnknownTrainer = errors.New("invalid trainer id")
	// ErrUsernameTaken is returned when a new account's username is already
	// used by a principal of any kind.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidAccount is returned for an account without a usable username.
	ErrInvalidAccount = errors.New("username required")
)

// ProfileUpdate carries optional member profile changes.
type ProfileUpdate struct {
	Name        *string
	PhoneNumber *string
	Gender      *string
	TrainerID   *string
}

// NewAccount carries the fields needed to register a member or trainer.
type NewAccount struct {
	Username       string
	Password       string
	Name           string
	Email          string
	PhoneNumber    string
	Gender         string
	Specialization string
	TrainerID      *string
}

// PrincipalInvalidator forgets a cached principal.
type PrincipalInvalidator interface {
	Invalidate(username string)
}

// MemberService serves member self-service, the member/trainer directory
// and roster management.
type MemberService struct {
	members  repository.MemberRepository
	trainers repository.TrainerRepository
	store    *CredentialStore
	hasher   auth.PasswordHasher
	cache    PrincipalInvalidator
}

// NewMemberService creates the service.
func NewMemberService(members repository.MemberRepository, trainers repository.TrainerRepository, store *CredentialStore, hasher auth.PasswordHasher) *MemberService {
	return &MemberService{members: members, trainers: trainers, store: store, hasher: hasher}
}

// UsePrincipalCache evicts deleted accounts from cache, so per-request role
// resolution stops authorizing them immediately.
func (s *MemberService) UsePrincipalCache(cache PrincipalInvalidator) {
	s.cache = cache
}

// Me returns the member profile for the authenticated username.
func (s *MemberService) Me(ctx context.Context, username string) (*domain.Member, error) {
	return s.members.GetByUsername(ctx, username)
}

// UpdateProfile applies the non-nil fields of update.
func (s *MemberService) UpdateProfile(ctx context.Context, username string, update ProfileUpdate) (*domain.Member, error) {
	member, err := s.members.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, member, update); err != nil {
		return nil, err
	}
	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// CompleteProfile fills in the details an auto-provisioned member is created
// without and marks the profile complete.
func (s *MemberService) CompleteProfile(ctx context.Context, username string, update ProfileUpdate) (*domain.Member, error) {
	member, err := s.members.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, member, update); err != nil {
		return nil, err
	}
	member.ProfileComplete = true
	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *MemberService) apply(ctx context.Context, member *domain.Member, update ProfileUpdate) error {
	if update.Name != nil {
		member.Name = strings.TrimSpace(*update.Name)
	}
	if update.PhoneNumber != nil {
		member.PhoneNumber = strings.TrimSpace(*update.PhoneNumber)
	}
	if update.Gender != nil {
		member.Gender = domain.ParseGender(*update.Gender)
	}
	if update.TrainerID != nil {
		id := strings.TrimSpace(*update.TrainerID)
		if id == "" {
			member.TrainerID = nil
			return nil
		}
		if _, err := s.trainers.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUnknownTrainer
			}
			return err
		}
		member.TrainerID = &id
	}
	return nil
}

// ListMembers pages through all members.
func (s *MemberService) ListMembers(ctx context.Context, limit, offset int) ([]domain.Member, error) {
	return s.members.List(ctx, repository.MemberFilter{Limit: limit, Offset: offset})
}

// ListByTrainer lists the members coached by trainerID.
func (s *MemberService) ListByTrainer(ctx context.Context, trainerID string) ([]domain.Member, error) {
	return s.members.List(ctx, repository.MemberFilter{TrainerID: &trainerID})
}

// ListTrainers pages through trainers.
func (s *MemberService) ListTrainers(ctx context.Context, limit, offset int) ([]domain.Trainer, error) {
	return s.trainers.List(ctx, limit, offset)
}

// GetTrainer returns a single trainer.
func (s *MemberService) GetTrainer(ctx context.Context, id string) (*domain.Trainer, error) {
	return s.trainers.GetByID(ctx, id)
}

// CreateMember registers a member. Usernames are unique across all
// principal kinds.
func (s *MemberService) CreateMember(ctx context.Context, account NewAccount) (*domain.Member, error) {
	principal, err := s.newPrincipal(ctx, account, domain.RoleMember)
	if err != nil {
		return nil, err
	}
	member := &domain.Member{
		Principal: *principal,
		Name:      strings.TrimSpace(account.Name),
		Email:     strings.TrimSpace(account.Email),
		Gender:    domain.ParseGender(account.Gender),
	}
	if err := s.apply(ctx, member, ProfileUpdate{PhoneNumber: &account.PhoneNumber, TrainerID: account.TrainerID}); err != nil {
		return nil, err
	}
	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return member, nil
}

// UpdateMember applies update to the member with the given id.
func (s *MemberService) UpdateMember(ctx context.Context, id string, update ProfileUpdate) (*domain.Member, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, member, update); err != nil {
		return nil, err
	}
	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// DeleteMember removes a member.
func (s *MemberService) DeleteMember(ctx context.Context, id string) error {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(member.Username)
	return nil
}

// CreateTrainer registers a trainer.
func (s *MemberService) CreateTrainer(ctx context.Context, account NewAccount) (*domain.Trainer, error) {
	principal, err := s.newPrincipal(ctx, account, domain.RoleTrainer)
	if err != nil {
		return nil, err
	}
	trainer := &domain.Trainer{
		Principal:      *principal,
		Name:           strings.TrimSpace(account.Name),
		Email:          strings.TrimSpace(account.Email),
		Specialization: strings.TrimSpace(account.Specialization),
	}
	if err := s.trainers.Create(ctx, trainer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return trainer, nil
}

// DeleteTrainer removes a trainer. Their members become unassigned.
func (s *MemberService) DeleteTrainer(ctx context.Context, id string) error {
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.trainers.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(trainer.Username)
	return nil
}

func (s *MemberService) evict(username string) {
	if s.cache != nil {
		s.cache.Invalidate(username)
	}
}

func (s *MemberService) newPrincipal(ctx context.Context, account NewAccount, role domain.Role) (*domain.Principal, error) {
	username := domain.NormalizeUsername(account.Username)
	if username == "" {
		return nil, ErrInvalidAccount
	}
	if _, taken, err := s.store.UsernameTaken(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	hash, err := s.hasher.Hash(account.Password)
	if err != nil {
		return nil, err
	}
	return &domain.Principal{Username: username, PasswordHash: hash, Role: role}, nil
}
