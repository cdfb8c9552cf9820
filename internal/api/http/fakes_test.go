package http

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/gymcore/gym-gateway/internal/domain"
	"github.com/gymcore/gym-gateway/internal/repository"
)

type memAdmins struct {
	mu   sync.Mutex
	byID map[string]domain.Admin
}

func (a *memAdmins) Role() domain.Role { return domain.RoleAdmin }

func (a *memAdmins) find(username string) (domain.Admin, bool) {
	for _, admin := range a.byID {
		if admin.Username == username {
			return admin, true
		}
	}
	return domain.Admin{}, false
}

func (a *memAdmins) FindByUsername(_ context.Context, username string) (*domain.Principal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	admin, ok := a.find(username)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &admin.Principal, nil
}

func (a *memAdmins) Exists(_ context.Context, username string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.find(username)
	return ok, nil
}

func (a *memAdmins) Create(_ context.Context, admin *domain.Admin) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.find(admin.Username); ok {
		return repository.ErrDuplicate
	}
	admin.ID = "admin-" + admin.Username
	a.byID[admin.ID] = *admin
	return nil
}

type memTrainers struct {
	mu   sync.Mutex
	byID map[string]domain.Trainer
}

func (t *memTrainers) Role() domain.Role { return domain.RoleTrainer }

func (t *memTrainers) GetByUsername(_ context.Context, username string) (*domain.Trainer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, trainer := range t.byID {
		if trainer.Username == username {
			return &trainer, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *memTrainers) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	trainer, err := t.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &trainer.Principal, nil
}

func (t *memTrainers) Exists(ctx context.Context, username string) (bool, error) {
	_, err := t.GetByUsername(ctx, username)
	return err == nil, nil
}

func (t *memTrainers) Create(_ context.Context, trainer *domain.Trainer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	trainer.ID = "trainer-" + trainer.Username
	trainer.Role = domain.RoleTrainer
	t.byID[trainer.ID] = *trainer
	return nil
}

func (t *memTrainers) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.byID, id)
	return nil
}

func (t *memTrainers) GetByID(_ context.Context, id string) (*domain.Trainer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	trainer, ok := t.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &trainer, nil
}

func (t *memTrainers) List(context.Context, int, int) ([]domain.Trainer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Trainer, 0, len(t.byID))
	for _, trainer := range t.byID {
		out = append(out, trainer)
	}
	return out, nil
}

type memMembers struct {
	mu         sync.Mutex
	byUsername map[string]domain.Member
	listErr    error
}

func (m *memMembers) Role() domain.Role { return domain.RoleMember }

func (m *memMembers) GetByUsername(_ context.Context, username string) (*domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.byUsername[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &member, nil
}

func (m *memMembers) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	member, err := m.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &member.Principal, nil
}

func (m *memMembers) Exists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m *memMembers) Create(_ context.Context, member *domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[member.Username]; ok {
		return repository.ErrDuplicate
	}
	member.ID = "member-" + member.Username
	member.Role = domain.RoleMember
	member.CreatedAt = time.Now()
	m.byUsername[member.Username] = *member
	return nil
}

func (m *memMembers) Update(_ context.Context, member *domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[member.Username]; !ok {
		return repository.ErrNotFound
	}
	m.byUsername[member.Username] = *member
	return nil
}

func (m *memMembers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for username, member := range m.byUsername {
		if member.ID == id {
			delete(m.byUsername, username)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memMembers) GetByID(_ context.Context, id string) (*domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range m.byUsername {
		if member.ID == id {
			return &member, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memMembers) List(_ context.Context, filter repository.MemberFilter) ([]domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Member
	for _, member := range m.byUsername {
		if filter.TrainerID != nil && (member.TrainerID == nil || *member.TrainerID != *filter.TrainerID) {
			continue
		}
		out = append(out, member)
	}
	return out, nil
}

type memStates struct {
	mu     sync.Mutex
	states map[string]bool
}

func (s *memStates) Save(_ context.Context, state string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = true
	return nil
}

func (s *memStates) Consume(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.states[state]
	delete(s.states, state)
	return ok, nil
}

// stubProvider accepts any code and returns the identity registered for it.
type stubProvider struct {
	identities map[string]domain.ExternalIdentity
}

func (p *stubProvider) Name() string { return "google" }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (p *stubProvider) Exchange(_ context.Context, code string) (*domain.ExternalIdentity, error) {
	identity, ok := p.identities[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &identity, nil
}
