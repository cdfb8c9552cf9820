package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gymcore/gym-gateway/internal/domain"
	"github.com/gymcore/gym-gateway/internal/repository"
)

// fakePartition keys records by lower-cased username, matching the
// lower(username) unique index.
type fakePartition struct {
	role domain.Role

	mu      sync.Mutex
	records map[string]domain.Principal
	err     error
}

func newFakePartition(role domain.Role) *fakePartition {
	return &fakePartition{role: role, records: map[string]domain.Principal{}}
}

func (p *fakePartition) add(username, hash string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[strings.ToLower(username)] = domain.Principal{ID: username + "-id", Username: username, PasswordHash: hash, Role: p.role}
}

func (p *fakePartition) Role() domain.Role { return p.role }

func (p *fakePartition) FindByUsername(_ context.Context, username string) (*domain.Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	rec, ok := p.records[strings.ToLower(username)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (p *fakePartition) Exists(_ context.Context, username string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return false, p.err
	}
	_, ok := p.records[strings.ToLower(username)]
	return ok, nil
}

func (p *fakePartition) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

// fakeMembers enforces username uniqueness like the members table does.
// When barrier is set, Create waits until that many callers have arrived.
type fakeMembers struct {
	*fakePartition
	members map[string]domain.Member
	barrier *sync.WaitGroup
	creates int
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{
		fakePartition: newFakePartition(domain.RoleMember),
		members:       map[string]domain.Member{},
	}
}

func (m *fakeMembers) Create(_ context.Context, member *domain.Member) error {
	if m.barrier != nil {
		m.barrier.Done()
		m.barrier.Wait()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	key := strings.ToLower(member.Username)
	if _, ok := m.records[key]; ok {
		return repository.ErrDuplicate
	}
	member.ID = member.Username + "-id"
	member.CreatedAt = time.Now()
	m.records[key] = member.Principal
	m.members[key] = *member
	return nil
}

func (m *fakeMembers) Update(_ context.Context, member *domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(member.Username)
	if _, ok := m.members[key]; !ok {
		return repository.ErrNotFound
	}
	m.members[key] = *member
	return nil
}

func (m *fakeMembers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, member := range m.members {
		if member.ID == id {
			delete(m.members, key)
			delete(m.records, key)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *fakeMembers) GetByID(_ context.Context, id string) (*domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range m.members {
		if member.ID == id {
			return &member, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *fakeMembers) GetByUsername(_ context.Context, username string) (*domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[strings.ToLower(username)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &member, nil
}

func (m *fakeMembers) List(_ context.Context, filter repository.MemberFilter) ([]domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Member
	for _, member := range m.members {
		if filter.TrainerID != nil && (member.TrainerID == nil || *member.TrainerID != *filter.TrainerID) {
			continue
		}
		out = append(out, member)
	}
	return out, nil
}

func (m *fakeMembers) get(username string) (domain.Member, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[strings.ToLower(username)]
	return member, ok
}

type fakeTrainers struct {
	*fakePartition
	byID map[string]domain.Trainer
}

func newFakeTrainers() *fakeTrainers {
	return &fakeTrainers{fakePartition: newFakePartition(domain.RoleTrainer), byID: map[string]domain.Trainer{}}
}

func (t *fakeTrainers) Create(_ context.Context, trainer *domain.Trainer) error {
	if ok, _ := t.Exists(context.Background(), trainer.Username); ok {
		return repository.ErrDuplicate
	}
	trainer.ID = trainer.Username + "-id"
	t.add(trainer.Username, trainer.PasswordHash)
	t.byID[trainer.ID] = *trainer
	return nil
}

func (t *fakeTrainers) Delete(_ context.Context, id string) error {
	trainer, ok := t.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(t.byID, id)
	t.mu.Lock()
	delete(t.records, strings.ToLower(trainer.Username))
	t.mu.Unlock()
	return nil
}

func (t *fakeTrainers) GetByID(_ context.Context, id string) (*domain.Trainer, error) {
	trainer, ok := t.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &trainer, nil
}

func (t *fakeTrainers) GetByUsername(_ context.Context, username string) (*domain.Trainer, error) {
	for _, trainer := range t.byID {
		if strings.EqualFold(trainer.Username, username) {
			return &trainer, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *fakeTrainers) List(context.Context, int, int) ([]domain.Trainer, error) {
	out := make([]domain.Trainer, 0, len(t.byID))
	for _, trainer := range t.byID {
		out = append(out, trainer)
	}
	return out, nil
}

type fakeAdmins struct {
	*fakePartition
}

func (a *fakeAdmins) Create(_ context.Context, admin *domain.Admin) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := strings.ToLower(admin.Username)
	if _, ok := a.records[key]; ok {
		return repository.ErrDuplicate
	}
	admin.ID = admin.Username + "-id"
	a.records[key] = admin.Principal
	return nil
}

// plainHasher keeps tests fast; the bcrypt hasher has its own tests.
type plainHasher struct{}

func (plainHasher) Hash(raw string) (string, error) { return "hashed:" + raw, nil }
func (plainHasher) Verify(raw, hashed string) bool  { return hashed == "hashed:"+raw }

type memoryStates struct {
	mu     sync.Mutex
	states map[string]time.Duration
	err    error
}

func newMemoryStates() *memoryStates {
	return &memoryStates{states: map[string]time.Duration{}}
}

func (s *memoryStates) Save(_ context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.states[state] = ttl
	return nil
}

func (s *memoryStates) Consume(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.states[state]
	delete(s.states, state)
	return ok, nil
}

type fakeProvider struct {
	identity *domain.ExternalIdentity
	err      error
	codes    []string
}

func (p *fakeProvider) Name() string { return "google" }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*domain.ExternalIdentity, error) {
	p.codes = append(p.codes, code)
	if p.err != nil {
		return nil, p.err
	}
	identity := *p.identity
	return &identity, nil
}
