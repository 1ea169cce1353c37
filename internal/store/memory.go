package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lexfirm/lex/internal/models"
)

// MemoryStore is an in-memory Store implementation. Records are kept in
// insertion order so Find* semantics match the SurrealDB store's
// created-order first match.
type MemoryStore struct {
	mu      sync.RWMutex
	clients []models.Client
	cases   []models.Case
	tasks   []models.Task
	team    []models.TeamMember
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (s *MemoryStore) ListClients(_ context.Context, f ClientFilter) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *MemoryStore) GetClient(_ context.Context, id string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindClient(_ context.Context, query string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients {
		if containsFold(c.Name, query) {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Notes == nil {
		c.Notes = []models.Note{}
	}
	s.clients = append(s.clients, *c)
	return nil
}

func (s *MemoryStore) SaveClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.clients {
		if s.clients[i].ID == c.ID {
			s.clients[i] = *c
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.clients {
		if s.clients[i].ID == id {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) CountClients(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients), nil
}

func (s *MemoryStore) ListCases(_ context.Context, f CaseFilter) ([]models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Case, 0, len(s.cases))
	for _, c := range s.cases {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.NotStatus != "" && c.Status == f.NotStatus {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *MemoryStore) GetCase(_ context.Context, id string) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.cases {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindCase(_ context.Context, query string) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.cases {
		if containsFold(c.Title, query) || containsFold(c.CaseNumber, query) {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateCase(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.AssignedTeam == nil {
		c.AssignedTeam = []string{}
	}
	s.cases = append(s.cases, *c)
	return nil
}

func (s *MemoryStore) SaveCase(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cases {
		if s.cases[i].ID == c.ID {
			s.cases[i] = *c
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteCase(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cases {
		if s.cases[i].ID == id {
			s.cases = append(s.cases[:i], s.cases[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) CountCases(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases), nil
}

func (s *MemoryStore) ListTasks(_ context.Context, f TaskFilter) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.NotStatus != "" && t.Status == f.NotStatus {
			continue
		}
		if f.AssigneeName != "" && !containsFold(t.AssignedToName, f.AssigneeName) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *MemoryStore) GetTask(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tasks {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindTask(_ context.Context, query string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tasks {
		if containsFold(t.Title, query) {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateTask(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.tasks = append(s.tasks, *t)
	return nil
}

func (s *MemoryStore) SaveTask(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = *t
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) CountTasks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks), nil
}

func (s *MemoryStore) ListTeam(_ context.Context, f TeamFilter) ([]models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TeamMember, 0, len(s.team))
	for _, m := range s.team {
		if f.RolePrefix != "" && !strings.HasPrefix(strings.ToLower(m.Role), strings.ToLower(f.RolePrefix)) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *MemoryStore) GetTeamMember(_ context.Context, id string) (*models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.team {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindTeamMember(_ context.Context, query string) (*models.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.team {
		if containsFold(m.Name, query) {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateTeamMember(_ context.Context, m *models.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.Specialties == nil {
		m.Specialties = []string{}
	}
	s.team = append(s.team, *m)
	return nil
}

func (s *MemoryStore) CountTeam(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.team), nil
}

func (s *MemoryStore) Wipe(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients = nil
	s.cases = nil
	s.tasks = nil
	s.team = nil
	return nil
}

func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}
