package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfirm/lex/internal/models"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore()
}

func TestMemoryStoreClients(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := &models.Client{Name: "Acme Corp", Email: "legal@acme.test", Status: models.ClientActive}
	require.NoError(t, s.CreateClient(ctx, c))
	require.NotEmpty(t, c.ID, "create should assign an id")
	require.False(t, c.CreatedAt.IsZero(), "create should stamp created_at")

	t.Run("get by id", func(t *testing.T) {
		got, err := s.GetClient(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Acme Corp", got.Name)
	})

	t.Run("get missing returns nil nil", func(t *testing.T) {
		got, err := s.GetClient(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("list filters by status", func(t *testing.T) {
		require.NoError(t, s.CreateClient(ctx, &models.Client{
			Name: "Beta LLC", Email: "b@beta.test", Status: models.ClientProspect,
		}))

		active, err := s.ListClients(ctx, ClientFilter{Status: models.ClientActive})
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "Acme Corp", active[0].Name)

		all, err := s.ListClients(ctx, ClientFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("save mutates in place", func(t *testing.T) {
		c.Status = models.ClientInactive
		require.NoError(t, s.SaveClient(ctx, c))

		got, err := s.GetClient(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ClientInactive, got.Status)
	})

	t.Run("save unknown returns ErrNotFound", func(t *testing.T) {
		err := s.SaveClient(ctx, &models.Client{ID: "ghost", Name: "Ghost"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteClient(ctx, c.ID))
		got, err := s.GetClient(ctx, c.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		assert.ErrorIs(t, s.DeleteClient(ctx, c.ID), ErrNotFound)
	})
}

func TestMemoryStoreFindClient(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateClient(ctx, &models.Client{
		Name: "Meridian Manufacturing Inc.", Email: "m@meridian.test", Status: models.ClientActive,
	}))
	require.NoError(t, s.CreateClient(ctx, &models.Client{
		Name: "Marcus Williams", CompanyName: "Williams Consulting", Email: "mw@test.test", Status: models.ClientActive,
	}))

	tests := []struct {
		name  string
		query string
		want  string // expected client name, "" for no hit
	}{
		{"exact name", "Marcus Williams", "Marcus Williams"},
		{"case insensitive", "meridian", "Meridian Manufacturing Inc."},
		{"substring", "Manufacturing", "Meridian Manufacturing Inc."},
		{"company name alone is not matched", "consulting", ""},
		{"first in creation order wins", "m", "Meridian Manufacturing Inc."},
		{"no match", "zzz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindClient(ctx, tt.query)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestMemoryStoreCases(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	client := &models.Client{Name: "Acme Corp", Email: "legal@acme.test", Status: models.ClientActive}
	require.NoError(t, s.CreateClient(ctx, client))

	deadline := time.Now().AddDate(0, 0, 30)
	open := &models.Case{
		Title: "Contract Dispute", CaseNumber: "CD-2026-001",
		ClientID: client.ID, ClientName: client.Name,
		Status: models.CaseDiscovery, Priority: models.PriorityHigh,
		Deadline: &deadline,
	}
	closed := &models.Case{
		Title: "Old Matter", CaseNumber: "OM-2023-001",
		ClientID: client.ID, ClientName: client.Name,
		Status: models.CaseClosed, Priority: models.PriorityLow,
	}
	require.NoError(t, s.CreateCase(ctx, open))
	require.NoError(t, s.CreateCase(ctx, closed))

	t.Run("count", func(t *testing.T) {
		n, err := s.CountCases(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("filter by status", func(t *testing.T) {
		got, err := s.ListCases(ctx, CaseFilter{Status: models.CaseDiscovery})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Contract Dispute", got[0].Title)
	})

	t.Run("filter by priority", func(t *testing.T) {
		got, err := s.ListCases(ctx, CaseFilter{Priority: models.PriorityLow})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Old Matter", got[0].Title)
	})

	t.Run("not-status excludes closed", func(t *testing.T) {
		got, err := s.ListCases(ctx, CaseFilter{NotStatus: models.CaseClosed})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Contract Dispute", got[0].Title)
	})

	t.Run("find by case number", func(t *testing.T) {
		got, err := s.FindCase(ctx, "cd-2026")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Contract Dispute", got.Title)
	})

	t.Run("find by title substring", func(t *testing.T) {
		got, err := s.FindCase(ctx, "dispute")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "CD-2026-001", got.CaseNumber)
	})
}

func TestMemoryStoreTasks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	member := &models.TeamMember{Name: "Sarah Mitchell", Email: "sm@test.test", Role: models.RoleParalegal}
	require.NoError(t, s.CreateTeamMember(ctx, member))

	require.NoError(t, s.CreateTask(ctx, &models.Task{
		Title: "File motion", Status: models.TaskPending, Priority: models.PriorityHigh,
		AssignedToID: member.ID, AssignedToName: member.Name,
	}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{
		Title: "Archive records", Status: models.TaskCompleted, Priority: models.PriorityHigh,
		AssignedToID: member.ID, AssignedToName: member.Name,
	}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{
		Title: "Draft brief", Status: models.TaskInProgress, Priority: models.PriorityMedium,
	}))

	t.Run("filter by assignee name", func(t *testing.T) {
		got, err := s.ListTasks(ctx, TaskFilter{AssigneeName: "sarah"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("priority and not-status compose", func(t *testing.T) {
		got, err := s.ListTasks(ctx, TaskFilter{Priority: models.PriorityHigh, NotStatus: models.TaskCompleted})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "File motion", got[0].Title)
	})

	t.Run("find by title", func(t *testing.T) {
		got, err := s.FindTask(ctx, "Brief")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Draft brief", got.Title)
	})
}

func TestMemoryStoreTeamRolePrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, m := range []models.TeamMember{
		{Name: "Margaret Chen", Email: "mc@test.test", Role: models.RolePartner},
		{Name: "Michael Torres", Email: "mt@test.test", Role: models.RoleAssociate},
		{Name: "Jennifer Walsh", Email: "jw@test.test", Role: models.RoleStaff},
	} {
		member := m
		require.NoError(t, s.CreateTeamMember(ctx, &member))
	}

	tests := []struct {
		name   string
		prefix string
		want   int
	}{
		{"all", "", 3},
		{"exact role", "partner", 1},
		// "staff" arrives singularized as "staf" from chat input
		{"singularized staff", "staf", 1},
		{"case insensitive", "ASSOCIATE", 1},
		{"unknown", "intern", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTeam(ctx, TeamFilter{RolePrefix: tt.prefix})
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestMemoryStoreCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateClient(ctx, &models.Client{Name: "Acme", Email: "a@a.test", Status: models.ClientActive}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{Title: "T1", Status: models.TaskPending, Priority: models.PriorityLow}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{Title: "T2", Status: models.TaskCompleted, Priority: models.PriorityLow}))
	require.NoError(t, s.CreateTeamMember(ctx, &models.TeamMember{Name: "M", Email: "m@m.test", Role: models.RoleStaff}))

	clients, err := s.CountClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, clients)

	tasks, err := s.CountTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, tasks)

	team, err := s.CountTeam(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, team)
}

func TestMemoryStoreWipe(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateClient(ctx, &models.Client{Name: "Acme", Email: "a@a.test", Status: models.ClientActive}))
	require.NoError(t, s.CreateTeamMember(ctx, &models.TeamMember{Name: "M", Email: "m@m.test", Role: models.RoleStaff}))
	require.NoError(t, s.Wipe(ctx))

	clients, err := s.ListClients(ctx, ClientFilter{})
	require.NoError(t, err)
	assert.Empty(t, clients)

	team, err := s.ListTeam(ctx, TeamFilter{})
	require.NoError(t, err)
	assert.Empty(t, team)
}
