//go:build integration

package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lexfirm/lex/internal/db"
	"github.com/lexfirm/lex/internal/models"
)

var surrealStore *SurrealStore

// TestMain starts a SurrealDB container shared by all integration tests.
func TestMain(m *testing.M) {
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := container.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	client, err := db.NewClient(ctx, db.Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := client.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	surrealStore = NewSurrealStore(client)

	code := m.Run()

	_ = surrealStore.Close(ctx)
	_ = container.Terminate(ctx)

	os.Exit(code)
}

func freshSurrealStore(t *testing.T) *SurrealStore {
	t.Helper()
	require.NoError(t, surrealStore.Wipe(context.Background()))
	return surrealStore
}

func TestSurrealClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := freshSurrealStore(t)

	c := &models.Client{
		Name: "Meridian Manufacturing Inc.", CompanyName: "Meridian Manufacturing Inc.",
		Email: "legal@meridianmfg.com", Phone: "(312) 555-0147",
		Status: models.ClientActive, TotalMatters: 3,
		Notes: []models.Note{{Content: "First note", Author: "Margaret Chen", CreatedAt: time.Now().UTC()}},
	}
	require.NoError(t, s.CreateClient(ctx, c))
	require.NotEmpty(t, c.ID)

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, 3, got.TotalMatters)
	assert.Len(t, got.Notes, 1)

	t.Run("find is case-insensitive substring", func(t *testing.T) {
		found, err := s.FindClient(ctx, "meridian")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, c.ID, found.ID)

		missing, err := s.FindClient(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("save merges changes", func(t *testing.T) {
		got.Status = models.ClientInactive
		got.TotalMatters = 4
		require.NoError(t, s.SaveClient(ctx, got))

		again, err := s.GetClient(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ClientInactive, again.Status)
		assert.Equal(t, 4, again.TotalMatters)
	})

	t.Run("unique email enforced", func(t *testing.T) {
		dup := &models.Client{Name: "Other", Email: "legal@meridianmfg.com", Status: models.ClientActive}
		assert.Error(t, s.CreateClient(ctx, dup))
	})

	t.Run("delete then not found", func(t *testing.T) {
		require.NoError(t, s.DeleteClient(ctx, c.ID))
		gone, err := s.GetClient(ctx, c.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
		assert.ErrorIs(t, s.DeleteClient(ctx, c.ID), ErrNotFound)
	})
}

func TestSurrealCaseQueries(t *testing.T) {
	ctx := context.Background()
	s := freshSurrealStore(t)

	client := &models.Client{Name: "Acme", Email: "a@a.test", Status: models.ClientActive}
	require.NoError(t, s.CreateClient(ctx, client))

	deadline := time.Now().UTC().AddDate(0, 0, 30).Truncate(time.Second)
	open := &models.Case{
		Title: "Contract Dispute", CaseNumber: "CD-2026-001",
		ClientID: client.ID, ClientName: client.Name,
		Status: models.CaseDiscovery, Priority: models.PriorityHigh,
		AssignedTeam: []string{"Margaret Chen"},
		Deadline:     &deadline,
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

	t.Run("filters", func(t *testing.T) {
		active, err := s.ListCases(ctx, CaseFilter{NotStatus: models.CaseClosed})
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "Contract Dispute", active[0].Title)

		high, err := s.ListCases(ctx, CaseFilter{Priority: models.PriorityHigh})
		require.NoError(t, err)
		assert.Len(t, high, 1)
	})

	t.Run("find prefers creation order", func(t *testing.T) {
		found, err := s.FindCase(ctx, "2026")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "CD-2026-001", found.CaseNumber)
	})

	t.Run("optional deadline survives round trip", func(t *testing.T) {
		got, err := s.GetCase(ctx, open.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Deadline)
		assert.WithinDuration(t, deadline, *got.Deadline, time.Second)

		noDeadline, err := s.GetCase(ctx, closed.ID)
		require.NoError(t, err)
		assert.Nil(t, noDeadline.Deadline)
	})
}

func TestSurrealTasksAndTeam(t *testing.T) {
	ctx := context.Background()
	s := freshSurrealStore(t)

	member := &models.TeamMember{
		Name: "Sarah Mitchell", Email: "smitchell@hartfordlegal.com",
		Role: models.RoleParalegal, Specialties: []string{"Litigation Support"},
	}
	require.NoError(t, s.CreateTeamMember(ctx, member))

	require.NoError(t, s.CreateTask(ctx, &models.Task{
		Title: "File motion", Status: models.TaskPending, Priority: models.PriorityHigh,
		AssignedToID: member.ID, AssignedToName: member.Name,
	}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{
		Title: "Archive records", Status: models.TaskCompleted, Priority: models.PriorityHigh,
		AssignedToID: member.ID, AssignedToName: member.Name,
	}))

	t.Run("task filters compose", func(t *testing.T) {
		got, err := s.ListTasks(ctx, TaskFilter{Priority: models.PriorityHigh, NotStatus: models.TaskCompleted})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "File motion", got[0].Title)

		byAssignee, err := s.ListTasks(ctx, TaskFilter{AssigneeName: "sarah"})
		require.NoError(t, err)
		assert.Len(t, byAssignee, 2)
	})

	t.Run("role prefix filter", func(t *testing.T) {
		got, err := s.ListTeam(ctx, TeamFilter{RolePrefix: "paralegal"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Sarah Mitchell", got[0].Name)

		none, err := s.ListTeam(ctx, TeamFilter{RolePrefix: "intern"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("find team member", func(t *testing.T) {
		found, err := s.FindTeamMember(ctx, "mitchell")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, member.ID, found.ID)
	})

	t.Run("counts", func(t *testing.T) {
		tasks, err := s.CountTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, tasks)

		team, err := s.CountTeam(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, team)

		clients, err := s.CountClients(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, clients)
	})
}

func TestSurrealSeed(t *testing.T) {
	ctx := context.Background()
	s := freshSurrealStore(t)

	require.NoError(t, Seed(ctx, s, discardLogger()))

	clients, err := s.ListClients(ctx, ClientFilter{})
	require.NoError(t, err)
	assert.Len(t, clients, 9)

	total, err := s.CountCases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, total)

	tasks, err := s.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 12)

	team, err := s.ListTeam(ctx, TeamFilter{})
	require.NoError(t, err)
	assert.Len(t, team, 8)
}
