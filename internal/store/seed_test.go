package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfirm/lex/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, Seed(ctx, s, discardLogger()))

	t.Run("fixture counts", func(t *testing.T) {
		team, err := s.ListTeam(ctx, TeamFilter{})
		require.NoError(t, err)
		assert.Len(t, team, 8)

		clients, err := s.ListClients(ctx, ClientFilter{})
		require.NoError(t, err)
		assert.Len(t, clients, 9)

		total, err := s.CountCases(ctx)
		require.NoError(t, err)
		assert.Equal(t, 11, total)

		tasks, err := s.ListTasks(ctx, TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, tasks, 12)
	})

	t.Run("cross references resolve to ids", func(t *testing.T) {
		c, err := s.FindCase(ctx, "MM-2024-001")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "Meridian Manufacturing Inc.", c.ClientName)
		assert.NotEmpty(t, c.ClientID)

		client, err := s.GetClient(ctx, c.ClientID)
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.Equal(t, "Meridian Manufacturing Inc.", client.Name)
	})

	t.Run("tasks carry assignee and case", func(t *testing.T) {
		tasks, err := s.ListTasks(ctx, TaskFilter{})
		require.NoError(t, err)
		for _, task := range tasks {
			assert.NotEmpty(t, task.AssignedToID, "task %q", task.Title)
			assert.NotEmpty(t, task.AssignedToName, "task %q", task.Title)
			assert.NotEmpty(t, task.RelatedCaseID, "task %q", task.Title)
		}
	})

	t.Run("client notes preserved", func(t *testing.T) {
		client, err := s.FindClient(ctx, "Meridian")
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.NotEmpty(t, client.Notes)
		for _, n := range client.Notes {
			assert.NotEmpty(t, n.Author)
			assert.False(t, n.CreatedAt.IsZero())
		}
	})

	t.Run("statuses and roles are valid", func(t *testing.T) {
		team, err := s.ListTeam(ctx, TeamFilter{})
		require.NoError(t, err)
		for _, m := range team {
			assert.True(t, models.ValidRole(m.Role), "role %q", m.Role)
		}

		cases, err := s.ListCases(ctx, CaseFilter{})
		require.NoError(t, err)
		for _, c := range cases {
			assert.True(t, models.ValidCaseStatus(c.Status), "case %s status %q", c.CaseNumber, c.Status)
			assert.True(t, models.ValidPriority(c.Priority), "case %s priority %q", c.CaseNumber, c.Priority)
		}
	})

	t.Run("reseed wipes first", func(t *testing.T) {
		require.NoError(t, Seed(ctx, s, discardLogger()))
		clients, err := s.ListClients(ctx, ClientFilter{})
		require.NoError(t, err)
		assert.Len(t, clients, 9)
	})
}
