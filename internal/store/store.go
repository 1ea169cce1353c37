// Package store provides persistence for the firm's clients, cases, tasks
// and team members. Two implementations exist: SurrealDB for production and
// an in-memory store for tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/lexfirm/lex/internal/models"
)

// ErrNotFound indicates the referenced record does not exist.
// Lookup methods (Get*/Find*) return (nil, nil) for missing records;
// mutation methods return ErrNotFound.
var ErrNotFound = errors.New("record not found")

// ClientFilter narrows ListClients results. Zero value matches everything.
type ClientFilter struct {
	Status string
}

// CaseFilter narrows ListCases results. Zero value matches everything.
type CaseFilter struct {
	Status    string
	Priority  string
	NotStatus string
}

// TaskFilter narrows ListTasks results. Zero value matches everything.
// AssigneeName matches case-insensitively against the assignee's name.
type TaskFilter struct {
	Status       string
	Priority     string
	AssigneeName string
	NotStatus    string
}

// TeamFilter narrows ListTeam results. Zero value matches everything.
// RolePrefix matches roles by prefix so singularized user input like
// "paralegal" or "staf" still selects the right members.
type TeamFilter struct {
	RolePrefix string
}

// Store is the persistence interface shared by all backends.
//
// Find* methods perform a case-insensitive substring match and return the
// first hit in creation order, or (nil, nil) when nothing matches.
// FindClient matches the client name only. Count* methods report record
// totals without fetching rows.
type Store interface {
	ListClients(ctx context.Context, f ClientFilter) ([]models.Client, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	FindClient(ctx context.Context, query string) (*models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
	SaveClient(ctx context.Context, c *models.Client) error
	DeleteClient(ctx context.Context, id string) error
	CountClients(ctx context.Context) (int, error)

	ListCases(ctx context.Context, f CaseFilter) ([]models.Case, error)
	GetCase(ctx context.Context, id string) (*models.Case, error)
	FindCase(ctx context.Context, query string) (*models.Case, error)
	CreateCase(ctx context.Context, c *models.Case) error
	SaveCase(ctx context.Context, c *models.Case) error
	DeleteCase(ctx context.Context, id string) error
	CountCases(ctx context.Context) (int, error)

	ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	FindTask(ctx context.Context, query string) (*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	SaveTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	CountTasks(ctx context.Context) (int, error)

	ListTeam(ctx context.Context, f TeamFilter) ([]models.TeamMember, error)
	GetTeamMember(ctx context.Context, id string) (*models.TeamMember, error)
	FindTeamMember(ctx context.Context, query string) (*models.TeamMember, error)
	CreateTeamMember(ctx context.Context, m *models.TeamMember) error
	CountTeam(ctx context.Context) (int, error)

	// Wipe removes all records while keeping the schema intact.
	Wipe(ctx context.Context) error
	Close(ctx context.Context) error
}
