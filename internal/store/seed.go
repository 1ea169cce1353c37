package store

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lexfirm/lex/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

type seedNote struct {
	Content string `yaml:"content"`
	Author  string `yaml:"author"`
	DaysAgo int    `yaml:"days_ago"`
}

type seedClient struct {
	Name         string     `yaml:"name"`
	CompanyName  string     `yaml:"company_name"`
	Email        string     `yaml:"email"`
	Phone        string     `yaml:"phone"`
	Status       string     `yaml:"status"`
	TotalMatters int        `yaml:"total_matters"`
	Notes        []seedNote `yaml:"notes"`
}

type seedCase struct {
	Title          string   `yaml:"title"`
	CaseNumber     string   `yaml:"case_number"`
	Client         string   `yaml:"client"`
	Team           []string `yaml:"team"`
	Status         string   `yaml:"status"`
	Priority       string   `yaml:"priority"`
	Description    string   `yaml:"description"`
	DeadlineInDays *int     `yaml:"deadline_in_days"`
}

type seedTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Priority    string `yaml:"priority"`
	AssignedTo  string `yaml:"assigned_to"`
	Case        string `yaml:"case"`
	DueInDays   *int   `yaml:"due_in_days"`
}

type seedMember struct {
	Name        string   `yaml:"name"`
	Email       string   `yaml:"email"`
	Role        string   `yaml:"role"`
	Specialties []string `yaml:"specialties"`
	AvatarURL   string   `yaml:"avatar_url"`
}

type seedFile struct {
	Team    []seedMember `yaml:"team"`
	Clients []seedClient `yaml:"clients"`
	Cases   []seedCase   `yaml:"cases"`
	Tasks   []seedTask   `yaml:"tasks"`
}

// Seed wipes the store and loads the embedded demo dataset. Cross-references
// between fixtures are by name (team members, clients) or case number.
func Seed(ctx context.Context, s Store, log *slog.Logger) error {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return fmt.Errorf("parse seed data: %w", err)
	}

	if err := s.Wipe(ctx); err != nil {
		return fmt.Errorf("wipe store: %w", err)
	}

	now := time.Now()

	log.Info("seeding team members", "count", len(f.Team))
	members := map[string]*models.TeamMember{}
	for _, sm := range f.Team {
		m := &models.TeamMember{
			Name:        sm.Name,
			Email:       sm.Email,
			Role:        sm.Role,
			Specialties: sm.Specialties,
			AvatarURL:   sm.AvatarURL,
		}
		if err := s.CreateTeamMember(ctx, m); err != nil {
			return fmt.Errorf("seed team member %q: %w", sm.Name, err)
		}
		members[sm.Name] = m
	}

	log.Info("seeding clients", "count", len(f.Clients))
	clients := map[string]*models.Client{}
	for _, sc := range f.Clients {
		notes := make([]models.Note, 0, len(sc.Notes))
		for _, n := range sc.Notes {
			notes = append(notes, models.Note{
				Content:   n.Content,
				Author:    n.Author,
				CreatedAt: now.AddDate(0, 0, -n.DaysAgo),
			})
		}
		c := &models.Client{
			Name:         sc.Name,
			CompanyName:  sc.CompanyName,
			Email:        sc.Email,
			Phone:        sc.Phone,
			Status:       sc.Status,
			TotalMatters: sc.TotalMatters,
			Notes:        notes,
		}
		if err := s.CreateClient(ctx, c); err != nil {
			return fmt.Errorf("seed client %q: %w", sc.Name, err)
		}
		clients[sc.Name] = c
	}

	log.Info("seeding cases", "count", len(f.Cases))
	cases := map[string]*models.Case{}
	for _, sc := range f.Cases {
		client, ok := clients[sc.Client]
		if !ok {
			return fmt.Errorf("seed case %q: unknown client %q", sc.CaseNumber, sc.Client)
		}
		team := make([]string, 0, len(sc.Team))
		for _, name := range sc.Team {
			m, ok := members[name]
			if !ok {
				return fmt.Errorf("seed case %q: unknown team member %q", sc.CaseNumber, name)
			}
			team = append(team, m.Name)
		}
		var deadline *time.Time
		if sc.DeadlineInDays != nil {
			d := now.AddDate(0, 0, *sc.DeadlineInDays)
			deadline = &d
		}
		c := &models.Case{
			Title:        sc.Title,
			CaseNumber:   sc.CaseNumber,
			ClientID:     client.ID,
			ClientName:   client.Name,
			Status:       sc.Status,
			Priority:     sc.Priority,
			AssignedTeam: team,
			Deadline:     deadline,
			Description:  sc.Description,
		}
		if err := s.CreateCase(ctx, c); err != nil {
			return fmt.Errorf("seed case %q: %w", sc.CaseNumber, err)
		}
		cases[sc.CaseNumber] = c
	}

	log.Info("seeding tasks", "count", len(f.Tasks))
	for _, st := range f.Tasks {
		m, ok := members[st.AssignedTo]
		if !ok {
			return fmt.Errorf("seed task %q: unknown team member %q", st.Title, st.AssignedTo)
		}
		c, ok := cases[st.Case]
		if !ok {
			return fmt.Errorf("seed task %q: unknown case %q", st.Title, st.Case)
		}
		var due *time.Time
		if st.DueInDays != nil {
			d := now.AddDate(0, 0, *st.DueInDays)
			due = &d
		}
		t := &models.Task{
			Title:          st.Title,
			Description:    st.Description,
			Status:         st.Status,
			Priority:       st.Priority,
			AssignedToID:   m.ID,
			AssignedToName: m.Name,
			RelatedCaseID:  c.ID,
			RelatedCase:    c.Title,
			DueDate:        due,
		}
		if err := s.CreateTask(ctx, t); err != nil {
			return fmt.Errorf("seed task %q: %w", st.Title, err)
		}
	}

	log.Info("seeding completed")
	return nil
}
