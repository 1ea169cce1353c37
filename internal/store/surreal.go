package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/lexfirm/lex/internal/db"
	"github.com/lexfirm/lex/internal/models"
)

// SurrealStore is the SurrealDB-backed Store implementation. Record ids are
// generated client-side so the string part of the record id doubles as the
// public entity id.
type SurrealStore struct {
	client *db.Client
}

// NewSurrealStore wraps an established SurrealDB connection.
func NewSurrealStore(client *db.Client) *SurrealStore {
	return &SurrealStore{client: client}
}

type noteRow struct {
	Content string    `json:"content"`
	Author  string    `json:"author"`
	Created time.Time `json:"created"`
}

type clientRow struct {
	ID           surrealmodels.RecordID `json:"id"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	CompanyName  string                 `json:"company_name"`
	Status       string                 `json:"status"`
	Notes        []noteRow              `json:"notes"`
	TotalMatters int                    `json:"total_matters"`
	Created      time.Time              `json:"created,omitempty"`
}

type caseRow struct {
	ID           surrealmodels.RecordID `json:"id"`
	Title        string                 `json:"title"`
	CaseNumber   string                 `json:"case_number"`
	ClientID     string                 `json:"client_id"`
	ClientName   string                 `json:"client_name"`
	Status       string                 `json:"status"`
	Priority     string                 `json:"priority"`
	AssignedTeam []string               `json:"assigned_team"`
	Deadline     *time.Time             `json:"deadline,omitempty"`
	Description  string                 `json:"description"`
	Created      time.Time              `json:"created,omitempty"`
}

type taskRow struct {
	ID             surrealmodels.RecordID `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Status         string                 `json:"status"`
	Priority       string                 `json:"priority"`
	AssignedToID   string                 `json:"assigned_to_id"`
	AssignedToName string                 `json:"assigned_to_name"`
	RelatedCaseID  string                 `json:"related_case_id"`
	RelatedCase    string                 `json:"related_case"`
	DueDate        *time.Time             `json:"due_date,omitempty"`
	Created        time.Time              `json:"created,omitempty"`
}

type teamMemberRow struct {
	ID          surrealmodels.RecordID `json:"id"`
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	Role        string                 `json:"role"`
	Specialties []string               `json:"specialties"`
	AvatarURL   string                 `json:"avatar_url"`
	Created     time.Time              `json:"created,omitempty"`
}

func recordIDString(id surrealmodels.RecordID) string {
	if s, ok := id.ID.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", id.ID)
}

func (r clientRow) toModel() models.Client {
	notes := make([]models.Note, 0, len(r.Notes))
	for _, n := range r.Notes {
		notes = append(notes, models.Note{Content: n.Content, Author: n.Author, CreatedAt: n.Created})
	}
	return models.Client{
		ID:           recordIDString(r.ID),
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		CompanyName:  r.CompanyName,
		Status:       r.Status,
		Notes:        notes,
		TotalMatters: r.TotalMatters,
		CreatedAt:    r.Created,
	}
}

func (r caseRow) toModel() models.Case {
	team := r.AssignedTeam
	if team == nil {
		team = []string{}
	}
	return models.Case{
		ID:           recordIDString(r.ID),
		Title:        r.Title,
		CaseNumber:   r.CaseNumber,
		ClientID:     r.ClientID,
		ClientName:   r.ClientName,
		Status:       r.Status,
		Priority:     r.Priority,
		AssignedTeam: team,
		Deadline:     r.Deadline,
		Description:  r.Description,
		CreatedAt:    r.Created,
	}
}

func (r taskRow) toModel() models.Task {
	return models.Task{
		ID:             recordIDString(r.ID),
		Title:          r.Title,
		Description:    r.Description,
		Status:         r.Status,
		Priority:       r.Priority,
		AssignedToID:   r.AssignedToID,
		AssignedToName: r.AssignedToName,
		RelatedCaseID:  r.RelatedCaseID,
		RelatedCase:    r.RelatedCase,
		DueDate:        r.DueDate,
		CreatedAt:      r.Created,
	}
}

func (r teamMemberRow) toModel() models.TeamMember {
	specs := r.Specialties
	if specs == nil {
		specs = []string{}
	}
	return models.TeamMember{
		ID:          recordIDString(r.ID),
		Name:        r.Name,
		Email:       r.Email,
		Role:        r.Role,
		Specialties: specs,
		AvatarURL:   r.AvatarURL,
		CreatedAt:   r.Created,
	}
}

// queryRows runs sql and returns the first statement's result rows.
func queryRows[T any](ctx context.Context, s *SurrealStore, sql string, vars map[string]any) ([]T, error) {
	results, err := surrealdb.Query[[]T](ctx, s.client.DB(), sql, vars)
	if err != nil {
		return nil, err
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// countTable counts a table's records server-side, without fetching rows.
func countTable(ctx context.Context, s *SurrealStore, table string) (int, error) {
	type countRow struct {
		Total int `json:"total"`
	}
	rows, err := queryRows[countRow](ctx, s, fmt.Sprintf(`SELECT count() AS total FROM %s GROUP ALL`, table), nil)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (s *SurrealStore) ListClients(ctx context.Context, f ClientFilter) ([]models.Client, error) {
	clauses := []string{}
	vars := map[string]any{}
	if f.Status != "" {
		clauses = append(clauses, "status = $status")
		vars["status"] = f.Status
	}
	sql := "SELECT * FROM client" + whereClause(clauses) + " ORDER BY created ASC"

	rows, err := queryRows[clientRow](ctx, s, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	out := make([]models.Client, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *SurrealStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	rows, err := queryRows[clientRow](ctx, s, `SELECT * FROM type::record("client", $id)`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toModel()
	return &m, nil
}

func (s *SurrealStore) FindClient(ctx context.Context, query string) (*models.Client, error) {
	rows, err := queryRows[clientRow](ctx, s, `
		SELECT * FROM client
		WHERE string::contains(string::lowercase(name), $q)
		ORDER BY created ASC LIMIT 1
	`, map[string]any{"q": strings.ToLower(query)})
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toModel()
	return &m, nil
}

func (s *SurrealStore) CreateClient(ctx context.Context, c *models.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	notes := make([]noteRow, 0, len(c.Notes))
	for _, n := range c.Notes {
		created := n.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		notes = append(notes, noteRow{Content: n.Content, Author: n.Author, Created: created})
	}
	data := map[string]any{
		"name":          c.Name,
		"email":         c.Email,
		"phone":         c.Phone,
		"company_name":  c.CompanyName,
		"status":        c.Status,
		"notes":         notes,
		"total_matters": c.TotalMatters,
	}
	rows, err := queryRows[clientRow](ctx, s, `CREATE type::record("client", $id) CONTENT $data`,
		map[string]any{"id": c.ID, "data": data})
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	if len(rows) > 0 {
		c.CreatedAt = rows[0].Created
	}
	return nil
}

func (s *SurrealStore) SaveClient(ctx context.Context, c *models.Client) error {
	notes := make([]noteRow, 0, len(c.Notes))
	for _, n := range c.Notes {
		created := n.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		notes = append(notes, noteRow{Content: n.Content, Author: n.Author, Created: created})
	}
	data := map[string]any{
		"name":          c.Name,
		"email":         c.Email,
		"phone":         c.Phone,
		"company_name":  c.CompanyName,
		"status":        c.Status,
		"notes":         notes,
		"total_matters": c.TotalMatters,
	}
	rows, err := queryRows[clientRow](ctx, s, `UPDATE type::record("client", $id) MERGE $data`,
		map[string]any{"id": c.ID, "data": data})
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SurrealStore) DeleteClient(ctx context.Context, id string) error {
	rows, err := queryRows[clientRow](ctx, s, `DELETE type::record("client", $id) RETURN BEFORE`,
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SurrealStore) CountClients(ctx context.Context) (int, error) {
	return countTable(ctx, s, "client")
}

func (s *SurrealStore) ListCases(ctx context.Context, f CaseFilter) ([]models.Case, error) {
	clauses := []string{}
	vars := map[string]any{}
	if f.Status != "" {
		clauses = append(clauses, "status = $status")
		vars["status"] = f.Status
	}
	if f.Priority != "" {
		clauses = append(clauses, "priority = $priority")
		vars["priority"] = f.Priority
	}
	if f.NotStatus != "" {
		clauses = append(clauses, "status != $not_status")
		vars["not_status"] = f.NotStatus
	}
	sql := "SELECT * FROM legal_case" + whereClause(clauses) + " ORDER BY created ASC"

	rows, err := queryRows[caseRow](ctx, s, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	out := make([]models.Case, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *SurrealStore) GetCase(ctx context.Context, id string) (*models.Case, error) {
	rows, err := queryRows[caseRow](ctx, s, `SELECT * FROM type::record("legal_case", $id)`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toModel()
	return &m, nil
}

func (s *SurrealStore) FindCase(ctx context.Context, query string) (*models.Case, error) {
	rows, err := queryRows[caseRow](ctx, s, `
		SELECT * FROM legal_case
		WHERE string::contains(string::lowercase(title), $q)
			OR string::contains(string::lowercase(case_number), $q)
		ORDER BY created ASC LIMIT 1
	`, map[string]any{"q": strings.ToLower(query)})
	if err != nil {
		return nil, fmt.Errorf("find case: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toModel()
	return &m, nil
}

func (s *SurrealStore) CreateCase(ctx context.Context, c *models.Case) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	team := c.AssignedTeam
	if team == nil {
		team = []string{}
	}
	data := map[string]any{
		"title":         c.Title,
		"case_number":   c.CaseNumber,
		"client_id":     c.ClientID,
		"client_name":   c.ClientName,
		"status":        c.Status,
		"priority":      c.Priority,
		"assigned_team": team,
		"description":   c.Description,
	}
	if c.Deadline != nil {
		data["deadline"] = *c.Deadline
	}
	rows, err := queryRows[caseRow](ctx, s, `CREATE type::record("legal_case", $id) CONTENT $data`,
		map[string]any{"id": c.ID, "data": data})
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	if len(rows) > 0 {
		c.CreatedAt = rows[0].Created
	}
	return nil
}

func (s *SurrealStore) SaveCase(ctx context.Context, c *models.Case) error {
	data := map[string]any{
		"title":         c.Title,
		"case_number":   c.CaseNumber,
		"client_id":     c.ClientID,
		"client_name":   c.ClientName,
		"status":        c.Status,
		"priority":      c.Priority,
		"assigned_team": c.AssignedTeam,
		"description":   c.Description,
	}
	if c.Deadline != nil {
		data["deadline"] = *c.Deadline
	}
	rows, err := queryRows[caseRow](ctx, s, `UPDATE type::record("legal_case", $id) MERGE $data`,
		map[string]any{"id": c.ID, "data": data})
	if err != nil {
		return fmt.Errorf("save case: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SurrealStore) DeleteCase(ctx context.Context, id string) error {
	rows, err := queryRows[caseRow](ctx, s, `DELETE type::record("legal_case", $id) RETURN BEFORE`,
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SurrealStore) CountCases(ctx context.Context) (int, error) {
	return countTable(ctx, s, "legal_case")
}

func (s *SurrealStore) ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	clauses := []string{}
	vars := map[string]any{}
	if f.Status != "" {
		clauses = append(clauses, "status = $status")
		vars["status"] = f.Status
	}
	if f.Priority != "" {
		clauses = append(clauses, "priority = $priority")
		vars["priority"] = f.Priority
	}
	if f.NotStatus != "" {
		clauses = append(clauses, "status != $not_status")
		vars["not_status"] = f.NotStatus
	}
	if f.AssigneeName != "" {
		clauses = append(clauses, "string::contains(string::lowercase(assigned_to_name), $assignee)")
		vars["assignee"] = strings.ToLower(f.AssigneeName)
	}
	sql := "SELECT * FROM task" + whereClause(clauses) + " ORDER BY created ASC"

	rows, err := queryRows[taskRow](ctx, s, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *SurrealStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	rows, err := queryRows[taskRow](ctx, s, `SELECT * FROM type::record("task", $id)`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toModel()
	return &m, nil
}

func (s *SurrealStore) FindTask(ctx context.Context, query string) (*models.Task, error) {
	rows, err := queryRows[taskRow](ctx, s, `
		SELECT * FROM task
		WHERE string::contains(string::lowercase(title), $q)
		ORDER BY created ASC LIMIT 1
	`, map[string]any{"q": strings.ToLower(query)})
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toModel()
	return &m, nil
}

func (s *SurrealStore) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	data := map[string]any{
		"title":            t.Title,
		"description":      t.Description,
		"status":           t.Status,
		"priority":         t.Priority,
		"assigned_to_id":   t.AssignedToID,
		"assigned_to_name": t.AssignedToName,
		"related_case_id":  t.RelatedCaseID,
		"related_case":     t.RelatedCase,
	}
	if t.DueDate != nil {
		data["due_date"] = *t.DueDate
	}
	rows, err := queryRows[taskRow](ctx, s, `CREATE type::record("task", $id) CONTENT $data`,
		map[string]any{"id": t.ID, "data": data})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if len(rows) > 0 {
		t.CreatedAt = rows[0].Created
	}
	return nil
}

func (s *SurrealStore) SaveTask(ctx context.Context, t *models.Task) error {
	data := map[string]any{
		"title":            t.Title,
		"description":      t.Description,
		"status":           t.Status,
		"priority":         t.Priority,
		"assigned_to_id":   t.AssignedToID,
		"assigned_to_name": t.AssignedToName,
		"related_case_id":  t.RelatedCaseID,
		"related_case":     t.RelatedCase,
	}
	if t.DueDate != nil {
		data["due_date"] = *t.DueDate
	}
	rows, err := queryRows[taskRow](ctx, s, `UPDATE type::record("task", $id) MERGE $data`,
		map[string]any{"id": t.ID, "data": data})
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SurrealStore) DeleteTask(ctx context.Context, id string) error {
	rows, err := queryRows[taskRow](ctx, s, `DELETE type::record("task", $id) RETURN BEFORE`,
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SurrealStore) CountTasks(ctx context.Context) (int, error) {
	return countTable(ctx, s, "task")
}

func (s *SurrealStore) ListTeam(ctx context.Context, f TeamFilter) ([]models.TeamMember, error) {
	clauses := []string{}
	vars := map[string]any{}
	if f.RolePrefix != "" {
		clauses = append(clauses, "string::starts_with(string::lowercase(role), $role)")
		vars["role"] = strings.ToLower(f.RolePrefix)
	}
	sql := "SELECT * FROM team_member" + whereClause(clauses) + " ORDER BY created ASC"

	rows, err := queryRows[teamMemberRow](ctx, s, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list team: %w", err)
	}
	out := make([]models.TeamMember, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *SurrealStore) GetTeamMember(ctx context.Context, id string) (*models.TeamMember, error) {
	rows, err := queryRows[teamMemberRow](ctx, s, `SELECT * FROM type::record("team_member", $id)`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get team member: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toModel()
	return &m, nil
}

func (s *SurrealStore) FindTeamMember(ctx context.Context, query string) (*models.TeamMember, error) {
	rows, err := queryRows[teamMemberRow](ctx, s, `
		SELECT * FROM team_member
		WHERE string::contains(string::lowercase(name), $q)
		ORDER BY created ASC LIMIT 1
	`, map[string]any{"q": strings.ToLower(query)})
	if err != nil {
		return nil, fmt.Errorf("find team member: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toModel()
	return &m, nil
}

func (s *SurrealStore) CreateTeamMember(ctx context.Context, m *models.TeamMember) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	specs := m.Specialties
	if specs == nil {
		specs = []string{}
	}
	data := map[string]any{
		"name":        m.Name,
		"email":       m.Email,
		"role":        m.Role,
		"specialties": specs,
		"avatar_url":  m.AvatarURL,
	}
	rows, err := queryRows[teamMemberRow](ctx, s, `CREATE type::record("team_member", $id) CONTENT $data`,
		map[string]any{"id": m.ID, "data": data})
	if err != nil {
		return fmt.Errorf("create team member: %w", err)
	}
	if len(rows) > 0 {
		m.CreatedAt = rows[0].Created
	}
	return nil
}

func (s *SurrealStore) CountTeam(ctx context.Context) (int, error) {
	return countTable(ctx, s, "team_member")
}

func (s *SurrealStore) Wipe(ctx context.Context) error {
	return s.client.WipeData(ctx)
}

func (s *SurrealStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func whereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}
