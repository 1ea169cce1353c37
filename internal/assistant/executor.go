package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lexfirm/lex/internal/metrics"
	"github.com/lexfirm/lex/internal/models"
	"github.com/lexfirm/lex/internal/store"
)

// noteAuthor is recorded on notes added through the assistant.
const noteAuthor = "AI Assistant"

// Executor runs tool calls against the store. Every tool returns a string:
// data as JSON or markdown for the model to relay, lookup misses as plain
// sentences, clarification questions prefixed with ⚠️, and execution
// failures as "Error executing <tool>: <message>". Only transport-level
// failures surface as Go errors, and those never originate here.
type Executor struct {
	store store.Store
	log   *slog.Logger
	now   func() time.Time
}

// NewExecutor creates an Executor.
func NewExecutor(s store.Store, log *slog.Logger) *Executor {
	return &Executor{store: s, log: log, now: time.Now}
}

// Execute runs the named tool and returns its result string.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) string {
	result, err := e.dispatch(ctx, name, args)
	if err != nil {
		e.log.Error("tool execution failed", "tool", name, "error", err)
		metrics.ToolExecutions.WithLabelValues(name, "error").Inc()
		return fmt.Sprintf("Error executing %s: %s", name, err.Error())
	}
	metrics.ToolExecutions.WithLabelValues(name, "ok").Inc()
	e.log.Debug("tool executed", "tool", name)
	return result
}

func (e *Executor) dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case ToolListClients:
		return e.listClients(ctx, args)
	case ToolGetClientInfo:
		return e.getClientInfo(ctx, args)
	case ToolCreateClient:
		return e.createClient(ctx, args)
	case ToolUpdateClient:
		return e.updateClient(ctx, args)
	case ToolAddClientNote:
		return e.addClientNote(ctx, args)
	case ToolListCases:
		return e.listCases(ctx, args)
	case ToolGetCaseInfo:
		return e.getCaseInfo(ctx, args)
	case ToolUpdateCaseStatus:
		return e.updateCaseStatus(ctx, args)
	case ToolCreateCase:
		return e.createCase(ctx, args)
	case ToolListTasks:
		return e.listTasks(ctx, args)
	case ToolCreateTask:
		return e.createTask(ctx, args)
	case ToolUpdateTaskStatus:
		return e.updateTaskStatus(ctx, args)
	case ToolListTeamMembers:
		return e.listTeamMembers(ctx, args)
	case ToolGetTeamMemberInfo:
		return e.getTeamMemberInfo(ctx, args)
	case ToolGetDashboardSummary:
		return e.dashboardSummary(ctx)
	default:
		return fmt.Sprintf("Unknown function: %s", name), nil
	}
}

func argString(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func (e *Executor) listClients(ctx context.Context, args map[string]any) (string, error) {
	clients, err := e.store.ListClients(ctx, store.ClientFilter{Status: argString(args, "status")})
	if err != nil {
		return "", err
	}
	if len(clients) == 0 {
		return "No clients found matching the criteria.", nil
	}

	type row struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Status  string `json:"status"`
		Company string `json:"company"`
		Phone   string `json:"phone"`
	}
	rows := make([]row, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, row{
			Name:    c.Name,
			Email:   c.Email,
			Status:  c.Status,
			Company: orNA(c.CompanyName),
			Phone:   orNA(c.Phone),
		})
	}
	return marshalJSON(rows)
}

func (e *Executor) getClientInfo(ctx context.Context, args map[string]any) (string, error) {
	name := argString(args, "clientName")
	client, err := e.store.FindClient(ctx, name)
	if err != nil {
		return "", err
	}
	if client == nil {
		return fmt.Sprintf("Client %q not found.", name), nil
	}

	return marshalJSON(struct {
		Name         string `json:"name"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Company      string `json:"company"`
		Status       string `json:"status"`
		NotesCount   int    `json:"notesCount"`
		TotalMatters int    `json:"totalMatters"`
	}{
		Name:         client.Name,
		Email:        client.Email,
		Phone:        client.Phone,
		Company:      client.CompanyName,
		Status:       client.Status,
		NotesCount:   len(client.Notes),
		TotalMatters: client.TotalMatters,
	})
}

func (e *Executor) createClient(ctx context.Context, args map[string]any) (string, error) {
	name := argString(args, "name")
	email := argString(args, "email")

	existing, err := e.store.ListClients(ctx, store.ClientFilter{})
	if err != nil {
		return "", err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Email, email) {
			return fmt.Sprintf("A client with email %s already exists.", email), nil
		}
	}

	status := argString(args, "status")
	if status == "" {
		status = models.ClientProspect
	}
	client := &models.Client{
		Name:        name,
		Email:       email,
		Phone:       argString(args, "phone"),
		CompanyName: argString(args, "companyName"),
		Status:      status,
		Notes:       []models.Note{},
	}
	if err := e.store.CreateClient(ctx, client); err != nil {
		return "", err
	}
	return fmt.Sprintf("Client %q created successfully with email %s.", name, email), nil
}

func (e *Executor) updateClient(ctx context.Context, args map[string]any) (string, error) {
	name := argString(args, "clientName")
	client, err := e.store.FindClient(ctx, name)
	if err != nil {
		return "", err
	}
	if client == nil {
		return fmt.Sprintf("Client %q not found.", name), nil
	}

	if v := argString(args, "newName"); v != "" {
		client.Name = v
	}
	if v := argString(args, "email"); v != "" {
		client.Email = v
	}
	if v := argString(args, "phone"); v != "" {
		client.Phone = v
	}
	if v := argString(args, "status"); v != "" {
		client.Status = v
	}
	if err := e.store.SaveClient(ctx, client); err != nil {
		return "", err
	}
	return fmt.Sprintf("Client %q updated successfully.", client.Name), nil
}

func (e *Executor) addClientNote(ctx context.Context, args map[string]any) (string, error) {
	name := argString(args, "clientName")
	if name == "" {
		return "⚠️ Which client should I add the note to?", nil
	}
	content := strings.TrimSpace(argString(args, "noteContent"))
	if content == "" {
		return fmt.Sprintf("⚠️ What note would you like to add to %q?", name), nil
	}

	client, err := e.store.FindClient(ctx, name)
	if err != nil {
		return "", err
	}
	if client == nil {
		return fmt.Sprintf("Client %q not found.", name), nil
	}

	client.Notes = append(client.Notes, models.Note{
		Content:   content,
		Author:    noteAuthor,
		CreatedAt: e.now(),
	})
	if err := e.store.SaveClient(ctx, client); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Note added to client %q: %q. [View Client Notes →](/clients/%s)", client.Name, content, client.ID), nil
}

func (e *Executor) listCases(ctx context.Context, args map[string]any) (string, error) {
	cases, err := e.store.ListCases(ctx, store.CaseFilter{
		Status:   argString(args, "status"),
		Priority: argString(args, "priority"),
	})
	if err != nil {
		return "", err
	}
	if len(cases) == 0 {
		return "No cases found matching the criteria.", nil
	}

	type row struct {
		ID         string     `json:"id"`
		Title      string     `json:"title"`
		CaseNumber string     `json:"caseNumber"`
		Status     string     `json:"status"`
		Priority   string     `json:"priority"`
		Deadline   *time.Time `json:"deadline"`
		Client     string     `json:"client"`
		Link       string     `json:"link"`
	}
	rows := make([]row, 0, len(cases))
	for _, c := range cases {
		clientName := c.ClientName
		if clientName == "" {
			clientName = "Unknown"
		}
		rows = append(rows, row{
			ID:         c.ID,
			Title:      c.Title,
			CaseNumber: c.CaseNumber,
			Status:     c.Status,
			Priority:   c.Priority,
			Deadline:   c.Deadline,
			Client:     clientName,
			Link:       "/cases/" + c.ID,
		})
	}
	return marshalJSON(rows)
}

func (e *Executor) getCaseInfo(ctx context.Context, args map[string]any) (string, error) {
	identifier := argString(args, "caseIdentifier")
	c, err := e.store.FindCase(ctx, identifier)
	if err != nil {
		return "", err
	}
	if c == nil {
		return fmt.Sprintf("Case %q not found.", identifier), nil
	}

	clientName := c.ClientName
	if clientName == "" {
		clientName = "Unknown"
	}
	teamNames := "None"
	if len(c.AssignedTeam) > 0 {
		teamNames = strings.Join(c.AssignedTeam, ", ")
	}
	deadline := "Not set"
	if c.Deadline != nil {
		deadline = c.Deadline.Format("1/2/2006")
	}
	description := c.Description
	if description == "" {
		description = "No description"
	}

	return fmt.Sprintf(`📋 **Case: %s** (%s)
- **Status:** %s
- **Priority:** %s
- **Client:** %s
- **Assigned Team:** %s
- **Deadline:** %s
- **Description:** %s

[View Case Details →](/cases/%s)`,
		c.Title, c.CaseNumber, c.Status, c.Priority, clientName, teamNames, deadline, description, c.ID), nil
}

func (e *Executor) updateCaseStatus(ctx context.Context, args map[string]any) (string, error) {
	identifier := argString(args, "caseIdentifier")
	c, err := e.store.FindCase(ctx, identifier)
	if err != nil {
		return "", err
	}
	if c == nil {
		return fmt.Sprintf("Case %q not found.", identifier), nil
	}

	newStatus := argString(args, "newStatus")
	oldStatus := c.Status
	c.Status = newStatus
	if err := e.store.SaveCase(ctx, c); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Case %q (%s) status updated from %q to %q. [View Case →](/cases/%s)",
		c.Title, c.CaseNumber, oldStatus, newStatus, c.ID), nil
}

func (e *Executor) createCase(ctx context.Context, args map[string]any) (string, error) {
	clientName := argString(args, "clientName")
	client, err := e.store.FindClient(ctx, clientName)
	if err != nil {
		return "", err
	}
	if client == nil {
		return fmt.Sprintf("Client %q not found. Please create the client first or check the spelling.", clientName), nil
	}

	count, err := e.store.CountCases(ctx)
	if err != nil {
		return "", err
	}
	title := argString(args, "title")
	caseNumber := models.NextCaseNumber(title, e.now(), count)

	priority := argString(args, "priority")
	if priority == "" {
		priority = models.PriorityMedium
	}
	status := argString(args, "status")
	if status == "" {
		status = models.CaseIntake
	}
	deadline := e.now().AddDate(0, 0, 30)

	c := &models.Case{
		Title:        title,
		CaseNumber:   caseNumber,
		ClientID:     client.ID,
		ClientName:   client.Name,
		Status:       status,
		Priority:     priority,
		AssignedTeam: []string{},
		Deadline:     &deadline,
		Description:  argString(args, "description"),
	}
	if err := e.store.CreateCase(ctx, c); err != nil {
		return "", err
	}

	client.TotalMatters++
	if err := e.store.SaveClient(ctx, client); err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Case %q (%s) created successfully for client %s. Status: %s, Priority: %s. [View Case →](/cases/%s)",
		title, caseNumber, client.Name, c.Status, c.Priority, c.ID), nil
}

func (e *Executor) listTasks(ctx context.Context, args map[string]any) (string, error) {
	tasks, err := e.store.ListTasks(ctx, store.TaskFilter{
		Status:       argString(args, "status"),
		Priority:     argString(args, "priority"),
		AssigneeName: argString(args, "assigneeName"),
	})
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "No tasks found matching the criteria.", nil
	}

	type row struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"dueDate"`
		AssignedTo  string     `json:"assignedTo"`
		RelatedCase string     `json:"relatedCase"`
	}
	rows := make([]row, 0, len(tasks))
	for _, t := range tasks {
		assignedTo := t.AssignedToName
		if assignedTo == "" {
			assignedTo = "Unassigned"
		}
		relatedCase := t.RelatedCase
		if relatedCase == "" {
			relatedCase = "None"
		}
		rows = append(rows, row{
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
			AssignedTo:  assignedTo,
			RelatedCase: relatedCase,
		})
	}
	return marshalJSON(rows)
}

func (e *Executor) createTask(ctx context.Context, args map[string]any) (string, error) {
	assigneeName := argString(args, "assigneeName")
	assignee, err := e.store.FindTeamMember(ctx, assigneeName)
	if err != nil {
		return "", err
	}
	if assignee == nil {
		return fmt.Sprintf("Team member %q not found. Cannot create task.", assigneeName), nil
	}

	var relatedCaseID, relatedCaseTitle string
	if caseName := argString(args, "caseName"); caseName != "" {
		related, err := e.store.FindCase(ctx, caseName)
		if err != nil {
			return "", err
		}
		if related != nil {
			relatedCaseID = related.ID
			relatedCaseTitle = related.Title
		}
	}

	priority := argString(args, "priority")
	if priority == "" {
		priority = models.PriorityMedium
	}
	due := e.now().AddDate(0, 0, 7)
	if raw := argString(args, "dueDate"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			due = parsed
		}
	}

	title := argString(args, "title")
	task := &models.Task{
		Title:          title,
		Description:    argString(args, "description"),
		Status:         models.TaskPending,
		Priority:       priority,
		AssignedToID:   assignee.ID,
		AssignedToName: assignee.Name,
		RelatedCaseID:  relatedCaseID,
		RelatedCase:    relatedCaseTitle,
		DueDate:        &due,
	}
	if err := e.store.CreateTask(ctx, task); err != nil {
		return "", err
	}
	return fmt.Sprintf("Task %q created and assigned to %s.", title, assignee.Name), nil
}

func (e *Executor) updateTaskStatus(ctx context.Context, args map[string]any) (string, error) {
	title := argString(args, "taskTitle")
	task, err := e.store.FindTask(ctx, title)
	if err != nil {
		return "", err
	}
	if task == nil {
		return fmt.Sprintf("Task %q not found.", title), nil
	}

	newStatus := argString(args, "newStatus")
	oldStatus := task.Status
	task.Status = newStatus
	if err := e.store.SaveTask(ctx, task); err != nil {
		return "", err
	}
	return fmt.Sprintf("Task %q status updated from %q to %q.", task.Title, oldStatus, newStatus), nil
}

func (e *Executor) listTeamMembers(ctx context.Context, args map[string]any) (string, error) {
	members, err := e.store.ListTeam(ctx, store.TeamFilter{RolePrefix: argString(args, "role")})
	if err != nil {
		return "", err
	}
	if len(members) == 0 {
		return "No team members found matching the criteria.", nil
	}

	type row struct {
		Name        string   `json:"name"`
		Email       string   `json:"email"`
		Role        string   `json:"role"`
		Specialties []string `json:"specialties"`
	}
	rows := make([]row, 0, len(members))
	for _, m := range members {
		specs := m.Specialties
		if specs == nil {
			specs = []string{}
		}
		rows = append(rows, row{Name: m.Name, Email: m.Email, Role: m.Role, Specialties: specs})
	}
	return marshalJSON(rows)
}

func (e *Executor) getTeamMemberInfo(ctx context.Context, args map[string]any) (string, error) {
	name := argString(args, "memberName")
	member, err := e.store.FindTeamMember(ctx, name)
	if err != nil {
		return "", err
	}
	if member == nil {
		return fmt.Sprintf("Team member %q not found.", name), nil
	}

	tasks, err := e.store.ListTasks(ctx, store.TaskFilter{})
	if err != nil {
		return "", err
	}
	tasksCount := 0
	for _, t := range tasks {
		if t.AssignedToID == member.ID {
			tasksCount++
		}
	}

	cases, err := e.store.ListCases(ctx, store.CaseFilter{})
	if err != nil {
		return "", err
	}
	casesCount := 0
	for _, c := range cases {
		for _, teamMember := range c.AssignedTeam {
			if teamMember == member.Name {
				casesCount++
				break
			}
		}
	}

	specs := member.Specialties
	if specs == nil {
		specs = []string{}
	}
	return marshalJSON(struct {
		Name               string   `json:"name"`
		Email              string   `json:"email"`
		Role               string   `json:"role"`
		Specialties        []string `json:"specialties"`
		AssignedTasksCount int      `json:"assignedTasksCount"`
		AssignedCasesCount int      `json:"assignedCasesCount"`
	}{
		Name:               member.Name,
		Email:              member.Email,
		Role:               member.Role,
		Specialties:        specs,
		AssignedTasksCount: tasksCount,
		AssignedCasesCount: casesCount,
	})
}

func (e *Executor) dashboardSummary(ctx context.Context) (string, error) {
	var (
		totalClients, totalCases, totalTasks, totalTeam int
		activeCases, pendingTasks, highPriorityTasks    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := e.store.CountClients(gctx)
		totalClients = count
		return err
	})
	g.Go(func() error {
		count, err := e.store.CountCases(gctx)
		totalCases = count
		return err
	})
	g.Go(func() error {
		count, err := e.store.CountTasks(gctx)
		totalTasks = count
		return err
	})
	g.Go(func() error {
		count, err := e.store.CountTeam(gctx)
		totalTeam = count
		return err
	})
	g.Go(func() error {
		cases, err := e.store.ListCases(gctx, store.CaseFilter{NotStatus: models.CaseClosed})
		activeCases = len(cases)
		return err
	})
	g.Go(func() error {
		tasks, err := e.store.ListTasks(gctx, store.TaskFilter{Status: models.TaskPending})
		pendingTasks = len(tasks)
		return err
	})
	g.Go(func() error {
		tasks, err := e.store.ListTasks(gctx, store.TaskFilter{Priority: models.PriorityHigh, NotStatus: models.TaskCompleted})
		highPriorityTasks = len(tasks)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	return marshalJSON(struct {
		TotalClients      int `json:"totalClients"`
		TotalCases        int `json:"totalCases"`
		TotalTasks        int `json:"totalTasks"`
		TotalTeamMembers  int `json:"totalTeamMembers"`
		ActiveCases       int `json:"activeCases"`
		PendingTasks      int `json:"pendingTasks"`
		HighPriorityTasks int `json:"highPriorityTasks"`
	}{
		TotalClients:      totalClients,
		TotalCases:        totalCases,
		TotalTasks:        totalTasks,
		TotalTeamMembers:  totalTeam,
		ActiveCases:       activeCases,
		PendingTasks:      pendingTasks,
		HighPriorityTasks: highPriorityTasks,
	})
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
