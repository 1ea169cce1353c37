package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lexfirm/lex/internal/llm"
	"github.com/lexfirm/lex/internal/metrics"
	"github.com/lexfirm/lex/internal/store"
)

// Canonical questions. These double as the state table for the stateless
// multi-turn flows: each next turn is recognized by matching the previous
// assistant message against one of these, so changing any wording breaks
// conversations already in flight.
const (
	qNoteTarget  = "Would you like to add a note to a **client** or a **case**?"
	qWhichClient = "Which client would you like to add the note to?"
	qCaseNotes   = "Adding notes to cases is not yet supported. Would you like to add a note to a client instead?"

	qTaskTitle      = "I'd be happy to create a task! What should the task title be?"
	qPickPriority   = "Please choose a priority: **high**, **medium**, or **low**."
	qWhichCase      = "Which case would you like to update? Please provide the case title or case number."
	qPickCaseStatus = "Please choose a valid status: **intake**, **discovery**, **trial**, or **closed**."
)

func qWhatNote(clientName string) string {
	return fmt.Sprintf("What note would you like to add to %q?", clientName)
}

func qTaskAssignee(title string) string {
	return fmt.Sprintf("Got it! Task: %q. Who should this task be assigned to?", title)
}

func qTaskPriority(title, assignee string) string {
	return fmt.Sprintf("Task %q will be assigned to %s. What priority should it have? (high, medium, or low)", title, assignee)
}

func qCaseNewStatus(title, number, status string) string {
	return fmt.Sprintf("Found case %q (%s). Current status: **%s**. What would you like to change the status to? (intake, discovery, trial, or closed)", title, number, status)
}

// Navigation rules: list-style queries are answered with a count and a page
// link instead of a text dump.
var (
	reListClients      = regexp.MustCompile(`(?i)^(show|list|get|display|view)\s+(me\s+)?(all\s+)?(the\s+)?clients`)
	reWhatClients      = regexp.MustCompile(`(?i)what\s+clients\s+(do\s+we\s+have|are\s+there)`)
	reClientFilter     = regexp.MustCompile(`(?i)^(show|list|get|display|view)\s+(me\s+)?(all\s+)?(the\s+)?(active|inactive|prospect)\s+clients`)
	reListCases        = regexp.MustCompile(`(?i)^(show|list|get|display|view)\s+(me\s+)?(all\s+)?(the\s+)?cases`)
	reWhatCases        = regexp.MustCompile(`(?i)what\s+cases\s+(do\s+we\s+have|are\s+there)`)
	reCaseFilter       = regexp.MustCompile(`(?i)^(show|list|get|display|view)\s+(me\s+)?(all\s+)?(the\s+)?(high|medium|low|intake|discovery|trial|closed)(\s+priority)?\s+cases`)
	reListTasks        = regexp.MustCompile(`(?i)^(show|list|get|display|view)\s+(me\s+)?(all\s+)?(the\s+)?tasks`)
	reWhatTasks        = regexp.MustCompile(`(?i)what\s+tasks\s+(do\s+we\s+have|are\s+there)`)
	reTaskFilter       = regexp.MustCompile(`(?i)^(show|list|get|display|view)\s+(me\s+)?(all\s+)?(the\s+)?(high|medium|low|pending|in-progress|completed)(\s+priority)?\s+tasks`)
	reListTeam         = regexp.MustCompile(`(?i)^(show|list|get|display|view)\s+(me\s+)?(all\s+)?(the\s+)?(team\s*members?|team|staff|employees)`)
	reWhoTeam          = regexp.MustCompile(`(?i)who('s| is)\s+(on\s+)?(the\s+)?team`)
	reTeamRoleFilter   = regexp.MustCompile(`(?i)^(show|list|get|display|view)\s+(me\s+)?(all\s+)?(the\s+)?(partners?|associates?|paralegals?|staff)`)
	rePriorityFilters  = map[string]bool{"high": true, "medium": true, "low": true}
)

// Note flow rules.
var (
	reAmbiguousNote   = regexp.MustCompile(`(?i)^add\s+(?:a\s+)?note\s*$`)
	reNoteWithContent = regexp.MustCompile(`(?i)add\s+(?:a\s+)?note\s+(?:in|to|for)\s+(?:the\s+)?(.+?):\s*(.+)`)
	reNoteClientOnly  = regexp.MustCompile(`(?i)add\s+(?:a\s+)?note\s+(?:in|to|for)\s+(?:the\s+)?(.+?)(?:\s+client)?\s*$`)
	reTrailingClient  = regexp.MustCompile(`(?i)\s+client\s*$`)
	reWhatNotePrompt  = regexp.MustCompile(`(?i)What note would you like to add to\s+"([^"]+)"\?`)
)

// Task flow rules.
var (
	reAmbiguousTask      = regexp.MustCompile(`(?i)^(create|add|make)\s+(?:a\s+)?(?:new\s+)?task\s*$`)
	reTaskTitlePrompt    = regexp.MustCompile(`(?i)Got it! Task: "([^"]+)"\. Who should this task be assigned to\?`)
	reTaskAssigneeRetry  = regexp.MustCompile(`(?i)Team member "[^"]+" not found\..*Who should this task be assigned to\?`)
	reTaskPriorityPrompt = regexp.MustCompile(`(?i)Task "([^"]+)" will be assigned to ([^.]+)\. What priority should it have\?`)
)

// Case update flow rules.
var (
	reAmbiguousCaseUpdate = regexp.MustCompile(`(?i)^(update|change|modify)\s+(?:a\s+)?(?:the\s+)?case\s*$`)
	reCaseStatusPrompt    = regexp.MustCompile(`(?i)Found case "([^"]+)" \(([^)]+)\)\. Current status: \*\*([^*]+)\*\*\. What would you like to change the status to\?`)
)

// Guardrails is the deterministic layer in front of the model. Rules are
// checked in order against the last user message and the previous assistant
// message; the first match wins and the model is never consulted.
type Guardrails struct {
	store    store.Store
	executor *Executor
	log      *slog.Logger
}

// NewGuardrails creates the guardrail layer.
func NewGuardrails(s store.Store, e *Executor, log *slog.Logger) *Guardrails {
	return &Guardrails{store: s, executor: e, log: log}
}

// lastUserContent returns the trailing user message's content, or "".
func lastUserContent(messages []llm.Message) string {
	if len(messages) == 0 {
		return ""
	}
	last := messages[len(messages)-1]
	if last.Role != "user" {
		return ""
	}
	return last.Content
}

// prevAssistantContent returns the assistant message immediately before the
// last message, or "".
func prevAssistantContent(messages []llm.Message) string {
	if len(messages) < 2 {
		return ""
	}
	prev := messages[len(messages)-2]
	if prev.Role != "assistant" {
		return ""
	}
	return prev.Content
}

// Check runs the guardrail waterfall. It returns the deterministic reply and
// true when a rule matched, or ("", false) to fall through to the model.
func (g *Guardrails) Check(ctx context.Context, messages []llm.Message) (string, bool, error) {
	last := lastUserContent(messages)
	prev := prevAssistantContent(messages)

	checks := []struct {
		rule string
		fn   func(ctx context.Context, last, prev string, messages []llm.Message) (string, bool, error)
	}{
		{"navigation", g.checkNavigation},
		{"note_flow", g.checkNoteFlow},
		{"task_flow", g.checkTaskFlow},
		{"case_update_flow", g.checkCaseUpdateFlow},
	}
	for _, c := range checks {
		reply, ok, err := c.fn(ctx, last, prev, messages)
		if err != nil {
			return "", false, err
		}
		if ok {
			g.log.Info("guardrail matched", "rule", c.rule)
			metrics.GuardrailHits.WithLabelValues(c.rule).Inc()
			return reply, true, nil
		}
	}
	return "", false, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (g *Guardrails) checkNavigation(ctx context.Context, last, _ string, _ []llm.Message) (string, bool, error) {
	if last == "" {
		return "", false, nil
	}
	t := strings.ToLower(strings.TrimSpace(last))

	if reListClients.MatchString(t) || reWhatClients.MatchString(t) {
		total, err := g.store.CountClients(ctx)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You have **%d clients** in the system. [View All Clients →](/clients)", total), true, nil
	}

	if m := reClientFilter.FindStringSubmatch(t); m != nil {
		status := strings.ToLower(m[5])
		clients, err := g.store.ListClients(ctx, store.ClientFilter{Status: status})
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You have **%d %s clients**. [View %s Clients →](/clients?status=%s)",
			len(clients), status, capitalize(status), status), true, nil
	}

	if reListCases.MatchString(t) || reWhatCases.MatchString(t) {
		total, err := g.store.CountCases(ctx)
		if err != nil {
			return "", false, err
		}
		active, err := g.store.ListCases(ctx, store.CaseFilter{NotStatus: "closed"})
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You have **%d cases** total (%d active). [View All Cases →](/cases)", total, len(active)), true, nil
	}

	if m := reCaseFilter.FindStringSubmatch(t); m != nil {
		value := strings.ToLower(m[5])
		filter := store.CaseFilter{Status: value}
		filterType, queryParam := "status", "status="+value
		if rePriorityFilters[value] {
			filter = store.CaseFilter{Priority: value}
			filterType, queryParam = "priority", "priority="+value
		}
		cases, err := g.store.ListCases(ctx, filter)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You have **%d %s %s cases**. [View %s Cases →](/cases?%s)",
			len(cases), value, filterType, capitalize(value), queryParam), true, nil
	}

	if reListTasks.MatchString(t) || reWhatTasks.MatchString(t) {
		total, err := g.store.CountTasks(ctx)
		if err != nil {
			return "", false, err
		}
		pending, err := g.store.ListTasks(ctx, store.TaskFilter{Status: "pending"})
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You have **%d tasks** total (%d pending). [View All Tasks →](/tasks)", total, len(pending)), true, nil
	}

	if m := reTaskFilter.FindStringSubmatch(t); m != nil {
		value := strings.ToLower(m[5])
		filter := store.TaskFilter{Status: value}
		filterType, queryParam := "status", "status="+value
		if rePriorityFilters[value] {
			filter = store.TaskFilter{Priority: value}
			filterType, queryParam = "priority", "priority="+value
		}
		tasks, err := g.store.ListTasks(ctx, filter)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You have **%d %s %s tasks**. [View %s Tasks →](/tasks?%s)",
			len(tasks), value, filterType, capitalize(value), queryParam), true, nil
	}

	if reListTeam.MatchString(t) || reWhoTeam.MatchString(t) {
		total, err := g.store.CountTeam(ctx)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You have **%d team members**. [View Team Page →](/team)", total), true, nil
	}

	if m := reTeamRoleFilter.FindStringSubmatch(t); m != nil {
		role := strings.TrimSuffix(strings.ToLower(m[5]), "s")
		members, err := g.store.ListTeam(ctx, store.TeamFilter{RolePrefix: role})
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("You have **%d %s(s)** on the team. [View %ss →](/team?role=%s)",
			len(members), role, capitalize(role), role), true, nil
	}

	return "", false, nil
}

// extractNoteClientName pulls the client name from "add a note to X" style
// requests, dropping a trailing "client" word.
func extractNoteClientName(text string) string {
	m := reNoteClientOnly.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(reTrailingClient.ReplaceAllString(strings.TrimSpace(m[1]), ""))
	return name
}

// noteRequestMissingContent reports whether an add-note request carries no
// note text. Quotes, colons and "that says" phrasing usually carry content.
func noteRequestMissingContent(text string) bool {
	t := strings.ToLower(text)
	if !strings.Contains(t, "note") || !strings.Contains(t, "add") {
		return false
	}
	for _, marker := range []string{`"`, "'", ":", "that says", "saying", "content"} {
		if strings.Contains(t, marker) {
			return false
		}
	}
	return true
}

func (g *Guardrails) checkNoteFlow(ctx context.Context, last, prev string, _ []llm.Message) (string, bool, error) {
	if last == "" {
		return "", false, nil
	}
	t := strings.ToLower(strings.TrimSpace(last))

	// Bare "add a note": ask what to attach it to.
	if reAmbiguousNote.MatchString(strings.TrimSpace(last)) {
		return qNoteTarget, true, nil
	}

	// Answer to the client-or-case question.
	if strings.Contains(prev, qNoteTarget) {
		if strings.Contains(t, "client") {
			return qWhichClient, true, nil
		}
		if strings.Contains(t, "case") {
			return qCaseNotes, true, nil
		}
	}

	// Answer to "Which client?".
	if prev == qWhichClient {
		clientName := strings.TrimSpace(last)
		client, err := g.store.FindClient(ctx, clientName)
		if err != nil {
			return "", false, err
		}
		if client != nil {
			return qWhatNote(client.Name), true, nil
		}
		return fmt.Sprintf("Client %q not found. Please check the name and try again, or [View All Clients →](/clients) to see available clients.", clientName), true, nil
	}

	// Full request with content: "add a note to X: content".
	if m := reNoteWithContent.FindStringSubmatch(last); m != nil {
		clientName := strings.TrimSpace(reTrailingClient.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		content := strings.TrimSpace(m[2])
		result := g.executor.Execute(ctx, ToolAddClientNote, map[string]any{
			"clientName":  clientName,
			"noteContent": content,
		})
		return result, true, nil
	}

	// Partial request: client named but no content.
	if clientName := extractNoteClientName(last); clientName != "" && noteRequestMissingContent(last) {
		client, err := g.store.FindClient(ctx, clientName)
		if err != nil {
			return "", false, err
		}
		if client != nil {
			return qWhatNote(client.Name), true, nil
		}
		return fmt.Sprintf("Client %q not found. Please check the name and try again, or [View All Clients →](/clients) to see available clients.", clientName), true, nil
	}

	// Answer to "What note would you like to add?".
	if m := reWhatNotePrompt.FindStringSubmatch(prev); m != nil {
		result := g.executor.Execute(ctx, ToolAddClientNote, map[string]any{
			"clientName":  m[1],
			"noteContent": last,
		})
		return result, true, nil
	}

	return "", false, nil
}

func (g *Guardrails) checkTaskFlow(ctx context.Context, last, prev string, messages []llm.Message) (string, bool, error) {
	if last == "" {
		return "", false, nil
	}

	// Bare "create a task": start the slot-filling flow.
	if reAmbiguousTask.MatchString(strings.TrimSpace(last)) {
		return qTaskTitle, true, nil
	}

	// Answer to the title question.
	if prev == qTaskTitle {
		return qTaskAssignee(last), true, nil
	}

	// Answer to the assignee question.
	if m := reTaskTitlePrompt.FindStringSubmatch(prev); m != nil {
		return g.resolveTaskAssignee(ctx, m[1], strings.TrimSpace(last))
	}

	// Retry after an unknown assignee: recover the title from history.
	if reTaskAssigneeRetry.MatchString(prev) {
		title := ""
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role != "assistant" {
				continue
			}
			if m := reTaskTitlePrompt.FindStringSubmatch(messages[i].Content); m != nil {
				title = m[1]
				break
			}
		}
		if title != "" {
			return g.resolveTaskAssignee(ctx, title, strings.TrimSpace(last))
		}
	}

	// Answer to the priority question.
	if m := reTaskPriorityPrompt.FindStringSubmatch(prev); m != nil {
		title, assignee := m[1], m[2]
		priority := strings.ToLower(strings.TrimSpace(last))
		if !rePriorityFilters[priority] {
			return qPickPriority, true, nil
		}
		g.executor.Execute(ctx, ToolCreateTask, map[string]any{
			"title":        title,
			"assigneeName": assignee,
			"priority":     priority,
		})
		return fmt.Sprintf("✅ Task %q created and assigned to %s with %s priority. [View Tasks →](/tasks)",
			title, assignee, priority), true, nil
	}

	return "", false, nil
}

func (g *Guardrails) resolveTaskAssignee(ctx context.Context, title, assigneeName string) (string, bool, error) {
	assignee, err := g.store.FindTeamMember(ctx, assigneeName)
	if err != nil {
		return "", false, err
	}
	if assignee != nil {
		return qTaskPriority(title, assignee.Name), true, nil
	}
	return fmt.Sprintf("Team member %q not found. [View Team Page →](/team) to see available team members. Who should this task be assigned to?", assigneeName), true, nil
}

func (g *Guardrails) checkCaseUpdateFlow(ctx context.Context, last, prev string, _ []llm.Message) (string, bool, error) {
	if last == "" {
		return "", false, nil
	}

	// Bare "update the case": ask which one.
	if reAmbiguousCaseUpdate.MatchString(strings.TrimSpace(last)) {
		return qWhichCase, true, nil
	}

	// Answer to "Which case?".
	if prev == qWhichCase {
		identifier := strings.TrimSpace(last)
		c, err := g.store.FindCase(ctx, identifier)
		if err != nil {
			return "", false, err
		}
		if c != nil {
			return qCaseNewStatus(c.Title, c.CaseNumber, c.Status), true, nil
		}
		return fmt.Sprintf("Case %q not found. [View Cases Page →](/cases) to see all cases.", identifier), true, nil
	}

	// Answer to the new-status question.
	if m := reCaseStatusPrompt.FindStringSubmatch(prev); m != nil {
		newStatus := strings.ToLower(strings.TrimSpace(last))
		switch newStatus {
		case "intake", "discovery", "trial", "closed":
			result := g.executor.Execute(ctx, ToolUpdateCaseStatus, map[string]any{
				"caseIdentifier": m[1],
				"newStatus":      newStatus,
			})
			return result, true, nil
		default:
			return qPickCaseStatus, true, nil
		}
	}

	return "", false, nil
}
