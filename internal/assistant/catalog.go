// Package assistant implements the firm's dialogue engine: a deterministic
// guardrail layer for workflows local models handle unreliably, a tool
// catalog with an executor backed by the store, and a two-round driver that
// turns model tool calls into final responses.
package assistant

import "github.com/lexfirm/lex/internal/llm"

// Tool names.
const (
	ToolListClients         = "list_clients"
	ToolGetClientInfo       = "get_client_info"
	ToolCreateClient        = "create_client"
	ToolUpdateClient        = "update_client"
	ToolAddClientNote       = "add_client_note"
	ToolListCases           = "list_cases"
	ToolGetCaseInfo         = "get_case_info"
	ToolUpdateCaseStatus    = "update_case_status"
	ToolCreateCase          = "create_case"
	ToolListTasks           = "list_tasks"
	ToolCreateTask          = "create_task"
	ToolUpdateTaskStatus    = "update_task_status"
	ToolListTeamMembers     = "list_team_members"
	ToolGetTeamMemberInfo   = "get_team_member_info"
	ToolGetDashboardSummary = "get_dashboard_summary"
)

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// optStr marks a parameter nullable so strict schema validators accept an
// explicit null from the model.
func optStr(desc string) map[string]any {
	return map[string]any{"type": []string{"string", "null"}, "description": desc}
}

func strEnum(desc string, values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "description": desc}
}

func optEnum(desc string, values ...string) map[string]any {
	return map[string]any{"type": []string{"string", "null"}, "enum": values, "description": desc}
}

func fn(name, desc string, props map[string]any, required ...string) llm.Tool {
	if required == nil {
		required = []string{}
	}
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        name,
			Description: desc,
			Parameters: map[string]any{
				"type":       "object",
				"properties": props,
				"required":   required,
			},
		},
	}
}

// Catalog returns the full tool catalog advertised to the model.
func Catalog() []llm.Tool {
	return []llm.Tool{
		fn(ToolListClients, "Get a list of all clients with optional status filter",
			map[string]any{
				"status": optEnum("Filter by client status (optional)", "active", "inactive", "prospect"),
			}),
		fn(ToolGetClientInfo, "Get detailed information about a specific client by name",
			map[string]any{
				"clientName": str("Name of the client to look up"),
			}, "clientName"),
		fn(ToolCreateClient, "Create a new client in the system",
			map[string]any{
				"name":        str("Client name"),
				"email":       str("Client email address"),
				"phone":       optStr("Client phone number (optional)"),
				"companyName": optStr("Company name (optional)"),
				"status":      optEnum("Client status (optional)", "active", "inactive", "prospect"),
			}, "name", "email"),
		fn(ToolUpdateClient, "Update an existing client's information",
			map[string]any{
				"clientName": str("Current name of the client to update"),
				"newName":    optStr("New name (optional)"),
				"email":      optStr("New email (optional)"),
				"phone":      optStr("New phone (optional)"),
				"status":     optEnum("New status (optional)", "active", "inactive", "prospect"),
			}, "clientName"),
		fn(ToolAddClientNote, "Add a note to a client's profile",
			map[string]any{
				"clientName":  str("Name of the client"),
				"noteContent": str("Content of the note"),
			}, "clientName", "noteContent"),
		fn(ToolListCases, "Get a list of all cases with optional filters",
			map[string]any{
				"status":   optEnum("Filter by case status (optional)", "intake", "discovery", "trial", "closed"),
				"priority": optEnum("Filter by priority (optional)", "high", "medium", "low"),
			}),
		fn(ToolGetCaseInfo, "Get detailed information about a specific case by title or case number",
			map[string]any{
				"caseIdentifier": str("Case title or case number"),
			}, "caseIdentifier"),
		fn(ToolUpdateCaseStatus, "Update the status of a case (move it through the workflow)",
			map[string]any{
				"caseIdentifier": str("Case title or case number"),
				"newStatus":      strEnum("New status for the case", "intake", "discovery", "trial", "closed"),
			}, "caseIdentifier", "newStatus"),
		fn(ToolCreateCase, "Create a new legal case in the system",
			map[string]any{
				"title":       str("Title of the case (e.g., 'Smith vs. Jones')"),
				"clientName":  str("Name of the client this case is for"),
				"description": optStr("Description of the case (optional)"),
				"priority":    optEnum("Priority level of the case (optional)", "high", "medium", "low"),
				"status":      optEnum("Initial status of the case (defaults to intake, optional)", "intake", "discovery", "trial", "closed"),
			}, "title", "clientName"),
		fn(ToolListTasks, "Get a list of all tasks with optional filters",
			map[string]any{
				"status":       optEnum("Filter by task status (optional)", "pending", "in-progress", "completed"),
				"priority":     optEnum("Filter by priority (optional)", "high", "medium", "low"),
				"assigneeName": optStr("Filter by assignee name (optional)"),
			}),
		fn(ToolCreateTask, "Create a new task",
			map[string]any{
				"title":        str("Task title"),
				"description":  optStr("Task description (optional)"),
				"assigneeName": str("Name of the team member to assign"),
				"priority":     optEnum("Task priority (optional)", "high", "medium", "low"),
				"dueDate":      optStr("Due date in YYYY-MM-DD format (optional)"),
				"caseName":     optStr("Related case title (optional)"),
			}, "title", "assigneeName"),
		fn(ToolUpdateTaskStatus, "Update the status of a task",
			map[string]any{
				"taskTitle": str("Title of the task"),
				"newStatus": strEnum("New status", "pending", "in-progress", "completed"),
			}, "taskTitle", "newStatus"),
		fn(ToolListTeamMembers, "Get a list of all team members with optional role filter",
			map[string]any{
				"role": optEnum("Filter by role (optional)", "partner", "associate", "paralegal", "staff"),
			}),
		fn(ToolGetTeamMemberInfo, "Get detailed information about a team member",
			map[string]any{
				"memberName": str("Name of the team member"),
			}, "memberName"),
		fn(ToolGetDashboardSummary, "Get a summary of the firm's current status including counts of clients, cases, tasks, and team members",
			map[string]any{}),
	}
}
