package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 15)

	byName := map[string]int{}
	for _, tool := range catalog {
		assert.Equal(t, "function", tool.Type)
		assert.NotEmpty(t, tool.Function.Description, "tool %s", tool.Function.Name)
		byName[tool.Function.Name]++

		params := tool.Function.Parameters
		assert.Equal(t, "object", params["type"], "tool %s", tool.Function.Name)
		_, ok := params["properties"].(map[string]any)
		assert.True(t, ok, "tool %s properties", tool.Function.Name)
		_, ok = params["required"].([]string)
		assert.True(t, ok, "tool %s required", tool.Function.Name)
	}

	for name, n := range byName {
		assert.Equal(t, 1, n, "tool %s registered more than once", name)
	}

	t.Run("required parameters", func(t *testing.T) {
		required := map[string][]string{
			ToolListClients:         {},
			ToolGetClientInfo:       {"clientName"},
			ToolCreateClient:        {"name", "email"},
			ToolUpdateClient:        {"clientName"},
			ToolAddClientNote:       {"clientName", "noteContent"},
			ToolListCases:           {},
			ToolGetCaseInfo:         {"caseIdentifier"},
			ToolUpdateCaseStatus:    {"caseIdentifier", "newStatus"},
			ToolCreateCase:          {"title", "clientName"},
			ToolListTasks:           {},
			ToolCreateTask:          {"title", "assigneeName"},
			ToolUpdateTaskStatus:    {"taskTitle", "newStatus"},
			ToolListTeamMembers:     {},
			ToolGetTeamMemberInfo:   {"memberName"},
			ToolGetDashboardSummary: {},
		}
		for _, tool := range Catalog() {
			want, ok := required[tool.Function.Name]
			require.True(t, ok, "unexpected tool %s", tool.Function.Name)
			assert.Equal(t, want, tool.Function.Parameters["required"], "tool %s", tool.Function.Name)
		}
	})
}
