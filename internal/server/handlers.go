package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lexfirm/lex/internal/llm"
	"github.com/lexfirm/lex/internal/models"
	"github.com/lexfirm/lex/internal/store"
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

type chatRequest struct {
	Messages []llm.Message `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.chatTimeout)
	defer cancel()

	reply, err := s.assistant.HandleTurn(ctx, req.Messages)
	if err != nil {
		s.logger.Error("chat turn failed", "error", err)
		var backendErr *llm.BackendError
		if errors.As(err, &backendErr) {
			writeError(w, http.StatusInternalServerError, backendErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ===== Clients =====

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidClientStatus(status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", status))
		return
	}
	clients, err := s.store.ListClients(r.Context(), store.ClientFilter{Status: status})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c models.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Name == "" || c.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if c.Status == "" {
		c.Status = models.ClientProspect
	}
	if !models.ValidClientStatus(c.Status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", c.Status))
		return
	}
	c.ID = ""
	if err := s.store.CreateClient(r.Context(), &c); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetClient(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetClient(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}

	var c models.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Status != "" && !models.ValidClientStatus(c.Status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", c.Status))
		return
	}

	if c.Name != "" {
		existing.Name = c.Name
	}
	if c.Email != "" {
		existing.Email = c.Email
	}
	if c.Phone != "" {
		existing.Phone = c.Phone
	}
	if c.CompanyName != "" {
		existing.CompanyName = c.CompanyName
	}
	if c.Status != "" {
		existing.Status = c.Status
	}
	if c.Notes != nil {
		existing.Notes = c.Notes
	}
	if err := s.store.SaveClient(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteClient(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Cases =====

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, priority := q.Get("status"), q.Get("priority")
	if status != "" && !models.ValidCaseStatus(status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", status))
		return
	}
	if priority != "" && !models.ValidPriority(priority) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid priority %q", priority))
		return
	}
	cases, err := s.store.ListCases(r.Context(), store.CaseFilter{Status: status, Priority: priority})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

func (s *Server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	var c models.Case
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Title == "" || c.ClientID == "" {
		writeError(w, http.StatusBadRequest, "title and clientId are required")
		return
	}
	client, err := s.store.GetClient(r.Context(), c.ClientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if client == nil {
		writeError(w, http.StatusBadRequest, "unknown clientId")
		return
	}
	if c.Status == "" {
		c.Status = models.CaseIntake
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	if !models.ValidCaseStatus(c.Status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", c.Status))
		return
	}
	if !models.ValidPriority(c.Priority) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid priority %q", c.Priority))
		return
	}
	if c.CaseNumber == "" {
		count, err := s.store.CountCases(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		c.CaseNumber = models.NextCaseNumber(c.Title, time.Now(), count)
	}
	c.ID = ""
	c.ClientName = client.Name
	if err := s.store.CreateCase(r.Context(), &c); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	client.TotalMatters++
	if err := s.store.SaveClient(r.Context(), client); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "case not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetCase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "case not found")
		return
	}

	var c models.Case
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.Status != "" && !models.ValidCaseStatus(c.Status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", c.Status))
		return
	}
	if c.Priority != "" && !models.ValidPriority(c.Priority) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid priority %q", c.Priority))
		return
	}

	if c.Title != "" {
		existing.Title = c.Title
	}
	if c.Status != "" {
		existing.Status = c.Status
	}
	if c.Priority != "" {
		existing.Priority = c.Priority
	}
	if c.Description != "" {
		existing.Description = c.Description
	}
	if c.AssignedTeam != nil {
		existing.AssignedTeam = c.AssignedTeam
	}
	if c.Deadline != nil {
		existing.Deadline = c.Deadline
	}
	if err := s.store.SaveCase(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteCase(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "case not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Tasks =====

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, priority := q.Get("status"), q.Get("priority")
	if status != "" && !models.ValidTaskStatus(status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", status))
		return
	}
	if priority != "" && !models.ValidPriority(priority) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid priority %q", priority))
		return
	}
	tasks, err := s.store.ListTasks(r.Context(), store.TaskFilter{
		Status:       status,
		Priority:     priority,
		AssigneeName: q.Get("assignee"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var t models.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if t.Title == "" || t.AssignedToID == "" {
		writeError(w, http.StatusBadRequest, "title and assignedToId are required")
		return
	}
	assignee, err := s.store.GetTeamMember(r.Context(), t.AssignedToID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if assignee == nil {
		writeError(w, http.StatusBadRequest, "unknown assignedToId")
		return
	}
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if !models.ValidTaskStatus(t.Status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", t.Status))
		return
	}
	if !models.ValidPriority(t.Priority) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid priority %q", t.Priority))
		return
	}
	t.ID = ""
	t.AssignedToName = assignee.Name
	if err := s.store.CreateTask(r.Context(), &t); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var t models.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if t.Status != "" && !models.ValidTaskStatus(t.Status) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", t.Status))
		return
	}
	if t.Priority != "" && !models.ValidPriority(t.Priority) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid priority %q", t.Priority))
		return
	}

	if t.Title != "" {
		existing.Title = t.Title
	}
	if t.Description != "" {
		existing.Description = t.Description
	}
	if t.Status != "" {
		existing.Status = t.Status
	}
	if t.Priority != "" {
		existing.Priority = t.Priority
	}
	if t.DueDate != nil {
		existing.DueDate = t.DueDate
	}
	if err := s.store.SaveTask(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteTask(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Team =====

func (s *Server) handleListTeam(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListTeam(r.Context(), store.TeamFilter{RolePrefix: r.URL.Query().Get("role")})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleGetTeamMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetTeamMember(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "team member not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ===== Dashboard =====

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	totalClients, err := s.store.CountClients(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totalCases, err := s.store.CountCases(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	activeCases, err := s.store.ListCases(ctx, store.CaseFilter{NotStatus: models.CaseClosed})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totalTasks, err := s.store.CountTasks(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pending, err := s.store.ListTasks(ctx, store.TaskFilter{Status: models.TaskPending})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totalTeam, err := s.store.CountTeam(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"totalClients":     totalClients,
		"totalCases":       totalCases,
		"activeCases":      len(activeCases),
		"totalTasks":       totalTasks,
		"pendingTasks":     len(pending),
		"totalTeamMembers": totalTeam,
	})
}
