package models

import "time"

// Task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"
)

// Task represents a unit of work assigned to a team member.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AssignedToID   string     `json:"assignedToId"`
	AssignedToName string     `json:"assignedToName,omitempty"`
	RelatedCaseID  string     `json:"relatedCaseId,omitempty"`
	RelatedCase    string     `json:"relatedCase,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt,omitempty"`
}

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}
