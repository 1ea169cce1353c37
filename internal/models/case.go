package models

import (
	"fmt"
	"strings"
	"time"
)

// Case statuses, in workflow order.
const (
	CaseIntake    = "intake"
	CaseDiscovery = "discovery"
	CaseTrial     = "trial"
	CaseClosed    = "closed"
)

// Priorities, shared by cases and tasks.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Case represents a legal matter for a client.
type Case struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	CaseNumber   string     `json:"caseNumber"`
	ClientID     string     `json:"clientId"`
	ClientName   string     `json:"clientName,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssignedTeam []string   `json:"assignedTeam"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
}

// NextCaseNumber synthesizes a case number of the form XY-2026-004: the
// first two letters of the title uppercased, the year of at, and the
// sequence number after existing cases.
func NextCaseNumber(title string, at time.Time, existing int) string {
	prefix := []rune(title)
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return fmt.Sprintf("%s-%d-%03d", strings.ToUpper(string(prefix)), at.Year(), existing+1)
}

// ValidCaseStatus reports whether s is a known case status.
func ValidCaseStatus(s string) bool {
	switch s {
	case CaseIntake, CaseDiscovery, CaseTrial, CaseClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
