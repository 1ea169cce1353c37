package models

import "time"

// Team member roles.
const (
	RolePartner   = "partner"
	RoleAssociate = "associate"
	RoleParalegal = "paralegal"
	RoleStaff     = "staff"
)

// TeamMember represents an attorney or staff member of the firm.
type TeamMember struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Specialties []string  `json:"specialties"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// ValidRole reports whether r is a known team role.
func ValidRole(r string) bool {
	switch r {
	case RolePartner, RoleAssociate, RoleParalegal, RoleStaff:
		return true
	}
	return false
}
