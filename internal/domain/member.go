package domain

import "time"

// Role enumerates company member roles.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleDeveloper      Role = "DEVELOPER"
	RoleSubmitter      Role = "SUBMITTER"
)

// Member is a company user who collaborates on projects.
type Member struct {
	ID           string
	CompanyID    string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Company groups members and projects.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
