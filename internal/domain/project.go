package domain

import "time"

// Project owns tickets and carries the assigned project manager.
type Project struct {
	ID               string
	CompanyID        string
	Name             string
	Description      string
	ProjectManagerID *string
	IsArchived       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
