package dto

import (
	"time"

	"github.com/caltman24/zaptrack/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Type        string `json:"type"`
}

// UpdateTicketRequest carries the combined five-field update.
type UpdateTicketRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Type        string `json:"type"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority string `json:"priority"`
}

// UpdateTypeRequest payload.
type UpdateTypeRequest struct {
	Type string `json:"type"`
}

// AssignDeveloperRequest payload; absent member_id unassigns.
type AssignDeveloperRequest struct {
	MemberID *string `json:"member_id"`
}

// TicketResponse is the serialized ticket snapshot.
type TicketResponse struct {
	ID          string                `json:"id"`
	ProjectID   string                `json:"project_id"`
	SubmitterID string                `json:"submitter_id"`
	AssigneeID  *string               `json:"assignee_id,omitempty"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	Type        domain.TicketType     `json:"type"`
	IsArchived  bool                  `json:"is_archived"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   *time.Time            `json:"updated_at,omitempty"`
}

// HistoryEntryResponse is one rendered timeline entry.
type HistoryEntryResponse struct {
	ID                string             `json:"id"`
	TicketID          string             `json:"ticket_id"`
	CreatorID         string             `json:"creator_id"`
	Type              domain.HistoryType `json:"type"`
	OldValue          *string            `json:"old_value,omitempty"`
	NewValue          *string            `json:"new_value,omitempty"`
	RelatedEntityName *string            `json:"related_entity_name,omitempty"`
	RelatedEntityID   *string            `json:"related_entity_id,omitempty"`
	Message           string             `json:"message"`
	CreatedAt         time.Time          `json:"created_at"`
}

// HistoryPageResponse wraps a paginated timeline window.
type HistoryPageResponse struct {
	Entries  []HistoryEntryResponse `json:"entries"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}
