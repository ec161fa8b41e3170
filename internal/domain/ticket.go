package domain

import "time"

// TicketStatus enumerates workflow states for tickets.
type TicketStatus string

const (
	TicketStatusNew         TicketStatus = "NEW"
	TicketStatusDevelopment TicketStatus = "DEVELOPMENT"
	TicketStatusTesting     TicketStatus = "TESTING"
	TicketStatusResolved    TicketStatus = "RESOLVED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketType enumerates work classifications.
type TicketType string

const (
	TicketTypeDefect        TicketType = "DEFECT"
	TicketTypeFeature       TicketType = "FEATURE"
	TicketTypeWorkTask      TicketType = "WORK_TASK"
	TicketTypeChangeRequest TicketType = "CHANGE_REQUEST"
)

// Field length limits enforced on create and update.
const (
	TicketNameMaxLen        = 50
	TicketDescriptionMaxLen = 1000
)

// Ticket is the aggregate for tracked work items.
type Ticket struct {
	ID          string
	ProjectID   string
	SubmitterID string
	AssigneeID  *string
	Name        string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	Type        TicketType
	IsArchived  bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
