package domain

import "time"

// HistoryType tags what kind of change a history entry records.
type HistoryType string

const (
	HistoryCreated           HistoryType = "CREATED"
	HistoryUpdateName        HistoryType = "UPDATE_NAME"
	HistoryUpdateDescription HistoryType = "UPDATE_DESCRIPTION"
	HistoryUpdateStatus      HistoryType = "UPDATE_STATUS"
	HistoryUpdateType        HistoryType = "UPDATE_TYPE"
	HistoryUpdatePriority    HistoryType = "UPDATE_PRIORITY"
	HistoryArchived          HistoryType = "ARCHIVED"
	HistoryUnarchived        HistoryType = "UNARCHIVED"
	HistoryResolved          HistoryType = "RESOLVED"
	HistoryDeveloperAssigned HistoryType = "DEVELOPER_ASSIGNED"
	HistoryDeveloperRemoved  HistoryType = "DEVELOPER_REMOVED"
)

// HistoryEntry is an immutable audit record of one ticket change.
// Entries are only ever inserted; nothing in the service updates or
// deletes them after creation.
//
// Position comes from a global sequence. Entries written in one
// transaction share a created_at, so Position is what keeps a
// multi-field update reading back in insertion order.
type HistoryEntry struct {
	ID                string
	TicketID          string
	CreatorID         string
	Position          int64
	Type              HistoryType
	OldValue          *string
	NewValue          *string
	RelatedEntityName *string
	RelatedEntityID   *string
	CreatedAt         time.Time
}
