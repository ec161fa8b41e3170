// Package catalog holds the fixed enumerations tickets are classified
// against. Values are resolved by name, case-insensitively; everything
// else in the service validates through these lookups.
package catalog

import (
	"strings"

	"github.com/caltman24/zaptrack/internal/domain"
)

var priorities = map[string]domain.TicketPriority{
	"LOW":    domain.TicketPriorityLow,
	"MEDIUM": domain.TicketPriorityMedium,
	"HIGH":   domain.TicketPriorityHigh,
	"URGENT": domain.TicketPriorityUrgent,
}

var statuses = map[string]domain.TicketStatus{
	"NEW":         domain.TicketStatusNew,
	"DEVELOPMENT": domain.TicketStatusDevelopment,
	"TESTING":     domain.TicketStatusTesting,
	"RESOLVED":    domain.TicketStatusResolved,
}

var types = map[string]domain.TicketType{
	"DEFECT":         domain.TicketTypeDefect,
	"FEATURE":        domain.TicketTypeFeature,
	"WORK_TASK":      domain.TicketTypeWorkTask,
	"CHANGE_REQUEST": domain.TicketTypeChangeRequest,
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ResolvePriority maps a name to its priority value.
func ResolvePriority(name string) (domain.TicketPriority, bool) {
	p, ok := priorities[normalize(name)]
	return p, ok
}

// ResolveStatus maps a name to its status value.
func ResolveStatus(name string) (domain.TicketStatus, bool) {
	s, ok := statuses[normalize(name)]
	return s, ok
}

// ResolveType maps a name to its type value.
func ResolveType(name string) (domain.TicketType, bool) {
	t, ok := types[normalize(name)]
	return t, ok
}

// IsResolvedStatus reports whether the status is the distinguished
// Resolved value, which drives the RESOLVED history entry instead of a
// generic status update.
func IsResolvedStatus(status domain.TicketStatus) bool {
	return status == domain.TicketStatusResolved
}
