// Package history renders audit entries into timeline messages. The
// dispatch is a registry keyed by entry type so new types plug in
// without touching existing formatters.
package history

import (
	"fmt"
	"sync"

	"github.com/caltman24/zaptrack/internal/domain"
)

// FormatFunc renders one entry using the creator's display name.
type FormatFunc func(entry domain.HistoryEntry, creatorName string) string

// Registry maps history entry types to formatters.
type Registry struct {
	mu         sync.RWMutex
	formatters map[domain.HistoryType]FormatFunc
}

// NewRegistry returns a registry preloaded with the built-in entry
// types.
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[domain.HistoryType]FormatFunc)}

	r.Register(domain.HistoryCreated, func(e domain.HistoryEntry, creator string) string {
		return fmt.Sprintf("Ticket created by %s", creator)
	})
	r.Register(domain.HistoryUpdateName, fieldUpdateFormatter("Name"))
	r.Register(domain.HistoryUpdateDescription, func(e domain.HistoryEntry, creator string) string {
		// Descriptions can be long; the values are deliberately omitted.
		return "Description updated"
	})
	r.Register(domain.HistoryUpdateStatus, fieldUpdateFormatter("Status"))
	r.Register(domain.HistoryUpdateType, fieldUpdateFormatter("Type"))
	r.Register(domain.HistoryUpdatePriority, fieldUpdateFormatter("Priority"))
	r.Register(domain.HistoryArchived, func(e domain.HistoryEntry, creator string) string {
		return fmt.Sprintf("Moved to Archived by %s", creator)
	})
	r.Register(domain.HistoryUnarchived, func(e domain.HistoryEntry, creator string) string {
		return fmt.Sprintf("Moved from Archived by %s", creator)
	})
	r.Register(domain.HistoryResolved, func(e domain.HistoryEntry, creator string) string {
		return fmt.Sprintf("Marked as resolved by %s", creator)
	})
	r.Register(domain.HistoryDeveloperAssigned, func(e domain.HistoryEntry, creator string) string {
		return fmt.Sprintf("Assigned to %s by %s", deref(e.RelatedEntityName), creator)
	})
	r.Register(domain.HistoryDeveloperRemoved, func(e domain.HistoryEntry, creator string) string {
		return fmt.Sprintf("Assigned developer removed by %s", creator)
	})

	return r
}

// Register installs or replaces the formatter for a type.
func (r *Registry) Register(t domain.HistoryType, fn FormatFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[t] = fn
}

// Format renders the entry. Unknown types fall back to the raw type
// tag so a timeline never renders empty.
func (r *Registry) Format(entry domain.HistoryEntry, creatorName string) string {
	r.mu.RLock()
	fn, ok := r.formatters[entry.Type]
	r.mu.RUnlock()
	if !ok {
		return string(entry.Type)
	}
	return fn(entry, creatorName)
}

func fieldUpdateFormatter(field string) FormatFunc {
	return func(e domain.HistoryEntry, creator string) string {
		return fmt.Sprintf("%s updated from '%s' to '%s' by %s",
			field, deref(e.OldValue), deref(e.NewValue), creator)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
