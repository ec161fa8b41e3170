package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/caltman24/zaptrack/internal/cache"
	"github.com/caltman24/zaptrack/internal/domain"
	"github.com/caltman24/zaptrack/internal/history"
	"github.com/caltman24/zaptrack/internal/repository"
	apperrors "github.com/caltman24/zaptrack/pkg/util"
)

// TicketBucket names a company-scoped ticket listing.
type TicketBucket string

const (
	BucketOpen         TicketBucket = "open"
	BucketResolved     TicketBucket = "resolved"
	BucketArchived     TicketBucket = "archived"
	BucketAssignedToMe TicketBucket = "assigned"
)

// QueryService serves ticket listings and history timelines.
type QueryService struct {
	tickets     repository.TicketRepository
	projects    repository.ProjectRepository
	historyRepo repository.HistoryRepository
	formatter   *history.Registry
	memberNames *cache.MemberNames
}

// QueryDependencies bundles collaborators for the query service.
type QueryDependencies struct {
	TicketRepo  repository.TicketRepository
	ProjectRepo repository.ProjectRepository
	HistoryRepo repository.HistoryRepository
	Formatter   *history.Registry
	MemberNames *cache.MemberNames
}

// NewQueryService constructs the service.
func NewQueryService(deps QueryDependencies) *QueryService {
	return &QueryService{
		tickets:     deps.TicketRepo,
		projects:    deps.ProjectRepo,
		historyRepo: deps.HistoryRepo,
		formatter:   deps.Formatter,
		memberNames: deps.MemberNames,
	}
}

// HistoryPage is one window of a ticket's timeline.
type HistoryPage struct {
	Entries []domain.HistoryEntry
	Total   int
}

// RenderedEntry pairs a history entry with its timeline message.
type RenderedEntry struct {
	Entry   domain.HistoryEntry
	Message string
}

// ListBucket returns tickets in the named bucket for the member's
// company. The assigned bucket matches tickets the member submitted or
// is assigned to, regardless of archive state.
func (s *QueryService) ListBucket(ctx context.Context, member *domain.Member, bucket TicketBucket, limit, offset int) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		CompanyID: member.CompanyID,
		Limit:     limit,
		Offset:    offset,
	}

	archived := false
	resolved := domain.TicketStatusResolved
	switch bucket {
	case BucketOpen:
		filter.Archived = &archived
		filter.NotStatus = &resolved
	case BucketResolved:
		filter.Archived = &archived
		filter.Status = &resolved
	case BucketArchived:
		isArchived := true
		filter.Archived = &isArchived
	case BucketAssignedToMe:
		memberID := member.ID
		filter.MemberID = &memberID
	default:
		return nil, apperrors.NewValidationError("unknown bucket", map[string]any{"bucket": string(bucket)})
	}

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}
	return tickets, nil
}

// ListHistory returns the full timeline in ascending createdAt order.
func (s *QueryService) ListHistory(ctx context.Context, member *domain.Member, ticketID string) ([]domain.HistoryEntry, error) {
	if err := s.ensureVisible(ctx, member, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}
	return entries, nil
}

// ListHistoryPage windows the ascending timeline. Pagination is a pure
// slice of the append order: page p covers offsets (p-1)*size..p*size-1.
func (s *QueryService) ListHistoryPage(ctx context.Context, member *domain.Member, ticketID string, page, pageSize int) (*HistoryPage, error) {
	if page < 1 {
		return nil, apperrors.NewValidationError("page must be >= 1", map[string]any{"page": page})
	}
	if pageSize < 1 {
		return nil, apperrors.NewValidationError("pageSize must be >= 1", map[string]any{"pageSize": pageSize})
	}
	if err := s.ensureVisible(ctx, member, ticketID); err != nil {
		return nil, err
	}

	entries, total, err := s.historyRepo.ListByTicketPage(ctx, ticketID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}
	return &HistoryPage{Entries: entries, Total: total}, nil
}

// Render attaches formatted timeline messages to history entries.
func (s *QueryService) Render(ctx context.Context, entries []domain.HistoryEntry) ([]RenderedEntry, error) {
	rendered := make([]RenderedEntry, 0, len(entries))
	for _, entry := range entries {
		name, err := s.memberNames.DisplayName(ctx, entry.CreatorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				name = "Unknown member"
			} else {
				return nil, apperrors.NewPersistenceFailure(err)
			}
		}
		rendered = append(rendered, RenderedEntry{
			Entry:   entry,
			Message: s.formatter.Format(entry, name),
		})
	}
	return rendered, nil
}

// ensureVisible confirms the ticket exists within the member's company.
func (s *QueryService) ensureVisible(ctx context.Context, member *domain.Member, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.NewPersistenceFailure(err)
	}
	project, err := s.projects.GetByID(ctx, ticket.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("project", map[string]any{"project_id": ticket.ProjectID})
		}
		return apperrors.NewPersistenceFailure(err)
	}
	if project.CompanyID != member.CompanyID {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return nil
}
