package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caltman24/zaptrack/internal/catalog"
	"github.com/caltman24/zaptrack/internal/domain"
	"github.com/caltman24/zaptrack/internal/events"
	"github.com/caltman24/zaptrack/internal/permission"
	"github.com/caltman24/zaptrack/internal/repository"
	apperrors "github.com/caltman24/zaptrack/pkg/util"
)

// TicketService is the mutation engine: it gates actions through the
// permission table, applies validated field changes, and records the
// audit history in the same transaction as the field write.
type TicketService struct {
	tickets    repository.TicketRepository
	projects   repository.ProjectRepository
	members    repository.MemberRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	ProjectRepo repository.ProjectRepository
	MemberRepo  repository.MemberRepository
	Dispatcher  events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		projects:   deps.ProjectRepo,
		members:    deps.MemberRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload. Priority,
// status and type are catalog names.
type TicketCreateInput struct {
	ProjectID   string
	Name        string
	Description string
	Priority    string
	Type        string
}

// TicketUpdateInput carries the full-update payload; every field is a
// catalog name or raw text and all five are applied in one call.
type TicketUpdateInput struct {
	Name        string
	Description string
	Priority    string
	Status      string
	Type        string
}

// fieldChange is one computed diff entry, already carrying the history
// type it records as.
type fieldChange struct {
	field    string
	old      string
	new      string
	histType domain.HistoryType
}

// CreateTicket files a new ticket and emits the single CREATED history
// entry in the same transaction.
func (s *TicketService) CreateTicket(ctx context.Context, member *domain.Member, input TicketCreateInput) (*domain.Ticket, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if err := validateDetails(name, description); err != nil {
		return nil, err
	}

	priority, ok := catalog.ResolvePriority(input.Priority)
	if !ok {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	ticketType, ok := catalog.ResolveType(input.Type)
	if !ok {
		return nil, apperrors.NewValidationError("unknown type", map[string]any{"type": input.Type})
	}

	project, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": input.ProjectID})
		}
		return nil, apperrors.NewPersistenceFailure(err)
	}
	if project.CompanyID != member.CompanyID {
		return nil, apperrors.NewNotFound("project", map[string]any{"project_id": input.ProjectID})
	}

	ticket := &domain.Ticket{
		ProjectID:   project.ID,
		SubmitterID: member.ID,
		Name:        name,
		Description: description,
		Priority:    priority,
		Status:      domain.TicketStatusNew,
		Type:        ticketType,
	}
	created := &domain.HistoryEntry{
		CreatorID: member.ID,
		Type:      domain.HistoryCreated,
	}
	if err := s.tickets.Create(ctx, ticket, created); err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  member.ID,
		Payload: events.TicketCreatedPayload{
			ProjectID: ticket.ProjectID,
			Name:      ticket.Name,
			Priority:  ticket.Priority,
			Type:      ticket.Type,
		},
	})
	return ticket, nil
}

// UpdateTicket applies the combined five-field update.
func (s *TicketService) UpdateTicket(ctx context.Context, member *domain.Member, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, actor, err := s.loadScoped(ctx, member, ticketID)
	if err != nil {
		return nil, err
	}
	if !permission.CanPerform(actor, permission.ActionFullUpdate) {
		return nil, apperrors.NewPermissionDenied("not allowed to update this ticket")
	}

	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if err := validateDetails(name, description); err != nil {
		return nil, err
	}
	priority, ok := catalog.ResolvePriority(input.Priority)
	if !ok {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	status, ok := catalog.ResolveStatus(input.Status)
	if !ok {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": input.Status})
	}
	ticketType, ok := catalog.ResolveType(input.Type)
	if !ok {
		return nil, apperrors.NewValidationError("unknown type", map[string]any{"type": input.Type})
	}

	// Fixed diff order keeps rendered timelines deterministic:
	// name, description, priority, status, type.
	var changes []fieldChange
	if name != ticket.Name {
		changes = append(changes, fieldChange{"name", ticket.Name, name, domain.HistoryUpdateName})
	}
	if description != ticket.Description {
		changes = append(changes, fieldChange{"description", ticket.Description, description, domain.HistoryUpdateDescription})
	}
	if priority != ticket.Priority {
		changes = append(changes, fieldChange{"priority", string(ticket.Priority), string(priority), domain.HistoryUpdatePriority})
	}
	if status != ticket.Status {
		changes = append(changes, statusChange(ticket.Status, status))
	}
	if ticketType != ticket.Type {
		changes = append(changes, fieldChange{"type", string(ticket.Type), string(ticketType), domain.HistoryUpdateType})
	}

	if err := s.gateArchived(ticket, actor, changes); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return ticket, nil
	}

	ticket.Name = name
	ticket.Description = description
	ticket.Priority = priority
	ticket.Status = status
	ticket.Type = ticketType

	if err := s.persistChanges(ctx, member, ticket, changes); err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(changes))
	for _, ch := range changes {
		fields = append(fields, ch.field)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  member.ID,
		Payload:  events.TicketUpdatedPayload{ChangedFields: fields},
	})
	return ticket, nil
}

// UpdateStatus changes the status field alone. Unlike the full update,
// an assigned developer passes this check.
func (s *TicketService) UpdateStatus(ctx context.Context, member *domain.Member, ticketID, statusName string) (*domain.Ticket, error) {
	ticket, actor, err := s.loadScoped(ctx, member, ticketID)
	if err != nil {
		return nil, err
	}
	if !permission.CanPerform(actor, permission.ActionUpdateStatus) {
		return nil, apperrors.NewPermissionDenied("not allowed to update status")
	}
	status, ok := catalog.ResolveStatus(statusName)
	if !ok {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": statusName})
	}

	var changes []fieldChange
	if status != ticket.Status {
		changes = append(changes, statusChange(ticket.Status, status))
	}
	if err := s.gateArchived(ticket, actor, changes); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return ticket, nil
	}

	oldStatus := ticket.Status
	ticket.Status = status
	if err := s.persistChanges(ctx, member, ticket, changes); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  member.ID,
		Payload:  events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
	})
	return ticket, nil
}

// UpdatePriority changes the priority field alone.
func (s *TicketService) UpdatePriority(ctx context.Context, member *domain.Member, ticketID, priorityName string) (*domain.Ticket, error) {
	ticket, actor, err := s.loadScoped(ctx, member, ticketID)
	if err != nil {
		return nil, err
	}
	if !permission.CanPerform(actor, permission.ActionUpdatePriority) {
		return nil, apperrors.NewPermissionDenied("not allowed to update priority")
	}
	priority, ok := catalog.ResolvePriority(priorityName)
	if !ok {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priorityName})
	}

	var changes []fieldChange
	if priority != ticket.Priority {
		changes = append(changes, fieldChange{"priority", string(ticket.Priority), string(priority), domain.HistoryUpdatePriority})
	}
	if err := s.gateArchived(ticket, actor, changes); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return ticket, nil
	}

	ticket.Priority = priority
	if err := s.persistChanges(ctx, member, ticket, changes); err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateType changes the type field alone.
func (s *TicketService) UpdateType(ctx context.Context, member *domain.Member, ticketID, typeName string) (*domain.Ticket, error) {
	ticket, actor, err := s.loadScoped(ctx, member, ticketID)
	if err != nil {
		return nil, err
	}
	if !permission.CanPerform(actor, permission.ActionUpdateType) {
		return nil, apperrors.NewPermissionDenied("not allowed to update type")
	}
	ticketType, ok := catalog.ResolveType(typeName)
	if !ok {
		return nil, apperrors.NewValidationError("unknown type", map[string]any{"type": typeName})
	}

	var changes []fieldChange
	if ticketType != ticket.Type {
		changes = append(changes, fieldChange{"type", string(ticket.Type), string(ticketType), domain.HistoryUpdateType})
	}
	if err := s.gateArchived(ticket, actor, changes); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return ticket, nil
	}

	ticket.Type = ticketType
	if err := s.persistChanges(ctx, member, ticket, changes); err != nil {
		return nil, err
	}
	return ticket, nil
}

// AssignDeveloper assigns (assigneeID set) or removes (nil) the
// ticket's developer.
func (s *TicketService) AssignDeveloper(ctx context.Context, member *domain.Member, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	ticket, actor, err := s.loadScoped(ctx, member, ticketID)
	if err != nil {
		return nil, err
	}
	if !permission.CanPerform(actor, permission.ActionAssignDeveloper) {
		return nil, apperrors.NewPermissionDenied("not allowed to assign developers")
	}
	if ticket.IsArchived {
		return nil, apperrors.NewValidationError("ticket is archived", nil)
	}

	if assigneeID == nil {
		if ticket.AssigneeID == nil {
			return ticket, nil
		}
		ticket.AssigneeID = nil
		entry := domain.HistoryEntry{
			CreatorID: member.ID,
			Type:      domain.HistoryDeveloperRemoved,
		}
		if err := s.tickets.UpdateWithHistory(ctx, ticket, []domain.HistoryEntry{entry}); err != nil {
			return nil, mapStoreErr(err, "ticket")
		}
		s.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			ActorID:  member.ID,
			Payload:  events.TicketAssignedPayload{},
		})
		return ticket, nil
	}

	assignee, err := s.members.GetByID(ctx, *assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("member", map[string]any{"member_id": *assigneeID})
		}
		return nil, apperrors.NewPersistenceFailure(err)
	}
	if assignee.CompanyID != member.CompanyID {
		return nil, apperrors.NewNotFound("member", map[string]any{"member_id": *assigneeID})
	}
	if assignee.Role != domain.RoleDeveloper {
		return nil, apperrors.NewValidationError("assignee must be a developer", map[string]any{"member_id": assignee.ID})
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID == assignee.ID {
		return ticket, nil
	}

	ticket.AssigneeID = &assignee.ID
	entry := domain.HistoryEntry{
		CreatorID:         member.ID,
		Type:              domain.HistoryDeveloperAssigned,
		RelatedEntityName: &assignee.Name,
		RelatedEntityID:   &assignee.ID,
	}
	if err := s.tickets.UpdateWithHistory(ctx, ticket, []domain.HistoryEntry{entry}); err != nil {
		return nil, mapStoreErr(err, "ticket")
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  member.ID,
		Payload:  events.TicketAssignedPayload{AssigneeID: ticket.AssigneeID},
	})
	return ticket, nil
}

// ToggleArchive flips the archive flag, recording ARCHIVED or
// UNARCHIVED depending on the prior state.
func (s *TicketService) ToggleArchive(ctx context.Context, member *domain.Member, ticketID string) (*domain.Ticket, error) {
	ticket, actor, err := s.loadScoped(ctx, member, ticketID)
	if err != nil {
		return nil, err
	}

	action := permission.ActionArchive
	histType := domain.HistoryArchived
	if ticket.IsArchived {
		action = permission.ActionUnarchive
		histType = domain.HistoryUnarchived
	}
	if !permission.CanPerform(actor, action) {
		return nil, apperrors.NewPermissionDenied("not allowed to change archive state")
	}

	ticket.IsArchived = !ticket.IsArchived
	entry := domain.HistoryEntry{CreatorID: member.ID, Type: histType}
	if err := s.tickets.UpdateWithHistory(ctx, ticket, []domain.HistoryEntry{entry}); err != nil {
		return nil, mapStoreErr(err, "ticket")
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketArchived,
		TicketID: ticket.ID,
		ActorID:  member.ID,
		Payload:  events.TicketArchivedPayload{Archived: ticket.IsArchived},
	})
	return ticket, nil
}

// DeleteTicket removes the ticket with its history and comments.
// Archived tickets reject deletion.
func (s *TicketService) DeleteTicket(ctx context.Context, member *domain.Member, ticketID string) error {
	ticket, actor, err := s.loadScoped(ctx, member, ticketID)
	if err != nil {
		return err
	}
	if !permission.CanPerform(actor, permission.ActionDeleteTicket) {
		return apperrors.NewPermissionDenied("not allowed to delete tickets")
	}
	if ticket.IsArchived {
		return apperrors.NewValidationError("archived tickets cannot be deleted", nil)
	}

	if err := s.tickets.DeleteCascade(ctx, ticket.ID); err != nil {
		return mapStoreErr(err, "ticket")
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		ActorID:  member.ID,
	})
	return nil
}

// GetTicket loads a company-scoped ticket with its resolved actor.
func (s *TicketService) GetTicket(ctx context.Context, member *domain.Member, ticketID string) (*domain.Ticket, error) {
	ticket, _, err := s.loadScoped(ctx, member, ticketID)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// loadScoped fetches the ticket and its project, enforces company
// scoping, and resolves the relationship facts into an actor.
func (s *TicketService) loadScoped(ctx context.Context, member *domain.Member, ticketID string) (*domain.Ticket, domain.Actor, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Actor{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, domain.Actor{}, apperrors.NewPersistenceFailure(err)
	}

	project, err := s.projects.GetByID(ctx, ticket.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Actor{}, apperrors.NewNotFound("project", map[string]any{"project_id": ticket.ProjectID})
		}
		return nil, domain.Actor{}, apperrors.NewPersistenceFailure(err)
	}
	if project.CompanyID != member.CompanyID {
		return nil, domain.Actor{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}

	return ticket, ResolveActor(member, ticket, project), nil
}

// gateArchived rejects any change set an archived ticket does not
// admit: only name/description edits by an admin or the project's
// manager pass. Unarchiving goes through ToggleArchive, not here.
func (s *TicketService) gateArchived(ticket *domain.Ticket, actor domain.Actor, changes []fieldChange) error {
	if !ticket.IsArchived || len(changes) == 0 {
		return nil
	}
	for _, ch := range changes {
		if ch.field != "name" && ch.field != "description" {
			return apperrors.NewValidationError("ticket is archived", map[string]any{"field": ch.field})
		}
	}
	if actor.IsAdmin() || (actor.Role == domain.RoleProjectManager && actor.IsProjectManager) {
		return nil
	}
	return apperrors.NewValidationError("ticket is archived", nil)
}

// persistChanges writes the mutated fields plus one history entry per
// change in a single transaction.
func (s *TicketService) persistChanges(ctx context.Context, member *domain.Member, ticket *domain.Ticket, changes []fieldChange) error {
	entries := make([]domain.HistoryEntry, 0, len(changes))
	for _, ch := range changes {
		entry := domain.HistoryEntry{
			CreatorID: member.ID,
			Type:      ch.histType,
		}
		old, new := ch.old, ch.new
		entry.OldValue = &old
		entry.NewValue = &new
		entries = append(entries, entry)
	}
	if err := s.tickets.UpdateWithHistory(ctx, ticket, entries); err != nil {
		return mapStoreErr(err, "ticket")
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// statusChange builds the diff entry for a status move, swapping in the
// RESOLVED history type when the new value is the distinguished
// resolved status.
func statusChange(old, new domain.TicketStatus) fieldChange {
	histType := domain.HistoryUpdateStatus
	if catalog.IsResolvedStatus(new) {
		histType = domain.HistoryResolved
	}
	return fieldChange{"status", string(old), string(new), histType}
}

func validateDetails(name, description string) error {
	if name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if len(name) > domain.TicketNameMaxLen {
		return apperrors.NewValidationError("name too long", map[string]any{"max": domain.TicketNameMaxLen})
	}
	if len(description) > domain.TicketDescriptionMaxLen {
		return apperrors.NewValidationError("description too long", map[string]any{"max": domain.TicketDescriptionMaxLen})
	}
	return nil
}

func mapStoreErr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewPersistenceFailure(err)
}

// ResolveActor projects the member onto a specific ticket/project,
// resolving the relationship facts the permission table evaluates.
func ResolveActor(member *domain.Member, ticket *domain.Ticket, project *domain.Project) domain.Actor {
	actor := domain.Actor{
		MemberID:  member.ID,
		CompanyID: member.CompanyID,
		Role:      member.Role,
	}
	actor.IsSubmitter = ticket.SubmitterID == member.ID
	actor.IsAssignee = ticket.AssigneeID != nil && *ticket.AssigneeID == member.ID
	actor.IsProjectManager = project.ProjectManagerID != nil && *project.ProjectManagerID == member.ID
	return actor
}
