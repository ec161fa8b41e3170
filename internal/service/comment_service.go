package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caltman24/zaptrack/internal/domain"
	"github.com/caltman24/zaptrack/internal/events"
	"github.com/caltman24/zaptrack/internal/permission"
	"github.com/caltman24/zaptrack/internal/repository"
	apperrors "github.com/caltman24/zaptrack/pkg/util"
)

// CommentService manages ticket comments. Ownership failures on edit
// and delete surface as not-found rather than permission errors; client
// behavior depends on that mapping.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	projects   repository.ProjectRepository
	dispatcher events.Dispatcher
}

// CommentDependencies bundles repositories.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	ProjectRepo repository.ProjectRepository
	Dispatcher  events.Dispatcher
}

// NewCommentService creates the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		projects:   deps.ProjectRepo,
		dispatcher: deps.Dispatcher,
	}
}

// AddComment appends a comment to a ticket.
func (s *CommentService) AddComment(ctx context.Context, member *domain.Member, ticketID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}

	ticket, actor, err := s.loadTicket(ctx, member, ticketID)
	if err != nil {
		return nil, err
	}
	if !permission.CanPerform(actor, permission.ActionCreateComment) {
		return nil, apperrors.NewPermissionDenied("not allowed to comment")
	}
	if ticket.IsArchived {
		return nil, apperrors.NewValidationError("ticket is archived", nil)
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: member.ID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:       uuid.NewString(),
			Type:     events.EventCommentAdded,
			TicketID: ticket.ID,
			ActorID:  member.ID,
			Payload:  events.CommentAddedPayload{CommentID: comment.ID, AuthorID: member.ID},
		})
	}
	return comment, nil
}

// EditComment updates a comment's body. Non-authors get not-found, even
// when the comment exists.
func (s *CommentService) EditComment(ctx context.Context, member *domain.Member, commentID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}

	comment, err := s.loadComment(ctx, member, commentID)
	if err != nil {
		return nil, err
	}
	ticket, _, err := s.loadTicket(ctx, member, comment.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsArchived {
		return nil, apperrors.NewValidationError("ticket is archived", nil)
	}
	if comment.AuthorID != member.ID && member.Role != domain.RoleAdmin {
		return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
	}

	comment.Body = body
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, mapStoreErr(err, "comment")
	}
	return comment, nil
}

// DeleteComment removes a comment. Admins may delete any comment;
// everyone else only their own, with misses reported as not-found.
func (s *CommentService) DeleteComment(ctx context.Context, member *domain.Member, commentID string) error {
	comment, err := s.loadComment(ctx, member, commentID)
	if err != nil {
		return err
	}
	ticket, _, err := s.loadTicket(ctx, member, comment.TicketID)
	if err != nil {
		return err
	}
	if ticket.IsArchived {
		return apperrors.NewValidationError("ticket is archived", nil)
	}
	if comment.AuthorID != member.ID && !permission.CanPerform(domain.Actor{MemberID: member.ID, Role: member.Role}, permission.ActionDeleteComment) {
		return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return mapStoreErr(err, "comment")
	}
	return nil
}

// ListComments returns a ticket's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, member *domain.Member, ticketID string) ([]domain.Comment, error) {
	if _, _, err := s.loadTicket(ctx, member, ticketID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}
	return comments, nil
}

func (s *CommentService) loadTicket(ctx context.Context, member *domain.Member, ticketID string) (*domain.Ticket, domain.Actor, error) {
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

func (s *CommentService) loadComment(ctx context.Context, member *domain.Member, commentID string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, apperrors.NewPersistenceFailure(err)
	}
	return comment, nil
}
