package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caltman24/zaptrack/internal/domain"
)

// TicketFilter captures bucket listing parameters. All listings are
// company scoped through the parent project.
type TicketFilter struct {
	CompanyID string
	Archived  *bool
	Status    *domain.TicketStatus
	NotStatus *domain.TicketStatus
	MemberID  *string // matches submitter or assignee
	ProjectID *string
	Limit     int
	Offset    int
}

// TicketRepository encapsulates ticket persistence. UpdateWithHistory
// is the single write path for mutations: the field update and its
// audit entries commit in one transaction or not at all.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket, created *domain.HistoryEntry) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateWithHistory(ctx context.Context, ticket *domain.Ticket, entries []domain.HistoryEntry) error
	DeleteCascade(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, project_id, submitter_id, assignee_id, name, description, priority, status, type, is_archived, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket, created *domain.HistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (project_id, submitter_id, assignee_id, name, description, priority, status, type)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, is_archived, created_at`
	if err := tx.QueryRow(ctx, query,
		ticket.ProjectID,
		ticket.SubmitterID,
		ticket.AssigneeID,
		ticket.Name,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.Type,
	).Scan(&ticket.ID, &ticket.IsArchived, &ticket.CreatedAt); err != nil {
		return err
	}

	if created != nil {
		created.TicketID = ticket.ID
		if err := insertHistory(ctx, tx, created); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT t.%s FROM tickets t
             JOIN projects p ON p.id = t.project_id`,
		strings.ReplaceAll(ticketColumns, ", ", ", t."))
	args := []any{filter.CompanyID}
	clauses := []string{"p.company_id=$1"}

	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		clauses = append(clauses, fmt.Sprintf("t.is_archived=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.NotStatus != nil {
		args = append(args, *filter.NotStatus)
		clauses = append(clauses, fmt.Sprintf("t.status<>$%d", len(args)))
	}
	if filter.MemberID != nil {
		args = append(args, *filter.MemberID)
		clauses = append(clauses, fmt.Sprintf("(t.submitter_id=$%d OR t.assignee_id=$%d)", len(args), len(args)))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("t.project_id=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateWithHistory(ctx context.Context, ticket *domain.Ticket, entries []domain.HistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE tickets SET name=$1, description=$2, priority=$3, status=$4, type=$5,
            assignee_id=$6, is_archived=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	if err := tx.QueryRow(ctx, query,
		ticket.Name,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.Type,
		ticket.AssigneeID,
		ticket.IsArchived,
		ticket.ID,
	).Scan(&ticket.UpdatedAt); err != nil {
		return err
	}

	for i := range entries {
		entries[i].TicketID = ticket.ID
		if err := insertHistory(ctx, tx, &entries[i]); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM ticket_history WHERE ticket_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM ticket_comments WHERE ticket_id=$1`, id); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func insertHistory(ctx context.Context, tx pgx.Tx, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, creator_id, type, old_value, new_value, related_entity_name, related_entity_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, position, created_at`
	return tx.QueryRow(ctx, query,
		entry.TicketID,
		entry.CreatorID,
		entry.Type,
		entry.OldValue,
		entry.NewValue,
		entry.RelatedEntityName,
		entry.RelatedEntityID,
	).Scan(&entry.ID, &entry.Position, &entry.CreatedAt)
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ProjectID,
		&ticket.SubmitterID,
		&ticket.AssigneeID,
		&ticket.Name,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.Type,
		&ticket.IsArchived,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
