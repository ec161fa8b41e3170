package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caltman24/zaptrack/internal/domain"
)

// HistoryRepository reads the append-only audit log. Entries are
// written through TicketRepository transactions (or Create for the
// initial entry); there is deliberately no update or delete.
type HistoryRepository interface {
	ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error)
	ListByTicketPage(ctx context.Context, ticketID string, limit, offset int) ([]domain.HistoryEntry, int, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

const historyColumns = `id, ticket_id, creator_id, position, type, old_value, new_value, related_entity_name, related_entity_id, created_at`

// Entries from one transaction share a created_at, so ordering falls
// through to position to reproduce insertion order.
func (r *historyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT ` + historyColumns + `
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC, position ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (r *historyRepository) ListByTicketPage(ctx context.Context, ticketID string, limit, offset int) ([]domain.HistoryEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ticket_history WHERE ticket_id=$1`, ticketID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT ` + historyColumns + `
        FROM ticket_history WHERE ticket_id=$1
        ORDER BY created_at ASC, position ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries, err := scanHistory(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func scanHistory(rows pgx.Rows) ([]domain.HistoryEntry, error) {
	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.CreatorID,
			&entry.Position,
			&entry.Type,
			&entry.OldValue,
			&entry.NewValue,
			&entry.RelatedEntityName,
			&entry.RelatedEntityID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
