package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caltman24/zaptrack/internal/domain"
)

// MemberRepository stores company members.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository builds repository.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

const memberColumns = `id, company_id, name, email, password_hash, role, created_at, updated_at`

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	const query = `
        INSERT INTO members (company_id, name, email, password_hash, role)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		member.CompanyID,
		member.Name,
		member.Email,
		member.PasswordHash,
		member.Role,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	return r.fetchSingle(ctx, `SELECT `+memberColumns+` FROM members WHERE id=$1`, id)
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return r.fetchSingle(ctx, `SELECT `+memberColumns+` FROM members WHERE email=$1`, email)
}

func (r *memberRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Member, error) {
	var member domain.Member
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&member.ID,
		&member.CompanyID,
		&member.Name,
		&member.Email,
		&member.PasswordHash,
		&member.Role,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &member, nil
}
