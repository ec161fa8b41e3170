package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/caltman24/zaptrack/internal/domain"
	"github.com/caltman24/zaptrack/internal/repository"
)

// In-memory repository fakes backing the service tests. They mirror the
// pgx implementations' contract: missing rows surface pgx.ErrNoRows and
// UpdateWithHistory commits fields and entries together.

var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	history map[string][]domain.HistoryEntry
	// projectCompany lets ListWithFilter scope by company without a join.
	projectCompany map[string]string
	seq            int
	posSeq         int64
	failWrites     bool
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:        make(map[string]*domain.Ticket),
		history:        make(map[string][]domain.HistoryEntry),
		projectCompany: make(map[string]string),
	}
}

func (r *fakeTicketRepo) nextID(prefix string) string {
	r.seq++
	return prefix + "-" + strconv.Itoa(r.seq)
}

func (r *fakeTicketRepo) now() time.Time {
	r.seq++
	return testEpoch.Add(time.Duration(r.seq) * time.Second)
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket, created *domain.HistoryEntry) error {
	if r.failWrites {
		return errStoreDown
	}
	ticket.ID = r.nextID("t")
	ticket.CreatedAt = r.now()
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	if created != nil {
		created.TicketID = ticket.ID
		r.appendEntry(created, ticket.CreatedAt)
	}
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if r.projectCompany[ticket.ProjectID] != filter.CompanyID {
			continue
		}
		if filter.Archived != nil && ticket.IsArchived != *filter.Archived {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.NotStatus != nil && ticket.Status == *filter.NotStatus {
			continue
		}
		if filter.MemberID != nil {
			assigned := ticket.AssigneeID != nil && *ticket.AssigneeID == *filter.MemberID
			if ticket.SubmitterID != *filter.MemberID && !assigned {
				continue
			}
		}
		if filter.ProjectID != nil && ticket.ProjectID != *filter.ProjectID {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeTicketRepo) UpdateWithHistory(_ context.Context, ticket *domain.Ticket, entries []domain.HistoryEntry) error {
	if r.failWrites {
		return errStoreDown
	}
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	now := r.now()
	ticket.UpdatedAt = &now
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	// All entries of one call share a timestamp, as rows written in one
	// Postgres transaction do.
	for i := range entries {
		entries[i].TicketID = ticket.ID
		r.appendEntry(&entries[i], now)
	}
	return nil
}

func (r *fakeTicketRepo) DeleteCascade(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	delete(r.history, id)
	return nil
}

func (r *fakeTicketRepo) appendEntry(entry *domain.HistoryEntry, at time.Time) {
	entry.ID = r.nextID("h")
	r.posSeq++
	entry.Position = r.posSeq
	entry.CreatedAt = at
	r.history[entry.TicketID] = append(r.history[entry.TicketID], *entry)
}

func (r *fakeTicketRepo) entriesFor(ticketID string) []domain.HistoryEntry {
	return r.history[ticketID]
}

// fakeHistoryRepo reads from the ticket fake's entry log, sorting the
// way the SQL does: created_at first, position as the tiebreaker.
type fakeHistoryRepo struct {
	store *fakeTicketRepo
}

func (r *fakeHistoryRepo) sorted(ticketID string) []domain.HistoryEntry {
	entries := append([]domain.HistoryEntry{}, r.store.history[ticketID]...)
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].Position < entries[j].Position
	})
	return entries
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	return r.sorted(ticketID), nil
}

func (r *fakeHistoryRepo) ListByTicketPage(_ context.Context, ticketID string, limit, offset int) ([]domain.HistoryEntry, int, error) {
	all := r.sorted(ticketID)
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type fakeProjectRepo struct {
	projects map[string]*domain.Project
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *project
	return &copied, nil
}

type fakeMemberRepo struct {
	members map[string]*domain.Member
}

func (r *fakeMemberRepo) Create(_ context.Context, member *domain.Member) error {
	member.ID = "m-" + strconv.Itoa(len(r.members)+1)
	r.members[member.ID] = member
	return nil
}

func (r *fakeMemberRepo) GetByID(_ context.Context, id string) (*domain.Member, error) {
	member, ok := r.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *member
	return &copied, nil
}

func (r *fakeMemberRepo) GetByEmail(_ context.Context, email string) (*domain.Member, error) {
	for _, member := range r.members {
		if member.Email == email {
			copied := *member
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCommentRepo struct {
	comments map[string]*domain.Comment
	seq      int
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.seq++
	comment.ID = "c-" + strconv.Itoa(r.seq)
	comment.CreatedAt = testEpoch.Add(time.Duration(r.seq) * time.Second)
	copied := *comment
	r.comments[comment.ID] = &copied
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *comment
	return &copied, nil
}

func (r *fakeCommentRepo) Update(_ context.Context, comment *domain.Comment) error {
	if _, ok := r.comments[comment.ID]; !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	comment.UpdatedAt = &now
	copied := *comment
	r.comments[comment.ID] = &copied
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, *comment)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

type storeDownError struct{}

func (storeDownError) Error() string { return "store down" }

var errStoreDown = storeDownError{}

// fixture wires the fakes into a consistent company/project/member set.
type fixture struct {
	tickets  *fakeTicketRepo
	projects *fakeProjectRepo
	members  *fakeMemberRepo
	comments *fakeCommentRepo

	admin      *domain.Member
	manager    *domain.Member // manages project p1
	otherPM    *domain.Member // PM role, manages nothing
	developer  *domain.Member
	developer2 *domain.Member
	submitter  *domain.Member
	outsider   *domain.Member // admin of another company
}

func newFixture() *fixture {
	f := &fixture{
		tickets:  newFakeTicketRepo(),
		projects: &fakeProjectRepo{projects: make(map[string]*domain.Project)},
		members:  &fakeMemberRepo{members: make(map[string]*domain.Member)},
		comments: &fakeCommentRepo{comments: make(map[string]*domain.Comment)},
	}

	f.admin = f.addMember("Ada Admin", "c1", domain.RoleAdmin)
	f.manager = f.addMember("Mia Manager", "c1", domain.RoleProjectManager)
	f.otherPM = f.addMember("Paul Planner", "c1", domain.RoleProjectManager)
	f.developer = f.addMember("Devon Developer", "c1", domain.RoleDeveloper)
	f.developer2 = f.addMember("Dana Developer", "c1", domain.RoleDeveloper)
	f.submitter = f.addMember("Sam Submitter", "c1", domain.RoleSubmitter)
	f.outsider = f.addMember("Oz Outsider", "c2", domain.RoleAdmin)

	f.projects.projects["p1"] = &domain.Project{
		ID:               "p1",
		CompanyID:        "c1",
		Name:             "Tracker",
		ProjectManagerID: &f.manager.ID,
	}
	f.tickets.projectCompany["p1"] = "c1"
	return f
}

func (f *fixture) addMember(name, companyID string, role domain.Role) *domain.Member {
	member := &domain.Member{Name: name, CompanyID: companyID, Role: role}
	_ = f.members.Create(context.Background(), member)
	return member
}

func (f *fixture) ticketService() *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:  f.tickets,
		ProjectRepo: f.projects,
		MemberRepo:  f.members,
	})
}

func (f *fixture) commentService() *CommentService {
	return NewCommentService(CommentDependencies{
		CommentRepo: f.comments,
		TicketRepo:  f.tickets,
		ProjectRepo: f.projects,
	})
}

// seedTicket installs a ticket owned by the fixture submitter.
func (f *fixture) seedTicket(mutate func(*domain.Ticket)) *domain.Ticket {
	ticket := &domain.Ticket{
		ProjectID:   "p1",
		SubmitterID: f.submitter.ID,
		Name:        "Login broken",
		Description: "500 on submit",
		Priority:    domain.TicketPriorityLow,
		Status:      domain.TicketStatusNew,
		Type:        domain.TicketTypeDefect,
	}
	if mutate != nil {
		mutate(ticket)
	}
	_ = f.tickets.Create(context.Background(), ticket, nil)
	return ticket
}
