package service

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/caltman24/zaptrack/internal/cache"
	"github.com/caltman24/zaptrack/internal/domain"
	"github.com/caltman24/zaptrack/internal/history"
)

func (f *fixture) queryService() *QueryService {
	return NewQueryService(QueryDependencies{
		TicketRepo:  f.tickets,
		ProjectRepo: f.projects,
		HistoryRepo: &fakeHistoryRepo{store: f.tickets},
		Formatter:   history.NewRegistry(),
		MemberNames: cache.NewMemberNames(nil, f.members, time.Minute, zap.NewNop()),
	})
}

// appendHistoryEntries fills the timeline directly so pagination tests
// control the exact entry count.
func appendHistoryEntries(f *fixture, ticketID, creatorID string, n int) {
	for i := 0; i < n; i++ {
		old := strconv.Itoa(i)
		newValue := strconv.Itoa(i + 1)
		f.tickets.appendEntry(&domain.HistoryEntry{
			TicketID:  ticketID,
			CreatorID: creatorID,
			Type:      domain.HistoryUpdatePriority,
			OldValue:  &old,
			NewValue:  &newValue,
		}, f.tickets.now())
	}
}

func TestListHistoryPageWindows(t *testing.T) {
	f := newFixture()
	svc := f.queryService()
	ctx := context.Background()
	ticket := f.seedTicket(nil)
	appendHistoryEntries(f, ticket.ID, f.admin.ID, 15)

	page, err := svc.ListHistoryPage(ctx, f.admin, ticket.ID, 1, 10)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page.Entries) != 10 || page.Total != 15 {
		t.Fatalf("page 1 = %d entries, total %d; want 10, 15", len(page.Entries), page.Total)
	}
	// The first page holds the oldest entries.
	if *page.Entries[0].OldValue != "0" {
		t.Fatalf("first entry old value = %s, want 0", *page.Entries[0].OldValue)
	}

	page, err = svc.ListHistoryPage(ctx, f.admin, ticket.ID, 2, 10)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page.Entries) != 5 || page.Total != 15 {
		t.Fatalf("page 2 = %d entries, total %d; want 5, 15", len(page.Entries), page.Total)
	}
	if *page.Entries[0].OldValue != "10" {
		t.Fatalf("page 2 starts at old value %s, want 10", *page.Entries[0].OldValue)
	}

	// Pages past the end are empty, not errors.
	page, err = svc.ListHistoryPage(ctx, f.admin, ticket.ID, 3, 10)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page.Entries) != 0 || page.Total != 15 {
		t.Fatalf("page 3 = %d entries, total %d; want 0, 15", len(page.Entries), page.Total)
	}
}

func TestListHistoryPageValidation(t *testing.T) {
	f := newFixture()
	svc := f.queryService()
	ctx := context.Background()
	ticket := f.seedTicket(nil)

	_, err := svc.ListHistoryPage(ctx, f.admin, ticket.ID, 0, 10)
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.ListHistoryPage(ctx, f.admin, ticket.ID, 1, 0)
	wantStatus(t, err, http.StatusBadRequest)
}

func TestMultiFieldUpdateReadsBackInFieldOrder(t *testing.T) {
	f := newFixture()
	tickets := f.ticketService()
	queries := f.queryService()
	ctx := context.Background()
	ticket := f.seedTicket(nil)

	_, err := tickets.UpdateTicket(ctx, f.manager, ticket.ID, TicketUpdateInput{
		Name:        "Login broken on Safari",
		Description: "500 on submit, Safari only",
		Priority:    "URGENT",
		Status:      "RESOLVED",
		Type:        "CHANGE_REQUEST",
	})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}

	entries, err := queries.ListHistory(ctx, f.manager, ticket.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(entries))
	}

	// The five entries commit in one transaction and share a timestamp;
	// position is what keeps the read order deterministic.
	for i := 1; i < len(entries); i++ {
		if !entries[i].CreatedAt.Equal(entries[0].CreatedAt) {
			t.Fatalf("entry %d has a different timestamp than entry 0", i)
		}
		if entries[i].Position <= entries[i-1].Position {
			t.Fatalf("position not increasing at entry %d", i)
		}
	}
	wantTypes := []domain.HistoryType{
		domain.HistoryUpdateName,
		domain.HistoryUpdateDescription,
		domain.HistoryUpdatePriority,
		domain.HistoryResolved,
		domain.HistoryUpdateType,
	}
	for i, want := range wantTypes {
		if entries[i].Type != want {
			t.Fatalf("entry[%d] = %s, want %s", i, entries[i].Type, want)
		}
	}
}

func TestListHistoryAscending(t *testing.T) {
	f := newFixture()
	svc := f.queryService()
	ticket := f.seedTicket(nil)
	appendHistoryEntries(f, ticket.ID, f.admin.ID, 5)

	entries, err := svc.ListHistory(context.Background(), f.admin, ticket.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.Before(entries[i-1].CreatedAt) {
			t.Fatalf("entry %d is older than entry %d", i, i-1)
		}
	}
}

func TestHistoryScopedToCompany(t *testing.T) {
	f := newFixture()
	svc := f.queryService()
	ticket := f.seedTicket(nil)

	_, err := svc.ListHistory(context.Background(), f.outsider, ticket.ID)
	wantStatus(t, err, http.StatusNotFound)

	_, err = svc.ListHistoryPage(context.Background(), f.outsider, ticket.ID, 1, 10)
	wantStatus(t, err, http.StatusNotFound)
}

func TestListBuckets(t *testing.T) {
	f := newFixture()
	svc := f.queryService()
	ctx := context.Background()

	open := f.seedTicket(nil)
	resolved := f.seedTicket(func(tk *domain.Ticket) {
		tk.Status = domain.TicketStatusResolved
	})
	archived := f.seedTicket(func(tk *domain.Ticket) {
		tk.IsArchived = true
	})
	assigned := f.seedTicket(func(tk *domain.Ticket) {
		tk.AssigneeID = &f.developer.ID
	})

	checkBucket := func(bucket TicketBucket, member *domain.Member, wantIDs map[string]bool) {
		t.Helper()
		tickets, err := svc.ListBucket(ctx, member, bucket, 50, 0)
		if err != nil {
			t.Fatalf("ListBucket(%s): %v", bucket, err)
		}
		if len(tickets) != len(wantIDs) {
			t.Fatalf("bucket %s = %d tickets, want %d", bucket, len(tickets), len(wantIDs))
		}
		for _, tk := range tickets {
			if !wantIDs[tk.ID] {
				t.Fatalf("bucket %s contains unexpected ticket %s", bucket, tk.ID)
			}
		}
	}

	checkBucket(BucketOpen, f.admin, map[string]bool{open.ID: true, assigned.ID: true})
	checkBucket(BucketResolved, f.admin, map[string]bool{resolved.ID: true})
	checkBucket(BucketArchived, f.admin, map[string]bool{archived.ID: true})
	checkBucket(BucketAssignedToMe, f.developer, map[string]bool{assigned.ID: true})

	if _, err := svc.ListBucket(ctx, f.admin, TicketBucket("starred"), 50, 0); err == nil {
		t.Fatal("unknown bucket should fail")
	}

	// The outsider's company has no projects, so every bucket is empty.
	checkBucket(BucketOpen, f.outsider, nil)
}

func TestRenderTimelineMessages(t *testing.T) {
	f := newFixture()
	svc := f.queryService()
	ctx := context.Background()

	oldName, newName := "Login broken", "Login broken on Safari"
	entries := []domain.HistoryEntry{
		{CreatorID: f.submitter.ID, Type: domain.HistoryCreated},
		{CreatorID: f.manager.ID, Type: domain.HistoryUpdateName, OldValue: &oldName, NewValue: &newName},
		{CreatorID: f.manager.ID, Type: domain.HistoryDeveloperAssigned, RelatedEntityName: &f.developer.Name},
		{CreatorID: f.admin.ID, Type: domain.HistoryResolved},
		{CreatorID: "m-999", Type: domain.HistoryArchived},
	}

	rendered, err := svc.Render(ctx, entries)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []string{
		"Ticket created by Sam Submitter",
		"Name updated from 'Login broken' to 'Login broken on Safari' by Mia Manager",
		"Assigned to Devon Developer by Mia Manager",
		"Marked as resolved by Ada Admin",
		"Moved to Archived by Unknown member",
	}
	for i, msg := range want {
		if rendered[i].Message != msg {
			t.Fatalf("message[%d] = %q, want %q", i, rendered[i].Message, msg)
		}
	}
}
