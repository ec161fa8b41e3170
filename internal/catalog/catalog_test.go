package catalog

import (
	"testing"

	"github.com/caltman24/zaptrack/internal/domain"
)

func TestResolvePriority(t *testing.T) {
	cases := []struct {
		name string
		want domain.TicketPriority
		ok   bool
	}{
		{"LOW", domain.TicketPriorityLow, true},
		{"low", domain.TicketPriorityLow, true},
		{" Medium ", domain.TicketPriorityMedium, true},
		{"URGENT", domain.TicketPriorityUrgent, true},
		{"CRITICAL", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ResolvePriority(tc.name)
		if ok != tc.ok {
			t.Errorf("ResolvePriority(%q) ok = %v, expected %v", tc.name, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Errorf("ResolvePriority(%q) = %q, expected %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveStatus(t *testing.T) {
	got, ok := ResolveStatus("resolved")
	if !ok || got != domain.TicketStatusResolved {
		t.Fatalf("ResolveStatus(resolved) = %q, %v", got, ok)
	}
	if _, ok := ResolveStatus("CLOSED"); ok {
		t.Error("ResolveStatus(CLOSED) should fail")
	}
}

func TestResolveType(t *testing.T) {
	got, ok := ResolveType("work_task")
	if !ok || got != domain.TicketTypeWorkTask {
		t.Fatalf("ResolveType(work_task) = %q, %v", got, ok)
	}
	if _, ok := ResolveType("EPIC"); ok {
		t.Error("ResolveType(EPIC) should fail")
	}
}

func TestIsResolvedStatus(t *testing.T) {
	if !IsResolvedStatus(domain.TicketStatusResolved) {
		t.Error("RESOLVED should be the distinguished resolved status")
	}
	if IsResolvedStatus(domain.TicketStatusTesting) {
		t.Error("TESTING must not count as resolved")
	}
}
