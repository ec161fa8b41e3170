package domain

import "time"

// Comment is a member-authored note on a ticket.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Body      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
