package dto

import "time"

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// UpdateCommentRequest payload.
type UpdateCommentRequest struct {
	Body string `json:"body"`
}

// CommentResponse serialized comment.
type CommentResponse struct {
	ID        string     `json:"id"`
	TicketID  string     `json:"ticket_id"`
	AuthorID  string     `json:"author_id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
