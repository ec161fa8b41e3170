package domain

// Actor is the per-request projection of the acting member plus the
// relationship facts resolved against a specific ticket and its project.
// It is never persisted; the identity layer builds one for each request.
type Actor struct {
	MemberID  string
	CompanyID string
	Role      Role

	// Relationship facts relative to the target ticket/project.
	IsSubmitter      bool
	IsAssignee       bool
	IsProjectManager bool
}

// IsAdmin reports whether the actor holds the company admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
