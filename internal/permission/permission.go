// Package permission decides who may perform which ticket action. The
// rules live in one declarative table instead of per-endpoint role
// switches, so they can be tested independently of routing.
package permission

import "github.com/caltman24/zaptrack/internal/domain"

// Action identifies a guarded ticket operation.
type Action string

const (
	ActionEditDetails     Action = "edit_details"
	ActionFullUpdate      Action = "full_update"
	ActionUpdateStatus    Action = "update_status"
	ActionUpdatePriority  Action = "update_priority"
	ActionUpdateType      Action = "update_type"
	ActionAssignDeveloper Action = "assign_developer"
	ActionDeleteTicket    Action = "delete_ticket"
	ActionArchive         Action = "archive"
	ActionUnarchive       Action = "unarchive"
	ActionCreateComment   Action = "create_comment"
	ActionEditComment     Action = "edit_comment"
	ActionDeleteComment   Action = "delete_comment"
)

// rule lists which role/relationship combinations pass an action.
// Admin always passes and is not listed per rule.
type rule struct {
	projectManager   bool // project manager role
	projectManagerOf bool // must additionally manage the parent project
	assignee         bool // developer currently assigned to the ticket
	submitter        bool // member who filed the ticket
	anyDeveloper     bool // developer role regardless of assignment
	anySubmitter     bool // submitter role regardless of ownership
}

// The full-update row deliberately excludes developers even though the
// status-only row admits the assignee; the two checks are distinct
// actions and must stay that way. Unarchive alone requires the manager
// relationship to the specific project, not just the role.
var rules = map[Action]rule{
	ActionEditDetails:     {projectManager: true, submitter: true},
	ActionFullUpdate:      {projectManager: true, submitter: true},
	ActionUpdateStatus:    {projectManager: true, assignee: true, submitter: true},
	ActionUpdatePriority:  {projectManager: true, submitter: true},
	ActionUpdateType:      {projectManager: true, submitter: true},
	ActionAssignDeveloper: {projectManager: true},
	ActionDeleteTicket:    {projectManager: true},
	ActionArchive:         {projectManager: true},
	ActionUnarchive:       {projectManager: true, projectManagerOf: true},
	ActionCreateComment:   {projectManager: true, anyDeveloper: true, anySubmitter: true},
	ActionEditComment:     {projectManager: true, anyDeveloper: true, anySubmitter: true},
	ActionDeleteComment:   {},
}

// CanPerform reports whether the actor may perform the action. It is a
// pure decision over the actor's role and relationship facts; the
// archived-ticket gate is enforced separately by the mutation engine.
func CanPerform(actor domain.Actor, action Action) bool {
	if actor.IsAdmin() {
		return true
	}
	r, ok := rules[action]
	if !ok {
		return false
	}
	switch actor.Role {
	case domain.RoleProjectManager:
		if !r.projectManager {
			return false
		}
		if r.projectManagerOf {
			return actor.IsProjectManager
		}
		return true
	case domain.RoleDeveloper:
		if r.anyDeveloper {
			return true
		}
		return r.assignee && actor.IsAssignee
	case domain.RoleSubmitter:
		if r.anySubmitter {
			return true
		}
		return r.submitter && actor.IsSubmitter
	}
	return false
}
