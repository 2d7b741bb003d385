package notify

import "github.com/google/uuid"

// Scope describes who an event is addressed to: either a project, expanded
// to its creator plus members, or an explicit list of principals. Exactly
// one of the two forms is set.
type Scope struct {
	projectID  uuid.UUID
	principals []uuid.UUID
}

// ProjectScope addresses everyone on a project (creator plus members).
func ProjectScope(projectID uuid.UUID) Scope {
	return Scope{projectID: projectID}
}

// PrincipalScope addresses an explicit set of principals.
func PrincipalScope(principals ...uuid.UUID) Scope {
	return Scope{principals: principals}
}

// IsProject reports whether the scope needs project expansion.
func (s Scope) IsProject() bool {
	return s.projectID != uuid.Nil
}

// ProjectID returns the project id for a project scope, uuid.Nil otherwise.
func (s Scope) ProjectID() uuid.UUID {
	return s.projectID
}
