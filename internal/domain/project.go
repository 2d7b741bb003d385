package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project is the read-only view of a project this subsystem consumes when
// expanding a project-scoped event into its recipient set. Ownership and
// mutation of projects belong to the project-management side of the system;
// nothing here ever writes one.
type Project struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	CreatorID uuid.UUID   `json:"creator_id"`
	Members   []uuid.UUID `json:"members"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Audience returns the creator plus all members, deduplicated. Order is not
// significant to callers.
func (p *Project) Audience() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(p.Members)+1)
	audience := make([]uuid.UUID, 0, len(p.Members)+1)

	if p.CreatorID != uuid.Nil {
		seen[p.CreatorID] = struct{}{}
		audience = append(audience, p.CreatorID)
	}

	for _, member := range p.Members {
		if member == uuid.Nil {
			continue
		}
		if _, ok := seen[member]; ok {
			continue
		}
		seen[member] = struct{}{}
		audience = append(audience, member)
	}

	return audience
}
