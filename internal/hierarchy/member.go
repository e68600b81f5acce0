package hierarchy

import (
	"time"

	"crewdesk/internal/util"

	"github.com/google/uuid"
)

// RoleOwner is the reserved role label for the member at the top of an
// organisation's hierarchy. Every other role label is free text.
const RoleOwner = "owner"

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusAway    Status = "away"
)

// ManagerRef is a member's position in the reporting hierarchy: either Root
// (no manager) or ReportsTo a specific member. The member directory stores
// this as a nullable column; keeping it a tagged value here makes root
// detection type-checked instead of a nil-comparison convention.
type ManagerRef struct {
	id  uuid.UUID
	set bool
}

// Root returns the ManagerRef of a member with no manager.
func Root() ManagerRef {
	return ManagerRef{}
}

// ReportsTo returns the ManagerRef of a member reporting to the given member ID.
func ReportsTo(id uuid.UUID) ManagerRef {
	return ManagerRef{id: id, set: true}
}

// IsRoot reports whether the member has no manager.
func (r ManagerRef) IsRoot() bool {
	return !r.set
}

// ID returns the manager's member ID and whether one is set.
func (r ManagerRef) ID() (uuid.UUID, bool) {
	return r.id, r.set
}

// Member is one person's seat in one organisation. AccountID is unset for
// invited members who have not joined yet. All engine functions treat the
// member slice as an immutable snapshot of a single organisation's directory.
type Member struct {
	ID        uuid.UUID
	AccountID util.Optional[uuid.UUID]
	Name      string
	Role      string
	Status    Status
	Manager   ManagerRef
	CreatedAt time.Time
}

// IsOwner reports whether the member carries the reserved owner role.
func (m Member) IsOwner() bool {
	return m.Role == RoleOwner
}
