package hierarchy

import (
	"crewdesk/internal/util"

	"github.com/google/uuid"
)

// Assignable is any record carrying assignee identity: an account ID for
// records created after identifier-based assignment, or only a display name
// for legacy records.
type Assignable interface {
	AssigneeAccount() util.Optional[uuid.UUID]
	Assignee() string
}

// FilterVisible returns the subset of items the viewer may see. A root-level
// viewer passes everything. For other viewers an item is visible when its
// assignee account is the viewer's own or in the viewer's visible set;
// name matching applies only to items with no assignee account at all, so a
// record is never required to match both ways. An unknown viewer sees nothing.
func FilterVisible[T Assignable](members []Member, viewerAccountID uuid.UUID, items []T) []T {
	viewer, ok := memberByAccount(members, viewerAccountID)
	if !ok {
		return nil
	}
	if viewer.Manager.IsRoot() {
		return items
	}

	visibleIDs := make(map[uuid.UUID]struct{})
	for _, id := range VisibleAccountIDs(members, viewerAccountID) {
		visibleIDs[id] = struct{}{}
	}
	visibleNames := make(map[string]struct{})
	for _, name := range VisibleNames(members, viewerAccountID) {
		visibleNames[name] = struct{}{}
	}

	var out []T
	for _, item := range items {
		assignee := item.AssigneeAccount()
		if assignee.IsSet {
			if assignee.Val == viewerAccountID {
				out = append(out, item)
				continue
			}
			if _, ok := visibleIDs[assignee.Val]; ok {
				out = append(out, item)
			}
			continue
		}
		if _, ok := visibleNames[item.Assignee()]; ok {
			out = append(out, item)
		}
	}
	return out
}
