// Package hierarchy implements the organisation hierarchy and visibility
// engine: pure functions over a snapshot of one organisation's member
// directory. Subtree closure, cycle detection and eligibility rules live here;
// loading and repairing the directory is the team package's job.
package hierarchy

import (
	"slices"

	"github.com/google/uuid"
)

// reportsIndex builds the adjacency map (manager member ID -> direct reports
// in list order) once, so subtree queries walk the graph instead of rescanning
// the full list at every level.
func reportsIndex(members []Member) map[uuid.UUID][]Member {
	index := make(map[uuid.UUID][]Member, len(members))
	for _, m := range members {
		if managerID, ok := m.Manager.ID(); ok {
			index[managerID] = append(index[managerID], m)
		}
	}
	return index
}

// SubtreeOf returns every member transitively reporting to rootID, excluding
// rootID itself. Each direct report is followed immediately by its own
// subtree, direct reports in list order. Termination relies on the directory
// being a forest; keeping it that way is the maintenance policy's job.
func SubtreeOf(members []Member, rootID uuid.UUID) []Member {
	return appendSubtree(nil, reportsIndex(members), rootID)
}

func appendSubtree(out []Member, index map[uuid.UUID][]Member, id uuid.UUID) []Member {
	for _, m := range index[id] {
		out = append(out, m)
		out = appendSubtree(out, index, m.ID)
	}
	return out
}

// WouldCreateCycle reports whether changing targetID's manager to candidate
// would make the manager graph cyclic. A Root candidate never cycles. A
// candidate equal to the target is a self-cycle. Otherwise the candidate's
// manager chain is walked upward; reaching the target means the target would
// become its own ancestor. The walk stops defensively at an unresolvable
// manager pointer, and a chain longer than the member list (only possible on
// an already-corrupt graph) is treated as a cycle.
func WouldCreateCycle(members []Member, targetID uuid.UUID, candidate ManagerRef) bool {
	current, ok := candidate.ID()
	if !ok {
		return false
	}
	if current == targetID {
		return true
	}

	byID := make(map[uuid.UUID]Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	for range members {
		m, ok := byID[current]
		if !ok {
			return false
		}
		next, ok := m.Manager.ID()
		if !ok {
			return false
		}
		if next == targetID {
			return true
		}
		current = next
	}
	return true
}

// memberByAccount resolves the member record holding the given account ID.
func memberByAccount(members []Member, accountID uuid.UUID) (Member, bool) {
	for _, m := range members {
		if m.AccountID.IsSet && m.AccountID.Val == accountID {
			return m, true
		}
	}
	return Member{}, false
}

// EligibleAssignees returns the members the viewer may assign work to. A
// viewer with no member record gets nothing (fail closed). A root-level
// viewer may assign to the entire directory. Anyone else may assign to
// themselves and their subtree, never laterally or upward.
func EligibleAssignees(members []Member, viewerAccountID uuid.UUID) []Member {
	viewer, ok := memberByAccount(members, viewerAccountID)
	if !ok {
		return nil
	}
	if viewer.Manager.IsRoot() {
		return slices.Clone(members)
	}
	return append([]Member{viewer}, SubtreeOf(members, viewer.ID)...)
}

// VisibleMembers returns the members whose records the viewer may see. The
// rule is the same shape as EligibleAssignees.
func VisibleMembers(members []Member, viewerAccountID uuid.UUID) []Member {
	return EligibleAssignees(members, viewerAccountID)
}

// VisibleAccountIDs projects VisibleMembers to account IDs, skipping invited
// members that have no account yet.
func VisibleAccountIDs(members []Member, viewerAccountID uuid.UUID) []uuid.UUID {
	visible := VisibleMembers(members, viewerAccountID)
	ids := make([]uuid.UUID, 0, len(visible))
	for _, m := range visible {
		if m.AccountID.IsSet {
			ids = append(ids, m.AccountID.Val)
		}
	}
	return ids
}

// VisibleNames projects VisibleMembers to display names, used for matching
// legacy records that carry only an assignee name.
func VisibleNames(members []Member, viewerAccountID uuid.UUID) []string {
	visible := VisibleMembers(members, viewerAccountID)
	names := make([]string, 0, len(visible))
	for _, m := range visible {
		names = append(names, m.Name)
	}
	return names
}
