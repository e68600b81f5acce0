// Package team loads, edits and repairs an organisation's member directory.
// All structural rules (cycle rejection, root reservation, owner removal) are
// enforced here against a fresh snapshot at commit time; the read-side
// visibility rules live in the hierarchy package.
package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"crewdesk/internal/audit"
	"crewdesk/internal/database"
	"crewdesk/internal/hierarchy"
	"crewdesk/internal/notifications"
	"crewdesk/internal/presence"
	"crewdesk/internal/util"

	"github.com/google/uuid"
)

var (
	// ErrStructuralConflict means a manager change was rejected because it
	// would make the reporting graph cyclic.
	ErrStructuralConflict = errors.New("team: manager change would create a reporting cycle")
	// ErrManagerNotFound means the proposed manager is not a member of the
	// same organisation.
	ErrManagerNotFound = errors.New("team: proposed manager is not in this organisation")
	// ErrRootReserved means a change tried to move a seat onto, or the owner
	// seat off, the root of the hierarchy.
	ErrRootReserved = errors.New("team: the hierarchy root is reserved for the owner seat")
	// ErrOwnerHasReports means the owner seat cannot be removed while members
	// still report to it.
	ErrOwnerHasReports = errors.New("team: owner seat cannot be removed while it has reports")
	// ErrRoleReserved means the owner role label was used for a regular seat.
	ErrRoleReserved = errors.New("team: the owner role label is reserved")
)

type Manager struct {
	db       *database.Database
	logger   *slog.Logger
	presence *presence.Tracker
	auditor  *audit.Auditor
	notifier *notifications.Manager
}

func NewManager(db *database.Database, logger *slog.Logger, tracker *presence.Tracker, auditor *audit.Auditor, notifier *notifications.Manager) Manager {
	return Manager{
		db:       db,
		logger:   logger,
		presence: tracker,
		auditor:  auditor,
		notifier: notifier,
	}
}

// LoadDirectory returns the organisation's member directory as a hierarchy
// snapshot, in creation order, with live presence merged in. Invited members
// without an account are always offline.
func (m *Manager) LoadDirectory(ctx context.Context, organisationID uuid.UUID) ([]hierarchy.Member, error) {
	dbMembers, err := m.db.ListMembers(ctx, database.ListMembersParams{
		OrganisationID: util.Some(organisationID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	accountIDs := make([]uuid.UUID, 0, len(dbMembers))
	for _, member := range dbMembers {
		if member.AccountID.IsSet {
			accountIDs = append(accountIDs, member.AccountID.Val)
		}
	}
	statuses, err := m.presence.Statuses(ctx, accountIDs)
	if err != nil {
		// Presence is best effort; a Redis hiccup must not take the
		// directory down with it.
		m.logger.Warn("Failed to load presence statuses", "error", err)
		statuses = nil
	}

	members := make([]hierarchy.Member, 0, len(dbMembers))
	for _, member := range dbMembers {
		members = append(members, toHierarchyMember(member, statuses))
	}
	return members, nil
}

func toHierarchyMember(member database.Member, statuses map[uuid.UUID]hierarchy.Status) hierarchy.Member {
	manager := hierarchy.Root()
	if member.ManagerID.IsSet {
		manager = hierarchy.ReportsTo(member.ManagerID.Val)
	}

	status := hierarchy.StatusOffline
	if member.AccountID.IsSet {
		if s, ok := statuses[member.AccountID.Val]; ok {
			status = s
		}
	}

	return hierarchy.Member{
		ID:        member.ID,
		AccountID: member.AccountID,
		Name:      member.Name,
		Role:      member.Role,
		Status:    status,
		Manager:   manager,
		CreatedAt: member.CreatedAt,
	}
}

// VisibleMembers returns the directory slice the viewer is allowed to see.
func (m *Manager) VisibleMembers(ctx context.Context, organisationID uuid.UUID, viewerAccountID uuid.UUID) ([]hierarchy.Member, error) {
	members, err := m.LoadDirectory(ctx, organisationID)
	if err != nil {
		return nil, err
	}
	return hierarchy.VisibleMembers(members, viewerAccountID), nil
}

// OrgChart returns the full nested chart. The chart is organisation-wide on
// purpose: seeing the structure is not the same as seeing task details, which
// stay scoped by the visibility rules.
func (m *Manager) OrgChart(ctx context.Context, organisationID uuid.UUID) ([]hierarchy.Node, error) {
	members, err := m.LoadDirectory(ctx, organisationID)
	if err != nil {
		return nil, err
	}
	return hierarchy.Forest(members), nil
}

type InviteMemberParam struct {
	OrganisationID uuid.UUID
	Name           string
	Email          string
	Role           string
	ManagerID      util.Optional[uuid.UUID]
	ActorAccountID uuid.UUID
}

// InviteMember creates a seat for someone who has not joined yet. When no
// manager is given the seat is attached to the owner seat, never to the root.
func (m *Manager) InviteMember(ctx context.Context, params InviteMemberParam) (database.Member, error) {
	var member database.Member

	role := params.Role
	if role == "" {
		role = "member"
	}
	if role == hierarchy.RoleOwner {
		return member, ErrRoleReserved
	}

	dbMembers, err := m.db.ListMembers(ctx, database.ListMembersParams{
		OrganisationID: util.Some(params.OrganisationID),
	})
	if err != nil {
		return member, fmt.Errorf("failed to list members: %w", err)
	}

	managerID := params.ManagerID
	if managerID.IsSet {
		if _, ok := seatByID(dbMembers, managerID.Val); !ok {
			return member, ErrManagerNotFound
		}
	} else {
		owner, ok := ownerSeat(dbMembers)
		if !ok {
			return member, fmt.Errorf("organisation %s has no owner seat to attach the invite to", params.OrganisationID)
		}
		managerID = util.Some(owner.ID)
	}

	member, err = m.db.CreateMember(ctx, database.CreateMemberParams{
		OrganisationID: params.OrganisationID,
		ManagerID:      managerID,
		Name:           params.Name,
		Email:          params.Email,
		Role:           role,
	})
	if err != nil {
		return member, fmt.Errorf("failed to create member: %w", err)
	}

	m.logger.Info("Invited member", "organisation_id", params.OrganisationID, "member_id", member.ID, "manager_id", managerID.Val)

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		OwnerID: params.OrganisationID,
		Type:    audit.AuditLogEventTypeMemberInvite,
		Data: map[string]any{
			"member_id":  member.ID,
			"manager_id": managerID.Val,
			"email":      params.Email,
			"actor":      params.ActorAccountID,
		},
	}); err != nil {
		return member, fmt.Errorf("failed to log audit event: %w", err)
	}

	if manager, ok := seatByID(dbMembers, managerID.Val); ok && manager.AccountID.IsSet && manager.AccountID.Val != params.ActorAccountID {
		if err := m.notifier.Notify(ctx, notifications.NotifyParam{
			OwnerID: manager.AccountID.Val,
			Title:   "New report invited",
			Message: fmt.Sprintf("%s was invited to your team", params.Name),
			Type:    notifications.NotificationTypeInfo,
		}); err != nil {
			m.logger.Warn("Failed to notify manager about invite", "error", err)
		}
	}

	return member, nil
}

type UpdateMemberParam struct {
	OrganisationID uuid.UUID
	MemberID       uuid.UUID
	Name           util.Optional[string]
	Role           util.Optional[string]
	ManagerID      util.Optional[uuid.UUID]
	ActorAccountID uuid.UUID
}

// UpdateMember edits a seat. Manager changes are validated against a fresh
// snapshot immediately before the write: the proposed manager must be a
// current member and the move must not create a cycle. The edit path only
// accepts a concrete manager, so nobody can be promoted to the root here;
// the owner seat likewise cannot be moved off it.
func (m *Manager) UpdateMember(ctx context.Context, params UpdateMemberParam) error {
	member, err := m.db.GetMember(ctx, database.GetMemberParams{
		ID:             util.Some(params.MemberID),
		OrganisationID: util.Some(params.OrganisationID),
	})
	if err != nil {
		return fmt.Errorf("failed to get member %s: %w", params.MemberID, err)
	}

	if params.Role.IsSet && params.Role.Val == hierarchy.RoleOwner && member.Role != hierarchy.RoleOwner {
		return ErrRoleReserved
	}

	managerChanged := params.ManagerID.IsSet &&
		(!member.ManagerID.IsSet || member.ManagerID.Val != params.ManagerID.Val)

	if managerChanged {
		if member.Role == hierarchy.RoleOwner {
			return ErrRootReserved
		}

		directory, err := m.LoadDirectory(ctx, params.OrganisationID)
		if err != nil {
			return err
		}
		candidate := hierarchy.ReportsTo(params.ManagerID.Val)

		found := false
		for _, existing := range directory {
			if existing.ID == params.ManagerID.Val {
				found = true
				break
			}
		}
		if !found {
			return ErrManagerNotFound
		}
		if hierarchy.WouldCreateCycle(directory, params.MemberID, candidate) {
			return ErrStructuralConflict
		}
	}

	update := database.UpdateMemberParams{
		Name: params.Name,
		Role: params.Role,
	}
	if managerChanged {
		update.ManagerID = params.ManagerID
	}
	if err := m.db.UpdateMemberByID(ctx, params.MemberID, update); err != nil {
		return fmt.Errorf("failed to update member %s: %w", params.MemberID, err)
	}

	eventType := audit.AuditLogEventTypeMemberUpdate
	if managerChanged {
		eventType = audit.AuditLogEventTypeMemberManagerReassign
	}
	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		OwnerID: params.OrganisationID,
		Type:    eventType,
		Data: map[string]any{
			"member_id": params.MemberID,
			"actor":     params.ActorAccountID,
		},
	}); err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	if managerChanged && member.AccountID.IsSet && member.AccountID.Val != params.ActorAccountID {
		if err := m.notifier.Notify(ctx, notifications.NotifyParam{
			OwnerID: member.AccountID.Val,
			Title:   "Reporting line changed",
			Message: "Your manager has been changed",
			Type:    notifications.NotificationTypeInfo,
		}); err != nil {
			m.logger.Warn("Failed to notify member about manager change", "error", err)
		}
	}

	return nil
}

type RemoveMemberParam struct {
	OrganisationID uuid.UUID
	MemberID       uuid.UUID
	ActorAccountID uuid.UUID
}

// RemoveMember deletes a seat. The owner seat is only removable once nothing
// reports to it. A removed manager's direct reports are reattached to the
// removed member's own manager in the same call, so no visible gap opens up;
// anything this misses is caught by the reconcile pass.
func (m *Manager) RemoveMember(ctx context.Context, params RemoveMemberParam) error {
	member, err := m.db.GetMember(ctx, database.GetMemberParams{
		ID:             util.Some(params.MemberID),
		OrganisationID: util.Some(params.OrganisationID),
	})
	if err != nil {
		return fmt.Errorf("failed to get member %s: %w", params.MemberID, err)
	}

	dbMembers, err := m.db.ListMembers(ctx, database.ListMembersParams{
		OrganisationID: util.Some(params.OrganisationID),
	})
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	var reports []database.Member
	for _, existing := range dbMembers {
		if existing.ManagerID.IsSet && existing.ManagerID.Val == params.MemberID {
			reports = append(reports, existing)
		}
	}

	if member.Role == hierarchy.RoleOwner && len(reports) > 0 {
		return ErrOwnerHasReports
	}

	// Reports fall back to the removed member's manager; an orphaned branch
	// goes to the owner seat.
	newManager := member.ManagerID
	if !newManager.IsSet {
		if owner, ok := ownerSeat(dbMembers); ok && owner.ID != params.MemberID {
			newManager = util.Some(owner.ID)
		}
	}
	for _, report := range reports {
		if !newManager.IsSet {
			break
		}
		if err := m.db.UpdateMemberByID(ctx, report.ID, database.UpdateMemberParams{
			ManagerID: newManager,
		}); err != nil {
			return fmt.Errorf("failed to reattach report %s: %w", report.ID, err)
		}
	}

	if err := m.db.DeleteMemberByID(ctx, params.MemberID); err != nil {
		return fmt.Errorf("failed to delete member %s: %w", params.MemberID, err)
	}

	m.logger.Info("Removed member", "organisation_id", params.OrganisationID, "member_id", params.MemberID, "reattached_reports", len(reports))

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		OwnerID: params.OrganisationID,
		Type:    audit.AuditLogEventTypeMemberRemove,
		Data: map[string]any{
			"member_id":          params.MemberID,
			"reattached_reports": len(reports),
			"actor":              params.ActorAccountID,
		},
	}); err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}

func seatByID(members []database.Member, id uuid.UUID) (database.Member, bool) {
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return database.Member{}, false
}

// ownerSeat returns the first owner-role seat in creation order.
func ownerSeat(members []database.Member) (database.Member, bool) {
	for _, m := range members {
		if m.Role == hierarchy.RoleOwner {
			return m, true
		}
	}
	return database.Member{}, false
}
