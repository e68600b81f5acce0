package team

import (
	"context"
	"fmt"

	"crewdesk/internal/audit"
	"crewdesk/internal/database"
	"crewdesk/internal/hierarchy"
	"crewdesk/internal/util"

	"github.com/google/uuid"
)

// repairPlan is the full set of writes a reconcile pass wants to make for one
// organisation. Planning is pure so the policy can be tested without a
// database; applying is best effort, one write per item.
type repairPlan struct {
	OwnerSeatID       uuid.UUID
	OrphanIDs         []uuid.UUID
	DuplicateOwnerIDs []uuid.UUID
	ProfileRefreshes  []profileRefresh
}

type profileRefresh struct {
	MemberID uuid.UUID
	Name     util.Optional[string]
	Email    util.Optional[string]
}

func (p repairPlan) isEmpty() bool {
	return len(p.OrphanIDs) == 0 && len(p.DuplicateOwnerIDs) == 0 && len(p.ProfileRefreshes) == 0
}

// planRepairs decides what a healthy directory looks like. The canonical
// owner seat is the one held by the organisation's owner account, falling
// back to the oldest owner-role seat; every other owner-role seat is a
// duplicate to be deleted. Any other seat without a manager is an orphan to
// be reattached to the owner seat. Members whose linked account has a newer
// name or email get a profile refresh. Members must be in creation order.
func planRepairs(members []database.Member, ownerAccountID uuid.UUID, accounts map[uuid.UUID]database.Account) (repairPlan, bool) {
	var plan repairPlan

	ownerFound := false
	ownerSeatHeld := false
	for _, m := range members {
		if m.Role != hierarchy.RoleOwner {
			continue
		}
		heldByOwner := m.AccountID.IsSet && m.AccountID.Val == ownerAccountID
		if !ownerFound {
			plan.OwnerSeatID = m.ID
			ownerFound = true
			ownerSeatHeld = heldByOwner
			continue
		}
		if heldByOwner && !ownerSeatHeld {
			// The owner account's own seat outranks an older impostor, but
			// between two seats held by the owner account the oldest wins.
			current := plan.OwnerSeatID
			plan.OwnerSeatID = m.ID
			ownerSeatHeld = true
			plan.DuplicateOwnerIDs = append(plan.DuplicateOwnerIDs, current)
			continue
		}
		plan.DuplicateOwnerIDs = append(plan.DuplicateOwnerIDs, m.ID)
	}
	if !ownerFound {
		return plan, false
	}

	for _, m := range members {
		if m.Role == hierarchy.RoleOwner {
			continue
		}
		if !m.ManagerID.IsSet {
			plan.OrphanIDs = append(plan.OrphanIDs, m.ID)
		}

		if m.AccountID.IsSet {
			account, ok := accounts[m.AccountID.Val]
			if !ok {
				continue
			}
			refresh := profileRefresh{MemberID: m.ID}
			if account.Name != "" && account.Name != m.Name {
				refresh.Name = util.Some(account.Name)
			}
			if account.Email != "" && account.Email != m.Email {
				refresh.Email = util.Some(account.Email)
			}
			if refresh.Name.IsSet || refresh.Email.IsSet {
				plan.ProfileRefreshes = append(plan.ProfileRefreshes, refresh)
			}
		}
	}

	return plan, true
}

// Reconcile repairs one organisation's directory. Every write is independent
// and logged on failure rather than aborting the pass, and the orphan repair
// is guarded so a concurrent manager assignment always wins. Deleting a
// duplicate owner seat may orphan its reports; the next pass picks them up.
func (m *Manager) Reconcile(ctx context.Context, organisationID uuid.UUID) error {
	org, err := m.db.GetOrganisationByID(ctx, organisationID)
	if err != nil {
		return fmt.Errorf("failed to get organisation %s: %w", organisationID, err)
	}

	members, err := m.db.ListMembers(ctx, database.ListMembersParams{
		OrganisationID: util.Some(organisationID),
	})
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	accounts := make(map[uuid.UUID]database.Account)
	for _, member := range members {
		if !member.AccountID.IsSet {
			continue
		}
		account, err := m.db.GetAccountByID(ctx, member.AccountID.Val)
		if err != nil {
			m.logger.Warn("Failed to load account for profile refresh", "account_id", member.AccountID.Val, "error", err)
			continue
		}
		accounts[account.ID] = account
	}

	plan, ok := planRepairs(members, org.OwnerAccountID, accounts)
	if !ok {
		m.logger.Warn("Organisation has no owner seat, skipping repair", "organisation_id", organisationID)
		return nil
	}
	if plan.isEmpty() {
		return nil
	}

	for _, id := range plan.DuplicateOwnerIDs {
		if err := m.db.DeleteMemberByID(ctx, id); err != nil {
			m.logger.Error("Failed to delete duplicate owner seat", "member_id", id, "error", err)
			continue
		}
		m.logger.Info("Deleted duplicate owner seat", "organisation_id", organisationID, "member_id", id)
		if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
			OwnerID: organisationID,
			Type:    audit.AuditLogEventTypeMemberOwnerDeduped,
			Data:    map[string]any{"member_id": id, "kept": plan.OwnerSeatID},
		}); err != nil {
			m.logger.Error("Failed to log owner dedupe", "member_id", id, "error", err)
		}
	}

	for _, id := range plan.OrphanIDs {
		if err := m.db.RepairMemberManager(ctx, id, plan.OwnerSeatID); err != nil {
			m.logger.Error("Failed to repair orphaned member", "member_id", id, "error", err)
			continue
		}
		m.logger.Info("Reattached orphaned member to owner seat", "organisation_id", organisationID, "member_id", id)
		if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
			OwnerID: organisationID,
			Type:    audit.AuditLogEventTypeMemberOrphanRepair,
			Data:    map[string]any{"member_id": id, "manager_id": plan.OwnerSeatID},
		}); err != nil {
			m.logger.Error("Failed to log orphan repair", "member_id", id, "error", err)
		}
	}

	for _, refresh := range plan.ProfileRefreshes {
		if err := m.db.UpdateMemberByID(ctx, refresh.MemberID, database.UpdateMemberParams{
			Name:  refresh.Name,
			Email: refresh.Email,
		}); err != nil {
			m.logger.Error("Failed to refresh member profile", "member_id", refresh.MemberID, "error", err)
		}
	}

	return nil
}

// ReconcileAll runs the repair pass over every organisation, page by page.
func (m *Manager) ReconcileAll(ctx context.Context) error {
	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		organisations, err := m.db.ListOrganisations(ctx, database.ListOrganisationsParams{
			Limit:  pageSize,
			Offset: offset,
		})
		if err != nil {
			return fmt.Errorf("failed to list organisations: %w", err)
		}

		for _, org := range organisations {
			if err := m.Reconcile(ctx, org.ID); err != nil {
				m.logger.Error("Failed to reconcile organisation", "organisation_id", org.ID, "error", err)
			}
		}

		if len(organisations) < pageSize {
			return nil
		}
	}
}
