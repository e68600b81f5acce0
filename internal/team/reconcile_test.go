package team

import (
	"testing"
	"time"

	"crewdesk/internal/database"
	"crewdesk/internal/hierarchy"
	"crewdesk/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMember(name, role string, managerID util.Optional[uuid.UUID], createdAt time.Time) database.Member {
	return database.Member{
		ID:        uuid.New(),
		AccountID: util.Some(uuid.New()),
		ManagerID: managerID,
		Name:      name,
		Email:     name + "@example.com",
		Role:      role,
		CreatedAt: createdAt,
	}
}

func TestPlanRepairsNoOwnerSeat(t *testing.T) {
	members := []database.Member{
		seedMember("alice", "member", util.None[uuid.UUID](), time.Now()),
	}

	_, ok := planRepairs(members, uuid.New(), nil)
	assert.False(t, ok)
}

func TestPlanRepairsHealthyDirectory(t *testing.T) {
	base := time.Now()
	owner := seedMember("owner", hierarchy.RoleOwner, util.None[uuid.UUID](), base)
	manager := seedMember("manager", "member", util.Some(owner.ID), base.Add(time.Minute))
	report := seedMember("report", "member", util.Some(manager.ID), base.Add(2*time.Minute))

	plan, ok := planRepairs([]database.Member{owner, manager, report}, owner.AccountID.Val, nil)
	require.True(t, ok)
	assert.Equal(t, owner.ID, plan.OwnerSeatID)
	assert.True(t, plan.isEmpty())
}

func TestPlanRepairsOrphans(t *testing.T) {
	base := time.Now()
	owner := seedMember("owner", hierarchy.RoleOwner, util.None[uuid.UUID](), base)
	orphanA := seedMember("a", "member", util.None[uuid.UUID](), base.Add(time.Minute))
	attached := seedMember("b", "member", util.Some(owner.ID), base.Add(2*time.Minute))
	orphanB := seedMember("c", "member", util.None[uuid.UUID](), base.Add(3*time.Minute))

	plan, ok := planRepairs([]database.Member{owner, orphanA, attached, orphanB}, owner.AccountID.Val, nil)
	require.True(t, ok)
	assert.Equal(t, owner.ID, plan.OwnerSeatID)
	assert.Equal(t, []uuid.UUID{orphanA.ID, orphanB.ID}, plan.OrphanIDs)
	assert.Empty(t, plan.DuplicateOwnerIDs)
}

func TestPlanRepairsOwnerDedupe(t *testing.T) {
	base := time.Now()
	ownerAccountID := uuid.New()

	t.Run("oldest owner seat wins by default", func(t *testing.T) {
		older := seedMember("older", hierarchy.RoleOwner, util.None[uuid.UUID](), base)
		newer := seedMember("newer", hierarchy.RoleOwner, util.None[uuid.UUID](), base.Add(time.Minute))

		plan, ok := planRepairs([]database.Member{older, newer}, ownerAccountID, nil)
		require.True(t, ok)
		assert.Equal(t, older.ID, plan.OwnerSeatID)
		assert.Equal(t, []uuid.UUID{newer.ID}, plan.DuplicateOwnerIDs)
	})

	t.Run("owner account seat outranks an older seat", func(t *testing.T) {
		impostor := seedMember("impostor", hierarchy.RoleOwner, util.None[uuid.UUID](), base)
		real := seedMember("real", hierarchy.RoleOwner, util.None[uuid.UUID](), base.Add(time.Minute))
		real.AccountID = util.Some(ownerAccountID)

		plan, ok := planRepairs([]database.Member{impostor, real}, ownerAccountID, nil)
		require.True(t, ok)
		assert.Equal(t, real.ID, plan.OwnerSeatID)
		assert.Equal(t, []uuid.UUID{impostor.ID}, plan.DuplicateOwnerIDs)
	})

	t.Run("oldest wins among owner account seats", func(t *testing.T) {
		first := seedMember("first", hierarchy.RoleOwner, util.None[uuid.UUID](), base)
		first.AccountID = util.Some(ownerAccountID)
		second := seedMember("second", hierarchy.RoleOwner, util.None[uuid.UUID](), base.Add(time.Minute))
		second.AccountID = util.Some(ownerAccountID)

		plan, ok := planRepairs([]database.Member{first, second}, ownerAccountID, nil)
		require.True(t, ok)
		assert.Equal(t, first.ID, plan.OwnerSeatID)
		assert.Equal(t, []uuid.UUID{second.ID}, plan.DuplicateOwnerIDs)
	})

	t.Run("duplicate owner seats are never listed as orphans", func(t *testing.T) {
		kept := seedMember("kept", hierarchy.RoleOwner, util.None[uuid.UUID](), base)
		dup := seedMember("dup", hierarchy.RoleOwner, util.None[uuid.UUID](), base.Add(time.Minute))

		plan, ok := planRepairs([]database.Member{kept, dup}, ownerAccountID, nil)
		require.True(t, ok)
		assert.Empty(t, plan.OrphanIDs)
		assert.Equal(t, []uuid.UUID{dup.ID}, plan.DuplicateOwnerIDs)
	})
}

func TestPlanRepairsProfileRefresh(t *testing.T) {
	base := time.Now()
	owner := seedMember("owner", hierarchy.RoleOwner, util.None[uuid.UUID](), base)
	stale := seedMember("old-name", "member", util.Some(owner.ID), base.Add(time.Minute))
	current := seedMember("fresh", "member", util.Some(owner.ID), base.Add(2*time.Minute))

	accounts := map[uuid.UUID]database.Account{
		stale.AccountID.Val: {
			ID:    stale.AccountID.Val,
			Name:  "new-name",
			Email: stale.Email,
		},
		current.AccountID.Val: {
			ID:    current.AccountID.Val,
			Name:  current.Name,
			Email: current.Email,
		},
	}

	plan, ok := planRepairs([]database.Member{owner, stale, current}, owner.AccountID.Val, accounts)
	require.True(t, ok)
	require.Len(t, plan.ProfileRefreshes, 1)
	refresh := plan.ProfileRefreshes[0]
	assert.Equal(t, stale.ID, refresh.MemberID)
	assert.Equal(t, util.Some("new-name"), refresh.Name)
	assert.False(t, refresh.Email.IsSet)
}

// Applying a plan and re-planning must converge: the repaired directory
// produces an empty plan.
func TestPlanRepairsConverges(t *testing.T) {
	base := time.Now()
	owner := seedMember("owner", hierarchy.RoleOwner, util.None[uuid.UUID](), base)
	dup := seedMember("dup-owner", hierarchy.RoleOwner, util.None[uuid.UUID](), base.Add(time.Minute))
	orphan := seedMember("orphan", "member", util.None[uuid.UUID](), base.Add(2*time.Minute))

	members := []database.Member{owner, dup, orphan}
	plan, ok := planRepairs(members, owner.AccountID.Val, nil)
	require.True(t, ok)
	require.False(t, plan.isEmpty())

	// Apply the plan in memory the way Reconcile applies it to the database.
	var repaired []database.Member
	for _, m := range members {
		deleted := false
		for _, id := range plan.DuplicateOwnerIDs {
			if m.ID == id {
				deleted = true
			}
		}
		if deleted {
			continue
		}
		for _, id := range plan.OrphanIDs {
			if m.ID == id && !m.ManagerID.IsSet {
				m.ManagerID = util.Some(plan.OwnerSeatID)
			}
		}
		repaired = append(repaired, m)
	}

	second, ok := planRepairs(repaired, owner.AccountID.Val, nil)
	require.True(t, ok)
	assert.Equal(t, plan.OwnerSeatID, second.OwnerSeatID)
	assert.True(t, second.isEmpty())
}
