package task

import (
	"testing"

	"crewdesk/internal/hierarchy"
	"crewdesk/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seat(name string, manager hierarchy.ManagerRef) hierarchy.Member {
	return hierarchy.Member{
		ID:        uuid.New(),
		AccountID: util.Some(uuid.New()),
		Name:      name,
		Role:      "member",
		Manager:   manager,
	}
}

func TestResolveAssignee(t *testing.T) {
	owner := seat("owner", hierarchy.Root())
	owner.Role = hierarchy.RoleOwner
	manager := seat("manager", hierarchy.ReportsTo(owner.ID))
	report := seat("report", hierarchy.ReportsTo(manager.ID))
	peer := seat("peer", hierarchy.ReportsTo(owner.ID))
	invited := hierarchy.Member{
		ID:      uuid.New(),
		Name:    "invited",
		Role:    "member",
		Manager: hierarchy.ReportsTo(manager.ID),
	}
	directory := []hierarchy.Member{owner, manager, report, peer, invited}

	t.Run("defaults to the actor's own seat", func(t *testing.T) {
		assignee, err := resolveAssignee(directory, manager.AccountID.Val, util.None[uuid.UUID]())
		require.NoError(t, err)
		assert.Equal(t, manager.ID, assignee.ID)
	})

	t.Run("manager may assign into their subtree", func(t *testing.T) {
		assignee, err := resolveAssignee(directory, manager.AccountID.Val, util.Some(report.ID))
		require.NoError(t, err)
		assert.Equal(t, report.ID, assignee.ID)
	})

	t.Run("invited members without an account are assignable", func(t *testing.T) {
		assignee, err := resolveAssignee(directory, manager.AccountID.Val, util.Some(invited.ID))
		require.NoError(t, err)
		assert.Equal(t, invited.ID, assignee.ID)
		assert.False(t, assignee.AccountID.IsSet)
	})

	t.Run("lateral assignment is rejected", func(t *testing.T) {
		_, err := resolveAssignee(directory, manager.AccountID.Val, util.Some(peer.ID))
		assert.ErrorIs(t, err, ErrAssigneeNotEligible)
	})

	t.Run("upward assignment is rejected", func(t *testing.T) {
		_, err := resolveAssignee(directory, report.AccountID.Val, util.Some(manager.ID))
		assert.ErrorIs(t, err, ErrAssigneeNotEligible)
	})

	t.Run("owner may assign to anyone", func(t *testing.T) {
		assignee, err := resolveAssignee(directory, owner.AccountID.Val, util.Some(peer.ID))
		require.NoError(t, err)
		assert.Equal(t, peer.ID, assignee.ID)
	})

	t.Run("unknown actor gets nothing", func(t *testing.T) {
		_, err := resolveAssignee(directory, uuid.New(), util.None[uuid.UUID]())
		assert.ErrorIs(t, err, ErrAssigneeNotEligible)
	})
}
