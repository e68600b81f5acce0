package hierarchy

import (
	"testing"

	"crewdesk/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type directory struct {
	members  []Member
	ids      map[string]uuid.UUID
	accounts map[string]uuid.UUID
}

// seat adds a member to the test directory. manager is the name of an earlier
// seat or "" for a root member. Every seat gets an account unless invited.
func (d *directory) seat(name, role, manager string) {
	id := uuid.New()
	accountID := uuid.New()
	if d.ids == nil {
		d.ids = make(map[string]uuid.UUID)
		d.accounts = make(map[string]uuid.UUID)
	}
	d.ids[name] = id
	d.accounts[name] = accountID

	ref := Root()
	if manager != "" {
		ref = ReportsTo(d.ids[manager])
	}
	d.members = append(d.members, Member{
		ID:        id,
		AccountID: util.Some(accountID),
		Name:      name,
		Role:      role,
		Status:    StatusOffline,
		Manager:   ref,
	})
}

func (d *directory) names(members []Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}

// owner -> {mgr -> {emp1, emp2}, lead -> grad}
func buildTeam() *directory {
	d := &directory{}
	d.seat("owner", RoleOwner, "")
	d.seat("mgr", "Manager", "owner")
	d.seat("emp1", "Employee", "mgr")
	d.seat("emp2", "Employee", "mgr")
	d.seat("lead", "Team Lead", "owner")
	d.seat("grad", "Graduate", "lead")
	return d
}

func TestSubtreeOf(t *testing.T) {
	d := buildTeam()

	t.Run("root subtree covers everyone below in preorder", func(t *testing.T) {
		got := SubtreeOf(d.members, d.ids["owner"])
		assert.Equal(t, []string{"mgr", "emp1", "emp2", "lead", "grad"}, d.names(got))
	})

	t.Run("excludes the root itself and unrelated branches", func(t *testing.T) {
		got := SubtreeOf(d.members, d.ids["mgr"])
		assert.Equal(t, []string{"emp1", "emp2"}, d.names(got))
	})

	t.Run("leaf has an empty subtree", func(t *testing.T) {
		assert.Empty(t, SubtreeOf(d.members, d.ids["emp1"]))
	})

	t.Run("unknown root has an empty subtree", func(t *testing.T) {
		assert.Empty(t, SubtreeOf(d.members, uuid.New()))
	})
}

func TestWouldCreateCycle(t *testing.T) {
	d := buildTeam()

	t.Run("self management is a cycle", func(t *testing.T) {
		for name := range d.ids {
			assert.True(t, WouldCreateCycle(d.members, d.ids[name], ReportsTo(d.ids[name])), name)
		}
	})

	t.Run("root candidate never cycles", func(t *testing.T) {
		for name := range d.ids {
			assert.False(t, WouldCreateCycle(d.members, d.ids[name], Root()), name)
		}
	})

	t.Run("reassigning to a transitive descendant is a cycle", func(t *testing.T) {
		// owner -> mgr -> emp1: moving owner under emp1 closes the loop.
		assert.True(t, WouldCreateCycle(d.members, d.ids["owner"], ReportsTo(d.ids["emp1"])))
		assert.True(t, WouldCreateCycle(d.members, d.ids["mgr"], ReportsTo(d.ids["emp2"])))
	})

	t.Run("lateral and downward moves are fine", func(t *testing.T) {
		assert.False(t, WouldCreateCycle(d.members, d.ids["emp1"], ReportsTo(d.ids["lead"])))
		assert.False(t, WouldCreateCycle(d.members, d.ids["grad"], ReportsTo(d.ids["mgr"])))
		assert.False(t, WouldCreateCycle(d.members, d.ids["emp2"], ReportsTo(d.ids["emp1"])))
	})

	t.Run("walk stops at a dangling manager pointer", func(t *testing.T) {
		corrupt := append([]Member(nil), d.members...)
		stray := Member{ID: uuid.New(), Name: "stray", Manager: ReportsTo(uuid.New())}
		corrupt = append(corrupt, stray)
		assert.False(t, WouldCreateCycle(corrupt, d.ids["owner"], ReportsTo(stray.ID)))
	})

	t.Run("pre-existing cycle in the chain is rejected rather than looping", func(t *testing.T) {
		a := Member{ID: uuid.New(), Name: "a"}
		b := Member{ID: uuid.New(), Name: "b"}
		a.Manager = ReportsTo(b.ID)
		b.Manager = ReportsTo(a.ID)
		outsider := Member{ID: uuid.New(), Name: "outsider", Manager: Root()}
		members := []Member{a, b, outsider}
		assert.True(t, WouldCreateCycle(members, outsider.ID, ReportsTo(a.ID)))
	})
}

func TestEligibleAssignees(t *testing.T) {
	d := buildTeam()

	t.Run("root viewer may assign to everyone", func(t *testing.T) {
		got := EligibleAssignees(d.members, d.accounts["owner"])
		assert.Equal(t, []string{"owner", "mgr", "emp1", "emp2", "lead", "grad"}, d.names(got))
	})

	t.Run("manager gets self plus subtree only", func(t *testing.T) {
		got := EligibleAssignees(d.members, d.accounts["mgr"])
		assert.Equal(t, []string{"mgr", "emp1", "emp2"}, d.names(got))
	})

	t.Run("never includes own manager or siblings", func(t *testing.T) {
		got := d.names(EligibleAssignees(d.members, d.accounts["lead"]))
		assert.NotContains(t, got, "owner")
		assert.NotContains(t, got, "mgr")
		assert.Equal(t, []string{"lead", "grad"}, got)
	})

	t.Run("leaf may only assign to self", func(t *testing.T) {
		got := EligibleAssignees(d.members, d.accounts["emp1"])
		assert.Equal(t, []string{"emp1"}, d.names(got))
	})

	t.Run("unknown viewer fails closed", func(t *testing.T) {
		assert.Empty(t, EligibleAssignees(d.members, uuid.New()))
	})

	t.Run("rootless non-owner is treated as top level until repaired", func(t *testing.T) {
		d := &directory{}
		d.seat("owner", RoleOwner, "")
		d.seat("adrift", "Employee", "")
		got := EligibleAssignees(d.members, d.accounts["adrift"])
		assert.Equal(t, []string{"owner", "adrift"}, d.names(got))
	})

	t.Run("result is a copy, not the input slice", func(t *testing.T) {
		got := EligibleAssignees(d.members, d.accounts["owner"])
		require.NotEmpty(t, got)
		got[0].Name = "mutated"
		assert.Equal(t, "owner", d.members[0].Name)
	})
}

func TestVisibleProjections(t *testing.T) {
	d := buildTeam()

	t.Run("account ids match the visible member set", func(t *testing.T) {
		got := VisibleAccountIDs(d.members, d.accounts["mgr"])
		want := []uuid.UUID{d.accounts["mgr"], d.accounts["emp1"], d.accounts["emp2"]}
		assert.Equal(t, want, got)
	})

	t.Run("invited members are skipped from the account projection", func(t *testing.T) {
		members := append([]Member(nil), d.members...)
		members = append(members, Member{
			ID:      uuid.New(),
			Name:    "invited",
			Role:    "Employee",
			Manager: ReportsTo(d.ids["mgr"]),
		})
		ids := VisibleAccountIDs(members, d.accounts["mgr"])
		assert.Len(t, ids, 3)
		names := VisibleNames(members, d.accounts["mgr"])
		assert.Contains(t, names, "invited")
	})

	t.Run("unknown viewer gets empty projections", func(t *testing.T) {
		assert.Empty(t, VisibleAccountIDs(d.members, uuid.New()))
		assert.Empty(t, VisibleNames(d.members, uuid.New()))
	})
}

// The worked scenario: owner o1, manager m1 with report e1, and orphan e2
// which the maintenance policy re-attaches to o1.
func TestRepairedDirectoryScenario(t *testing.T) {
	d := &directory{}
	d.seat("o1", RoleOwner, "")
	d.seat("m1", "Manager", "o1")
	d.seat("e1", "Employee", "m1")
	d.seat("e2", "Employee", "o1") // after orphan repair

	assert.Equal(t, []string{"m1", "e1", "e2"}, d.names(SubtreeOf(d.members, d.ids["o1"])))
	assert.Equal(t, []string{"m1", "e1"}, d.names(EligibleAssignees(d.members, d.accounts["m1"])))
}
