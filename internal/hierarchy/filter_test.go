package hierarchy

import (
	"testing"

	"crewdesk/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type record struct {
	title   string
	account util.Optional[uuid.UUID]
	name    string
}

func (r record) AssigneeAccount() util.Optional[uuid.UUID] { return r.account }
func (r record) Assignee() string                          { return r.name }

func titles(records []record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.title
	}
	return out
}

func TestFilterVisible(t *testing.T) {
	d := buildTeam()

	items := []record{
		{title: "own", account: util.Some(d.accounts["mgr"]), name: "mgr"},
		{title: "report", account: util.Some(d.accounts["emp1"]), name: "emp1"},
		{title: "sibling", account: util.Some(d.accounts["lead"]), name: "lead"},
		{title: "upward", account: util.Some(d.accounts["owner"]), name: "owner"},
		{title: "legacy-report", name: "emp2"},
		{title: "legacy-foreign", name: "grad"},
		{title: "unassigned"},
	}

	t.Run("root viewer passes everything", func(t *testing.T) {
		got := FilterVisible(d.members, d.accounts["owner"], items)
		assert.Len(t, got, len(items))
	})

	t.Run("manager sees self, subtree and legacy name matches", func(t *testing.T) {
		got := FilterVisible(d.members, d.accounts["mgr"], items)
		assert.Equal(t, []string{"own", "report", "legacy-report"}, titles(got))
	})

	t.Run("identifier match wins even when the name is foreign", func(t *testing.T) {
		mislabelled := []record{{title: "odd", account: util.Some(d.accounts["emp1"]), name: "owner"}}
		got := FilterVisible(d.members, d.accounts["mgr"], mislabelled)
		assert.Equal(t, []string{"odd"}, titles(got))
	})

	t.Run("name fallback never rescues an out-of-scope identifier", func(t *testing.T) {
		mislabelled := []record{{title: "odd", account: util.Some(d.accounts["owner"]), name: "emp1"}}
		got := FilterVisible(d.members, d.accounts["mgr"], mislabelled)
		assert.Empty(t, got)
	})

	t.Run("unknown viewer sees nothing", func(t *testing.T) {
		assert.Empty(t, FilterVisible(d.members, uuid.New(), items))
	})

	t.Run("leaf viewer sees only self-assigned work", func(t *testing.T) {
		got := FilterVisible(d.members, d.accounts["emp1"], items)
		assert.Equal(t, []string{"report"}, titles(got))
	})
}
