package hierarchy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForest(t *testing.T) {
	t.Run("nests every member under its manager", func(t *testing.T) {
		d := buildTeam()

		forest := Forest(d.members)
		require.Len(t, forest, 1)

		root := forest[0]
		assert.Equal(t, "owner", root.Member.Name)
		require.Len(t, root.Reports, 2)
		assert.Equal(t, "mgr", root.Reports[0].Member.Name)
		assert.Equal(t, []string{"emp1", "emp2"}, []string{
			root.Reports[0].Reports[0].Member.Name,
			root.Reports[0].Reports[1].Member.Name,
		})
		assert.Equal(t, "lead", root.Reports[1].Member.Name)
		require.Len(t, root.Reports[1].Reports, 1)
		assert.Equal(t, "grad", root.Reports[1].Reports[0].Member.Name)
	})

	t.Run("member with a dangling manager surfaces as an extra root", func(t *testing.T) {
		d := buildTeam()
		d.members = append(d.members, Member{
			ID:      uuid.New(),
			Name:    "stray",
			Role:    "Employee",
			Manager: ReportsTo(uuid.New()),
		})

		forest := Forest(d.members)
		require.Len(t, forest, 2)
		assert.Equal(t, "owner", forest[0].Member.Name)
		assert.Equal(t, "stray", forest[1].Member.Name)
	})

	t.Run("empty directory gives an empty chart", func(t *testing.T) {
		assert.Empty(t, Forest(nil))
	})
}
