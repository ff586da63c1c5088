package catalog

import (
	"encoding/json"
	"testing"

	"catalog-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func countNodes(nodes []*CategoryNode, seen map[string]int) int {
	n := 0
	for _, node := range nodes {
		seen[node.ID]++
		n += 1 + countNodes(node.Children, seen)
	}
	return n
}

func TestBuildCategoryTree_NestsEveryRowOnce(t *testing.T) {
	rows := []domain.Category{
		{ID: "mouse", Name: "Mice", Slug: "mice", ParentID: ptr("peripherals"), Level: 3},
		{ID: "electronics", Name: "Electronics", Slug: "electronics", Level: 1},
		{ID: "peripherals", Name: "Peripherals", Slug: "peripherals", ParentID: ptr("electronics"), Level: 2},
		{ID: "keyboard", Name: "Keyboards", Slug: "keyboards", ParentID: ptr("peripherals"), Level: 3},
		{ID: "fashion", Name: "Fashion", Slug: "fashion", Level: 1},
	}

	roots := BuildCategoryTree(rows)

	require.Len(t, roots, 2)
	seen := map[string]int{}
	assert.Equal(t, len(rows), countNodes(roots, seen))
	for _, row := range rows {
		assert.Equal(t, 1, seen[row.ID], "category %s must appear exactly once", row.ID)
	}

	electronics := roots[0]
	assert.Equal(t, "electronics", electronics.ID)
	require.Len(t, electronics.Children, 1)
	peripherals := electronics.Children[0]
	require.Len(t, peripherals.Children, 2)
	assert.Equal(t, "mouse", peripherals.Children[0].ID)
	assert.Equal(t, "keyboard", peripherals.Children[1].ID)
}

func TestBuildCategoryTree_OrphansBecomeRoots(t *testing.T) {
	// A level filter drops the parents of every row.
	rows := []domain.Category{
		{ID: "mouse", Name: "Mice", Slug: "mice", ParentID: ptr("peripherals"), Level: 3},
		{ID: "keyboard", Name: "Keyboards", Slug: "keyboards", ParentID: ptr("peripherals"), Level: 3},
	}

	roots := BuildCategoryTree(rows)

	require.Len(t, roots, 2)
	assert.Nil(t, roots[0].Children)
	assert.Nil(t, roots[1].Children)
}

func TestBuildCategoryTree_LeavesSerializeWithoutChildren(t *testing.T) {
	rows := []domain.Category{
		{ID: "a", Name: "A", Slug: "a", Level: 1},
		{ID: "b", Name: "B", Slug: "b", ParentID: ptr("a"), Level: 2},
	}

	raw, err := json.Marshal(BuildCategoryTree(rows))
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"id":"a","name":"A","slug":"a","level":1,"children":[
			{"id":"b","name":"B","slug":"b","parent_id":"a","level":2}
		]}
	]`, string(raw))
}

func TestBuildCategoryTree_Empty(t *testing.T) {
	roots := BuildCategoryTree(nil)

	assert.NotNil(t, roots)
	assert.Empty(t, roots)
}

func TestBuildCategoryTree_CycleTerminates(t *testing.T) {
	rows := []domain.Category{
		{ID: "a", ParentID: ptr("b"), Level: 1},
		{ID: "b", ParentID: ptr("a"), Level: 1},
		{ID: "root", Level: 1},
	}

	roots := BuildCategoryTree(rows)

	require.Len(t, roots, 1)
	assert.Equal(t, "root", roots[0].ID)
}
