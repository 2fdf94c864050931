package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan_Grouping(t *testing.T) {
	plan := &Plan{Groups: []DataSourceGroup{
		{Members: []int{0, 1}},
		{Members: []int{2}},
	}}

	grouping := plan.Grouping()
	assert.Equal(t, [][]int{{0, 1}, {2}}, grouping)

	// The result is a copy.
	grouping[0][0] = 99
	assert.Equal(t, 0, plan.Groups[0].Members[0])
}

func TestPlan_GroupOf(t *testing.T) {
	plan := &Plan{Groups: []DataSourceGroup{
		{Members: []int{0, 2}},
		{Members: []int{1}},
	}}

	assert.Equal(t, 0, plan.GroupOf(2))
	assert.Equal(t, 1, plan.GroupOf(1))
	assert.Equal(t, -1, plan.GroupOf(5))
}

func TestGroupSignature_Key(t *testing.T) {
	sig := GroupSignature{Source: "db", Table: "t", IDColumn: "id", RAColumn: "ra", DecColumn: "dec", Fingerprint: 0x1f}

	assert.Equal(t, ResourceRef{Source: "db", Table: "t", IDColumn: "id", RAColumn: "ra", DecColumn: "dec"}, sig.Key())
	assert.Equal(t, "db.t#000000000000001f", sig.String())
}
