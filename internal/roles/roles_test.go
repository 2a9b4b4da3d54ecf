package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
)

var allTiers = []analysis.Tier{
	analysis.TierSimple,
	analysis.TierStandard,
	analysis.TierComplex,
	analysis.TierCreative,
}

func TestSelect_MandatoryRulesAlwaysIncluded(t *testing.T) {
	for _, tier := range allTiers {
		t.Run(tier.String(), func(t *testing.T) {
			selected := Select(tier, analysis.WorkItem{}, analysis.ProjectContext{})
			assert.True(t, selected.Has(analysis.RoleMandatoryRules))
		})
	}
}

func TestSelect_SimpleTier(t *testing.T) {
	selected := Select(analysis.TierSimple, analysis.WorkItem{}, analysis.ProjectContext{})

	assert.Equal(t, []analysis.Role{analysis.RoleMandatoryRules}, selected.Sorted())
}

func TestSelect_ComplexWithBudget(t *testing.T) {
	selected := Select(analysis.TierComplex, analysis.WorkItem{},
		analysis.ProjectContext{BudgetConstraint: "150000"})

	require.Len(t, selected, 6)
	for _, role := range analysis.AllRoles() {
		assert.True(t, selected.Has(role), "missing %s", role)
	}
}

func TestSelect_CostRequiresBudget(t *testing.T) {
	for _, tier := range allTiers {
		without := Select(tier, analysis.WorkItem{}, analysis.ProjectContext{})
		assert.False(t, without.Has(analysis.RoleCost), "tier %s", tier)

		with := Select(tier, analysis.WorkItem{}, analysis.ProjectContext{BudgetConstraint: "tight"})
		assert.True(t, with.Has(analysis.RoleCost), "tier %s", tier)
	}
}

func TestSelect_TierPolicy(t *testing.T) {
	tests := []struct {
		role  analysis.Role
		tiers map[analysis.Tier]bool
	}{
		{analysis.RoleDocumentValidator, map[analysis.Tier]bool{
			analysis.TierComplex: true, analysis.TierCreative: true,
		}},
		{analysis.RoleStructural, map[analysis.Tier]bool{
			analysis.TierStandard: true, analysis.TierComplex: true, analysis.TierCreative: true,
		}},
		{analysis.RoleMaterials, map[analysis.Tier]bool{
			analysis.TierStandard: true, analysis.TierComplex: true, analysis.TierCreative: true,
		}},
		{analysis.RoleStandards, map[analysis.Tier]bool{
			analysis.TierComplex: true, analysis.TierCreative: true,
		}},
	}

	for _, tt := range tests {
		for _, tier := range allTiers {
			selected := Select(tier, analysis.WorkItem{}, analysis.ProjectContext{})
			assert.Equal(t, tt.tiers[tier], selected.Has(tt.role),
				"role %s at tier %s", tt.role, tier)
		}
	}
}

func TestSelect_Deterministic(t *testing.T) {
	pctx := analysis.ProjectContext{BudgetConstraint: "90000"}
	first := Select(analysis.TierCreative, analysis.WorkItem{}, pctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Sorted(), Select(analysis.TierCreative, analysis.WorkItem{}, pctx).Sorted())
	}
}

func TestSet(t *testing.T) {
	s := NewSet(analysis.RoleCost, analysis.RoleStructural)

	assert.True(t, s.Has(analysis.RoleCost))
	assert.False(t, s.Has(analysis.RoleStandards))
	assert.Equal(t, []analysis.Role{analysis.RoleCost, analysis.RoleStructural}, s.Sorted())
}
