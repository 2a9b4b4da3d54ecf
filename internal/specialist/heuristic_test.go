package specialist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
	"github.com/fyrsmithlabs/boqd/internal/conflict"
)

func invoke(t *testing.T, role analysis.Role, item analysis.WorkItem,
	pctx analysis.ProjectContext, chain *analysis.ContextChain) analysis.RoleOutput {
	t.Helper()
	out, err := NewHeuristic().Invoke(context.Background(), role, item, pctx, chain)
	require.NoError(t, err)
	require.True(t, out.OK)
	return out
}

func TestHeuristic_UnknownRole(t *testing.T) {
	_, err := NewHeuristic().Invoke(context.Background(), analysis.Role("surveyor"),
		analysis.WorkItem{}, analysis.ProjectContext{}, analysis.NewContextChain())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surveyor")
}

func TestHeuristic_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHeuristic().Invoke(ctx, analysis.RoleStandards,
		analysis.WorkItem{}, analysis.ProjectContext{}, analysis.NewContextChain())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeuristic_ValidateDocument(t *testing.T) {
	item := analysis.WorkItem{
		Title: "Slab",
		Rows: []analysis.RowEntry{
			{Position: "1.1", Description: "concrete slab", Quantity: 10, Unit: "m3", UnitPrice: 120},
			{Position: "1.2", Description: "", Quantity: 5, Unit: "m3", UnitPrice: 100},
			{Position: "1.3", Description: "reinforcement", Quantity: 0, Unit: "t", UnitPrice: 900},
		},
	}

	out := invoke(t, analysis.RoleDocumentValidator, item, analysis.ProjectContext{}, analysis.NewContextChain())

	issues, ok := out.Payload["issues"].([]string)
	require.True(t, ok)
	assert.Len(t, issues, 2)
	assert.Equal(t, 3, out.Payload["row_count"])
	assert.InDelta(t, 0.8, out.Confidence, 1e-9)
}

func TestHeuristic_ValidateCleanDocument(t *testing.T) {
	item := analysis.WorkItem{
		Rows: []analysis.RowEntry{
			{Position: "1.1", Description: "concrete slab", Quantity: 10, Unit: "m3", UnitPrice: 120},
		},
	}

	out := invoke(t, analysis.RoleDocumentValidator, item, analysis.ProjectContext{}, analysis.NewContextChain())

	assert.InDelta(t, 0.95, out.Confidence, 1e-9)
}

func TestHeuristic_AssessStructure(t *testing.T) {
	tests := []struct {
		name          string
		description   string
		wantClass     string
		wantExposure  string
	}{
		{"plain slab", "interior concrete slab", "C25/30", "XC2"},
		{"foundation", "strip foundation", "C30/37", "XC2"},
		{"load bearing", "load-bearing wall", "C30/37", "XC2"},
		{"facade", "facade panel", "C25/30", "XC4"},
		{"basement", "basement wall", "C25/30", "XD1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := analysis.WorkItem{Rows: []analysis.RowEntry{{Description: tt.description, Quantity: 1}}}
			out := invoke(t, analysis.RoleStructural, item, analysis.ProjectContext{}, analysis.NewContextChain())

			class, _ := out.Field(conflict.FieldRequiredClass)
			exposure, _ := out.Field(conflict.FieldExposureClass)
			assert.Equal(t, tt.wantClass, class)
			assert.Equal(t, tt.wantExposure, exposure)
		})
	}
}

func TestHeuristic_AssessMaterialsReadsExplicitClass(t *testing.T) {
	item := analysis.WorkItem{
		Rows: []analysis.RowEntry{
			{Description: "formwork", Quantity: 1},
			{Description: "concrete C35/45 for columns", Quantity: 1},
		},
	}

	out := invoke(t, analysis.RoleMaterials, item, analysis.ProjectContext{}, analysis.NewContextChain())

	class, ok := out.Field(conflict.FieldConcreteClass)
	require.True(t, ok)
	assert.Equal(t, "C35/45", class)
}

func TestHeuristic_AssessMaterialsDefault(t *testing.T) {
	item := analysis.WorkItem{Rows: []analysis.RowEntry{{Description: "plain concrete", Quantity: 1}}}

	out := invoke(t, analysis.RoleMaterials, item, analysis.ProjectContext{}, analysis.NewContextChain())

	class, _ := out.Field(conflict.FieldConcreteClass)
	assert.Equal(t, "C25/30", class)
}

func TestHeuristic_CheckStandards(t *testing.T) {
	compliant := analysis.WorkItem{Rows: []analysis.RowEntry{{Description: "concrete per EN 206", Quantity: 1}}}
	out := invoke(t, analysis.RoleStandards, compliant, analysis.ProjectContext{}, analysis.NewContextChain())
	status, _ := out.Field(conflict.FieldComplianceStatus)
	assert.Equal(t, conflict.ComplianceCompliant, status)

	deviating := analysis.WorkItem{Rows: []analysis.RowEntry{{Description: "non-standard mix design", Quantity: 1}}}
	out = invoke(t, analysis.RoleStandards, deviating, analysis.ProjectContext{}, analysis.NewContextChain())
	status, _ = out.Field(conflict.FieldComplianceStatus)
	assert.Equal(t, conflict.ComplianceDeviations, status)
}

func TestHeuristic_MandatoryWorksMissing(t *testing.T) {
	item := analysis.WorkItem{
		Rows: []analysis.RowEntry{
			{Description: "site setup and fencing", Quantity: 1},
			{Description: "formwork for walls", Quantity: 1},
		},
	}

	out := invoke(t, analysis.RoleMandatoryRules, item, analysis.ProjectContext{}, analysis.NewContextChain())

	missing, ok := out.Payload[conflict.FieldMissingWorks].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{
		"waterproofing of below-grade structures",
		"concrete curing",
	}, missing)
}

func TestHeuristic_MandatoryWorksSingleRowExempt(t *testing.T) {
	item := analysis.WorkItem{Rows: []analysis.RowEntry{{Description: "screed", Quantity: 1}}}

	out := invoke(t, analysis.RoleMandatoryRules, item, analysis.ProjectContext{}, analysis.NewContextChain())

	missing, _ := out.Payload[conflict.FieldMissingWorks].([]string)
	assert.Empty(t, missing)
}

func TestHeuristic_EstimateCostWithinBudget(t *testing.T) {
	item := analysis.WorkItem{
		Rows: []analysis.RowEntry{{Description: "foundation concrete", Quantity: 10, UnitPrice: 100}},
	}
	chain := analysis.NewContextChain().With(analysis.Succeed(analysis.RoleStructural, map[string]any{
		conflict.FieldRequiredClass: "C30/37",
	}, 0.85))

	out := invoke(t, analysis.RoleCost, item, analysis.ProjectContext{BudgetConstraint: "5000"}, chain)

	assert.InDelta(t, 1000.0, out.Payload["estimated_total"].(float64), 1e-9)
	suggested, _ := out.Field(conflict.FieldSuggestedClass)
	assert.Equal(t, "C30/37", suggested)
}

func TestHeuristic_EstimateCostOverBudgetSuggestsLowerClass(t *testing.T) {
	item := analysis.WorkItem{
		Rows: []analysis.RowEntry{{Description: "foundation concrete", Quantity: 100, UnitPrice: 100}},
	}
	chain := analysis.NewContextChain().With(analysis.Succeed(analysis.RoleStructural, map[string]any{
		conflict.FieldRequiredClass: "C30/37",
	}, 0.85))

	out := invoke(t, analysis.RoleCost, item, analysis.ProjectContext{BudgetConstraint: "5000"}, chain)

	suggested, ok := out.Field(conflict.FieldSuggestedClass)
	require.True(t, ok)
	assert.Equal(t, "C25/30", suggested)
	assert.InDelta(t, 5000.0, out.Payload["budget"].(float64), 1e-9)
}

func TestHeuristic_EstimateCostNonNumericBudget(t *testing.T) {
	item := analysis.WorkItem{
		Rows: []analysis.RowEntry{{Description: "slab", Quantity: 100, UnitPrice: 100}},
	}

	out := invoke(t, analysis.RoleCost, item,
		analysis.ProjectContext{BudgetConstraint: "tight"}, analysis.NewContextChain())

	_, hasBudget := out.Payload["budget"]
	assert.False(t, hasBudget)
}

func TestHeuristic_Deterministic(t *testing.T) {
	item := analysis.WorkItem{
		Rows: []analysis.RowEntry{
			{Position: "1.1", Description: "basement foundation C30/37", Quantity: 12, UnitPrice: 150},
		},
	}
	chain := analysis.NewContextChain()

	for _, role := range analysis.AllRoles() {
		first, err := NewHeuristic().Invoke(context.Background(), role, item, analysis.ProjectContext{}, chain)
		require.NoError(t, err)
		second, err := NewHeuristic().Invoke(context.Background(), role, item, analysis.ProjectContext{}, chain)
		require.NoError(t, err)
		assert.Equal(t, first, second, "role %s", role)
	}
}
