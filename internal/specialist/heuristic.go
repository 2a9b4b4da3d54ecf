// Package specialist provides invoker implementations and middleware for
// the analysis executor. Heuristic is a deterministic local rules engine
// useful for offline runs and tests; WithRetry and WithRateLimit wrap any
// invoker, remote ones included, with the retry and throttling policy that
// the orchestrator itself deliberately does not own.
package specialist

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
	"github.com/fyrsmithlabs/boqd/internal/conflict"
)

// concreteClassPattern matches explicit EN 206 strength classes in row
// descriptions, e.g. "C25/30".
var concreteClassPattern = regexp.MustCompile(`C\d{2}/\d{2}`)

// mandatoryWorks maps a description keyword to the mandatory work it
// satisfies. A bill with no row matching a keyword is missing that work.
var mandatoryWorks = map[string]string{
	"site setup":    "site setup and access",
	"waterproofing": "waterproofing of below-grade structures",
	"curing":        "concrete curing",
	"formwork":      "formwork and falsework",
}

// Heuristic is a deterministic, in-process specialist invoker. It derives
// findings for every role from the work item itself, so identical inputs
// always reproduce identical outputs.
type Heuristic struct{}

// NewHeuristic returns the rules-engine invoker.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Invoke produces the payload for one role.
func (h *Heuristic) Invoke(ctx context.Context, role analysis.Role, item analysis.WorkItem,
	pctx analysis.ProjectContext, chain *analysis.ContextChain) (analysis.RoleOutput, error) {

	if err := ctx.Err(); err != nil {
		return analysis.RoleOutput{}, err
	}

	switch role {
	case analysis.RoleDocumentValidator:
		return h.validateDocument(item), nil
	case analysis.RoleStructural:
		return h.assessStructure(item), nil
	case analysis.RoleMaterials:
		return h.assessMaterials(item), nil
	case analysis.RoleStandards:
		return h.checkStandards(item), nil
	case analysis.RoleMandatoryRules:
		return h.checkMandatoryWorks(item), nil
	case analysis.RoleCost:
		return h.estimateCost(item, pctx, chain), nil
	default:
		return analysis.RoleOutput{}, fmt.Errorf("heuristic invoker knows no role %q", role)
	}
}

func (h *Heuristic) validateDocument(item analysis.WorkItem) analysis.RoleOutput {
	var issues []string
	for _, row := range item.Rows {
		if row.Description == "" {
			issues = append(issues, fmt.Sprintf("row %s has no description", row.Position))
		}
		if row.Quantity <= 0 {
			issues = append(issues, fmt.Sprintf("row %s has non-positive quantity", row.Position))
		}
	}
	payload := map[string]any{
		"row_count": len(item.Rows),
		"issues":    issues,
	}
	confidence := 0.95
	if len(issues) > 0 {
		confidence = 0.8
	}
	return analysis.Succeed(analysis.RoleDocumentValidator, payload, confidence)
}

// assessStructure derives the required concrete strength and exposure from
// the kind of elements the rows describe.
func (h *Heuristic) assessStructure(item analysis.WorkItem) analysis.RoleOutput {
	requiredClass := "C25/30"
	exposure := "XC2"
	for _, row := range item.Rows {
		desc := strings.ToLower(row.Description)
		if strings.Contains(desc, "foundation") || strings.Contains(desc, "load-bearing") {
			requiredClass = "C30/37"
		}
		if strings.Contains(desc, "facade") || strings.Contains(desc, "exterior") {
			exposure = "XC4"
		}
		if strings.Contains(desc, "basement") || strings.Contains(desc, "below grade") {
			exposure = "XD1"
		}
	}
	return analysis.Succeed(analysis.RoleStructural, map[string]any{
		conflict.FieldRequiredClass: requiredClass,
		conflict.FieldExposureClass: exposure,
	}, 0.85)
}

// assessMaterials reads the concrete class the bill explicitly specifies,
// falling back to the common default when the rows name none.
func (h *Heuristic) assessMaterials(item analysis.WorkItem) analysis.RoleOutput {
	concreteClass := "C25/30"
	for _, row := range item.Rows {
		if m := concreteClassPattern.FindString(row.Description); m != "" {
			concreteClass = m
			break
		}
	}
	return analysis.Succeed(analysis.RoleMaterials, map[string]any{
		conflict.FieldConcreteClass: concreteClass,
		conflict.FieldExposureClass: "XC2",
	}, 0.8)
}

func (h *Heuristic) checkStandards(item analysis.WorkItem) analysis.RoleOutput {
	status := conflict.ComplianceCompliant
	for _, row := range item.Rows {
		desc := strings.ToLower(row.Description)
		if strings.Contains(desc, "non-standard") || strings.Contains(desc, "deviation") {
			status = conflict.ComplianceDeviations
			break
		}
	}
	return analysis.Succeed(analysis.RoleStandards, map[string]any{
		conflict.FieldComplianceStatus: status,
		"standards":                    []string{"EN 206", "EN 1992-1-1"},
	}, 0.9)
}

func (h *Heuristic) checkMandatoryWorks(item analysis.WorkItem) analysis.RoleOutput {
	var missing []string
	for keyword, work := range mandatoryWorks {
		found := false
		for _, row := range item.Rows {
			if strings.Contains(strings.ToLower(row.Description), keyword) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, work)
		}
	}
	// Single-row items carry one trade; absence of the full mandatory set
	// is expected there, not a finding.
	if len(item.Rows) <= 1 {
		missing = nil
	}
	sort.Strings(missing)
	return analysis.Succeed(analysis.RoleMandatoryRules, map[string]any{
		conflict.FieldMissingWorks: missing,
	}, 0.9)
}

// estimateCost totals the bill and, when the total exceeds a numeric budget
// constraint, suggests dropping one concrete class. The suggestion may
// disagree with the structural requirement; arbitration is the resolver's
// job, not the specialist's.
func (h *Heuristic) estimateCost(item analysis.WorkItem, pctx analysis.ProjectContext,
	chain *analysis.ContextChain) analysis.RoleOutput {

	var total float64
	for _, row := range item.Rows {
		total += row.Quantity * row.UnitPrice
	}

	payload := map[string]any{
		"estimated_total": total,
	}

	var budget float64
	overBudget := false
	if _, err := fmt.Sscanf(pctx.BudgetConstraint, "%f", &budget); err == nil && budget > 0 {
		payload["budget"] = budget
		overBudget = total > budget
	}

	if out, ok := chain.Output(analysis.RoleStructural); ok {
		if required, found := out.Field(conflict.FieldRequiredClass); found {
			suggested := required
			if rank, onScale := conflict.ConcreteClasses.Rank(required); overBudget && onScale && rank > 0 {
				suggested, _ = conflict.ConcreteClasses.ValueAt(rank - 1)
			}
			payload[conflict.FieldSuggestedClass] = suggested
		}
	}
	return analysis.Succeed(analysis.RoleCost, payload, 0.75)
}
