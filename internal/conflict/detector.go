// Package conflict detects disagreements between successful specialist
// outputs and arbitrates them against a fixed five-level authority
// hierarchy: safety, code compliance, durability, practicality, cost.
//
// Detection rules and resolution functions are both registered tables, so a
// new conflict kind is an addition, never an edit to existing branches.
package conflict

import (
	"fmt"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
)

// Rule inspects the successful role outputs for one known disagreement
// pattern. A role recorded as a failure must never contribute to a
// conflict; Detect hands rules a map already filtered down to successes.
type Rule interface {
	// Name identifies the rule in logs.
	Name() string

	// Detect returns the conflicts this rule found, or nil.
	Detect(outputs map[analysis.Role]analysis.RoleOutput) []analysis.Conflict
}

// Detector runs a registered list of rules over role outputs.
type Detector struct {
	rules []Rule
}

// NewDetector creates a detector with the given rules. Use DefaultRules for
// the built-in set.
func NewDetector(rules ...Rule) *Detector {
	return &Detector{rules: rules}
}

// Register appends a rule. Existing rules are never touched.
func (d *Detector) Register(rule Rule) {
	d.rules = append(d.rules, rule)
}

// Rules returns the registered rule names in order.
func (d *Detector) Rules() []string {
	names := make([]string, len(d.rules))
	for i, r := range d.rules {
		names[i] = r.Name()
	}
	return names
}

// Detect runs every rule against the successful outputs and concatenates
// their findings in registration order.
func (d *Detector) Detect(outputs map[analysis.Role]analysis.RoleOutput) []analysis.Conflict {
	successes := make(map[analysis.Role]analysis.RoleOutput, len(outputs))
	for role, out := range outputs {
		if out.OK {
			successes[role] = out
		}
	}

	var conflicts []analysis.Conflict
	for _, rule := range d.rules {
		conflicts = append(conflicts, rule.Detect(successes)...)
	}
	return conflicts
}

// DefaultRules returns the built-in detection rules.
func DefaultRules() []Rule {
	return []Rule{
		fieldMismatchRule{
			name:     "concrete-class-mismatch",
			kind:     analysis.ConflictConcreteClassMismatch,
			severity: analysis.SeverityHigh,
			roleA:    analysis.RoleStructural, fieldA: FieldRequiredClass,
			roleB: analysis.RoleMaterials, fieldB: FieldConcreteClass,
		},
		fieldMismatchRule{
			name:     "exposure-class-mismatch",
			kind:     analysis.ConflictExposureClassMismatch,
			severity: analysis.SeverityMedium,
			roleA:    analysis.RoleStructural, fieldA: FieldExposureClass,
			roleB: analysis.RoleMaterials, fieldB: FieldExposureClass,
		},
		fieldMismatchRule{
			name:     "cost-budget-conflict",
			kind:     analysis.ConflictCostBudget,
			severity: analysis.SeverityMedium,
			roleA:    analysis.RoleStructural, fieldA: FieldRequiredClass,
			roleB: analysis.RoleCost, fieldB: FieldSuggestedClass,
		},
		flagRule{
			name:     "standards-deviation",
			kind:     analysis.ConflictStandardsDeviation,
			severity: analysis.SeverityMedium,
			role:     analysis.RoleStandards,
			field:    FieldComplianceStatus,
			value:    ComplianceDeviations,
		},
		flagRule{
			name:     "standards-violation",
			kind:     analysis.ConflictStandardsViolation,
			severity: analysis.SeverityHigh,
			role:     analysis.RoleStandards,
			field:    FieldComplianceStatus,
			value:    ComplianceViolations,
		},
		missingWorksRule{},
	}
}

// Payload field names the built-in rules inspect. The rest of any payload
// stays opaque to the orchestrator.
const (
	FieldRequiredClass    = "required_class"
	FieldConcreteClass    = "concrete_class"
	FieldExposureClass    = "exposure_class"
	FieldSuggestedClass   = "suggested_class"
	FieldComplianceStatus = "compliance_status"
	FieldMissingWorks     = "missing_works"
)

// Compliance status values reported by the standards specialist.
const (
	ComplianceCompliant  = "compliant"
	ComplianceDeviations = "deviations"
	ComplianceViolations = "violations"
)

// fieldMismatchRule emits a conflict when two roles claim different values
// for a pair of named payload fields. Both roles must have succeeded and
// both fields must be present.
type fieldMismatchRule struct {
	name     string
	kind     analysis.ConflictKind
	severity analysis.Severity
	roleA    analysis.Role
	fieldA   string
	roleB    analysis.Role
	fieldB   string
}

func (r fieldMismatchRule) Name() string { return r.name }

func (r fieldMismatchRule) Detect(outputs map[analysis.Role]analysis.RoleOutput) []analysis.Conflict {
	a, okA := outputs[r.roleA]
	b, okB := outputs[r.roleB]
	if !okA || !okB {
		return nil
	}
	valA, okA := a.Field(r.fieldA)
	valB, okB := b.Field(r.fieldB)
	if !okA || !okB || valA == valB {
		return nil
	}
	return []analysis.Conflict{{
		Kind:     r.kind,
		Roles:    []analysis.Role{r.roleA, r.roleB},
		Evidence: map[analysis.Role]string{r.roleA: valA, r.roleB: valB},
		Severity: r.severity,
	}}
}

// flagRule emits a single-role conflict when a payload field carries a
// flagged value. "Conflict" here means a flagged issue, not a disagreement
// between two roles.
type flagRule struct {
	name     string
	kind     analysis.ConflictKind
	severity analysis.Severity
	role     analysis.Role
	field    string
	value    string
}

func (r flagRule) Name() string { return r.name }

func (r flagRule) Detect(outputs map[analysis.Role]analysis.RoleOutput) []analysis.Conflict {
	out, ok := outputs[r.role]
	if !ok {
		return nil
	}
	val, ok := out.Field(r.field)
	if !ok || val != r.value {
		return nil
	}
	return []analysis.Conflict{{
		Kind:     r.kind,
		Roles:    []analysis.Role{r.role},
		Evidence: map[analysis.Role]string{r.role: val},
		Severity: r.severity,
	}}
}

// missingWorksRule flags mandatory works the rules specialist found absent
// from the bill of quantities.
type missingWorksRule struct{}

func (missingWorksRule) Name() string { return "missing-mandatory-works" }

func (missingWorksRule) Detect(outputs map[analysis.Role]analysis.RoleOutput) []analysis.Conflict {
	out, ok := outputs[analysis.RoleMandatoryRules]
	if !ok {
		return nil
	}
	missing := missingWorks(out)
	if len(missing) == 0 {
		return nil
	}
	return []analysis.Conflict{{
		Kind:     analysis.ConflictMissingMandatoryWorks,
		Roles:    []analysis.Role{analysis.RoleMandatoryRules},
		Evidence: map[analysis.Role]string{analysis.RoleMandatoryRules: fmt.Sprintf("%d missing: %v", len(missing), missing)},
		Severity: analysis.SeverityHigh,
	}}
}

// missingWorks extracts the missing-works list from a payload, tolerating
// both []string and []any shapes after JSON round-trips.
func missingWorks(out analysis.RoleOutput) []string {
	raw, ok := out.Payload[FieldMissingWorks]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return items
	default:
		return nil
	}
}
