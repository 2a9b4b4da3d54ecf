package analysis

import (
	"time"
)

// RowEntry is a single bill-of-quantities row.
type RowEntry struct {
	Position    string  `json:"position" yaml:"position"`
	Description string  `json:"description" yaml:"description"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	Unit        string  `json:"unit" yaml:"unit"`
	UnitPrice   float64 `json:"unit_price,omitempty" yaml:"unit_price"`
}

// WorkItem is one unit of work submitted for analysis: a titled block of
// bill-of-quantities rows plus free-form context fields. It is immutable
// input to a single analysis run.
type WorkItem struct {
	Title   string         `json:"title" yaml:"title"`
	Rows    []RowEntry     `json:"rows" yaml:"rows"`
	Context map[string]any `json:"context,omitempty" yaml:"context"`
}

// ProjectContext carries project-level information shared by every work
// item of a project. A non-empty BudgetConstraint is what pulls the cost
// specialist into the role set.
type ProjectContext struct {
	Name             string         `json:"name,omitempty" yaml:"name"`
	BudgetConstraint string         `json:"budget_constraint,omitempty" yaml:"budget_constraint"`
	Fields           map[string]any `json:"fields,omitempty" yaml:"fields"`
}

// HasBudget reports whether a budget constraint is present.
func (c ProjectContext) HasBudget() bool {
	return c.BudgetConstraint != ""
}

// Tier is a complexity tier, ordered by required analysis rigor.
type Tier int

const (
	TierSimple Tier = iota
	TierStandard
	TierComplex
	TierCreative
)

// String returns the lowercase tier name.
func (t Tier) String() string {
	switch t {
	case TierSimple:
		return "simple"
	case TierStandard:
		return "standard"
	case TierComplex:
		return "complex"
	case TierCreative:
		return "creative"
	default:
		return "unknown"
	}
}

// Role names a specialist capability. Roles are data: invocation policy,
// dependencies, and resolution authority are looked up per role, never
// branched on ad hoc.
type Role string

const (
	RoleDocumentValidator Role = "document_validator"
	RoleStructural        Role = "structural"
	RoleMaterials         Role = "materials"
	RoleStandards         Role = "standards"
	RoleMandatoryRules    Role = "mandatory_rules"
	RoleCost              Role = "cost"
)

// AllRoles returns every known role in a stable order.
func AllRoles() []Role {
	return []Role{
		RoleDocumentValidator,
		RoleStructural,
		RoleMaterials,
		RoleStandards,
		RoleMandatoryRules,
		RoleCost,
	}
}

// RoleOutput is the settled outcome of one specialist invocation, either a
// success carrying a payload and confidence or a failure carrying a reason.
// Use Succeed and Fail; a zero RoleOutput is not meaningful.
type RoleOutput struct {
	Role       Role           `json:"role"`
	OK         bool           `json:"ok"`
	Payload    map[string]any `json:"payload,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	FailReason string         `json:"fail_reason,omitempty"`
}

// Succeed builds a successful output. Confidence is clamped to [0, 1].
func Succeed(role Role, payload map[string]any, confidence float64) RoleOutput {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return RoleOutput{Role: role, OK: true, Payload: payload, Confidence: confidence}
}

// Fail builds a failed output. A failed role never carries a payload.
func Fail(role Role, reason string) RoleOutput {
	return RoleOutput{Role: role, FailReason: reason}
}

// Field returns the named payload field as a string. The second return is
// false when the output failed, the field is absent, or it is not a string.
func (o RoleOutput) Field(name string) (string, bool) {
	if !o.OK {
		return "", false
	}
	v, ok := o.Payload[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Severity ranks how serious a detected conflict is. High severity sends
// the whole result to human review.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ConflictKind names a detectable disagreement or flagged issue.
type ConflictKind string

const (
	ConflictConcreteClassMismatch ConflictKind = "concrete_class_mismatch"
	ConflictExposureClassMismatch ConflictKind = "exposure_class_mismatch"
	ConflictStandardsDeviation    ConflictKind = "standards_deviation"
	ConflictStandardsViolation    ConflictKind = "standards_violation"
	ConflictCostBudget            ConflictKind = "cost_budget_conflict"
	ConflictMissingMandatoryWorks ConflictKind = "missing_mandatory_works"
)

// Conflict is a detected disagreement between successful role outputs, or a
// single-role flagged issue. Evidence maps each involved role to the value
// it claimed.
type Conflict struct {
	Kind     ConflictKind    `json:"kind"`
	Roles    []Role          `json:"roles"`
	Evidence map[Role]string `json:"evidence,omitempty"`
	Severity Severity        `json:"severity"`
}

// HierarchyLevel ranks resolution authority, 1 (safety) through 5 (cost).
// A lower level always prevails.
type HierarchyLevel int

const (
	LevelSafety HierarchyLevel = iota + 1
	LevelCompliance
	LevelDurability
	LevelPracticality
	LevelCost
)

// String returns the level name used in resolution reasoning.
func (l HierarchyLevel) String() string {
	switch l {
	case LevelSafety:
		return "safety"
	case LevelCompliance:
		return "code compliance"
	case LevelDurability:
		return "durability"
	case LevelPracticality:
		return "practicality"
	case LevelCost:
		return "cost"
	default:
		return "unknown"
	}
}

// Resolution is the arbitrated decision for one conflict. Decision is
// machine-usable; Reasoning is the human-readable trace and always names
// the hierarchy level that applied. Unresolved resolutions carry no
// decision and always require human review.
type Resolution struct {
	Kind                ConflictKind   `json:"kind"`
	Decision            string         `json:"decision,omitempty"`
	Reasoning           string         `json:"reasoning"`
	Authority           []Role         `json:"authority,omitempty"`
	Level               HierarchyLevel `json:"hierarchy_level"`
	Confidence          float64        `json:"confidence"`
	RequiresHumanReview bool           `json:"requires_human_review"`
	Unresolved          bool           `json:"unresolved,omitempty"`
}

// Status is the final disposition of an analysis run.
type Status string

const (
	StatusComplete    Status = "complete"
	StatusNeedsReview Status = "needs_review"
)

// Result aggregates one analysis run: tier, per-role outputs, detected
// conflicts with their resolutions, and an overall confidence score.
type Result struct {
	RunID             string              `json:"run_id"`
	Tier              Tier                `json:"tier"`
	Outputs           map[Role]RoleOutput `json:"outputs"`
	Conflicts         []Conflict          `json:"conflicts,omitempty"`
	Resolutions       []Resolution        `json:"resolutions,omitempty"`
	OverallConfidence float64             `json:"overall_confidence"`
	Elapsed           time.Duration       `json:"elapsed"`
	Status            Status              `json:"status"`
}
