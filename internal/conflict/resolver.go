package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
)

// Resolution confidence constants. Scale-based arbitration is mechanical
// but depends on both claims being on the scale; rule-mandated outcomes are
// certain.
const (
	scaleResolutionConfidence = 0.9
	ruleResolutionConfidence  = 1.0
	unresolvedConfidence      = 0.0
)

// ResolveFunc produces the resolution for one conflict kind. Funcs must be
// pure: same conflict and outputs, same resolution.
type ResolveFunc func(c analysis.Conflict, outputs map[analysis.Role]analysis.RoleOutput) analysis.Resolution

// Resolver dispatches conflicts to per-kind resolution functions through a
// lookup table. Kinds without a registered function resolve to unresolved
// with human review, never to a silent guess.
type Resolver struct {
	funcs map[analysis.ConflictKind]ResolveFunc
}

// NewResolver creates a resolver with the built-in rule set.
func NewResolver() *Resolver {
	r := &Resolver{funcs: map[analysis.ConflictKind]ResolveFunc{}}
	r.Register(analysis.ConflictConcreteClassMismatch, resolveByScale(ConcreteClasses))
	r.Register(analysis.ConflictExposureClassMismatch, resolveByScale(ExposureClasses))
	r.Register(analysis.ConflictStandardsDeviation, resolveRemediate)
	r.Register(analysis.ConflictStandardsViolation, resolveRemediate)
	r.Register(analysis.ConflictCostBudget, resolveCostBudget)
	r.Register(analysis.ConflictMissingMandatoryWorks, resolveMissingWorks)
	return r
}

// Register installs the resolution function for a kind. Adding a kind never
// touches existing functions.
func (r *Resolver) Register(kind analysis.ConflictKind, fn ResolveFunc) {
	r.funcs[kind] = fn
}

// Resolve arbitrates a single conflict.
func (r *Resolver) Resolve(c analysis.Conflict, outputs map[analysis.Role]analysis.RoleOutput) analysis.Resolution {
	fn, ok := r.funcs[c.Kind]
	if !ok {
		return unresolved(c, fmt.Sprintf("no resolution rule registered for conflict kind %q", c.Kind))
	}
	return fn(c, outputs)
}

// ResolveAll arbitrates every conflict in order.
func (r *Resolver) ResolveAll(conflicts []analysis.Conflict, outputs map[analysis.Role]analysis.RoleOutput) []analysis.Resolution {
	if len(conflicts) == 0 {
		return nil
	}
	resolutions := make([]analysis.Resolution, len(conflicts))
	for i, c := range conflicts {
		resolutions[i] = r.Resolve(c, outputs)
	}
	return resolutions
}

// resolveByScale arbitrates a two-role mismatch over an ordered scale:
// the stricter requirement wins. A claim off the scale cannot be ranked and
// goes to a human.
func resolveByScale(scale Scale) ResolveFunc {
	return func(c analysis.Conflict, _ map[analysis.Role]analysis.RoleOutput) analysis.Resolution {
		claims := evidenceInRoleOrder(c)
		if len(claims) < 2 {
			return unresolved(c, fmt.Sprintf("%s mismatch needs two claims, got %d", scale.Name(), len(claims)))
		}

		winner, ok := scale.Stricter(claims[0].value, claims[1].value)
		if !ok {
			return unresolved(c, fmt.Sprintf(
				"cannot rank %s claims %q vs %q: value outside the %s scale",
				scale.Name(), claims[0].value, claims[1].value, scale.Name()))
		}

		level := analysis.LevelSafety
		if c.Kind == analysis.ConflictExposureClassMismatch {
			level = analysis.LevelDurability
		}

		winningRoles := rolesClaiming(c, winner)
		return analysis.Resolution{
			Kind:      c.Kind,
			Decision:  winner,
			Authority: winningRoles,
			Level:     level,
			Reasoning: fmt.Sprintf(
				"%s claims %s=%q, %s claims %s=%q; the stricter requirement %q prevails under hierarchy level %d (%s)",
				claims[0].role, scale.Name(), claims[0].value,
				claims[1].role, scale.Name(), claims[1].value,
				winner, level, level),
			Confidence: scaleResolutionConfidence,
		}
	}
}

// resolveRemediate handles standards deviations and violations: the
// decision is always to remediate, the flagging role is the authority, and
// a human applies the fix even though the decision itself is automatic.
func resolveRemediate(c analysis.Conflict, _ map[analysis.Role]analysis.RoleOutput) analysis.Resolution {
	return analysis.Resolution{
		Kind:      c.Kind,
		Decision:  "remediate",
		Authority: c.Roles,
		Level:     analysis.LevelCompliance,
		Reasoning: fmt.Sprintf(
			"standards finding %q reported by %v must be remediated under hierarchy level %d (%s); remediation itself requires human action",
			evidenceSummary(c), c.Roles, analysis.LevelCompliance, analysis.LevelCompliance),
		Confidence:          ruleResolutionConfidence,
		RequiresHumanReview: true,
	}
}

// resolveCostBudget arbitrates cost pressure against a safety-bearing
// requirement. Cost sits at hierarchy level 5 and can never override levels
// 1 through 4; the structural claim stands untouched and the cost claim is
// demoted to an optimization note.
func resolveCostBudget(c analysis.Conflict, outputs map[analysis.Role]analysis.RoleOutput) analysis.Resolution {
	structuralClaim, ok := c.Evidence[analysis.RoleStructural]
	if !ok {
		if out, found := outputs[analysis.RoleStructural]; found {
			structuralClaim, ok = out.Field(FieldRequiredClass)
		}
	}
	if !ok {
		return unresolved(c, "cost conflict without a structural claim to uphold")
	}

	costClaim := c.Evidence[analysis.RoleCost]
	return analysis.Resolution{
		Kind:      c.Kind,
		Decision:  structuralClaim,
		Authority: []analysis.Role{analysis.RoleStructural},
		Level:     analysis.LevelSafety,
		Reasoning: fmt.Sprintf(
			"cost specialist suggests %q but the structural requirement %q carries hierarchy level %d (%s), which level %d (%s) can never override; "+
				"consider optimizing elsewhere: alternative suppliers, phasing, or quantity review",
			costClaim, structuralClaim,
			analysis.LevelSafety, analysis.LevelSafety,
			analysis.LevelCost, analysis.LevelCost),
		Confidence: ruleResolutionConfidence,
	}
}

// resolveMissingWorks directs the missing mandatory items to be added, on
// the authority of the detecting role.
func resolveMissingWorks(c analysis.Conflict, _ map[analysis.Role]analysis.RoleOutput) analysis.Resolution {
	return analysis.Resolution{
		Kind:      c.Kind,
		Decision:  "add_missing_works",
		Authority: c.Roles,
		Level:     analysis.LevelCompliance,
		Reasoning: fmt.Sprintf(
			"mandatory works reported absent (%s) must be added under hierarchy level %d (%s)",
			evidenceSummary(c), analysis.LevelCompliance, analysis.LevelCompliance),
		Confidence:          ruleResolutionConfidence,
		RequiresHumanReview: true,
	}
}

func unresolved(c analysis.Conflict, why string) analysis.Resolution {
	return analysis.Resolution{
		Kind:                c.Kind,
		Reasoning:           why,
		Confidence:          unresolvedConfidence,
		RequiresHumanReview: true,
		Unresolved:          true,
	}
}

type claim struct {
	role  analysis.Role
	value string
}

// evidenceInRoleOrder returns the conflict's claims ordered by the
// conflict's involved-role list, so reasoning strings are deterministic.
func evidenceInRoleOrder(c analysis.Conflict) []claim {
	claims := make([]claim, 0, len(c.Evidence))
	for _, role := range c.Roles {
		if v, ok := c.Evidence[role]; ok {
			claims = append(claims, claim{role: role, value: v})
		}
	}
	return claims
}

func rolesClaiming(c analysis.Conflict, value string) []analysis.Role {
	var out []analysis.Role
	for _, role := range c.Roles {
		if c.Evidence[role] == value {
			out = append(out, role)
		}
	}
	return out
}

func evidenceSummary(c analysis.Conflict) string {
	parts := make([]string, 0, len(c.Evidence))
	for _, cl := range evidenceInRoleOrder(c) {
		parts = append(parts, fmt.Sprintf("%s=%s", cl.role, cl.value))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
