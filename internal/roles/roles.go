// Package roles decides which specialists must examine a work item. The
// policy is a static table keyed by role; selection is additive and order
// independent, so the result is a set.
package roles

import (
	"sort"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
)

// Set is a set of specialist roles.
type Set map[analysis.Role]struct{}

// NewSet builds a set from the given roles.
func NewSet(roles ...analysis.Role) Set {
	s := make(Set, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(role analysis.Role) bool {
	_, ok := s[role]
	return ok
}

// Sorted returns the members in stable lexical order.
func (s Set) Sorted() []analysis.Role {
	out := make([]analysis.Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// policy states when a role is selected. Zero value selects the role at
// every tier with no further condition.
type policy struct {
	// tiers lists the tiers at which the role participates; nil means all.
	tiers []analysis.Tier
	// needsBudget additionally requires a project budget constraint.
	needsBudget bool
}

// policyTable is the single definition of role participation. Adding a role
// means adding a row, not editing selection code.
var policyTable = map[analysis.Role]policy{
	analysis.RoleDocumentValidator: {tiers: []analysis.Tier{analysis.TierComplex, analysis.TierCreative}},
	analysis.RoleStructural:        {tiers: []analysis.Tier{analysis.TierStandard, analysis.TierComplex, analysis.TierCreative}},
	analysis.RoleMaterials:         {tiers: []analysis.Tier{analysis.TierStandard, analysis.TierComplex, analysis.TierCreative}},
	analysis.RoleStandards:         {tiers: []analysis.Tier{analysis.TierComplex, analysis.TierCreative}},
	analysis.RoleMandatoryRules:    {},
	analysis.RoleCost:              {needsBudget: true},
}

// Select returns the set of roles required for the given tier and project
// context. Deterministic for identical inputs; mandatory_rules is always a
// member.
func Select(tier analysis.Tier, item analysis.WorkItem, pctx analysis.ProjectContext) Set {
	_ = item // shape-dependent policies hang off the item; none are defined today

	selected := Set{}
	for role, p := range policyTable {
		if !p.matches(tier, pctx) {
			continue
		}
		selected[role] = struct{}{}
	}
	return selected
}

func (p policy) matches(tier analysis.Tier, pctx analysis.ProjectContext) bool {
	if p.needsBudget && !pctx.HasBudget() {
		return false
	}
	if p.tiers == nil {
		return true
	}
	for _, t := range p.tiers {
		if t == tier {
			return true
		}
	}
	return false
}
