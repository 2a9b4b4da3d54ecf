// Package planner turns a selected role set into an ordered execution plan.
// Roles are layered topologically over a static dependency table; a fixed
// group of independent roles is eligible to share one parallel phase, every
// other role gets its own sequential phase.
//
// A cycle or an unknown role in the table is a configuration defect, not a
// runtime condition: planning fails fast and the whole analysis call errors.
package planner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
	"github.com/fyrsmithlabs/boqd/internal/roles"
)

// Planning errors. Both indicate a broken static table, never bad input
// data.
var (
	// ErrUnknownRole indicates a role absent from the dependency table.
	ErrUnknownRole = errors.New("unknown role in dependency table")

	// ErrCyclicDependency indicates a cycle in the dependency table.
	ErrCyclicDependency = errors.New("cyclic role dependency")

	// ErrInvalidPlan indicates the layered plan broke the dependency
	// ordering invariant.
	ErrInvalidPlan = errors.New("invalid execution plan")
)

// PhaseKind distinguishes sequential from parallel phases.
type PhaseKind string

const (
	Sequential PhaseKind = "sequential"
	Parallel   PhaseKind = "parallel"
)

// Phase is one scheduling unit: a single sequential role or a set of roles
// run concurrently.
type Phase struct {
	Kind  PhaseKind       `json:"kind"`
	Roles []analysis.Role `json:"roles"`
}

// Plan is the ordered list of phases for one analysis run.
type Plan struct {
	Phases []Phase `json:"phases"`
}

// Roles returns every planned role in phase order.
func (p Plan) Roles() []analysis.Role {
	var out []analysis.Role
	for _, ph := range p.Phases {
		out = append(out, ph.Roles...)
	}
	return out
}

// PhaseIndex returns the index of the phase containing the role, or -1.
func (p Plan) PhaseIndex(role analysis.Role) int {
	for i, ph := range p.Phases {
		for _, r := range ph.Roles {
			if r == role {
				return i
			}
		}
	}
	return -1
}

// dependencies is the static "must complete before" table. Edges point at
// prerequisites.
var dependencies = map[analysis.Role][]analysis.Role{
	analysis.RoleDocumentValidator: {},
	analysis.RoleStructural:        {analysis.RoleDocumentValidator},
	analysis.RoleMaterials:         {analysis.RoleStructural},
	analysis.RoleStandards:         {},
	analysis.RoleMandatoryRules:    {},
	analysis.RoleCost:              {analysis.RoleStructural, analysis.RoleMaterials},
}

// parallelGroup lists the roles eligible to share one parallel phase once
// their prerequisites have completed.
var parallelGroup = roles.NewSet(
	analysis.RoleStructural,
	analysis.RoleStandards,
	analysis.RoleMandatoryRules,
)

// Dependencies returns a copy of the prerequisite list for a role.
func Dependencies(role analysis.Role) []analysis.Role {
	deps := dependencies[role]
	out := make([]analysis.Role, len(deps))
	copy(out, deps)
	return out
}

// Build lays the selected roles out into phases. Dependencies on roles that
// were not selected for this run are ignored; only same-run ordering is
// enforced.
func Build(selected roles.Set) (Plan, error) {
	depths, err := resolveDepths(selected)
	if err != nil {
		return Plan{}, err
	}

	// Group-eligible roles run together at the deepest depth any of them
	// reached, so a member gated behind a prerequisite drags the whole
	// group after it.
	groupDepth := -1
	var group []analysis.Role
	for role := range selected {
		if !parallelGroup.Has(role) {
			continue
		}
		group = append(group, role)
		if depths[role] > groupDepth {
			groupDepth = depths[role]
		}
	}
	sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })

	// Bucket the remaining roles by depth, each a sequential phase of its own.
	byDepth := map[int][]analysis.Role{}
	for role := range selected {
		if parallelGroup.Has(role) {
			continue
		}
		byDepth[depths[role]] = append(byDepth[depths[role]], role)
	}

	maxDepth := groupDepth
	for d := range byDepth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	var plan Plan
	for d := 0; d <= maxDepth; d++ {
		solo := byDepth[d]
		sort.Slice(solo, func(i, j int) bool { return solo[i] < solo[j] })
		for _, role := range solo {
			plan.Phases = append(plan.Phases, Phase{Kind: Sequential, Roles: []analysis.Role{role}})
		}
		if d == groupDepth && len(group) > 0 {
			kind := Parallel
			if len(group) == 1 {
				kind = Sequential
			}
			plan.Phases = append(plan.Phases, Phase{Kind: kind, Roles: group})
		}
	}

	if err := validate(plan, selected); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// resolveDepths computes each selected role's dependency depth over the
// static table, detecting cycles and unknown roles.
func resolveDepths(selected roles.Set) (map[analysis.Role]int, error) {
	depths := map[analysis.Role]int{}
	visiting := map[analysis.Role]bool{}

	var visit func(role analysis.Role) (int, error)
	visit = func(role analysis.Role) (int, error) {
		if d, ok := depths[role]; ok {
			return d, nil
		}
		if visiting[role] {
			return 0, fmt.Errorf("%w: %s", ErrCyclicDependency, role)
		}
		deps, known := dependencies[role]
		if !known {
			return 0, fmt.Errorf("%w: %s", ErrUnknownRole, role)
		}

		visiting[role] = true
		defer delete(visiting, role)

		depth := 0
		for _, dep := range deps {
			if !selected.Has(dep) {
				continue
			}
			dd, err := visit(dep)
			if err != nil {
				return 0, err
			}
			if dd+1 > depth {
				depth = dd + 1
			}
		}
		depths[role] = depth
		return depth, nil
	}

	for role := range selected {
		if _, err := visit(role); err != nil {
			return nil, err
		}
	}
	return depths, nil
}

// validate checks the plan invariant: every role sits in a strictly later
// phase than each of its selected prerequisites.
func validate(plan Plan, selected roles.Set) error {
	for _, role := range plan.Roles() {
		idx := plan.PhaseIndex(role)
		for _, dep := range dependencies[role] {
			if !selected.Has(dep) {
				continue
			}
			if plan.PhaseIndex(dep) >= idx {
				return fmt.Errorf("%w: %s scheduled before its dependency %s completes",
					ErrInvalidPlan, role, dep)
			}
		}
	}
	return nil
}
