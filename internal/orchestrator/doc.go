// Package orchestrator is the public entry point of the analysis pipeline.
// One Analyze call classifies a work item's complexity, selects the
// specialist roles it needs, lays them out into a dependency-ordered plan,
// runs the plan against the configured specialist invoker, detects
// disagreements between the settled outputs, arbitrates them against the
// authority hierarchy, and aggregates everything into a single result.
//
// Data flows strictly forward through those stages; no stage re-invokes an
// earlier one, and every run owns its plan, context chain, and output map
// exclusively. The only error Analyze can return is a planning error, which
// signals a broken static dependency table. Specialist failures and
// unresolvable conflicts degrade the result, never block it.
package orchestrator
