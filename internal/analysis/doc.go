// Package analysis defines the data model shared by the bill-of-quantities
// analysis pipeline: work items, complexity tiers, specialist roles, role
// outputs, the append-only context chain, detected conflicts, resolutions,
// and the aggregated analysis result.
//
// Everything in this package is a plain value created fresh for a single
// analysis run. Nothing here is mutated after construction; the context
// chain is copy-on-append so concurrently running specialists can share a
// snapshot safely without locks.
package analysis
