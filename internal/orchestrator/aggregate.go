package orchestrator

import (
	"time"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
)

// ConfidenceFloor is the overall confidence reported when no specialist
// succeeded. Single definition site; never inline this value.
const ConfidenceFloor = 0.70

// aggregate merges role outputs, conflicts, and resolutions into the final
// result. Overall confidence is the arithmetic mean over successful outputs,
// or ConfidenceFloor when there are none. Any high-severity conflict sends
// the result to human review.
func aggregate(tier analysis.Tier, outputs map[analysis.Role]analysis.RoleOutput,
	conflicts []analysis.Conflict, resolutions []analysis.Resolution, elapsed time.Duration) *analysis.Result {

	confidence := ConfidenceFloor
	var sum float64
	var successes int
	for _, out := range outputs {
		if out.OK {
			sum += out.Confidence
			successes++
		}
	}
	if successes > 0 {
		confidence = sum / float64(successes)
	}

	status := analysis.StatusComplete
	for _, c := range conflicts {
		if c.Severity == analysis.SeverityHigh {
			status = analysis.StatusNeedsReview
			break
		}
	}

	return &analysis.Result{
		Tier:              tier,
		Outputs:           outputs,
		Conflicts:         conflicts,
		Resolutions:       resolutions,
		OverallConfidence: confidence,
		Elapsed:           elapsed,
		Status:            status,
	}
}
