package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/boqd/internal/analysis"
)

func TestAggregate_MeanConfidence(t *testing.T) {
	outputs := map[analysis.Role]analysis.RoleOutput{
		analysis.RoleStructural:     analysis.Succeed(analysis.RoleStructural, nil, 0.8),
		analysis.RoleMandatoryRules: analysis.Succeed(analysis.RoleMandatoryRules, nil, 1.0),
		analysis.RoleMaterials:      analysis.Fail(analysis.RoleMaterials, "down"),
	}

	result := aggregate(analysis.TierStandard, outputs, nil, nil, time.Second)

	// Failures are excluded from the mean, not averaged as zero.
	assert.InDelta(t, 0.9, result.OverallConfidence, 1e-9)
	assert.Equal(t, analysis.StatusComplete, result.Status)
	assert.Equal(t, time.Second, result.Elapsed)
}

func TestAggregate_NoSuccessesUsesFloor(t *testing.T) {
	outputs := map[analysis.Role]analysis.RoleOutput{
		analysis.RoleMandatoryRules: analysis.Fail(analysis.RoleMandatoryRules, "down"),
	}

	result := aggregate(analysis.TierSimple, outputs, nil, nil, 0)

	assert.Equal(t, ConfidenceFloor, result.OverallConfidence)
	// No successes means no conflicts are possible, so no review either.
	assert.Equal(t, analysis.StatusComplete, result.Status)
}

func TestAggregate_HighSeverityNeedsReview(t *testing.T) {
	conflicts := []analysis.Conflict{
		{Kind: analysis.ConflictStandardsDeviation, Severity: analysis.SeverityMedium},
		{Kind: analysis.ConflictConcreteClassMismatch, Severity: analysis.SeverityHigh},
	}

	result := aggregate(analysis.TierComplex, nil, conflicts, nil, 0)

	assert.Equal(t, analysis.StatusNeedsReview, result.Status)
}

func TestAggregate_MediumSeverityCompletes(t *testing.T) {
	conflicts := []analysis.Conflict{
		{Kind: analysis.ConflictStandardsDeviation, Severity: analysis.SeverityMedium},
	}

	result := aggregate(analysis.TierComplex, nil, conflicts, nil, 0)

	require.NotNil(t, result)
	assert.Equal(t, analysis.StatusComplete, result.Status)
}
