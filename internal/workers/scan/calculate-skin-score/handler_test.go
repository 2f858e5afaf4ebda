// internal/workers/scan/calculate-skin-score/handler_test.go
package calculateskinscore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	cerrors "skinadvisor-workers/internal/common/errors"
	"skinadvisor-workers/internal/common/logger"
	"skinadvisor-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestHandler(t *testing.T) *Handler {
	handler, err := NewHandler(LoadConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)
	return handler
}

func allMetrics(score int) map[string]models.SkinMetric {
	return map[string]models.SkinMetric{
		"tone_uniformity":      {Score: score, Why: "test"},
		"texture_smoothness":   {Score: score, Why: "test"},
		"hydration_appearance": {Score: score, Why: "test"},
		"pore_visibility":      {Score: score, Why: "test"},
		"redness_level":        {Score: score, Why: "test"},
	}
}

func issue(name string, severity int) models.Issue {
	return models.Issue{
		Name:          name,
		Severity:      severity,
		Confidence:    0.9,
		WhyThisResult: "test issue",
		Priority:      models.PrioritySecondary,
	}
}

// ==========================
// Config Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, LoadConfig().Validate())
}

func TestConfig_Validate_BandGap(t *testing.T) {
	cfg := LoadConfig()
	cfg.Bands[2].Min = 61
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_EmptyWeights(t *testing.T) {
	cfg := LoadConfig()
	cfg.MetricWeights = nil
	assert.Error(t, cfg.Validate())
}

func TestNewHandler_BrokenConfigReturnsConfigInvalid(t *testing.T) {
	cfg := LoadConfig()
	cfg.MetricWeights = nil

	_, err := NewHandler(cfg, logger.NewTestLogger(t))
	require.Error(t, err)

	var stdErr *cerrors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, cerrors.ErrCodeConfigInvalid, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

// ==========================
// Base Score Tests
// ==========================

func TestScore_BaseFromMetrics(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	result := scorer.Score(models.Analysis{SkinMetrics: allMetrics(80)})

	assert.InDelta(t, 80.0, result.BaseScore, 0.01)
	assert.Equal(t, models.MethodMetricsBased, result.CalculationMethod)
	assert.Len(t, result.MetricsBreakdown, 5)
}

func TestScore_PartialMetricsRenormalized(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	// Only two metrics present; weights .25 and .20 renormalize to
	// .5555 and .4444: 90*.5555 + 45*.4444 = 70.
	result := scorer.Score(models.Analysis{
		SkinMetrics: map[string]models.SkinMetric{
			"tone_uniformity":      {Score: 90},
			"hydration_appearance": {Score: 45},
		},
	})

	assert.InDelta(t, 70.0, result.BaseScore, 0.01)
	assert.Len(t, result.MetricsBreakdown, 2)
}

func TestScore_NoMetricsUsesFallback(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	result := scorer.Score(models.Analysis{})

	assert.InDelta(t, 75.0, result.BaseScore, 0.01)
	assert.Equal(t, models.MethodIssueBased, result.CalculationMethod)
	assert.Equal(t, 75, result.Score)
}

func TestScore_UnknownMetricIgnored(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	result := scorer.Score(models.Analysis{
		SkinMetrics: map[string]models.SkinMetric{
			"tone_uniformity": {Score: 80},
			"shimmer_index":   {Score: 5},
		},
	})

	assert.InDelta(t, 80.0, result.BaseScore, 0.01)
	assert.Len(t, result.MetricsBreakdown, 1)
}

// ==========================
// Deduction Tests
// ==========================

func TestScore_IssueWeightMatching(t *testing.T) {
	tests := []struct {
		name           string
		issueName      string
		expectedWeight float64
	}{
		{"acne", "acne", 1.4},
		{"breakout phrase", "frequent breakouts", 1.4},
		{"dark spot", "dark spots", 1.1},
		{"redness", "cheek redness", 1.2},
		{"fine lines before wrinkle", "fine lines", 0.9},
		{"pore", "enlarged pores", 1.0},
		{"dullness", "dullness", 0.7},
		{"unmatched", "mystery condition", 1.0},
	}

	scorer := NewScorer(LoadConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expectedWeight, scorer.weightFor(tt.issueName), 0.0001)
		})
	}
}

func TestScore_DeductionFormula(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	// acne sev 5: 5 * 1.4 * 0.12 = 0.84
	result := scorer.Score(models.Analysis{
		SkinMetrics: allMetrics(80),
		Issues:      []models.Issue{issue("acne", 5)},
	})

	require.Len(t, result.Factors, 1)
	assert.InDelta(t, 0.84, result.Factors[0].Deduction, 0.001)
	assert.InDelta(t, 0.84, result.TotalDeduction, 0.001)
}

func TestScore_FactorsTopFiveByDeduction(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	result := scorer.Score(models.Analysis{
		SkinMetrics: allMetrics(80),
		Issues: []models.Issue{
			issue("dullness", 1),
			issue("acne", 8),
			issue("dark spots", 4),
			issue("enlarged pores", 3),
			issue("redness", 5),
			issue("fine lines", 2),
		},
	})

	require.Len(t, result.Factors, 5)
	assert.Equal(t, "acne", result.Factors[0].Issue)
	for i := 1; i < len(result.Factors); i++ {
		assert.GreaterOrEqual(t, result.Factors[i-1].Deduction, result.Factors[i].Deduction)
	}
}

func TestScore_SeverityLabels(t *testing.T) {
	tests := []struct {
		severity int
		label    string
	}{
		{1, "mild"},
		{3, "mild"},
		{4, "moderate"},
		{6, "moderate"},
		{7, "severe"},
		{10, "severe"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.label, severityLabel(tt.severity), "severity %d", tt.severity)
	}
}

// ==========================
// Hard Cap Tests
// ==========================

func TestScore_SevereIssueCapsAt74(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	// Perfect metrics cannot outrun a severe issue.
	result := scorer.Score(models.Analysis{
		SkinMetrics: allMetrics(100),
		Issues:      []models.Issue{issue("acne", 8)},
	})

	assert.Equal(t, 74, result.Score)
	assert.Equal(t, "average", result.Label)
}

func TestScore_HighSeverityCapsAt79(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	result := scorer.Score(models.Analysis{
		SkinMetrics: allMetrics(100),
		Issues:      []models.Issue{issue("mystery condition", 5)},
	})

	assert.LessOrEqual(t, result.Score, 79)
}

func TestScore_CriticalCategoryCapsAt84(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	result := scorer.Score(models.Analysis{
		SkinMetrics: allMetrics(100),
		Issues:      []models.Issue{issue("uneven tone", 3)},
	})

	assert.LessOrEqual(t, result.Score, 84)
}

func TestScore_PaddedUniversalIssuesLandInGood(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	// The normalizer's universal padding for a clean scan: three minor
	// issues over strong metrics. Elite gate holds the result below 85.
	result := scorer.Score(models.Analysis{
		SkinMetrics: allMetrics(90),
		Issues: []models.Issue{
			issue("hydration optimization", 2),
			issue("texture refinement", 2),
			issue("glow enhancement", 1),
		},
	})

	assert.GreaterOrEqual(t, result.Score, 75)
	assert.LessOrEqual(t, result.Score, 84)
	assert.Equal(t, "good", result.Label)
}

func TestApplyHardCaps_EliteBoundary(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	tests := []struct {
		name           string
		score          float64
		maxSeverity    int
		totalDeduction float64
		expected       float64
	}{
		{"deduction below elite limit", 88, 1, 4.9, 88},
		{"deduction at elite limit", 88, 1, 5.0, 84},
		{"severity above elite limit", 88, 2, 0.5, 84},
		{"excellent allowed", 95, 0, 1.9, 95},
		{"deduction at excellent limit", 95, 0, 2.0, 89},
		{"severity blocks excellent", 95, 1, 1.0, 89},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.applyHardCaps(tt.score, nil, tt.maxSeverity, tt.totalDeduction)
			assert.InDelta(t, tt.expected, got, 0.0001)
		})
	}
}

func TestScore_SeverityMonotonicity(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	previous := 101
	for severity := 1; severity <= 10; severity++ {
		result := scorer.Score(models.Analysis{
			SkinMetrics: allMetrics(95),
			Issues:      []models.Issue{issue("acne", severity)},
		})
		assert.LessOrEqual(t, result.Score, previous, "severity %d raised the score", severity)
		previous = result.Score
	}
}

func TestScore_BoundsAlwaysHeld(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	extremes := []models.Analysis{
		{SkinMetrics: allMetrics(0), Issues: []models.Issue{issue("acne", 10), issue("redness", 10), issue("wrinkles", 10)}},
		{SkinMetrics: allMetrics(100)},
		{},
	}

	for i, analysis := range extremes {
		result := scorer.Score(analysis)
		assert.GreaterOrEqual(t, result.Score, 0, "case %d", i)
		assert.LessOrEqual(t, result.Score, 100, "case %d", i)
	}
}

// ==========================
// Band Tests
// ==========================

func TestScore_BandLabels(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	tests := []struct {
		score int
		label string
	}{
		{0, "needs_care"},
		{39, "needs_care"},
		{40, "needs_attention"},
		{59, "needs_attention"},
		{60, "average"},
		{74, "average"},
		{75, "good"},
		{89, "good"},
		{90, "excellent"},
		{100, "excellent"},
	}

	for _, tt := range tests {
		band := scorer.bandFor(tt.score)
		assert.Equal(t, tt.label, band.Label, "score %d", tt.score)
	}
}

// ==========================
// Determinism Tests
// ==========================

func TestScore_Deterministic(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	analysis := models.Analysis{
		SkinType:    "combination",
		SkinMetrics: allMetrics(72),
		Issues: []models.Issue{
			issue("acne", 6),
			issue("dark spots", 3),
			issue("dullness", 2),
		},
	}

	first, err := json.Marshal(scorer.Score(analysis))
	require.NoError(t, err)
	second, err := json.Marshal(scorer.Score(analysis))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// Each run builds a fresh metrics map so the runtime's map iteration order
// varies; the weighted base must not depend on it.
func TestScore_BaseScoreStableAcrossMapOrders(t *testing.T) {
	scorer := NewScorer(LoadConfig())

	build := func() models.Analysis {
		return models.Analysis{
			SkinMetrics: map[string]models.SkinMetric{
				"redness_level":        {Score: 67},
				"tone_uniformity":      {Score: 91},
				"hydration_appearance": {Score: 44},
				"pore_visibility":      {Score: 58},
				"texture_smoothness":   {Score: 73},
			},
			Issues: []models.Issue{issue("acne", 4), issue("dehydration", 3)},
		}
	}

	reference := scorer.Score(build())
	for i := 0; i < 200; i++ {
		assert.Equal(t, reference, scorer.Score(build()))
	}
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Analysis: models.Analysis{
			SkinMetrics: allMetrics(85),
			Issues:      []models.Issue{issue("dullness", 2)},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.GreaterOrEqual(t, output.Score.Score, 0)
	assert.LessOrEqual(t, output.Score.Score, 100)
	assert.NotEmpty(t, output.Score.Label)
}

func TestConvertToStandardError(t *testing.T) {
	known := cerrors.NewConfigInvalidError(TaskType, "broken table")
	assert.Same(t, known, convertToStandardError(known))

	converted := convertToStandardError(stderrors.New("boom"))
	assert.Equal(t, cerrors.ErrorCode("SKIN_SCORE_ERROR"), converted.Code)
	assert.Equal(t, "boom", converted.Details)
	assert.False(t, converted.Retryable)
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkScore(b *testing.B) {
	scorer := NewScorer(LoadConfig())
	analysis := models.Analysis{
		SkinMetrics: allMetrics(75),
		Issues: []models.Issue{
			issue("acne", 5),
			issue("dark spots", 3),
			issue("enlarged pores", 4),
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scorer.Score(analysis)
	}
}
