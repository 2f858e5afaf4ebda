// internal/workers/scan/build-scan-response/handler_test.go
package buildscanresponse

import (
	"context"
	"encoding/json"
	"testing"

	"skinadvisor-workers/internal/common/logger"
	"skinadvisor-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func testScan(issueCount int) models.ScanRecord {
	issues := make([]models.Issue, 0, issueCount)
	names := []string{"acne", "dark spots", "redness", "dullness", "enlarged pores"}
	for i := 0; i < issueCount; i++ {
		issues = append(issues, models.Issue{
			Name:          names[i%len(names)],
			Severity:      5 - i%3,
			Confidence:    0.8,
			Description:   "visible in the scan",
			WhyThisResult: "detected from surface signals",
			Priority:      models.PrioritySecondary,
		})
	}

	var primary models.Issue
	if len(issues) > 0 {
		primary = issues[0]
	}

	return models.ScanRecord{
		ID: "scan-1",
		Analysis: models.Analysis{
			SkinType: models.SkinTypeCombination,
			SkinMetrics: map[string]models.SkinMetric{
				"tone_uniformity": {Score: 70, Why: "even"},
			},
			Strengths: []models.Strength{
				{Name: "Resilient skin barrier", Description: "no damage", Confidence: 0.7},
				{Name: "Even baseline tone", Description: "consistent", Confidence: 0.7},
				{Name: "Good elasticity", Description: "firm", Confidence: 0.65},
			},
			Issues:         issues,
			PrimaryConcern: primary,
		},
		Score: models.ScoreResult{Score: 72, Label: "average"},
		DietPlan: models.DietPlan{
			EatMore:             []models.FoodItem{{Name: "Salmon", Reason: "omega-3"}},
			Avoid:               []models.FoodItem{{Name: "Refined sugar", Reason: "insulin"}},
			HydrationTip:        "Aim for 2 liters of water spread evenly across the day.",
			SupplementsOptional: []models.FoodItem{{Name: "Zinc", Reason: "healing"}},
		},
		Routine: models.Routine{
			Morning: []models.RoutineStep{{Order: 1, StepName: "Cleanse"}},
			Evening: []models.RoutineStep{{Order: 1, StepName: "Cleanse"}, {Order: 2, StepName: "Treat"}},
		},
	}
}

func testProducts() []models.ProductRecommendation {
	return []models.ProductRecommendation{
		{ProductType: "cleanser", Name: "Gentle Gel Cleanser"},
		{ProductType: "moisturizer", Name: "Barrier Repair Cream"},
	}
}

// ==========================
// Config Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, LoadConfig().Validate())
}

func TestConfig_Validate_EmptyLockedFeatures(t *testing.T) {
	cfg := LoadConfig()
	cfg.LockedFeatures = nil
	assert.Error(t, cfg.Validate())
}

// ==========================
// Plan Routing Tests
// ==========================

func TestIsFullPlan(t *testing.T) {
	tests := []struct {
		plan string
		full bool
	}{
		{"premium", true},
		{"pro", true},
		{"PREMIUM", true},
		{" premium ", true},
		{"free", false},
		{"", false},
		{"trial", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.full, IsFullPlan(tt.plan), "plan %q", tt.plan)
	}
}

// ==========================
// Restricted View Tests
// ==========================

func TestBuildRestricted_IssueCountMatchesPreview(t *testing.T) {
	projector := NewProjector(LoadConfig())

	for _, count := range []int{0, 1, 4, 5} {
		scan := testScan(count)
		view, err := projector.BuildRestricted(models.PlanFree, scan, testProducts())

		require.NoError(t, err, "issues=%d", count)
		assert.Equal(t, count, view.IssueCount)
		assert.Len(t, view.IssuesPreview, count)
	}
}

func TestBuildRestricted_PreviewCarriesOnlyNameAndLocked(t *testing.T) {
	projector := NewProjector(LoadConfig())

	view, err := projector.BuildRestricted(models.PlanFree, testScan(4), testProducts())
	require.NoError(t, err)

	raw, err := json.Marshal(view.IssuesPreview)
	require.NoError(t, err)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 4)

	for _, entry := range entries {
		assert.Equal(t, true, entry["locked"])
		assert.NotEmpty(t, entry["name"])
		assert.NotContains(t, entry, "severity")
		assert.NotContains(t, entry, "description")
		assert.NotContains(t, entry, "confidence")
	}
}

func TestBuildRestricted_NoFullTierCollections(t *testing.T) {
	projector := NewProjector(LoadConfig())

	view, err := projector.BuildRestricted(models.PlanFree, testScan(3), testProducts())
	require.NoError(t, err)

	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var serialized map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &serialized))

	assert.NotContains(t, serialized, "diet_recommendations")
	assert.NotContains(t, serialized, "routine")
	assert.NotContains(t, serialized, "products")
	assert.NotContains(t, serialized, "skin_metrics")
	assert.NotContains(t, serialized, "issues")
}

func TestBuildRestricted_StrengthsCappedAtTwo(t *testing.T) {
	projector := NewProjector(LoadConfig())

	view, err := projector.BuildRestricted(models.PlanFree, testScan(3), nil)
	require.NoError(t, err)

	require.Len(t, view.Strengths, 2)
	assert.Equal(t, "Resilient skin barrier", view.Strengths[0].Name)
	assert.Equal(t, "Even baseline tone", view.Strengths[1].Name)
}

func TestBuildRestricted_PreviewCounts(t *testing.T) {
	projector := NewProjector(LoadConfig())

	view, err := projector.BuildRestricted(models.PlanFree, testScan(3), testProducts())
	require.NoError(t, err)

	assert.Equal(t, 3, view.PreviewCounts.RoutineSteps)
	assert.Equal(t, 3, view.PreviewCounts.DietItems)
	assert.Equal(t, 2, view.PreviewCounts.Products)
}

func TestBuildRestricted_LockedFeaturesListed(t *testing.T) {
	projector := NewProjector(LoadConfig())

	view, err := projector.BuildRestricted(models.PlanFree, testScan(2), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"detailed_issue_analysis",
		"skin_metrics_breakdown",
		"personalized_routine",
		"diet_recommendations",
		"product_recommendations",
		"progress_tracking",
	}, view.LockedFeatures)
}

func TestBuildRestricted_PrimaryConcernPreview(t *testing.T) {
	projector := NewProjector(LoadConfig())

	view, err := projector.BuildRestricted(models.PlanFree, testScan(3), nil)
	require.NoError(t, err)

	assert.Equal(t, "acne", view.PrimaryConcern.Name)
	assert.Equal(t, "detected from surface signals", view.PrimaryConcern.WhyThisResult)
}

// ==========================
// Full View Tests
// ==========================

func TestBuildFull_Passthrough(t *testing.T) {
	projector := NewProjector(LoadConfig())
	scan := testScan(4)
	products := testProducts()

	view := projector.BuildFull(models.PlanPremium, scan, products)

	assert.False(t, view.Locked)
	assert.True(t, view.ProgressTrackingEnabled)
	assert.Equal(t, scan.Analysis, view.Analysis)
	assert.Equal(t, scan.Score, view.Score)
	assert.Equal(t, scan.DietPlan, view.DietRecommendations)
	assert.Equal(t, scan.Routine, view.Routine)
	assert.Equal(t, products, view.Products)
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute_FreeGetsRestricted(t *testing.T) {
	handler, err := NewHandler(LoadConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)

	scan := testScan(4)
	output, err := handler.Execute(context.Background(), &Input{
		UserPlan: models.PlanFree,
		ScanID:   scan.ID,
		Analysis: scan.Analysis,
		Score:    scan.Score,
		DietPlan: scan.DietPlan,
		Routine:  scan.Routine,
		Products: testProducts(),
	})

	require.NoError(t, err)
	assert.True(t, output.Locked)

	view, ok := output.ScanResponse.(models.RestrictedView)
	require.True(t, ok)
	assert.Equal(t, 4, view.IssueCount)
	assert.Len(t, view.IssuesPreview, 4)
}

func TestHandler_Execute_PremiumGetsFull(t *testing.T) {
	handler, err := NewHandler(LoadConfig(), logger.NewTestLogger(t))
	require.NoError(t, err)

	scan := testScan(2)
	output, err := handler.Execute(context.Background(), &Input{
		UserPlan: models.PlanPremium,
		ScanID:   scan.ID,
		Analysis: scan.Analysis,
		Score:    scan.Score,
		DietPlan: scan.DietPlan,
		Routine:  scan.Routine,
	})

	require.NoError(t, err)
	assert.False(t, output.Locked)

	view, ok := output.ScanResponse.(models.FullView)
	require.True(t, ok)
	assert.True(t, view.ProgressTrackingEnabled)
	assert.Len(t, view.Analysis.Issues, 2)
}

// ==========================
// Determinism Tests
// ==========================

func TestProjection_Deterministic(t *testing.T) {
	projector := NewProjector(LoadConfig())
	scan := testScan(3)

	v1, err := projector.BuildRestricted(models.PlanFree, scan, nil)
	require.NoError(t, err)
	v2, err := projector.BuildRestricted(models.PlanFree, scan, nil)
	require.NoError(t, err)

	b1, err := json.Marshal(v1)
	require.NoError(t, err)
	b2, err := json.Marshal(v2)
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
}
