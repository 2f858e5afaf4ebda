// internal/workers/scan/normalize-analysis/service.go
package normalizeanalysis

import (
	"sort"
	"strings"

	"skinadvisor-workers/internal/models"
)

// Normalizer turns an untrusted vision report into a canonical Analysis. It
// never fails: every malformed field is replaced with a documented default.
type Normalizer struct {
	cfg *Config
}

func NewNormalizer(cfg *Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

var validSkinTypes = map[string]bool{
	models.SkinTypeOily:        true,
	models.SkinTypeDry:         true,
	models.SkinTypeCombination: true,
	models.SkinTypeNormal:      true,
	models.SkinTypeSensitive:   true,
}

var validPriorities = map[string]bool{
	models.PriorityPrimary:   true,
	models.PrioritySecondary: true,
	models.PriorityMinor:     true,
}

var priorityRank = map[string]int{
	models.PriorityPrimary:   0,
	models.PrioritySecondary: 1,
	models.PriorityMinor:     2,
}

// Normalize is a pure function of raw and the rule tables.
func (n *Normalizer) Normalize(raw models.RawModelOutput) models.Analysis {
	analysis := models.Analysis{
		SkinType:           n.normalizeSkinType(raw["skin_type"]),
		SkinTypeConfidence: n.normalizeConfidence(raw["skin_type_confidence"]),
		SkinMetrics:        n.normalizeMetrics(raw["skin_metrics"]),
		Strengths:          n.normalizeStrengths(raw["strengths"]),
		Issues:             n.normalizeIssues(raw["issues"]),
		Recommendations:    n.normalizeRecommendations(raw["recommendations"]),
	}

	analysis.PrimaryConcern = n.resolvePrimaryConcern(raw["primary_concern"], analysis.Issues)

	return analysis
}

func (n *Normalizer) normalizeSkinType(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return n.cfg.DefaultSkinType
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if !validSkinTypes[s] {
		return n.cfg.DefaultSkinType
	}
	return s
}

func (n *Normalizer) normalizeConfidence(v interface{}) float64 {
	f, ok := asFloat(v)
	if !ok {
		return n.cfg.DefaultConfidence
	}
	return clampFloat(f, 0, 1)
}

func (n *Normalizer) normalizeMetrics(v interface{}) map[string]models.SkinMetric {
	rawMetrics, _ := v.(map[string]interface{})

	metrics := make(map[string]models.SkinMetric, len(RequiredMetrics))
	for _, name := range RequiredMetrics {
		def := n.cfg.MetricDefaults[name]

		entry, ok := rawMetrics[name].(map[string]interface{})
		if !ok {
			metrics[name] = def
			continue
		}

		score, ok := asFloat(entry["score"])
		if !ok {
			metrics[name] = def
			continue
		}

		why, _ := entry["why"].(string)
		if strings.TrimSpace(why) == "" {
			why = def.Why
		}

		metrics[name] = models.SkinMetric{
			Score: int(clampFloat(score, 0, 100) + 0.5),
			Why:   why,
		}
	}

	return metrics
}

func (n *Normalizer) normalizeStrengths(v interface{}) []models.Strength {
	items, _ := v.([]interface{})

	strengths := make([]models.Strength, 0, n.cfg.MaxStrengths)
	seen := map[string]bool{}

	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}

		desc, _ := entry["description"].(string)
		conf, ok := asFloat(entry["confidence"])
		if !ok {
			conf = n.cfg.DefaultConfidence
		}

		strengths = append(strengths, models.Strength{
			Name:        name,
			Description: desc,
			Confidence:  clampFloat(conf, 0, 1),
		})
		seen[strings.ToLower(name)] = true

		if len(strengths) >= n.cfg.MaxStrengths {
			break
		}
	}

	// Pad from the catalog until the minimum is met.
	for _, def := range n.cfg.StrengthCatalog {
		if len(strengths) >= n.cfg.MinStrengths {
			break
		}
		if seen[strings.ToLower(def.Name)] {
			continue
		}
		strengths = append(strengths, def)
		seen[strings.ToLower(def.Name)] = true
	}

	return strengths
}

func (n *Normalizer) normalizeIssues(v interface{}) []models.Issue {
	items, _ := v.([]interface{})

	issues := make([]models.Issue, 0, len(items))
	seen := map[string]bool{}

	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		issue, ok := n.normalizeIssue(entry)
		if !ok {
			continue
		}
		key := strings.ToLower(issue.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		issues = append(issues, issue)
	}

	// Minimum-issue guarantee: pad from the universal catalog, in order,
	// skipping duplicate names, until MinIssues or catalog exhaustion.
	for _, universal := range n.cfg.UniversalIssues {
		if len(issues) >= n.cfg.MinIssues {
			break
		}
		key := strings.ToLower(universal.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		issues = append(issues, universal)
	}

	sortIssues(issues)

	return issues
}

func (n *Normalizer) normalizeIssue(entry map[string]interface{}) (models.Issue, bool) {
	name, _ := entry["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Issue{}, false
	}

	conf, ok := asFloat(entry["confidence"])
	if !ok {
		conf = n.cfg.DefaultConfidence
	}
	if conf < n.cfg.ConfidenceFloor {
		return models.Issue{}, false
	}
	conf = clampFloat(conf, n.cfg.ConfidenceFloor, 1)

	severity := n.cfg.SeverityMin
	if s, ok := asFloat(entry["severity"]); ok {
		severity = int(clampFloat(s, float64(n.cfg.SeverityMin), float64(n.cfg.SeverityMax)) + 0.5)
	}

	priority, _ := entry["priority"].(string)
	priority = strings.ToLower(strings.TrimSpace(priority))
	if !validPriorities[priority] {
		priority = models.PrioritySecondary
	}

	desc, _ := entry["description"].(string)

	why, _ := entry["why_this_result"].(string)
	if len(strings.TrimSpace(why)) < 10 {
		why = n.cfg.SynthesizedWhy
	}

	return models.Issue{
		Name:          strings.ToLower(name),
		Severity:      severity,
		Confidence:    conf,
		Description:   desc,
		WhyThisResult: why,
		Priority:      priority,
	}, true
}

func (n *Normalizer) resolvePrimaryConcern(v interface{}, issues []models.Issue) models.Issue {
	var primary models.Issue
	if len(issues) > 0 {
		primary = issues[0]
	}

	// An AI-supplied concern overrides only when it names something.
	if entry, ok := v.(map[string]interface{}); ok {
		if override, ok := n.normalizeIssue(entry); ok {
			return override
		}
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		name := strings.ToLower(strings.TrimSpace(s))
		for _, issue := range issues {
			if issue.Name == name {
				return issue
			}
		}
	}

	return primary
}

func (n *Normalizer) normalizeRecommendations(v interface{}) []string {
	items, _ := v.([]interface{})

	recs := make([]string, 0, n.cfg.MaxRecommendations)
	for _, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		recs = append(recs, strings.TrimSpace(s))
		if len(recs) >= n.cfg.MaxRecommendations {
			break
		}
	}

	if len(recs) == 0 {
		recs = append(recs, n.cfg.DefaultRecommendations...)
	}

	return recs
}

// sortIssues orders by severity desc, then priority rank asc, then name asc.
// The name tiebreak keeps the ordering total so repeated runs are identical.
func sortIssues(issues []models.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity > issues[j].Severity
		}
		ri, rj := priorityRank[issues[i].Priority], priorityRank[issues[j].Priority]
		if ri != rj {
			return ri < rj
		}
		return issues[i].Name < issues[j].Name
	})
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
