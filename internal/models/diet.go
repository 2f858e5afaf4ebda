// internal/models/diet.go
package models

// FoodItem is one dietary suggestion with its rationale.
type FoodItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// DietPlan is the rule-derived nutrition guidance for one scan.
type DietPlan struct {
	EatMore             []FoodItem `json:"eat_more"`
	Avoid               []FoodItem `json:"avoid"`
	HydrationTip        string     `json:"hydration_tip"`
	SupplementsOptional []FoodItem `json:"supplements_optional"`
}

// TotalItems counts every item across the plan, used for restricted-view
// preview counts.
func (p DietPlan) TotalItems() int {
	return len(p.EatMore) + len(p.Avoid) + len(p.SupplementsOptional)
}
