// internal/models/routine.go
package models

// RoutineStep is one step of a skincare routine.
type RoutineStep struct {
	Order                int      `json:"order"`
	StepName             string   `json:"step_name"`
	ProductType          string   `json:"product_type"`
	Instructions         string   `json:"instructions"`
	IngredientsToLookFor []string `json:"ingredients_to_look_for"`
	IngredientsToAvoid   []string `json:"ingredients_to_avoid"`
}

// Routine groups steps by time of application.
type Routine struct {
	Morning []RoutineStep `json:"morning"`
	Evening []RoutineStep `json:"evening"`
	Weekly  []RoutineStep `json:"weekly"`
}

// TotalSteps counts every step across the routine.
func (r Routine) TotalSteps() int {
	return len(r.Morning) + len(r.Evening) + len(r.Weekly)
}

// ProductRecommendation is a suggested product category for the user's skin
// type and issues.
type ProductRecommendation struct {
	ProductType    string   `json:"product_type"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	KeyIngredients []string `json:"key_ingredients"`
	SuitableFor    []string `json:"suitable_for"`
	PriceRange     string   `json:"price_range"`
}
