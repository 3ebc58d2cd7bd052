package domain

import "time"

// ReferenceFood is one row of the nutrition reference table.
// All nutrient values are per 100 grams.
type ReferenceFood struct {
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	ProteinG        float64 `json:"proteinG"`
	CarbsG          float64 `json:"carbsG"`
	FatG            float64 `json:"fatG"`
}

// NutrientRecord is the nutrient contribution of one resolved food
type NutrientRecord struct {
	Food     string  `json:"food"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"` // grams
	Carbs    float64 `json:"carbs"`   // grams
	Fat      float64 `json:"fat"`     // grams
}

// Totals holds the summed nutrients for a day
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// NutritionGaps compares totals against a daily calorie target
type NutritionGaps struct {
	TargetCalories int      `json:"targetCalories"`
	Calories       float64  `json:"calories"` // target minus eaten, may be negative
	Protein        float64  `json:"protein"`
	Carbs          float64  `json:"carbs"`
	Fat            float64  `json:"fat"`
	ProteinPct     float64  `json:"proteinPct"`
	CarbsPct       float64  `json:"carbsPct"`
	FatPct         float64  `json:"fatPct"`
	Priorities     []string `json:"priorities"`
}

// Recommendation suggests a reference food and portion that closes part of a gap
type Recommendation struct {
	Food      string  `json:"food"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"` // "g", "cup" or "serving"
	Reason    string  `json:"reason"`
	Nutrition Totals  `json:"nutrition"`
	Priority  string  `json:"priority"` // "high" or "medium"
}

// Analysis is the full result of analyzing one day's meal text
type Analysis struct {
	Records         []NutrientRecord     `json:"records"`
	Unresolved      []UnresolvedFragment `json:"unresolved"`
	Totals          Totals               `json:"totals"`
	Gaps            NutritionGaps        `json:"gaps"`
	Recommendations []Recommendation     `json:"recommendations"`
	MealPlan        []string             `json:"mealPlan"`
	Generation      uint64               `json:"generation"`
	Source          string               `json:"source"` // "Engine" or "Cache"
	AnalyzedAt      time.Time            `json:"analyzedAt"`
}

// AnalyzeRequest represents a meal analysis request
type AnalyzeRequest struct {
	Text           string `json:"text"`
	TargetCalories int    `json:"targetCalories,omitempty"`
}
