package usecase

import (
	"math"
	"strconv"
	"strings"

	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/samber/lo"
)

// Energy per gram of each macronutrient
const (
	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0
)

// Balanced-diet share of daily energy used to size macro gaps
const (
	targetProteinShare = 0.20
	targetCarbsShare   = 0.55
	targetFatShare     = 0.25
)

// Priority flags raised by AnalyzeGaps
const (
	PriorityProtein     = "protein"
	PriorityCalories    = "calories"
	PriorityReduceCarbs = "reduce_carbs"
	PriorityHealthyFats = "healthy_fats"
)

// Aggregate converts mentions into nutrient records using each unit's portion multiplier.
// A mention that cannot be priced (food missing from the table, unknown unit or
// non-positive quantity) is reported as unresolved with its source text.
func Aggregate(mentions []domain.FoodMention, idx *SearchIndex) ([]domain.NutrientRecord, []domain.UnresolvedFragment) {
	var (
		records    []domain.NutrientRecord
		unresolved []domain.UnresolvedFragment
	)

	for _, m := range mentions {
		food, ok := idx.Lookup(m.Food)
		if !ok || !m.Unit.Valid() || m.Quantity <= 0 {
			unresolved = append(unresolved, domain.UnresolvedFragment{Text: m.SourceText})
			continue
		}

		multiplier := m.Quantity * m.Unit.Factor()
		records = append(records, domain.NutrientRecord{
			Food:     food.Name,
			Quantity: formatQuantity(m.Quantity, m.Unit),
			Calories: round1(food.CaloriesPer100g * multiplier),
			Protein:  round1(food.ProteinG * multiplier),
			Carbs:    round1(food.CarbsG * multiplier),
			Fat:      round1(food.FatG * multiplier),
		})
	}

	return records, unresolved
}

// SumTotals adds up the records' nutrients
func SumTotals(records []domain.NutrientRecord) domain.Totals {
	return domain.Totals{
		Calories: round1(lo.SumBy(records, func(r domain.NutrientRecord) float64 { return r.Calories })),
		Protein:  round1(lo.SumBy(records, func(r domain.NutrientRecord) float64 { return r.Protein })),
		Carbs:    round1(lo.SumBy(records, func(r domain.NutrientRecord) float64 { return r.Carbs })),
		Fat:      round1(lo.SumBy(records, func(r domain.NutrientRecord) float64 { return r.Fat })),
	}
}

// AnalyzeGaps compares totals against targetCalories split 20/55/25 across
// protein, carbs and fat, and flags the most pressing adjustments.
func AnalyzeGaps(totals domain.Totals, targetCalories int) domain.NutritionGaps {
	target := float64(targetCalories)
	gaps := domain.NutritionGaps{
		TargetCalories: targetCalories,
		Calories:       round1(target - totals.Calories),
		Protein:        round1(math.Max(0, target*targetProteinShare/kcalPerGramProtein-totals.Protein)),
		Carbs:          round1(math.Max(0, target*targetCarbsShare/kcalPerGramCarbs-totals.Carbs)),
		Fat:            round1(math.Max(0, target*targetFatShare/kcalPerGramFat-totals.Fat)),
		Priorities:     []string{},
	}

	var proteinPct, carbsPct, fatPct float64
	if totals.Calories > 0 {
		proteinPct = totals.Protein * kcalPerGramProtein / totals.Calories * 100
		carbsPct = totals.Carbs * kcalPerGramCarbs / totals.Calories * 100
		fatPct = totals.Fat * kcalPerGramFat / totals.Calories * 100
	}
	gaps.ProteinPct, gaps.CarbsPct, gaps.FatPct = round1(proteinPct), round1(carbsPct), round1(fatPct)

	if proteinPct < 15 {
		gaps.Priorities = append(gaps.Priorities, PriorityProtein)
	}
	if target-totals.Calories > 300 {
		gaps.Priorities = append(gaps.Priorities, PriorityCalories)
	}
	if carbsPct > 65 {
		gaps.Priorities = append(gaps.Priorities, PriorityReduceCarbs)
	}
	if fatPct < 20 {
		gaps.Priorities = append(gaps.Priorities, PriorityHealthyFats)
	}

	return gaps
}

// formatQuantity renders "2.0 slice" style display quantities
func formatQuantity(qty float64, unit domain.Unit) string {
	return formatAmount(qty) + " " + string(unit)
}

// formatAmount renders a number with at least one decimal place
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
