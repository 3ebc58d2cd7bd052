package usecase

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/samber/lo"
)

// Recommendation priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// Serving units used in recommendations
const (
	ServingGrams = "g"
	ServingCup   = "cup"
	ServingUnit  = "serving"
)

// maxRecommendations caps the suggestions returned by Recommend
const maxRecommendations = 4

// Candidate terms looked up in the reference table, in preference order
var (
	proteinCandidates         = []string{"chicken breast", "egg", "greek yogurt", "salmon", "tofu", "lentils"}
	healthyFatCandidates      = []string{"avocado", "almonds", "olive oil", "salmon"}
	proteinCalorieCandidates  = []string{"greek yogurt", "almonds", "chicken breast"}
	balancedCalorieCandidates = []string{"banana", "oatmeal", "avocado"}
)

// cupFoods are measured in cups when a portion falls between 100 and 250 g
var cupFoods = map[string]bool{"rice": true, "oatmeal": true, "yogurt": true, "milk": true}

type nutrient int

const (
	nutrientCalories nutrient = iota
	nutrientProtein
	nutrientFat
)

func (n nutrient) per100g(food domain.ReferenceFood) float64 {
	switch n {
	case nutrientProtein:
		return food.ProteinG
	case nutrientFat:
		return food.FatG
	default:
		return food.CaloriesPer100g
	}
}

// recommendRule adds up to limit foods from candidates when a gap calls for it
type recommendRule struct {
	candidates []string
	limit      int
	nutrient   nutrient
	amount     float64
	reason     string
	priority   string
}

// Recommend suggests foods from the reference table that close the largest gaps:
// protein when more than 10 g short, calories when more than 200 kcal short and
// healthy fats when flagged and more than 5 g short. At most four are returned.
func Recommend(gaps domain.NutritionGaps, idx *SearchIndex) []domain.Recommendation {
	var rules []recommendRule

	if gaps.Protein > 10 {
		priority := PriorityMedium
		if gaps.Protein > 20 {
			priority = PriorityHigh
		}
		rules = append(rules, recommendRule{
			candidates: proteinCandidates,
			limit:      2,
			nutrient:   nutrientProtein,
			amount:     gaps.Protein / 2,
			reason:     fmt.Sprintf("Add %.0fg protein", gaps.Protein),
			priority:   priority,
		})
	}

	if gaps.Calories > 200 {
		candidates := balancedCalorieCandidates
		if slices.Contains(gaps.Priorities, PriorityProtein) {
			candidates = proteinCalorieCandidates
		}
		rules = append(rules, recommendRule{
			candidates: candidates,
			limit:      1,
			nutrient:   nutrientCalories,
			amount:     math.Min(gaps.Calories, 300),
			reason:     fmt.Sprintf("Add %.0f calories", gaps.Calories),
			priority:   PriorityMedium,
		})
	}

	if gaps.Fat > 5 && slices.Contains(gaps.Priorities, PriorityHealthyFats) {
		rules = append(rules, recommendRule{
			candidates: healthyFatCandidates,
			limit:      1,
			nutrient:   nutrientFat,
			amount:     gaps.Fat,
			reason:     fmt.Sprintf("Add %.0fg healthy fats", gaps.Fat),
			priority:   PriorityMedium,
		})
	}

	recommendations := []domain.Recommendation{}
	for _, rule := range rules {
		for _, term := range availableCandidates(idx, rule.candidates, rule.limit) {
			food, _ := idx.FirstContaining(term)
			rec, ok := servingFor(food, term, rule.nutrient, rule.amount)
			if !ok {
				continue
			}
			rec.Reason, rec.Priority = rule.reason, rule.priority
			recommendations = append(recommendations, rec)
		}
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

// availableCandidates keeps the first limit terms that occur in some reference name
func availableCandidates(idx *SearchIndex, candidates []string, limit int) []string {
	available := lo.Filter(candidates, func(term string, _ int) bool {
		_, ok := idx.FirstContaining(term)
		return ok
	})
	if len(available) > limit {
		available = available[:limit]
	}
	return available
}

// servingFor sizes a portion of food that supplies amount of n. Portions under
// 30 g are whole grams, under 100 g round to 15 g steps, under 250 g are cups for
// cup-measured foods and grams otherwise, and larger ones are 100 g servings.
func servingFor(food domain.ReferenceFood, term string, n nutrient, amount float64) (domain.Recommendation, bool) {
	per100 := n.per100g(food)
	if per100 <= 0 {
		return domain.Recommendation{}, false
	}

	grams := amount / per100 * 100

	rec := domain.Recommendation{Food: food.Name}
	switch {
	case grams < 30:
		rec.Quantity, rec.Unit = math.Round(grams), ServingGrams
	case grams < 100:
		rec.Quantity, rec.Unit = math.Round(grams/15)*15, ServingGrams
	case grams < 250:
		if isCupFood(term) {
			rec.Quantity, rec.Unit = round1(grams/100), ServingCup
		} else {
			rec.Quantity, rec.Unit = math.Round(grams), ServingGrams
		}
	default:
		rec.Quantity, rec.Unit = round1(grams/100), ServingUnit
	}

	multiplier := grams / 100
	rec.Nutrition = domain.Totals{
		Calories: math.Round(food.CaloriesPer100g * multiplier),
		Protein:  round1(food.ProteinG * multiplier),
		Carbs:    round1(food.CarbsG * multiplier),
		Fat:      round1(food.FatG * multiplier),
	}
	return rec, true
}

func isCupFood(term string) bool {
	return lo.SomeBy(strings.Fields(term), func(w string) bool { return cupFoods[w] })
}

// MealPlan renders recommendations as plan lines: high-priority additions, then
// the rest, then a timing tip when more than 300 kcal are still missing.
func MealPlan(gaps domain.NutritionGaps, recommendations []domain.Recommendation) []string {
	if len(recommendations) == 0 {
		return []string{"Your nutrition looks well balanced! Keep up the good work."}
	}

	high := lo.Filter(recommendations, func(r domain.Recommendation, _ int) bool { return r.Priority == PriorityHigh })
	medium := lo.Filter(recommendations, func(r domain.Recommendation, _ int) bool { return r.Priority == PriorityMedium })

	var lines []string
	if len(high) > 0 {
		lines = append(lines, "Priority additions:")
		for _, r := range high {
			lines = append(lines, fmt.Sprintf("- %s %s %s (%s): adds %.0f cal, %.1fg protein",
				formatAmount(r.Quantity), r.Unit, r.Food, r.Reason, r.Nutrition.Calories, r.Nutrition.Protein))
		}
	}
	if len(medium) > 0 {
		lines = append(lines, "Additional suggestions:")
		for _, r := range medium {
			lines = append(lines, fmt.Sprintf("- %s %s %s (%s): adds %.0f cal",
				formatAmount(r.Quantity), r.Unit, r.Food, r.Reason, r.Nutrition.Calories))
		}
	}
	if gaps.Calories > 300 {
		lines = append(lines, "Timing tip: spread these additions across meals or add them as healthy snacks.")
	}
	return lines
}
