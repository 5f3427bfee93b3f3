// Package calc содержит расчеты норм воды и калорий.
// Функции чистые и не проверяют входные данные: это делают вызывающие.
package calc

import "math"

const (
	mlPerKg            = 30
	mlPerActivityBlock = 500
	activityBlockMin   = 30
	warmBonusMl        = 500
	hotBonusMl         = 500
	warmThresholdC     = 25
	hotThresholdC      = 35

	activityBonusKcal = 200

	kcalPerWorkoutMin   = 10
	workoutWaterBlockMl = 200
)

// WaterGoal рекомендованная норма воды в мл.
// Бонусы за температуру независимы: выше 35°C добавляются оба.
func WaterGoal(weightKg, activityMinutes int, temperatureC float64) int {
	goal := float64(weightKg*mlPerKg + mlPerActivityBlock*(activityMinutes/activityBlockMin))
	if temperatureC > warmThresholdC {
		goal += warmBonusMl
	}
	if temperatureC > hotThresholdC {
		goal += hotBonusMl
	}
	return round(goal)
}

// CalorieGoal рекомендованная норма калорий (Миффлин-Сан Жеор без поправки на пол)
// плюс по 200 ккал за 30 и 60 минут активности.
func CalorieGoal(weightKg, heightCm, ageYears, activityMinutes int) int {
	goal := 10*float64(weightKg) + 6.25*float64(heightCm) - 5*float64(ageYears)
	if activityMinutes >= 30 {
		goal += activityBonusKcal
	}
	if activityMinutes >= 60 {
		goal += activityBonusKcal
	}
	return round(goal)
}

// CaloriesFromGrams калории порции: сначала граммы переводятся в доли 100 г.
func CaloriesFromGrams(caloriesPer100g, grams float64) int {
	return round(grams / 100 * caloriesPer100g)
}

// WorkoutEffect сожженные калории и дополнительная вода за тренировку.
func WorkoutEffect(durationMinutes int) (caloriesBurned, extraWaterMl int) {
	return durationMinutes * kcalPerWorkoutMin, workoutWaterBlockMl * (durationMinutes / activityBlockMin)
}

// round - банковское округление, половины округляются к четному.
func round(v float64) int {
	return int(math.RoundToEven(v))
}
