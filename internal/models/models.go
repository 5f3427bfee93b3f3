package models

// UserProfile - итоговый профиль пользователя с целями и счетчиками за период.
type UserProfile struct {
	WeightKg        int     `json:"weight_kg"`
	HeightCm        int     `json:"height_cm"`
	AgeYears        int     `json:"age_years"`
	ActivityMinutes int     `json:"activity_minutes"`
	City            string  `json:"city"`
	TemperatureC    float64 `json:"temperature_c"`

	WaterGoalMl     int `json:"water_goal_ml"`
	CalorieGoalKcal int `json:"calorie_goal_kcal"`
	// CalorieBalanceKcal - рекомендованная норма калорий на момент настройки профиля.
	// После настройки не пересчитывается.
	CalorieBalanceKcal int `json:"calorie_balance_kcal"`

	WaterLoggedMl      int `json:"water_logged_ml"`
	CaloriesLoggedKcal int `json:"calories_logged_kcal"`
	CaloriesBurnedKcal int `json:"calories_burned_kcal"`
}

// RemainingWaterMl сколько воды осталось выпить до цели, не меньше нуля.
func (p UserProfile) RemainingWaterMl() int {
	return max(0, p.WaterGoalMl-p.WaterLoggedMl)
}

// RemainingCaloriesKcal сколько калорий осталось до цели, не меньше нуля.
func (p UserProfile) RemainingCaloriesKcal() int {
	return max(0, p.CalorieGoalKcal-p.CaloriesLoggedKcal)
}

type ProgressSnapshot struct {
	WaterGoalMl        int
	WaterLoggedMl      int
	WaterRemainingMl   int
	CalorieGoalKcal    int
	CaloriesLoggedKcal int
	CaloriesBurnedKcal int
	CalorieBalanceKcal int
}

// FoodInfo - результат поиска продукта.
type FoodInfo struct {
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
}

type WorkoutResult struct {
	CaloriesBurned int
	ExtraWaterMl   int
	WaterGoalMl    int
}
