package service

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Torrentov/calories-count-bot/internal/conversation"
	"github.com/Torrentov/calories-count-bot/internal/models"
)

const (
	msgHelp = "Привет! Я бот для расчета нормы воды, калорий и трекинга активности. Вот что я умею:\n\n" +
		"/set_profile — настройка вашего профиля (вес, рост, возраст, уровень активности, город, цели).\n\n" +
		"/log_water <количество> — записать количество выпитой воды (в мл).\n\n" +
		"/log_food <название продукта> — записать съеденную еду. Бот спросит, сколько граммов вы съели.\n\n" +
		"/log_workout <тип тренировки> <время (мин)> — записать тренировку, сожженные калории и потраченную воду.\n\n" +
		"/check_progress — проверить текущий прогресс по воде, калориям и сожженным калориям.\n\n" +
		"Если вы готовы начать, используйте команду /set_profile, чтобы настроить свой профиль!"

	msgProfileNotFound = "Ваш профиль не найден. Сначала настройте профиль с помощью команды /set_profile."
	msgUnknownCommand  = "Неизвестная команда. Список команд: /help"
	msgInternal        = "Что-то пошло не так. Попробуйте еще раз."

	msgWaterUsage   = "Введите количество воды после команды: /log_water <количество>"
	msgFoodUsage    = "Введите название продукта после команды: /log_food <продукт>"
	msgFoodNotFound = "Не удалось найти продукт."
	msgFoodLookup   = "Сервис поиска продуктов недоступен. Попробуйте позже."
	msgWorkoutUsage = "Введите команду в формате: /log_workout <тип тренировки> <время (мин)>"

	msgCityNotFound = "Город не найден. Попробуйте снова."
	msgCityEmpty    = "Введите название города."
)

var stepPrompts = map[conversation.Step]string{
	conversation.StepWeight:      "Введите ваш вес (в кг):",
	conversation.StepHeight:      "Введите ваш рост (в см):",
	conversation.StepAge:         "Введите ваш возраст:",
	conversation.StepActivity:    "Сколько минут активности у вас в день?",
	conversation.StepCity:        "В каком городе вы находитесь?",
	conversation.StepWaterGoal:   "Введите вашу цель по воде (в мл):",
	conversation.StepCalorieGoal: "Введите вашу цель по калориям (в ккал):",
	conversation.StepGrams:       "Сколько грамм вы съели?",
}

var stepInvalid = map[conversation.Step]string{
	conversation.StepWeight:      "Введите вес целым положительным числом (в кг).",
	conversation.StepHeight:      "Введите рост целым положительным числом (в см).",
	conversation.StepAge:         "Введите возраст целым положительным числом.",
	conversation.StepActivity:    "Введите количество минут активности целым числом (0 или больше).",
	conversation.StepWaterGoal:   "Введите корректное число для цели по воде.",
	conversation.StepCalorieGoal: "Введите корректное число для цели по калориям.",
	conversation.StepGrams:       "Введите корректное число (в граммах).",
}

func recommendationText(r conversation.Recommendation) string {
	return fmt.Sprintf("Рекомендованная норма воды: %d мл.\n"+
		"Рекомендованная норма калорий: %d ккал.\n\n"+
		"%s", r.WaterMl, r.CaloriesKcal, stepPrompts[conversation.StepWaterGoal])
}

func waterGoalSetText(goal int) string {
	return fmt.Sprintf("Цель по воде установлена: %d мл.\n%s", goal, stepPrompts[conversation.StepCalorieGoal])
}

func profileDoneText(p models.UserProfile) string {
	return fmt.Sprintf("Профиль настроен!\nЦель по воде: %d мл.\nЦель по калориям: %d ккал.", p.WaterGoalMl, p.CalorieGoalKcal)
}

func foodFoundText(f models.FoodInfo) string {
	return fmt.Sprintf("%s содержит %s ккал на 100 г. %s", f.Name, formatNumber(f.CaloriesPer100g), stepPrompts[conversation.StepGrams])
}

func foodLoggedText(kcal int, food string, remaining int) string {
	return fmt.Sprintf("Записано: %d ккал из %s. Осталось: %d ккал.", kcal, food, remaining)
}

func waterLoggedText(amount, remaining int) string {
	return fmt.Sprintf("Записано %d мл воды. Осталось: %d мл.", amount, remaining)
}

func workoutText(workout string, minutes int, res models.WorkoutResult) string {
	return fmt.Sprintf("%s на %d минут — %d ккал. Дополнительно: выпейте %d мл воды.",
		capitalize(workout), minutes, res.CaloriesBurned, res.ExtraWaterMl)
}

func progressText(p models.ProgressSnapshot) string {
	var b strings.Builder
	b.WriteString("📊 Прогресс:\n\n")
	b.WriteString("Вода:\n")
	fmt.Fprintf(&b, "- Выпито: %d мл из %d мл.\n", p.WaterLoggedMl, p.WaterGoalMl)
	fmt.Fprintf(&b, "- Осталось: %d мл.\n\n", p.WaterRemainingMl)
	b.WriteString("Калории:\n")
	fmt.Fprintf(&b, "- Потреблено: %d ккал из %d ккал.\n", p.CaloriesLoggedKcal, p.CalorieGoalKcal)
	fmt.Fprintf(&b, "- Сожжено: %d ккал.\n", p.CaloriesBurnedKcal)
	fmt.Fprintf(&b, "- Баланс: %d ккал.\n", p.CalorieBalanceKcal)
	return b.String()
}

// capitalize - первая буква заглавная, остальные строчные.
func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
