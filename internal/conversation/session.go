// Package conversation реализует пошаговые диалоги с пользователем:
// настройку профиля и уточнение веса съеденного продукта.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Torrentov/calories-count-bot/internal/calc"
	"github.com/Torrentov/calories-count-bot/internal/domain"
	"github.com/Torrentov/calories-count-bot/internal/models"
)

type Kind int

const (
	KindProfileSetup Kind = iota + 1
	KindFoodWeight
)

func (k Kind) String() string {
	switch k {
	case KindProfileSetup:
		return "profile_setup"
	case KindFoodWeight:
		return "food_weight"
	default:
		return "unknown"
	}
}

type Step string

const (
	StepWeight      Step = "weight"
	StepHeight      Step = "height"
	StepAge         Step = "age"
	StepActivity    Step = "activity_minutes"
	StepCity        Step = "city"
	StepWaterGoal   Step = "water_goal"
	StepCalorieGoal Step = "calorie_goal"
	StepGrams       Step = "grams"
	// StepDone - терминальный шаг, после него сессия удаляется.
	StepDone Step = "done"
)

// Допустимые пределы ответов. Выше них расчеты теряют смысл и могут переполниться.
const (
	MaxWeightKg        = 500
	MaxHeightCm        = 300
	MaxAgeYears        = 150
	MaxActivityMinutes = 24 * 60
	MaxWaterGoalMl     = 20000
	MaxCalorieGoalKcal = 20000
	MaxGrams           = 100000
)

var sequences = map[Kind][]Step{
	KindProfileSetup: {StepWeight, StepHeight, StepAge, StepActivity, StepCity, StepWaterGoal, StepCalorieGoal},
	KindFoodWeight:   {StepGrams},
}

// Recommendation - рекомендованные нормы, посчитанные после ввода города.
type Recommendation struct {
	WaterMl      int
	CaloriesKcal int
}

// Transition описывает результат успешного шага.
type Transition struct {
	From Step
	// Next - следующий вопрос или StepDone.
	Next Step
	// Recommendation заполнен только после шага города.
	Recommendation *Recommendation
}

func (t Transition) Done() bool {
	return t.Next == StepDone
}

type profileFields struct {
	weight, height, age, activity int
	city                          string
	temperature                   float64
	recommended                   Recommendation
	waterGoal, calorieGoal        int
}

// Session хранит ответы незавершенного диалога одного пользователя.
type Session struct {
	kind      Kind
	step      int
	collected []Step

	profile profileFields

	food  models.FoodInfo
	grams float64
}

func NewProfileSession() *Session {
	return &Session{kind: KindProfileSetup}
}

// NewFoodSession начинает уточнение веса для уже найденного продукта.
func NewFoodSession(food models.FoodInfo) *Session {
	return &Session{kind: KindFoodWeight, food: food}
}

func (s *Session) Kind() Kind {
	return s.kind
}

// Step возвращает шаг, ответ на который ожидается сейчас.
func (s *Session) Step() Step {
	seq := sequences[s.kind]
	if s.step >= len(seq) {
		return StepDone
	}
	return seq[s.step]
}

// Collected возвращает уже заполненные поля в порядке вопросов.
func (s *Session) Collected() []Step {
	out := make([]Step, len(s.collected))
	copy(out, s.collected)
	return out
}

func (s *Session) Food() models.FoodInfo {
	return s.food
}

func (s *Session) Grams() float64 {
	return s.grams
}

// WaterGoal - введенная пользователем цель по воде, 0 до соответствующего шага.
func (s *Session) WaterGoal() int {
	return s.profile.waterGoal
}

func (s *Session) Recommendation() Recommendation {
	return s.profile.recommended
}

// Advance принимает ответ пользователя на текущий шаг.
// При ошибке шаг не меняется и ранее собранные ответы сохраняются.
func (s *Session) Advance(ctx context.Context, weather domain.WeatherProvider, input string) (Transition, error) {
	current := s.Step()
	if current == StepDone {
		return Transition{}, fmt.Errorf("session %s already completed: %w", s.kind, domain.ErrInvalidArgument)
	}
	input = strings.TrimSpace(input)

	var rec *Recommendation
	switch current {
	case StepWeight:
		v, err := parseBoundedInt(input, 1, MaxWeightKg)
		if err != nil {
			return Transition{}, err
		}
		s.profile.weight = v
	case StepHeight:
		v, err := parseBoundedInt(input, 1, MaxHeightCm)
		if err != nil {
			return Transition{}, err
		}
		s.profile.height = v
	case StepAge:
		v, err := parseBoundedInt(input, 1, MaxAgeYears)
		if err != nil {
			return Transition{}, err
		}
		s.profile.age = v
	case StepActivity:
		v, err := parseBoundedInt(input, 0, MaxActivityMinutes)
		if err != nil {
			return Transition{}, err
		}
		s.profile.activity = v
	case StepCity:
		r, err := s.resolveCity(ctx, weather, input)
		if err != nil {
			return Transition{}, err
		}
		rec = &r
	case StepWaterGoal:
		v, err := parseBoundedInt(input, 1, MaxWaterGoalMl)
		if err != nil {
			return Transition{}, err
		}
		s.profile.waterGoal = v
	case StepCalorieGoal:
		v, err := parseBoundedInt(input, 1, MaxCalorieGoalKcal)
		if err != nil {
			return Transition{}, err
		}
		s.profile.calorieGoal = v
	case StepGrams:
		v, err := strconv.ParseFloat(strings.Replace(input, ",", ".", 1), 64)
		if err != nil || !(v > 0) || v > MaxGrams {
			return Transition{}, fmt.Errorf("grams %q: %w", input, domain.ErrInvalidArgument)
		}
		s.grams = v
	}

	s.collected = append(s.collected, current)
	s.step++

	return Transition{From: current, Next: s.Step(), Recommendation: rec}, nil
}

func (s *Session) resolveCity(ctx context.Context, weather domain.WeatherProvider, city string) (Recommendation, error) {
	if city == "" {
		return Recommendation{}, fmt.Errorf("empty city: %w", domain.ErrInvalidArgument)
	}
	if weather == nil {
		return Recommendation{}, fmt.Errorf("no weather provider: %w", domain.ErrLookupFailure)
	}

	temp, err := weather.Temperature(ctx, city)
	if err != nil {
		// для пользователя недоступность сервиса не отличается от ненайденного города
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrLookupFailure) {
			return Recommendation{}, fmt.Errorf("city %q: %w", city, err)
		}
		return Recommendation{}, fmt.Errorf("city %q: %v: %w", city, err, domain.ErrLookupFailure)
	}

	p := &s.profile
	p.city = city
	p.temperature = temp
	p.recommended = Recommendation{
		WaterMl:      calc.WaterGoal(p.weight, p.activity, temp),
		CaloriesKcal: calc.CalorieGoal(p.weight, p.height, p.age, p.activity),
	}
	return p.recommended, nil
}

// Profile собирает профиль из завершенной настройки. Счетчики начинаются с нуля.
func (s *Session) Profile() (models.UserProfile, error) {
	if s.kind != KindProfileSetup || s.Step() != StepDone {
		return models.UserProfile{}, fmt.Errorf("profile setup is not complete: %w", domain.ErrInvalidArgument)
	}

	p := s.profile
	return models.UserProfile{
		WeightKg:           p.weight,
		HeightCm:           p.height,
		AgeYears:           p.age,
		ActivityMinutes:    p.activity,
		City:               p.city,
		TemperatureC:       p.temperature,
		WaterGoalMl:        p.waterGoal,
		CalorieGoalKcal:    p.calorieGoal,
		CalorieBalanceKcal: p.recommended.CaloriesKcal,
	}, nil
}

// ConsumedCalories считает калории съеденного продукта после ввода веса.
func (s *Session) ConsumedCalories() (int, error) {
	if s.kind != KindFoodWeight || s.Step() != StepDone {
		return 0, fmt.Errorf("food weight is not entered: %w", domain.ErrInvalidArgument)
	}
	return calc.CaloriesFromGrams(s.food.CaloriesPer100g, s.grams), nil
}

func parseInt(input string) (int, error) {
	v, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("not an integer %q: %w", input, domain.ErrInvalidArgument)
	}
	return v, nil
}

func parseBoundedInt(input string, lo, hi int) (int, error) {
	v, err := parseInt(input)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]: %w", v, lo, hi, domain.ErrInvalidArgument)
	}
	return v, nil
}
