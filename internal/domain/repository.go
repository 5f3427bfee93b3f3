package domain

import (
	"context"

	"github.com/Torrentov/calories-count-bot/internal/models"
)

// WeatherProvider возвращает текущую температуру (°C) в городе.
// ErrNotFound - город не найден, ErrLookupFailure - сервис недоступен.
type WeatherProvider interface {
	Temperature(ctx context.Context, city string) (float64, error)
}

// FoodProvider ищет продукт по названию и возвращает первое совпадение.
type FoodProvider interface {
	Food(ctx context.Context, name string) (models.FoodInfo, error)
}
