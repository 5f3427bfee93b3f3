// Package service обрабатывает команды и ответы пользователя независимо от транспорта.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Torrentov/calories-count-bot/internal/conversation"
	"github.com/Torrentov/calories-count-bot/internal/domain"
	"github.com/Torrentov/calories-count-bot/internal/storage"
	"go.uber.org/zap"
)

const (
	CommandStart         = "start"
	CommandHelp          = "help"
	CommandSetProfile    = "set_profile"
	CommandLogWater      = "log_water"
	CommandLogFood       = "log_food"
	CommandLogWorkout    = "log_workout"
	CommandCheckProgress = "check_progress"

	// CommandReply - ответ на вопрос активного диалога.
	CommandReply = "reply"
	// CommandUnknown - нераспознанная команда.
	CommandUnknown = "unknown"
)

const (
	maxWaterMl        = 10000
	maxWorkoutMinutes = 24 * 60
)

// Reply - результат обработки одного сообщения.
type Reply struct {
	// Text пустой, если отвечать не нужно.
	Text    string
	Command string
	// Err - ошибка, превращенная в сообщение пользователю.
	Err error
}

type Tracker struct {
	store   *storage.ProgressStore
	weather domain.WeatherProvider
	food    domain.FoodProvider
	log     *zap.Logger

	commands map[string]func(ctx context.Context, userID int64, args string) Reply
}

func NewTracker(store *storage.ProgressStore, weather domain.WeatherProvider, food domain.FoodProvider, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		store:   store,
		weather: weather,
		food:    food,
		log:     log,
	}
	t.commands = map[string]func(context.Context, int64, string) Reply{
		CommandStart:         t.help,
		CommandHelp:          t.help,
		CommandSetProfile:    t.setProfile,
		CommandLogWater:      t.logWater,
		CommandLogFood:       t.logFood,
		CommandLogWorkout:    t.logWorkout,
		CommandCheckProgress: t.checkProgress,
	}
	return t
}

// Handle обрабатывает одно сообщение пользователя.
// Сообщения одного пользователя обрабатываются строго по очереди.
func (t *Tracker) Handle(ctx context.Context, userID int64, text string) Reply {
	unlock := t.store.Lock(userID)
	defer unlock()

	text = strings.TrimSpace(text)
	if name, args, ok := parseCommand(text); ok {
		handler, known := t.commands[name]
		if !known {
			return Reply{Text: msgUnknownCommand, Command: CommandUnknown}
		}
		// новая команда прерывает незавершенный диалог
		if t.store.ClearSession(userID) {
			t.log.Debug("session abandoned", zap.Int64("user_id", userID), zap.String("command", name))
		}
		reply := handler(ctx, userID, args)
		reply.Command = name
		return reply
	}

	session, ok := t.store.Session(userID)
	if !ok {
		return Reply{}
	}
	reply := t.answer(ctx, userID, session, text)
	reply.Command = CommandReply
	return reply
}

// parseCommand выделяет имя команды ("/log_water@bot 250" -> "log_water", "250").
func parseCommand(text string) (name, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text, " ")
	head = strings.TrimPrefix(head, "/")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func (t *Tracker) help(context.Context, int64, string) Reply {
	return Reply{Text: msgHelp}
}

func (t *Tracker) setProfile(_ context.Context, userID int64, _ string) Reply {
	session := conversation.NewProfileSession()
	t.store.SetSession(userID, session)
	return Reply{Text: stepPrompts[session.Step()]}
}

func (t *Tracker) logWater(_ context.Context, userID int64, args string) Reply {
	if _, err := t.store.Get(userID); err != nil {
		return Reply{Text: msgProfileNotFound, Err: err}
	}

	amount, err := firstInt(args)
	if err != nil || amount <= 0 || amount > maxWaterMl {
		return Reply{Text: msgWaterUsage, Err: fmt.Errorf("log water %q: %w", args, domain.ErrInvalidArgument)}
	}

	remaining, err := t.store.LogWater(userID, amount)
	if err != nil {
		return t.storeError(err)
	}
	return Reply{Text: waterLoggedText(amount, remaining)}
}

func (t *Tracker) logFood(ctx context.Context, userID int64, args string) Reply {
	if _, err := t.store.Get(userID); err != nil {
		return Reply{Text: msgProfileNotFound, Err: err}
	}

	name := strings.Join(strings.Fields(args), " ")
	if name == "" {
		return Reply{Text: msgFoodUsage, Err: fmt.Errorf("log food: empty name: %w", domain.ErrInvalidArgument)}
	}

	info, err := t.food.Food(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Reply{Text: msgFoodNotFound, Err: err}
		}
		t.log.Warn("food lookup failed", zap.Int64("user_id", userID), zap.String("food", name), zap.Error(err))
		return Reply{Text: msgFoodLookup, Err: err}
	}

	t.store.SetSession(userID, conversation.NewFoodSession(info))
	return Reply{Text: foodFoundText(info)}
}

func (t *Tracker) logWorkout(_ context.Context, userID int64, args string) Reply {
	if _, err := t.store.Get(userID); err != nil {
		return Reply{Text: msgProfileNotFound, Err: err}
	}

	parts := strings.Fields(args)
	if len(parts) != 2 {
		return Reply{Text: msgWorkoutUsage, Err: fmt.Errorf("log workout %q: %w", args, domain.ErrInvalidArgument)}
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes <= 0 || minutes > maxWorkoutMinutes {
		return Reply{Text: msgWorkoutUsage, Err: fmt.Errorf("log workout duration %q: %w", parts[1], domain.ErrInvalidArgument)}
	}

	res, err := t.store.LogWorkout(userID, minutes)
	if err != nil {
		return t.storeError(err)
	}
	return Reply{Text: workoutText(parts[0], minutes, res)}
}

func (t *Tracker) checkProgress(_ context.Context, userID int64, _ string) Reply {
	snap, err := t.store.Progress(userID)
	if err != nil {
		return t.storeError(err)
	}
	return Reply{Text: progressText(snap)}
}

// answer продвигает активный диалог ответом пользователя.
func (t *Tracker) answer(ctx context.Context, userID int64, session *conversation.Session, text string) Reply {
	step := session.Step()
	tr, err := session.Advance(ctx, t.weather, text)
	if err != nil {
		return Reply{Text: retryText(step, err), Err: err}
	}

	if !tr.Done() {
		switch {
		case tr.Recommendation != nil:
			return Reply{Text: recommendationText(*tr.Recommendation)}
		case tr.From == conversation.StepWaterGoal:
			return Reply{Text: waterGoalSetText(session.WaterGoal())}
		default:
			return Reply{Text: stepPrompts[tr.Next]}
		}
	}

	// сессия удаляется только после успешной записи, иначе шаг повторяется
	switch session.Kind() {
	case conversation.KindProfileSetup:
		profile, err := session.Profile()
		if err != nil {
			t.store.ClearSession(userID)
			return t.storeError(err)
		}
		t.store.Put(userID, profile)
		t.store.ClearSession(userID)
		t.log.Info("profile configured",
			zap.Int64("user_id", userID),
			zap.String("city", profile.City),
			zap.Int("water_goal_ml", profile.WaterGoalMl),
			zap.Int("calorie_goal_kcal", profile.CalorieGoalKcal))
		return Reply{Text: profileDoneText(profile)}

	case conversation.KindFoodWeight:
		kcal, err := session.ConsumedCalories()
		if err == nil {
			var remaining int
			if remaining, err = t.store.LogFood(userID, kcal); err == nil {
				t.store.ClearSession(userID)
				return Reply{Text: foodLoggedText(kcal, session.Food().Name, remaining)}
			}
		}
		if errors.Is(err, domain.ErrNotFound) {
			t.store.ClearSession(userID)
			return t.storeError(err)
		}
		t.store.SetSession(userID, conversation.NewFoodSession(session.Food()))
		return Reply{Text: stepInvalid[conversation.StepGrams], Err: err}
	}

	t.store.ClearSession(userID)
	return Reply{}
}

func retryText(step conversation.Step, err error) string {
	if step == conversation.StepCity {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return msgCityEmpty
		}
		return msgCityNotFound
	}
	if msg, ok := stepInvalid[step]; ok {
		return msg
	}
	return stepPrompts[step]
}

func (t *Tracker) storeError(err error) Reply {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return Reply{Text: msgProfileNotFound, Err: err}
	default:
		t.log.Error("unexpected store error", zap.Error(err))
		return Reply{Text: msgInternal, Err: err}
	}
}

func firstInt(args string) (int, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0, fmt.Errorf("missing argument: %w", domain.ErrInvalidArgument)
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("not an integer %q: %w", fields[0], domain.ErrInvalidArgument)
	}
	return v, nil
}
