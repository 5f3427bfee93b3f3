// Package storage хранит профили и незавершенные диалоги пользователей в памяти процесса.
package storage

import (
	"fmt"
	"sync"

	"github.com/Torrentov/calories-count-bot/internal/calc"
	"github.com/Torrentov/calories-count-bot/internal/conversation"
	"github.com/Torrentov/calories-count-bot/internal/domain"
	"github.com/Torrentov/calories-count-bot/internal/models"
)

type userEntry struct {
	// lock сериализует обработку сообщений одного пользователя
	lock sync.Mutex

	profile *models.UserProfile
	session *conversation.Session
}

// ProgressStore - профили, цели и счетчики пользователей.
// Доступ к map защищен mu, обработка конкретного пользователя - его собственным lock.
type ProgressStore struct {
	mu    sync.RWMutex
	users map[int64]*userEntry
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		users: make(map[int64]*userEntry),
	}
}

func (s *ProgressStore) entry(userID int64) *userEntry {
	s.mu.RLock()
	e, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.users[userID]; !ok {
		e = &userEntry{}
		s.users[userID] = e
	}
	return e
}

// Lock захватывает блокировку пользователя на время read-modify-write.
// Остальные методы не берут ее сами, поэтому их можно вызывать под Lock.
func (s *ProgressStore) Lock(userID int64) (unlock func()) {
	e := s.entry(userID)
	e.lock.Lock()
	return e.lock.Unlock
}

// Get возвращает копию профиля или ErrProfileNotFound.
func (s *ProgressStore) Get(userID int64) (models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.users[userID]
	if !ok || e.profile == nil {
		return models.UserProfile{}, fmt.Errorf("user %d: %w", userID, domain.ErrProfileNotFound)
	}
	return *e.profile, nil
}

// Put создает или полностью заменяет профиль.
func (s *ProgressStore) Put(userID int64, profile models.UserProfile) {
	e := s.entry(userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	p := profile
	e.profile = &p
}

// Update применяет mutator к профилю и возвращает результат.
func (s *ProgressStore) Update(userID int64, mutator func(p *models.UserProfile)) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.users[userID]
	if !ok || e.profile == nil {
		return models.UserProfile{}, fmt.Errorf("user %d: %w", userID, domain.ErrProfileNotFound)
	}
	mutator(e.profile)
	return *e.profile, nil
}

func (s *ProgressStore) Session(userID int64) (*conversation.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.users[userID]
	if !ok || e.session == nil {
		return nil, false
	}
	return e.session, true
}

// SetSession начинает новый диалог. Незавершенный предыдущий молча отбрасывается.
func (s *ProgressStore) SetSession(userID int64, session *conversation.Session) {
	e := s.entry(userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.session = session
}

// ClearSession удаляет диалог и сообщает, был ли он.
func (s *ProgressStore) ClearSession(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.users[userID]
	if !ok || e.session == nil {
		return false
	}
	e.session = nil
	return true
}

// LogWater добавляет выпитую воду и возвращает остаток до цели.
func (s *ProgressStore) LogWater(userID int64, amountMl int) (int, error) {
	if amountMl <= 0 {
		return 0, fmt.Errorf("water amount %d: %w", amountMl, domain.ErrInvalidArgument)
	}

	p, err := s.Update(userID, func(p *models.UserProfile) {
		p.WaterLoggedMl += amountMl
	})
	if err != nil {
		return 0, err
	}
	return p.RemainingWaterMl(), nil
}

// LogFood добавляет съеденные калории и возвращает остаток до цели.
func (s *ProgressStore) LogFood(userID int64, kcal int) (int, error) {
	if kcal < 0 {
		return 0, fmt.Errorf("calories %d: %w", kcal, domain.ErrInvalidArgument)
	}

	p, err := s.Update(userID, func(p *models.UserProfile) {
		p.CaloriesLoggedKcal += kcal
	})
	if err != nil {
		return 0, err
	}
	return p.RemainingCaloriesKcal(), nil
}

// LogWorkout учитывает сожженные калории и повышает цель по воде до конца периода.
func (s *ProgressStore) LogWorkout(userID int64, durationMinutes int) (models.WorkoutResult, error) {
	if durationMinutes <= 0 {
		return models.WorkoutResult{}, fmt.Errorf("workout duration %d: %w", durationMinutes, domain.ErrInvalidArgument)
	}

	burned, extraWater := calc.WorkoutEffect(durationMinutes)
	p, err := s.Update(userID, func(p *models.UserProfile) {
		p.CaloriesBurnedKcal += burned
		p.WaterGoalMl += extraWater
	})
	if err != nil {
		return models.WorkoutResult{}, err
	}

	return models.WorkoutResult{
		CaloriesBurned: burned,
		ExtraWaterMl:   extraWater,
		WaterGoalMl:    p.WaterGoalMl,
	}, nil
}

func (s *ProgressStore) Progress(userID int64) (models.ProgressSnapshot, error) {
	p, err := s.Get(userID)
	if err != nil {
		return models.ProgressSnapshot{}, err
	}

	return models.ProgressSnapshot{
		WaterGoalMl:        p.WaterGoalMl,
		WaterLoggedMl:      p.WaterLoggedMl,
		WaterRemainingMl:   p.RemainingWaterMl(),
		CalorieGoalKcal:    p.CalorieGoalKcal,
		CaloriesLoggedKcal: p.CaloriesLoggedKcal,
		CaloriesBurnedKcal: p.CaloriesBurnedKcal,
		CalorieBalanceKcal: p.CalorieBalanceKcal,
	}, nil
}

// Count - число пользователей с настроенным профилем.
func (s *ProgressStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.users {
		if e.profile != nil {
			n++
		}
	}
	return n
}
