package domain

import (
	"errors"
	"fmt"
)

// Виды ошибок, которые обработчики команд превращают в сообщения пользователю.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrLookupFailure   = errors.New("lookup failure")
)

// ErrProfileNotFound возвращается хранилищем, когда пользователь еще не настроил профиль.
var ErrProfileNotFound = fmt.Errorf("profile %w", ErrNotFound)
