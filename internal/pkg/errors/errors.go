package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния
	// (например, повторный ответ на тот же вопрос).
	ErrConflict = errors.New("resource state conflict")

	// ErrInvalidTransition используется, когда операция недопустима
	// в текущем состоянии сессии (сессия не активна, не завершена и т.д.).
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrUnauthorized используется для ошибок авторизации админ-панели.
	ErrUnauthorized = errors.New("unauthorized")
)
