package runtime

import "time"

// Clock - источник монотонного wall-clock времени в UTC.
// Вынесен в интерфейс, чтобы тесты могли управлять дедлайнами.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock возвращает часы на основе системного времени
func NewRealClock() Clock {
	return realClock{}
}
