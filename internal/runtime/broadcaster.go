package runtime

import (
	"log"
	"sync"
)

// Sink - исходящий канал наблюдателя, в который рассылаются состояния.
// Send не должен блокироваться надолго; ошибка отправки означает
// мертвое соединение, и синк удаляется из рассылки.
type Sink interface {
	Send(payload []byte) error
}

// Broadcaster ведет набор синков наблюдателей по каждой сессии
// и рассылает им снапшоты состояния. Отправка fire-and-forget:
// отставший или умерший наблюдатель не блокирует контроллер.
type Broadcaster struct {
	mu    sync.Mutex
	sinks map[string]map[Sink]struct{}
}

// NewBroadcaster создает пустой брокер рассылки
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		sinks: make(map[string]map[Sink]struct{}),
	}
}

// Attach добавляет синк наблюдателя к сессии
func (b *Broadcaster) Attach(sessionID string, sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sinks[sessionID] == nil {
		b.sinks[sessionID] = make(map[Sink]struct{})
	}
	b.sinks[sessionID][sink] = struct{}{}
}

// Detach удаляет синк наблюдателя из сессии
func (b *Broadcaster) Detach(sessionID string, sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.sinks[sessionID]; ok {
		delete(set, sink)
		if len(set) == 0 {
			delete(b.sinks, sessionID)
		}
	}
}

// Clear удаляет все синки сессии (используется при cancel)
func (b *Broadcaster) Clear(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sinks, sessionID)
}

// Count возвращает число подключенных синков сессии
func (b *Broadcaster) Count(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sinks[sessionID])
}

// Broadcast рассылает готовый payload всем синкам сессии.
// Синк, вернувший ошибку отправки, молча удаляется; остальные
// наблюдатели не затрагиваются.
func (b *Broadcaster) Broadcast(sessionID string, payload []byte) {
	b.mu.Lock()
	targets := make([]Sink, 0, len(b.sinks[sessionID]))
	for sink := range b.sinks[sessionID] {
		targets = append(targets, sink)
	}
	b.mu.Unlock()

	var dead []Sink
	for _, sink := range targets {
		if err := sink.Send(payload); err != nil {
			dead = append(dead, sink)
		}
	}

	if len(dead) > 0 {
		b.mu.Lock()
		if set, ok := b.sinks[sessionID]; ok {
			for _, sink := range dead {
				delete(set, sink)
			}
			if len(set) == 0 {
				delete(b.sinks, sessionID)
			}
		}
		b.mu.Unlock()
		log.Printf("[Broadcaster] Удалено %d мертвых наблюдателей сессии %s", len(dead), sessionID)
	}
}
