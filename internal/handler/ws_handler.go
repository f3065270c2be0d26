package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/quizhost-api/internal/config"
	"github.com/yourusername/quizhost-api/internal/handler/dto"
	"github.com/yourusername/quizhost-api/internal/runtime"
	"github.com/yourusername/quizhost-api/internal/websocket"
)

// Частота heartbeat-пуша состояния наблюдателям: обратный отсчет
// дедлайна должен обновляться не реже раза в секунду
const stateHeartbeat = time.Second

// WSHandler обрабатывает WebSocket-подключения наблюдателей:
// экран ведущего и игроков
type WSHandler struct {
	controller *runtime.Controller
	upgrader   gorillaws.Upgrader
}

// NewWSHandler создает обработчик WebSocket
func NewWSHandler(controller *runtime.Controller, cors config.CORSConfig) *WSHandler {
	return &WSHandler{
		controller: controller,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Пустой Origin - не браузерный клиент, пропускаем
				if origin == "" {
					return true
				}
				for _, allowed := range cors.AllowedOrigins {
					if origin == allowed {
						return true
					}
				}
				log.Printf("[WSHandler] Отклонен неразрешенный origin: %s", origin)
				return false
			},
			EnableCompression: true,
		},
	}
}

// joinMessage - первое сообщение игрока
type joinMessage struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	PlayerID string `json:"player_id"`
}

// answerMessage - отправка ответа игроком
type answerMessage struct {
	Type   string  `json:"type"`
	Answer *string `json:"answer"`
}

// HandleAdmin подключает экран ведущего: после апгрейда сервер
// пушит состояние на каждое изменение и по heartbeat-таймеру
func (h *WSHandler) HandleAdmin(c *gin.Context) {
	sessionID := c.Param("session_id")
	if _, err := h.controller.State(sessionID); err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда admin-соединения: %v", err)
		return
	}

	client := websocket.NewClient(conn)
	h.controller.AttachSink(sessionID, client)
	log.Printf("[WSHandler] Ведущий подключен к сессии %s (%s)", sessionID, client.ConnectionID)

	go h.runHeartbeat(sessionID, client)

	// Входящие сообщения ведущего не обрабатываются; читаем до разрыва
	go func() {
		for range client.Incoming() {
		}
		h.controller.DetachSink(sessionID, client)
		log.Printf("[WSHandler] Ведущий отключен от сессии %s (%s)", sessionID, client.ConnectionID)
	}()
}

// HandlePlayer подключает игрока: первое сообщение - join,
// затем сервер пушит состояние, а клиент может слать ответы
func (h *WSHandler) HandlePlayer(c *gin.Context) {
	sessionID := c.Param("session_id")
	if _, err := h.controller.State(sessionID); err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда player-соединения: %v", err)
		return
	}

	client := websocket.NewClient(conn)
	go h.runPlayerSession(sessionID, client)
}

// runPlayerSession ведет жизненный цикл соединения игрока
func (h *WSHandler) runPlayerSession(sessionID string, client *websocket.Client) {
	defer client.Close()

	playerID, ok := h.awaitJoin(sessionID, client)
	if !ok {
		return
	}

	h.controller.AttachSink(sessionID, client)
	go h.runHeartbeat(sessionID, client)

	for raw := range client.Incoming() {
		var msg answerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type != "answer" {
			continue
		}
		// Закрытое окно, дубль или чужая сессия игнорируются молча
		h.controller.SubmitAnswer(sessionID, playerID, msg.Answer)
	}

	h.controller.DetachSink(sessionID, client)
	h.controller.DisconnectPlayer(sessionID, playerID)
	log.Printf("[WSHandler] Игрок %s отключен от сессии %s", playerID, sessionID)
}

// awaitJoin ждет первое сообщение join и регистрирует игрока
func (h *WSHandler) awaitJoin(sessionID string, client *websocket.Client) (string, bool) {
	var raw []byte
	select {
	case raw = <-client.Incoming():
	case <-client.Done():
		return "", false
	case <-time.After(30 * time.Second):
		log.Printf("[WSHandler] Игрок не прислал join за 30с, закрытие (%s)", client.ConnectionID)
		return "", false
	}

	var msg joinMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != "join" || msg.Name == "" {
		h.sendJSON(client, gin.H{"type": "error", "error": "expected join message with name"})
		return "", false
	}

	player, err := h.controller.RegisterPlayer(sessionID, msg.Name, msg.PlayerID)
	if err != nil {
		h.sendJSON(client, gin.H{"type": "error", "error": err.Error()})
		return "", false
	}

	h.sendJSON(client, gin.H{"type": "welcome", "player": dto.NewPlayerResponse(player)})
	log.Printf("[WSHandler] Игрок %s вошел в сессию %s", player.ID, sessionID)
	return player.ID, true
}

// runHeartbeat пушит снапшот состояния раз в секунду до разрыва соединения
func (h *WSHandler) runHeartbeat(sessionID string, client *websocket.Client) {
	ticker := time.NewTicker(stateHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			state, err := h.controller.State(sessionID)
			if err != nil {
				return
			}
			h.sendJSON(client, gin.H{"type": "state", "state": state})
		case <-client.Done():
			return
		}
	}
}

func (h *WSHandler) sendJSON(client *websocket.Client, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Send(payload)
}
