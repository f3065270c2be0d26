// Package websocket содержит клиентскую обвязку WebSocket-соединений:
// насосы чтения/записи, ping/pong и неблокирующую отправку.
package websocket

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 4096

	// Размер буфера канала исходящих сообщений
	sendBufferSize = 128
)

// Client оборачивает одно WebSocket-соединение наблюдателя.
// Реализует runtime.Sink: Send кладет payload в буферизованный канал
// и возвращает ошибку только на переполнении или закрытом соединении -
// отстающий наблюдатель отбрасывается рассылкой, а не блокирует ее.
type Client struct {
	// ConnectionID уникален для каждого соединения
	ConnectionID string

	conn *websocket.Conn
	send chan []byte

	sendClosed atomic.Bool
	closeOnce  sync.Once
	done       chan struct{}

	// incoming получает текстовые сообщения клиента из насоса чтения
	incoming chan []byte
}

// NewClient создает клиента поверх установленного соединения
// и запускает насосы чтения и записи
func NewClient(conn *websocket.Conn) *Client {
	client := &Client{
		ConnectionID: uuid.NewString(),
		conn:         conn,
		send:         make(chan []byte, sendBufferSize),
		done:         make(chan struct{}),
		incoming:     make(chan []byte, 16),
	}
	go client.writePump()
	go client.readPump()
	return client
}

// Send реализует runtime.Sink. Не блокируется: при переполнении
// буфера соединение считается мертвым.
func (c *Client) Send(payload []byte) error {
	if c.sendClosed.Load() {
		return websocket.ErrCloseSent
	}
	select {
	case c.send <- payload:
		return nil
	default:
		log.Printf("[WSClient] Переполнен буфер отправки соединения %s, закрытие", c.ConnectionID)
		c.Close()
		return websocket.ErrCloseSent
	}
}

// Incoming возвращает канал входящих сообщений клиента.
// Канал закрывается при разрыве соединения.
func (c *Client) Incoming() <-chan []byte {
	return c.incoming
}

// Done закрывается, когда соединение завершено
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close завершает соединение. Идемпотентен.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.sendClosed.Store(true)
		close(c.done)
		c.conn.Close()
	})
}

// readPump читает входящие сообщения и поддерживает pong-дедлайн
func (c *Client) readPump() {
	defer func() {
		c.Close()
		close(c.incoming)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WSClient] Неожиданное закрытие соединения %s: %v", c.ConnectionID, err)
			}
			return
		}
		select {
		case c.incoming <- message:
		case <-c.done:
			return
		}
	}
}

// writePump пишет исходящие сообщения и шлет периодические ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
