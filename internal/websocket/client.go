package websocket

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"fundingarb/pkg/utils"
)

const (
	// Дедлайн на запись одного сообщения
	writeWait = 10 * time.Second

	// Максимальная пауза между pong от клиента
	pongWait = 60 * time.Second

	// Интервал ping (должен быть меньше pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Поток односторонний, от клиента ждём только ping/pong
	maxIncomingSize = 1024

	// Буфер исходящих сообщений на клиента. Цикл решений генерирует
	// максимум несколько сообщений раз в cycle_interval, так что
	// переполнение означает мёртвого клиента, а не всплеск нагрузки.
	clientSendBufferSize = 64
)

// checkStreamOrigin проверяет Origin входящего upgrade-запроса.
// Список разрешённых доменов берётся из ALLOWED_ORIGINS (через
// запятую); пустое значение или "*" разрешает всё, это режим
// локальной разработки.
func checkStreamOrigin(origin string) bool {
	if origin == "" {
		// curl и другие не-браузерные клиенты
		return true
	}
	env := os.Getenv("ALLOWED_ORIGINS")
	if env == "" || env == "*" {
		return true
	}
	for _, allowed := range strings.Split(env, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return checkStreamOrigin(r.Header.Get("Origin"))
	},
	EnableCompression: true,
}

// Client - одно WebSocket соединение дашборда.
//
// Поток событий односторонний: сервер шлёт итоги циклов, состояние
// риск-машины и уведомления, клиент ничего не присылает. На каждое
// соединение работают две горутины: readPump следит за живостью
// соединения, writePump выгружает канал send.
type Client struct {
	conn *websocket.Conn
	hub  *Hub
	send chan []byte
}

// readPump следит за соединением со стороны клиента.
//
// Входящие сообщения отбрасываются, но цикл чтения нужен: через него
// работают pong-хендлер и детект обрыва соединения.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxIncomingSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.Warn("websocket read error", utils.Err(err))
			}
			return
		}
	}
}

// writePump выгружает канал send в соединение.
//
// Накопившиеся в буфере сообщения отправляются одним фреймом через
// newline: дашборд всё равно парсит их построчно, а фреймов меньше.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub отключил клиента
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

		drain:
			for {
				select {
				case queued, ok := <-c.send:
					if !ok {
						break drain
					}
					w.Write([]byte{'\n'})
					w.Write(queued)
				default:
					break drain
				}
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS апгрейдит HTTP соединение до WebSocket и регистрирует
// клиента в hub. Используется из роутера:
//
//	router.HandleFunc("/ws/stream", func(w, r) { websocket.ServeWS(hub, w, r) })
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("websocket upgrade failed", utils.Err(err))
		return
	}

	client := &Client{
		conn: conn,
		hub:  hub,
		send: make(chan []byte, clientSendBufferSize),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}
