// websocket.go

package game

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jacl-coder/ArenaStrike-Server/internal/protocol"
	"github.com/jacl-coder/ArenaStrike-Server/pkg/token"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 64 * 1024 // 64KB
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PlayerConnection 玩家连接
type PlayerConnection struct {
	ID         string
	PlayerID   int64
	SessionID  string
	LastActive time.Time

	// 发送通道
	Send chan []byte

	// 连接状态
	IsAlive bool
	conn    *websocket.Conn
}

// handleWSConnection 处理WebSocket连接。客户端在查询参数中携带
// 匹配服务下发的会话ID和登录令牌。
func (s *GameServer) handleWSConnection(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	tokenStr := r.URL.Query().Get("token")

	if sessionID == "" || tokenStr == "" {
		http.Error(w, "未授权", http.StatusUnauthorized)
		return
	}

	claims, err := token.Parse(tokenStr)
	if err != nil {
		http.Error(w, "令牌无效", http.StatusUnauthorized)
		return
	}

	// 玩家必须在名单上
	session, exists := s.GetSession(sessionID)
	if !exists {
		http.Error(w, "会话不存在", http.StatusNotFound)
		return
	}
	if !session.HasPlayer(claims.PlayerID) {
		http.Error(w, "玩家不在该会话中", http.StatusForbidden)
		return
	}

	// 升级HTTP连接为WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		return
	}

	// 创建玩家连接
	playerConn := &PlayerConnection{
		ID:         uuid.New().String(),
		PlayerID:   claims.PlayerID,
		SessionID:  sessionID,
		LastActive: time.Now(),
		Send:       make(chan []byte, 256),
		IsAlive:    true,
		conn:       conn,
	}

	// 添加到连接列表
	s.connMutex.Lock()
	s.connections[playerConn.ID] = playerConn
	s.connMutex.Unlock()

	log.Printf("玩家 %d 已连接到会话 %s", claims.PlayerID, sessionID)

	// 启动读写协程
	go s.readPump(conn, playerConn)
	go s.writePump(conn, playerConn)
}

// readPump 从WebSocket读取数据
func (s *GameServer) readPump(conn *websocket.Conn, player *PlayerConnection) {
	defer func() {
		s.closeConnection(player)
		conn.Close()
	}()

	// 设置读取参数
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket错误: %v", err)
			}
			break
		}

		player.LastActive = time.Now()

		// 处理接收到的消息
		s.handleMessage(player, message)
	}
}

// writePump 向WebSocket写入数据
func (s *GameServer) writePump(conn *websocket.Conn, player *PlayerConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-player.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 添加队列中的其他消息
			n := len(player.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-player.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection 关闭玩家连接。断线视同离开会话。
func (s *GameServer) closeConnection(player *PlayerConnection) {
	s.connMutex.Lock()

	// 检查连接是否已关闭
	if _, ok := s.connections[player.ID]; !ok {
		s.connMutex.Unlock()
		return
	}

	// 关闭发送通道
	close(player.Send)

	// 从连接列表移除
	delete(s.connections, player.ID)
	s.connMutex.Unlock()

	// 从会话移除玩家
	if session, exists := s.GetSession(player.SessionID); exists {
		if err := session.RemovePlayer(player.PlayerID); err != nil && err != ErrUnknownPlayer {
			log.Printf("移除玩家 %d 失败: %v", player.PlayerID, err)
		}
	}

	log.Printf("玩家 %d 已断开连接", player.PlayerID)
}

// handleMessage 处理接收到的消息
func (s *GameServer) handleMessage(player *PlayerConnection, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("解析消息失败: %v", err)
		return
	}

	switch msg.Type {
	case protocol.MsgTypeInput:
		s.handlePlayerInput(player, msg.Payload)
	case protocol.MsgTypeReady:
		s.handlePlayerReady(player, true)
	case protocol.MsgTypeUnready:
		s.handlePlayerReady(player, false)
	case protocol.MsgTypeLeave:
		s.handlePlayerLeave(player)
	default:
		log.Printf("未知消息类型: %s", msg.Type)
	}
}

// handlePlayerInput 处理玩家输入
func (s *GameServer) handlePlayerInput(player *PlayerConnection, payload json.RawMessage) {
	var in protocol.InputPayload
	if err := json.Unmarshal(payload, &in); err != nil {
		log.Printf("解析输入失败: %v", err)
		return
	}

	if err := s.SubmitInput(player.SessionID, player.PlayerID, in.Input); err != nil {
		s.sendError(player, err)
	}
}

// handlePlayerReady 处理玩家准备/取消准备
func (s *GameServer) handlePlayerReady(player *PlayerConnection, ready bool) {
	if err := s.SetReady(player.SessionID, player.PlayerID, ready); err != nil {
		s.sendError(player, err)
	}
}

// handlePlayerLeave 处理玩家主动离开
func (s *GameServer) handlePlayerLeave(player *PlayerConnection) {
	if err := s.LeaveSession(player.SessionID, player.PlayerID); err != nil {
		s.sendError(player, err)
		return
	}
	s.closeConnection(player)
}

// sendError 向玩家发送错误消息
func (s *GameServer) sendError(player *PlayerConnection, err error) {
	data, encErr := protocol.Encode(protocol.MsgTypeError, protocol.ErrorMessage{Message: err.Error()})
	if encErr != nil {
		log.Printf("序列化错误消息失败: %v", encErr)
		return
	}
	s.sendRaw(player, data)
}

// sendRaw 向玩家发送已序列化的消息
func (s *GameServer) sendRaw(player *PlayerConnection, data []byte) {
	select {
	case player.Send <- data:
		// 消息已发送到通道
	default:
		// 通道已满，关闭连接
		go s.closeConnection(player)
	}
}

// broadcastToSession 向会话内所有连接广播消息
func (s *GameServer) broadcastToSession(sessionID string, data []byte) {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()

	for _, player := range s.connections {
		if player.SessionID != sessionID {
			continue
		}
		select {
		case player.Send <- data:
			// 消息已发送到通道
		default:
			// 通道已满，关闭连接
			go s.closeConnection(player)
		}
	}
}
