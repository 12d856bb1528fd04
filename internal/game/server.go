package game

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jacl-coder/ArenaStrike-Server/config"
	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
	"github.com/jacl-coder/ArenaStrike-Server/internal/protocol"
)

// GameServer 游戏服务器
type GameServer struct {
	config        *config.Config
	sessions      map[string]*Session
	sessionsMutex sync.RWMutex
	httpServer    *http.Server
	connections   map[string]*PlayerConnection
	connMutex     sync.RWMutex

	store       *models.MatchStore
	leaderboard *models.RedisLeaderboard

	// 关闭信号
	shutdown  chan struct{}
	isRunning bool
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg *config.Config) *GameServer {
	return &GameServer{
		config:      cfg,
		sessions:    make(map[string]*Session),
		connections: make(map[string]*PlayerConnection),
		store:       models.NewMatchStore(),
		leaderboard: models.NewRedisLeaderboard(),
		shutdown:    make(chan struct{}),
	}
}

// Start 启动游戏服务器
func (s *GameServer) Start() error {
	if s.isRunning {
		return fmt.Errorf("服务器已经在运行")
	}

	// 初始化HTTP服务器
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.GamePort),
		Handler: s.createHandler(),
	}

	// 启动HTTP服务器
	go func() {
		log.Printf("游戏服务器启动，监听端口: %d", s.config.Server.GamePort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	// 启动会话管理
	go s.sessionManager()

	s.isRunning = true
	return nil
}

// Stop 停止游戏服务器
func (s *GameServer) Stop() error {
	if !s.isRunning {
		return nil
	}

	// 发送关闭信号
	close(s.shutdown)

	// 关闭所有会话
	s.sessionsMutex.Lock()
	for _, session := range s.sessions {
		session.Stop()
	}
	s.sessionsMutex.Unlock()

	// 关闭所有连接
	s.connMutex.Lock()
	for _, conn := range s.connections {
		close(conn.Send)
		if conn.conn != nil {
			conn.conn.Close()
		}
	}
	s.connMutex.Unlock()

	// 关闭HTTP服务器
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}

	s.isRunning = false
	log.Println("游戏服务器已停止")
	return nil
}

// createHandler 创建HTTP处理器
func (s *GameServer) createHandler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket 连接端点
	mux.HandleFunc("/ws", s.handleWSConnection)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// sessionManager 会话管理器
func (s *GameServer) sessionManager() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupSessions()
		case <-s.shutdown:
			return
		}
	}
}

// cleanupSessions 清理已结束或空闲的会话
func (s *GameServer) cleanupSessions() {
	s.sessionsMutex.Lock()
	defer s.sessionsMutex.Unlock()

	for id, session := range s.sessions {
		if session.ShouldCleanup() {
			log.Printf("清理空闲会话: %s", id)
			session.Stop()
			delete(s.sessions, id)
		}
	}
}

// MatchConfigForMode 根据全局配置构造指定模式的对局配置
func MatchConfigForMode(cfg *config.Config, mode models.GameMode) models.MatchConfig {
	spawns := make([]models.Vector2D, 0, len(cfg.Game.SpawnPoints))
	for _, sp := range cfg.Game.SpawnPoints {
		spawns = append(spawns, models.Vector2D{X: sp.X, Y: sp.Y})
	}

	return models.MatchConfig{
		Mode:            mode,
		MaxRounds:       cfg.Game.MaxRounds,
		WarmupDuration:  cfg.Game.WarmupDuration,
		RoundStartDelay: cfg.Game.RoundStartDelay,
		RoundEndDelay:   cfg.Game.RoundEndDelay,
		RoundDuration:   cfg.Game.RoundDuration,
		PlayersPerTeam:  cfg.Game.PlayersPerTeam,
		TeamCount:       cfg.Game.TeamCount,
		MinPlayers:      cfg.Game.MinPlayers,
		ReadyTimeout:    cfg.Game.ReadyTimeout,
		FriendlyFire:    false,
		CritChance:      cfg.Game.CritChance,
		CritMultiplier:  cfg.Game.CritMultiplier,
		ArenaWidth:      cfg.Game.ArenaWidth,
		ArenaHeight:     cfg.Game.ArenaHeight,
		SpawnPoints:     spawns,
	}
}

// CreateSession 创建对局会话并启动模拟
func (s *GameServer) CreateSession(players []models.PlayerInfo, mode models.GameMode) (*Session, error) {
	s.sessionsMutex.Lock()
	defer s.sessionsMutex.Unlock()

	if len(s.sessions) >= s.config.Server.MaxSessionCount {
		return nil, fmt.Errorf("会话数量已达上限 %d", s.config.Server.MaxSessionCount)
	}

	cfg := MatchConfigForMode(s.config, mode)
	tickInterval := time.Duration(s.config.Game.TickIntervalMs) * time.Millisecond

	session, err := NewSession(players, cfg, &serverSink{server: s}, tickInterval, time.Now().UnixNano())
	if err != nil {
		return nil, err
	}

	s.sessions[session.ID] = session
	if err := session.Start(); err != nil {
		delete(s.sessions, session.ID)
		return nil, err
	}

	log.Printf("创建会话: %s, 模式: %s, 玩家数: %d", session.ID, mode, len(players))
	return session, nil
}

// GetSession 获取会话
func (s *GameServer) GetSession(sessionID string) (*Session, bool) {
	s.sessionsMutex.RLock()
	defer s.sessionsMutex.RUnlock()

	session, exists := s.sessions[sessionID]
	return session, exists
}

// SubmitInput 将玩家输入转发到所属会话
func (s *GameServer) SubmitInput(sessionID string, playerID int64, input models.PlayerInput) error {
	session, exists := s.GetSession(sessionID)
	if !exists {
		return ErrUnknownSession
	}
	return session.SubmitInput(playerID, input)
}

// SetReady 设置玩家准备状态
func (s *GameServer) SetReady(sessionID string, playerID int64, ready bool) error {
	session, exists := s.GetSession(sessionID)
	if !exists {
		return ErrUnknownSession
	}
	return session.SetReady(playerID, ready)
}

// GetSnapshot 获取会话快照
func (s *GameServer) GetSnapshot(sessionID string) (models.Snapshot, error) {
	session, exists := s.GetSession(sessionID)
	if !exists {
		return models.Snapshot{}, ErrUnknownSession
	}
	return session.Snapshot(), nil
}

// LeaveSession 玩家主动离开会话
func (s *GameServer) LeaveSession(sessionID string, playerID int64) error {
	session, exists := s.GetSession(sessionID)
	if !exists {
		return ErrUnknownSession
	}
	return session.RemovePlayer(playerID)
}

// serverSink 将会话事件广播给连接的客户端并在对局结束时落库
type serverSink struct {
	server *GameServer
}

func (k *serverSink) OnMatchStateChanged(sessionID string, state models.MatchState) {
	k.server.broadcastEvent(sessionID, protocol.MsgTypeStateChanged, protocol.StateChangedEvent{State: state})
}

func (k *serverSink) OnRoundStarted(sessionID string, round int) {
	k.server.broadcastEvent(sessionID, protocol.MsgTypeRoundStarted, protocol.RoundStartedEvent{Round: round})
}

func (k *serverSink) OnRoundEnded(sessionID string, result models.RoundResult) {
	k.server.broadcastEvent(sessionID, protocol.MsgTypeRoundEnded, result)
}

func (k *serverSink) OnMatchEnded(sessionID string, result models.MatchResult) {
	event := protocol.MatchEndedEvent{Result: result}
	for _, r := range result.Rankings {
		switch r.Place {
		case 1:
			event.First = r.PlayerID
		case 2:
			event.Second = r.PlayerID
		case 3:
			event.Third = r.PlayerID
		}
	}
	k.server.broadcastEvent(sessionID, protocol.MsgTypeMatchEnded, event)

	// 落库与排行榜更新不能阻塞模拟协程
	go k.server.persistResult(result)
}

func (k *serverSink) OnPlayerDied(sessionID string, victimID, killerID int64) {
	k.server.broadcastEvent(sessionID, protocol.MsgTypePlayerDied, protocol.PlayerDiedEvent{
		VictimID: victimID,
		KillerID: killerID,
	})
}

func (k *serverSink) OnDamageApplied(sessionID string, event models.DamageEvent) {
	k.server.broadcastEvent(sessionID, protocol.MsgTypeDamage, event)
}

func (k *serverSink) OnFrame(sessionID string, snap models.Snapshot) {
	frame := protocol.FrameFromSnapshot(snap)
	data, err := protocol.Encode(protocol.MsgTypeStateFrame, frame)
	if err != nil {
		log.Printf("序列化状态帧失败: %v", err)
		return
	}
	k.server.broadcastToSession(sessionID, data)
}

// broadcastEvent 序列化事件并广播到会话内所有连接
func (s *GameServer) broadcastEvent(sessionID string, msgType protocol.MessageType, payload interface{}) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		log.Printf("序列化事件失败 %s: %v", msgType, err)
		return
	}
	s.broadcastToSession(sessionID, data)
}

// persistResult 对局结果落库并刷新排行榜
func (s *GameServer) persistResult(result models.MatchResult) {
	// 一个回合都没打完的对局(取消、全员离开)不留记录
	if result.Rounds == 0 {
		return
	}
	if err := s.store.SaveMatchResult(&result); err != nil {
		log.Printf("保存对局结果失败 %s: %v", result.MatchID, err)
		return
	}

	for _, r := range result.Rankings {
		if err := s.leaderboard.UpdateAfterMatch(r.PlayerID); err != nil {
			log.Printf("更新玩家 %d 排行榜失败: %v", r.PlayerID, err)
		}
	}
}
