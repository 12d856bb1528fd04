// service.go

package match

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jacl-coder/ArenaStrike-Server/config"
	"github.com/jacl-coder/ArenaStrike-Server/internal/game"
	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
	"github.com/jacl-coder/ArenaStrike-Server/pkg/db"
)

// 匹配结果在Redis中的保留时长，客户端在此期间内凭它连接游戏服务器
const assignmentTTL = 2 * time.Minute

// MatchRequest 匹配请求
type MatchRequest struct {
	PlayerID  int64
	Name      string
	Class     models.CharacterClass
	GameMode  models.GameMode
	Timestamp time.Time
}

// MatchService 匹配服务
type MatchService struct {
	// 匹配队列，按游戏模式分类
	queues      map[models.GameMode][]*MatchRequest
	queuesMutex sync.RWMutex

	// 游戏服务器引用
	gameServer *game.GameServer

	// 匹配配置
	config *config.Config

	// HTTP服务器
	httpServer *http.Server
	handler    *MatchHandler

	// 控制通道
	shutdown  chan struct{}
	isRunning bool
}

// NewMatchService 创建匹配服务
func NewMatchService(cfg *config.Config, gameServer *game.GameServer) *MatchService {
	service := &MatchService{
		queues:     make(map[models.GameMode][]*MatchRequest),
		gameServer: gameServer,
		config:     cfg,
		shutdown:   make(chan struct{}),
	}

	// 创建处理器
	service.handler = NewMatchHandler(service)

	return service
}

// Start 启动匹配服务
func (s *MatchService) Start() error {
	if s.isRunning {
		return fmt.Errorf("匹配服务已经在运行")
	}

	log.Println("匹配服务启动")
	s.isRunning = true

	// 创建HTTP服务器
	mux := http.NewServeMux()
	s.handler.RegisterHandlers(mux)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.MatchPort),
		Handler: mux,
	}

	// 启动HTTP服务器
	go func() {
		log.Printf("匹配服务HTTP服务器启动，监听端口: %d", s.config.Server.MatchPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("匹配服务HTTP服务器错误: %v", err)
		}
	}()

	// 启动匹配循环
	go s.matchLoop()

	return nil
}

// Stop 停止匹配服务
func (s *MatchService) Stop() {
	if !s.isRunning {
		return
	}

	close(s.shutdown)
	s.isRunning = false

	// 关闭HTTP服务器
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}

	log.Println("匹配服务已停止")
}

// AddToQueue 添加玩家到匹配队列。同一玩家重复排队时更新职业并保留原位次。
func (s *MatchService) AddToQueue(playerID int64, name string, class models.CharacterClass, gameMode models.GameMode) error {
	if _, ok := models.StatsFor(class); !ok {
		return fmt.Errorf("未知职业: %s", class)
	}

	s.queuesMutex.Lock()
	defer s.queuesMutex.Unlock()

	for _, queue := range s.queues {
		for _, req := range queue {
			if req.PlayerID == playerID {
				req.Class = class
				return nil
			}
		}
	}

	request := &MatchRequest{
		PlayerID:  playerID,
		Name:      name,
		Class:     class,
		GameMode:  gameMode,
		Timestamp: time.Now(),
	}

	s.queues[gameMode] = append(s.queues[gameMode], request)
	log.Printf("玩家 %d 加入 %s 模式的匹配队列", playerID, gameMode)
	return nil
}

// RemoveFromQueue 从匹配队列移除玩家
func (s *MatchService) RemoveFromQueue(playerID int64, gameMode models.GameMode) bool {
	s.queuesMutex.Lock()
	defer s.queuesMutex.Unlock()

	queue, ok := s.queues[gameMode]
	if !ok {
		return false
	}

	for i, req := range queue {
		if req.PlayerID == playerID {
			s.queues[gameMode] = append(queue[:i], queue[i+1:]...)
			log.Printf("玩家 %d 离开 %s 模式的匹配队列", playerID, gameMode)
			return true
		}
	}

	return false
}

// GetQueueLength 获取队列长度
func (s *MatchService) GetQueueLength(gameMode models.GameMode) int {
	s.queuesMutex.RLock()
	defer s.queuesMutex.RUnlock()

	if queue, ok := s.queues[gameMode]; ok {
		return len(queue)
	}
	return 0
}

// GetAllQueueLengths 获取所有队列长度
func (s *MatchService) GetAllQueueLengths() map[models.GameMode]int {
	s.queuesMutex.RLock()
	defer s.queuesMutex.RUnlock()

	result := make(map[models.GameMode]int)
	for mode, queue := range s.queues {
		result[mode] = len(queue)
	}
	return result
}

// GetAssignment 查询玩家的匹配结果，未匹配时返回空串
func (s *MatchService) GetAssignment(playerID int64) (string, error) {
	if db.RedisClient == nil {
		return "", fmt.Errorf("Redis尚未初始化")
	}

	sessionID, err := db.RedisClient.Get(db.Ctx, assignmentKey(playerID)).Result()
	if err != nil {
		return "", nil
	}
	return sessionID, nil
}

// matchLoop 匹配循环
func (s *MatchService) matchLoop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processMatching()
		case <-s.shutdown:
			return
		}
	}
}

// processMatching 处理匹配。队列先进先出，凑满一局人数就开一场。
func (s *MatchService) processMatching() {
	s.queuesMutex.Lock()
	defer s.queuesMutex.Unlock()

	for mode, queue := range s.queues {
		playersNeeded := s.playersNeededForMode(mode)

		if len(queue) < playersNeeded {
			continue
		}

		matched := queue[:playersNeeded]
		players := make([]models.PlayerInfo, 0, playersNeeded)
		for _, req := range matched {
			players = append(players, models.PlayerInfo{
				PlayerID: req.PlayerID,
				Name:     req.Name,
				Class:    req.Class,
			})
		}

		session, err := s.gameServer.CreateSession(players, mode)
		if err != nil {
			log.Printf("创建会话失败: %v", err)
			continue
		}

		s.queues[mode] = queue[playersNeeded:]

		// 结果写入Redis，客户端轮询状态接口取会话ID后连接游戏服务器
		for _, req := range matched {
			if err := s.storeAssignment(req.PlayerID, session.ID); err != nil {
				log.Printf("记录玩家 %d 匹配结果失败: %v", req.PlayerID, err)
			}
			log.Printf("玩家 %d 匹配成功，会话ID: %s", req.PlayerID, session.ID)
		}
	}
}

// playersNeededForMode 根据游戏模式获取一局需要的玩家数量
func (s *MatchService) playersNeededForMode(mode models.GameMode) int {
	gc := s.config.Game
	switch mode {
	case models.TeamDeathMatch:
		return gc.PlayersPerTeam * gc.TeamCount
	default:
		if gc.MinPlayers > 0 {
			return gc.MinPlayers
		}
		return 2
	}
}

// storeAssignment 将匹配结果写入Redis
func (s *MatchService) storeAssignment(playerID int64, sessionID string) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis尚未初始化")
	}
	return db.RedisClient.Set(db.Ctx, assignmentKey(playerID), sessionID, assignmentTTL).Err()
}

func assignmentKey(playerID int64) string {
	return fmt.Sprintf("match:assignment:%d", playerID)
}
