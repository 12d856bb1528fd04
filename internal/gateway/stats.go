// stats.go

package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
	"github.com/jacl-coder/ArenaStrike-Server/pkg/db"
)

// StatsHandler 战绩处理器
type StatsHandler struct {
	store            *models.MatchStore
	redisLeaderboard *models.RedisLeaderboard
	useRedis         bool
}

// NewStatsHandler 创建战绩处理器
func NewStatsHandler() *StatsHandler {
	useRedis := db.RedisClient != nil
	var redisLeaderboard *models.RedisLeaderboard

	if useRedis {
		redisLeaderboard = models.NewRedisLeaderboard()
	}

	return &StatsHandler{
		store:            models.NewMatchStore(),
		redisLeaderboard: redisLeaderboard,
		useRedis:         useRedis,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *StatsHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/stats/player/", h.handlePlayerStats)
	mux.HandleFunc("/stats/matches/", h.handlePlayerMatches)
	mux.HandleFunc("/stats/match/", h.handleMatchRecord)
	mux.HandleFunc("/stats/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/stats/leaderboard/refresh", h.handleRefreshLeaderboard)
}

// StatsResponse 战绩响应
type StatsResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// LeaderboardResponse 排行榜响应
type LeaderboardResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Data    []models.LeaderboardEntry `json:"data"`
}

// handlePlayerStats 处理玩家战绩查询
func (h *StatsHandler) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 提取玩家ID
	path := strings.TrimPrefix(r.URL.Path, "/stats/player/")
	playerID, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		h.sendErrorResponse(w, "无效的玩家ID", http.StatusBadRequest)
		return
	}

	// 查询玩家战绩统计
	stats, err := h.store.GetPlayerStats(playerID)
	if err != nil {
		log.Printf("查询玩家战绩失败: %v", err)
		h.sendErrorResponse(w, "查询玩家战绩失败", http.StatusInternalServerError)
		return
	}

	h.sendSuccessResponse(w, "查询成功", stats)
}

// handlePlayerMatches 处理玩家对局历史查询
func (h *StatsHandler) handlePlayerMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 提取玩家ID
	path := strings.TrimPrefix(r.URL.Path, "/stats/matches/")
	playerID, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		h.sendErrorResponse(w, "无效的玩家ID", http.StatusBadRequest)
		return
	}

	// 解析查询参数
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	// 查询玩家对局历史
	matches, err := h.store.GetPlayerMatchHistory(playerID, limit)
	if err != nil {
		log.Printf("查询玩家对局历史失败: %v", err)
		h.sendErrorResponse(w, "查询对局历史失败", http.StatusInternalServerError)
		return
	}

	h.sendSuccessResponse(w, "查询成功", matches)
}

// handleMatchRecord 处理单场对局查询
func (h *StatsHandler) handleMatchRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	matchID := strings.TrimPrefix(r.URL.Path, "/stats/match/")
	if matchID == "" {
		h.sendErrorResponse(w, "缺少对局ID", http.StatusBadRequest)
		return
	}

	record, err := h.store.GetMatchRecord(matchID)
	if err != nil {
		log.Printf("查询对局记录失败: %v", err)
		h.sendErrorResponse(w, "查询对局记录失败", http.StatusInternalServerError)
		return
	}

	h.sendSuccessResponse(w, "查询成功", record)
}

// handleLeaderboard 处理排行榜查询
func (h *StatsHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 解析查询参数
	query := r.URL.Query()
	leaderboardType := query.Get("type")
	if leaderboardType == "" {
		leaderboardType = "score" // 默认按综合得分排序
	}

	limit := 50
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	// 验证排行榜类型
	validTypes := map[string]bool{
		"kills": true,
		"wins":  true,
		"score": true,
		"kda":   true,
	}

	if !validTypes[leaderboardType] {
		h.sendErrorResponse(w, "无效的排行榜类型", http.StatusBadRequest)
		return
	}

	// 查询排行榜
	leaderboard, err := h.getLeaderboard(models.LeaderboardType(leaderboardType), limit)
	if err != nil {
		log.Printf("查询排行榜失败: %v", err)
		h.sendErrorResponse(w, "查询排行榜失败", http.StatusInternalServerError)
		return
	}

	// 返回成功响应
	resp := LeaderboardResponse{
		Success: true,
		Message: "查询成功",
		Data:    leaderboard,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}

// handleRefreshLeaderboard 处理排行榜刷新
func (h *StatsHandler) handleRefreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	if !h.useRedis {
		h.sendErrorResponse(w, "Redis未启用，无需刷新", http.StatusBadRequest)
		return
	}

	// 刷新排行榜
	if err := h.redisLeaderboard.RefreshLeaderboard(); err != nil {
		log.Printf("刷新排行榜失败: %v", err)
		h.sendErrorResponse(w, "刷新排行榜失败", http.StatusInternalServerError)
		return
	}

	h.sendSuccessResponse(w, "排行榜刷新成功", nil)
}

// sendSuccessResponse 发送成功响应
func (h *StatsHandler) sendSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	resp := StatsResponse{
		Success: true,
		Message: message,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}

// sendErrorResponse 发送错误响应
func (h *StatsHandler) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	resp := StatsResponse{
		Success: false,
		Message: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码错误响应失败: %v", err)
	}
}

// getLeaderboard 获取排行榜，优先使用Redis
func (h *StatsHandler) getLeaderboard(leaderboardType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	if h.useRedis {
		entries, err := h.redisLeaderboard.GetLeaderboard(leaderboardType, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}

		// Redis失败或无数据时，刷新排行榜并重试
		log.Printf("Redis排行榜查询失败或无数据，刷新排行榜: %v", err)
		if refreshErr := h.redisLeaderboard.RefreshLeaderboard(); refreshErr == nil {
			if entries, err := h.redisLeaderboard.GetLeaderboard(leaderboardType, limit); err == nil {
				return entries, nil
			}
		}

		log.Printf("Redis排行榜刷新失败，回退到数据库查询")
	}

	// 回退到数据库查询
	return h.getLeaderboardFromDB(leaderboardType, limit)
}

// getLeaderboardFromDB 从数据库获取排行榜
func (h *StatsHandler) getLeaderboardFromDB(leaderboardType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	var orderBy string

	switch leaderboardType {
	case models.LeaderboardKills:
		orderBy = "p.total_kills DESC"
	case models.LeaderboardWins:
		orderBy = "p.total_wins DESC"
	case models.LeaderboardKDA:
		orderBy = "CASE WHEN p.total_deaths > 0 THEN ((p.total_kills + p.total_assists) * 1.0 / p.total_deaths) ELSE (p.total_kills + p.total_assists) END DESC"
	default:
		orderBy = "(p.total_wins * 10 + p.total_kills + p.total_assists * 0.5 - p.total_deaths * 0.5) DESC"
	}

	query := fmt.Sprintf(`
		SELECT
			p.id AS player_id,
			p.username,
			p.total_kills,
			p.total_wins,
			CASE WHEN p.total_matches > 0 THEN (p.total_wins * 100.0 / p.total_matches) ELSE 0 END AS win_rate,
			CASE WHEN p.total_deaths > 0 THEN ((p.total_kills + p.total_assists) * 1.0 / p.total_deaths)
				 ELSE (p.total_kills + p.total_assists) END AS kda,
			(p.total_wins * 10 + p.total_kills + p.total_assists * 0.5 - p.total_deaths * 0.5) AS score,
			ROW_NUMBER() OVER (ORDER BY %s) as rank
		FROM players p
		ORDER BY %s
		LIMIT $1
	`, orderBy, orderBy)

	rows, err := db.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("查询排行榜失败: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		err := rows.Scan(
			&entry.PlayerID, &entry.Username, &entry.TotalKills,
			&entry.TotalWins, &entry.WinRate, &entry.KDA, &entry.Score, &entry.Rank,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描排行榜数据失败: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历排行榜数据失败: %w", err)
	}

	return entries, nil
}
