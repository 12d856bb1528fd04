package match

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
	"github.com/jacl-coder/ArenaStrike-Server/pkg/token"
)

// MatchHandler 匹配处理器
type MatchHandler struct {
	service *MatchService
}

// NewMatchHandler 创建匹配处理器
func NewMatchHandler(service *MatchService) *MatchHandler {
	return &MatchHandler{
		service: service,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *MatchHandler) RegisterHandlers(mux *http.ServeMux) {
	// 健康检查端点
	mux.HandleFunc("/health", h.handleHealth)

	// 匹配相关端点
	mux.HandleFunc("/match/join", h.handleJoinQueue)
	mux.HandleFunc("/match/leave", h.handleLeaveQueue)
	mux.HandleFunc("/match/status", h.handleMatchStatus)
	mux.HandleFunc("/match/assignment", h.handleAssignment)
}

// handleHealth 处理健康检查请求
func (h *MatchHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	if h.service == nil {
		http.Error(w, "服务未初始化", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// 匹配请求
type joinQueueRequest struct {
	Class    models.CharacterClass `json:"class"`
	GameMode models.GameMode       `json:"game_mode"`
}

// 匹配响应
type matchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// 匹配状态响应
type matchStatusResponse struct {
	Queues map[models.GameMode]int `json:"queues"`
}

// 匹配结果响应
type assignmentResponse struct {
	Matched   bool   `json:"matched"`
	SessionID string `json:"session_id,omitempty"`
}

// authPlayer 校验Authorization头中的登录令牌
func (h *MatchHandler) authPlayer(w http.ResponseWriter, r *http.Request) (*token.Claims, bool) {
	tokenStr := r.Header.Get("Authorization")
	if len(tokenStr) > 7 && tokenStr[:7] == "Bearer " {
		tokenStr = tokenStr[7:]
	}
	if tokenStr == "" {
		http.Error(w, "未授权", http.StatusUnauthorized)
		return nil, false
	}

	claims, err := token.Parse(tokenStr)
	if err != nil {
		http.Error(w, "令牌无效", http.StatusUnauthorized)
		return nil, false
	}
	return claims, true
}

// handleJoinQueue 处理加入匹配队列请求
func (h *MatchHandler) handleJoinQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := h.authPlayer(w, r)
	if !ok {
		return
	}

	// 解析请求
	var req joinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	// 验证请求
	if req.Class == "" || req.GameMode == "" {
		http.Error(w, "缺少必要参数", http.StatusBadRequest)
		return
	}
	if req.GameMode != models.FreeForAll && req.GameMode != models.TeamDeathMatch {
		http.Error(w, "未知的游戏模式", http.StatusBadRequest)
		return
	}

	// 添加到匹配队列
	if err := h.service.AddToQueue(claims.PlayerID, claims.Username, req.Class, req.GameMode); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 返回成功响应
	resp := matchResponse{
		Success: true,
		Message: "已加入匹配队列",
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}

// handleLeaveQueue 处理离开匹配队列请求
func (h *MatchHandler) handleLeaveQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "仅支持POST或DELETE方法", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := h.authPlayer(w, r)
	if !ok {
		return
	}

	gameModeStr := r.URL.Query().Get("game_mode")
	if gameModeStr == "" {
		http.Error(w, "缺少必要参数", http.StatusBadRequest)
		return
	}

	// 从队列移除
	success := h.service.RemoveFromQueue(claims.PlayerID, models.GameMode(gameModeStr))

	// 返回响应
	resp := matchResponse{
		Success: success,
		Message: "已离开匹配队列",
	}
	if !success {
		resp.Message = "玩家不在匹配队列中"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}

// handleMatchStatus 处理获取匹配状态请求
func (h *MatchHandler) handleMatchStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	// 获取所有队列长度
	queueLengths := h.service.GetAllQueueLengths()

	// 返回响应
	resp := matchStatusResponse{
		Queues: queueLengths,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}

// handleAssignment 查询本人的匹配结果。客户端匹配后轮询此接口，
// 拿到会话ID后连接游戏服务器。
func (h *MatchHandler) handleAssignment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := h.authPlayer(w, r)
	if !ok {
		return
	}

	sessionID, err := h.service.GetAssignment(claims.PlayerID)
	if err != nil {
		log.Printf("查询玩家 %d 匹配结果失败: %v", claims.PlayerID, err)
		http.Error(w, "查询匹配结果失败", http.StatusInternalServerError)
		return
	}

	resp := assignmentResponse{
		Matched:   sessionID != "",
		SessionID: sessionID,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}
