package gateway

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jacl-coder/ArenaStrike-Server/pkg/db"
	"github.com/jacl-coder/ArenaStrike-Server/pkg/token"
)

// AuthHandler 认证处理器。令牌本身是JWT，无需服务端会话表；
// 登出通过Redis黑名单使令牌提前失效。
type AuthHandler struct {
	useRedis bool
	tokenTTL time.Duration
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
	PlayerID int64  `json:"player_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		useRedis: db.RedisClient != nil,
		tokenTTL: 24 * time.Hour,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *AuthHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/validate", h.handleValidate)
	mux.HandleFunc("/auth/logout", h.handleLogout)
}

// handleLogin 处理登录请求
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	// 解析请求
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	// 验证用户名和密码
	playerID, err := h.validateCredentials(req.Username, req.Password)
	if err != nil {
		resp := AuthResponse{
			Success: false,
			Message: "用户名或密码错误",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	// 签发令牌
	tokenStr, err := token.Generate(playerID, req.Username)
	if err != nil {
		http.Error(w, "生成令牌失败", http.StatusInternalServerError)
		return
	}

	// 返回成功响应
	resp := AuthResponse{
		Success:  true,
		Message:  "登录成功",
		Token:    tokenStr,
		PlayerID: playerID,
		Username: req.Username,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleRegister 处理注册请求
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	// 解析请求
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	// 验证请求
	if req.Username == "" || req.Password == "" || req.Email == "" {
		http.Error(w, "缺少必要参数", http.StatusBadRequest)
		return
	}

	// 创建用户
	playerID, err := h.createUser(req.Username, req.Password, req.Email)
	if err != nil {
		resp := AuthResponse{
			Success: false,
			Message: fmt.Sprintf("注册失败: %v", err),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
		return
	}

	// 签发令牌
	tokenStr, err := token.Generate(playerID, req.Username)
	if err != nil {
		http.Error(w, "生成令牌失败", http.StatusInternalServerError)
		return
	}

	// 返回成功响应
	resp := AuthResponse{
		Success:  true,
		Message:  "注册成功",
		Token:    tokenStr,
		PlayerID: playerID,
		Username: req.Username,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleValidate 处理令牌验证请求
func (h *AuthHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	tokenStr := extractToken(r)
	if tokenStr == "" {
		http.Error(w, "未提供令牌", http.StatusBadRequest)
		return
	}

	playerID, username, ok := h.ValidateToken(tokenStr)
	if !ok {
		http.Error(w, "无效或已过期的令牌", http.StatusUnauthorized)
		return
	}

	// 返回成功响应
	resp := AuthResponse{
		Success:  true,
		Message:  "令牌有效",
		PlayerID: playerID,
		Username: username,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleLogout 处理登出请求
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	tokenStr := extractToken(r)
	if tokenStr == "" {
		http.Error(w, "未提供令牌", http.StatusBadRequest)
		return
	}

	// 加入黑名单直至自然过期
	h.revokeToken(tokenStr)

	// 返回成功响应
	resp := AuthResponse{
		Success: true,
		Message: "登出成功",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// validateCredentials 验证用户凭据
func (h *AuthHandler) validateCredentials(username, password string) (int64, error) {
	// 计算密码哈希
	hashedPassword := hashPassword(password)

	// 查询数据库
	var playerID int64
	err := db.DB.QueryRow("SELECT id FROM players WHERE username = $1 AND password = $2", username, hashedPassword).Scan(&playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("用户名或密码错误")
		}
		return 0, fmt.Errorf("数据库查询错误: %w", err)
	}

	return playerID, nil
}

// createUser 创建用户
func (h *AuthHandler) createUser(username, password, email string) (int64, error) {
	// 检查用户名是否已存在
	var count int
	err := db.DB.QueryRow("SELECT COUNT(*) FROM players WHERE username = $1", username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("数据库查询错误: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("用户名已存在")
	}

	// 检查邮箱是否已存在
	err = db.DB.QueryRow("SELECT COUNT(*) FROM players WHERE email = $1", email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("数据库查询错误: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("邮箱已被使用")
	}

	// 计算密码哈希
	hashedPassword := hashPassword(password)

	// 插入用户
	var playerID int64
	err = db.DB.QueryRow(
		"INSERT INTO players (username, password, email, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id",
		username, hashedPassword, email,
	).Scan(&playerID)
	if err != nil {
		return 0, fmt.Errorf("创建用户失败: %w", err)
	}

	return playerID, nil
}

// hashPassword 计算密码哈希
func hashPassword(password string) string {
	// 使用SHA-256哈希
	// 在实际应用中，应该使用更安全的哈希算法，如bcrypt
	hash := sha256.Sum256([]byte(password))
	return fmt.Sprintf("%x", hash)
}

// revokeToken 将令牌加入Redis黑名单
func (h *AuthHandler) revokeToken(tokenStr string) {
	if !h.useRedis {
		return
	}
	db.RedisClient.Set(db.Ctx, revokedKey(tokenStr), "1", h.tokenTTL)
}

// isRevoked 令牌是否已被登出
func (h *AuthHandler) isRevoked(tokenStr string) bool {
	if !h.useRedis {
		return false
	}
	exists, err := db.RedisClient.Exists(db.Ctx, revokedKey(tokenStr)).Result()
	return err == nil && exists > 0
}

// ValidateToken 验证令牌（供其他模块使用）
func (h *AuthHandler) ValidateToken(tokenStr string) (int64, string, bool) {
	claims, err := token.Parse(tokenStr)
	if err != nil {
		return 0, "", false
	}
	if h.isRevoked(tokenStr) {
		return 0, "", false
	}
	return claims.PlayerID, claims.Username, true
}

// extractToken 从请求头或查询参数提取令牌
func extractToken(r *http.Request) string {
	tokenStr := r.Header.Get("Authorization")
	if len(tokenStr) > 7 && tokenStr[:7] == "Bearer " {
		tokenStr = tokenStr[7:]
	}
	if tokenStr == "" {
		tokenStr = r.URL.Query().Get("token")
	}
	return tokenStr
}

func revokedKey(tokenStr string) string {
	sum := sha256.Sum256([]byte(tokenStr))
	return fmt.Sprintf("auth:revoked:%x", sum[:8])
}
