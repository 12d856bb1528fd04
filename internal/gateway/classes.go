// classes.go

package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// ClassHandler 职业信息处理器。职业表是静态配置，
// 客户端在选人界面用它展示属性面板。
type ClassHandler struct{}

// NewClassHandler 创建职业信息处理器
func NewClassHandler() *ClassHandler {
	return &ClassHandler{}
}

// RegisterHandlers 注册HTTP处理器
func (h *ClassHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/classes", h.handleListClasses)
	mux.HandleFunc("/classes/", h.handleClassDetail)
}

// ClassResponse 职业响应
type ClassResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ClassInfo 职业信息
type ClassInfo struct {
	Class models.CharacterClass `json:"class"`
	Stats models.ClassStats     `json:"stats"`
}

// handleListClasses 返回全部职业及其属性
func (h *ClassHandler) handleListClasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	classes := models.AllClasses()
	infos := make([]ClassInfo, 0, len(classes))
	for _, class := range classes {
		stats, _ := models.StatsFor(class)
		infos = append(infos, ClassInfo{Class: class, Stats: stats})
	}

	h.sendSuccessResponse(w, "查询成功", infos)
}

// handleClassDetail 返回单个职业的属性
func (h *ClassHandler) handleClassDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/classes/")
	class := models.CharacterClass(name)

	stats, ok := models.StatsFor(class)
	if !ok {
		h.sendErrorResponse(w, "未知职业", http.StatusNotFound)
		return
	}

	h.sendSuccessResponse(w, "查询成功", ClassInfo{Class: class, Stats: stats})
}

// sendSuccessResponse 发送成功响应
func (h *ClassHandler) sendSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	resp := ClassResponse{
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
func (h *ClassHandler) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	resp := ClassResponse{
		Success: false,
		Message: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码错误响应失败: %v", err)
	}
}
