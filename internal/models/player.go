// player.go

package models

import (
	"time"
)

// Player 玩家账号模型
type Player struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // 不序列化密码
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 战斗数据统计
	TotalKills   int `json:"total_kills"`
	TotalDeaths  int `json:"total_deaths"`
	TotalAssists int `json:"total_assists"`
	TotalMatches int `json:"total_matches"`
	TotalWins    int `json:"total_wins"`
}

// 注意：表结构定义已移至 pkg/db/schema.go 统一管理
