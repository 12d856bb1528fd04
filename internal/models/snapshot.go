// snapshot.go

package models

// CombatantView 战斗单位的只读投影
type CombatantView struct {
	PlayerID   int64          `json:"player_id"`
	Name       string         `json:"name"`
	Class      CharacterClass `json:"class"`
	Team       TeamID         `json:"team"`
	Position   Vector2D       `json:"position"`
	Health     float64        `json:"health"`
	MaxHealth  float64        `json:"max_health"`
	Shield     float64        `json:"shield"`
	MaxShield  float64        `json:"max_shield"`
	IsAlive    bool           `json:"is_alive"`
	Kills      int            `json:"kills"`
	Deaths     int            `json:"deaths"`
	DashStacks int            `json:"dash_stacks"`
}

// ProjectileView 投射物的只读投影
type ProjectileView struct {
	ID       string   `json:"id"`
	OwnerID  int64    `json:"owner_id"`
	Position Vector2D `json:"position"`
	Velocity Vector2D `json:"velocity"`
}

// Snapshot 会话状态的只读投影，供UI与复制层读取。
// 快照是深拷贝，持有方不能通过它影响权威状态。
type Snapshot struct {
	SessionID     string           `json:"session_id"`
	Mode          GameMode         `json:"mode"`
	State         MatchState       `json:"state"`
	CurrentRound  int              `json:"current_round"`
	MaxRounds     int              `json:"max_rounds"`
	FrameID       int64            `json:"frame_id"`
	RemainingTime float64          `json:"remaining_time"` // 当前阶段剩余秒数
	Combatants    []CombatantView  `json:"combatants"`
	Projectiles   []ProjectileView `json:"projectiles,omitempty"`
	Teams         []Team           `json:"teams,omitempty"`
	Scores        map[int64]int    `json:"scores"`
}
