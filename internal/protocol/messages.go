// messages.go

package protocol

import (
	"encoding/json"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// MessageType 消息类型
type MessageType string

// 客户端到服务器
const (
	// MsgTypeInput 一帧输入
	MsgTypeInput MessageType = "input"
	// MsgTypeReady 准备
	MsgTypeReady MessageType = "ready"
	// MsgTypeUnready 取消准备
	MsgTypeUnready MessageType = "unready"
	// MsgTypeLeave 离开会话
	MsgTypeLeave MessageType = "leave"
)

// 服务器到客户端
const (
	// MsgTypeStateFrame 状态帧
	MsgTypeStateFrame MessageType = "state_frame"
	// MsgTypeStateChanged 状态机迁移
	MsgTypeStateChanged MessageType = "state_changed"
	// MsgTypeRoundStarted 回合开始
	MsgTypeRoundStarted MessageType = "round_started"
	// MsgTypeRoundEnded 回合结束
	MsgTypeRoundEnded MessageType = "round_ended"
	// MsgTypeMatchEnded 对局结束
	MsgTypeMatchEnded MessageType = "match_ended"
	// MsgTypePlayerDied 玩家死亡
	MsgTypePlayerDied MessageType = "player_died"
	// MsgTypeDamage 伤害事件
	MsgTypeDamage MessageType = "damage"
	// MsgTypeError 错误
	MsgTypeError MessageType = "error"
)

// Message 消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode 序列化一条完整消息
func Encode(msgType MessageType, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(Message{Type: msgType, Payload: raw})
}

// InputPayload 输入消息负载
type InputPayload struct {
	Input models.PlayerInput `json:"input"`
}

// StateChangedEvent 状态机迁移事件
type StateChangedEvent struct {
	State models.MatchState `json:"state"`
}

// RoundStartedEvent 回合开始事件
type RoundStartedEvent struct {
	Round int `json:"round"`
}

// PlayerDiedEvent 玩家死亡事件
type PlayerDiedEvent struct {
	VictimID int64 `json:"victim_id"`
	KillerID int64 `json:"killer_id"`
}

// MatchEndedEvent 对局结束事件，冠亚季军单独给出
type MatchEndedEvent struct {
	Result models.MatchResult `json:"result"`
	First  int64              `json:"first,omitempty"`
	Second int64              `json:"second,omitempty"`
	Third  int64              `json:"third,omitempty"`
}

// ErrorMessage 错误消息
type ErrorMessage struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Vector2D 线上坐标，压缩为float32
type Vector2D struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// CombatantInfo 状态帧中的战斗单位
type CombatantInfo struct {
	PlayerID   int64    `json:"player_id"`
	Name       string   `json:"name"`
	Class      string   `json:"class"`
	Team       int32    `json:"team"`
	Position   Vector2D `json:"position"`
	Health     float32  `json:"health"`
	MaxHealth  float32  `json:"max_health"`
	Shield     float32  `json:"shield"`
	MaxShield  float32  `json:"max_shield"`
	IsAlive    bool     `json:"is_alive"`
	Kills      int32    `json:"kills"`
	Deaths     int32    `json:"deaths"`
	DashStacks int32    `json:"dash_stacks"`
}

// ProjectileInfo 状态帧中的投射物
type ProjectileInfo struct {
	ID       string   `json:"id"`
	OwnerID  int64    `json:"owner_id"`
	Position Vector2D `json:"position"`
	Velocity Vector2D `json:"velocity"`
}

// StateFrame 每帧广播的状态
type StateFrame struct {
	FrameID       int64            `json:"frame_id"`
	Timestamp     int64            `json:"timestamp"` // 毫秒
	State         string           `json:"state"`
	CurrentRound  int32            `json:"current_round"`
	RemainingTime float32          `json:"remaining_time"`
	Combatants    []CombatantInfo  `json:"combatants"`
	Projectiles   []ProjectileInfo `json:"projectiles,omitempty"`
	Scores        map[int64]int32  `json:"scores"`
}
