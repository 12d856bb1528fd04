// event.go

package models

import (
	"time"
)

// DamageType 伤害类型
type DamageType string

const (
	// DamageProjectile 投射物伤害
	DamageProjectile DamageType = "projectile"
	// DamageMelee 近战伤害
	DamageMelee DamageType = "melee"
)

// DamageEvent 一次伤害结算的结果，供复制层与计分读取
type DamageEvent struct {
	AttackerID   int64      `json:"attacker_id"`
	TargetID     int64      `json:"target_id"`
	RawDamage    float64    `json:"raw_damage"`
	Type         DamageType `json:"type"`
	ShieldDamage float64    `json:"shield_damage"`
	HealthDamage float64    `json:"health_damage"`
	Critical     bool       `json:"critical"`
	KillingBlow  bool       `json:"killing_blow"`
}

// Total 实际造成的伤害总量(护盾+生命)，不超过目标实际损失
func (e DamageEvent) Total() float64 {
	return e.ShieldDamage + e.HealthDamage
}

// IsZero 是否为零效果事件
func (e DamageEvent) IsZero() bool {
	return e.ShieldDamage == 0 && e.HealthDamage == 0
}

// PlayerInput 一帧之内单个玩家的输入，已在上游归一化
type PlayerInput struct {
	Movement    Vector2D `json:"movement"`
	Aim         Vector2D `json:"aim"`
	Attack      bool     `json:"attack"`
	ChargeRatio float64  `json:"charge_ratio"` // 0-1，蓄力攻击用
	Dash        bool     `json:"dash"`
	Dodge       bool     `json:"dodge"`
	ClientTime  int64    `json:"client_time,omitempty"`
}

// RoundAwards 回合奖励归属
type RoundAwards struct {
	MostDamage int64 `json:"most_damage,omitempty"` // 玩家ID
	MostKills  int64 `json:"most_kills,omitempty"`
}

// RoundResult 回合结算
type RoundResult struct {
	Round       int             `json:"round"`
	WinnerTeam  TeamID          `json:"winner_team,omitempty"`
	WinnerIDs   []int64         `json:"winner_ids,omitempty"`
	Draw        bool            `json:"draw,omitempty"`
	ByTimeout   bool            `json:"by_timeout,omitempty"`
	Awards      RoundAwards     `json:"awards"`
	RoundScores map[int64]int   `json:"round_scores"`
	MatchScores map[int64]int   `json:"match_scores"`
}

// PlayerRanking 终局排名条目
type PlayerRanking struct {
	Place       int            `json:"place"`
	PlayerID    int64          `json:"player_id"`
	Name        string         `json:"name"`
	Class       CharacterClass `json:"class"`
	Team        TeamID         `json:"team"`
	Score       int            `json:"score"`
	Kills       int            `json:"kills"`
	Deaths      int            `json:"deaths"`
	Assists     int            `json:"assists"`
	DamageDealt float64        `json:"damage_dealt"`
	DamageTaken float64        `json:"damage_taken"`
}

// MatchResult 对局结算
type MatchResult struct {
	MatchID    string          `json:"match_id"`
	Mode       GameMode        `json:"mode"`
	Rounds     int             `json:"rounds"`
	WinnerTeam TeamID          `json:"winner_team,omitempty"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	Rankings   []PlayerRanking `json:"rankings"`
}
