// combatant.go

package models

import (
	"time"
)

// TeamID 队伍标识，0表示未分配
type TeamID int

// TeamNone 无队伍
const TeamNone TeamID = 0

// AbilityID 技能标识
type AbilityID string

const (
	// AbilityAttack 普通攻击
	AbilityAttack AbilityID = "attack"
	// AbilityDash 冲刺
	AbilityDash AbilityID = "dash"
	// AbilityDodge 闪避
	AbilityDodge AbilityID = "dodge"
)

// Combatant 战斗单位的权威状态，由所属会话独占修改
type Combatant struct {
	PlayerID int64          `json:"player_id"`
	Name     string         `json:"name"`
	Class    CharacterClass `json:"class"`
	Team     TeamID         `json:"team"`
	Stats    ClassStats     `json:"-"`

	Position Vector2D `json:"position"`

	// 生命值
	MaxHealth float64 `json:"max_health"`
	Health    float64 `json:"health"`
	MaxShield float64 `json:"max_shield"`
	Shield    float64 `json:"shield"`
	IsAlive   bool    `json:"is_alive"`

	// 对局统计
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	Assists     int     `json:"assists"`
	DamageDealt float64 `json:"damage_dealt"`
	DamageTaken float64 `json:"damage_taken"`
	MatchScore  int     `json:"match_score"`

	// 回合统计，每回合开始时清零
	RoundKills       int     `json:"round_kills"`
	RoundDamageDealt float64 `json:"round_damage_dealt"`
	RoundScore       int     `json:"round_score"`

	// 技能状态
	CooldownExpiry map[AbilityID]time.Time `json:"-"`
	DashStacks     int                     `json:"dash_stacks"`
	DashRegenAt    time.Time               `json:"-"` // 零值表示无恢复计时
	ActionLockedTo time.Time               `json:"-"` // 闪避期间禁止行动

	// 加入顺序，用于确定性的平局裁决
	JoinOrder int `json:"-"`
}

// NewCombatant 按职业属性创建战斗单位
func NewCombatant(playerID int64, name string, class CharacterClass, joinOrder int) (*Combatant, bool) {
	stats, ok := StatsFor(class)
	if !ok {
		return nil, false
	}
	return &Combatant{
		PlayerID:       playerID,
		Name:           name,
		Class:          class,
		Stats:          stats,
		MaxHealth:      stats.MaxHealth,
		Health:         stats.MaxHealth,
		MaxShield:      stats.MaxShield,
		Shield:         0,
		IsAlive:        true,
		DashStacks:     stats.DashStacks,
		CooldownExpiry: make(map[AbilityID]time.Time),
		JoinOrder:      joinOrder,
	}, true
}

// ApplyDamage 结算伤害。护盾先吸收，溢出部分扣除生命值。
// 已死亡或非正伤害返回零效果事件。生命值降为0的那一次返回击杀标记。
func (c *Combatant) ApplyDamage(amount float64, attackerID int64) DamageEvent {
	ev := DamageEvent{
		AttackerID: attackerID,
		TargetID:   c.PlayerID,
		RawDamage:  amount,
	}
	if !c.IsAlive || amount <= 0 {
		return ev
	}

	// 护盾吸收顺序固定：先护盾后生命
	shieldDamage := amount
	if shieldDamage > c.Shield {
		shieldDamage = c.Shield
	}
	c.Shield -= shieldDamage

	healthDamage := amount - shieldDamage
	if healthDamage > c.Health {
		healthDamage = c.Health
	}
	c.Health -= healthDamage

	ev.ShieldDamage = shieldDamage
	ev.HealthDamage = healthDamage

	if c.Health <= 0 {
		c.Health = 0
		c.IsAlive = false
		ev.KillingBlow = true
	}

	c.DamageTaken += ev.Total()
	return ev
}

// Heal 恢复生命值，死亡时无效
func (c *Combatant) Heal(amount float64) {
	if !c.IsAlive || amount <= 0 {
		return
	}
	c.Health += amount
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
}

// AddShield 增加护盾，死亡时无效
func (c *Combatant) AddShield(amount float64) {
	if !c.IsAlive || amount <= 0 {
		return
	}
	c.Shield += amount
	if c.Shield > c.MaxShield {
		c.Shield = c.MaxShield
	}
}

// Respawn 在指定位置重生，重复调用等价于一次重置
func (c *Combatant) Respawn(position Vector2D) {
	c.Position = position
	c.Health = c.MaxHealth
	c.Shield = 0
	c.IsAlive = true
	c.DashStacks = c.Stats.DashStacks
	c.DashRegenAt = time.Time{}
	c.ActionLockedTo = time.Time{}
	c.CooldownExpiry = make(map[AbilityID]time.Time)
}

// CanAct 检查是否处于行动锁定(闪避)窗口之外
func (c *Combatant) CanAct(now time.Time) bool {
	return !now.Before(c.ActionLockedTo)
}

// TryConsumeAbility 尝试消耗技能。冷却类技能检查到期时间；
// 冲刺按层数消耗，层数不满时保持恢复计时。成功返回true并完成全部状态修改。
func (c *Combatant) TryConsumeAbility(ability AbilityID, now time.Time) bool {
	if !c.IsAlive {
		return false
	}
	switch ability {
	case AbilityDash:
		if c.DashStacks <= 0 {
			return false
		}
		wasFull := c.DashStacks == c.Stats.DashStacks
		c.DashStacks--
		if wasFull {
			// 从满层开始消耗时启动恢复计时
			c.DashRegenAt = now.Add(secondsToDuration(c.Stats.DashRegen))
		}
		return true
	case AbilityAttack:
		return c.tryConsumeCooldown(ability, now, c.Stats.AttackCooldown)
	case AbilityDodge:
		return c.tryConsumeCooldown(ability, now, c.Stats.DodgeCooldown)
	default:
		return false
	}
}

// tryConsumeCooldown 冷却类技能的通用检查
func (c *Combatant) tryConsumeCooldown(ability AbilityID, now time.Time, cooldown float64) bool {
	if expiry, ok := c.CooldownExpiry[ability]; ok && now.Before(expiry) {
		return false
	}
	c.CooldownExpiry[ability] = now.Add(secondsToDuration(cooldown))
	return true
}

// UpdateAbilities 每帧推进冲刺层数恢复。层数未满时恒有且仅有一个恢复计时。
func (c *Combatant) UpdateAbilities(now time.Time) {
	for c.DashStacks < c.Stats.DashStacks && !c.DashRegenAt.IsZero() && !now.Before(c.DashRegenAt) {
		c.DashStacks++
		if c.DashStacks < c.Stats.DashStacks {
			// 未满则重新装填计时
			c.DashRegenAt = c.DashRegenAt.Add(secondsToDuration(c.Stats.DashRegen))
		} else {
			c.DashRegenAt = time.Time{}
		}
	}
}

// ResetRoundStats 清零回合统计
func (c *Combatant) ResetRoundStats() {
	c.RoundKills = 0
	c.RoundDamageDealt = 0
	c.RoundScore = 0
}

// secondsToDuration 秒数转Duration
func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
