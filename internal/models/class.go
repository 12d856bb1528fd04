// class.go

package models

// CharacterClass 角色职业
type CharacterClass string

const (
	// ClassArcher 弓手，蓄力远程攻击
	ClassArcher CharacterClass = "archer"
	// ClassWarrior 战士，近战扇形攻击
	ClassWarrior CharacterClass = "warrior"
	// ClassTank 坦克，高血量高护盾
	ClassTank CharacterClass = "tank"
)

// AttackKind 攻击判定方式
type AttackKind string

const (
	// AttackProjectile 投射物攻击
	AttackProjectile AttackKind = "projectile"
	// AttackMelee 近战范围攻击
	AttackMelee AttackKind = "melee"
)

// ClassStats 职业属性表
type ClassStats struct {
	MaxHealth float64 `json:"max_health"`
	MaxShield float64 `json:"max_shield"`
	MoveSpeed float64 `json:"move_speed"` // 单位/秒

	// 普通攻击
	AttackKind     AttackKind `json:"attack_kind"`
	AttackDamage   float64    `json:"attack_damage"`
	AttackRange    float64    `json:"attack_range"`
	AttackArc      float64    `json:"attack_arc"` // 近战扇形角(弧度)
	AttackCooldown float64    `json:"attack_cooldown"`

	// 冲刺
	DashForce  float64 `json:"dash_force"`  // 瞬时位移距离
	DashStacks int     `json:"dash_stacks"` // 最大层数
	DashRegen  float64 `json:"dash_regen"`  // 单层恢复时间(秒)

	// 闪避
	DodgeDuration float64 `json:"dodge_duration"` // 行动锁定时长(秒)
	DodgeCooldown float64 `json:"dodge_cooldown"`

	// 蓄力投射物(弓手)
	ChargeMinSpeed     float64 `json:"charge_min_speed,omitempty"`
	ChargeMaxSpeed     float64 `json:"charge_max_speed,omitempty"`
	ProjectileLifetime float64 `json:"projectile_lifetime,omitempty"` // 秒
}

// classTable 各职业的固定属性
var classTable = map[CharacterClass]ClassStats{
	ClassArcher: {
		MaxHealth:          80,
		MaxShield:          20,
		MoveSpeed:          260,
		AttackKind:         AttackProjectile,
		AttackDamage:       25,
		AttackRange:        700,
		AttackCooldown:     0.8,
		DashForce:          180,
		DashStacks:         2,
		DashRegen:          4.0,
		DodgeDuration:      0.4,
		DodgeCooldown:      3.0,
		ChargeMinSpeed:     400,
		ChargeMaxSpeed:     900,
		ProjectileLifetime: 2.0,
	},
	ClassWarrior: {
		MaxHealth:      120,
		MaxShield:      30,
		MoveSpeed:      240,
		AttackKind:     AttackMelee,
		AttackDamage:   35,
		AttackRange:    90,
		AttackArc:      2.0,
		AttackCooldown: 1.0,
		DashForce:      220,
		DashStacks:     2,
		DashRegen:      5.0,
		DodgeDuration:  0.5,
		DodgeCooldown:  4.0,
	},
	ClassTank: {
		MaxHealth:      180,
		MaxShield:      60,
		MoveSpeed:      190,
		AttackKind:     AttackMelee,
		AttackDamage:   25,
		AttackRange:    80,
		AttackArc:      2.4,
		AttackCooldown: 1.4,
		DashForce:      150,
		DashStacks:     1,
		DashRegen:      6.0,
		DodgeDuration:  0.6,
		DodgeCooldown:  5.0,
	},
}

// StatsFor 获取职业属性，未知职业返回false
func StatsFor(class CharacterClass) (ClassStats, bool) {
	stats, ok := classTable[class]
	return stats, ok
}

// AllClasses 列出所有职业
func AllClasses() []CharacterClass {
	return []CharacterClass{ClassArcher, ClassWarrior, ClassTank}
}

// ProjectileSpeedFor 按蓄力比例插值投射物速度
func (s ClassStats) ProjectileSpeedFor(chargeRatio float64) float64 {
	if chargeRatio < 0 {
		chargeRatio = 0
	} else if chargeRatio > 1 {
		chargeRatio = 1
	}
	return s.ChargeMinSpeed + (s.ChargeMaxSpeed-s.ChargeMinSpeed)*chargeRatio
}
