// projectile.go

package game

import (
	"github.com/google/uuid"
	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// 投射物碰撞半径
const projectileRadius = 10.0

// 蓄力满时的额外伤害倍率
const chargeDamageBonus = 0.5

// Projectile 投射物。只存在于回合内，回合结束全部清除。
type Projectile struct {
	ID       string
	OwnerID  int64
	Position models.Vector2D
	Velocity models.Vector2D
	Damage   float64
	Scale    float64 // 伤害倍率，由蓄力比例导出
	Lifetime float64 // 剩余存活时间(秒)
}

// spawnProjectile 生成投射物。蓄力比例线性插值弹速，并导出伤害倍率。
func (s *Session) spawnProjectile(owner *models.Combatant, dir models.Vector2D, chargeRatio float64) *Projectile {
	if chargeRatio < 0 {
		chargeRatio = 0
	} else if chargeRatio > 1 {
		chargeRatio = 1
	}

	speed := owner.Stats.ProjectileSpeedFor(chargeRatio)
	p := &Projectile{
		ID:       uuid.New().String(),
		OwnerID:  owner.PlayerID,
		Position: owner.Position,
		Velocity: dir.Scale(speed),
		Damage:   owner.Stats.AttackDamage,
		Scale:    1 + chargeDamageBonus*chargeRatio,
		Lifetime: owner.Stats.ProjectileLifetime,
	}

	s.projectiles = append(s.projectiles, p)
	return p
}

// updateProjectiles 推进所有投射物并结算碰撞。投射物按生成顺序、
// 目标按加入顺序遍历，保证同帧结算顺序确定。
func (s *Session) updateProjectiles(deltaTime float64) {
	alive := s.projectiles[:0]
	for _, p := range s.projectiles {
		p.Position = p.Position.Add(p.Velocity.Scale(deltaTime))
		p.Lifetime -= deltaTime

		if p.Lifetime <= 0 || s.outOfArena(p.Position) {
			continue
		}
		if s.state != models.StateRoundInProgress {
			// 回合已结束，剩余投射物不再结算
			continue
		}

		if s.collideProjectile(p) {
			continue
		}
		alive = append(alive, p)
	}
	s.projectiles = alive
}

// collideProjectile 检测投射物命中。友军与自身直接穿透；
// 命中有效目标后投射物消失，返回true。
func (s *Session) collideProjectile(p *Projectile) bool {
	owner, ok := s.roster.Get(p.OwnerID)
	if !ok {
		// 所有者已离开会话，投射物失效
		return true
	}

	for _, target := range s.roster.CombatantsInOrder() {
		if target.PlayerID == p.OwnerID || !target.IsAlive {
			continue
		}
		if p.Position.DistanceTo(target.Position) >= projectileRadius+combatantRadius {
			continue
		}

		_, err := s.resolver.Resolve(owner, target, p.Damage, models.DamageProjectile, p.Scale)
		if err != nil {
			// 友军或已死亡目标：穿透继续飞行
			continue
		}
		return true
	}
	return false
}

// outOfArena 坐标是否在竞技场外
func (s *Session) outOfArena(p models.Vector2D) bool {
	return p.X < 0 || p.X > s.Config.ArenaWidth || p.Y < 0 || p.Y > s.Config.ArenaHeight
}
