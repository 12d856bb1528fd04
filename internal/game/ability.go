// ability.go

package game

import (
	"math"
	"time"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// 玩家碰撞半径
const combatantRadius = 20.0

// AbilityExecutor 技能执行器。把经过校验的输入转化为位置变化与技能副作用。
// 所有方法先校验全部前置条件再修改状态，失败时不产生任何部分修改。
type AbilityExecutor struct {
	session *Session
}

// newAbilityExecutor 创建技能执行器
func newAbilityExecutor(s *Session) *AbilityExecutor {
	return &AbilityExecutor{session: s}
}

// Move 按方向移动。方向长度超过1时先截断，防止对角加速。
func (ae *AbilityExecutor) Move(c *models.Combatant, direction models.Vector2D, deltaTime float64, now time.Time) error {
	if !c.IsAlive {
		return ErrCombatantDead
	}
	if !c.CanAct(now) {
		return ErrActionLocked
	}

	d := direction.ClampMagnitude(1)
	if d.Length() == 0 {
		return nil
	}

	c.Position = ae.clampToArena(c.Position.Add(d.Scale(c.Stats.MoveSpeed * deltaTime)))
	return nil
}

// Dash 冲刺：消耗一层冲刺层数，瞬时位移固定距离。
// 位移终点收束在竞技场边界内，冲刺不能穿出场地。
func (ae *AbilityExecutor) Dash(c *models.Combatant, direction models.Vector2D, now time.Time) error {
	if !c.IsAlive {
		return ErrCombatantDead
	}
	dir := direction.Normalized()
	if dir.Length() == 0 {
		return ErrInvalidDirection
	}
	if !c.TryConsumeAbility(models.AbilityDash, now) {
		return ErrNoDashStacks
	}

	c.Position = ae.clampToArena(c.Position.Add(dir.Scale(c.Stats.DashForce)))
	return nil
}

// Dodge 闪避：进入一段行动锁定窗口，期间移动与攻击被拒绝。
// 窗口到期自动解除，不依赖任何手动复位。
func (ae *AbilityExecutor) Dodge(c *models.Combatant, now time.Time) error {
	if !c.IsAlive {
		return ErrCombatantDead
	}
	if !c.TryConsumeAbility(models.AbilityDodge, now) {
		return ErrAbilityOnCooldown
	}

	c.ActionLockedTo = now.Add(time.Duration(c.Stats.DodgeDuration * float64(time.Second)))
	return nil
}

// Attack 普通攻击。投射物职业生成投射物(蓄力比例插值弹速与伤害倍率)，
// 近战职业做扇形范围判定并将命中逐个交给伤害结算器。
func (ae *AbilityExecutor) Attack(c *models.Combatant, aim models.Vector2D, chargeRatio float64, now time.Time) error {
	if !c.IsAlive {
		return ErrCombatantDead
	}
	if !c.CanAct(now) {
		return ErrActionLocked
	}
	dir := aim.Normalized()
	if dir.Length() == 0 {
		return ErrInvalidDirection
	}
	if !c.TryConsumeAbility(models.AbilityAttack, now) {
		return ErrAbilityOnCooldown
	}

	switch c.Stats.AttackKind {
	case models.AttackProjectile:
		ae.session.spawnProjectile(c, dir, chargeRatio)
	default:
		ae.meleeSweep(c, dir)
	}
	return nil
}

// meleeSweep 近战扇形判定：距离在攻击范围内且夹角在扇形内的敌方单位全部命中
func (ae *AbilityExecutor) meleeSweep(c *models.Combatant, dir models.Vector2D) {
	halfArc := c.Stats.AttackArc / 2
	for _, target := range ae.session.roster.CombatantsInOrder() {
		if target.PlayerID == c.PlayerID || !target.IsAlive {
			continue
		}
		to := target.Position.Sub(c.Position)
		dist := to.Length()
		if dist > c.Stats.AttackRange+combatantRadius {
			continue
		}
		if dist > 0 {
			angle := math.Acos(clampDot(to.Normalized().Dot(dir)))
			if angle > halfArc {
				continue
			}
		}
		// 友军与死亡目标由结算器拒绝，这里无需提前过滤
		ae.session.resolver.Resolve(c, target, c.Stats.AttackDamage, models.DamageMelee, 1.0)
		if ae.session.state != models.StateRoundInProgress {
			// 击杀已触发回合结束，剩余命中不再结算
			return
		}
	}
}

// clampToArena 将坐标收束在竞技场边界内
func (ae *AbilityExecutor) clampToArena(p models.Vector2D) models.Vector2D {
	cfg := &ae.session.Config
	if p.X < 0 {
		p.X = 0
	} else if p.X > cfg.ArenaWidth {
		p.X = cfg.ArenaWidth
	}
	if p.Y < 0 {
		p.Y = 0
	} else if p.Y > cfg.ArenaHeight {
		p.Y = cfg.ArenaHeight
	}
	return p
}

// clampDot 数值误差防护，点积限制在[-1,1]
func clampDot(d float64) float64 {
	if d > 1 {
		return 1
	}
	if d < -1 {
		return -1
	}
	return d
}
