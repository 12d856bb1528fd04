// damage.go

package game

import (
	"math/rand"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// 计分规则
const (
	scorePerKill     = 100 // 每次击杀
	scoreRoundWinner = 100 // 回合胜者(或胜方每名成员)
	scoreMostDamage  = 50  // 回合最高伤害奖励
	scoreMostKills   = 50  // 回合最多击杀奖励
)

// DamageResolver 伤害结算器。应用友军规则与伤害加成后将伤害落到目标，
// 击杀时同步通知会话状态机，保证回合结束判定在结算返回前完成。
type DamageResolver struct {
	session *Session
	rng     *rand.Rand
}

// newDamageResolver 创建伤害结算器，随机源由会话注入以保证可复现
func newDamageResolver(s *Session, rng *rand.Rand) *DamageResolver {
	return &DamageResolver{session: s, rng: rng}
}

// Resolve 结算一次伤害。scale为可选伤害倍率(蓄力攻击等)，1.0表示无加成。
// 拒绝路径(死亡目标、友军)返回零效果事件与对应错误，不修改任何状态。
func (dr *DamageResolver) Resolve(attacker, target *models.Combatant, rawDamage float64, damageType models.DamageType, scale float64) (models.DamageEvent, error) {
	ev := models.DamageEvent{
		AttackerID: attacker.PlayerID,
		TargetID:   target.PlayerID,
		RawDamage:  rawDamage,
		Type:       damageType,
	}

	if !target.IsAlive {
		return ev, ErrCombatantDead
	}
	if blocked := dr.friendlyFireBlocked(attacker, target); blocked {
		return ev, ErrFriendlyFire
	}

	damage := rawDamage
	if scale > 0 {
		damage *= scale
	}

	// 暴击判定
	cfg := &dr.session.Config
	critical := cfg.CritChance > 0 && dr.rng.Float64() < cfg.CritChance
	if critical {
		damage *= cfg.CritMultiplier
	}

	ev = target.ApplyDamage(damage, attacker.PlayerID)
	ev.Type = damageType
	ev.Critical = critical && !ev.IsZero()

	attacker.DamageDealt += ev.Total()
	attacker.RoundDamageDealt += ev.Total()

	if !ev.IsZero() {
		dr.session.sink.OnDamageApplied(dr.session.ID, ev)
	}

	if ev.KillingBlow {
		attacker.Kills++
		attacker.RoundKills++
		attacker.RoundScore += scorePerKill
		target.Deaths++

		// 同步通知状态机，回合结束判定须在本次结算返回前生效
		dr.session.onCombatantKilled(attacker, target)
	}

	return ev, nil
}

// friendlyFireBlocked 检查友军伤害规则。自伤始终阻止；
// 团队模式同队且未开启友军伤害时阻止。个人混战每人独立成队，互不为友军。
func (dr *DamageResolver) friendlyFireBlocked(attacker, target *models.Combatant) bool {
	if attacker.PlayerID == target.PlayerID {
		return true
	}
	if attacker.Team == target.Team && attacker.Team != models.TeamNone {
		return !dr.session.Config.FriendlyFire
	}
	return false
}
