// damage_test.go

package game

import (
	"testing"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

func TestResolveSelfDamageBlocked(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	a := mustGet(t, s, 1)

	ev, err := s.resolver.Resolve(a, a, 50, models.DamageMelee, 1.0)
	if err != ErrFriendlyFire {
		t.Fatalf("自伤应返回 ErrFriendlyFire, 实际 %v", err)
	}
	if !ev.IsZero() {
		t.Errorf("拒绝路径应返回零效果事件, 实际 %+v", ev)
	}
	if a.Health != a.MaxHealth || a.DamageTaken != 0 {
		t.Error("拒绝路径不应修改任何状态")
	}
}

func TestResolveTDMSameTeamBlocked(t *testing.T) {
	players := testPlayers(models.ClassWarrior, models.ClassWarrior,
		models.ClassWarrior, models.ClassWarrior)
	s := newTestSession(t, models.TeamDeathMatch, players, nil, nil)

	// 玩家1和3同队
	a := mustGet(t, s, 1)
	ally := mustGet(t, s, 3)
	enemy := mustGet(t, s, 2)

	if _, err := s.resolver.Resolve(a, ally, 50, models.DamageMelee, 1.0); err != ErrFriendlyFire {
		t.Errorf("同队伤害应返回 ErrFriendlyFire, 实际 %v", err)
	}
	if ally.Health != ally.MaxHealth {
		t.Error("被阻止的友军伤害不应扣血")
	}

	ev, err := s.resolver.Resolve(a, enemy, 50, models.DamageMelee, 1.0)
	if err != nil {
		t.Fatalf("敌方伤害结算失败: %v", err)
	}
	if ev.Total() != 50 {
		t.Errorf("敌方伤害 = %v, 期望 50", ev.Total())
	}
}

func TestResolveTDMFriendlyFireEnabled(t *testing.T) {
	players := testPlayers(models.ClassWarrior, models.ClassWarrior,
		models.ClassWarrior, models.ClassWarrior)
	s := newTestSession(t, models.TeamDeathMatch, players, nil,
		func(cfg *models.MatchConfig) { cfg.FriendlyFire = true })

	a := mustGet(t, s, 1)
	ally := mustGet(t, s, 3)

	ev, err := s.resolver.Resolve(a, ally, 30, models.DamageMelee, 1.0)
	if err != nil {
		t.Fatalf("开启友军伤害后同队结算失败: %v", err)
	}
	if ev.Total() != 30 {
		t.Errorf("友军伤害 = %v, 期望 30", ev.Total())
	}

	// 自伤始终阻止，与友军伤害开关无关
	if _, err := s.resolver.Resolve(a, a, 30, models.DamageMelee, 1.0); err != ErrFriendlyFire {
		t.Errorf("自伤应始终被阻止, 实际 %v", err)
	}
}

func TestResolveFFANeverFriendly(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)

	ev, err := s.resolver.Resolve(a, b, 40, models.DamageMelee, 1.0)
	if err != nil {
		t.Fatalf("个人混战互相伤害结算失败: %v", err)
	}
	if ev.Total() != 40 {
		t.Errorf("伤害 = %v, 期望 40", ev.Total())
	}
}

func TestResolveDeadTarget(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)
	b.IsAlive = false

	ev, err := s.resolver.Resolve(a, b, 50, models.DamageMelee, 1.0)
	if err != ErrCombatantDead {
		t.Fatalf("死亡目标应返回 ErrCombatantDead, 实际 %v", err)
	}
	if !ev.IsZero() {
		t.Errorf("拒绝路径应返回零效果事件, 实际 %+v", ev)
	}
	if a.DamageDealt != 0 || a.Kills != 0 || b.Deaths != 0 {
		t.Error("死亡目标不应产生统计变化")
	}
}

func TestResolveChargeScale(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassArcher, models.ClassTank), nil, nil)
	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)

	ev, err := s.resolver.Resolve(a, b, 20, models.DamageProjectile, 1.5)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if ev.Total() != 30 {
		t.Errorf("倍率1.5下伤害 = %v, 期望 30", ev.Total())
	}
}

func TestResolveGuaranteedCrit(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassTank), nil,
		func(cfg *models.MatchConfig) {
			cfg.CritChance = 1.0
			cfg.CritMultiplier = 2.0
		})
	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)

	ev, err := s.resolver.Resolve(a, b, 10, models.DamageMelee, 1.0)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if !ev.Critical {
		t.Error("暴击率1.0时必定暴击")
	}
	if ev.Total() != 20 {
		t.Errorf("暴击伤害 = %v, 期望 20", ev.Total())
	}
}

func TestResolveKillUpdatesStats(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), sink, nil)
	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)
	b.Health = 5
	b.Shield = 0

	ev, err := s.resolver.Resolve(a, b, 10, models.DamageMelee, 1.0)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if !ev.KillingBlow {
		t.Fatal("应返回击杀标记")
	}
	if a.Kills != 1 || a.RoundKills != 1 {
		t.Errorf("击杀统计 = %d/%d, 期望 1/1", a.Kills, a.RoundKills)
	}
	if a.RoundScore != scorePerKill {
		t.Errorf("击杀得分 = %d, 期望 %d", a.RoundScore, scorePerKill)
	}
	if b.Deaths != 1 {
		t.Errorf("死亡统计 = %d, 期望 1", b.Deaths)
	}
	if len(sink.deaths) != 1 || sink.deaths[0] != [2]int64{2, 1} {
		t.Errorf("死亡事件 = %v, 期望 [[2 1]]", sink.deaths)
	}
	if len(sink.damage) != 1 {
		t.Errorf("伤害事件数 = %d, 期望 1", len(sink.damage))
	}
}

func TestResolveDamageAccumulates(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassTank), nil, nil)
	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)
	b.Shield = 15

	ev, err := s.resolver.Resolve(a, b, 40, models.DamageMelee, 1.0)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if ev.ShieldDamage != 15 || ev.HealthDamage != 25 {
		t.Errorf("护盾/生命伤害 = %v/%v, 期望 15/25", ev.ShieldDamage, ev.HealthDamage)
	}
	if a.DamageDealt != 40 || a.RoundDamageDealt != 40 {
		t.Errorf("攻击方伤害统计 = %v/%v, 期望 40/40", a.DamageDealt, a.RoundDamageDealt)
	}
	if b.DamageTaken != 40 {
		t.Errorf("承伤统计 = %v, 期望 40", b.DamageTaken)
	}
}
