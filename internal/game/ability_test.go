// ability_test.go

package game

import (
	"testing"
	"time"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

func TestMoveClampsDirectionAndArena(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	c := mustGet(t, s, 1)
	c.Position = models.Vector2D{X: 800, Y: 450}
	now := time.Now()

	// 长度超过1的方向先截断，移动距离固定为 MoveSpeed*dt
	if err := s.abilities.Move(c, models.Vector2D{X: 3, Y: 4}, 0.1, now); err != nil {
		t.Fatalf("移动失败: %v", err)
	}
	moved := c.Position.Sub(models.Vector2D{X: 800, Y: 450}).Length()
	want := c.Stats.MoveSpeed * 0.1
	if diff := moved - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("移动距离 = %v, 期望 %v", moved, want)
	}

	// 朝边界移动不会越界
	c.Position = models.Vector2D{X: 5, Y: 5}
	if err := s.abilities.Move(c, models.Vector2D{X: -1, Y: -1}, 1.0, now); err != nil {
		t.Fatalf("移动失败: %v", err)
	}
	if c.Position.X < 0 || c.Position.Y < 0 {
		t.Errorf("位置越界: %+v", c.Position)
	}
}

func TestMoveRejectedWhenDeadOrLocked(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	c := mustGet(t, s, 1)
	now := time.Now()

	c.ActionLockedTo = now.Add(time.Second)
	if err := s.abilities.Move(c, models.Vector2D{X: 1}, 0.05, now); err != ErrActionLocked {
		t.Errorf("锁定期间移动应返回 ErrActionLocked, 实际 %v", err)
	}

	c.ActionLockedTo = time.Time{}
	c.IsAlive = false
	if err := s.abilities.Move(c, models.Vector2D{X: 1}, 0.05, now); err != ErrCombatantDead {
		t.Errorf("死亡单位移动应返回 ErrCombatantDead, 实际 %v", err)
	}
}

func TestDashInvalidDirectionKeepsStacks(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	c := mustGet(t, s, 1)
	now := time.Now()

	if err := s.abilities.Dash(c, models.Vector2D{}, now); err != ErrInvalidDirection {
		t.Fatalf("零方向冲刺应返回 ErrInvalidDirection, 实际 %v", err)
	}
	if c.DashStacks != c.Stats.DashStacks {
		t.Errorf("无效方向不应消耗层数, 剩余 %d", c.DashStacks)
	}
}

func TestDashDisplacementAndStacks(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	c := mustGet(t, s, 1)
	c.Position = models.Vector2D{X: 400, Y: 450}
	now := time.Now()

	if err := s.abilities.Dash(c, models.Vector2D{X: 1}, now); err != nil {
		t.Fatalf("冲刺失败: %v", err)
	}
	if c.Position.X != 400+c.Stats.DashForce {
		t.Errorf("冲刺后位置 = %v, 期望 %v", c.Position.X, 400+c.Stats.DashForce)
	}
	if c.DashStacks != c.Stats.DashStacks-1 {
		t.Errorf("冲刺后层数 = %d, 期望 %d", c.DashStacks, c.Stats.DashStacks-1)
	}

	// 层数耗尽后拒绝
	for c.DashStacks > 0 {
		if err := s.abilities.Dash(c, models.Vector2D{X: 1}, now); err != nil {
			t.Fatalf("冲刺失败: %v", err)
		}
	}
	if err := s.abilities.Dash(c, models.Vector2D{X: 1}, now); err != ErrNoDashStacks {
		t.Errorf("层数耗尽应返回 ErrNoDashStacks, 实际 %v", err)
	}
}

func TestDashClampedToArena(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	c := mustGet(t, s, 1)
	c.Position = models.Vector2D{X: s.Config.ArenaWidth - 10, Y: 450}

	if err := s.abilities.Dash(c, models.Vector2D{X: 1}, time.Now()); err != nil {
		t.Fatalf("冲刺失败: %v", err)
	}
	if c.Position.X != s.Config.ArenaWidth {
		t.Errorf("冲刺终点 = %v, 应收束在边界 %v", c.Position.X, s.Config.ArenaWidth)
	}
}

func TestDodgeLocksMoveAndAttack(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	c := mustGet(t, s, 1)
	now := time.Now()

	if err := s.abilities.Dodge(c, now); err != nil {
		t.Fatalf("闪避失败: %v", err)
	}

	during := now.Add(100 * time.Millisecond)
	if err := s.abilities.Move(c, models.Vector2D{X: 1}, 0.05, during); err != ErrActionLocked {
		t.Errorf("锁定期间移动应返回 ErrActionLocked, 实际 %v", err)
	}
	if err := s.abilities.Attack(c, models.Vector2D{X: 1}, 0, during); err != ErrActionLocked {
		t.Errorf("锁定期间攻击应返回 ErrActionLocked, 实际 %v", err)
	}

	// 锁定到期自动解除
	after := now.Add(secondsToDuration(c.Stats.DodgeDuration))
	if err := s.abilities.Move(c, models.Vector2D{X: 1}, 0.05, after); err != nil {
		t.Errorf("锁定到期后移动应成功, 实际 %v", err)
	}

	// 闪避自身有冷却
	if err := s.abilities.Dodge(c, after); err != ErrAbilityOnCooldown {
		t.Errorf("冷却期内闪避应返回 ErrAbilityOnCooldown, 实际 %v", err)
	}
}

func TestAttackValidation(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	c := mustGet(t, s, 1)
	now := time.Now()

	if err := s.abilities.Attack(c, models.Vector2D{}, 0, now); err != ErrInvalidDirection {
		t.Errorf("零瞄准方向应返回 ErrInvalidDirection, 实际 %v", err)
	}
	if err := s.abilities.Attack(c, models.Vector2D{X: 1}, 0, now); err != nil {
		t.Fatalf("攻击失败: %v", err)
	}
	if err := s.abilities.Attack(c, models.Vector2D{X: 1}, 0, now.Add(100*time.Millisecond)); err != ErrAbilityOnCooldown {
		t.Errorf("冷却期内攻击应返回 ErrAbilityOnCooldown, 实际 %v", err)
	}
}

func TestMeleeSweepArc(t *testing.T) {
	players := testPlayers(models.ClassWarrior, models.ClassWarrior, models.ClassWarrior)
	s := newTestSession(t, models.FreeForAll, players, nil, nil)
	a := mustGet(t, s, 1)
	inArc := mustGet(t, s, 2)
	behind := mustGet(t, s, 3)

	a.Position = models.Vector2D{X: 800, Y: 450}
	inArc.Position = a.Position.Add(models.Vector2D{X: 60})   // 正前方, 射程内
	behind.Position = a.Position.Add(models.Vector2D{X: -60}) // 正后方
	s.state = models.StateRoundInProgress

	if err := s.abilities.Attack(a, models.Vector2D{X: 1}, 0, time.Now()); err != nil {
		t.Fatalf("攻击失败: %v", err)
	}
	if inArc.Health != inArc.MaxHealth-a.Stats.AttackDamage {
		t.Errorf("扇形内目标生命 = %v, 期望 %v", inArc.Health, inArc.MaxHealth-a.Stats.AttackDamage)
	}
	if behind.Health != behind.MaxHealth {
		t.Errorf("背后目标不应命中, 生命 = %v", behind.Health)
	}
}

func TestMeleeSweepRange(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)
	a := mustGet(t, s, 1)
	far := mustGet(t, s, 2)

	a.Position = models.Vector2D{X: 100, Y: 450}
	far.Position = a.Position.Add(models.Vector2D{X: a.Stats.AttackRange + combatantRadius + 1})

	if err := s.abilities.Attack(a, models.Vector2D{X: 1}, 0, time.Now()); err != nil {
		t.Fatalf("攻击失败: %v", err)
	}
	if far.Health != far.MaxHealth {
		t.Errorf("射程外目标不应命中, 生命 = %v", far.Health)
	}
}

func TestProjectileChargeScalesSpeedAndDamage(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassArcher, models.ClassWarrior), nil, nil)
	a := mustGet(t, s, 1)
	a.Position = models.Vector2D{X: 100, Y: 450}

	if err := s.abilities.Attack(a, models.Vector2D{X: 1}, 1.0, time.Now()); err != nil {
		t.Fatalf("攻击失败: %v", err)
	}
	if len(s.projectiles) != 1 {
		t.Fatalf("投射物数量 = %d, 期望 1", len(s.projectiles))
	}

	p := s.projectiles[0]
	if p.Velocity.Length() != a.Stats.ChargeMaxSpeed {
		t.Errorf("满蓄力弹速 = %v, 期望 %v", p.Velocity.Length(), a.Stats.ChargeMaxSpeed)
	}
	if p.Scale != 1+chargeDamageBonus {
		t.Errorf("满蓄力伤害倍率 = %v, 期望 %v", p.Scale, 1+chargeDamageBonus)
	}
	if p.OwnerID != a.PlayerID {
		t.Errorf("投射物所有者 = %d, 期望 %d", p.OwnerID, a.PlayerID)
	}
}

func TestProjectileHitAndDespawn(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassArcher, models.ClassTank), nil, nil)
	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)
	a.Position = models.Vector2D{X: 100, Y: 450}
	b.Position = models.Vector2D{X: 200, Y: 450}
	s.state = models.StateRoundInProgress

	if err := s.abilities.Attack(a, models.Vector2D{X: 1}, 0, time.Now()); err != nil {
		t.Fatalf("攻击失败: %v", err)
	}

	// 一帧飞行 ChargeMinSpeed*0.25=100 单位, 落在目标位置上命中
	s.updateProjectiles(0.25)
	if b.Health == b.MaxHealth && b.Shield == 0 {
		// 目标护盾初始为0，命中必然体现在生命值上
		t.Error("投射物应命中目标")
	}
	if len(s.projectiles) != 0 {
		t.Errorf("命中后投射物应消失, 剩余 %d", len(s.projectiles))
	}
}

func TestProjectileExpiresOutOfArena(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassArcher, models.ClassTank), nil, nil)
	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)
	a.Position = models.Vector2D{X: s.Config.ArenaWidth - 50, Y: 450}
	b.Position = models.Vector2D{X: 100, Y: 100}
	s.state = models.StateRoundInProgress

	if err := s.abilities.Attack(a, models.Vector2D{X: 1}, 0, time.Now()); err != nil {
		t.Fatalf("攻击失败: %v", err)
	}

	s.updateProjectiles(0.5)
	if len(s.projectiles) != 0 {
		t.Errorf("飞出场地的投射物应消失, 剩余 %d", len(s.projectiles))
	}
}
