// roster_test.go

package game

import (
	"testing"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

func newCombatant(t *testing.T, id int64) *models.Combatant {
	t.Helper()
	c, ok := models.NewCombatant(id, "p", models.ClassWarrior, 0)
	if !ok {
		t.Fatal("创建战斗单位失败")
	}
	return c
}

func TestRosterFFAEachPlayerOwnTeam(t *testing.T) {
	cfg := testMatchConfig(models.FreeForAll)
	r := NewRoster(&cfg)

	seen := make(map[models.TeamID]bool)
	for id := int64(1); id <= 4; id++ {
		team, err := r.Assign(newCombatant(t, id))
		if err != nil {
			t.Fatalf("分配玩家 %d 失败: %v", id, err)
		}
		if team == models.TeamNone {
			t.Fatalf("玩家 %d 未分配队伍", id)
		}
		if seen[team] {
			t.Fatalf("队伍 %d 被重复分配", team)
		}
		seen[team] = true
	}
	if r.Count() != 4 {
		t.Errorf("名册人数 = %d, 期望 4", r.Count())
	}
}

func TestRosterTDMFewestMembersFirst(t *testing.T) {
	cfg := testMatchConfig(models.TeamDeathMatch) // 2队, 每队2人
	r := NewRoster(&cfg)

	// 依次加入: 人数最少优先, 并列取编号最小
	want := []models.TeamID{1, 2, 1, 2}
	for i, wantTeam := range want {
		team, err := r.Assign(newCombatant(t, int64(i+1)))
		if err != nil {
			t.Fatalf("分配玩家 %d 失败: %v", i+1, err)
		}
		if team != wantTeam {
			t.Errorf("玩家 %d 分配到队伍 %d, 期望 %d", i+1, team, wantTeam)
		}
	}

	if _, err := r.Assign(newCombatant(t, 5)); err != ErrTeamFull {
		t.Errorf("全队满员时应返回 ErrTeamFull, 实际 %v", err)
	}
}

func TestRosterTDMRefillsSmallestAfterRemove(t *testing.T) {
	cfg := testMatchConfig(models.TeamDeathMatch)
	r := NewRoster(&cfg)
	for id := int64(1); id <= 4; id++ {
		if _, err := r.Assign(newCombatant(t, id)); err != nil {
			t.Fatalf("分配玩家 %d 失败: %v", id, err)
		}
	}

	// 2号离开后队伍2空出一个位置，新玩家应补入队伍2
	if !r.Remove(2) {
		t.Fatal("移除玩家 2 失败")
	}
	team, err := r.Assign(newCombatant(t, 5))
	if err != nil {
		t.Fatalf("补位分配失败: %v", err)
	}
	if team != 2 {
		t.Errorf("补位玩家分配到队伍 %d, 期望 2", team)
	}
}

func TestRosterDuplicateAssign(t *testing.T) {
	cfg := testMatchConfig(models.FreeForAll)
	r := NewRoster(&cfg)
	if _, err := r.Assign(newCombatant(t, 1)); err != nil {
		t.Fatalf("首次分配失败: %v", err)
	}
	if _, err := r.Assign(newCombatant(t, 1)); err == nil {
		t.Fatal("重复分配同一玩家应当失败")
	}
}

func TestRosterRemoveFFADropsTeam(t *testing.T) {
	cfg := testMatchConfig(models.FreeForAll)
	r := NewRoster(&cfg)
	c := newCombatant(t, 1)
	team, _ := r.Assign(c)

	if !r.Remove(1) {
		t.Fatal("移除失败")
	}
	if _, ok := r.Team(team); ok {
		t.Error("个人混战的单人队伍应随玩家移除")
	}
	if r.Remove(1) {
		t.Error("重复移除应返回false")
	}
	if r.Count() != 0 {
		t.Errorf("名册人数 = %d, 期望 0", r.Count())
	}
}

func TestRosterOrderAndAliveFilter(t *testing.T) {
	cfg := testMatchConfig(models.FreeForAll)
	r := NewRoster(&cfg)
	for id := int64(1); id <= 3; id++ {
		if _, err := r.Assign(newCombatant(t, id)); err != nil {
			t.Fatalf("分配玩家 %d 失败: %v", id, err)
		}
	}

	order := r.CombatantsInOrder()
	for i, c := range order {
		if c.PlayerID != int64(i+1) {
			t.Fatalf("遍历顺序第 %d 位是玩家 %d, 期望 %d", i, c.PlayerID, i+1)
		}
		if c.JoinOrder != i {
			t.Errorf("玩家 %d 的加入顺序 = %d, 期望 %d", c.PlayerID, c.JoinOrder, i)
		}
	}

	order[1].IsAlive = false
	alive := r.AliveCombatants()
	if len(alive) != 2 || alive[0].PlayerID != 1 || alive[1].PlayerID != 3 {
		t.Errorf("存活列表不符: %+v", alive)
	}
}

func TestRosterAliveTeamsTDM(t *testing.T) {
	cfg := testMatchConfig(models.TeamDeathMatch)
	r := NewRoster(&cfg)
	for id := int64(1); id <= 4; id++ {
		if _, err := r.Assign(newCombatant(t, id)); err != nil {
			t.Fatalf("分配玩家 %d 失败: %v", id, err)
		}
	}

	// 击倒队伍1的两名成员(玩家1和3)
	c1, _ := r.Get(1)
	c3, _ := r.Get(3)
	c1.IsAlive = false
	c3.IsAlive = false

	teams := r.AliveTeams()
	if len(teams) != 1 || teams[0] != 2 {
		t.Errorf("存活队伍 = %v, 期望 [2]", teams)
	}
}
