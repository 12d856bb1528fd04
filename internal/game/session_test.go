// session_test.go

package game

import (
	"testing"
	"time"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

func TestNewSessionValidation(t *testing.T) {
	base := testMatchConfig(models.FreeForAll)
	two := testPlayers(models.ClassWarrior, models.ClassWarrior)

	cases := []struct {
		name    string
		players []models.PlayerInfo
		mutate  func(*models.MatchConfig)
	}{
		{"空玩家名单", nil, nil},
		{"空出生点", two, func(cfg *models.MatchConfig) { cfg.SpawnPoints = nil }},
		{"非法回合数", two, func(cfg *models.MatchConfig) { cfg.MaxRounds = 0 }},
		{"重复玩家ID", []models.PlayerInfo{
			{PlayerID: 1, Name: "a", Class: models.ClassWarrior},
			{PlayerID: 1, Name: "b", Class: models.ClassWarrior},
		}, nil},
		{"未知职业", []models.PlayerInfo{
			{PlayerID: 1, Name: "a", Class: models.CharacterClass("mage")},
		}, nil},
		{"超过人数上限", testPlayers(
			models.ClassWarrior, models.ClassWarrior, models.ClassWarrior,
			models.ClassWarrior, models.ClassWarrior, models.ClassWarrior,
			models.ClassWarrior), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			if _, err := NewSession(tc.players, cfg, nil, 50*time.Millisecond, 1); err == nil {
				t.Error("期望创建失败")
			}
		})
	}
}

func TestSessionTDMPlayerLimit(t *testing.T) {
	// 2队x2人的上限是4, 第5人应被拒绝
	cfg := testMatchConfig(models.TeamDeathMatch)
	players := testPlayers(models.ClassWarrior, models.ClassWarrior,
		models.ClassWarrior, models.ClassWarrior, models.ClassWarrior)
	if _, err := NewSession(players, cfg, nil, 50*time.Millisecond, 1); err == nil {
		t.Error("超过队伍容量应创建失败")
	}
}

func TestSessionWaitsForAllReady(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)

	if got := s.State(); got != models.StateWaitingForPlayers {
		t.Fatalf("初始状态 = %s, 期望 %s", got, models.StateWaitingForPlayers)
	}

	// 只有一人准备时停留在等待阶段
	if err := s.SetReady(1, true); err != nil {
		t.Fatalf("设置准备失败: %v", err)
	}
	s.Tick(s.CreatedAt.Add(time.Second))
	if got := s.State(); got != models.StateWaitingForPlayers {
		t.Fatalf("未全员准备时状态 = %s, 不应离开等待阶段", got)
	}

	// 取消准备后再全员准备
	if err := s.SetReady(1, false); err != nil {
		t.Fatalf("取消准备失败: %v", err)
	}
	s.SetReady(1, true)
	s.SetReady(2, true)
	s.Tick(s.CreatedAt.Add(2 * time.Second))
	if got := s.State(); got != models.StateWarmup {
		t.Fatalf("全员准备后状态 = %s, 期望 %s", got, models.StateWarmup)
	}
}

func TestSessionReadyTimeoutCancels(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), sink,
		func(cfg *models.MatchConfig) { cfg.ReadyTimeout = 60 })

	s.SetReady(1, true) // 2号始终未准备

	s.Tick(s.CreatedAt.Add(59 * time.Second))
	if got := s.State(); got != models.StateWaitingForPlayers {
		t.Fatalf("超时前状态 = %s, 不应离开等待阶段", got)
	}

	s.Tick(s.CreatedAt.Add(61 * time.Second))
	if got := s.State(); got != models.StateMatchEnd {
		t.Fatalf("等待超时后状态 = %s, 期望 %s", got, models.StateMatchEnd)
	}
	if sink.match == nil {
		t.Fatal("取消的对局也应发出结束事件")
	}
	if sink.match.Rounds != 0 {
		t.Errorf("取消对局的回合数 = %d, 期望 0", sink.match.Rounds)
	}
}

func TestSessionFullMatchFlow(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), sink,
		func(cfg *models.MatchConfig) { cfg.MaxRounds = 1 })

	now := advanceToRound(t, s)
	if s.CurrentRound() != 1 {
		t.Fatalf("当前回合 = %d, 期望 1", s.CurrentRound())
	}

	// 把目标摆到攻击者正前方并压低血量, 一击致死
	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)
	a.Position = models.Vector2D{X: 800, Y: 450}
	b.Position = models.Vector2D{X: 860, Y: 450}
	b.Health = 30
	b.Shield = 0

	if err := s.SubmitInput(1, models.PlayerInput{Attack: true, Aim: models.Vector2D{X: 1}}); err != nil {
		t.Fatalf("提交输入失败: %v", err)
	}

	// 击杀与回合结束判定在同一帧内完成
	now = now.Add(50 * time.Millisecond)
	s.Tick(now)
	if got := s.State(); got != models.StateRoundEnd {
		t.Fatalf("击杀后状态 = %s, 期望同帧进入 %s", got, models.StateRoundEnd)
	}
	if len(sink.deaths) != 1 || sink.deaths[0] != [2]int64{2, 1} {
		t.Fatalf("死亡事件 = %v, 期望 [[2 1]]", sink.deaths)
	}
	if len(sink.results) != 1 {
		t.Fatalf("回合结算事件数 = %d, 期望 1", len(sink.results))
	}
	result := sink.results[0]
	if result.Draw || result.ByTimeout {
		t.Errorf("淘汰胜利不应是平局或超时: %+v", result)
	}
	if len(result.WinnerIDs) != 1 || result.WinnerIDs[0] != 1 {
		t.Errorf("回合胜者 = %v, 期望 [1]", result.WinnerIDs)
	}
	if result.Awards.MostDamage != 1 || result.Awards.MostKills != 1 {
		t.Errorf("回合奖励 = %+v, 期望均归玩家1", result.Awards)
	}

	// 回合分: 击杀100 + 回合胜者100 + 最高伤害50 + 最多击杀50
	wantScore := scorePerKill + scoreRoundWinner + scoreMostDamage + scoreMostKills
	if result.RoundScores[1] != wantScore {
		t.Errorf("玩家1回合分 = %d, 期望 %d", result.RoundScores[1], wantScore)
	}

	// 最后一回合结算后进入终态
	now = now.Add(secondsToDuration(s.Config.RoundEndDelay))
	s.Tick(now)
	if got := s.State(); got != models.StateMatchEnd {
		t.Fatalf("结算延迟后状态 = %s, 期望 %s", got, models.StateMatchEnd)
	}
	if sink.match == nil {
		t.Fatal("未收到对局结束事件")
	}
	if sink.match.Rounds != 1 {
		t.Errorf("对局回合数 = %d, 期望 1", sink.match.Rounds)
	}
	rankings := sink.match.Rankings
	if len(rankings) != 2 {
		t.Fatalf("排名条目数 = %d, 期望 2", len(rankings))
	}
	if rankings[0].PlayerID != 1 || rankings[0].Place != 1 || rankings[0].Score != wantScore {
		t.Errorf("第一名 = %+v, 期望玩家1得分 %d", rankings[0], wantScore)
	}
	if rankings[1].PlayerID != 2 || rankings[1].Deaths != 1 {
		t.Errorf("第二名 = %+v, 期望玩家2死亡1次", rankings[1])
	}

	// 终态拒绝后续输入
	if err := s.SubmitInput(1, models.PlayerInput{}); err != ErrSessionEnded {
		t.Errorf("终态提交输入应返回 ErrSessionEnded, 实际 %v", err)
	}
}

func TestSessionRoundTimeoutDraw(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), sink, nil)

	now := advanceToRound(t, s)

	// 无人造成任何伤害, 回合按时结束并判平局
	s.Tick(now.Add(secondsToDuration(s.Config.RoundDuration)))
	if got := s.State(); got != models.StateRoundEnd {
		t.Fatalf("超时后状态 = %s, 期望 %s", got, models.StateRoundEnd)
	}
	if len(sink.results) != 1 {
		t.Fatalf("回合结算事件数 = %d, 期望 1", len(sink.results))
	}
	result := sink.results[0]
	if !result.ByTimeout || !result.Draw {
		t.Errorf("零战果超时应判平局: %+v", result)
	}
	if len(result.WinnerIDs) != 0 {
		t.Errorf("平局不应有胜者: %v", result.WinnerIDs)
	}
}

func TestSessionTimeoutWinnerByDamage(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), sink, nil)

	now := advanceToRound(t, s)

	// 玩家2造成过伤害但没有击杀, 超时路径按战果裁决
	a := mustGet(t, s, 2)
	b := mustGet(t, s, 1)
	if _, err := s.resolver.Resolve(a, b, 20, models.DamageMelee, 1.0); err != nil {
		t.Fatalf("结算失败: %v", err)
	}

	s.Tick(now.Add(secondsToDuration(s.Config.RoundDuration)))
	if len(sink.results) != 1 {
		t.Fatalf("回合结算事件数 = %d, 期望 1", len(sink.results))
	}
	result := sink.results[0]
	if result.Draw {
		t.Fatal("有战果的超时回合不应判平局")
	}
	if len(result.WinnerIDs) != 1 || result.WinnerIDs[0] != 2 {
		t.Errorf("超时胜者 = %v, 期望 [2]", result.WinnerIDs)
	}
}

func TestSessionMultiRoundRespawn(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), sink, nil) // MaxRounds=3

	now := advanceToRound(t, s)

	a := mustGet(t, s, 1)
	b := mustGet(t, s, 2)
	a.Position = models.Vector2D{X: 800, Y: 450}
	b.Position = models.Vector2D{X: 860, Y: 450}
	b.Health = 10
	b.Shield = 0

	s.SubmitInput(1, models.PlayerInput{Attack: true, Aim: models.Vector2D{X: 1}})
	now = now.Add(50 * time.Millisecond)
	s.Tick(now)
	if got := s.State(); got != models.StateRoundEnd {
		t.Fatalf("击杀后状态 = %s, 期望 %s", got, models.StateRoundEnd)
	}

	// 未达最大回合数, 进入下一回合并重生全部单位
	now = now.Add(secondsToDuration(s.Config.RoundEndDelay))
	s.Tick(now)
	if got := s.State(); got != models.StateRoundStarting {
		t.Fatalf("结算延迟后状态 = %s, 期望 %s", got, models.StateRoundStarting)
	}
	now = now.Add(secondsToDuration(s.Config.RoundStartDelay))
	s.Tick(now)
	if got := s.State(); got != models.StateRoundInProgress {
		t.Fatalf("倒计时结束后状态 = %s, 期望 %s", got, models.StateRoundInProgress)
	}
	if s.CurrentRound() != 2 {
		t.Errorf("当前回合 = %d, 期望 2", s.CurrentRound())
	}
	if !b.IsAlive || b.Health != b.MaxHealth {
		t.Errorf("新回合应重生死亡单位: alive=%v health=%v", b.IsAlive, b.Health)
	}
	if b.RoundKills != 0 || b.RoundDamageDealt != 0 || b.RoundScore != 0 {
		t.Error("新回合应清零回合统计")
	}
	// 对局统计跨回合保留
	if a.Kills != 1 || b.Deaths != 1 {
		t.Errorf("对局统计丢失: kills=%d deaths=%d", a.Kills, b.Deaths)
	}
	if len(sink.rounds) != 2 {
		t.Errorf("回合开始事件数 = %d, 期望 2", len(sink.rounds))
	}
}

func TestSessionRemovePlayerEndsRound(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), sink, nil)

	now := advanceToRound(t, s)

	// 两人局中一人离开: 剩余一人直接满足淘汰胜利条件
	if err := s.RemovePlayer(2); err != nil {
		t.Fatalf("移除玩家失败: %v", err)
	}
	if got := s.State(); got != models.StateRoundEnd {
		t.Fatalf("玩家离开后状态 = %s, 期望 %s", got, models.StateRoundEnd)
	}

	// 人数跌破下限, 结算延迟后直接终局而不开新回合
	s.Tick(now.Add(50*time.Millisecond + secondsToDuration(s.Config.RoundEndDelay)))
	if got := s.State(); got != models.StateMatchEnd {
		t.Fatalf("人数不足时状态 = %s, 期望 %s", got, models.StateMatchEnd)
	}
	if sink.match == nil || len(sink.match.Rankings) != 1 {
		t.Fatal("终局排名应只含剩余玩家")
	}

	if err := s.RemovePlayer(2); err != ErrUnknownPlayer {
		t.Errorf("重复移除应返回 ErrUnknownPlayer, 实际 %v", err)
	}
}

func TestSessionTDMEliminationWin(t *testing.T) {
	sink := &recordingSink{}
	players := testPlayers(models.ClassWarrior, models.ClassWarrior,
		models.ClassWarrior, models.ClassWarrior)
	s := newTestSession(t, models.TeamDeathMatch, players, sink,
		func(cfg *models.MatchConfig) { cfg.MaxRounds = 1 })

	now := advanceToRound(t, s)

	// 队伍1(玩家1,3)淘汰队伍2(玩家2,4)
	a := mustGet(t, s, 1)
	for _, victimID := range []int64{2, 4} {
		v := mustGet(t, s, victimID)
		v.Health = 1
		v.Shield = 0
		if _, err := s.resolver.Resolve(a, v, 10, models.DamageMelee, 1.0); err != nil {
			t.Fatalf("结算失败: %v", err)
		}
	}

	if got := s.State(); got != models.StateRoundEnd {
		t.Fatalf("全灭后状态 = %s, 期望 %s", got, models.StateRoundEnd)
	}
	if len(sink.results) != 1 {
		t.Fatalf("回合结算事件数 = %d, 期望 1", len(sink.results))
	}
	result := sink.results[0]
	if result.WinnerTeam != 1 {
		t.Errorf("回合胜队 = %d, 期望 1", result.WinnerTeam)
	}
	// 胜队全员获得回合胜者奖励
	if len(result.WinnerIDs) != 2 {
		t.Errorf("胜方成员 = %v, 期望两人", result.WinnerIDs)
	}

	s.Tick(now.Add(secondsToDuration(s.Config.RoundEndDelay) + 50*time.Millisecond))
	if sink.match == nil {
		t.Fatal("未收到对局结束事件")
	}
	if sink.match.WinnerTeam != 1 {
		t.Errorf("对局胜队 = %d, 期望 1", sink.match.WinnerTeam)
	}
}

func TestSessionInputRouting(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), nil, nil)

	if err := s.SubmitInput(99, models.PlayerInput{}); err != ErrUnknownPlayer {
		t.Errorf("未知玩家提交输入应返回 ErrUnknownPlayer, 实际 %v", err)
	}
	if err := s.SetReady(99, true); err != ErrUnknownPlayer {
		t.Errorf("未知玩家设置准备应返回 ErrUnknownPlayer, 实际 %v", err)
	}
	if !s.HasPlayer(1) || s.HasPlayer(99) {
		t.Error("HasPlayer 判定错误")
	}
}

func TestSessionSnapshot(t *testing.T) {
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassArcher, models.ClassTank), nil, nil)

	advanceToRound(t, s)
	snap := s.Snapshot()

	if snap.SessionID != s.ID {
		t.Errorf("快照会话ID = %s, 期望 %s", snap.SessionID, s.ID)
	}
	if snap.State != models.StateRoundInProgress || snap.CurrentRound != 1 {
		t.Errorf("快照状态 = %s/%d, 期望 %s/1", snap.State, snap.CurrentRound, models.StateRoundInProgress)
	}
	if len(snap.Combatants) != 2 {
		t.Fatalf("快照单位数 = %d, 期望 2", len(snap.Combatants))
	}
	if snap.RemainingTime <= 0 || snap.RemainingTime > s.Config.RoundDuration {
		t.Errorf("剩余时间 = %v, 应在 (0, %v] 内", snap.RemainingTime, s.Config.RoundDuration)
	}
	for _, cv := range snap.Combatants {
		if _, ok := snap.Scores[cv.PlayerID]; !ok {
			t.Errorf("快照得分缺少玩家 %d", cv.PlayerID)
		}
	}
}

func TestSessionAbort(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, models.FreeForAll,
		testPlayers(models.ClassWarrior, models.ClassWarrior), sink, nil)

	s.Abort()
	if got := s.State(); got != models.StateMatchEnd {
		t.Fatalf("中止后状态 = %s, 期望 %s", got, models.StateMatchEnd)
	}
	if sink.match == nil {
		t.Fatal("中止也应发出对局结束事件")
	}
	// 重复中止是空操作
	s.Abort()
}
