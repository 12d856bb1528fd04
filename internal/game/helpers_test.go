// helpers_test.go

package game

import (
	"testing"
	"time"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// testMatchConfig 测试用对局配置。暴击关闭以保证结果确定。
func testMatchConfig(mode models.GameMode) models.MatchConfig {
	return models.MatchConfig{
		Mode:            mode,
		MaxRounds:       3,
		RoundDuration:   120,
		WarmupDuration:  10,
		RoundStartDelay: 3,
		RoundEndDelay:   5,
		PlayersPerTeam:  2,
		TeamCount:       2,
		MinPlayers:      2,
		CritChance:      0,
		CritMultiplier:  1.5,
		ArenaWidth:      1600,
		ArenaHeight:     900,
		SpawnPoints: []models.Vector2D{
			{X: 100, Y: 100},
			{X: 1500, Y: 100},
			{X: 100, Y: 800},
			{X: 1500, Y: 800},
			{X: 800, Y: 450},
			{X: 800, Y: 100},
		},
	}
}

func testPlayers(classes ...models.CharacterClass) []models.PlayerInfo {
	players := make([]models.PlayerInfo, 0, len(classes))
	for i, class := range classes {
		players = append(players, models.PlayerInfo{
			PlayerID: int64(i + 1),
			Name:     "player" + string(rune('A'+i)),
			Class:    class,
		})
	}
	return players
}

// newTestSession 创建测试会话。mutate可修改默认配置，sink为nil时用空实现。
func newTestSession(t *testing.T, mode models.GameMode, players []models.PlayerInfo, sink EventSink, mutate func(*models.MatchConfig)) *Session {
	t.Helper()
	cfg := testMatchConfig(mode)
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSession(players, cfg, sink, 50*time.Millisecond, 42)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	return s
}

func mustGet(t *testing.T, s *Session, playerID int64) *models.Combatant {
	t.Helper()
	c, ok := s.roster.Get(playerID)
	if !ok {
		t.Fatalf("玩家 %d 不在名册上", playerID)
	}
	return c
}

// recordingSink 记录会话事件供断言
type recordingSink struct {
	NopEventSink
	states  []models.MatchState
	rounds  []int
	results []models.RoundResult
	deaths  [][2]int64 // victim, killer
	damage  []models.DamageEvent
	match   *models.MatchResult
}

func (r *recordingSink) OnMatchStateChanged(_ string, state models.MatchState) {
	r.states = append(r.states, state)
}

func (r *recordingSink) OnRoundStarted(_ string, round int) {
	r.rounds = append(r.rounds, round)
}

func (r *recordingSink) OnRoundEnded(_ string, result models.RoundResult) {
	r.results = append(r.results, result)
}

func (r *recordingSink) OnMatchEnded(_ string, result models.MatchResult) {
	r.match = &result
}

func (r *recordingSink) OnPlayerDied(_ string, victimID, killerID int64) {
	r.deaths = append(r.deaths, [2]int64{victimID, killerID})
}

func (r *recordingSink) OnDamageApplied(_ string, ev models.DamageEvent) {
	r.damage = append(r.damage, ev)
}

// advanceToRound 驱动会话从等待阶段进入第一回合，返回回合开始的合成时刻
func advanceToRound(t *testing.T, s *Session) time.Time {
	t.Helper()
	for _, c := range s.roster.CombatantsInOrder() {
		if err := s.SetReady(c.PlayerID, true); err != nil {
			t.Fatalf("设置准备失败: %v", err)
		}
	}

	now := s.CreatedAt.Add(time.Second)
	s.Tick(now) // waiting -> warmup
	if got := s.State(); got != models.StateWarmup {
		t.Fatalf("全员准备后状态 = %s, 期望 %s", got, models.StateWarmup)
	}

	now = now.Add(secondsToDuration(s.Config.WarmupDuration))
	s.Tick(now) // warmup -> round_starting
	if got := s.State(); got != models.StateRoundStarting {
		t.Fatalf("热身结束后状态 = %s, 期望 %s", got, models.StateRoundStarting)
	}

	now = now.Add(secondsToDuration(s.Config.RoundStartDelay))
	s.Tick(now) // round_starting -> round_in_progress
	if got := s.State(); got != models.StateRoundInProgress {
		t.Fatalf("倒计时结束后状态 = %s, 期望 %s", got, models.StateRoundInProgress)
	}
	return now
}
