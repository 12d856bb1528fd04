// events.go

package game

import (
	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// EventSink 会话事件接收器。由创建方注入，复制层据此向客户端广播。
// 所有回调在会话的模拟协程内同步调用，实现方不得阻塞。
type EventSink interface {
	// OnMatchStateChanged 状态机发生迁移
	OnMatchStateChanged(sessionID string, state models.MatchState)
	// OnRoundStarted 回合开始
	OnRoundStarted(sessionID string, round int)
	// OnRoundEnded 回合结算完成
	OnRoundEnded(sessionID string, result models.RoundResult)
	// OnMatchEnded 对局结束
	OnMatchEnded(sessionID string, result models.MatchResult)
	// OnPlayerDied 玩家死亡
	OnPlayerDied(sessionID string, victimID, killerID int64)
	// OnDamageApplied 伤害结算完成(非零效果)
	OnDamageApplied(sessionID string, ev models.DamageEvent)
	// OnFrame 每个模拟帧的状态快照
	OnFrame(sessionID string, snapshot models.Snapshot)
}

// NopEventSink 空实现，测试或无复制层时使用
type NopEventSink struct{}

func (NopEventSink) OnMatchStateChanged(string, models.MatchState)  {}
func (NopEventSink) OnRoundStarted(string, int)                     {}
func (NopEventSink) OnRoundEnded(string, models.RoundResult)        {}
func (NopEventSink) OnMatchEnded(string, models.MatchResult)        {}
func (NopEventSink) OnPlayerDied(string, int64, int64)              {}
func (NopEventSink) OnDamageApplied(string, models.DamageEvent)     {}
func (NopEventSink) OnFrame(string, models.Snapshot)                {}
