// errors.go

package game

import "errors"

// 可恢复的动作拒绝错误。动作被拒绝时不产生任何状态变化，
// 调用方可用errors.Is做分支判断。
var (
	// ErrCombatantDead 目标已死亡
	ErrCombatantDead = errors.New("战斗单位已死亡")
	// ErrAbilityOnCooldown 技能冷却中
	ErrAbilityOnCooldown = errors.New("技能冷却中")
	// ErrNoDashStacks 冲刺层数不足
	ErrNoDashStacks = errors.New("冲刺层数不足")
	// ErrActionLocked 处于闪避行动锁定窗口
	ErrActionLocked = errors.New("行动锁定中")
	// ErrInvalidDirection 方向向量无效
	ErrInvalidDirection = errors.New("方向向量无效")
	// ErrFriendlyFire 友军伤害被规则阻止
	ErrFriendlyFire = errors.New("友军伤害已阻止")
	// ErrTeamFull 队伍已满
	ErrTeamFull = errors.New("队伍已满")
)

// 会话操作错误
var (
	// ErrUnknownSession 会话不存在
	ErrUnknownSession = errors.New("会话不存在")
	// ErrUnknownPlayer 玩家不在会话中
	ErrUnknownPlayer = errors.New("玩家不在会话中")
	// ErrSessionEnded 对局已结束
	ErrSessionEnded = errors.New("对局已结束")
	// ErrNotInProgress 回合未进行
	ErrNotInProgress = errors.New("回合未进行")
)
