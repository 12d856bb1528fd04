// match.go

package models

// GameMode 游戏模式
type GameMode string

const (
	// FreeForAll 个人混战
	FreeForAll GameMode = "free_for_all"
	// TeamDeathMatch 团队死斗
	TeamDeathMatch GameMode = "team_death_match"
)

// MatchState 对局状态机状态
type MatchState string

const (
	// StateWaitingForPlayers 等待全员准备
	StateWaitingForPlayers MatchState = "waiting_for_players"
	// StateWarmup 热身
	StateWarmup MatchState = "warmup"
	// StateRoundStarting 回合开始倒计时
	StateRoundStarting MatchState = "round_starting"
	// StateRoundInProgress 回合进行中
	StateRoundInProgress MatchState = "round_in_progress"
	// StateRoundEnd 回合结算
	StateRoundEnd MatchState = "round_end"
	// StateMatchEnd 对局结束(终态)
	StateMatchEnd MatchState = "match_end"
)

// MatchConfig 单场对局的规则配置
type MatchConfig struct {
	Mode            GameMode   `json:"mode"`
	MaxRounds       int        `json:"max_rounds"`
	RoundDuration   float64    `json:"round_duration"` // 秒
	WarmupDuration  float64    `json:"warmup_duration"`
	RoundStartDelay float64    `json:"round_start_delay"`
	RoundEndDelay   float64    `json:"round_end_delay"`
	PlayersPerTeam  int        `json:"players_per_team"` // 团队模式
	TeamCount       int        `json:"team_count"`
	MinPlayers      int        `json:"min_players"`
	ReadyTimeout    float64    `json:"ready_timeout"` // 等待全员准备的超时(秒)，0为不限
	FriendlyFire    bool       `json:"friendly_fire"`
	CritChance      float64    `json:"crit_chance"`
	CritMultiplier  float64    `json:"crit_multiplier"`
	ArenaWidth      float64    `json:"arena_width"`
	ArenaHeight     float64    `json:"arena_height"`
	SpawnPoints     []Vector2D `json:"spawn_points"`
}

// MaxPlayers 该模式允许的最大玩家数
func (c *MatchConfig) MaxPlayers() int {
	if c.Mode == TeamDeathMatch {
		return c.PlayersPerTeam * c.TeamCount
	}
	return len(c.SpawnPoints)
}

// PlayerInfo 建立会话时的玩家身份信息，由匹配服务提供
type PlayerInfo struct {
	PlayerID int64          `json:"player_id"`
	Name     string         `json:"name"`
	Class    CharacterClass `json:"class"`
}

// Team 队伍。成员为弱引用(玩家ID)，队伍不拥有战斗单位的生命周期。
type Team struct {
	ID         TeamID  `json:"id"`
	Members    []int64 `json:"members"`
	Score      int     `json:"score"`
	RoundScore int     `json:"round_score"`
}
