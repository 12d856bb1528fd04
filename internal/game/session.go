// session.go

package game

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// queuedIntent 排队等待处理的玩家输入
type queuedIntent struct {
	playerID int64
	input    models.PlayerInput
}

// Session 一场对局的权威会话。所有可变状态由会话的模拟协程独占修改，
// 其它协程只能通过SubmitInput等入口排队请求或读取快照。
type Session struct {
	ID        string
	Config    models.MatchConfig
	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time

	// mu保护以下全部对局状态
	mu            sync.RWMutex
	state         models.MatchState
	currentRound  int
	phaseDeadline time.Time
	roster        *Roster
	ready         map[int64]bool
	projectiles   []*Projectile
	frameID       int64
	lastTick      time.Time
	lastActivity  time.Time
	aborted       bool

	abilities *AbilityExecutor
	resolver  *DamageResolver
	rng       *rand.Rand
	sink      EventSink

	// 输入队列，按到达顺序在每帧开始时取出
	pendingMu sync.Mutex
	pending   []queuedIntent

	tickInterval time.Duration
	shutdown     chan struct{}
	stopOnce     sync.Once
	isRunning    bool
}

// NewSession 创建会话并完成名册分配。配置错误(空出生点、重复玩家、
// 未知职业、人数超限)在第一帧运行之前在这里全部报出。
func NewSession(players []models.PlayerInfo, cfg models.MatchConfig, sink EventSink, tickInterval time.Duration, seed int64) (*Session, error) {
	if len(cfg.SpawnPoints) == 0 {
		return nil, fmt.Errorf("配置错误: 出生点列表为空")
	}
	if cfg.MaxRounds <= 0 {
		return nil, fmt.Errorf("配置错误: 最大回合数必须为正")
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("配置错误: 玩家名单为空")
	}
	if len(players) > cfg.MaxPlayers() {
		return nil, fmt.Errorf("配置错误: 玩家数 %d 超过模式上限 %d", len(players), cfg.MaxPlayers())
	}
	if sink == nil {
		sink = NopEventSink{}
	}

	s := &Session{
		ID:           uuid.New().String(),
		Config:       cfg,
		CreatedAt:    time.Now(),
		state:        models.StateWaitingForPlayers,
		roster:       NewRoster(&cfg),
		ready:        make(map[int64]bool),
		rng:          rand.New(rand.NewSource(seed)),
		sink:         sink,
		tickInterval: tickInterval,
		shutdown:     make(chan struct{}),
		lastActivity: time.Now(),
	}
	s.abilities = newAbilityExecutor(s)
	s.resolver = newDamageResolver(s, s.rng)

	seen := make(map[int64]bool)
	for i, p := range players {
		if seen[p.PlayerID] {
			return nil, fmt.Errorf("配置错误: 玩家ID %d 重复", p.PlayerID)
		}
		seen[p.PlayerID] = true

		c, ok := models.NewCombatant(p.PlayerID, p.Name, p.Class, i)
		if !ok {
			return nil, fmt.Errorf("配置错误: 未知职业 %s", p.Class)
		}
		if _, err := s.roster.Assign(c); err != nil {
			return nil, fmt.Errorf("配置错误: 分配队伍失败: %w", err)
		}
	}

	return s, nil
}

// Start 启动会话模拟协程
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return fmt.Errorf("会话已经在运行")
	}
	s.isRunning = true
	log.Printf("会话 %s 启动, 模式: %s, 玩家数: %d", s.ID, s.Config.Mode, s.roster.Count())

	go s.loop()
	return nil
}

// Stop 停止会话模拟协程
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdown)
	})
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
	log.Printf("会话 %s 已停止", s.ID)
}

// loop 固定频率的模拟循环
func (s *Session) loop() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.Tick(now)
		case <-s.shutdown:
			return
		}
	}
}

// Tick 推进一个模拟帧。同一帧内先处理全部排队输入(到达顺序)，
// 再推进投射物与阶段计时。测试可直接以合成时间驱动。
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deltaTime float64
	if !s.lastTick.IsZero() {
		deltaTime = now.Sub(s.lastTick).Seconds()
	}
	s.lastTick = now
	s.frameID++

	intents := s.drainIntents()

	switch s.state {
	case models.StateWaitingForPlayers:
		s.checkAllReady(now)
		if s.state == models.StateWaitingForPlayers && s.Config.ReadyTimeout > 0 &&
			now.Sub(s.CreatedAt) >= secondsToDuration(s.Config.ReadyTimeout) {
			log.Printf("会话 %s 等待准备超时, 对局取消", s.ID)
			s.finishMatch(now)
		}
	case models.StateWarmup:
		if !now.Before(s.phaseDeadline) {
			s.beginRoundStarting(now)
		}
	case models.StateRoundInProgress:
		s.updateAbilityTimers(now)
		s.processIntents(intents, deltaTime, now)
		if s.state == models.StateRoundInProgress {
			s.updateProjectiles(deltaTime)
		}
		if s.state == models.StateRoundInProgress && !now.Before(s.phaseDeadline) {
			// 超时兜底：无人达成胜利条件时回合按时结束
			s.endRound(now, true)
		}
	case models.StateRoundStarting:
		if !now.Before(s.phaseDeadline) {
			s.startRound(now)
		}
	case models.StateRoundEnd:
		if !now.Before(s.phaseDeadline) {
			if s.currentRound >= s.Config.MaxRounds || s.roster.Count() < s.Config.MinPlayers {
				s.finishMatch(now)
			} else {
				s.beginRoundStarting(now)
			}
		}
	case models.StateMatchEnd:
		// 终态
	}

	s.sink.OnFrame(s.ID, s.snapshotLocked(now))
}

// SubmitInput 排队一帧输入。未知玩家与已结束的对局被拒绝；
// 其余校验(死亡、冷却、阶段)在处理时进行，失败输入不影响其他玩家。
func (s *Session) SubmitInput(playerID int64, input models.PlayerInput) error {
	s.mu.RLock()
	state := s.state
	_, known := s.roster.Get(playerID)
	s.mu.RUnlock()

	if state == models.StateMatchEnd {
		return ErrSessionEnded
	}
	if !known {
		return ErrUnknownPlayer
	}

	s.pendingMu.Lock()
	s.pending = append(s.pending, queuedIntent{playerID: playerID, input: input})
	s.pendingMu.Unlock()

	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
	return nil
}

// SetReady 设置玩家准备状态，仅在等待阶段有效
func (s *Session) SetReady(playerID int64, ready bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.StateMatchEnd {
		return ErrSessionEnded
	}
	if _, ok := s.roster.Get(playerID); !ok {
		return ErrUnknownPlayer
	}
	if s.state != models.StateWaitingForPlayers {
		return nil
	}

	if ready {
		s.ready[playerID] = true
	} else {
		delete(s.ready, playerID)
	}
	s.lastActivity = time.Now()
	return nil
}

// RemovePlayer 处理玩家断线：从名册移除，回合中人数跌破下限时
// 强制提前结束当前回合。
func (s *Session) RemovePlayer(playerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.roster.Remove(playerID) {
		return ErrUnknownPlayer
	}
	delete(s.ready, playerID)
	log.Printf("玩家 %d 离开会话 %s", playerID, s.ID)

	now := s.lastTick
	if now.IsZero() {
		now = time.Now()
	}

	if s.state == models.StateRoundInProgress {
		// 移除可能直接满足淘汰胜利条件
		s.checkRoundEnd(now)
		if s.state == models.StateRoundInProgress && s.roster.Count() < s.Config.MinPlayers {
			s.endRound(now, true)
		}
	}
	return nil
}

// Abort 中止钩子。永远无法全员就绪的会话由外部协作方调用此入口收尾。
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.StateMatchEnd {
		return
	}
	s.aborted = true
	now := s.lastTick
	if now.IsZero() {
		now = time.Now()
	}
	log.Printf("会话 %s 已中止", s.ID)
	s.finishMatch(now)
}

// State 当前状态机状态
func (s *Session) State() models.MatchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentRound 当前回合号，首回合开始前为0
func (s *Session) CurrentRound() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRound
}

// HasPlayer 玩家是否在名册上
func (s *Session) HasPlayer(playerID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roster.Get(playerID)
	return ok
}

// Snapshot 返回会话状态的只读深拷贝
func (s *Session) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.lastTick
	if now.IsZero() {
		now = time.Now()
	}
	return s.snapshotLocked(now)
}

// ShouldCleanup 会话是否可以被服务器回收
func (s *Session) ShouldCleanup() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == models.StateMatchEnd {
		return time.Since(s.EndedAt) > 2*time.Minute
	}
	if s.roster.Count() == 0 {
		return time.Since(s.lastActivity) > 5*time.Minute
	}
	return false
}

// drainIntents 取出全部排队输入，保持到达顺序
func (s *Session) drainIntents() []queuedIntent {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	intents := s.pending
	s.pending = nil
	return intents
}

// processIntents 按到达顺序处理本帧输入。单个输入的失败只记录日志，
// 不影响同帧其他玩家的处理。
func (s *Session) processIntents(intents []queuedIntent, deltaTime float64, now time.Time) {
	for _, qi := range intents {
		if s.state != models.StateRoundInProgress {
			// 回合已在本帧内结束，剩余输入全部丢弃
			return
		}
		c, ok := s.roster.Get(qi.playerID)
		if !ok || !c.IsAlive {
			continue
		}
		s.applyIntent(c, qi.input, deltaTime, now)
	}
}

// applyIntent 应用单个玩家的一帧输入。技能按固定顺序结算：
// 闪避、冲刺、攻击、移动，保证同帧内结果确定。
func (s *Session) applyIntent(c *models.Combatant, in models.PlayerInput, deltaTime float64, now time.Time) {
	if in.Dodge {
		if err := s.abilities.Dodge(c, now); err != nil {
			logActionRejected(c.PlayerID, "dodge", err)
		}
	}
	if in.Dash {
		dir := in.Movement
		if dir.Length() == 0 {
			dir = in.Aim
		}
		if err := s.abilities.Dash(c, dir, now); err != nil {
			logActionRejected(c.PlayerID, "dash", err)
		}
	}
	if in.Attack && s.state == models.StateRoundInProgress {
		if err := s.abilities.Attack(c, in.Aim, in.ChargeRatio, now); err != nil {
			logActionRejected(c.PlayerID, "attack", err)
		}
	}
	if s.state == models.StateRoundInProgress {
		// 闪避锁定期间的移动失败是预期行为，不记录日志
		s.abilities.Move(c, in.Movement, deltaTime, now)
	}
}

// updateAbilityTimers 推进所有战斗单位的技能计时(冲刺层数恢复)
func (s *Session) updateAbilityTimers(now time.Time) {
	for _, c := range s.roster.CombatantsInOrder() {
		c.UpdateAbilities(now)
	}
}

// checkAllReady 等待阶段：全员准备且人数足够时进入热身
func (s *Session) checkAllReady(now time.Time) {
	count := s.roster.Count()
	if count < s.Config.MinPlayers {
		return
	}
	for _, c := range s.roster.CombatantsInOrder() {
		if !s.ready[c.PlayerID] {
			return
		}
	}

	s.setState(models.StateWarmup)
	s.phaseDeadline = now.Add(secondsToDuration(s.Config.WarmupDuration))
	log.Printf("会话 %s 全员就绪, 进入热身", s.ID)
}

// beginRoundStarting 进入回合开始倒计时
func (s *Session) beginRoundStarting(now time.Time) {
	s.setState(models.StateRoundStarting)
	s.phaseDeadline = now.Add(secondsToDuration(s.Config.RoundStartDelay))
}

// startRound 开始新回合：回合号自增，清零回合统计，
// 在打乱后的出生点重生全部战斗单位。
func (s *Session) startRound(now time.Time) {
	s.currentRound++
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	s.projectiles = nil

	perm := s.rng.Perm(len(s.Config.SpawnPoints))
	for i, c := range s.roster.CombatantsInOrder() {
		spawn := s.Config.SpawnPoints[perm[i%len(perm)]]
		c.Respawn(spawn)
		c.ResetRoundStats()
	}
	for _, t := range s.roster.TeamsSorted() {
		t.RoundScore = 0
	}

	s.setState(models.StateRoundInProgress)
	s.phaseDeadline = now.Add(secondsToDuration(s.Config.RoundDuration))
	log.Printf("会话 %s 第 %d 回合开始", s.ID, s.currentRound)
	s.sink.OnRoundStarted(s.ID, s.currentRound)
}

// onCombatantKilled 击杀回调，由伤害结算器同步调用。
// 回合结束判定在这里立即执行，胜负在产生击杀的同一帧内生效。
func (s *Session) onCombatantKilled(attacker, victim *models.Combatant) {
	log.Printf("会话 %s: 玩家 %d 击杀了玩家 %d", s.ID, attacker.PlayerID, victim.PlayerID)
	s.sink.OnPlayerDied(s.ID, victim.PlayerID, attacker.PlayerID)

	if s.state == models.StateRoundInProgress {
		now := s.lastTick
		if now.IsZero() {
			now = time.Now()
		}
		s.checkRoundEnd(now)
	}
}

// checkRoundEnd 淘汰胜利条件：个人混战存活≤1，团队模式仅剩一队有存活
func (s *Session) checkRoundEnd(now time.Time) {
	switch s.Config.Mode {
	case models.TeamDeathMatch:
		if len(s.roster.AliveTeams()) <= 1 {
			s.endRound(now, false)
		}
	default:
		if len(s.roster.AliveCombatants()) <= 1 {
			s.endRound(now, false)
		}
	}
}

// setState 迁移状态并通知事件接收器
func (s *Session) setState(state models.MatchState) {
	if s.state == state {
		return
	}
	s.state = state
	s.sink.OnMatchStateChanged(s.ID, state)
}

// snapshotLocked 在持锁状态下构造快照
func (s *Session) snapshotLocked(now time.Time) models.Snapshot {
	var remaining float64
	if !s.phaseDeadline.IsZero() && s.phaseDeadline.After(now) {
		remaining = s.phaseDeadline.Sub(now).Seconds()
	}

	combatants := make([]models.CombatantView, 0, s.roster.Count())
	scores := make(map[int64]int, s.roster.Count())
	for _, c := range s.roster.CombatantsInOrder() {
		combatants = append(combatants, models.CombatantView{
			PlayerID:   c.PlayerID,
			Name:       c.Name,
			Class:      c.Class,
			Team:       c.Team,
			Position:   c.Position,
			Health:     c.Health,
			MaxHealth:  c.MaxHealth,
			Shield:     c.Shield,
			MaxShield:  c.MaxShield,
			IsAlive:    c.IsAlive,
			Kills:      c.Kills,
			Deaths:     c.Deaths,
			DashStacks: c.DashStacks,
		})
		scores[c.PlayerID] = c.MatchScore
	}

	projectiles := make([]models.ProjectileView, 0, len(s.projectiles))
	for _, p := range s.projectiles {
		projectiles = append(projectiles, models.ProjectileView{
			ID:       p.ID,
			OwnerID:  p.OwnerID,
			Position: p.Position,
			Velocity: p.Velocity,
		})
	}

	teams := make([]models.Team, 0)
	if s.Config.Mode == models.TeamDeathMatch {
		for _, t := range s.roster.TeamsSorted() {
			members := make([]int64, len(t.Members))
			copy(members, t.Members)
			teams = append(teams, models.Team{ID: t.ID, Members: members, Score: t.Score, RoundScore: t.RoundScore})
		}
	}

	return models.Snapshot{
		SessionID:     s.ID,
		Mode:          s.Config.Mode,
		State:         s.state,
		CurrentRound:  s.currentRound,
		MaxRounds:     s.Config.MaxRounds,
		FrameID:       s.frameID,
		RemainingTime: remaining,
		Combatants:    combatants,
		Projectiles:   projectiles,
		Teams:         teams,
		Scores:        scores,
	}
}

// logActionRejected 动作拒绝仅记录日志，不向外传播
func logActionRejected(playerID int64, action string, err error) {
	log.Printf("玩家 %d 的 %s 动作被拒绝: %v", playerID, action, err)
}

// secondsToDuration 秒数转Duration
func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
