// results.go

package game

import (
	"log"
	"sort"
	"time"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// endRound 结束当前回合并结算。胜负裁决是确定性的：
// 淘汰路径由最先达成胜利条件的那次击杀决定(输入按到达顺序处理，
// 同帧不可能出现两个"最后一杀")；超时路径按回合击杀、回合伤害、
// 加入顺序排序，全部为零时判为平局。
func (s *Session) endRound(now time.Time, byTimeout bool) {
	winners, winnerTeam, draw := s.roundWinners(byTimeout)

	// 胜者奖励
	for _, w := range winners {
		w.RoundScore += scoreRoundWinner
	}

	awards := s.computeAwards()

	// 回合分并入对局分
	roundScores := make(map[int64]int)
	matchScores := make(map[int64]int)
	for _, c := range s.roster.CombatantsInOrder() {
		c.MatchScore += c.RoundScore
		roundScores[c.PlayerID] = c.RoundScore
		matchScores[c.PlayerID] = c.MatchScore
		if t, ok := s.roster.Team(c.Team); ok {
			t.RoundScore += c.RoundScore
			t.Score += c.RoundScore
		}
	}

	result := models.RoundResult{
		Round:       s.currentRound,
		WinnerTeam:  winnerTeam,
		Draw:        draw,
		ByTimeout:   byTimeout,
		Awards:      awards,
		RoundScores: roundScores,
		MatchScores: matchScores,
	}
	for _, w := range winners {
		result.WinnerIDs = append(result.WinnerIDs, w.PlayerID)
	}

	s.setState(models.StateRoundEnd)
	s.phaseDeadline = now.Add(secondsToDuration(s.Config.RoundEndDelay))
	log.Printf("会话 %s 第 %d 回合结束 (超时:%v 平局:%v)", s.ID, s.currentRound, byTimeout, draw)
	s.sink.OnRoundEnded(s.ID, result)
}

// roundWinners 裁决回合胜者
func (s *Session) roundWinners(byTimeout bool) ([]*models.Combatant, models.TeamID, bool) {
	if s.Config.Mode == models.TeamDeathMatch {
		return s.teamRoundWinners(byTimeout)
	}
	return s.ffaRoundWinners(byTimeout)
}

// ffaRoundWinners 个人混战：淘汰路径取唯一存活者；
// 超时路径按(回合击杀, 回合伤害, 加入顺序)取最优，无任何战果判平局。
func (s *Session) ffaRoundWinners(byTimeout bool) ([]*models.Combatant, models.TeamID, bool) {
	if !byTimeout {
		alive := s.roster.AliveCombatants()
		if len(alive) == 1 {
			return alive, alive[0].Team, false
		}
		return nil, models.TeamNone, true
	}

	candidates := s.roster.CombatantsInOrder()
	if len(candidates) == 0 {
		return nil, models.TeamNone, true
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.RoundKills > best.RoundKills ||
			(c.RoundKills == best.RoundKills && c.RoundDamageDealt > best.RoundDamageDealt) {
			best = c
		}
	}
	if best.RoundKills == 0 && best.RoundDamageDealt == 0 {
		return nil, models.TeamNone, true
	}
	return []*models.Combatant{best}, best.Team, false
}

// teamRoundWinners 团队模式：淘汰路径取唯一有存活成员的队伍；
// 超时路径比较(存活人数, 回合击杀数)，严格平手判平局。
func (s *Session) teamRoundWinners(byTimeout bool) ([]*models.Combatant, models.TeamID, bool) {
	if !byTimeout {
		aliveTeams := s.roster.AliveTeams()
		if len(aliveTeams) == 1 {
			return s.teamMembers(aliveTeams[0]), aliveTeams[0], false
		}
		return nil, models.TeamNone, true
	}

	type teamScore struct {
		id    models.TeamID
		alive int
		kills int
	}
	var scores []teamScore
	for _, t := range s.roster.TeamsSorted() {
		ts := teamScore{id: t.ID}
		for _, id := range t.Members {
			if c, ok := s.roster.Get(id); ok {
				if c.IsAlive {
					ts.alive++
				}
				ts.kills += c.RoundKills
			}
		}
		scores = append(scores, ts)
	}
	if len(scores) == 0 {
		return nil, models.TeamNone, true
	}

	best := scores[0]
	tied := false
	for _, ts := range scores[1:] {
		if ts.alive > best.alive || (ts.alive == best.alive && ts.kills > best.kills) {
			best = ts
			tied = false
		} else if ts.alive == best.alive && ts.kills == best.kills {
			tied = true
		}
	}
	if tied {
		return nil, models.TeamNone, true
	}
	return s.teamMembers(best.id), best.id, false
}

// teamMembers 按加入顺序返回指定队伍的全部成员
func (s *Session) teamMembers(id models.TeamID) []*models.Combatant {
	var out []*models.Combatant
	for _, c := range s.roster.CombatantsInOrder() {
		if c.Team == id {
			out = append(out, c)
		}
	}
	return out
}

// computeAwards 回合奖励：最高伤害与最多击杀各得奖励分。
// 并列时加入顺序靠前者获奖，零战果不发奖。
func (s *Session) computeAwards() models.RoundAwards {
	var awards models.RoundAwards
	var mostDamage, mostKills *models.Combatant

	for _, c := range s.roster.CombatantsInOrder() {
		if c.RoundDamageDealt > 0 && (mostDamage == nil || c.RoundDamageDealt > mostDamage.RoundDamageDealt) {
			mostDamage = c
		}
		if c.RoundKills > 0 && (mostKills == nil || c.RoundKills > mostKills.RoundKills) {
			mostKills = c
		}
	}

	if mostDamage != nil {
		mostDamage.RoundScore += scoreMostDamage
		awards.MostDamage = mostDamage.PlayerID
	}
	if mostKills != nil {
		mostKills.RoundScore += scoreMostKills
		awards.MostKills = mostKills.PlayerID
	}
	return awards
}

// finishMatch 进入终态并产出最终排名：按对局分、击杀、伤害、
// 加入顺序依次比较，保证排名确定。
func (s *Session) finishMatch(now time.Time) {
	combatants := s.roster.CombatantsInOrder()
	sort.SliceStable(combatants, func(i, j int) bool {
		a, b := combatants[i], combatants[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		if a.DamageDealt != b.DamageDealt {
			return a.DamageDealt > b.DamageDealt
		}
		return a.JoinOrder < b.JoinOrder
	})

	rankings := make([]models.PlayerRanking, 0, len(combatants))
	for i, c := range combatants {
		rankings = append(rankings, models.PlayerRanking{
			Place:       i + 1,
			PlayerID:    c.PlayerID,
			Name:        c.Name,
			Class:       c.Class,
			Team:        c.Team,
			Score:       c.MatchScore,
			Kills:       c.Kills,
			Deaths:      c.Deaths,
			Assists:     c.Assists,
			DamageDealt: c.DamageDealt,
			DamageTaken: c.DamageTaken,
		})
	}

	result := models.MatchResult{
		MatchID:   s.ID,
		Mode:      s.Config.Mode,
		Rounds:    s.currentRound,
		StartTime: s.StartedAt,
		EndTime:   now,
		Rankings:  rankings,
	}
	// 团队模式下对局胜方取总分最高的队伍
	if s.Config.Mode == models.TeamDeathMatch {
		var bestTeam *models.Team
		for _, t := range s.roster.TeamsSorted() {
			if bestTeam == nil || t.Score > bestTeam.Score {
				bestTeam = t
			}
		}
		if bestTeam != nil {
			result.WinnerTeam = bestTeam.ID
		}
	}

	s.EndedAt = now
	s.setState(models.StateMatchEnd)
	log.Printf("会话 %s 对局结束, 共 %d 回合", s.ID, s.currentRound)
	s.sink.OnMatchEnded(s.ID, result)
}
