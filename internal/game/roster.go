// roster.go

package game

import (
	"fmt"
	"sort"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// Roster 会话名册与队伍分配器。个人混战模式下每名玩家独占一个队伍，
// 团队模式下按人数最少、编号最小的规则分配到固定队伍。
// 仅由所属会话的模拟协程访问。
type Roster struct {
	mode           models.GameMode
	playersPerTeam int

	combatants map[int64]*models.Combatant
	order      []int64 // 加入顺序

	teams      map[models.TeamID]*models.Team
	teamOrder  []models.TeamID
	nextTeamID models.TeamID // 个人混战的自增队伍编号
}

// NewRoster 创建名册。团队模式预先建立固定队伍集合。
func NewRoster(cfg *models.MatchConfig) *Roster {
	r := &Roster{
		mode:           cfg.Mode,
		playersPerTeam: cfg.PlayersPerTeam,
		combatants:     make(map[int64]*models.Combatant),
		teams:          make(map[models.TeamID]*models.Team),
	}

	if cfg.Mode == models.TeamDeathMatch {
		for i := 1; i <= cfg.TeamCount; i++ {
			id := models.TeamID(i)
			r.teams[id] = &models.Team{ID: id}
			r.teamOrder = append(r.teamOrder, id)
		}
	}
	return r
}

// Assign 将战斗单位放入名册并分配队伍。队伍已满时报错且不产生任何修改。
func (r *Roster) Assign(c *models.Combatant) (models.TeamID, error) {
	if _, ok := r.combatants[c.PlayerID]; ok {
		return models.TeamNone, fmt.Errorf("玩家 %d 已在名册中", c.PlayerID)
	}

	var team *models.Team
	switch r.mode {
	case models.TeamDeathMatch:
		team = r.pickSmallestTeam()
		if team == nil {
			return models.TeamNone, ErrTeamFull
		}
	default:
		// 个人混战：每名玩家一个单独队伍
		r.nextTeamID++
		team = &models.Team{ID: r.nextTeamID}
		r.teams[team.ID] = team
		r.teamOrder = append(r.teamOrder, team.ID)
	}

	team.Members = append(team.Members, c.PlayerID)
	c.Team = team.ID
	c.JoinOrder = len(r.order)
	r.combatants[c.PlayerID] = c
	r.order = append(r.order, c.PlayerID)

	return team.ID, nil
}

// pickSmallestTeam 选择人数最少的队伍，人数相同取编号最小；全满返回nil
func (r *Roster) pickSmallestTeam() *models.Team {
	var best *models.Team
	for _, id := range r.teamOrder {
		t := r.teams[id]
		if len(t.Members) >= r.playersPerTeam {
			continue
		}
		if best == nil || len(t.Members) < len(best.Members) {
			best = t
		}
	}
	return best
}

// Remove 从名册移除玩家。不缩减其它队伍的容量。
func (r *Roster) Remove(playerID int64) bool {
	c, ok := r.combatants[playerID]
	if !ok {
		return false
	}

	if team, ok := r.teams[c.Team]; ok {
		for i, id := range team.Members {
			if id == playerID {
				team.Members = append(team.Members[:i], team.Members[i+1:]...)
				break
			}
		}
		// 个人混战的单人队伍随玩家一起移除
		if r.mode != models.TeamDeathMatch && len(team.Members) == 0 {
			delete(r.teams, team.ID)
			for i, id := range r.teamOrder {
				if id == team.ID {
					r.teamOrder = append(r.teamOrder[:i], r.teamOrder[i+1:]...)
					break
				}
			}
		}
	}

	delete(r.combatants, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get 按玩家ID查找战斗单位
func (r *Roster) Get(playerID int64) (*models.Combatant, bool) {
	c, ok := r.combatants[playerID]
	return c, ok
}

// Count 名册人数
func (r *Roster) Count() int {
	return len(r.combatants)
}

// CombatantsInOrder 按加入顺序返回所有战斗单位，保证遍历确定性
func (r *Roster) CombatantsInOrder() []*models.Combatant {
	out := make([]*models.Combatant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.combatants[id])
	}
	return out
}

// Team 按编号查找队伍
func (r *Roster) Team(id models.TeamID) (*models.Team, bool) {
	t, ok := r.teams[id]
	return t, ok
}

// TeamsSorted 按编号升序返回所有队伍
func (r *Roster) TeamsSorted() []*models.Team {
	out := make([]*models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AliveCombatants 按加入顺序返回所有存活单位
func (r *Roster) AliveCombatants() []*models.Combatant {
	out := make([]*models.Combatant, 0, len(r.order))
	for _, id := range r.order {
		if c := r.combatants[id]; c.IsAlive {
			out = append(out, c)
		}
	}
	return out
}

// AliveTeams 返回仍有存活成员的队伍编号，升序
func (r *Roster) AliveTeams() []models.TeamID {
	alive := make(map[models.TeamID]bool)
	for _, id := range r.order {
		if c := r.combatants[id]; c.IsAlive {
			alive[c.Team] = true
		}
	}
	out := make([]models.TeamID, 0, len(alive))
	for id := range alive {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
