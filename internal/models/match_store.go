// match_store.go

package models

import (
	"fmt"

	"github.com/jacl-coder/ArenaStrike-Server/pkg/db"
)

// MatchStore 对局结果持久化
type MatchStore struct{}

// NewMatchStore 创建对局结果存储
func NewMatchStore() *MatchStore {
	return &MatchStore{}
}

// SaveMatchResult 将对局结果写入数据库。对局记录、玩家对局记录
// 和玩家累计战绩在同一事务内更新。
func (ms *MatchStore) SaveMatchResult(result *MatchResult) error {
	if db.DB == nil {
		return fmt.Errorf("数据库尚未初始化")
	}

	tx, err := db.DB.Begin()
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	var winnerID int64
	if len(result.Rankings) > 0 && result.WinnerTeam == TeamNone {
		winnerID = result.Rankings[0].PlayerID
	}
	duration := int(result.EndTime.Sub(result.StartTime).Seconds())

	_, err = tx.Exec(`
		INSERT INTO match_records (id, game_mode, start_time, end_time, rounds, winner_id, winning_team, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, result.MatchID, string(result.Mode), result.StartTime, result.EndTime,
		result.Rounds, winnerID, int(result.WinnerTeam), duration)
	if err != nil {
		return fmt.Errorf("写入对局记录失败: %w", err)
	}

	for _, r := range result.Rankings {
		_, err = tx.Exec(`
			INSERT INTO player_match_records (match_id, player_id, class, team, place, score, kills, deaths, assists, damage_dealt, damage_taken)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (match_id, player_id) DO NOTHING
		`, result.MatchID, r.PlayerID, string(r.Class), int(r.Team), r.Place,
			r.Score, r.Kills, r.Deaths, r.Assists, r.DamageDealt, r.DamageTaken)
		if err != nil {
			return fmt.Errorf("写入玩家 %d 对局记录失败: %w", r.PlayerID, err)
		}

		won := 0
		if ms.isWinner(result, r) {
			won = 1
		}
		_, err = tx.Exec(`
			UPDATE players
			SET total_kills = total_kills + $1,
			    total_deaths = total_deaths + $2,
			    total_assists = total_assists + $3,
			    total_matches = total_matches + 1,
			    total_wins = total_wins + $4,
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = $5
		`, r.Kills, r.Deaths, r.Assists, won, r.PlayerID)
		if err != nil {
			return fmt.Errorf("更新玩家 %d 累计战绩失败: %w", r.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// isWinner 该排名条目是否计为胜场。团队模式看所属队伍，
// 个人模式只有第一名计胜。
func (ms *MatchStore) isWinner(result *MatchResult, r PlayerRanking) bool {
	if result.WinnerTeam != TeamNone {
		return r.Team == result.WinnerTeam
	}
	return r.Place == 1
}

// GetPlayerStats 查询玩家累计战绩
func (ms *MatchStore) GetPlayerStats(playerID int64) (*PlayerStats, error) {
	if db.DB == nil {
		return nil, fmt.Errorf("数据库尚未初始化")
	}

	stats := &PlayerStats{PlayerID: playerID}
	err := db.DB.QueryRow(`
		SELECT total_matches, total_wins, total_kills, total_deaths, total_assists
		FROM players WHERE id = $1
	`, playerID).Scan(&stats.TotalMatches, &stats.TotalWins,
		&stats.TotalKills, &stats.TotalDeaths, &stats.TotalAssists)
	if err != nil {
		return nil, fmt.Errorf("查询玩家战绩失败: %w", err)
	}

	stats.Losses = stats.TotalMatches - stats.TotalWins
	if stats.TotalMatches > 0 {
		stats.WinRate = float64(stats.TotalWins) / float64(stats.TotalMatches)
	}
	if stats.TotalDeaths > 0 {
		stats.KDA = float64(stats.TotalKills+stats.TotalAssists) / float64(stats.TotalDeaths)
	} else {
		stats.KDA = float64(stats.TotalKills + stats.TotalAssists)
	}

	var avgScore *float64
	err = db.DB.QueryRow(`
		SELECT AVG(score) FROM player_match_records WHERE player_id = $1
	`, playerID).Scan(&avgScore)
	if err == nil && avgScore != nil {
		stats.AverageScore = *avgScore
	}

	return stats, nil
}

// GetPlayerMatchHistory 查询玩家最近的对局记录
func (ms *MatchStore) GetPlayerMatchHistory(playerID int64, limit int) ([]PlayerMatchRecord, error) {
	if db.DB == nil {
		return nil, fmt.Errorf("数据库尚未初始化")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := db.DB.Query(`
		SELECT pmr.match_id, pmr.player_id, pmr.class, pmr.team, pmr.place,
		       pmr.score, pmr.kills, pmr.deaths, pmr.assists, pmr.damage_dealt, pmr.damage_taken
		FROM player_match_records pmr
		JOIN match_records mr ON mr.id = pmr.match_id
		WHERE pmr.player_id = $1
		ORDER BY mr.end_time DESC
		LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询对局历史失败: %w", err)
	}
	defer rows.Close()

	var records []PlayerMatchRecord
	for rows.Next() {
		var rec PlayerMatchRecord
		var class string
		if err := rows.Scan(&rec.MatchID, &rec.PlayerID, &class, &rec.Team, &rec.Place,
			&rec.Score, &rec.Kills, &rec.Deaths, &rec.Assists, &rec.DamageDealt, &rec.DamageTaken); err != nil {
			return nil, fmt.Errorf("读取对局记录失败: %w", err)
		}
		rec.Class = CharacterClass(class)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetMatchRecord 按对局ID查询对局记录
func (ms *MatchStore) GetMatchRecord(matchID string) (*MatchRecord, error) {
	if db.DB == nil {
		return nil, fmt.Errorf("数据库尚未初始化")
	}

	var rec MatchRecord
	var mode string
	err := db.DB.QueryRow(`
		SELECT id, game_mode, start_time, end_time, rounds, winner_id, winning_team, duration
		FROM match_records WHERE id = $1
	`, matchID).Scan(&rec.ID, &mode, &rec.StartTime, &rec.EndTime,
		&rec.Rounds, &rec.WinnerID, &rec.WinningTeam, &rec.Duration)
	if err != nil {
		return nil, fmt.Errorf("查询对局记录失败: %w", err)
	}
	rec.GameMode = GameMode(mode)
	return &rec, nil
}
