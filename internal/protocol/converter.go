// converter.go

package protocol

import (
	"time"

	"github.com/jacl-coder/ArenaStrike-Server/internal/models"
)

// FrameFromSnapshot 将游戏快照转换为线上状态帧
func FrameFromSnapshot(snap models.Snapshot) *StateFrame {
	frame := &StateFrame{
		FrameID:       snap.FrameID,
		Timestamp:     time.Now().UnixMilli(),
		State:         string(snap.State),
		CurrentRound:  int32(snap.CurrentRound),
		RemainingTime: float32(snap.RemainingTime),
		Combatants:    make([]CombatantInfo, 0, len(snap.Combatants)),
		Scores:        make(map[int64]int32, len(snap.Scores)),
	}

	for _, c := range snap.Combatants {
		frame.Combatants = append(frame.Combatants, CombatantInfo{
			PlayerID:   c.PlayerID,
			Name:       c.Name,
			Class:      string(c.Class),
			Team:       int32(c.Team),
			Position:   Vector2D{X: float32(c.Position.X), Y: float32(c.Position.Y)},
			Health:     float32(c.Health),
			MaxHealth:  float32(c.MaxHealth),
			Shield:     float32(c.Shield),
			MaxShield:  float32(c.MaxShield),
			IsAlive:    c.IsAlive,
			Kills:      int32(c.Kills),
			Deaths:     int32(c.Deaths),
			DashStacks: int32(c.DashStacks),
		})
	}

	for _, p := range snap.Projectiles {
		frame.Projectiles = append(frame.Projectiles, ProjectileInfo{
			ID:       p.ID,
			OwnerID:  p.OwnerID,
			Position: Vector2D{X: float32(p.Position.X), Y: float32(p.Position.Y)},
			Velocity: Vector2D{X: float32(p.Velocity.X), Y: float32(p.Velocity.Y)},
		})
	}

	for id, score := range snap.Scores {
		frame.Scores[id] = int32(score)
	}

	return frame
}
