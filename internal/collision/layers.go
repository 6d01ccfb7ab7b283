package collision

import (
	"github.com/ddnetgo/predict/internal/vmath"
)

func (c *Collision) IsTeleport(idx int) int {
	if idx < 0 || c.tele == nil || c.tele[idx].Type != TileTeleIn {
		return 0
	}
	return int(c.tele[idx].Number)
}

func (c *Collision) IsEvilTeleport(idx int) int {
	if idx < 0 || c.tele == nil || c.tele[idx].Type != TileTeleInEvil {
		return 0
	}
	return int(c.tele[idx].Number)
}

func (c *Collision) IsCheckTeleport(idx int) bool {
	return idx >= 0 && c.tele != nil && c.tele[idx].Type == TileTeleCheckIn
}

func (c *Collision) IsCheckEvilTeleport(idx int) bool {
	return idx >= 0 && c.tele != nil && c.tele[idx].Type == TileTeleCheckInEvil
}

func (c *Collision) IsTeleCheckpoint(idx int) int {
	if idx < 0 || c.tele == nil || c.tele[idx].Type != TileTeleCheck {
		return 0
	}
	return int(c.tele[idx].Number)
}

func (c *Collision) IsTeleportWeapon(idx int) int {
	if idx < 0 || c.tele == nil || c.tele[idx].Type != TileTeleInWeapon {
		return 0
	}
	return int(c.tele[idx].Number)
}

func (c *Collision) IsTeleportHook(idx int) int {
	if idx < 0 || c.tele == nil || c.tele[idx].Type != TileTeleInHook {
		return 0
	}
	return int(c.tele[idx].Number)
}

// IsSpeedup returns idx if it holds a speedup with force, else 0.
func (c *Collision) IsSpeedup(idx int) int {
	if idx < 0 || c.speedup == nil || c.speedup[idx].Force == 0 {
		return 0
	}
	return idx
}

// GetSpeedup returns the direction, force and max speed of the speedup at
// idx.
func (c *Collision) GetSpeedup(idx int) (dir vmath.Vec2, force, maxSpeed int) {
	if idx < 0 || c.speedup == nil {
		return vmath.Vec2{}, 0, 0
	}
	s := c.speedup[idx]
	return vmath.Direction(float32(s.Angle) * (vmath.Pi / 180)), int(s.Force), int(s.MaxSpeed)
}

// IsTune returns the tune zone number at idx, or 0.
func (c *Collision) IsTune(idx int) int {
	if idx < 0 || c.tune == nil || c.tune[idx].Type == 0 {
		return 0
	}
	return int(c.tune[idx].Number)
}

func (c *Collision) GetSwitchType(idx int) int {
	if idx < 0 || c.sw == nil {
		return 0
	}
	return int(c.sw[idx].Type)
}

func (c *Collision) GetSwitchNumber(idx int) int {
	if idx < 0 || c.sw == nil || c.sw[idx].Type == 0 || c.sw[idx].Number == 0 {
		return 0
	}
	return int(c.sw[idx].Number)
}

func (c *Collision) GetSwitchDelay(idx int) int {
	if idx < 0 || c.sw == nil || c.sw[idx].Type == 0 {
		return 0
	}
	return int(c.sw[idx].Delay)
}

func (c *Collision) IsWallJump(idx int) bool {
	return idx >= 0 && c.tiles[idx].Index == TileWallJump
}

// IsTimeCheckpoint returns the checkpoint number at idx, or -1.
func (c *Collision) IsTimeCheckpoint(idx int) int {
	if idx < 0 {
		return -1
	}
	z := int(c.tiles[idx].Index)
	if z >= TileTimeCheckpointFirst && z <= TileTimeCheckpointLast {
		return z - TileTimeCheckpointFirst
	}
	return -1
}
