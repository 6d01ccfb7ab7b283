package collision

// Tile indices of the game, front and door layers, and the type values of
// the tele, speedup, switch and tune layers.
const (
	TileAir = iota
	TileSolid
	TileDeath
	TileNoHook
	TileNoLaser
	TileThroughCut
	TileThrough
	TileJump
	_
	TileFreeze
	TileTeleInEvil
	TileUnfreeze
	TileDFreeze
	TileDUnfreeze
	TileTeleInWeapon
	TileTeleInHook
	TileWallJump
	TileEHookEnable
	TileEHookDisable
	TileHitEnable
	TileHitDisable
	TileSoloEnable
	TileSoloDisable
	TileSwitchTimedOpen
	TileSwitchTimedClose
	TileSwitchOpen
	TileSwitchClose
	TileTeleIn
	TileTeleOut
	TileBoost
	TileTeleCheck
	TileTeleCheckOut
	TileTeleCheckIn
	TileRefillJumps
	TileStart
	TileFinish
)

const (
	TileTimeCheckpointFirst = 35
	TileTimeCheckpointLast  = 59

	TileStop              = 60
	TileStopS             = 61
	TileStopA             = 62
	TileTeleCheckInEvil   = 63
	TileCP                = 64
	TileCPF               = 65
	TileThroughAll        = 66
	TileThroughDir        = 67
	TileTune              = 68
	TileOldLaser          = 71
	TileNPC               = 72
	TileEHook             = 73
	TileNoHit             = 74
	TileNPH               = 75
	TileUnlockTeam        = 76
	TileAddTime           = 79
	TileNPCDisable        = 88
	TileUnlimitedJumpsOff = 89
	TileJetpackDisable    = 90
	TileNPHDisable        = 91
	TileSubtractTime      = 95
	TileTeleGunEnable     = 96
	TileTeleGunDisable    = 97
	TileAllowTeleGun      = 98
	TileAllowBlueTeleGun  = 99
	TileNPCEnable         = 104
	TileUnlimitedJumpsOn  = 105
	TileJetpackEnable     = 106
	TileNPHEnable         = 107
	TileTeleGrenadeOn     = 112
	TileTeleGrenadeOff    = 113
	TileTeleLaserOn       = 128
	TileTeleLaserOff      = 129
	TileLFreeze           = 144
	TileLUnfreeze         = 145
)

// Tile flags and the rotations they encode.
const (
	FlagXFlip  = 1
	FlagYFlip  = 2
	FlagOpaque = 4
	FlagRotate = 8

	Rotation0   = 0
	Rotation90  = FlagRotate
	Rotation180 = FlagXFlip | FlagYFlip
	Rotation270 = FlagXFlip | FlagYFlip | FlagRotate
)

// Move restriction bits.
const (
	CantMoveLeft = 1 << iota
	CantMoveRight
	CantMoveUp
	CantMoveDown
)

// TileSize is the edge length of one map tile in world units.
const TileSize = 32

type Tile struct {
	Index uint8
	Flags uint8
}

type TeleTile struct {
	Number uint8
	Type   uint8
}

type SpeedupTile struct {
	Force    uint8
	MaxSpeed uint8
	Type     uint8
	Angle    int16 // degrees
}

type SwitchTile struct {
	Number uint8
	Type   uint8
	Flags  uint8
	Delay  uint8
}

type TuneTile struct {
	Number uint8
	Type   uint8
}

// DoorTile is a runtime tile carved by door entities.
type DoorTile struct {
	Index  uint8
	Flags  uint8
	Number int
}
