package protocol

// Object types as they appear in snapshot items.
const (
	ObjTypeInvalid          uint16 = 0
	ObjTypePlayerInput      uint16 = 1
	ObjTypeProjectile       uint16 = 2
	ObjTypeLaser            uint16 = 3
	ObjTypePickup           uint16 = 4
	ObjTypeCharacter        uint16 = 9
	ObjTypeDDNetCharacter   uint16 = 32
	ObjTypeDDRaceProjectile uint16 = 33
	ObjTypeDDNetLaser       uint16 = 34
	ObjTypeDDNetProjectile  uint16 = 35
	ObjTypeDDNetPickup      uint16 = 36
	ObjTypeEntityEx         uint16 = 37
	ObjTypeSwitchState      uint16 = 38
	ObjTypeTargetSwitch     uint16 = 39
)

// Object is a fixed-layout network object made of int32 fields.
type Object interface {
	ObjType() uint16
	fields() []*int32
}

// defaulter is implemented by objects whose trailing fields are optional.
type defaulter interface {
	setDefaults()
}

type PlayerInput struct {
	Direction    int32
	TargetX      int32
	TargetY      int32
	Jump         int32
	Fire         int32
	Hook         int32
	PlayerFlags  int32
	WantedWeapon int32
	NextWeapon   int32
	PrevWeapon   int32
}

func (*PlayerInput) ObjType() uint16 { return ObjTypePlayerInput }
func (o *PlayerInput) fields() []*int32 {
	return []*int32{&o.Direction, &o.TargetX, &o.TargetY, &o.Jump, &o.Fire, &o.Hook,
		&o.PlayerFlags, &o.WantedWeapon, &o.NextWeapon, &o.PrevWeapon}
}

type Projectile struct {
	X, Y       int32
	VelX, VelY int32
	Type       int32
	StartTick  int32
}

func (*Projectile) ObjType() uint16 { return ObjTypeProjectile }
func (o *Projectile) fields() []*int32 {
	return []*int32{&o.X, &o.Y, &o.VelX, &o.VelY, &o.Type, &o.StartTick}
}

// DDRaceProjectile shares the Projectile layout with angle and data packed
// into the velocity fields.
type DDRaceProjectile struct {
	X, Y      int32
	Angle     int32
	Data      int32
	Type      int32
	StartTick int32
}

func (*DDRaceProjectile) ObjType() uint16 { return ObjTypeDDRaceProjectile }
func (o *DDRaceProjectile) fields() []*int32 {
	return []*int32{&o.X, &o.Y, &o.Angle, &o.Data, &o.Type, &o.StartTick}
}

type DDNetProjectile struct {
	X, Y         int32
	VelX, VelY   int32
	Type         int32
	StartTick    int32
	Owner        int32
	SwitchNumber int32
	TuneZone     int32
	Flags        int32
}

func (*DDNetProjectile) ObjType() uint16 { return ObjTypeDDNetProjectile }
func (o *DDNetProjectile) fields() []*int32 {
	return []*int32{&o.X, &o.Y, &o.VelX, &o.VelY, &o.Type, &o.StartTick, &o.Owner,
		&o.SwitchNumber, &o.TuneZone, &o.Flags}
}

type Laser struct {
	X, Y         int32
	FromX, FromY int32
	StartTick    int32
}

func (*Laser) ObjType() uint16 { return ObjTypeLaser }
func (o *Laser) fields() []*int32 {
	return []*int32{&o.X, &o.Y, &o.FromX, &o.FromY, &o.StartTick}
}

type DDNetLaser struct {
	ToX, ToY     int32
	FromX, FromY int32
	StartTick    int32
	Owner        int32
	Type         int32
	SwitchNumber int32
	Subtype      int32
	Flags        int32
}

func (*DDNetLaser) ObjType() uint16 { return ObjTypeDDNetLaser }
func (o *DDNetLaser) fields() []*int32 {
	return []*int32{&o.ToX, &o.ToY, &o.FromX, &o.FromY, &o.StartTick, &o.Owner, &o.Type,
		&o.SwitchNumber, &o.Subtype, &o.Flags}
}
func (o *DDNetLaser) setDefaults() {
	o.SwitchNumber = -1
	o.Subtype = -1
}

type Pickup struct {
	X, Y    int32
	Type    int32
	Subtype int32
}

func (*Pickup) ObjType() uint16 { return ObjTypePickup }
func (o *Pickup) fields() []*int32 {
	return []*int32{&o.X, &o.Y, &o.Type, &o.Subtype}
}

type DDNetPickup struct {
	X, Y         int32
	Type         int32
	Subtype      int32
	SwitchNumber int32
}

func (*DDNetPickup) ObjType() uint16 { return ObjTypeDDNetPickup }
func (o *DDNetPickup) fields() []*int32 {
	return []*int32{&o.X, &o.Y, &o.Type, &o.Subtype, &o.SwitchNumber}
}

type CharacterCore struct {
	Tick         int32
	X, Y         int32
	VelX, VelY   int32
	Angle        int32
	Direction    int32
	Jumped       int32
	HookedPlayer int32
	HookState    int32
	HookTick     int32
	HookX, HookY int32
	HookDx       int32
	HookDy       int32
}

func (o *CharacterCore) coreFields() []*int32 {
	return []*int32{&o.Tick, &o.X, &o.Y, &o.VelX, &o.VelY, &o.Angle, &o.Direction, &o.Jumped,
		&o.HookedPlayer, &o.HookState, &o.HookTick, &o.HookX, &o.HookY, &o.HookDx, &o.HookDy}
}

type Character struct {
	CharacterCore
	PlayerFlags int32
	Health      int32
	Armor       int32
	AmmoCount   int32
	Weapon      int32
	Emote       int32
	AttackTick  int32
}

func (*Character) ObjType() uint16 { return ObjTypeCharacter }
func (o *Character) fields() []*int32 {
	return append(o.coreFields(), &o.PlayerFlags, &o.Health, &o.Armor, &o.AmmoCount,
		&o.Weapon, &o.Emote, &o.AttackTick)
}

// DDNetCharacter carries the DDRace state missing from Character. Servers
// may send fewer fields; the missing ones keep their defaults.
type DDNetCharacter struct {
	Flags               int32
	FreezeEnd           int32
	Jumps               int32
	TeleCheckpoint      int32
	StrongWeakID        int32
	JumpedTotal         int32
	NinjaActivationTick int32
	FreezeStart         int32
	TargetX             int32
	TargetY             int32
	TuneZoneOverride    int32
}

func (*DDNetCharacter) ObjType() uint16 { return ObjTypeDDNetCharacter }
func (o *DDNetCharacter) fields() []*int32 {
	return []*int32{&o.Flags, &o.FreezeEnd, &o.Jumps, &o.TeleCheckpoint, &o.StrongWeakID,
		&o.JumpedTotal, &o.NinjaActivationTick, &o.FreezeStart, &o.TargetX, &o.TargetY,
		&o.TuneZoneOverride}
}
func (o *DDNetCharacter) setDefaults() {
	*o = DDNetCharacter{
		Jumps:               2,
		TeleCheckpoint:      -1,
		JumpedTotal:         -1,
		NinjaActivationTick: -1,
		FreezeStart:         -1,
		TuneZoneOverride:    -1,
	}
}

// EntityEx attaches switch information to map entities sent with the
// legacy object types.
type EntityEx struct {
	SwitchNumber int32
	Layer        int32
	EntityClass  int32
}

func (*EntityEx) ObjType() uint16 { return ObjTypeEntityEx }
func (o *EntityEx) fields() []*int32 {
	return []*int32{&o.SwitchNumber, &o.Layer, &o.EntityClass}
}

// SwitchState is the switch status of the local team. Status holds one
// bit per switch number for up to 256 switches.
type SwitchState struct {
	HighestSwitchNumber int32
	Status              [8]int32
	SwitchNumbers       [4]int32
	EndTicks            [4]int32
}

func (*SwitchState) ObjType() uint16 { return ObjTypeSwitchState }
func (o *SwitchState) fields() []*int32 {
	f := []*int32{&o.HighestSwitchNumber}
	for i := range o.Status {
		f = append(f, &o.Status[i])
	}
	for i := range o.SwitchNumbers {
		f = append(f, &o.SwitchNumbers[i])
	}
	for i := range o.EndTicks {
		f = append(f, &o.EndTicks[i])
	}
	return f
}
func (o *SwitchState) setDefaults() { *o = SwitchState{} }

// StatusOf reports the bit for switch number n.
func (o *SwitchState) StatusOf(n int) bool {
	if n < 0 || n >= 256 {
		return false
	}
	return o.Status[n/32]&(1<<(n%32)) != 0
}

type TargetSwitch struct {
	X, Y         int32
	Type         int32
	SwitchNumber int32
	SwitchDelay  int32
	Flags        int32
}

func (*TargetSwitch) ObjType() uint16 { return ObjTypeTargetSwitch }
func (o *TargetSwitch) fields() []*int32 {
	return []*int32{&o.X, &o.Y, &o.Type, &o.SwitchNumber, &o.SwitchDelay, &o.Flags}
}

// New returns an empty object for the given type, or nil if unknown.
func New(objType uint16) Object {
	switch objType {
	case ObjTypePlayerInput:
		return &PlayerInput{}
	case ObjTypeProjectile:
		return &Projectile{}
	case ObjTypeLaser:
		return &Laser{}
	case ObjTypePickup:
		return &Pickup{}
	case ObjTypeCharacter:
		return &Character{}
	case ObjTypeDDNetCharacter:
		return &DDNetCharacter{}
	case ObjTypeDDRaceProjectile:
		return &DDRaceProjectile{}
	case ObjTypeDDNetLaser:
		return &DDNetLaser{}
	case ObjTypeDDNetProjectile:
		return &DDNetProjectile{}
	case ObjTypeDDNetPickup:
		return &DDNetPickup{}
	case ObjTypeEntityEx:
		return &EntityEx{}
	case ObjTypeSwitchState:
		return &SwitchState{}
	case ObjTypeTargetSwitch:
		return &TargetSwitch{}
	}
	return nil
}
