package protocol

const (
	TickSpeed  = 50
	MaxClients = 64

	TeamSpectators = -1
)

const (
	EmoteNormal = iota
	EmotePain
	EmoteHappy
	EmoteSurprise
	EmoteAngry
	EmoteBlink
)

// Weapons. The negative ids are damage sources without a weapon.
const (
	WeaponGame  = -3
	WeaponSelf  = -2
	WeaponWorld = -1

	WeaponHammer = iota - 3
	WeaponGun
	WeaponShotgun
	WeaponGrenade
	WeaponLaser
	WeaponNinja
	NumWeapons
)

const (
	PowerupHealth = iota
	PowerupArmor
	PowerupWeapon
	PowerupNinja
	PowerupArmorShotgun
	PowerupArmorGrenade
	PowerupArmorNinja
	PowerupArmorLaser
	NumPowerups
)

const (
	LaserTypeRifle = iota
	LaserTypeShotgun
	LaserTypeDoor
	LaserTypeFreeze
	LaserTypeDragger
	LaserTypeGun
	LaserTypePlasma
	NumLaserTypes
)

// Dragger subtypes; odd values ignore walls.
const (
	DraggerTypeWeak = iota
	DraggerTypeWeakNW
	DraggerTypeNormal
	DraggerTypeNormalNW
	DraggerTypeStrong
	DraggerTypeStrongNW
)

// Gun subtypes carried by plasma lasers.
const (
	GunTypeUnfreeze = iota
	GunTypeExplosive
	GunTypeFreeze
	GunTypeExpFreeze
)

const (
	EntityClassProjectile = iota
	EntityClassDoor
	EntityClassDraggerWeak
	EntityClassDraggerNormal
	EntityClassDraggerStrong
	EntityClassGunNormal
	EntityClassGunExplosive
	EntityClassGunFreeze
	EntityClassGunUnfreeze
	EntityClassLight
	EntityClassPickup
)

const LaserFlagNoPredict = 1 << 0

const (
	PlayerFlagPlaying = 1 << iota
	PlayerFlagInMenu
	PlayerFlagChatting
	PlayerFlagScoreboard
	PlayerFlagAim
)

const (
	CharacterFlagSolo = 1 << iota
	CharacterFlagJetpack
	CharacterFlagCollisionDisabled
	CharacterFlagEndlessHook
	CharacterFlagEndlessJump
	CharacterFlagSuper
	CharacterFlagHammerHitDisabled
	CharacterFlagShotgunHitDisabled
	CharacterFlagGrenadeHitDisabled
	CharacterFlagLaserHitDisabled
	CharacterFlagHookHitDisabled
	CharacterFlagTelegunGun
	CharacterFlagTelegunGrenade
	CharacterFlagTelegunLaser
	CharacterFlagWeaponHammer
	CharacterFlagWeaponGun
	CharacterFlagWeaponShotgun
	CharacterFlagWeaponGrenade
	CharacterFlagWeaponLaser
	CharacterFlagWeaponNinja
	CharacterFlagMovementsDisabled
	CharacterFlagInFreeze
	CharacterFlagPracticeMode
	CharacterFlagLockMode
	CharacterFlagTeam0Mode
	CharacterFlagInvincible
)

// Legacy projectile data bits. Bits 0-7 carry the owner id.
const (
	LegacyProjectileFlagNoOwner          = 1 << 8
	LegacyProjectileFlagIsDDNet          = 1 << 9
	LegacyProjectileFlagBounceHorizontal = 1 << 10
	LegacyProjectileFlagBounceVertical   = 1 << 11
	LegacyProjectileFlagExplosive        = 1 << 12
	LegacyProjectileFlagFreeze           = 1 << 13
)

const (
	ProjectileFlagBounceHorizontal = 1 << iota
	ProjectileFlagBounceVertical
	ProjectileFlagExplosive
	ProjectileFlagFreeze
	ProjectileFlagNormalizeVel
)

// Target switch kinds.
const (
	TargetSwitchOpen = iota
	TargetSwitchClose
	TargetSwitchAlternate
)

const TargetSwitchFlagNoPredict = 1 << 0

const InputStateMask = 0x3f
