package gamecore

import "github.com/ddnetgo/predict/internal/protocol"

const (
	TeamFlock = 0
	TeamSuper = protocol.MaxClients

	vanillaTeamSuper = 16
)

// Teams tracks team membership and solo state for collision and hook
// decisions.
type Teams struct {
	team [protocol.MaxClients]int
	solo [protocol.MaxClients]bool

	// IsDDRace16 selects the 16 player super team id.
	IsDDRace16 bool
}

func NewTeams() *Teams {
	return &Teams{}
}

// Super returns the id of the super team.
func (t *Teams) Super() int {
	if t.IsDDRace16 {
		return vanillaTeamSuper
	}
	return TeamSuper
}

func valid(id int) bool { return id >= 0 && id < protocol.MaxClients }

func (t *Teams) Team(id int) int {
	if !valid(id) {
		return TeamFlock
	}
	return t.team[id]
}

func (t *Teams) SetTeam(id, team int) {
	if valid(id) {
		t.team[id] = team
	}
}

func (t *Teams) Solo(id int) bool {
	return valid(id) && t.solo[id]
}

func (t *Teams) SetSolo(id int, solo bool) {
	if valid(id) {
		t.solo[id] = solo
	}
}

func (t *Teams) SameTeam(a, b int) bool {
	super := t.Super()
	return t.Team(a) == super || t.Team(b) == super || t.Team(a) == t.Team(b)
}

// CanCollide reports whether a and b interact physically.
func (t *Teams) CanCollide(a, b int) bool {
	super := t.Super()
	if t.Team(a) == super || t.Team(b) == super || a == b {
		return true
	}
	if t.Solo(a) || t.Solo(b) {
		return false
	}
	return t.Team(a) == t.Team(b)
}

// CanKeepHook reports whether a may keep hooking b. Solo does not release
// an existing hook.
func (t *Teams) CanKeepHook(a, b int) bool {
	super := t.Super()
	if t.Team(a) == super || t.Team(b) == super || a == b {
		return true
	}
	return t.Team(a) == t.Team(b)
}

func (t *Teams) Reset() {
	*t = Teams{}
}
