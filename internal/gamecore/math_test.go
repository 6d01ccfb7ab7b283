package gamecore

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestCountInput(t *testing.T) {
	tests := map[string]struct {
		prev, cur   int
		expPresses  int
		expReleases int
	}{
		"unchanged":       {prev: 4, cur: 4},
		"press":           {prev: 0, cur: 1, expPresses: 1},
		"press release":   {prev: 0, cur: 2, expPresses: 1, expReleases: 1},
		"release first":   {prev: 1, cur: 4, expPresses: 1, expReleases: 2},
		"wraps at mask":   {prev: 63, cur: 1, expPresses: 1, expReleases: 1},
		"high bits input": {prev: 64, cur: 65, expPresses: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			presses, releases := CountInput(tt.prev, tt.cur)
			testutil.AssertEqual(t, "presses", presses, tt.expPresses)
			testutil.AssertEqual(t, "releases", releases, tt.expReleases)
		})
	}
}

func TestSaturatedAdd(t *testing.T) {
	tests := map[string]struct {
		cur, mod float32
		exp      float32
	}{
		"inside":            {cur: 2, mod: 3, exp: 5},
		"clamped high":      {cur: 8, mod: 5, exp: 10},
		"clamped low":       {cur: -8, mod: -5, exp: -10},
		"already above":     {cur: 15, mod: 1, exp: 15},
		"slows from above":  {cur: 15, mod: -1, exp: 14},
		"already below":     {cur: -15, mod: -1, exp: -15},
		"speeds from below": {cur: -15, mod: 2, exp: -13},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "value", SaturatedAdd(-10, 10, tt.cur, tt.mod), tt.exp)
		})
	}
}

func TestVelocityRamp(t *testing.T) {
	testutil.AssertEqual(t, "below start", VelocityRamp(100, 550, 2000, 1.4), float32(1))
	curvature := float32(1.4)
	testutil.AssertEqual(t, "one range above", VelocityRamp(2550, 550, 2000, curvature), 1/curvature)
}

func TestTeams_CanCollide(t *testing.T) {
	tests := map[string]struct {
		teamA, teamB int
		soloA        bool
		ddrace16     bool
		exp          bool
		expKeepHook  bool
	}{
		"same team":      {teamA: 1, teamB: 1, exp: true, expKeepHook: true},
		"other team":     {teamA: 1, teamB: 2},
		"solo":           {teamA: 1, teamB: 1, soloA: true, expKeepHook: true},
		"super team":     {teamA: TeamSuper, teamB: 3, exp: true, expKeepHook: true},
		"16 player team": {teamA: 16, teamB: 3, ddrace16: true, exp: true, expKeepHook: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			teams := NewTeams()
			teams.IsDDRace16 = tt.ddrace16
			teams.SetTeam(0, tt.teamA)
			teams.SetTeam(1, tt.teamB)
			teams.SetSolo(0, tt.soloA)

			testutil.AssertEqual(t, "collide", teams.CanCollide(0, 1), tt.exp)
			testutil.AssertEqual(t, "keep hook", teams.CanKeepHook(0, 1), tt.expKeepHook)
			testutil.AssertEqual(t, "self", teams.CanCollide(0, 0), true)
		})
	}
}

func TestWorldCore_Switchers(t *testing.T) {
	w := NewWorldCore()
	w.InitSwitchers(3)
	testutil.AssertEqual(t, "size", len(w.Switchers), 4)
	testutil.AssertEqual(t, "initially active", w.SwitchActive(2, 5), true)

	w.Switchers[2].Status[5] = false
	testutil.AssertEqual(t, "closed for team", w.SwitchActive(2, 5), false)
	testutil.AssertEqual(t, "open for others", w.SwitchActive(2, 6), true)
	testutil.AssertEqual(t, "group zero", w.SwitchActive(0, 5), true)
	testutil.AssertEqual(t, "unknown number", w.SwitchActive(9, 5), false)

	w.InitSwitchers(0)
	testutil.AssertEqual(t, "no switches", len(w.Switchers), 0)
}
