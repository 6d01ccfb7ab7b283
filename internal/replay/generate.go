package replay

import (
	"fmt"
	"io"

	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/data"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/prediction"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/tuning"
)

// GenerateOptions describes a synthetic replay.
type GenerateOptions struct {
	Players int
	Ticks   int
	// SnapEvery is the number of ticks between snapshots.
	SnapEvery int
	World     prediction.WorldConfig
}

// Generate simulates bots running and jumping across a map and records
// the result to out. It returns the number of frames written.
func Generate(out io.Writer, info *data.MapInfo, opts GenerateOptions) (int, error) {
	if opts.Players < 1 || opts.Players > protocol.MaxClients {
		return 0, fmt.Errorf("players must be within 1..%d", protocol.MaxClients)
	}
	if opts.SnapEvery < 1 {
		return 0, fmt.Errorf("snapshot interval must be at least 1")
	}
	col, err := info.Collision()
	if err != nil {
		return 0, err
	}
	spawns := spawnPoints(col)
	if len(spawns) == 0 {
		return 0, fmt.Errorf("map %s: no tile to stand on", info.Name)
	}

	w := prediction.NewGameWorld(col, opts.World)
	tunes := info.Tunings()
	for z := 0; z < tuning.NumTuneZones; z++ {
		w.SetTuningZone(z, *tunes.Zone(z))
	}
	w.GameTick = 1
	w.NetObjBegin(gamecore.Teams{}, 0)
	for id := 0; id < opts.Players; id++ {
		pos := spawns[id%len(spawns)]
		obj := &protocol.Character{
			CharacterCore: protocol.CharacterCore{
				Tick:         int32(w.GameTick),
				X:            int32(pos[0]),
				Y:            int32(pos[1]),
				HookedPlayer: -1,
			},
			Weapon: protocol.WeaponHammer,
		}
		w.NetCharAdd(id, obj, nil, 0, id == 0)
	}
	w.NetObjEnd()

	rec := NewRecorder(out)
	if err := rec.Map(info.Name); err != nil {
		return rec.Frames(), err
	}
	if err := rec.Snapshot(w); err != nil {
		return rec.Frames(), err
	}

	last := make([]protocol.PlayerInput, opts.Players)
	for t := 0; t < opts.Ticks; t++ {
		for id := 0; id < opts.Players; id++ {
			in := botInput(id, w.GameTick+1)
			if t > 0 && in == last[id] {
				continue
			}
			last[id] = in
			if err := rec.Input(id, &in, false); err != nil {
				return rec.Frames(), err
			}
		}
		if err := rec.Step(w); err != nil {
			return rec.Frames(), err
		}
		if (t+1)%opts.SnapEvery == 0 {
			if err := rec.Snapshot(w); err != nil {
				return rec.Frames(), err
			}
		}
	}
	return rec.Frames(), nil
}

// botInput runs back and forth and taps jump now and then. Bots are
// offset by id so they do not move in lockstep.
func botInput(id, tick int) protocol.PlayerInput {
	t := tick + id*17
	in := protocol.PlayerInput{Direction: 1, TargetX: 100, TargetY: -20}
	if (t/50)%2 == 1 {
		in.Direction = -1
		in.TargetX = -100
	}
	if t%40 < 2 {
		in.Jump = 1
	}
	return in
}

// spawnPoints returns the centers of air tiles that stand on solid ground,
// scanning from the top left.
func spawnPoints(col *collision.Collision) [][2]int {
	var out [][2]int
	for y := 0; y+1 < col.Height(); y++ {
		for x := 0; x < col.Width(); x++ {
			if col.GetTileIndex(y*col.Width()+x) != collision.TileAir || !col.IsSolid(x*32, (y+1)*32) {
				continue
			}
			out = append(out, [2]int{x*32 + 16, y*32 + 16})
		}
	}
	return out
}
