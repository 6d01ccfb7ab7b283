package replay

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
	"go.uber.org/zap"

	"github.com/ddnetgo/predict/internal/core/event"
	"github.com/ddnetgo/predict/internal/data"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/net"
	"github.com/ddnetgo/predict/internal/net/packet"
	"github.com/ddnetgo/predict/internal/prediction"
	"github.com/ddnetgo/predict/internal/protocol"
)

// hallMaps holds one long hall with a flat floor.
func hallMaps(t *testing.T) *data.MapTable {
	t.Helper()
	wall := strings.Repeat("#", 60)
	air := "#" + strings.Repeat(".", 58) + "#"
	raw := "maps:\n  - name: hall\n    rows:\n"
	for _, row := range []string{wall, air, air, air, air, wall} {
		raw += "      - \"" + row + "\"\n"
	}
	table, err := data.ParseMapTable([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func newSession(t *testing.T, maps MapSource) *Session {
	t.Helper()
	opts := Options{Name: t.Name(), World: prediction.DefaultConfig(), Threshold: 1}
	return NewSession(opts, maps, nil, event.NewBus(), zap.NewNop())
}

// play dispatches every frame of raw and predicts after each one.
func play(t *testing.T, s *Session, raw []byte) {
	t.Helper()
	reg := NewRegistry(zap.NewNop())
	r := bytes.NewReader(raw)
	for {
		frame, err := net.ReadFrame(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := reg.Dispatch(s, s.Stage(), frame); err != nil {
			s.Fail(err)
		}
		s.Advance()
	}
	s.Close()
}

func frames(t *testing.T, list ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range list {
		if err := net.WriteFrame(&buf, f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return buf.Bytes()
}

func restingChar(x int32) *protocol.Character {
	return &protocol.Character{
		CharacterCore: protocol.CharacterCore{X: x, Y: 144, HookedPlayer: -1},
		Weapon:        protocol.WeaponHammer,
	}
}

func TestSession_RecordedReplayPredictsExactly(t *testing.T) {
	maps := hallMaps(t)

	var buf bytes.Buffer
	n, err := Generate(&buf, maps.Get("hall"), GenerateOptions{
		Players:   1,
		Ticks:     90,
		SnapEvery: 10,
		World:     prediction.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := newSession(t, maps)
	play(t, s, buf.Bytes())

	res := s.Result()
	testutil.AssertEqual(t, "errors", res.Errors, 0)
	testutil.AssertEqual(t, "snapshots", res.Snapshots, 10)
	testutil.AssertEqual(t, "ticks", res.Ticks, 90)
	testutil.AssertEqual(t, "mismatches", res.Mismatches, 0)
	testutil.AssertEqual(t, "map", res.Map, "hall")
	testutil.AssertEqual(t, "checksum set", res.Checksum != [32]byte{}, true)
	testutil.AssertEqual(t, "frames written", n > 10, true)

	c := s.Predicted().GetCharacterByID(0)
	if c == nil {
		t.Fatalf("character 0 not predicted")
	}
	testutil.AssertEqual(t, "moved", c.Core.Pos.X > 48, true)
}

func TestSession_DetectsMisprediction(t *testing.T) {
	teams := gamecore.Teams{}
	raw := frames(t,
		EncodeMap("hall"),
		EncodeSnapshotBegin(10, 0, &teams),
		EncodeCharacter(0, 0, restingChar(400), nil),
		EncodeSnapshotEnd(),
		EncodeTick(15),
		EncodeSnapshotBegin(15, 0, &teams),
		EncodeCharacter(0, 0, restingChar(600), nil),
		EncodeSnapshotEnd(),
	)

	s := newSession(t, hallMaps(t))
	var seen []event.Mismatch
	event.Subscribe(s.bus, func(m event.Mismatch) { seen = append(seen, m) })
	play(t, s, raw)
	s.bus.SwapBuffers()
	s.bus.DispatchAll()

	res := s.Result()
	testutil.AssertEqual(t, "ticks", res.Ticks, 5)
	testutil.AssertEqual(t, "mismatches", res.Mismatches, 1)
	testutil.AssertEqual(t, "tick", res.Diffs[0].Tick, 15)
	testutil.AssertEqual(t, "actual", res.Diffs[0].Actual.X, float32(600))
	testutil.AssertEqual(t, "far off", res.Diffs[0].Distance > 150, true)
	testutil.AssertEqual(t, "event", len(seen), 1)

	// the snapshot wins
	testutil.AssertEqual(t, "corrected", s.Predicted().GetCharacterByID(0).Core.Pos.X, float32(600))
}

func TestSession_MaxDiffs(t *testing.T) {
	teams := gamecore.Teams{}
	list := [][]byte{
		EncodeMap("hall"),
		EncodeSnapshotBegin(10, 0, &teams),
		EncodeCharacter(0, 0, restingChar(400), nil),
		EncodeCharacter(1, 0, restingChar(800), nil),
		EncodeSnapshotEnd(),
		EncodeTick(11),
		EncodeSnapshotBegin(11, 0, &teams),
		EncodeCharacter(0, 0, restingChar(500), nil),
		EncodeCharacter(1, 0, restingChar(900), nil),
		EncodeSnapshotEnd(),
	}

	s := newSession(t, hallMaps(t))
	s.opts.MaxDiffs = 1
	play(t, s, frames(t, list...))

	res := s.Result()
	testutil.AssertEqual(t, "counted", res.Mismatches, 2)
	testutil.AssertEqual(t, "kept", len(res.Diffs), 1)
}

func TestSession_RejectedFrames(t *testing.T) {
	teams := gamecore.Teams{}
	tests := map[string]struct {
		frames    [][]byte
		expErrors int
		expStage  packet.Stage
	}{
		"character before map": {
			frames:    [][]byte{EncodeCharacter(0, 0, restingChar(400), nil)},
			expErrors: 1,
			expStage:  packet.StageIdle,
		},
		"unknown map": {
			frames:    [][]byte{EncodeMap("ctf5")},
			expErrors: 1,
			expStage:  packet.StageIdle,
		},
		"tick inside snapshot": {
			frames: [][]byte{
				EncodeMap("hall"),
				EncodeSnapshotBegin(1, 0, &teams),
				EncodeTick(2),
			},
			expErrors: 1,
			expStage:  packet.StageInSnapshot,
		},
		"truncated tick": {
			frames:    [][]byte{EncodeMap("hall"), {OpTick, 1}},
			expErrors: 1,
			expStage:  packet.StageMapLoaded,
		},
		"unknown opcode skipped": {
			frames:   [][]byte{EncodeMap("hall"), {0xee, 1, 2}},
			expStage: packet.StageMapLoaded,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := newSession(t, hallMaps(t))
			reg := NewRegistry(zap.NewNop())
			for _, f := range tt.frames {
				if err := reg.Dispatch(s, s.Stage(), f); err != nil {
					s.Fail(err)
				}
			}
			testutil.AssertEqual(t, "errors", s.Result().Errors, tt.expErrors)
			testutil.AssertEqual(t, "stage", s.Stage(), tt.expStage)
		})
	}
}

func TestHandleMap_Errors(t *testing.T) {
	s := newSession(t, hallMaps(t))
	err := HandleMap(s, packet.NewReader(EncodeMap("ctf5")))
	testutil.AssertErrorContains(t, err, `unknown map "ctf5"`)

	err = HandleTick(s, packet.NewReader([]byte{OpTick}))
	testutil.AssertErrorContains(t, err, "tick truncated")
}

func TestInputs_DirectFiresOnce(t *testing.T) {
	s := newSession(t, hallMaps(t))
	if err := s.LoadMap("hall"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := s.Snapshot()

	var in Inputs
	in.Set(3, gamecore.Input{Direction: 1}, true)
	in.Set(protocol.MaxClients, gamecore.Input{}, true)
	testutil.AssertEqual(t, "out of range ignored", in.slots[protocol.MaxClients-1] == nil, true)

	// no character yet, the slot stays armed
	in.Apply(w)
	testutil.AssertEqual(t, "armed", in.slots[3].direct, true)

	w.NetObjBegin(gamecore.Teams{}, 3)
	w.NetCharAdd(3, restingChar(400), nil, 0, true)
	w.NetObjEnd()

	in.Apply(w)
	testutil.AssertEqual(t, "fired", in.slots[3].direct, false)
	testutil.AssertEqual(t, "kept", in.slots[3].in.Direction, 1)
}
