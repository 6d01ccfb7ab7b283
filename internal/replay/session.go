package replay

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ddnetgo/predict/internal/core/event"
	"github.com/ddnetgo/predict/internal/data"
	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/net/packet"
	"github.com/ddnetgo/predict/internal/prediction"
	"github.com/ddnetgo/predict/internal/protocol"
	"github.com/ddnetgo/predict/internal/tuning"
	"github.com/ddnetgo/predict/internal/vmath"
)

// MapSource resolves map names. *data.MapTable satisfies it.
type MapSource interface {
	Get(name string) *data.MapInfo
}

// MapScript configures a freshly loaded world. *scripting.Engine
// satisfies it.
type MapScript interface {
	ApplyMap(name string, w *prediction.GameWorld) (bool, error)
}

type Options struct {
	Name  string
	World prediction.WorldConfig
	// Threshold is the distance a predicted character may be off its
	// snapshot position.
	Threshold float32
	// MaxDiffs caps the mismatches kept in the result. 0 keeps all.
	MaxDiffs int
}

// Mismatch is a predicted character that disagreed with the snapshot of
// the same tick.
type Mismatch struct {
	Tick      int
	ClientID  int
	Predicted vmath.Vec2
	Actual    vmath.Vec2
	Distance  float32
}

// Result summarizes one replay.
type Result struct {
	ID         uuid.UUID
	Replay     string
	Map        string
	Ticks      int
	Snapshots  int
	Mismatches int
	Diffs      []Mismatch
	Checksum   [32]byte
	Explosions int
	Sounds     int
	Errors     int
	StartedAt  time.Time
	Duration   time.Duration
}

// Session replays one frame stream. The snapshot world receives every
// snapshot as the client would; the predicted world is copied from it
// after each snapshot and ticked forward with the recorded inputs.
// Single-goroutine access only.
type Session struct {
	opts   Options
	maps   MapSource
	script MapScript
	bus    *event.Bus
	log    *zap.Logger

	stage     packet.Stage
	snap      *prediction.GameWorld
	pred      *prediction.GameWorld
	inputs    Inputs
	localID   int
	snapTick  int
	target    int
	comparing bool

	result Result
}

// NewSession prepares a replay. script may be nil.
func NewSession(opts Options, maps MapSource, script MapScript, bus *event.Bus, log *zap.Logger) *Session {
	s := &Session{
		opts:    opts,
		maps:    maps,
		script:  script,
		bus:     bus,
		log:     log.With(zap.String("replay", opts.Name)),
		stage:   packet.StageIdle,
		localID: -1,
		result: Result{
			ID:        uuid.New(),
			Replay:    opts.Name,
			StartedAt: time.Now(),
		},
	}
	event.Subscribe(bus, func(event.Explosion) { s.result.Explosions++ })
	event.Subscribe(bus, func(event.Sound) { s.result.Sounds++ })
	return s
}

func (s *Session) Stage() packet.Stage { return s.stage }

// Predicted returns the predicted world, or nil before the map frame.
func (s *Session) Predicted() *prediction.GameWorld { return s.pred }

// Snapshot returns the world holding the last merged snapshot.
func (s *Session) Snapshot() *prediction.GameWorld { return s.snap }

// LoadMap builds both worlds on map name and runs the map script.
func (s *Session) LoadMap(name string) error {
	info := s.maps.Get(name)
	if info == nil {
		return fmt.Errorf("unknown map %q", name)
	}
	col, err := info.Collision()
	if err != nil {
		return err
	}

	s.snap = prediction.NewGameWorld(col, s.opts.World)
	tunes := info.Tunings()
	for z := 0; z < tuning.NumTuneZones; z++ {
		s.snap.SetTuningZone(z, *tunes.Zone(z))
	}
	if s.script != nil {
		if _, err := s.script.ApplyMap(name, s.snap); err != nil {
			return err
		}
	}
	s.pred = prediction.NewGameWorld(col, s.snap.Config)
	s.pred.Events = s.bus

	s.result.Map = name
	s.stage = packet.StageMapLoaded
	s.log.Debug("map loaded", zap.String("map", name))
	return nil
}

// BeginSnapshot starts merging the snapshot of tick. When the prediction
// has reached the same tick its characters are compared as they arrive.
func (s *Session) BeginSnapshot(tick, localID int, teams gamecore.Teams) {
	s.comparing = s.result.Snapshots > 0 && s.pred.GameTick == tick
	s.localID = localID
	s.snapTick = tick

	s.snap.GameTick = tick
	s.snap.NetObjBegin(teams, localID)
	s.stage = packet.StageInSnapshot
}

func (s *Session) AddCharacter(id, gameTeam int, obj *protocol.Character, ext *protocol.DDNetCharacter) {
	if s.comparing {
		s.compare(id, obj)
	}
	s.snap.NetCharAdd(id, obj, ext, gameTeam, id == s.localID)
}

func (s *Session) AddObject(id int, obj protocol.Object, ex *protocol.EntityEx) {
	s.snap.NetObjAdd(id, obj, ex)
}

// EndSnapshot finishes the merge and restarts the prediction from it.
func (s *Session) EndSnapshot() {
	s.snap.NetObjEnd()
	s.pred.CopyWorld(s.snap)
	s.pred.Events = s.bus

	s.result.Snapshots++
	s.comparing = false
	s.target = max(s.target, s.snapTick)
	s.stage = packet.StageMapLoaded
}

// QueueInput sets the input client id uses from the next predicted tick.
func (s *Session) QueueInput(id int, in gamecore.Input, direct bool) {
	s.inputs.Set(id, in, direct)
}

// RequestTick asks Advance to predict up to tick.
func (s *Session) RequestTick(tick int) {
	s.target = max(s.target, tick)
}

// Advance ticks the predicted world up to the requested tick and returns
// the number of ticks run.
func (s *Session) Advance() int {
	if s.pred == nil || s.result.Snapshots == 0 {
		return 0
	}
	n := 0
	for s.pred.GameTick < s.target {
		s.pred.GameTick++
		s.inputs.Apply(s.pred)
		s.pred.Tick()
		n++
	}
	s.result.Ticks += n
	return n
}

// Fail counts a frame that could not be applied.
func (s *Session) Fail(err error) {
	s.result.Errors++
	s.log.Warn("frame rejected", zap.Error(err))
}

// Close finishes the pending prediction and ends the replay. Later frames
// are rejected by stage.
func (s *Session) Close() {
	if s.stage == packet.StageClosed {
		return
	}
	s.Advance()
	s.stage = packet.StageClosed
	if s.pred != nil {
		s.result.Checksum = s.pred.Checksum()
	}
	s.result.Duration = time.Since(s.result.StartedAt)
}

func (s *Session) Closed() bool { return s.stage == packet.StageClosed }

func (s *Session) Result() Result { return s.result }

func (s *Session) compare(id int, obj *protocol.Character) {
	c := s.pred.GetCharacterByID(id)
	if c == nil {
		return
	}
	actual := vmath.V(float32(obj.X), float32(obj.Y))
	d := vmath.Distance(c.Core.Pos, actual)
	if d <= s.opts.Threshold {
		return
	}

	m := Mismatch{
		Tick:      s.snapTick,
		ClientID:  id,
		Predicted: c.Core.Pos,
		Actual:    actual,
		Distance:  d,
	}
	s.result.Mismatches++
	if s.opts.MaxDiffs == 0 || len(s.result.Diffs) < s.opts.MaxDiffs {
		s.result.Diffs = append(s.result.Diffs, m)
	}
	event.Emit(s.bus, event.Mismatch{Tick: m.Tick, ClientID: id, Predicted: m.Predicted, Actual: actual})
	s.log.Debug("misprediction",
		zap.Int("tick", m.Tick),
		zap.Int("client", id),
		zap.Float32("distance", d),
	)
}
