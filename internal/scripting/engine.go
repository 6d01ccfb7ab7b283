package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/ddnetgo/predict/internal/prediction"
)

// Engine wraps a single gopher-lua VM running map setup scripts.
// Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	// target is the world the running hook configures
	target *prediction.GameWorld
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	e.registerAPI()

	// shared helpers first, then the per map scripts
	for _, sub := range []string{"core", "maps"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// DoString runs a chunk of Lua. Tests and the CLI use it for inline
// overrides.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) registerAPI() {
	e.vm.SetGlobal("tune", e.vm.NewFunction(e.luaTune))
	e.vm.SetGlobal("tune_zone", e.vm.NewFunction(e.luaTuneZone))
	e.vm.SetGlobal("get_tune", e.vm.NewFunction(e.luaGetTune))
	e.vm.SetGlobal("world_flag", e.vm.NewFunction(e.luaWorldFlag))
}

// ApplyMap calls the on_map_load hook for map name against w. It reports
// false when no script defines the hook.
func (e *Engine) ApplyMap(name string, w *prediction.GameWorld) (bool, error) {
	fn := e.vm.GetGlobal("on_map_load")
	if fn == lua.LNil {
		return false, nil
	}

	e.target = w
	defer func() { e.target = nil }()

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LString(name)); err != nil {
		e.log.Error("lua on_map_load error", zap.String("map", name), zap.Error(err))
		return true, fmt.Errorf("on_map_load %s: %w", name, err)
	}
	return true, nil
}

func (e *Engine) world(L *lua.LState) *prediction.GameWorld {
	if e.target == nil {
		L.RaiseError("no world is being configured")
	}
	return e.target
}

// tune(name, value) sets a global tuning parameter.
func (e *Engine) luaTune(L *lua.LState) int {
	w := e.world(L)
	name := L.CheckString(1)
	v := float32(L.CheckNumber(2))

	p := *w.TuningZone(0)
	if !p.Set(name, v) {
		L.ArgError(1, fmt.Sprintf("unknown tuning %q", name))
	}
	w.SetTuningZone(0, p)
	return 0
}

// tune_zone(zone, name, value) sets a parameter of one tune zone.
func (e *Engine) luaTuneZone(L *lua.LState) int {
	w := e.world(L)
	zone := L.CheckInt(1)
	name := L.CheckString(2)
	v := float32(L.CheckNumber(3))

	if zone < 0 || zone >= len(w.Core().Tunings) {
		L.ArgError(1, fmt.Sprintf("zone %d out of range", zone))
	}
	p := *w.TuningZone(zone)
	if !p.Set(name, v) {
		L.ArgError(2, fmt.Sprintf("unknown tuning %q", name))
	}
	w.SetTuningZone(zone, p)
	return 0
}

// get_tune(name [, zone]) returns a tuning parameter.
func (e *Engine) luaGetTune(L *lua.LState) int {
	w := e.world(L)
	name := L.CheckString(1)
	zone := L.OptInt(2, 0)

	v, ok := w.TuningZone(zone).Get(name)
	if !ok {
		L.ArgError(1, fmt.Sprintf("unknown tuning %q", name))
	}
	L.Push(lua.LNumber(v))
	return 1
}

// world_flag(name, bool) switches one ruleset flag.
func (e *Engine) luaWorldFlag(L *lua.LState) int {
	w := e.world(L)
	name := L.CheckString(1)
	on := L.CheckBool(2)

	flag := worldFlags(&w.Config)[name]
	if flag == nil {
		L.ArgError(1, fmt.Sprintf("unknown world flag %q", name))
	}
	*flag = on
	return 0
}

func worldFlags(c *prediction.WorldConfig) map[string]*bool {
	return map[string]*bool{
		"vanilla":                 &c.IsVanilla,
		"ddrace":                  &c.IsDDRace,
		"fng":                     &c.IsFNG,
		"solo":                    &c.IsSolo,
		"tune_zones":              &c.UseTuneZones,
		"bug_ddrace_input":        &c.BugDDRaceInput,
		"no_weak_hook_and_bounce": &c.NoWeakHookAndBounce,
		"predict_tiles":           &c.PredictTiles,
		"predict_freeze":          &c.PredictFreeze,
		"predict_weapons":         &c.PredictWeapons,
		"predict_ddrace":          &c.PredictDDRace,
		"infinite_ammo":           &c.InfiniteAmmo,
		"hit":                     &c.Hit,
		"old_laser":               &c.OldLaser,
		"deepfly":                 &c.Deepfly,
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
