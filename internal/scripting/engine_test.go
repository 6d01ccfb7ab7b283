package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
	"go.uber.org/zap"

	"github.com/ddnetgo/predict/internal/prediction"
)

func newEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		if err := os.MkdirAll(filepath.Join(dir, "maps"), 0o755); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "maps", "setup.lua"), []byte(script), 0o644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEngine_ApplyMap(t *testing.T) {
	tests := map[string]struct {
		script     string
		expApplied bool
		expErr     string
		expGravity float32
		expZone    float32
		expWeapons bool
	}{
		"no hook": {
			expGravity: 0.5,
			expZone:    0.5,
			expWeapons: true,
		},
		"tunes and flags": {
			script: `
function on_map_load(name)
  if name ~= "moon" then return end
  tune("gravity", get_tune("gravity") / 2)
  tune_zone(3, "Gravity", 0.1)
  world_flag("predict_weapons", false)
end
`,
			expApplied: true,
			expGravity: 0.25,
			expZone:    0.1,
			expWeapons: false,
		},
		"unknown tuning": {
			script:     `function on_map_load(name) tune("warp", 1) end`,
			expApplied: true,
			expErr:     `unknown tuning "warp"`,
			expGravity: 0.5,
			expZone:    0.5,
			expWeapons: true,
		},
		"unknown flag": {
			script:     `function on_map_load(name) world_flag("teleport", true) end`,
			expApplied: true,
			expErr:     `unknown world flag "teleport"`,
			expGravity: 0.5,
			expZone:    0.5,
			expWeapons: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, tt.script)
			w := prediction.NewGameWorld(nil, prediction.DefaultConfig())

			applied, err := e.ApplyMap("moon", w)
			testutil.AssertEqual(t, "applied", applied, tt.expApplied)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "gravity", w.Tuning.Gravity.Float(), tt.expGravity)
			testutil.AssertEqual(t, "zone gravity", w.TuningZone(3).Gravity.Float(), tt.expZone)
			testutil.AssertEqual(t, "predict weapons", w.Config.PredictWeapons, tt.expWeapons)
		})
	}
}

func TestEngine_NoTargetOutsideHook(t *testing.T) {
	e := newEngine(t, "")
	err := e.DoString(`tune("gravity", 1)`)
	testutil.AssertErrorContains(t, err, "no world is being configured")
}

func TestNewEngine_BadScript(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "core"), 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "core", "broken.lua"), []byte("function ("), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := NewEngine(dir, zap.NewNop())
	testutil.AssertErrorContains(t, err, "load core scripts")
}
