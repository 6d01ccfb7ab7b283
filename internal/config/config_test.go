package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		data       string
		expErr     []string
		expWorkers int
		expAhead   int
		expVanilla bool
	}{
		"empty uses defaults": {
			expWorkers: 4,
			expAhead:   10,
		},
		"overrides": {
			data: `
[world]
vanilla = true
ddrace = false

[simulation]
predict_ahead = 3

[replay]
workers = 8
`,
			expWorkers: 8,
			expAhead:   3,
			expVanilla: true,
		},
		"every problem reported": {
			data: `
[world]
vanilla = true
dragger_range = 0

[replay]
workers = 0
journal = true

[database]
dsn = ""

[logging]
format = "xml"
`,
			expErr: []string{
				"vanilla and ddrace are exclusive",
				"dragger_range must be positive",
				"workers must be at least 1",
				"dsn is required",
				`unknown format "xml"`,
			},
		},
		"bad toml": {
			data:   "[world\n",
			expErr: []string{"parse config test.toml"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), "test.toml")
			if len(tt.expErr) > 0 {
				for _, msg := range tt.expErr {
					testutil.AssertErrorContains(t, err, msg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "workers", cfg.Replay.Workers, tt.expWorkers)
			testutil.AssertEqual(t, "predict ahead", cfg.Simulation.PredictAhead, tt.expAhead)
			testutil.AssertEqual(t, "vanilla", cfg.World.Vanilla, tt.expVanilla)
		})
	}
}

func TestWorldConfig_Prediction(t *testing.T) {
	cfg := defaults()
	cfg.World.FreezeDelay = 5
	cfg.World.PredictWeapons = false

	w := cfg.World.Prediction()
	testutil.AssertEqual(t, "ddrace", w.IsDDRace, true)
	testutil.AssertEqual(t, "freeze delay", w.FreezeDelay, 5)
	testutil.AssertEqual(t, "weapons", w.PredictWeapons, false)
	testutil.AssertEqual(t, "weapon rules kept", w.Weapons.NinjaDuration, 15000)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predict.toml")
	if err := os.WriteFile(path, []byte("[replay]\nworkers = 2\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv(EnvPath, path)

	cfg, err := Load(Path())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "workers", cfg.Replay.Workers, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	testutil.AssertErrorContains(t, err, "read config")
}
