package data

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/ddnetgo/predict/internal/collision"
	"github.com/ddnetgo/predict/internal/tuning"
)

// glyphs maps the characters of a map row to game layer tiles.
var glyphs = map[rune]uint8{
	'.': collision.TileAir,
	' ': collision.TileAir,
	'#': collision.TileSolid,
	'x': collision.TileDeath,
	'n': collision.TileNoHook,
	'l': collision.TileNoLaser,
	'f': collision.TileFreeze,
	'u': collision.TileUnfreeze,
	'F': collision.TileDFreeze,
	'U': collision.TileDUnfreeze,
}

// TileSpec places one tile on a layer. Which fields matter depends on the
// layer.
type TileSpec struct {
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Layer    string `yaml:"layer"` // game, front, tele, speedup, switch, tune
	Index    uint8  `yaml:"index"`
	Flags    uint8  `yaml:"flags"`
	Number   uint8  `yaml:"number"`
	Type     uint8  `yaml:"type"`
	Delay    uint8  `yaml:"delay"`
	Force    uint8  `yaml:"force"`
	MaxSpeed uint8  `yaml:"max_speed"`
	Angle    int16  `yaml:"angle"`
}

// TuneSpec overrides one tuning parameter of a tune zone.
type TuneSpec struct {
	Zone  int     `yaml:"zone"`
	Name  string  `yaml:"name"`
	Value float32 `yaml:"value"`
}

// MapInfo is one test map as written in the map list.
type MapInfo struct {
	Name  string     `yaml:"name"`
	Rows  []string   `yaml:"rows"`
	Tiles []TileSpec `yaml:"tiles"`
	Tunes []TuneSpec `yaml:"tunes"`
}

// MapTable holds the loaded maps by name.
type MapTable struct {
	maps map[string]*MapInfo
}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// LoadMapTable loads and validates the map list at path.
func LoadMapTable(path string) (*MapTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", path, err)
	}
	return ParseMapTable(raw)
}

func ParseMapTable(raw []byte) (*MapTable, error) {
	var file mapListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}

	table := &MapTable{maps: make(map[string]*MapInfo, len(file.Maps))}
	el := errors.NewErrorList()
	for i := range file.Maps {
		info := &file.Maps[i]
		if info.Name == "" {
			el.Add(fmt.Errorf("map %d: name is required", i))
			continue
		}
		if _, dup := table.maps[info.Name]; dup {
			el.Add(fmt.Errorf("map %s: defined twice", info.Name))
			continue
		}
		if err := info.validate(); err != nil {
			el.Add(fmt.Errorf("map %s: %w", info.Name, err))
			continue
		}
		table.maps[info.Name] = info
	}
	if err := el.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// Count returns the number of maps loaded.
func (t *MapTable) Count() int {
	return len(t.maps)
}

// Names returns the map names in sorted order.
func (t *MapTable) Names() []string {
	return slices.Sorted(maps.Keys(t.maps))
}

// Get returns the map called name, or nil if not found.
func (t *MapTable) Get(name string) *MapInfo {
	return t.maps[name]
}

// Size returns the map size in tiles.
func (m *MapInfo) Size() (width, height int) {
	for _, r := range m.Rows {
		width = max(width, len([]rune(r)))
	}
	return width, len(m.Rows)
}

func (m *MapInfo) validate() error {
	el := errors.NewErrorList()
	w, h := m.Size()
	if w == 0 || h == 0 {
		el.Add(fmt.Errorf("rows are empty"))
	}
	for y, row := range m.Rows {
		if n := len([]rune(row)); n != w {
			el.Add(fmt.Errorf("row %d: %d tiles, want %d", y, n, w))
		}
		for x, r := range []rune(row) {
			if _, ok := glyphs[r]; !ok {
				el.Add(fmt.Errorf("row %d col %d: unknown tile %q", y, x, r))
			}
		}
	}
	for i, t := range m.Tiles {
		if t.X < 0 || t.X >= w || t.Y < 0 || t.Y >= h {
			el.Add(fmt.Errorf("tile %d: %d,%d outside the map", i, t.X, t.Y))
		}
		switch t.Layer {
		case "game", "front", "tele", "speedup", "switch", "tune":
		default:
			el.Add(fmt.Errorf("tile %d: unknown layer %q", i, t.Layer))
		}
	}
	for i, t := range m.Tunes {
		if t.Zone < 0 || t.Zone >= tuning.NumTuneZones {
			el.Add(fmt.Errorf("tune %d: zone %d out of range", i, t.Zone))
		}
		p := tuning.Default()
		if !p.Set(t.Name, t.Value) {
			el.Add(fmt.Errorf("tune %d: unknown parameter %q", i, t.Name))
		}
	}
	return el.Err()
}

// Layers builds the collision layers of the map. Optional layers are only
// allocated when a tile uses them.
func (m *MapInfo) Layers() collision.Layers {
	w, h := m.Size()
	l := collision.Layers{Width: w, Height: h, Game: make([]collision.Tile, w*h)}
	for y, row := range m.Rows {
		for x, r := range []rune(row) {
			l.Game[y*w+x].Index = glyphs[r]
		}
	}

	for _, t := range m.Tiles {
		idx := t.Y*w + t.X
		switch t.Layer {
		case "game":
			l.Game[idx] = collision.Tile{Index: t.Index, Flags: t.Flags}
		case "front":
			if l.Front == nil {
				l.Front = make([]collision.Tile, w*h)
			}
			l.Front[idx] = collision.Tile{Index: t.Index, Flags: t.Flags}
		case "tele":
			if l.Tele == nil {
				l.Tele = make([]collision.TeleTile, w*h)
			}
			l.Tele[idx] = collision.TeleTile{Number: t.Number, Type: t.Type}
		case "speedup":
			if l.Speedup == nil {
				l.Speedup = make([]collision.SpeedupTile, w*h)
			}
			l.Speedup[idx] = collision.SpeedupTile{Force: t.Force, MaxSpeed: t.MaxSpeed, Type: t.Type, Angle: t.Angle}
		case "switch":
			if l.Switch == nil {
				l.Switch = make([]collision.SwitchTile, w*h)
			}
			l.Switch[idx] = collision.SwitchTile{Number: t.Number, Type: t.Type, Flags: t.Flags, Delay: t.Delay}
		case "tune":
			if l.Tune == nil {
				l.Tune = make([]collision.TuneTile, w*h)
			}
			l.Tune[idx] = collision.TuneTile{Number: t.Number, Type: t.Type}
		}
	}
	return l
}

// Collision builds the collision map.
func (m *MapInfo) Collision() (*collision.Collision, error) {
	col, err := collision.New(m.Layers())
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", m.Name, err)
	}
	return col, nil
}

// Tunings returns the tune zone table with the map's overrides applied.
func (m *MapInfo) Tunings() tuning.List {
	l := tuning.NewList()
	for _, t := range m.Tunes {
		l.Zone(t.Zone).Set(t.Name, t.Value)
	}
	return l
}
