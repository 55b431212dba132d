package level

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCellSize          = 16.0
	DefaultPlayerSpeed       = 150.0
	DefaultChaserSpeed       = 140.0
	DefaultPelletPoints      = 10
	DefaultPowerPelletPoints = 50
	DefaultEvasionTicks      = 120
	DefaultEvasionSpeedScale = 0.6
	DefaultReturnSpeedScale  = 1.0
	DefaultSpawnDirection    = "left"
)

// Maze glyphs accepted in Definition.Rows.
const (
	glyphWall        = '#'
	glyphPellet      = '.'
	glyphPowerPellet = 'o'
	glyphFloor       = ' '
)

// Cell names one grid cell in authoring coordinates.
type Cell struct {
	Col int `yaml:"col" json:"col"`
	Row int `yaml:"row" json:"row"`
}

// PassageDef is one linked teleport sensor. Sensors come in symmetric
// pairs: each names its counterpart and the counterpart names it back.
type PassageDef struct {
	Name string `yaml:"name" json:"name"`
	Cell Cell   `yaml:"cell" json:"cell"`
	Pair string `yaml:"pair" json:"pair"`
}

// PlayerDef places the player-controlled runner.
type PlayerDef struct {
	Spawn     Cell    `yaml:"spawn" json:"spawn"`
	Direction string  `yaml:"direction,omitempty" json:"direction,omitempty"`
	Speed     float64 `yaml:"speed,omitempty" json:"speed,omitempty"`
}

// ChaserDef places one autonomous chaser. Home defaults to the spawn
// cell when omitted.
type ChaserDef struct {
	Name      string  `yaml:"name" json:"name"`
	Spawn     Cell    `yaml:"spawn" json:"spawn"`
	Direction string  `yaml:"direction,omitempty" json:"direction,omitempty"`
	Home      *Cell   `yaml:"home,omitempty" json:"home,omitempty"`
	Speed     float64 `yaml:"speed,omitempty" json:"speed,omitempty"`
}

// WaveDef is one entry of the ambient mode schedule.
type WaveDef struct {
	Mode  string `yaml:"mode" json:"mode"`
	Ticks uint64 `yaml:"ticks" json:"ticks"`
}

// RulesDef tunes scoring, evasion and the ambient mode schedule.
type RulesDef struct {
	PelletPoints      int       `yaml:"pelletPoints,omitempty" json:"pelletPoints,omitempty"`
	PowerPelletPoints int       `yaml:"powerPelletPoints,omitempty" json:"powerPelletPoints,omitempty"`
	EvasionTicks      uint64    `yaml:"evasionTicks,omitempty" json:"evasionTicks,omitempty"`
	EvasionSpeedScale float64   `yaml:"evasionSpeedScale,omitempty" json:"evasionSpeedScale,omitempty"`
	ReturnSpeedScale  float64   `yaml:"returnSpeedScale,omitempty" json:"returnSpeedScale,omitempty"`
	Waves             []WaveDef `yaml:"waves,omitempty" json:"waves,omitempty"`
}

// Definition is the authored form of a level, as decoded from YAML.
// Rows paint the maze: '#' wall, '.' pellet, 'o' power pellet and ' '
// bare floor. Agents and sensors are placed by the structured fields,
// which must land on floor cells.
type Definition struct {
	Name     string       `yaml:"name" json:"name"`
	CellSize float64      `yaml:"cellSize,omitempty" json:"cellSize,omitempty"`
	Rows     []string     `yaml:"rows" json:"rows"`
	Passages []PassageDef `yaml:"passages,omitempty" json:"passages,omitempty"`
	Player   PlayerDef    `yaml:"player" json:"player"`
	Chasers  []ChaserDef  `yaml:"chasers,omitempty" json:"chasers,omitempty"`
	Rules    RulesDef     `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Load reads and compiles the level file at path.
func Load(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("level: open %q: %w", path, err)
	}
	defer f.Close()

	lvl, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("level: %q: %w", path, err)
	}
	return lvl, nil
}

// LoadFromReader decodes a YAML level definition from r and compiles
// it. Useful in tests where levels are built from string literals.
func LoadFromReader(r io.Reader) (*Level, error) {
	def, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return def.Compile()
}

// Decode reads a Definition from r without compiling it. Decoding is
// strict: unknown fields are rejected so typos fail loudly.
func Decode(r io.Reader) (*Definition, error) {
	def := &Definition{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(def); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return def, nil
}

// normalized returns a copy of the definition with defaults applied.
func (d Definition) normalized() Definition {
	out := d
	out.Name = strings.TrimSpace(out.Name)
	if out.Name == "" {
		out.Name = "untitled"
	}
	if out.CellSize <= 0 {
		out.CellSize = DefaultCellSize
	}
	if out.Player.Direction == "" {
		out.Player.Direction = DefaultSpawnDirection
	}
	if out.Player.Speed <= 0 {
		out.Player.Speed = DefaultPlayerSpeed
	}
	out.Chasers = append([]ChaserDef(nil), d.Chasers...)
	for i := range out.Chasers {
		if out.Chasers[i].Direction == "" {
			out.Chasers[i].Direction = DefaultSpawnDirection
		}
		if out.Chasers[i].Speed <= 0 {
			out.Chasers[i].Speed = DefaultChaserSpeed
		}
		if out.Chasers[i].Home == nil {
			home := out.Chasers[i].Spawn
			out.Chasers[i].Home = &home
		}
	}
	if out.Rules.PelletPoints <= 0 {
		out.Rules.PelletPoints = DefaultPelletPoints
	}
	if out.Rules.PowerPelletPoints <= 0 {
		out.Rules.PowerPelletPoints = DefaultPowerPelletPoints
	}
	if out.Rules.EvasionTicks == 0 {
		out.Rules.EvasionTicks = DefaultEvasionTicks
	}
	if out.Rules.EvasionSpeedScale <= 0 {
		out.Rules.EvasionSpeedScale = DefaultEvasionSpeedScale
	}
	if out.Rules.ReturnSpeedScale <= 0 {
		out.Rules.ReturnSpeedScale = DefaultReturnSpeedScale
	}
	if len(out.Rules.Waves) == 0 {
		out.Rules.Waves = []WaveDef{
			{Mode: "patrol", Ticks: 140},
			{Mode: "pursuit", Ticks: 400},
		}
	} else {
		out.Rules.Waves = append([]WaveDef(nil), d.Rules.Waves...)
	}
	return out
}
