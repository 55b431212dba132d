package level

import "strings"

// defaultLevelYAML ships a small playable maze so the server runs with
// zero configuration. It goes through the same decode and compile path
// as levels supplied on disk.
const defaultLevelYAML = `
name: crossloop
cellSize: 16
rows:
  - "###################"
  - "#o.......#.......o#"
  - "#.##.###.#.###.##.#"
  - "#........ ........#"
  - "#.##.##.###.##.##.#"
  - "     #       #     "
  - "#.##.##.###.##.##.#"
  - "#....#...#...#....#"
  - "#.##.###.#.###.##.#"
  - "#o.......#.......o#"
  - "###################"
passages:
  - name: west
    cell: {col: 0, row: 5}
    pair: east
  - name: east
    cell: {col: 18, row: 5}
    pair: west
player:
  spawn: {col: 9, row: 3}
  direction: left
  speed: 150
chasers:
  - name: amber
    spawn: {col: 8, row: 5}
    direction: left
    speed: 140
  - name: cobalt
    spawn: {col: 10, row: 5}
    direction: right
    speed: 140
rules:
  evasionTicks: 120
  evasionSpeedScale: 0.6
  waves:
    - {mode: patrol, ticks: 140}
    - {mode: pursuit, ticks: 400}
`

// Default compiles the built-in level.
func Default() (*Level, error) {
	return LoadFromReader(strings.NewReader(defaultLevelYAML))
}
