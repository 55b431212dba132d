package sim

// Snapshot is the broadcast-friendly view of one simulation tick. All
// fields are plain values; callers may hold snapshots across ticks.
type Snapshot struct {
	Tick             uint64           `json:"tick"`
	Wave             string           `json:"wave"`
	Player           PlayerSnapshot   `json:"player"`
	Chasers          []ChaserSnapshot `json:"chasers"`
	Pellets          []PelletSnapshot `json:"pellets"`
	PelletsRemaining int              `json:"pelletsRemaining"`
}

// PlayerSnapshot mirrors the runner's live state.
type PlayerSnapshot struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Facing  string  `json:"facing"`
	Pending string  `json:"pending,omitempty"`
	Alive   bool    `json:"alive"`
}

// ChaserSnapshot mirrors one chaser's live state.
type ChaserSnapshot struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Facing string  `json:"facing"`
	Mode   string  `json:"mode"`
}

// PelletSnapshot places one live pellet.
type PelletSnapshot struct {
	Col   int  `json:"col"`
	Row   int  `json:"row"`
	Power bool `json:"power"`
}
