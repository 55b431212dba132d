package sim

import (
	"context"
	"errors"
	"sort"
	"time"

	"gridchase/internal/behavior"
	"gridchase/internal/grid"
	"gridchase/internal/level"
	"gridchase/internal/motion"
	"gridchase/internal/telemetry"
	"gridchase/logging"
	"gridchase/logging/gameplay"
)

// ErrMissingLevel indicates New was invoked without a compiled level.
var ErrMissingLevel = errors.New("sim: level is nil")

const (
	metricCommandsApplied   = "sim_commands_applied_total"
	metricCommandsRejected  = "sim_commands_rejected_total"
	metricPelletsEaten      = "sim_pellets_eaten_total"
	metricPowerPelletsEaten = "sim_power_pellets_eaten_total"
	metricPelletsRemaining  = "sim_pellets_remaining"
	metricPlayersCaught     = "sim_player_caught_total"
	metricChasersCaught     = "sim_chaser_caught_total"
	metricReturnsCompleted  = "sim_returns_completed_total"
	metricTeleports         = "sim_teleports_total"
	metricWaveChanges       = "sim_wave_changes_total"
	metricEvasionsExpired   = "sim_evasions_expired_total"
)

// World owns the live simulation state for one level run: the agents,
// the pellet set, the passage linker, the wave schedule and the event
// journal. All methods must be called from the loop goroutine.
type World struct {
	level  *level.Level
	config Config
	seed   string

	deps      Deps
	publisher logging.Publisher
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	events    EventSink

	player    *playerAgent
	chasers   map[string]*chaserAgent
	chaserIDs []string

	pellets *pelletField
	linker  *PassageLinker
	waves   *waveScheduler
	journal *Journal

	tick uint64
	now  time.Time
}

// New constructs a world over the compiled level with normalized
// configuration and per-subsystem deterministic RNG streams.
func New(lvl *level.Level, cfg Config, deps Deps) (*World, error) {
	if lvl == nil {
		return nil, ErrMissingLevel
	}
	normalized := cfg.normalized()

	if deps.RNG == nil {
		deps.RNG = NewDeterministicRNG
	}
	if deps.Publisher == nil {
		deps.Publisher = logging.NopPublisher()
	}
	if deps.Events == nil {
		deps.Events = NopEvents{}
	}

	w := &World{
		level:     lvl,
		config:    normalized,
		seed:      normalized.Seed,
		deps:      deps,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		events:    deps.Events,
		chasers:   make(map[string]*chaserAgent, len(lvl.Chasers)),
		pellets:   newPelletField(lvl),
		waves:     newWaveScheduler(lvl.Rules.Waves),
		journal:   NewJournal(defaultJournalCapacity, defaultJournalMaxAge),
	}
	w.linker = NewPassageLinker(lvl.Graph, lvl.Passages)

	w.player = &playerAgent{
		id:     PlayerID,
		motion: motion.NewController(lvl.Graph, w.linker, lvl.Player.Cell, lvl.Player.Direction, lvl.Player.Speed),
		alive:  true,
	}

	ambient := w.waves.Current()
	for _, spawn := range lvl.Chasers {
		w.chasers[spawn.Name] = &chaserAgent{
			id:        spawn.Name,
			motion:    motion.NewController(lvl.Graph, w.linker, spawn.Cell, spawn.Direction, spawn.Speed),
			mode:      behavior.NewController(ambient),
			rng:       deps.RNG(normalized.Seed, "chaser/"+spawn.Name),
			home:      spawn.Home,
			homeWorld: lvl.Graph.WorldPos(spawn.Home),
		}
		w.chaserIDs = append(w.chaserIDs, spawn.Name)
	}
	sort.Strings(w.chaserIDs)

	if w.metrics != nil {
		w.metrics.Store(metricPelletsRemaining, uint64(w.pellets.Remaining()))
	}
	return w, nil
}

// Deps returns the injected infrastructure dependencies.
func (w *World) Deps() Deps {
	if w == nil {
		return Deps{}
	}
	return w.deps
}

// Config reports the normalized configuration the world runs with.
func (w *World) Config() Config {
	if w == nil {
		return Config{}
	}
	return w.config
}

// Seed reports the root seed feeding every RNG stream.
func (w *World) Seed() string {
	if w == nil {
		return ""
	}
	return w.seed
}

// Level exposes the immutable compiled level.
func (w *World) Level() *level.Level {
	if w == nil {
		return nil
	}
	return w.level
}

// Tick reports the last advanced tick.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// PlayerPosition reports the runner's continuous position.
func (w *World) PlayerPosition() grid.Vec2 {
	if w == nil {
		return grid.Vec2{}
	}
	return w.player.motion.Position()
}

// PelletsRemaining reports how many pellets are still on the maze.
func (w *World) PelletsRemaining() int {
	if w == nil {
		return 0
	}
	return w.pellets.Remaining()
}

// RecentEvents returns the retained journal entries for diagnostics.
func (w *World) RecentEvents() []JournalEntry {
	if w == nil {
		return nil
	}
	return w.journal.Recent()
}

// Apply stages the drained commands into the world. Steering requests
// from unknown actors or with unparseable directions are dropped and
// counted, never fatal.
func (w *World) Apply(commands []Command) {
	if w == nil {
		return
	}
	for _, cmd := range commands {
		switch cmd.Type {
		case CommandSteer:
			w.applySteer(cmd)
		case CommandReset:
			w.ResetAgents()
			w.countApplied()
		default:
			w.rejectCommand(cmd, "unknown_type")
		}
	}
}

func (w *World) applySteer(cmd Command) {
	if cmd.Steer == nil {
		w.rejectCommand(cmd, "missing_payload")
		return
	}
	if cmd.ActorID != w.player.id {
		w.rejectCommand(cmd, "unknown_actor")
		return
	}
	dir, ok := grid.ParseDirection(cmd.Steer.Direction)
	if !ok || dir == grid.DirNone {
		w.rejectCommand(cmd, "bad_direction")
		return
	}
	w.player.motion.RequestDirection(dir)
	w.countApplied()
}

func (w *World) countApplied() {
	if w.metrics != nil {
		w.metrics.Add(metricCommandsApplied, 1)
	}
}

func (w *World) rejectCommand(cmd Command, reason string) {
	if w.metrics != nil {
		w.metrics.Add(metricCommandsRejected, 1)
	}
	if w.logger != nil {
		w.logger.Printf("[sim] rejecting command actor=%s type=%s reason=%s", cmd.ActorID, cmd.Type, reason)
	}
}

// Step advances the world by one tick. The phase order is fixed: waves,
// player movement and pellet consumption, chaser movement, collisions,
// evasion timer expiry. Collisions run before expiry so a catch and a
// timer landing on the same tick resolve in favor of the catch.
func (w *World) Step(tick uint64, now time.Time, dt float64) {
	if w == nil || dt <= 0 {
		return
	}
	w.tick = tick
	w.now = now
	w.stepWaves(tick)
	w.stepPlayer(tick, dt)
	w.stepChasers(tick, dt)
	w.resolveCollisions(tick)
	w.expireEvasions(tick)
	if w.metrics != nil {
		w.metrics.Store(metricPelletsRemaining, uint64(w.pellets.Remaining()))
	}
}

// stepWaves advances the ambient schedule. On a flip, chasers actively
// in the old ambient mode switch and receive a reversal request;
// evading and returning chasers only record the new baseline.
func (w *World) stepWaves(tick uint64) {
	mode, changed := w.waves.Advance()
	if !changed {
		return
	}
	for _, id := range w.chaserIDs {
		chaser := w.chasers[id]
		if chaser.mode.SetAmbient(mode) {
			chaser.requestReversal()
		}
	}
	w.record(tick, EventWaveChanged, "", mode.String())
	if w.metrics != nil {
		w.metrics.Add(metricWaveChanges, 1)
	}
	gameplay.WaveChanged(context.Background(), w.publisher, tick, gameplay.WaveChangedPayload{
		Mode:  mode.String(),
		Index: w.waves.index,
	})
}

func (w *World) stepPlayer(tick uint64, dt float64) {
	if !w.player.alive {
		return
	}
	arrivals := w.player.motion.Tick(dt)
	for _, arrival := range arrivals {
		if arrival.Teleported {
			w.recordTeleport(tick, w.playerRef(), arrival)
		}
		w.consumePellet(tick, arrival.Entered)
		if arrival.Teleported && arrival.Node != nil {
			w.consumePellet(tick, arrival.Node.Pos())
		}
	}
}

func (w *World) consumePellet(tick uint64, cell grid.Point) {
	pellet, ok := w.pellets.Consume(cell)
	if !ok {
		return
	}
	gameplay.PelletEaten(context.Background(), w.publisher, tick, w.playerRef(), gameplay.PelletEatenPayload{
		Col:       cell.Col,
		Row:       cell.Row,
		Points:    pellet.Points,
		Power:     pellet.Power,
		Remaining: w.pellets.Remaining(),
	})
	if pellet.Power {
		w.record(tick, EventPowerPelletEaten, w.player.id, cell.String())
		if w.metrics != nil {
			w.metrics.Add(metricPowerPelletsEaten, 1)
		}
		w.events.OnPowerPelletEaten(tick, pellet)
		w.triggerEvasion(tick)
		return
	}
	w.record(tick, EventPelletEaten, w.player.id, cell.String())
	if w.metrics != nil {
		w.metrics.Add(metricPelletsEaten, 1)
	}
	w.events.OnPelletEaten(tick, pellet)
}

// triggerEvasion pushes every patrol and pursuit chaser into evasion
// with reduced speed and a reversal request. Chasers already evading
// restart their timer; returning chasers are unaffected.
func (w *World) triggerEvasion(tick uint64) {
	rules := w.level.Rules
	for _, id := range w.chaserIDs {
		chaser := w.chasers[id]
		before := chaser.mode.Mode()
		if !chaser.mode.EnterEvasion() {
			continue
		}
		chaser.evasionDeadline = tick + rules.EvasionTicks
		chaser.motion.SetSpeedScale(rules.EvasionSpeedScale)
		chaser.requestReversal()
		if before != behavior.ModeEvasion {
			w.recordModeChange(tick, id, before, behavior.ModeEvasion, "power_pellet")
		}
	}
}

// stepChasers advances every chaser in sorted-ID order. Steering runs
// per node coincidence through the mode's selection policy against the
// player position snapshot taken after the player's own move.
func (w *World) stepChasers(tick uint64, dt float64) {
	target := w.player.motion.Position()
	for _, id := range w.chaserIDs {
		chaser := w.chasers[id]
		arrivals := chaser.motion.TickDecide(dt, func(arrival motion.Arrival) grid.Direction {
			if arrival.Node == nil {
				return grid.DirNone
			}
			if chaser.mode.Mode() == behavior.ModeReturning && arrival.Node.Pos() == chaser.home {
				w.completeReturn(tick, chaser, arrival.Node.Pos())
			}
			return behavior.SelectDirection(chaser.mode.Mode(), arrival.Node, behavior.Context{
				Current: chaser.motion.Direction(),
				Target:  target,
				Home:    chaser.homeWorld,
				RNG:     chaser.rng,
			})
		})
		for _, arrival := range arrivals {
			if arrival.Teleported {
				w.recordTeleport(tick, chaserRef(id), arrival)
			}
		}
	}
}

func (w *World) completeReturn(tick uint64, chaser *chaserAgent, cell grid.Point) {
	if !chaser.mode.CompleteReturn() {
		return
	}
	chaser.motion.SetSpeedScale(1)
	w.record(tick, EventAgentReachedHome, chaser.id, cell.String())
	if w.metrics != nil {
		w.metrics.Add(metricReturnsCompleted, 1)
	}
	gameplay.AgentReachedHome(context.Background(), w.publisher, tick, chaserRef(chaser.id), gameplay.AgentReachedHomePayload{
		Col: cell.Col,
		Row: cell.Row,
	})
	w.events.OnAgentReachedHome(tick, chaser.id)
}

// resolveCollisions compares discrete cells in sorted-ID order. An
// evading chaser sharing the player's cell is caught and sent home; a
// patrol or pursuit chaser catches the player; returning chasers are
// inert.
func (w *World) resolveCollisions(tick uint64) {
	if !w.player.alive {
		return
	}
	playerCell := w.player.motion.Cell()
	for _, id := range w.chaserIDs {
		chaser := w.chasers[id]
		if chaser.motion.Cell() != playerCell {
			continue
		}
		switch chaser.mode.Mode() {
		case behavior.ModeEvasion:
			w.catchChaser(tick, chaser, playerCell)
		case behavior.ModePatrol, behavior.ModePursuit:
			w.catchPlayer(tick, chaser, playerCell)
			return
		}
	}
}

func (w *World) catchChaser(tick uint64, chaser *chaserAgent, cell grid.Point) {
	before := chaser.mode.Mode()
	chaser.mode.EnterReturning()
	chaser.evasionDeadline = 0
	chaser.motion.SetSpeedScale(w.level.Rules.ReturnSpeedScale)
	w.record(tick, EventAgentCaught, chaser.id, "by "+w.player.id)
	w.recordModeChange(tick, chaser.id, before, behavior.ModeReturning, "caught")
	if w.metrics != nil {
		w.metrics.Add(metricChasersCaught, 1)
	}
	gameplay.AgentCaught(context.Background(), w.publisher, tick, chaserRef(chaser.id), gameplay.AgentCaughtPayload{
		By:  w.player.id,
		Col: cell.Col,
		Row: cell.Row,
	})
	w.events.OnAgentCaught(tick, chaser.id, w.player.id)
}

func (w *World) catchPlayer(tick uint64, chaser *chaserAgent, cell grid.Point) {
	w.player.alive = false
	w.record(tick, EventAgentCaught, w.player.id, "by "+chaser.id)
	if w.metrics != nil {
		w.metrics.Add(metricPlayersCaught, 1)
	}
	gameplay.AgentCaught(context.Background(), w.publisher, tick, w.playerRef(), gameplay.AgentCaughtPayload{
		By:  chaser.id,
		Col: cell.Col,
		Row: cell.Row,
	})
	w.events.OnAgentCaught(tick, w.player.id, chaser.id)
}

// expireEvasions restores chasers whose evasion timer has elapsed. It
// runs after the collision pass, and ExitEvasion refuses outside
// Evasion, so chasers caught this tick stay Returning.
func (w *World) expireEvasions(tick uint64) {
	for _, id := range w.chaserIDs {
		chaser := w.chasers[id]
		if chaser.evasionDeadline == 0 || tick < chaser.evasionDeadline {
			continue
		}
		chaser.evasionDeadline = 0
		before := chaser.mode.Mode()
		if !chaser.mode.ExitEvasion() {
			continue
		}
		chaser.motion.SetSpeedScale(1)
		if w.metrics != nil {
			w.metrics.Add(metricEvasionsExpired, 1)
		}
		w.recordModeChange(tick, id, before, chaser.mode.Mode(), "timer")
	}
}

// ResetAgents restores every agent's spawn pose, mode and speed scale,
// clears evasion deadlines and rewinds the wave schedule. Pellets stay
// as they are.
func (w *World) ResetAgents() {
	if w == nil {
		return
	}
	w.waves.Reset()
	ambient := w.waves.Current()
	w.player.motion.Reset()
	w.player.alive = true
	for _, id := range w.chaserIDs {
		w.chasers[id].reset(ambient)
	}
	w.record(w.tick, EventAgentsReset, "", "")
}

// ResetLevel restores agents and the full pellet set.
func (w *World) ResetLevel() {
	if w == nil {
		return
	}
	w.ResetAgents()
	w.pellets.Reset()
	w.record(w.tick, EventLevelReset, "", "")
	if w.metrics != nil {
		w.metrics.Store(metricPelletsRemaining, uint64(w.pellets.Remaining()))
	}
}

// Snapshot returns the broadcast view of the current state.
func (w *World) Snapshot() Snapshot {
	if w == nil {
		return Snapshot{}
	}
	snapshot := Snapshot{
		Tick:             w.tick,
		Wave:             w.waves.Current().String(),
		Pellets:          w.pellets.Snapshot(),
		PelletsRemaining: w.pellets.Remaining(),
	}
	playerState := w.player.motion.State()
	snapshot.Player = PlayerSnapshot{
		ID:     w.player.id,
		X:      playerState.Pos.X,
		Y:      playerState.Pos.Y,
		Facing: playerState.Dir.String(),
		Alive:  w.player.alive,
	}
	if playerState.Next != grid.DirNone {
		snapshot.Player.Pending = playerState.Next.String()
	}
	for _, id := range w.chaserIDs {
		chaser := w.chasers[id]
		state := chaser.motion.State()
		snapshot.Chasers = append(snapshot.Chasers, ChaserSnapshot{
			ID:     id,
			X:      state.Pos.X,
			Y:      state.Pos.Y,
			Facing: state.Dir.String(),
			Mode:   chaser.mode.Mode().String(),
		})
	}
	return snapshot
}

func (w *World) record(tick uint64, kind EventKind, actor, detail string) {
	w.journal.Record(JournalEntry{
		Tick:       tick,
		Kind:       kind,
		Actor:      actor,
		Detail:     detail,
		RecordedAt: w.now,
	})
}

func (w *World) recordModeChange(tick uint64, id string, from, to behavior.Mode, reason string) {
	w.record(tick, EventModeChanged, id, from.String()+">"+to.String())
	gameplay.ModeChanged(context.Background(), w.publisher, tick, chaserRef(id), gameplay.ModeChangedPayload{
		From:   from.String(),
		To:     to.String(),
		Reason: reason,
	})
}

func (w *World) recordTeleport(tick uint64, actor logging.EntityRef, arrival motion.Arrival) {
	name, _ := w.linker.Name(arrival.Entered)
	w.record(tick, EventTeleported, actor.ID, name)
	if w.metrics != nil {
		w.metrics.Add(metricTeleports, 1)
	}
	payload := gameplay.AgentTeleportedPayload{
		Passage: name,
		FromCol: arrival.Entered.Col,
		FromRow: arrival.Entered.Row,
	}
	if arrival.Node != nil {
		payload.ToCol = arrival.Node.Pos().Col
		payload.ToRow = arrival.Node.Pos().Row
	}
	gameplay.AgentTeleported(context.Background(), w.publisher, tick, actor, payload)
}

func (w *World) playerRef() logging.EntityRef {
	return logging.EntityRef{ID: w.player.id, Kind: logging.EntityKindPlayer}
}

func chaserRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindNPC}
}
