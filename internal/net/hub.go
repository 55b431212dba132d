package net

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"gridchase/internal/level"
	"gridchase/internal/net/intake"
	"gridchase/internal/net/proto"
	"gridchase/internal/net/ws"
	"gridchase/internal/sim"
	"gridchase/internal/telemetry"
	"gridchase/logging"
	"gridchase/logging/lifecycle"
	networklog "gridchase/logging/network"
	simulationlog "gridchase/logging/simulation"
)

const (
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

// HubConfig tunes the session shell around the simulation loop.
type HubConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
	Lives           int
	CaptureBonus    int
	DisconnectAfter time.Duration
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		TickRate:        15,
		CatchupMaxTicks: 4,
		CommandCapacity: 256,
		PerActorLimit:   32,
		WarningStep:     64,
		Lives:           3,
		CaptureBonus:    200,
		DisconnectAfter: disconnectAfter,
	}
}

func (cfg HubConfig) normalized() HubConfig {
	def := DefaultHubConfig()
	if cfg.TickRate <= 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.CatchupMaxTicks <= 0 {
		cfg.CatchupMaxTicks = def.CatchupMaxTicks
	}
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = def.CommandCapacity
	}
	if cfg.PerActorLimit <= 0 {
		cfg.PerActorLimit = def.PerActorLimit
	}
	if cfg.WarningStep <= 0 {
		cfg.WarningStep = def.WarningStep
	}
	if cfg.Lives <= 0 {
		cfg.Lives = def.Lives
	}
	if cfg.CaptureBonus <= 0 {
		cfg.CaptureBonus = def.CaptureBonus
	}
	if cfg.DisconnectAfter <= 0 {
		cfg.DisconnectAfter = def.DisconnectAfter
	}
	return cfg
}

type clientState struct {
	id            string
	joinSeq       uint64
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

type cachedFrame struct {
	frame proto.StateFrameV1
	data  []byte
}

type staleClient struct {
	id     string
	silent time.Duration
}

// Hub owns the session shell: connected clients, the control seat,
// lives and score, and broadcasting the frames the loop produces. The
// world itself is only touched from loop hooks; everything the HTTP
// surface reads comes from atomics or the per-tick caches.
type Hub struct {
	world  *sim.World
	loop   *sim.Loop
	config HubConfig

	logger    telemetry.Logger
	publisher logging.Publisher
	clock     logging.Clock
	counters  *broadcastCounters
	levelInfo proto.LevelInfoV1
	seed      string

	mu       sync.Mutex
	clients  map[string]*clientState
	sessions map[string]*ws.Session
	seatID   string

	nextID       atomic.Uint64
	lives        atomic.Int64
	score        atomic.Uint64
	round        atomic.Uint64
	lastTick     atomic.Uint64
	pendingReset atomic.Bool
	frameCache   atomic.Pointer[cachedFrame]
	journalCache atomic.Pointer[[]sim.JournalEntry]

	// Loop-local shell state, touched only from loop hooks.
	pelletEaten  bool
	playerDown   bool
	tickEvents   []string
	budgetStreak int
}

var _ ws.Hub = (*Hub)(nil)
var _ sim.EventSink = (*Hub)(nil)

// NewHub builds the world with the hub installed as its event sink and
// wraps it in a command loop.
func NewHub(lvl *level.Level, simCfg sim.Config, deps sim.Deps, cfg HubConfig) (*Hub, error) {
	cfg = cfg.normalized()

	hub := &Hub{
		config:   cfg,
		clients:  make(map[string]*clientState),
		sessions: make(map[string]*ws.Session),
		counters: newBroadcastCounters(),
	}
	hub.lives.Store(int64(cfg.Lives))
	hub.round.Store(1)

	deps.Events = hub
	world, err := sim.New(lvl, simCfg, deps)
	if err != nil {
		return nil, err
	}
	hub.world = world
	hub.seed = world.Seed()
	hub.logger = world.Deps().Logger
	hub.publisher = world.Deps().Publisher
	hub.clock = world.Deps().Clock
	hub.levelInfo = proto.NewLevelInfo(world.Level())

	hub.loop = sim.NewLoop(world, sim.LoopConfig{
		TickRate:        cfg.TickRate,
		CatchupMaxTicks: cfg.CatchupMaxTicks,
		CommandCapacity: cfg.CommandCapacity,
		PerActorLimit:   cfg.PerActorLimit,
		WarningStep:     cfg.WarningStep,
	}, sim.LoopHooks{
		Prepare:   hub.prepare,
		AfterStep: hub.afterStep,
	})

	// The loop has not started; seeding the cache here is single
	// threaded so joiners before the first tick still get a frame.
	hub.cacheFrame(world.Snapshot(), hub.now(), nil)
	return hub, nil
}

// Run drives the simulation loop until stop closes.
func (h *Hub) Run(stop <-chan struct{}) {
	h.loop.Run(stop)
}

// World exposes the simulation for startup wiring and tests. It must
// not be touched once Run has started.
func (h *Hub) World() *sim.World {
	return h.world
}

func (h *Hub) now() time.Time {
	if h.clock != nil {
		return h.clock.Now()
	}
	return time.Now()
}

// Join registers a new client. The first joiner takes the control
// seat; later joiners spectate until the seat frees up.
func (h *Hub) Join() proto.JoinResponseV1 {
	id := h.nextID.Add(1)
	clientID := fmt.Sprintf("client-%d", id)
	now := h.now()

	h.mu.Lock()
	h.clients[clientID] = &clientState{id: clientID, joinSeq: id, lastHeartbeat: now}
	seat := false
	if h.seatID == "" {
		h.seatID = clientID
		seat = true
	}
	spectators := len(h.clients) - 1
	h.mu.Unlock()

	lifecycle.ClientJoined(context.Background(), h.publisher, h.lastTick.Load(), clientRef(clientID), lifecycle.ClientJoinedPayload{
		Seat:       seat,
		Spectators: spectators,
	})

	response := proto.JoinResponseV1{
		ID:    clientID,
		Seat:  seat,
		Level: h.levelInfo,
	}
	if cached := h.frameCache.Load(); cached != nil {
		response.State = cached.frame
	}
	return response
}

// Subscribe attaches a websocket connection to a joined client and
// returns the latest encoded frame for the initial write.
func (h *Hub) Subscribe(clientID string, conn *websocket.Conn) (*ws.Session, []byte, bool) {
	h.mu.Lock()
	state, ok := h.clients[clientID]
	if !ok {
		h.mu.Unlock()
		return nil, nil, false
	}
	state.lastHeartbeat = h.now()
	if existing, ok := h.sessions[clientID]; ok {
		existing.Close()
	}
	session := ws.NewSession(conn)
	h.sessions[clientID] = session
	h.mu.Unlock()

	var data []byte
	if cached := h.frameCache.Load(); cached != nil {
		data = cached.data
	}
	return session, data, true
}

// Disconnect removes a client. When the seat holder leaves, the
// longest-connected spectator inherits the seat and is notified.
func (h *Hub) Disconnect(clientID, reason string) {
	h.mu.Lock()
	session, hadSession := h.sessions[clientID]
	if hadSession {
		delete(h.sessions, clientID)
	}
	_, hadClient := h.clients[clientID]
	if hadClient {
		delete(h.clients, clientID)
	}

	promoted := ""
	var promotedSession *ws.Session
	if hadClient && h.seatID == clientID {
		h.seatID = ""
		var next *clientState
		for _, state := range h.clients {
			if next == nil || state.joinSeq < next.joinSeq {
				next = state
			}
		}
		if next != nil {
			h.seatID = next.id
			promoted = next.id
			promotedSession = h.sessions[next.id]
		}
	}
	h.mu.Unlock()

	if session != nil {
		session.Close()
	}
	if !hadClient {
		return
	}

	tick := h.lastTick.Load()
	lifecycle.ClientDisconnected(context.Background(), h.publisher, tick, clientRef(clientID), lifecycle.ClientDisconnectedPayload{
		Reason: reason,
	})

	if promoted == "" {
		return
	}
	lifecycle.SeatTransferred(context.Background(), h.publisher, tick, clientRef(promoted), lifecycle.SeatTransferredPayload{
		From: clientID,
		To:   promoted,
	})
	if promotedSession == nil {
		return
	}
	data, err := proto.EncodeSeatGrant(proto.SeatGrant{ClientID: promoted})
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("[net] failed to encode seat grant for %s: %v", promoted, err)
		}
		return
	}
	if err := promotedSession.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Disconnect(promoted, "write_failed")
	}
}

// Stage validates a client message and queues it for the next tick.
func (h *Hub) Stage(clientID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	return intake.StageClientCommand(intake.CommandContext{
		Queue:     h.loop,
		HasClient: h.hasClient,
		Seat:      h.seatFor,
		Tick:      h.lastTick.Load,
		Now:       h.now,
	}, clientID, msg)
}

func (h *Hub) hasClient(clientID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.clients[clientID]
	return ok
}

func (h *Hub) seatFor(clientID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.seatID != clientID {
		return "", false
	}
	return sim.PlayerID, true
}

// Heartbeat records liveness and returns the smoothed RTT. Client
// timestamps more than five seconds ahead of the server are ignored so
// a skewed clock cannot poison the measurement.
func (h *Hub) Heartbeat(clientID string, receivedAt time.Time, sentAt int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.clients[clientID]
	if !ok {
		return 0, false
	}
	state.lastHeartbeat = receivedAt

	if sentAt > 0 {
		clientTime := time.UnixMilli(sentAt)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}
	return state.lastRTT, true
}

// RequestGameReset schedules a full reset of level, lives and score
// before the next tick runs.
func (h *Hub) RequestGameReset() {
	h.pendingReset.Store(true)
}

// OnPelletEaten implements sim.EventSink; runs on the loop goroutine.
func (h *Hub) OnPelletEaten(tick uint64, pellet sim.Pellet) {
	h.score.Add(uint64(pellet.Points))
	h.pelletEaten = true
}

func (h *Hub) OnPowerPelletEaten(tick uint64, pellet sim.Pellet) {
	h.score.Add(uint64(pellet.Points))
	h.pelletEaten = true
	h.tickEvents = append(h.tickEvents, "power_pellet")
}

func (h *Hub) OnAgentCaught(tick uint64, agentID, byID string) {
	if agentID == sim.PlayerID {
		h.playerDown = true
		h.tickEvents = append(h.tickEvents, "player_caught")
		return
	}
	h.score.Add(uint64(h.config.CaptureBonus))
	h.tickEvents = append(h.tickEvents, "chaser_caught")
}

func (h *Hub) OnAgentReachedHome(tick uint64, agentID string) {
	h.tickEvents = append(h.tickEvents, "chaser_home")
}

func (h *Hub) prepare(ctx sim.LoopTickContext) {
	h.pelletEaten = false
	h.playerDown = false
	h.tickEvents = h.tickEvents[:0]

	if h.pendingReset.CompareAndSwap(true, false) {
		h.world.ResetLevel()
		h.lives.Store(int64(h.config.Lives))
		h.score.Store(0)
		h.round.Store(1)
		h.tickEvents = append(h.tickEvents, "game_reset")
		lifecycle.GameReset(context.Background(), h.publisher, ctx.Tick)
	}
}

// afterStep resolves lives and round transitions, refreshes the frame
// caches and broadcasts. Resets apply after the snapshot was taken, so
// viewers see the catch or cleared maze for exactly one frame.
func (h *Hub) afterStep(result sim.LoopStepResult) {
	tick := result.Tick
	snapshot := result.Snapshot

	if h.playerDown {
		if remaining := h.lives.Add(-1); remaining > 0 {
			h.world.ResetAgents()
			h.tickEvents = append(h.tickEvents, "respawn")
		} else {
			lifecycle.GameOver(context.Background(), h.publisher, tick, lifecycle.GameOverPayload{
				Score:  h.score.Load(),
				Rounds: h.round.Load(),
			})
			h.world.ResetLevel()
			h.lives.Store(int64(h.config.Lives))
			h.score.Store(0)
			h.round.Store(1)
			h.tickEvents = append(h.tickEvents, "game_over")
		}
	} else if h.pelletEaten && snapshot.PelletsRemaining == 0 {
		round := h.round.Add(1)
		lifecycle.LevelCleared(context.Background(), h.publisher, tick, lifecycle.LevelClearedPayload{
			Round: round,
			Score: h.score.Load(),
		})
		h.world.ResetLevel()
		h.tickEvents = append(h.tickEvents, "level_clear")
	}

	h.lastTick.Store(tick)

	var events []string
	if len(h.tickEvents) > 0 {
		events = append([]string(nil), h.tickEvents...)
	}
	data := h.cacheFrame(snapshot, result.Now, events)

	journal := h.world.RecentEvents()
	h.journalCache.Store(&journal)

	if data != nil {
		entities := 1 + len(snapshot.Chasers) + len(snapshot.Pellets)
		h.broadcast(result.Now, tick, data, entities)
	}

	h.counters.RecordTickDuration(result.Duration)
	if result.Budget > 0 && result.Duration > result.Budget {
		h.budgetStreak++
		simulationlog.TickBudgetOverrun(context.Background(), h.publisher, tick, simulationlog.TickBudgetOverrunPayload{
			DurationMillis: result.Duration.Milliseconds(),
			BudgetMillis:   result.Budget.Milliseconds(),
			Ratio:          float64(result.Duration) / float64(result.Budget),
			Streak:         h.budgetStreak,
		})
	} else {
		h.budgetStreak = 0
	}
}

func (h *Hub) cacheFrame(snapshot sim.Snapshot, now time.Time, events []string) []byte {
	frame := proto.StateFrameV1{
		Snapshot:   snapshot,
		ServerTime: now.UnixMilli(),
		Lives:      h.lives.Load(),
		Score:      h.score.Load(),
		Round:      h.round.Load(),
		Events:     events,
	}
	data, err := proto.EncodeStateFrameV1(frame)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("[net] failed to encode state frame: %v", err)
		}
		return nil
	}
	h.frameCache.Store(&cachedFrame{frame: frame, data: data})
	return data
}

func (h *Hub) broadcast(now time.Time, tick uint64, data []byte, entities int) {
	h.mu.Lock()
	sessions := make(map[string]*ws.Session, len(h.sessions))
	for id, session := range h.sessions {
		sessions[id] = session
	}
	var stale []staleClient
	for id, state := range h.clients {
		if silent := now.Sub(state.lastHeartbeat); silent > h.config.DisconnectAfter {
			stale = append(stale, staleClient{id: id, silent: silent})
		}
	}
	h.mu.Unlock()

	for _, gone := range stale {
		networklog.HeartbeatTimeout(context.Background(), h.publisher, tick, clientRef(gone.id), networklog.HeartbeatTimeoutPayload{
			SilentMillis: gone.silent.Milliseconds(),
		})
		h.Disconnect(gone.id, "heartbeat_timeout")
		delete(sessions, gone.id)
	}

	if len(sessions) == 0 {
		return
	}
	for id, session := range sessions {
		if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
			h.counters.RecordFailure()
			networklog.BroadcastFailed(context.Background(), h.publisher, tick, clientRef(id), networklog.BroadcastFailedPayload{
				Bytes: len(data),
				Error: err.Error(),
			})
			h.Disconnect(id, "write_failed")
		}
	}
	h.counters.RecordBroadcast(len(data), entities)
}

// Tick reports the most recently completed tick.
func (h *Hub) Tick() uint64 {
	return h.lastTick.Load()
}

func (h *Hub) TickRate() int {
	return h.config.TickRate
}

func (h *Hub) Lives() int64 {
	return h.lives.Load()
}

func (h *Hub) Score() uint64 {
	return h.score.Load()
}

func (h *Hub) Round() uint64 {
	return h.round.Load()
}

func (h *Hub) Seed() string {
	return h.seed
}

func (h *Hub) TelemetrySnapshot() TelemetrySnapshot {
	return h.counters.Snapshot()
}

// RecentEvents returns the journal captured after the last tick.
func (h *Hub) RecentEvents() []sim.JournalEntry {
	if cached := h.journalCache.Load(); cached != nil {
		return *cached
	}
	return nil
}

type diagnosticsClient struct {
	ID            string `json:"id"`
	Seat          bool   `json:"seat"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}

// DiagnosticsSnapshot exposes heartbeat data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsClient {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]diagnosticsClient, 0, len(h.clients))
	for _, state := range h.clients {
		clients = append(clients, diagnosticsClient{
			ID:            state.id,
			Seat:          state.id == h.seatID,
			LastHeartbeat: state.lastHeartbeat.UnixMilli(),
			RTTMillis:     state.lastRTT.Milliseconds(),
		})
	}
	return clients
}

func clientRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer}
}
