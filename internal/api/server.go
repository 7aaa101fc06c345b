// Package api serves the village state over HTTP: a read-only status
// surface plus a websocket feed of live events.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/villagesim/internal/engine"
	"github.com/talgya/villagesim/internal/journal"
	"github.com/talgya/villagesim/internal/resource"
)

// recentCap bounds the fallback in-memory event ring used when no
// journal is attached.
const recentCap = 200

// AgentStatus is one villager in a snapshot.
type AgentStatus struct {
	Name   string  `json:"name"`
	Job    string  `json:"job"`
	Action string  `json:"action"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Health float64 `json:"health"`
}

// Snapshot is a point-in-time view of the village, published by the
// simulation loop and read by the handlers.
type Snapshot struct {
	Time          string             `json:"time"`
	Tick          uint64             `json:"tick"`
	Day           int                `json:"day"`
	Hour          int                `json:"hour"`
	Season        string             `json:"season"`
	Weather       string             `json:"weather"`
	Population    int                `json:"population"`
	Houses        int                `json:"houses"`
	ActiveThreats int                `json:"active_threats"`
	Stats         engine.Stats       `json:"stats"`
	Agents        []AgentStatus      `json:"agents"`
	Stores        map[string]float64 `json:"stores"`
}

// Server publishes village state over HTTP. The simulation loop feeds
// it snapshots and events; handlers only ever read.
type Server struct {
	DB *journal.DB // optional; enables journal-backed event queries

	// EventRateLimit caps /api/v1/events requests per client per minute.
	// Zero means the default of 60.
	EventRateLimit int

	mu   sync.RWMutex
	snap Snapshot

	subMu   sync.Mutex
	subs    map[uint64]chan engine.Event
	nextSub uint64
	recent  []engine.Event

	upgrader websocket.Upgrader
}

// NewServer creates a server with no state published yet.
func NewServer(db *journal.DB) *Server {
	return &Server{
		DB:   db,
		subs: make(map[uint64]chan engine.Event),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Publish replaces the current snapshot.
func (s *Server) Publish(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Broadcast fans an event out to every websocket subscriber. Slow
// subscribers lose events rather than stalling the simulation.
func (s *Server) Broadcast(ev engine.Event) {
	s.subMu.Lock()
	s.recent = append(s.recent, ev)
	if len(s.recent) > recentCap {
		s.recent = s.recent[len(s.recent)-recentCap:]
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.subMu.Unlock()
}

// BuildSnapshot assembles a snapshot from the simulation. Must be
// called from the simulation's own goroutine.
func BuildSnapshot(sim *engine.Simulation) Snapshot {
	snap := Snapshot{
		Time:          sim.Clock.String(),
		Tick:          sim.Clock.Tick(),
		Day:           sim.Clock.TotalDay(),
		Hour:          sim.Clock.Hour(),
		Season:        sim.Clock.Season().String(),
		Weather:       sim.Clock.Weather().String(),
		Houses:        len(sim.World.Houses()),
		ActiveThreats: len(sim.Threats.Active()),
		Stats:         sim.Stats,
		Stores:        make(map[string]float64),
	}
	for _, a := range sim.World.Agents() {
		if !a.Alive() {
			continue
		}
		snap.Population++
		job := "unemployed"
		if a.Occupation != nil {
			job = a.Occupation.Name()
		}
		snap.Agents = append(snap.Agents, AgentStatus{
			Name:   a.Name,
			Job:    job,
			Action: a.Action.String(),
			X:      a.X,
			Y:      a.Y,
			Health: a.Health,
		})
	}
	for t := resource.Type(0); t < resource.NumTypes; t++ {
		total := sim.Resources.VillageAmount(t) + sim.Storage.TotalAmount(t)
		if total > 0 {
			snap.Stores[t.String()] = total
		}
	}
	return snap
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	limit := s.EventRateLimit
	if limit <= 0 {
		limit = 60
	}
	rl := NewRateLimiter(limit, time.Minute)
	mux.HandleFunc("/api/v1/events", rl.Limit(s.handleEvents))
	mux.HandleFunc("/api/v1/events/ws", rl.Limit(s.handleEventsWS))
	return mux
}

// Start begins serving in a goroutine.
func (s *Server) Start(addr string) {
	slog.Info("HTTP API starting", "addr", addr)
	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	writeJSON(w, map[string]any{
		"time":           snap.Time,
		"tick":           snap.Tick,
		"day":            snap.Day,
		"hour":           snap.Hour,
		"season":         snap.Season,
		"weather":        snap.Weather,
		"population":     snap.Population,
		"houses":         snap.Houses,
		"active_threats": snap.ActiveThreats,
		"stores":         snap.Stores,
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	agents := s.snap.Agents
	s.mu.RUnlock()
	if agents == nil {
		agents = []AgentStatus{}
	}
	writeJSON(w, agents)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	stats := s.snap.Stats
	s.mu.RUnlock()
	writeJSON(w, stats)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	if s.DB != nil {
		events, err := s.DB.RecentEvents(limit)
		if err == nil {
			writeJSON(w, events)
			return
		}
		slog.Error("event query failed", "error", err)
	}

	s.subMu.Lock()
	events := make([]engine.Event, len(s.recent))
	copy(events, s.recent)
	s.subMu.Unlock()
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, events)
}

// handleEventsWS streams events over a websocket until the client
// disconnects.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := make(chan engine.Event, 64)
	id := s.subscribe(ch)
	defer s.unsubscribe(id)

	// Reading surfaces disconnects; no client messages are expected.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev := <-ch:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

func (s *Server) subscribe(ch chan engine.Event) uint64 {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = ch
	return id
}

func (s *Server) unsubscribe(id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	delete(s.subs, id)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}
