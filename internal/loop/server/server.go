// Package server runs one shared simulation for any number of clients.
package server

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/simulation"
)

// GameServer is the interface clients use to communicate with the server.
// Decouples the Client from the concrete Server implementation.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	SendPress(clientID int, x, y float64)
	SendCommand(clientID int, cmd Command)
	GetSnapshot() *WorldSnapshot
}

// Server owns the simulation. All mutation happens on the goroutine running
// Run; clients talk to it through channels and read published snapshots.
type Server struct {
	sim    *simulation.Simulation
	layout simulation.Layout
	logger *log.Logger

	snapshot     atomic.Pointer[WorldSnapshot]
	clients      map[int]*ClientHandle
	nextClientID int
	inputChan    chan ClientInput
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex

	paused   bool
	stepOnce bool
	delta    time.Duration
	resets   int
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string           // Display name for this client
	EventsCh chan ClientEvent // Events sent to client
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type   ClientEventType
	Reason string // Why the world was reset
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventWorldReset ClientEventType = iota
	EventServerShutdown
)

// NewServer creates a server with a fresh simulation built from settings.
// A nil logger discards all output.
func NewServer(settings config.Settings, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sim, err := simulation.New(settings.Bounds(), settings.Layout, settings.Options(logger.WithPrefix("sim")))
	if err != nil {
		return nil, err
	}

	s := &Server{
		sim:          sim,
		layout:       settings.Layout,
		logger:       logger,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		inputChan:    make(chan ClientInput, 256),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
	}

	s.createSnapshot()
	return s, nil
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(config.ServerTickTime)
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(now.Sub(lastTime))
			lastTime = now
		}
	}
}

// tick runs one frame: registrations, queued input in arrival order, one
// simulation step unless paused, then a new snapshot.
func (s *Server) tick(dt time.Duration) {
	s.delta = min(dt, config.MaxTickDelta)

	s.processRegistrations()
	s.processInputs()

	if !s.paused || s.stepOnce {
		if s.paused {
			s.delta = config.ServerTickTime
		}
		s.stepOnce = false

		if err := s.sim.Step(s.delta); err != nil {
			s.resetAfter(err)
		}
	}

	s.createSnapshot()
}

// resetAfter logs a failed step and rebuilds the initial layout.
func (s *Server) resetAfter(err error) {
	s.resets++
	s.logger.Error("simulation step failed, resetting", "err", err, "frame", s.sim.Stats().Frame)
	s.sim.Reset(s.layout)
	s.broadcast(ClientEvent{Type: EventWorldReset, Reason: err.Error()})
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.broadcast(ClientEvent{Type: EventServerShutdown})

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// broadcast sends an event to every client without blocking.
func (s *Server) broadcast(event ClientEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- event:
		default:
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the server.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// SendPress queues a pointer press in simulation coordinates.
func (s *Server) SendPress(clientID int, x, y float64) {
	s.send(ClientInput{ClientID: clientID, Command: CommandPress, X: x, Y: y})
}

// SendCommand queues a control command.
func (s *Server) SendCommand(clientID int, cmd Command) {
	s.send(ClientInput{ClientID: clientID, Command: cmd})
}

func (s *Server) send(in ClientInput) {
	select {
	case s.inputChan <- in:
	default:
		// Input channel full, drop input
	}
}

// GetSnapshot returns the current world snapshot.
func (s *Server) GetSnapshot() *WorldSnapshot {
	return s.snapshot.Load()
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Info("client joined", "id", handle.ID, "user", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				close(handle.EventsCh)
				delete(s.clients, clientID)
				s.logger.Info("client left", "id", clientID, "user", handle.Username)
			}
			s.mu.Unlock()
		default:
			return
		}
	}
}

// processInputs applies all queued input in arrival order. Each press causes
// at most one mode transition.
func (s *Server) processInputs() {
	for {
		select {
		case in := <-s.inputChan:
			s.apply(in)
		default:
			return
		}
	}
}

func (s *Server) apply(in ClientInput) {
	switch in.Command {
	case CommandPress:
		s.sim.OnPointerPress(in.X, in.Y)
	case CommandReset:
		s.sim.Reset(s.layout)
	case CommandPause:
		s.paused = !s.paused
	case CommandStep:
		s.stepOnce = true
	case CommandCancel:
		s.sim.Cancel()
	}
	s.logger.Debug("input", "client", in.ClientID, "command", in.Command, "mode", s.sim.Mode().Kind)
}

// createSnapshot publishes an immutable snapshot of the simulation.
// A fresh slice is used every frame since clients may still hold older ones.
func (s *Server) createSnapshot() {
	s.mu.RLock()
	clients := len(s.clients)
	s.mu.RUnlock()

	prev := s.snapshot.Load()
	var bodies []simulation.BodyView
	if prev != nil {
		bodies = make([]simulation.BodyView, 0, len(prev.Bodies))
	}

	stats := s.sim.Stats()
	s.snapshot.Store(&WorldSnapshot{
		Bodies:     s.sim.Snapshot(bodies),
		Mode:       s.sim.Mode(),
		Bounds:     s.sim.Bounds(),
		Radius:     s.sim.Config().DefaultRadius,
		Clients:    clients,
		Delta:      s.delta,
		Paused:     s.paused,
		Frame:      stats.Frame,
		Collisions: stats.Collisions,
		Resets:     s.resets,
	})
}
