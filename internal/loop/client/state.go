package client

import (
	"time"

	"github.com/tomz197/circles/internal/input"
)

// ScreenState represents what a client is showing.
type ScreenState int

const (
	ScreenSimulation ScreenState = iota // Live simulation
	ScreenShutdown                      // Server is shutting down
)

// noticeSeconds is how long a server notice stays on screen.
const noticeSeconds = 4.0

// ClientState holds per-connection state.
// Each client has their own instance, managed by the Client.
type ClientState struct {
	Input         input.Input
	Screen        ScreenState
	Running       bool          // Client loop running
	delta         time.Duration // Frame delta time (client-side)
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state

	notice      string  // Server message, e.g. why the world was reset
	noticeTimer float64 // Seconds left to show notice

	// Previous frame, to detect transitions that need a full clear
	prevScreen  ScreenState
	wasInactive bool
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Screen:  ScreenSimulation,
		Running: true,
	}
}

// setNotice shows msg for noticeSeconds.
func (s *ClientState) setNotice(msg string) {
	s.notice = msg
	s.noticeTimer = noticeSeconds
}

// tickTimers counts down the notice and shutdown timers.
func (s *ClientState) tickTimers() {
	dt := s.delta.Seconds()
	if s.noticeTimer > 0 {
		s.noticeTimer -= dt
		if s.noticeTimer <= 0 {
			s.notice = ""
		}
	}
	if s.Screen == ScreenShutdown {
		s.shutdownTimer -= dt
		if s.shutdownTimer <= 0 {
			s.Running = false
		}
	}
}
