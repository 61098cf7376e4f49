package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/circles/internal/config"
	"github.com/tomz197/circles/internal/draw"
	"github.com/tomz197/circles/internal/loop/client"
	loopconfig "github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/loop/server"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"

	viewerDrainTimeout = 15 * time.Second
	sshCloseTimeout    = 5 * time.Second
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "circles",
	})
	if err := run(logger); err != nil {
		logger.Fatal("ssh host stopped", "err", err)
	}
}

func run(logger *log.Logger) error {
	settings, err := loopconfig.FromEnv()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	logger.SetLevel(settings.LogLevel)

	addr := net.JoinHostPort(
		config.GetEnv("SSH_HOST", defaultHost),
		config.GetEnv("SSH_PORT", defaultPort),
	)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)

	// One world shared by every session
	sim, err := server.NewServer(settings, logger.WithPrefix("server"))
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	simCtx, stopSim := context.WithCancel(context.Background())
	defer stopSim()
	go sim.Run(simCtx)

	opts := []ssh.Option{
		wish.WithAddress(addr),
		wish.WithMiddleware(
			viewerMiddleware(sim, logger),
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Mouse presses are tiny packets; don't let Nagle hold them back
		ssh.WrapConn(func(_ ssh.Context, conn net.Conn) net.Conn {
			if tcp, ok := conn.(*net.TCPConn); ok {
				_ = tcp.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	srv, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("ssh server: %w", err)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "hostKey", hostKeyPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return err
		}
	case <-sigCtx.Done():
	}

	logger.Info("shutting down, notifying viewers")
	sim.Shutdown(viewerDrainTimeout)
	stopSim()

	ctx, cancel := context.WithTimeout(context.Background(), sshCloseTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// viewerMiddleware runs a terminal client on the shared simulation for every
// session that has a PTY.
func viewerMiddleware(sim *server.Server, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			defer next(sess)

			pty, resizes, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "A terminal is required: connect with ssh -t")
				return
			}

			user := sess.User()
			logger.Info("viewer connected", "user", user, "term", pty.Term,
				"cols", pty.Window.Width, "rows", pty.Window.Height)

			size := &windowSize{width: pty.Window.Width, height: pty.Window.Height}
			go func() {
				for win := range resizes {
					size.set(win.Width, win.Height)
				}
			}()

			c := client.NewClient(sim, bufio.NewReader(sess), sess, client.ClientOptions{
				TermSizeFunc: size.get,
				Username:     user,
				Logger:       logger.WithPrefix("client"),
			})
			if err := c.Run(); err != nil {
				logger.Error("viewer session failed", "user", user, "err", err)
			}
			logger.Info("viewer disconnected", "user", user)
		}
	}
}

// windowSize is the latest PTY size reported for a session.
type windowSize struct {
	mu     sync.RWMutex
	width  int
	height int
}

func (s *windowSize) set(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

func (s *windowSize) get() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ draw.TermSizeFunc = (*windowSize)(nil).get
