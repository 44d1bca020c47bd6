package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/asteroidfield/internal/config"
	"github.com/tomz197/asteroidfield/internal/draw"
	"github.com/tomz197/asteroidfield/internal/game"
	"github.com/tomz197/asteroidfield/internal/logger"
	"github.com/tomz197/asteroidfield/internal/loop"
	loopconfig "github.com/tomz197/asteroidfield/internal/loop/config"
	"github.com/tomz197/asteroidfield/internal/spectate"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

func main() {
	logr := logger.New(os.Stderr)

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	spectateAddr := config.GetEnv("SPECTATE_ADDR", "")
	logr.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "spectate", spectateAddr)

	cfg, err := game.ConfigFromEnv()
	if err != nil {
		logr.Fatal("invalid game config", "err", err)
	}

	var hub *spectate.Hub
	var web *http.Server
	if spectateAddr != "" {
		hub = spectate.NewHub(logr.With("component", "spectate"))
		web = &http.Server{
			Addr:    spectateAddr,
			Handler: hub.Router(config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")),
		}
		go func() {
			logr.Info("Starting spectator server", "addr", spectateAddr)
			if err := web.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logr.Fatal("spectator server error", "err", err)
			}
		}()
	}

	games := loop.NewHost(cfg, hub, logr)

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware(games, logr),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logr.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logr.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logr.Fatal("server error", "err", err)
		}
	}()

	<-done
	logr.Info("Shutting down server...")

	// End every game first so players see their terminal restored.
	if !games.Shutdown(loopconfig.ShutdownGrace) {
		logr.Warn("sessions still running after grace period", "active", games.Active())
	}

	ctx, cancel := context.WithTimeout(context.Background(), loopconfig.ServerCloseWait)
	defer cancel()
	if web != nil {
		_ = web.Shutdown(ctx)
	}
	if err := s.Shutdown(ctx); err != nil {
		logr.Fatal("shutdown error", "err", err)
	}
}

// gameMiddleware runs one game per SSH session.
func gameMiddleware(games *loop.Host, logr *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			logr.Info("New game session", "user", sess.User(), "term", pty.Term,
				"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

			size := &windowSize{}
			size.set(pty.Window)
			go func() {
				for win := range winCh {
					size.set(win)
				}
			}()

			err := games.Play(sess.Context(), loop.Session{
				User:   sess.User(),
				Reader: sess,
				Writer: sess,
				Size:   size.get,
			})
			if err != nil {
				logr.Error("Game error", "user", sess.User(), "err", err)
				if errors.Is(err, loop.ErrShuttingDown) {
					fmt.Fprintln(sess, "The server is restarting. Please reconnect in a moment.")
				}
			}

			next(sess)
		}
	}
}

// windowSize follows the client's terminal through SSH window-change events.
type windowSize struct {
	mu   sync.Mutex
	cols int
	rows int
}

func (w *windowSize) set(win ssh.Window) {
	w.mu.Lock()
	w.cols, w.rows = win.Width, win.Height
	w.mu.Unlock()
}

func (w *windowSize) get() (int, int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cols, w.rows, nil
}

var _ draw.TermSizeFunc = (*windowSize)(nil).get
